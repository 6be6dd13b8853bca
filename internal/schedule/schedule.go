package schedule

import (
	"errors"
	"time"
)

var (
	ErrInvalidTimeRange = errors.New("invalid time range")
	ErrSlotStep         = errors.New("slot step must be positive")
	ErrSlotDuration     = errors.New("slot duration must be positive")
)

// TimeRange представляет полуоткрытый интервал [Start, End).
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// NewTimeRange создаёт интервал и делает простую валидацию.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return TimeRange{}, ErrInvalidTimeRange
	}
	return TimeRange{Start: start, End: end}, nil
}

// Overlaps проверяет пересечение полуоткрытых интервалов:
// a.Start < b.End && b.Start < a.End. Касание границ пересечением не считается.
func (a TimeRange) Overlaps(b TimeRange) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// OverlapsAny — пересекается ли интервал хотя бы с одним из existing.
func (a TimeRange) OverlapsAny(existing []TimeRange) bool {
	for _, tr := range existing {
		if a.Overlaps(tr) {
			return true
		}
	}
	return false
}

// DayWindow строит рабочее окно [openHour:00, closeHour:00) на дату day
// в часовом поясе loc.
func DayWindow(day time.Time, openHour, closeHour int, loc *time.Location) (TimeRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := day.In(loc).Date()
	start := time.Date(y, m, d, openHour, 0, 0, 0, loc)
	end := time.Date(y, m, d, closeHour, 0, 0, 0, loc)
	return NewTimeRange(start, end)
}

// FreeSlots перебирает кандидатов старта с шагом step внутри window и
// оставляет те, чей интервал [s, s+duration) не пересекается ни с одним
// занятым. Кандидат допустим, пока его старт строго внутри окна; конец
// может выходить за закрытие — так работает исходная сетка записи.
// Возвращает первые max свободных в хронологическом порядке (max <= 0 — все).
func FreeSlots(window TimeRange, step, duration time.Duration, busy []TimeRange, max int) ([]TimeRange, error) {
	if step <= 0 {
		return nil, ErrSlotStep
	}
	if duration <= 0 {
		return nil, ErrSlotDuration
	}

	var free []TimeRange
	for s := window.Start; s.Before(window.End); s = s.Add(step) {
		candidate := TimeRange{Start: s, End: s.Add(duration)}
		if candidate.OverlapsAny(busy) {
			continue
		}
		free = append(free, candidate)
		if max > 0 && len(free) >= max {
			break
		}
	}
	return free, nil
}

// DateOnly обрезает время до начала суток в поясе loc.
func DateOnly(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
