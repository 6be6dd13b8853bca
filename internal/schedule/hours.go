package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Ключи графика работы по дням недели.
var weekdayKeys = map[time.Weekday]string{
	time.Monday:    "mon",
	time.Tuesday:   "tue",
	time.Wednesday: "wed",
	time.Thursday:  "thu",
	time.Friday:    "fri",
	time.Saturday:  "sat",
	time.Sunday:    "sun",
}

// WorkingHours — график мойки: "mon" -> "09:00-21:00" или "closed".
// Дни, которых нет в карте, работают по окну по умолчанию.
type WorkingHours map[string]string

// WindowFor возвращает рабочее окно на дату day. Если для дня задано
// "closed", второй результат false. Некорректная запись в графике — ошибка,
// а не молчаливый фолбэк.
func (wh WorkingHours) WindowFor(day time.Time, defOpenHour, defCloseHour int, loc *time.Location) (TimeRange, bool, error) {
	if loc == nil {
		loc = time.UTC
	}

	raw, ok := wh[weekdayKeys[day.In(loc).Weekday()]]
	if !ok || raw == "" {
		w, err := DayWindow(day, defOpenHour, defCloseHour, loc)
		return w, err == nil, err
	}
	if strings.EqualFold(strings.TrimSpace(raw), "closed") {
		return TimeRange{}, false, nil
	}

	openH, openM, closeH, closeM, err := parseHoursSpec(raw)
	if err != nil {
		return TimeRange{}, false, err
	}

	y, m, d := day.In(loc).Date()
	start := time.Date(y, m, d, openH, openM, 0, 0, loc)
	end := time.Date(y, m, d, closeH, closeM, 0, 0, loc)
	w, err := NewTimeRange(start, end)
	return w, err == nil, err
}

// parseHoursSpec разбирает строку вида "09:00-21:00".
func parseHoursSpec(raw string) (openH, openM, closeH, closeM int, err error) {
	parts := strings.Split(strings.TrimSpace(raw), "-")
	if len(parts) != 2 {
		return 0, 0, 0, 0, fmt.Errorf("working hours: bad spec %q", raw)
	}
	openH, openM, err = parseClock(parts[0])
	if err != nil {
		return 0, 0, 0, 0, err
	}
	closeH, closeM, err = parseClock(parts[1])
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return openH, openM, closeH, closeM, nil
}

func parseClock(raw string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("working hours: bad time %q", raw)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 24 {
		return 0, 0, fmt.Errorf("working hours: bad hour %q", raw)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("working hours: bad minute %q", raw)
	}
	return h, m, nil
}
