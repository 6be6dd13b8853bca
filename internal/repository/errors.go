package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrSlotTaken — интервал уже занят на момент коммита. Ожидаемая
	// ситуация при гонке двух бронирований, клиент выбирает время заново.
	ErrSlotTaken = errors.New("slot already taken")

	// ErrAlreadyProcessed — переход статуса из терминального или
	// неподходящего состояния. Побочный эффект не повторяется.
	ErrAlreadyProcessed = errors.New("already processed")

	// ErrNotFound — сущность отсутствует.
	ErrNotFound = errors.New("not found")
)

// notFound переводит gorm.ErrRecordNotFound в доменную ошибку,
// остальное отдаёт как есть.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
