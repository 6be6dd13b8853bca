package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNoDraft — у чата нет сохранённого черновика.
var ErrNoDraft = errors.New("no draft for chat")

// BookingDraft — состояние многошагового диалога записи/покупки.
// Живёт только здесь: ядро получает уже разрешённые аргументы, а брошенный
// диалог просто истекает по TTL без компенсаций.
type BookingDraft struct {
	ServiceID uuid.UUID `json:"service_id,omitempty"`
	PlanID    uuid.UUID `json:"plan_id,omitempty"`
	Date      string    `json:"date,omitempty"` // YYYY-MM-DD
	Time      string    `json:"time,omitempty"` // HH:MM
}

// Store — черновики диалогов в Redis с TTL.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(addr, password string, db int, ttl time.Duration) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &Store{rdb: rdb, ttl: ttl}, nil
}

func key(chatID int64) string {
	return fmt.Sprintf("session:%d", chatID)
}

func (s *Store) Get(ctx context.Context, chatID int64) (*BookingDraft, error) {
	raw, err := s.rdb.Get(ctx, key(chatID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoDraft
	}
	if err != nil {
		return nil, err
	}
	var d BookingDraft
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) Put(ctx context.Context, chatID int64, d *BookingDraft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key(chatID), raw, s.ttl).Err()
}

func (s *Store) Clear(ctx context.Context, chatID int64) error {
	return s.rdb.Del(ctx, key(chatID)).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}
