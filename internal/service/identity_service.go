package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/washhub/carwash-platform/internal/model"
	"github.com/washhub/carwash-platform/internal/repository"
)

// IdentityService отдаёт тройку (пользователь, роль, мойка) по Telegram ID
// и управляет профилями. Роль проверяет вызывающий слой, ядро дополнительно
// перепроверяет принадлежность сущностей мойке.
type IdentityService struct {
	users  repository.UserRepository
	washes repository.CarWashRepository
}

func NewIdentityService(users repository.UserRepository, washes repository.CarWashRepository) *IdentityService {
	return &IdentityService{users: users, washes: washes}
}

// Resolve возвращает пользователя по Telegram ID. Заблокированные не проходят.
func (s *IdentityService) Resolve(ctx context.Context, telegramID int64) (*model.User, error) {
	if telegramID <= 0 {
		return nil, invalidf("telegram id is required")
	}
	u, err := s.users.FindByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if u.IsBlocked {
		return nil, invalidf("user %d is blocked", telegramID)
	}
	return u, nil
}

// Register создаёт пользователя мойки или обновляет контакты существующего.
func (s *IdentityService) Register(ctx context.Context, telegramID int64, carWashID uuid.UUID, fullName, username, phone string) (*model.User, error) {
	if telegramID <= 0 {
		return nil, invalidf("telegram id is required")
	}
	if _, err := s.washes.GetByID(ctx, carWashID); err != nil {
		return nil, err
	}
	return s.users.Upsert(ctx, telegramID, carWashID, fullName, username, phone)
}

// ListClients — клиентская база мойки (поток владельца).
func (s *IdentityService) ListClients(ctx context.Context, carWashID uuid.UUID, limit int) ([]model.User, error) {
	return s.users.ListClients(ctx, carWashID, limit)
}

// SetRole назначает роль пользователю той же мойки.
func (s *IdentityService) SetRole(ctx context.Context, userID, carWashID uuid.UUID, role model.UserRole) error {
	switch role {
	case model.UserRoleClient, model.UserRoleWasher, model.UserRoleAdmin, model.UserRoleOwner:
	default:
		return invalidf("unknown role %q", role)
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.CarWashID != carWashID {
		return repository.ErrNotFound
	}
	return s.users.SetRole(ctx, userID, role)
}
