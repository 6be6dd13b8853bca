package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/washhub/carwash-platform/internal/model"
)

type UserRepository interface {
	FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// Upsert создаёт пользователя мойки или обновляет контактные данные.
	Upsert(ctx context.Context, telegramID int64, carWashID uuid.UUID, fullName, username, phone string) (*model.User, error)
	SetRole(ctx context.Context, userID uuid.UUID, role model.UserRole) error
	// Последние клиенты мойки, новые первыми.
	ListClients(ctx context.Context, carWashID uuid.UUID, limit int) ([]model.User, error)
	CountClients(ctx context.Context, carWashID uuid.UUID) (int64, error)
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *GormUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func normalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}
	// Keep only digits; ignore formatting characters.
	b := make([]byte, 0, len(phone))
	for i := 0; i < len(phone); i++ {
		c := phone[i]
		if c >= '0' && c <= '9' {
			b = append(b, c)
		}
	}
	return string(b)
}

func (r *GormUserRepository) Upsert(
	ctx context.Context,
	telegramID int64,
	carWashID uuid.UUID,
	fullName, username, phone string,
) (*model.User, error) {
	phone = normalizePhone(phone)

	var u model.User
	tx := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&u)
	if tx.Error != nil {
		if !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, tx.Error
		}
		u = model.User{
			ID:         uuid.New(),
			TelegramID: telegramID,
			CarWashID:  carWashID,
			Role:       model.UserRoleClient,
			FullName:   fullName,
			Username:   username,
			Phone:      phone,
		}
		if err := r.db.WithContext(ctx).Create(&u).Error; err != nil {
			return nil, err
		}
		return &u, nil
	}

	updates := map[string]any{}
	if fullName != "" {
		updates["full_name"] = fullName
	}
	if username != "" {
		updates["username"] = username
	}
	if phone != "" {
		updates["phone"] = phone
	}
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", u.ID).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, u.ID)
}

func (r *GormUserRepository) SetRole(ctx context.Context, userID uuid.UUID, role model.UserRole) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userID).
		Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormUserRepository) ListClients(ctx context.Context, carWashID uuid.UUID, limit int) ([]model.User, error) {
	if limit <= 0 {
		limit = 10
	}
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("car_wash_id = ? AND role = ?", carWashID, model.UserRoleClient).
		Order("created_at DESC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormUserRepository) CountClients(ctx context.Context, carWashID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("car_wash_id = ? AND role = ?", carWashID, model.UserRoleClient).
		Count(&n).Error
	return n, err
}
