package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/washhub/carwash-platform/internal/events"
	"github.com/washhub/carwash-platform/internal/model"
	"github.com/washhub/carwash-platform/internal/repository"
)

// PaymentService — жизненный цикл транзакций и их эффекты в леджере:
// pending -> client_confirmed -> approved|rejected, либо pending ->
// approved|rejected напрямую. Подтверждение клиента совещательное,
// платёж авторизует только админ.
type PaymentService struct {
	txns  repository.TransactionRepository
	users repository.UserRepository
	subs  repository.SubscriptionRepository
	plans repository.SubscriptionPlanRepository
	pub   *events.Publisher

	now func() time.Time
}

func NewPaymentService(
	txns repository.TransactionRepository,
	users repository.UserRepository,
	subs repository.SubscriptionRepository,
	plans repository.SubscriptionPlanRepository,
	pub *events.Publisher,
) *PaymentService {
	return &PaymentService{
		txns:  txns,
		users: users,
		subs:  subs,
		plans: plans,
		pub:   pub,
		now:   time.Now,
	}
}

// CreateTransaction создаёт транзакцию в статусе pending.
// Для subscription_purchase снапшот шаблона обязателен и с этого момента
// неизменяем: правки каталога на созданную покупку не влияют.
func (s *PaymentService) CreateTransaction(
	ctx context.Context,
	userID, carWashID uuid.UUID,
	amount decimal.Decimal,
	kind model.TransactionKind,
	snapshot *model.PlanSnapshot,
) (*model.Transaction, error) {
	if !amount.IsPositive() {
		return nil, invalidf("amount must be positive, got %s", amount)
	}
	if !model.KnownTransactionKind(kind) {
		return nil, invalidf("unknown transaction kind %q", kind)
	}
	if kind == model.TransactionKindSubscriptionPurchase && snapshot == nil {
		return nil, invalidf("subscription purchase requires a plan snapshot")
	}

	// Пользователь должен принадлежать этой мойке.
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.CarWashID != carWashID {
		return nil, repository.ErrNotFound
	}

	txn := &model.Transaction{
		UserID:    userID,
		CarWashID: carWashID,
		Amount:    amount,
		Kind:      kind,
		Status:    model.TransactionStatusPending,
	}
	if snapshot != nil {
		raw, err := model.EncodeSnapshot(*snapshot)
		if err != nil {
			return nil, err
		}
		txn.TemplateSnapshot = raw
	}

	if err := s.txns.Create(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// PurchasePlan снимает снапшот выбранного шаблона каталога и создаёт
// транзакцию покупки на его цену.
func (s *PaymentService) PurchasePlan(ctx context.Context, userID, carWashID, planID uuid.UUID) (*model.Transaction, error) {
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.CarWashID != carWashID || !plan.IsActive {
		return nil, repository.ErrNotFound
	}

	snap := model.PlanSnapshot{
		PlanID:       plan.ID,
		Name:         plan.Name,
		Washes:       plan.Washes,
		Price:        plan.Price,
		ValidityDays: plan.ValidityDays,
	}
	return s.CreateTransaction(ctx, userID, carWashID, plan.Price, model.TransactionKindSubscriptionPurchase, &snap)
}

// ClientConfirm — клиент отметил "я оплатил". Допустим только из pending.
func (s *PaymentService) ClientConfirm(ctx context.Context, txnID, userID uuid.UUID) (*model.Transaction, error) {
	return s.txns.Transition(ctx, txnID,
		[]model.TransactionStatus{model.TransactionStatusPending},
		func(tx *gorm.DB, txn *model.Transaction) error {
			if txn.UserID != userID {
				return repository.ErrNotFound
			}
			txn.Status = model.TransactionStatusClientConfirmed
			return nil
		})
}

// Approve подтверждает платёж: статус, admin_id, отметка времени и эффект
// по виду транзакции коммитятся атомарно. Повторный approve того же платежа
// отдаёт repository.ErrAlreadyProcessed, эффект не дублируется.
func (s *PaymentService) Approve(ctx context.Context, txnID, adminID, carWashID uuid.UUID) (*model.Transaction, error) {
	txn, err := s.txns.Transition(ctx, txnID, repository.PendingTransactionStatuses,
		func(tx *gorm.DB, txn *model.Transaction) error {
			if txn.CarWashID != carWashID {
				return repository.ErrNotFound
			}

			now := s.now()
			txn.Status = model.TransactionStatusApproved
			txn.AdminID = &adminID
			txn.ApprovedAt = &now

			switch txn.Kind {
			case model.TransactionKindBalanceTopup:
				return creditBalance(tx, txn.UserID, txn.Amount)
			case model.TransactionKindSubscriptionPurchase:
				return s.issueSubscription(tx, txn, now)
			default:
				return invalidf("unknown transaction kind %q", txn.Kind)
			}
		})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("transaction_id", txn.ID.String()).
		Str("admin_id", adminID.String()).
		Str("kind", string(txn.Kind)).
		Msg("transaction approved")

	_ = s.pub.PublishJSON(ctx, events.KeyTransactionApproved, map[string]any{
		"transaction_id": txn.ID.String(),
		"user_id":        txn.UserID.String(),
		"kind":           string(txn.Kind),
		"amount":         txn.Amount.String(),
	})
	return txn, nil
}

// Reject отклоняет платёж. Эффектов в леджере нет.
func (s *PaymentService) Reject(ctx context.Context, txnID, adminID, carWashID uuid.UUID) (*model.Transaction, error) {
	txn, err := s.txns.Transition(ctx, txnID, repository.PendingTransactionStatuses,
		func(tx *gorm.DB, txn *model.Transaction) error {
			if txn.CarWashID != carWashID {
				return repository.ErrNotFound
			}
			txn.Status = model.TransactionStatusRejected
			txn.AdminID = &adminID
			return nil
		})
	if err != nil {
		return nil, err
	}

	_ = s.pub.PublishJSON(ctx, events.KeyTransactionRejected, map[string]any{
		"transaction_id": txn.ID.String(),
		"user_id":        txn.UserID.String(),
	})
	return txn, nil
}

// ListPending — очередь платежей админа (pending + client_confirmed).
func (s *PaymentService) ListPending(ctx context.Context, carWashID uuid.UUID) ([]model.Transaction, error) {
	return s.txns.ListPending(ctx, carWashID)
}

// ListUserSubscriptions — активные абонементы пользователя.
func (s *PaymentService) ListUserSubscriptions(ctx context.Context, userID uuid.UUID) ([]model.Subscription, error) {
	return s.subs.ListActiveByUser(ctx, userID)
}

func creditBalance(tx *gorm.DB, userID uuid.UUID, amount decimal.Decimal) error {
	res := tx.Model(&model.User{}).
		Where("id = ?", userID).
		UpdateColumn("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// issueSubscription материализует абонемент из снапшота шаблона и
// привязывает его к транзакции.
func (s *PaymentService) issueSubscription(tx *gorm.DB, txn *model.Transaction, approvedAt time.Time) error {
	snap, err := txn.Snapshot()
	if err != nil {
		return err
	}
	if snap == nil {
		return invalidf("transaction %s has no plan snapshot", txn.ID)
	}

	validUntil := datatypes.Date(approvedAt.AddDate(0, 0, snap.ValidityDays))
	sub := &model.Subscription{
		ID:              uuid.New(),
		UserID:          txn.UserID,
		CarWashID:       txn.CarWashID,
		Name:            snap.Name,
		TotalWashes:     snap.Washes,
		RemainingWashes: snap.Washes,
		PurchasePrice:   txn.Amount,
		ValidUntil:      &validUntil,
		IsActive:        true,
	}
	if err := tx.Create(sub).Error; err != nil {
		return err
	}
	txn.SubscriptionID = &sub.ID
	return nil
}
