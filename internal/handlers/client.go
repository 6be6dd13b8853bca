package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/washhub/carwash-platform/internal/model"
	"github.com/washhub/carwash-platform/internal/session"
)

type registerRequest struct {
	TelegramID int64     `json:"telegram_id" binding:"required"`
	CarWashID  uuid.UUID `json:"car_wash_id" binding:"required"`
	FullName   string    `json:"full_name"`
	Username   string    `json:"username"`
	Phone      string    `json:"phone"`
}

// POST /register — создание или обновление профиля клиента мойки.
func (h *Handlers) register(c *gin.Context) {
	var req registerRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := h.identity.Register(c.Request.Context(), req.TelegramID, req.CarWashID, req.FullName, req.Username, req.Phone)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": u.ID, "role": u.Role})
}

func (h *Handlers) listServices(c *gin.Context) {
	u := currentUser(c)
	services, err := h.booking.ListActiveServices(c.Request.Context(), u.CarWashID)
	if err != nil {
		writeErr(c, err)
		return
	}

	out := make([]gin.H, 0, len(services))
	for _, s := range services {
		out = append(out, gin.H{
			"id":           s.ID,
			"name":         s.Name,
			"price":        s.Price,
			"duration_min": s.DurationMin,
		})
	}
	c.JSON(http.StatusOK, out)
}

// GET /slots?service_id=...&date=YYYY-MM-DD
func (h *Handlers) listSlots(c *gin.Context) {
	u := currentUser(c)

	serviceID, err := uuid.Parse(c.Query("service_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "service_id is required"})
		return
	}
	day, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	starts, err := h.booking.AvailableSlots(c.Request.Context(), u.CarWashID, serviceID, day)
	if err != nil {
		writeErr(c, err)
		return
	}

	slots := make([]string, 0, len(starts))
	for _, t := range starts {
		slots = append(slots, t.Format("15:04"))
	}
	c.JSON(http.StatusOK, gin.H{"date": c.Query("date"), "slots": slots})
}

type createBookingRequest struct {
	ServiceID uuid.UUID `json:"service_id" binding:"required"`
	StartsAt  time.Time `json:"starts_at" binding:"required"`
}

func (h *Handlers) createBooking(c *gin.Context) {
	u := currentUser(c)

	var req createBookingRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	appt, err := h.booking.CreateBooking(c.Request.Context(), u.ID, u.CarWashID, req.ServiceID, req.StartsAt)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, appointmentDTO(appt))
}

func (h *Handlers) listMyBookings(c *gin.Context) {
	u := currentUser(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	appts, err := h.booking.ListUserAppointments(c.Request.Context(), u.ID, limit)
	if err != nil {
		writeErr(c, err)
		return
	}

	out := make([]gin.H, 0, len(appts))
	for i := range appts {
		out = append(out, appointmentDTO(&appts[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) cancelBooking(c *gin.Context) {
	u := currentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad appointment id"})
		return
	}
	if err := h.booking.CancelAppointment(c.Request.Context(), id, u.ID); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

func (h *Handlers) listPlans(c *gin.Context) {
	u := currentUser(c)
	plans, err := h.catalog.ListPlans(c.Request.Context(), u.CarWashID)
	if err != nil {
		writeErr(c, err)
		return
	}

	out := make([]gin.H, 0, len(plans))
	for _, p := range plans {
		out = append(out, gin.H{
			"id":            p.ID,
			"name":          p.Name,
			"washes":        p.Washes,
			"price":         p.Price,
			"validity_days": p.ValidityDays,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) listMySubscriptions(c *gin.Context) {
	u := currentUser(c)
	subs, err := h.payments.ListUserSubscriptions(c.Request.Context(), u.ID)
	if err != nil {
		writeErr(c, err)
		return
	}

	out := make([]gin.H, 0, len(subs))
	for _, s := range subs {
		out = append(out, gin.H{
			"id":               s.ID,
			"name":             s.Name,
			"total_washes":     s.TotalWashes,
			"remaining_washes": s.RemainingWashes,
			"valid_until":      s.ValidUntil,
		})
	}
	c.JSON(http.StatusOK, out)
}

type createTransactionRequest struct {
	Kind   model.TransactionKind `json:"kind" binding:"required"`
	Amount decimal.Decimal       `json:"amount"`
	PlanID uuid.UUID             `json:"plan_id"`
}

// POST /transactions — пополнение баланса или покупка абонемента по шаблону.
func (h *Handlers) createTransaction(c *gin.Context) {
	u := currentUser(c)

	var req createTransactionRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var (
		txn *model.Transaction
		err error
	)
	switch req.Kind {
	case model.TransactionKindSubscriptionPurchase:
		txn, err = h.payments.PurchasePlan(c.Request.Context(), u.ID, u.CarWashID, req.PlanID)
	default:
		txn, err = h.payments.CreateTransaction(c.Request.Context(), u.ID, u.CarWashID, req.Amount, req.Kind, nil)
	}
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, transactionDTO(txn))
}

func (h *Handlers) confirmTransaction(c *gin.Context) {
	u := currentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad transaction id"})
		return
	}

	txn, err := h.payments.ClientConfirm(c.Request.Context(), id, u.ID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, transactionDTO(txn))
}

// Черновик диалога: транспортный слой хранит промежуточные шаги здесь,
// ядро про них не знает.
func (h *Handlers) getDraft(c *gin.Context) {
	u := currentUser(c)
	d, err := h.sessions.Get(c.Request.Context(), u.TelegramID)
	if err != nil {
		if errors.Is(err, session.ErrNoDraft) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no draft"})
			return
		}
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handlers) putDraft(c *gin.Context) {
	u := currentUser(c)
	var d session.BookingDraft
	if err := c.BindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.sessions.Put(c.Request.Context(), u.TelegramID, &d); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

func (h *Handlers) clearDraft(c *gin.Context) {
	u := currentUser(c)
	if err := h.sessions.Clear(c.Request.Context(), u.TelegramID); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

func appointmentDTO(a *model.Appointment) gin.H {
	out := gin.H{
		"id":        a.ID,
		"starts_at": a.StartsAt,
		"ends_at":   a.EndsAt,
		"status":    a.Status,
	}
	if a.Service != nil {
		out["service"] = gin.H{
			"id":    a.Service.ID,
			"name":  a.Service.Name,
			"price": a.Service.Price,
		}
	}
	if a.User != nil {
		out["client"] = gin.H{
			"id":        a.User.ID,
			"full_name": a.User.FullName,
		}
	}
	return out
}

func transactionDTO(t *model.Transaction) gin.H {
	out := gin.H{
		"id":         t.ID,
		"amount":     t.Amount,
		"kind":       t.Kind,
		"status":     t.Status,
		"created_at": t.CreatedAt,
	}
	if t.SubscriptionID != nil {
		out["subscription_id"] = *t.SubscriptionID
	}
	if t.User != nil {
		out["client"] = gin.H{
			"id":        t.User.ID,
			"full_name": t.User.FullName,
		}
	}
	return out
}
