package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/washhub/carwash-platform/internal/model"
	"github.com/washhub/carwash-platform/internal/schedule"
	"github.com/washhub/carwash-platform/internal/service"
)

// GET /washer/today, GET /admin/appointments/today — активные записи за сутки.
func (h *Handlers) listToday(c *gin.Context) {
	u := currentUser(c)

	appts, err := h.booking.ListDay(c.Request.Context(), u.CarWashID, h.booking.Today())
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

func (h *Handlers) completeAppointment(c *gin.Context) {
	u := currentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad appointment id"})
		return
	}
	if err := h.booking.CompleteAppointment(c.Request.Context(), id, u.CarWashID); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "completed"})
}

func (h *Handlers) washerStats(c *gin.Context) {
	u := currentUser(c)
	st, err := h.stats.WasherStats(c.Request.Context(), u.CarWashID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// GET /admin/transactions — очередь pending + client_confirmed.
func (h *Handlers) listPendingTransactions(c *gin.Context) {
	u := currentUser(c)
	txns, err := h.payments.ListPending(c.Request.Context(), u.CarWashID)
	if err != nil {
		writeErr(c, err)
		return
	}

	out := make([]gin.H, 0, len(txns))
	for i := range txns {
		out = append(out, transactionDTO(&txns[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) approveTransaction(c *gin.Context) {
	u := currentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad transaction id"})
		return
	}

	txn, err := h.payments.Approve(c.Request.Context(), id, u.ID, u.CarWashID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, transactionDTO(txn))
}

func (h *Handlers) rejectTransaction(c *gin.Context) {
	u := currentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad transaction id"})
		return
	}

	txn, err := h.payments.Reject(c.Request.Context(), id, u.ID, u.CarWashID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, transactionDTO(txn))
}

type createServiceRequest struct {
	Name               string            `json:"name" binding:"required"`
	Description        string            `json:"description"`
	Price              decimal.Decimal   `json:"price"`
	DurationMin        int               `json:"duration_min"`
	CarCategory        model.CarCategory `json:"car_category"`
	MaxDiscountPercent int               `json:"max_discount_percent"`
}

func (h *Handlers) createService(c *gin.Context) {
	u := currentUser(c)

	var req createServiceRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc, err := h.catalog.CreateService(c.Request.Context(), u.CarWashID, service.ServiceInput{
		Name:               req.Name,
		Description:        req.Description,
		Price:              req.Price,
		DurationMin:        req.DurationMin,
		CarCategory:        req.CarCategory,
		MaxDiscountPercent: req.MaxDiscountPercent,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": svc.ID})
}

func (h *Handlers) disableService(c *gin.Context) {
	u := currentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad service id"})
		return
	}
	if err := h.catalog.DisableService(c.Request.Context(), u.CarWashID, id); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "disabled"})
}

type createPlanRequest struct {
	Name         string          `json:"name" binding:"required"`
	Washes       int             `json:"washes"`
	Price        decimal.Decimal `json:"price"`
	ValidityDays int             `json:"validity_days"`
}

func (h *Handlers) createPlan(c *gin.Context) {
	u := currentUser(c)

	var req createPlanRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, err := h.catalog.CreatePlan(c.Request.Context(), u.CarWashID, service.PlanInput{
		Name:         req.Name,
		Washes:       req.Washes,
		Price:        req.Price,
		ValidityDays: req.ValidityDays,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": plan.ID})
}

type setRoleRequest struct {
	Role model.UserRole `json:"role" binding:"required"`
}

func (h *Handlers) setRole(c *gin.Context) {
	u := currentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad user id"})
		return
	}

	var req setRoleRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.identity.SetRole(c.Request.Context(), id, u.CarWashID, req.Role); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *Handlers) dashboard(c *gin.Context) {
	u := currentUser(c)
	d, err := h.stats.Dashboard(c.Request.Context(), u.CarWashID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// Сколько последних клиентов листается постранично.
const clientListWindow = 500

func (h *Handlers) listClients(c *gin.Context) {
	u := currentUser(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	clients, err := h.identity.ListClients(c.Request.Context(), u.CarWashID, clientListWindow)
	if err != nil {
		writeErr(c, err)
		return
	}

	p := schedule.Paginate(clients, page, pageSize)
	out := make([]gin.H, 0, len(p.Items))
	for _, cl := range p.Items {
		out = append(out, gin.H{
			"id":        cl.ID,
			"full_name": cl.FullName,
			"username":  cl.Username,
			"phone":     cl.Phone,
			"balance":   cl.Balance,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"clients":   out,
		"page":      p.Page,
		"page_size": p.PageSize,
		"total":     p.Total,
		"has_next":  p.HasNext,
		"has_prev":  p.HasPrev,
	})
}
