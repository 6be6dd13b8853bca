package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/washhub/carwash-platform/internal/model"
	"github.com/washhub/carwash-platform/internal/service"
	"github.com/washhub/carwash-platform/internal/session"
)

// Handlers — HTTP-обвязка над сервисами ядра для презентационного слоя.
type Handlers struct {
	identity *service.IdentityService
	booking  *service.BookingService
	payments *service.PaymentService
	catalog  *service.CatalogService
	stats    *service.StatsService
	sessions *session.Store // nil — эндпоинты черновиков отключены
}

func New(
	identity *service.IdentityService,
	booking *service.BookingService,
	payments *service.PaymentService,
	catalog *service.CatalogService,
	stats *service.StatsService,
	sessions *session.Store,
) *Handlers {
	return &Handlers{
		identity: identity,
		booking:  booking,
		payments: payments,
		catalog:  catalog,
		stats:    stats,
		sessions: sessions,
	}
}

// Register вешает маршруты. Все группы идут через Identity; роль
// дополнительно проверяется на staff-группах, ядро перепроверяет
// принадлежность сущностей мойке само.
func (h *Handlers) Register(r *gin.Engine) {
	// Регистрация — единственный маршрут без разрешённого пользователя.
	r.POST("/api/v1/register", h.register)

	api := r.Group("/api/v1", h.Identity())

	// Клиентский поток.
	api.GET("/services", h.listServices)
	api.GET("/slots", h.listSlots)
	api.POST("/bookings", h.createBooking)
	api.GET("/bookings", h.listMyBookings)
	api.POST("/bookings/:id/cancel", h.cancelBooking)
	api.GET("/plans", h.listPlans)
	api.GET("/subscriptions", h.listMySubscriptions)
	api.POST("/transactions", h.createTransaction)
	api.POST("/transactions/:id/confirm", h.confirmTransaction)

	if h.sessions != nil {
		api.GET("/session/draft", h.getDraft)
		api.PUT("/session/draft", h.putDraft)
		api.DELETE("/session/draft", h.clearDraft)
	}

	washer := api.Group("/washer", RequireRole(model.UserRoleWasher, model.UserRoleAdmin, model.UserRoleOwner))
	washer.GET("/today", h.listToday)
	washer.POST("/appointments/:id/complete", h.completeAppointment)
	washer.GET("/stats", h.washerStats)

	admin := api.Group("/admin", RequireRole(model.UserRoleAdmin, model.UserRoleOwner))
	admin.GET("/transactions", h.listPendingTransactions)
	admin.POST("/transactions/:id/approve", h.approveTransaction)
	admin.POST("/transactions/:id/reject", h.rejectTransaction)
	admin.GET("/appointments/today", h.listToday)
	admin.POST("/services", h.createService)
	admin.POST("/services/:id/disable", h.disableService)
	admin.POST("/plans", h.createPlan)
	admin.POST("/users/:id/role", h.setRole)

	owner := api.Group("/owner", RequireRole(model.UserRoleOwner))
	owner.GET("/dashboard", h.dashboard)
	owner.GET("/clients", h.listClients)
}
