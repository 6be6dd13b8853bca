package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/washhub/carwash-platform/internal/repository"
	"github.com/washhub/carwash-platform/internal/service"
)

// writeErr переводит доменные ошибки в HTTP-статусы.
func writeErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrSlotTaken):
		// Ожидаемый исход гонки: клиент перезапрашивает свободные слоты.
		c.JSON(http.StatusConflict, gin.H{"error": "slot_taken"})
	case errors.Is(err, repository.ErrAlreadyProcessed):
		c.JSON(http.StatusConflict, gin.H{"error": "already_processed"})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
