package server

import (
	"errors"
	"net/http"

	"lotto/application"
	"lotto/domain/entities"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func errorBody(code, message string, details gin.H) gin.H {
	body := gin.H{"code": code, "message": message}
	for k, v := range details {
		body[k] = v
	}
	return gin.H{"error": body}
}

// writeError maps domain errors onto HTTP status codes
func writeError(c *gin.Context, err error) {
	var (
		validationErr *entities.ValidationError
		fundsErr      *entities.InsufficientFundsError
		windowErr     *entities.PurchaseWindowClosedError
		notFoundErr   *entities.NotFoundError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, errorBody("validation_error", validationErr.Error(), gin.H{"field": validationErr.Field}))
	case errors.As(err, &fundsErr):
		c.JSON(http.StatusPaymentRequired, errorBody("insufficient_funds", fundsErr.Error(), gin.H{
			"balance": fundsErr.Balance,
			"price":   fundsErr.Price,
		}))
	case errors.As(err, &windowErr):
		c.JSON(http.StatusConflict, errorBody("purchase_window_closed", windowErr.Error(), gin.H{
			"seconds_remaining": windowErr.SecondsRemaining,
		}))
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, errorBody("not_found", notFoundErr.Error(), gin.H{"resource": notFoundErr.Resource}))
	case errors.Is(err, entities.ErrTicketNotClaimable),
		errors.Is(err, entities.ErrDrawAlreadyCompleted),
		errors.Is(err, application.ErrSchedulerBusy):
		c.JSON(http.StatusConflict, errorBody("conflict", err.Error(), nil))
	default:
		log.WithError(err).WithField("request_id", c.GetString(requestIDKey)).Error("Request failed with store error")
		c.JSON(http.StatusInternalServerError, errorBody("store_error", "internal error, nothing was changed", nil))
	}
}

func badRequest(c *gin.Context, field, reason string) {
	writeError(c, entities.NewValidationError(field, reason))
}
