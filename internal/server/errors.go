package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	customerdomain "github.com/foodcourtlabs/foodcourt/internal/customer/domain"
	orderdomain "github.com/foodcourtlabs/foodcourt/internal/order/domain"
	paymentdomain "github.com/foodcourtlabs/foodcourt/internal/payment/domain"
	"github.com/foodcourtlabs/foodcourt/pkg/validate"
)

func respondError(c *gin.Context, status int, code, message string, fields validate.FieldErrors) {
	body := gin.H{"code": code, "message": message}
	if len(fields) > 0 {
		body["fields"] = fields
	}
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}

// AbortWithError maps domain errors onto the HTTP surface. Anything
// unrecognized is a 500 with a generic body; detail stays in the server log.
func (s *Server) AbortWithError(c *gin.Context, err error) {
	var fieldErrs validate.FieldErrors
	if errors.As(err, &fieldErrs) {
		respondError(c, http.StatusBadRequest, "validation_failed", "request validation failed", fieldErrs)
		return
	}

	switch {
	case errors.Is(err, orderdomain.ErrOrderNotFound),
		errors.Is(err, customerdomain.ErrCustomerNotFound),
		errors.Is(err, paymentdomain.ErrTransactionNotFound):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, paymentdomain.ErrProviderNotFound):
		respondError(c, http.StatusNotFound, "provider_not_found", err.Error(), nil)
	case errors.Is(err, orderdomain.ErrInvalidStatus),
		errors.Is(err, orderdomain.ErrIllegalTransition),
		errors.Is(err, paymentdomain.ErrInvalidMethod),
		errors.Is(err, paymentdomain.ErrOrderClosed),
		errors.Is(err, paymentdomain.ErrNotVerifiable),
		errors.Is(err, paymentdomain.ErrInvalidProvider),
		errors.Is(err, paymentdomain.ErrInvalidPayload),
		errors.Is(err, paymentdomain.ErrInvalidEvent):
		respondError(c, http.StatusBadRequest, err.Error(), err.Error(), nil)
	case errors.Is(err, paymentdomain.ErrInvalidSignature):
		respondError(c, http.StatusBadRequest, "invalid_signature", "webhook signature verification failed", nil)
	default:
		s.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal_error", "internal server error", nil)
	}
}

func invalidRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, "invalid_request", message, nil)
}
