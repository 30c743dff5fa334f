package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"fempowered-storefront/internal/domain"
	accountsvc "fempowered-storefront/internal/service/account"
	reviewsvc "fempowered-storefront/internal/service/review"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// respondBindError turns gin binding failures into a per-field error map when
// the failure came from validator tags, and a generic 400 otherwise.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fieldName(fe)] = validationMessage(fe)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
		return
	}
	respondError(c, http.StatusBadRequest, "malformed request body")
}

func fieldName(fe validator.FieldError) string {
	// StructNamespace looks like "checkoutRequest.Shipping.Line1"; drop the
	// root type and lower-case the leading letters to match the JSON keys.
	parts := strings.Split(fe.StructNamespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToLower(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, ".")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_unless":
		return "required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "iso3166_1_alpha2":
		return "must be a two-letter country code"
	}
	return "invalid value"
}

// respondServiceError maps known domain and service errors onto statuses.
// Anything unrecognized is a logged 500 with no detail leaked.
func (a *api) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondError(c, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		respondError(c, http.StatusConflict, "already exists")
	case errors.Is(err, domain.ErrEmptyCart):
		respondError(c, http.StatusBadRequest, "cart is empty")
	case errors.Is(err, domain.ErrPaymentMismatch):
		respondError(c, http.StatusBadRequest, "payment reference does not match this order")
	case errors.Is(err, domain.ErrPaymentIncomplete):
		respondError(c, http.StatusConflict, "payment has not completed")
	case errors.Is(err, domain.ErrInvalidTransition):
		respondError(c, http.StatusConflict, "order is not awaiting payment")
	case errors.Is(err, domain.ErrInvalidSignature):
		respondError(c, http.StatusBadRequest, "invalid signature")
	case errors.Is(err, accountsvc.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, accountsvc.ErrInvalidToken):
		respondError(c, http.StatusUnauthorized, "invalid token")
	case errors.Is(err, reviewsvc.ErrNotOwner):
		respondError(c, http.StatusForbidden, "not your review")
	default:
		a.logger.Printf("http: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		respondError(c, http.StatusInternalServerError, "internal error")
	}
}
