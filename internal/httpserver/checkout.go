package httpserver

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"fempowered-storefront/internal/checkout"
	"fempowered-storefront/internal/domain"
)

// maxWebhookBody caps the webhook payload read; Stripe events are small.
const maxWebhookBody = 1 << 16

type addressRequest struct {
	Line1      string `json:"line1" binding:"required"`
	Line2      string `json:"line2"`
	PostalCode string `json:"postalCode" binding:"required"`
	City       string `json:"city" binding:"required"`
	Country    string `json:"country" binding:"required,iso3166_1_alpha2"`
}

type checkoutRequest struct {
	FullName              string          `json:"fullName" binding:"required"`
	Email                 string          `json:"email" binding:"required,email"`
	Phone                 string          `json:"phone"`
	Shipping              addressRequest  `json:"shipping" binding:"required"`
	BillingSameAsShipping bool            `json:"billingSameAsShipping"`
	Billing               *addressRequest `json:"billing"`
	ShippingMethod        string          `json:"shippingMethod" binding:"required,oneof=standard express"`
}

type confirmRequest struct {
	PaymentIntentID string `json:"paymentIntentId" binding:"required"`
}

func (r addressRequest) toDomain() domain.Address {
	return domain.Address{
		Line1:      r.Line1,
		Line2:      r.Line2,
		PostalCode: r.PostalCode,
		City:       r.City,
		Country:    r.Country,
	}
}

// placeOrder snapshots the session cart into a pending order.
func (a *api) placeOrder(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if !req.BillingSameAsShipping && req.Billing == nil {
		respondError(c, http.StatusBadRequest, "billing address is required")
		return
	}
	method, err := domain.ParseShippingMethod(req.ShippingMethod)
	if err != nil {
		respondError(c, http.StatusBadRequest, "unknown shipping method")
		return
	}

	in := checkout.Input{
		FullName:              req.FullName,
		Email:                 req.Email,
		Phone:                 req.Phone,
		Shipping:              req.Shipping.toDomain(),
		Method:                method,
		BillingSameAsShipping: req.BillingSameAsShipping,
	}
	if req.Billing != nil {
		in.Billing = req.Billing.toDomain()
	}

	store := a.cartFromContext(c)
	order, err := a.deps.Checkout.PlaceOrder(c.Request.Context(), in, store, currentUserID(c))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	sessionFromContext(c).rememberOrder(order.ID)
	c.JSON(http.StatusCreated, a.orderResponse(order))
}

// startPayment creates the provider intent for the order total and hands the
// client secret to the frontend.
func (a *api) startPayment(c *gin.Context) {
	order, ok := a.orderFromPath(c)
	if !ok {
		return
	}
	if order.Status != domain.OrderPending {
		respondError(c, http.StatusConflict, "order is not awaiting payment")
		return
	}
	secret, err := a.deps.Checkout.StartPayment(c.Request.Context(), order)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"clientSecret":   secret,
		"publishableKey": a.cfg.Stripe.PublishableKey,
		"amountCents":    order.TotalCents,
		"currency":       order.Currency,
	})
}

// confirmPayment is the synchronous confirmation path; the webhook below is
// the asynchronous one. Both converge on the same guarded transition.
func (a *api) confirmPayment(c *gin.Context) {
	order, ok := a.orderFromPath(c)
	if !ok {
		return
	}
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	confirmed, err := a.deps.Checkout.Confirm(c.Request.Context(), order.ID, req.PaymentIntentID)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, a.orderResponse(confirmed))
}

func (a *api) getOrder(c *gin.Context) {
	order, ok := a.orderFromPath(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, a.orderResponse(order))
}

func (a *api) stripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		respondError(c, http.StatusBadRequest, "unreadable payload")
		return
	}
	signature := c.GetHeader("Stripe-Signature")
	if err := a.deps.Checkout.HandleProviderEvent(c.Request.Context(), payload, signature); err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (a *api) orderFromPath(c *gin.Context) (*domain.Order, bool) {
	order, err := a.deps.Checkout.GetOrder(c.Request.Context(), c.Param("number"))
	if err != nil {
		a.respondServiceError(c, err)
		return nil, false
	}
	if !canViewOrder(c, order) {
		// Someone else's order reads as missing, never as forbidden.
		a.respondServiceError(c, domain.ErrNotFound)
		return nil, false
	}
	return order, true
}

// canViewOrder restricts an order to the session that placed it, the
// authenticated owner, or an authenticated user whose email matches a still
// unclaimed guest order.
func canViewOrder(c *gin.Context, order *domain.Order) bool {
	if sess := sessionFromContext(c); sess != nil && sess.ownsOrder(order.ID) {
		return true
	}
	u, ok := currentUser(c)
	if !ok {
		return false
	}
	if order.UserID != nil {
		return *order.UserID == u.ID
	}
	return strings.EqualFold(order.Email, u.Email)
}

func (a *api) orderResponse(order *domain.Order) gin.H {
	return gin.H{
		"order":       order,
		"orderNumber": order.Number(a.deps.Checkout.OrderPrefix()),
	}
}
