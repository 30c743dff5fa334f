package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fempowered-storefront/internal/domain"
	accountsvc "fempowered-storefront/internal/service/account"
)

type signupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"fullName"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type addressProfileRequest struct {
	FullName              string          `json:"fullName"`
	Email                 string          `json:"email" binding:"omitempty,email"`
	Phone                 string          `json:"phone"`
	Shipping              addressRequest  `json:"shipping" binding:"required"`
	BillingSameAsShipping bool            `json:"billingSameAsShipping"`
	Billing               *addressRequest `json:"billing"`
}

func (a *api) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	u, err := a.deps.Accounts.Signup(c.Request.Context(), accountsvc.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		// Weak passwords come back as plain errors with a usable message.
		if !a.isKnownError(err) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": u})
}

func (a *api) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	u, token, err := a.deps.Accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":      u,
		"token":     token,
		"expiresIn": a.deps.Accounts.AccessTTLSeconds(),
	})
}

func (a *api) logout(c *gin.Context) {
	if err := a.deps.Accounts.Logout(c.Request.Context(), bearerToken(c)); err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *api) getAddress(c *gin.Context) {
	u, _ := currentUser(c)
	address, err := a.deps.Accounts.Address(c.Request.Context(), u.ID)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": address})
}

func (a *api) putAddress(c *gin.Context) {
	u, _ := currentUser(c)
	var req addressProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if !req.BillingSameAsShipping && req.Billing == nil {
		respondError(c, http.StatusBadRequest, "billing address is required")
		return
	}
	profile := domain.UserAddress{
		UserID:                u.ID,
		FullName:              req.FullName,
		Email:                 req.Email,
		Phone:                 req.Phone,
		Shipping:              req.Shipping.toDomain(),
		BillingSameAsShipping: req.BillingSameAsShipping,
	}
	if req.Billing != nil {
		profile.Billing = req.Billing.toDomain()
	}
	if err := a.deps.Accounts.SaveAddress(c.Request.Context(), profile); err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": profile})
}

func (a *api) listOrders(c *gin.Context) {
	u, _ := currentUser(c)
	orders, err := a.deps.Accounts.Orders(c.Request.Context(), u)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	prefix := a.deps.Checkout.OrderPrefix()
	out := make([]gin.H, 0, len(orders))
	for i := range orders {
		out = append(out, gin.H{
			"order":       orders[i],
			"orderNumber": orders[i].Number(prefix),
		})
	}
	c.JSON(http.StatusOK, gin.H{"orders": out})
}

// isKnownError reports whether respondServiceError has a mapping for err.
func (a *api) isKnownError(err error) bool {
	for _, known := range []error{
		domain.ErrNotFound, domain.ErrAlreadyExists, domain.ErrEmptyCart,
		domain.ErrPaymentMismatch, domain.ErrPaymentIncomplete,
		domain.ErrInvalidSignature,
		accountsvc.ErrInvalidCredentials, accountsvc.ErrInvalidToken,
	} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}
