package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fempowered-storefront/internal/cart"
	"fempowered-storefront/internal/domain"
)

type cartLineRequest struct {
	ProductID int64  `json:"productId" binding:"required,gt=0"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size" binding:"omitempty,oneof=XS S M L XL"`
}

type cartRemoveRequest struct {
	ProductID int64  `json:"productId" binding:"required,gt=0"`
	Size      string `json:"size" binding:"omitempty,oneof=XS S M L XL"`
}

func (a *api) getCart(c *gin.Context) {
	a.respondCart(c, a.cartFromContext(c))
}

// addToCart increments the line for (product, size), capturing the current
// catalog price on first add.
func (a *api) addToCart(c *gin.Context) {
	a.mutateCartLine(c, false)
}

// updateCart replaces the line quantity outright; zero or less removes it.
func (a *api) updateCart(c *gin.Context) {
	a.mutateCartLine(c, true)
}

func (a *api) mutateCartLine(c *gin.Context, override bool) {
	var req cartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if !override && req.Quantity == 0 {
		req.Quantity = 1
	}

	product, err := a.deps.Products.GetByID(c.Request.Context(), req.ProductID)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	if product.HasSizes && req.Size == "" {
		respondError(c, http.StatusBadRequest, "size is required for this product")
		return
	}
	if !product.HasSizes && req.Size != "" {
		respondError(c, http.StatusBadRequest, "product has no sizes")
		return
	}

	store := a.cartFromContext(c)
	store.Add(product, req.Quantity, req.Size, override)
	a.respondCart(c, store)
}

func (a *api) removeFromCart(c *gin.Context) {
	var req cartRemoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	store := a.cartFromContext(c)
	store.Remove(req.ProductID, req.Size)
	a.respondCart(c, store)
}

func (a *api) resetCart(c *gin.Context) {
	store := a.cartFromContext(c)
	store.Clear()
	a.respondCart(c, store)
}

func (a *api) respondCart(c *gin.Context, store *cart.Store) {
	lines, err := store.Lines(c.Request.Context())
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	var total int64
	for _, line := range lines {
		total += line.TotalCents
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	c.JSON(http.StatusOK, gin.H{
		"items":      lines,
		"totalCents": total,
		"currency":   a.cfg.Currency,
		"count":      store.Count(),
	})
}
