package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fempowered-storefront/internal/domain"
	reviewsvc "fempowered-storefront/internal/service/review"
)

func (a *api) listReviews(c *gin.Context) {
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}
	reviews, err := a.deps.Reviews.ListForProduct(c.Request.Context(), productID)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// myReview returns the authenticated user's own review of a product, so the
// frontend can offer edit instead of a duplicate create.
func (a *api) myReview(c *gin.Context) {
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}
	u, _ := currentUser(c)
	rv, err := a.deps.Reviews.ForUser(c.Request.Context(), u, productID)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"review": rv})
}

func (a *api) createReview(c *gin.Context) {
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}
	u, _ := currentUser(c)
	var in reviewsvc.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	created, err := a.deps.Reviews.Create(c.Request.Context(), u, productID, in)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"review": created})
}

func (a *api) updateReview(c *gin.Context) {
	reviewID, ok := pathID(c, "id")
	if !ok {
		return
	}
	u, _ := currentUser(c)
	var in reviewsvc.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	updated, err := a.deps.Reviews.Update(c.Request.Context(), u, reviewID, in)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"review": updated})
}

func (a *api) deleteReview(c *gin.Context) {
	reviewID, ok := pathID(c, "id")
	if !ok {
		return
	}
	u, _ := currentUser(c)
	if err := a.deps.Reviews.Delete(c.Request.Context(), u, reviewID); err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
