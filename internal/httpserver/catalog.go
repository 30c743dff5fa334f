package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fempowered-storefront/internal/domain"
	catalogsvc "fempowered-storefront/internal/service/catalog"
)

func (a *api) listProducts(c *gin.Context) {
	in := catalogsvc.ListInput{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Color:    c.Query("color"),
		Sort:     c.Query("sort"),
		Limit:    intQuery(c, "limit"),
		Offset:   intQuery(c, "offset"),
	}
	products, err := a.deps.Catalog.List(c.Request.Context(), in)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (a *api) getProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	product, err := a.deps.Catalog.Get(c.Request.Context(), id)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	reviews, err := a.deps.Reviews.ListForProduct(c.Request.Context(), id)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	sizes := []string{}
	if product.HasSizes {
		sizes = domain.Sizes
	}
	c.JSON(http.StatusOK, gin.H{"product": product, "sizes": sizes, "reviews": reviews})
}

func (a *api) getFacets(c *gin.Context) {
	facets, err := a.deps.Catalog.Facets(c.Request.Context())
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, facets)
}

func intQuery(c *gin.Context, key string) int {
	v := c.Query(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// pathID parses a positive numeric path parameter, responding 400 itself
// when the value is unusable.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
