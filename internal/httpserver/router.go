package httpserver

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"fempowered-storefront/internal/config"
)

// buildRouter wires routes for the API.
func buildRouter(cfg config.Config, logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Stripe-Signature"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	a := &api{cfg: cfg, logger: logger, deps: deps}

	apiGroup := router.Group("/api")
	apiGroup.Use(sessionMiddleware(deps.Sessions, logger))
	apiGroup.Use(authMiddleware(deps.Accounts, false))
	{
		apiGroup.GET("/products", a.listProducts)
		apiGroup.GET("/products/:id", a.getProduct)
		apiGroup.GET("/products/:id/reviews", a.listReviews)
		apiGroup.GET("/facets", a.getFacets)

		apiGroup.GET("/cart", a.getCart)
		apiGroup.POST("/cart/add", a.addToCart)
		apiGroup.POST("/cart/update", a.updateCart)
		apiGroup.POST("/cart/remove", a.removeFromCart)
		apiGroup.POST("/cart/reset", a.resetCart)

		apiGroup.POST("/checkout", a.placeOrder)
		apiGroup.POST("/checkout/:number/payment", a.startPayment)
		apiGroup.POST("/checkout/:number/confirm", a.confirmPayment)
		apiGroup.GET("/orders/:number", a.getOrder)

		apiGroup.POST("/auth/signup", a.signup)
		apiGroup.POST("/auth/login", a.login)
	}

	authed := apiGroup.Group("")
	authed.Use(authMiddleware(deps.Accounts, true))
	{
		authed.POST("/auth/logout", a.logout)
		authed.GET("/account/address", a.getAddress)
		authed.PUT("/account/address", a.putAddress)
		authed.GET("/account/orders", a.listOrders)

		authed.GET("/products/:id/reviews/mine", a.myReview)
		authed.POST("/products/:id/reviews", a.createReview)
		authed.PUT("/reviews/:id", a.updateReview)
		authed.DELETE("/reviews/:id", a.deleteReview)
	}

	// Stripe signs the raw payload; the webhook skips the session layer.
	router.POST("/webhooks/stripe", a.stripeWebhook)

	return router
}

// api groups the handler dependencies.
type api struct {
	cfg    config.Config
	logger *log.Logger
	deps   Deps
}
