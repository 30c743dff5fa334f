package httpserver

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fempowered-storefront/internal/cart"
	"fempowered-storefront/internal/domain"
	productrepo "fempowered-storefront/internal/repository/product"
	sessionrepo "fempowered-storefront/internal/repository/session"
)

const (
	sessionCookie = "storefront_session"
	sessionMaxAge = 30 * 24 * 60 * 60

	sessionCtxKey = "httpserver.session"

	// sessionOrdersKey holds the ids of orders placed from this session.
	sessionOrdersKey = "orders"
)

// requestSession is the per-request view of one browser session. It
// implements cart.Session; writes stay in memory until the middleware
// persists them after the handler ran.
type requestSession struct {
	token    string
	data     sessionrepo.Data
	modified bool
	logger   *log.Logger
}

func (s *requestSession) Get(key string) (json.RawMessage, bool) {
	raw, ok := s.data[key]
	return raw, ok
}

func (s *requestSession) Set(key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Printf("session: marshal key %q: %v", key, err)
		return
	}
	s.data[key] = raw
}

func (s *requestSession) MarkModified() {
	s.modified = true
}

// rememberOrder records a placed order id so the session that created an
// order is the one allowed to read it back. Display numbers are sequential
// and must not be enough to fetch someone else's order.
func (s *requestSession) rememberOrder(id int64) {
	s.Set(sessionOrdersKey, append(s.orderIDs(), id))
	s.MarkModified()
}

func (s *requestSession) ownsOrder(id int64) bool {
	for _, v := range s.orderIDs() {
		if v == id {
			return true
		}
	}
	return false
}

func (s *requestSession) orderIDs() []int64 {
	raw, ok := s.Get(sessionOrdersKey)
	if !ok {
		return nil
	}
	var ids []int64
	if err := json.Unmarshal(raw, &ids); err != nil {
		s.logger.Printf("session: malformed order list: %v", err)
		return nil
	}
	return ids
}

// sessionMiddleware loads the session for the request's cookie, minting a
// fresh token when there is none, and saves it back when a handler marked it
// modified.
func sessionMiddleware(sessions sessionrepo.Repository, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessionCookie)
		if err != nil || token == "" {
			token = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(sessionCookie, token, sessionMaxAge, "/", "", false, true)
		}

		data, err := sessions.Get(c.Request.Context(), token)
		if err != nil {
			logger.Printf("session: load %s: %v", token, err)
			respondError(c, http.StatusInternalServerError, "internal error")
			c.Abort()
			return
		}
		sess := &requestSession{token: token, data: data, logger: logger}
		c.Set(sessionCtxKey, sess)

		c.Next()

		if sess.modified {
			if err := sessions.Save(c.Request.Context(), token, sess.data); err != nil {
				logger.Printf("session: save %s: %v", token, err)
			}
		}
	}
}

func sessionFromContext(c *gin.Context) *requestSession {
	v, _ := c.Get(sessionCtxKey)
	sess, _ := v.(*requestSession)
	return sess
}

// catalogAdapter exposes the product repository under the cart's narrower
// catalog contract.
type catalogAdapter struct {
	repo productrepo.Repository
}

func (a catalogAdapter) FindProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return a.repo.GetByID(ctx, id)
}

func (a catalogAdapter) FindProductByName(ctx context.Context, name string) (*domain.Product, error) {
	return a.repo.GetByName(ctx, name)
}

// cartFromContext builds the session-backed cart store for this request.
func (a *api) cartFromContext(c *gin.Context) *cart.Store {
	return cart.New(sessionFromContext(c), catalogAdapter{repo: a.deps.Products}, a.logger)
}
