package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"go-account-service/internal/service"
	"go-account-service/internal/transport/http/handler"
	mdw "go-account-service/internal/transport/http/middleware"
	resp "go-account-service/internal/transport/http/response"
)

// NewAPIEngine builds the user-facing engine: /user/create and
// /user/token are public, /user/me requires a bearer token.
func NewAPIEngine(l *zap.Logger, svc *service.AccountService) *gin.Engine {
	r := newEngine(l)

	api := r.Group("/api/v1")
	h := handler.NewUserHandler(svc)

	api.POST("/user/create", h.Create)
	api.POST("/user/token", h.Token)
	api.GET("/user/me", h.Me)
	api.PATCH("/user/me", h.UpdateMe)

	return r
}

// newEngine wires the shared middleware chain and the operational
// endpoints used by both the api and admin servers.
func newEngine(l *zap.Logger) *gin.Engine {
	r := gin.New()
	// /user/me must answer 405, not 404, for unsupported methods.
	r.HandleMethodNotAllowed = true

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		ginzap.RecoveryWithZap(l, true),
		cors.Default(),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, resp.Error(http.StatusMethodNotAllowed, "method not allowed"))
	})

	return r
}
