package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-account-service/internal/service"
	"go-account-service/internal/transport/http/handler"
	mdw "go-account-service/internal/transport/http/middleware"
)

// NewAdminEngine builds the staff-only engine. The same opaque bearer
// tokens are used, with an additional staff check.
func NewAdminEngine(l *zap.Logger, svc *service.AccountService) *gin.Engine {
	r := newEngine(l)

	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthToken(svc.Validator(), true))

	h := handler.NewAdminHandler(svc)
	admin.GET("/users", h.List)
	admin.POST("/users", h.CreateSuperuser)
	admin.POST("/users/:id/deactivate", h.Deactivate)

	return r
}
