package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-account-service/internal/domain"
	"go-account-service/internal/service"
	resp "go-account-service/internal/transport/http/response"
)

// AdminHandler exposes the staff-only surface: listing accounts,
// creating superusers and deactivating accounts.
type AdminHandler struct {
	svc *service.AccountService
}

func NewAdminHandler(svc *service.AccountService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

type adminUserRow struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"isActive"`
	IsStaff   bool      `json:"isStaff"`
	CreatedAt time.Time `json:"createdAt"`
}

// List handles GET /users.
func (h *AdminHandler) List(c *gin.Context) {
	var in struct {
		Offset int    `form:"offset,default=0"`
		Limit  int    `form:"limit,default=20"`
		Q      string `form:"q"`
	}
	if err := c.ShouldBindQuery(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	users, total, err := h.svc.ListUsers(c.Request.Context(), in.Offset, in.Limit, in.Q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, "list users failed"))
		return
	}
	items := make([]adminUserRow, 0, len(users))
	for _, u := range users {
		items = append(items, adminUserRow{
			ID: u.ID, Email: u.Email, Name: u.Name,
			IsActive: u.IsActive, IsStaff: u.IsStaff, CreatedAt: u.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, resp.OK(gin.H{"total": total, "items": items}))
}

// CreateSuperuser handles POST /users.
func (h *AdminHandler) CreateSuperuser(c *gin.Context) {
	var in struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	u, err := h.svc.CreateSuperuser(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp.OK(gin.H{"id": u.ID, "email": u.Email}))
}

// Deactivate handles POST /users/:id/deactivate. The account's tokens
// are revoked in the same call, killing existing sessions.
func (h *AdminHandler) Deactivate(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, "missing id"))
		return
	}
	if err := h.svc.Deactivate(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, resp.Error(resp.CodeNotFound, "user not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, "deactivate failed"))
		return
	}
	c.JSON(http.StatusOK, resp.OK(gin.H{"id": id}))
}
