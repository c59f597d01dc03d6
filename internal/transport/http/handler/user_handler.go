package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-account-service/internal/service"
	resp "go-account-service/internal/transport/http/response"
)

// UserHandler exposes the self-service account endpoints. The service
// is the authorization boundary; handlers only shape requests and
// responses.
type UserHandler struct {
	svc *service.AccountService
}

func NewUserHandler(svc *service.AccountService) *UserHandler {
	return &UserHandler{svc: svc}
}

type userOut struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Create handles POST /user/create.
func (h *UserHandler) Create(c *gin.Context) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name" binding:"omitempty,max=255"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	u, err := h.svc.Register(c.Request.Context(), in.Email, in.Password, in.Name)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp.OK(userOut{Email: u.Email, Name: u.Name}))
}

// Token handles POST /user/token.
func (h *UserHandler) Token(c *gin.Context) {
	var in struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	t, err := h.svc.Authenticate(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(gin.H{"token": t.Value}))
}

// Me handles GET /user/me.
func (h *UserHandler) Me(c *gin.Context) {
	p, err := h.svc.GetProfile(c.Request.Context(), bearerToken(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(p))
}

// UpdateMe handles PATCH /user/me.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var in service.ProfilePatch
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	p, err := h.svc.UpdateProfile(c.Request.Context(), bearerToken(c), in)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(p))
}

func bearerToken(c *gin.Context) string {
	ah := c.GetHeader("Authorization")
	if !strings.HasPrefix(ah, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(ah, "Bearer ")
}

// writeErr maps service errors to the response envelope. Anything not
// explicitly recognized becomes a 500 without leaking detail.
func writeErr(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, resp.ErrorData(resp.CodeBadRequest, "validation failed", ve))
	case errors.Is(err, service.ErrAuthentication):
		c.JSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, "internal error"))
	}
}
