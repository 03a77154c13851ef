package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-crm/internal/handler"
	"github.com/jwalitptl/clinic-crm/internal/middleware"
	"github.com/jwalitptl/clinic-crm/internal/model"
	"github.com/jwalitptl/clinic-crm/internal/service/auth"
	pkgauth "github.com/jwalitptl/clinic-crm/pkg/auth"
	apperrors "github.com/jwalitptl/clinic-crm/pkg/errors"
	"github.com/jwalitptl/clinic-crm/pkg/httputil"
)

type Handler struct {
	svc          *auth.Service
	secureCookie bool
}

// NewHandler builds the auth endpoints. secureCookie marks the session
// cookie Secure, which browsers only honour over HTTPS.
func NewHandler(svc *auth.Service, secureCookie bool) *Handler {
	return &Handler{svc: svc, secureCookie: secureCookie}
}

// RegisterRoutes mounts login and logout publicly and /me behind
// authenticate.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authenticate gin.HandlerFunc) {
	routes := r.Group("/auth")
	{
		routes.POST("/login", h.Login)
		routes.POST("/logout", h.Logout)
		routes.GET("/me", authenticate, h.Me)
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	session, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.setCookie(c, session.Token, int(h.svc.TokenTTL().Seconds()))
	httputil.RespondWithSuccess(c, http.StatusOK, session)
}

// Logout only clears the cookie. The token itself stays valid until it
// expires.
func (h *Handler) Logout(c *gin.Context) {
	h.setCookie(c, "", -1)
	httputil.RespondWithMessage(c, http.StatusOK, "Logged out successfully")
}

func (h *Handler) Me(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized("authentication required", nil))
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, claims.Profile())
}

func (h *Handler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(pkgauth.CookieName, value, maxAge, "/", "", h.secureCookie, true)
}
