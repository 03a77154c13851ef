package client

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-crm/internal/handler"
	"github.com/jwalitptl/clinic-crm/internal/model"
	"github.com/jwalitptl/clinic-crm/internal/service/client"
	apperrors "github.com/jwalitptl/clinic-crm/pkg/errors"
	"github.com/jwalitptl/clinic-crm/pkg/httputil"
)

type Handler struct {
	service *client.Service
}

func NewHandler(service *client.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	clients := r.Group("/clients")
	{
		clients.GET("", h.ListClients)
		clients.GET("/search", h.SearchClients)
		clients.POST("", h.CreateClient)
		clients.GET("/:id", h.GetClient)
		clients.PUT("/:id", h.UpdateClient)
		clients.DELETE("/:id", h.DeleteClient)
	}
}

func (h *Handler) CreateClient(c *gin.Context) {
	var req model.CreateClientRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	cl, err := h.service.CreateClient(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, cl)
}

func (h *Handler) GetClient(c *gin.Context) {
	id, err := handler.ParseID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	cl, err := h.service.GetClient(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, cl)
}

func (h *Handler) ListClients(c *gin.Context) {
	clients, err := h.service.ListClients(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, clients)
}

// SearchClients filters by ?query= (name, email, phone) and ?status=.
func (h *Handler) SearchClients(c *gin.Context) {
	var filter model.ClientFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid query", err))
		return
	}

	clients, err := h.service.SearchClients(c.Request.Context(), filter.Query, filter.Status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, clients)
}

func (h *Handler) UpdateClient(c *gin.Context) {
	id, err := handler.ParseID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.UpdateClientRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	cl, err := h.service.UpdateClient(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, cl)
}

func (h *Handler) DeleteClient(c *gin.Context) {
	id, err := handler.ParseID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.service.DeleteClient(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithMessage(c, http.StatusOK, "Client deleted successfully")
}
