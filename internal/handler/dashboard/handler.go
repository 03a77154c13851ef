package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-crm/internal/service/dashboard"
	"github.com/jwalitptl/clinic-crm/pkg/httputil"
)

type Handler struct {
	service *dashboard.Service
}

func NewHandler(service *dashboard.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	dash := r.Group("/dashboard")
	{
		dash.GET("/stats", h.GetStats)
		dash.GET("/appointments-overview", h.GetAppointmentsOverview)
		dash.GET("/client-stats", h.GetClientStats)
	}
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.service.GetStats(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, stats)
}

func (h *Handler) GetAppointmentsOverview(c *gin.Context) {
	overview, err := h.service.GetAppointmentsOverview(c.Request.Context(), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, overview)
}

func (h *Handler) GetClientStats(c *gin.Context) {
	stats, err := h.service.GetClientStats(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, stats)
}
