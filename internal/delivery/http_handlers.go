package delivery

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shieldboard/internal/domain"
	"shieldboard/internal/drilldown"
	"shieldboard/internal/infrastructure"
	"shieldboard/internal/presenter"
	"shieldboard/internal/usecase"
	"shieldboard/pkg/logger"
	"shieldboard/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// ViewConfig holds the display settings handlers need.
type ViewConfig struct {
	RecentSignupsLimit int
	DetailSignupsLimit int
	ProxyCacheControl  string
}

// handles HTTP requests
type HTTPHandlers struct {
	dashboard *usecase.DashboardService
	panel     *drilldown.Panel
	forwarder domain.DashboardForwarder
	view      ViewConfig
	logger    *logger.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// creates new HTTP handlers
func NewHTTPHandlers(
	dashboard *usecase.DashboardService,
	panel *drilldown.Panel,
	forwarder domain.DashboardForwarder,
	view ViewConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *HTTPHandlers {
	return &HTTPHandlers{
		dashboard: dashboard,
		panel:     panel,
		forwarder: forwarder,
		view:      view,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
	}
}

// StateResponse is the JSON view model of the dashboard.
type StateResponse struct {
	Loading   bool              `json:"loading"`
	Error     string            `json:"error,omitempty"`
	Draft     domain.Filters    `json:"draft"`
	Applied   domain.Filters    `json:"applied"`
	View      *presenter.View   `json:"view,omitempty"`
	Drilldown drilldown.State   `json:"drilldown"`
	Detail    *presenter.Detail `json:"detail,omitempty"`
	RequestID string            `json:"request_id"`
}

func (h *HTTPHandlers) buildState(c *gin.Context) StateResponse {
	state := h.dashboard.State(c.Request.Context())
	drill := h.panel.State()

	resp := StateResponse{
		Loading:   state.Loading,
		Error:     state.Error,
		Draft:     state.Draft,
		Applied:   state.Applied,
		Drilldown: drill,
		RequestID: c.GetString("request_id"),
	}

	if state.Snapshot == nil {
		return resp
	}

	opts := presenter.Options{
		RecentLimit: h.view.RecentSignupsLimit,
		DetailLimit: h.view.DetailSignupsLimit,
		Now:         h.now(),
	}
	view := presenter.Build(state.Snapshot, opts)
	for i := range view.Cards {
		view.Cards[i].Selected = drill.Phase == drilldown.PhaseOpen && view.Cards[i].Metric == drill.Metric
	}
	resp.View = &view
	if drill.Visible() {
		detail := presenter.BuildDetail(drill.Metric, state.Snapshot, opts)
		resp.Detail = &detail
	}
	return resp
}

// Index renders the dashboard page
func (h *HTTPHandlers) Index(c *gin.Context) {
	state := h.buildState(c)
	h.metrics.RecordView("page")

	c.HTML(http.StatusOK, "dashboard", newPageData(state))
}

// GetState returns the dashboard view model as JSON
func (h *HTTPHandlers) GetState(c *gin.Context) {
	state := h.buildState(c)
	h.metrics.RecordView("state")

	c.JSON(http.StatusOK, state)
}

// UpdateFilters edits the draft filters. Fields absent from the request keep
// their current draft value.
func (h *HTTPHandlers) UpdateFilters(c *gin.Context) {
	if !h.bindDraft(c) {
		return
	}
	h.respond(c)
}

// ApplyFilters copies the draft into the applied filters, optionally taking
// draft edits from the same request first.
func (h *HTTPHandlers) ApplyFilters(c *gin.Context) {
	if c.Request.ContentLength != 0 && !h.bindDraft(c) {
		return
	}

	applied := h.dashboard.Apply(c.Request.Context())
	h.logger.WithContext(c.Request.Context()).WithField("query", applied.QueryString()).Info("Filters applied via HTTP")

	h.respond(c)
}

// Refresh runs one load now and answers once it has finished. The load is
// not cancelled if the client goes away.
func (h *HTTPHandlers) Refresh(c *gin.Context) {
	ctx := context.WithoutCancel(c.Request.Context())
	if err := h.dashboard.Load(ctx, usecase.TriggerManual); errors.Is(err, usecase.ErrStopped) {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":      "Dashboard is shutting down",
			"request_id": c.GetString("request_id"),
		})
		return
	}
	h.respond(c)
}

// SelectMetric toggles the drill-down panel for a metric card
func (h *HTTPHandlers) SelectMetric(c *gin.Context) {
	metric, err := domain.ParseMetricKey(c.Param("metric"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid metric",
			"message":    err.Error(),
			"request_id": c.GetString("request_id"),
		})
		return
	}

	h.panel.Select(metric)
	h.respond(c)
}

// CloseDrilldown starts closing the drill-down panel
func (h *HTTPHandlers) CloseDrilldown(c *gin.Context) {
	h.panel.Close()
	h.respond(c)
}

// HealthCheck returns the health status of the service
func (h *HTTPHandlers) HealthCheck(c *gin.Context) {
	state := h.dashboard.State(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"service":      "shieldboard",
		"version":      Version,
		"has_snapshot": state.Snapshot != nil,
		"last_error":   state.Error,
		"request_id":   c.GetString("request_id"),
	})
}

// GetAPIInfo returns API v1 information and available endpoints
func (h *HTTPHandlers) GetAPIInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"api_version": "v1",
		"service":     "shieldboard",
		"version":     Version,
		"description": "Investor dashboard: filters, polling and derived metrics",
		"endpoints": gin.H{
			"state":     gin.H{"path": "/api/v1/state", "methods": []string{"GET"}},
			"filters":   gin.H{"path": "/api/v1/filters", "methods": []string{"POST"}, "parameters": filterParams},
			"apply":     gin.H{"path": "/api/v1/filters/apply", "methods": []string{"POST"}, "parameters": filterParams},
			"refresh":   gin.H{"path": "/api/v1/refresh", "methods": []string{"POST"}},
			"select":    gin.H{"path": "/api/v1/metrics/:metric/select", "methods": []string{"POST"}, "metrics": domain.MetricKeys},
			"close":     gin.H{"path": "/api/v1/drilldown/close", "methods": []string{"POST"}},
			"dashboard": gin.H{"path": "/api/dashboard", "methods": []string{"GET"}, "description": "Proxy to the backend origin"},
		},
		"request_id": c.GetString("request_id"),
	})
}

var filterParams = gin.H{
	"from":         "Optional: inclusive start date (YYYY-MM-DD)",
	"to":           "Optional: inclusive end date (YYYY-MM-DD)",
	"plan":         "all | free | pro",
	"provider":     "all | google | local",
	"status":       "Free-form, not sent to the backend",
	"subscription": "all | trialing | incomplete | active | canceled",
}

func (h *HTTPHandlers) bindDraft(c *gin.Context) bool {
	draft := h.dashboard.Draft()
	if err := c.ShouldBind(&draft); err != nil {
		h.badFilters(c, err)
		return false
	}
	if err := h.dashboard.SetDraft(draft); err != nil {
		h.badFilters(c, err)
		return false
	}
	return true
}

func (h *HTTPHandlers) badFilters(c *gin.Context, err error) {
	h.logger.WithContext(c.Request.Context()).WithError(err).Warn("Rejected filter update")
	c.JSON(http.StatusBadRequest, gin.H{
		"error":      "Invalid filters",
		"message":    err.Error(),
		"request_id": c.GetString("request_id"),
	})
}

// respond sends browsers posting the page forms back to the page, and API
// clients the new state.
func (h *HTTPHandlers) respond(c *gin.Context) {
	if isFormPost(c) {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.JSON(http.StatusOK, h.buildState(c))
}

func isFormPost(c *gin.Context) bool {
	ct := c.ContentType()
	return ct == gin.MIMEPOSTForm || strings.HasPrefix(ct, gin.MIMEMultipartPOSTForm)
}

// ProxyDashboard forwards /api/dashboard to the backend origin
func (h *HTTPHandlers) ProxyDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	log := h.logger.WithContext(ctx)

	if c.Request.Method != http.MethodGet {
		c.Header("Allow", http.MethodGet)
		c.Status(http.StatusMethodNotAllowed)
		h.metrics.RecordProxyResponse("405")
		return
	}

	resp, err := h.forwarder.ForwardDashboard(ctx, c.Request.URL.RawQuery)
	switch {
	case errors.Is(err, infrastructure.ErrBackendNotConfigured):
		log.Error("BACKEND_URL is not set")
		h.metrics.RecordProxyResponse("503")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Backend URL not configured"})
		return
	case err != nil:
		log.WithError(err).Error("Dashboard proxy error")
		h.metrics.RecordProxyResponse("502")
		c.JSON(http.StatusBadGateway, gin.H{"error": domain.ErrFetchFailed.Error()})
		return
	}

	if h.view.ProxyCacheControl != "" {
		c.Header("Cache-Control", h.view.ProxyCacheControl)
	}
	h.metrics.RecordProxyResponse(strconv.Itoa(resp.StatusCode))
	c.Data(resp.StatusCode, "application/json; charset=utf-8", resp.Body)
}
