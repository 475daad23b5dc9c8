package httpadapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/verticalview/client-portal/internal/config"
	"github.com/verticalview/client-portal/internal/core/domain"
	"github.com/verticalview/client-portal/internal/core/ports"
	"github.com/verticalview/client-portal/internal/observability/metrics"
)

const (
	metricsService = "api"
	maxBodyBytes   = 1 << 20
)

type Router struct {
	cfg        config.Config
	dashboards ports.DashboardLoader
	reviews    ports.ReviewService
	records    ports.RecordService
	exporter   ports.DashboardExporter

	metrics  *metrics.HTTPServerMetrics
	breakers func() map[string]string
	now      func() time.Time
}

type Option func(*Router)

func WithMetrics(m *metrics.HTTPServerMetrics) Option {
	return func(rt *Router) { rt.metrics = m }
}

// WithBreakerStates reports circuit breaker states on /healthz.
func WithBreakerStates(fn func() map[string]string) Option {
	return func(rt *Router) { rt.breakers = fn }
}

func NewRouter(
	cfg config.Config,
	dashboards ports.DashboardLoader,
	reviews ports.ReviewService,
	records ports.RecordService,
	exporter ports.DashboardExporter,
	opts ...Option,
) *Router {
	rt := &Router{
		cfg:        cfg,
		dashboards: dashboards,
		reviews:    reviews,
		records:    records,
		exporter:   exporter,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("GET /openapi.yaml", rt.openAPIDocument)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	mux.HandleFunc("POST /api/airtable", rt.recordFacade)
	mux.HandleFunc("GET /api/client", rt.clientDashboard)
	if rt.exporter != nil {
		mux.HandleFunc("GET /api/client/export", rt.exportDashboard)
	}
	mux.HandleFunc("POST /api/feedback", rt.createFeedback)
	mux.HandleFunc("PATCH /api/update-video", rt.updateVideo)
	mux.HandleFunc("POST /api/videos/{id}/validate", rt.validateVideo)
	mux.HandleFunc("POST /api/videos/{id}/revision", rt.requestRevision)

	var handler http.Handler = mux
	if rt.cfg.APIOpenAPIValidation {
		validator, err := newRequestValidator()
		if err != nil {
			slog.Error("openapi_validation_disabled", "error", err)
		} else {
			handler = validator.middleware(handler)
		}
	}
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, time.Duration(rt.cfg.APIBackpressureWaitMS)*time.Millisecond)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(metricsService, handler)
	}
	handler = corsMiddleware(handler)
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	payload := map[string]any{"status": "ok"}
	if rt.breakers != nil {
		payload["breakers"] = rt.breakers()
	}
	writeJSON(w, http.StatusOK, payload)
}

func (rt *Router) openAPIDocument(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPISpec)
}

type facadeRequest struct {
	Action        string        `json:"action"`
	TableName     string        `json:"tableName"`
	FilterFormula string        `json:"filterFormula"`
	RecordID      string        `json:"recordId"`
	Fields        domain.Fields `json:"fields"`
}

func (rt *Router) recordFacade(w http.ResponseWriter, r *http.Request) {
	var req facadeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	switch req.Action {
	case "fetch":
		records, err := rt.records.List(ctx, req.TableName, domain.ListOptions{Filter: req.FilterFormula})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"records": records})
	case "create":
		record, err := rt.records.Create(ctx, req.TableName, req.Fields)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, record)
	case "update":
		record, err := rt.records.Update(ctx, req.TableName, req.RecordID, req.Fields)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, record)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Action non reconnue"})
	}
}

type videoView struct {
	domain.Video
	StatusLabel       string `json:"statusLabel"`
	NeedsClientAction bool   `json:"needsClientAction"`
	IsComplete        bool   `json:"isComplete"`
	EmbedURL          string `json:"embedUrl,omitempty"`
	TrackerStep       int    `json:"trackerStep"`
}

type teamView struct {
	domain.TeamMember
	Initials     string `json:"initials"`
	WhatsAppLink string `json:"whatsappLink,omitempty"`
}

type dashboardView struct {
	Client         domain.Client     `json:"client"`
	Contracts      []domain.Contract `json:"contracts"`
	Videos         []videoView       `json:"videos"`
	Team           []teamView        `json:"team"`
	PendingReviews int               `json:"pendingReviews"`
	FetchedAt      time.Time         `json:"fetchedAt"`
}

func newDashboardView(d *domain.Dashboard) dashboardView {
	view := dashboardView{
		Client:         d.Client,
		Contracts:      d.Contracts,
		Videos:         make([]videoView, 0, len(d.Videos)),
		Team:           make([]teamView, 0, len(d.Team)),
		PendingReviews: d.PendingReviews(),
		FetchedAt:      d.FetchedAt,
	}
	if view.Contracts == nil {
		view.Contracts = []domain.Contract{}
	}
	for _, v := range d.Videos {
		view.Videos = append(view.Videos, videoView{
			Video:             v,
			StatusLabel:       domain.DisplayLabel(v.Status),
			NeedsClientAction: v.Stage.NeedsClientAction(),
			IsComplete:        v.Stage.IsComplete(),
			EmbedURL:          domain.EmbedURL(v.VideoURL),
			TrackerStep:       v.Stage.TrackerStep(),
		})
	}
	for _, m := range d.Team {
		view.Team = append(view.Team, teamView{
			TeamMember:   m,
			Initials:     m.Initials(),
			WhatsAppLink: m.WhatsAppLink(),
		})
	}
	return view
}

func (rt *Router) clientDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := rt.loadDashboard(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newDashboardView(dashboard))
}

func (rt *Router) exportDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := rt.loadDashboard(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := rt.exporter.Export(&buf, dashboard); err != nil {
		writeError(w, fmt.Errorf("export dashboard: %w", err))
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordExport(metricsService, "xlsx")
	}

	filename := fmt.Sprintf("dashboard-%s-%s.xlsx", dashboard.Client.ID, rt.now().Format("2006-01-02"))
	w.Header().Set("Content-Type", rt.exporter.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (rt *Router) loadDashboard(r *http.Request) (*domain.Dashboard, error) {
	clientID := strings.TrimSpace(r.URL.Query().Get("clientId"))
	if clientID == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, "load dashboard", "clientId is required")
	}
	return rt.dashboards.LoadByID(r.Context(), clientID)
}

func (rt *Router) createFeedback(w http.ResponseWriter, r *http.Request) {
	var req domain.Feedback
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	record, err := rt.reviews.SubmitFeedback(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (rt *Router) updateVideo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VideoID string `json:"videoId"`
		Status  string `json:"status"`
		Comment string `json:"comment"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.VideoID) == "" || strings.TrimSpace(req.Status) == "" {
		writeError(w, domain.NewError(domain.ErrInvalidInput, "update video", "videoId and status are required"))
		return
	}
	video, err := rt.reviews.SetStatus(r.Context(), req.VideoID, req.Status, req.Comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, video)
}

func (rt *Router) validateVideo(w http.ResponseWriter, r *http.Request) {
	video, err := rt.reviews.Validate(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, video)
}

func (rt *Router) requestRevision(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Comment string `json:"comment"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	video, err := rt.reviews.RequestRevision(r.Context(), r.PathValue("id"), req.Comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, video)
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.NewError(domain.ErrInvalidInput, "decode request", "request body is required")
		}
		return domain.WrapError(domain.ErrInvalidInput, "decode request", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
