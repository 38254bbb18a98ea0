// Package chi exposes the building insights API over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sathizz7/Street-View-Analysis/internal/domain"
	"github.com/sathizz7/Street-View-Analysis/internal/metrics"
	healthuc "github.com/sathizz7/Street-View-Analysis/internal/usecase/health"
	insightuc "github.com/sathizz7/Street-View-Analysis/internal/usecase/insight"
	resolveuc "github.com/sathizz7/Street-View-Analysis/internal/usecase/resolve"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type errorCode string

const (
	codeBadRequest         errorCode = "bad_request"
	codeValidationFailed   errorCode = "validation_failed"
	codeUnauthorized       errorCode = "unauthorized"
	codeBuildingNotFound   errorCode = "building_not_found"
	codeInvalidCoordinates errorCode = "invalid_coordinates"
	codeImageryUnavailable errorCode = "imagery_unavailable"
	codeInsightProviderErr errorCode = "insight_provider_error"
	codeInternalError      errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// DistanceBounds clamps client-supplied resolution distances.
type DistanceBounds struct {
	DefaultMeters float64
	CapMeters     float64
}

// Server holds the HTTP handlers for the building insights API.
type Server struct {
	resolver      *resolveuc.Service
	insights      *insightuc.Service
	imagery       insightuc.ImagerySource
	health        *healthuc.Service
	distances     DistanceBounds
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. imagery may be nil when no Street
// View access is configured; the imagery endpoint then reports unavailable.
func NewServer(
	resolver *resolveuc.Service,
	insights *insightuc.Service,
	imagery insightuc.ImagerySource,
	health *healthuc.Service,
	distances DistanceBounds,
	logger *zap.Logger,
) *Server {
	s := &Server{
		resolver:  resolver,
		insights:  insights,
		imagery:   imagery,
		health:    health,
		distances: distances,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrBuildingNotFound, http.StatusNotFound, codeBuildingNotFound),
		sentinelHandler(domain.ErrInvalidCoordinates, http.StatusBadRequest, codeInvalidCoordinates),
		sentinelHandler(domain.ErrImageryUnavailable, http.StatusNotFound, codeImageryUnavailable),
		sentinelHandler(domain.ErrInsightProviderError, http.StatusBadGateway, codeInsightProviderErr),
	}
	return s
}

// Routes mounts all API handlers on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/resolve", s.ResolveClick)
		r.Get("/buildings", s.ListBuildings)
		r.Get("/buildings/{index}", s.GetBuilding)
		r.Get("/buildings/{index}/imagery", s.GetImagery)
		r.Post("/buildings/{index}/insights", s.GenerateInsights)
	})
}

type coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type buildingResponse struct {
	Index      int                 `json:"index"`
	Center     coordinate          `json:"center"`
	Bounds     *domain.BoundingBox `json:"bounds,omitempty"`
	Attributes map[string]string   `json:"attributes,omitempty"`
}

type buildingListResponse struct {
	Items   []buildingResponse `json:"items"`
	Total   int                `json:"total"`
	HasMore bool               `json:"has_more"`
}

type resolveRequest struct {
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	MaxDistanceMeters *float64 `json:"max_distance_meters"`
}

type resolveResponse struct {
	Index          int              `json:"index"`
	DistanceMeters float64          `json:"distance_meters"`
	Contained      bool             `json:"contained"`
	Building       buildingResponse `json:"building"`
}

type insightsRequest struct {
	IncludeImagery *bool     `json:"include_imagery"`
	Headings       []float64 `json:"headings"`
}

type photoInfo struct {
	HeadingDegrees float64 `json:"heading_degrees"`
	SizeBytes      int     `json:"size_bytes"`
}

type insightsResponse struct {
	Insights               domain.Insights `json:"insights"`
	Attempts               int             `json:"attempts"`
	PanoramaDistanceMeters float64         `json:"panorama_distance_meters,omitempty"`
	Photos                 []photoInfo     `json:"photos,omitempty"`
}

// ResolveClick handles POST /v1/resolve.
func (s *Server) ResolveClick(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Latitude == nil || req.Longitude == nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "latitude and longitude are required")
		return
	}

	click := domain.ClickPoint{Lat: *req.Latitude, Lon: *req.Longitude}
	res, err := s.resolver.Resolve(click, s.clampMaxDistance(req.MaxDistanceMeters))
	if err != nil {
		if errors.Is(err, domain.ErrBuildingNotFound) {
			metrics.ResolutionsTotal.WithLabelValues("not_found").Inc()
		}
		s.handleDomainError(w, err)
		return
	}

	outcome := "nearby"
	if res.Contained() {
		outcome = "contained"
	}
	metrics.ResolutionsTotal.WithLabelValues(outcome).Inc()

	writeJSON(w, http.StatusOK, resolveResponse{
		Index:          res.Index,
		DistanceMeters: res.DistanceMeters,
		Contained:      res.Contained(),
		Building:       buildingToResponse(res.Building),
	})
}

// ListBuildings handles GET /v1/buildings.
func (s *Server) ListBuildings(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := listParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	all := s.resolver.Collection().All()
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}

	items := make([]buildingResponse, 0, end-offset)
	for _, b := range all[offset:end] {
		items = append(items, buildingToResponse(b))
	}

	writeJSON(w, http.StatusOK, buildingListResponse{
		Items:   items,
		Total:   len(all),
		HasMore: end < len(all),
	})
}

// GetBuilding handles GET /v1/buildings/{index}.
func (s *Server) GetBuilding(w http.ResponseWriter, r *http.Request) {
	index, ok := s.buildingIndex(w, r)
	if !ok {
		return
	}

	building, found := s.resolver.Collection().At(index)
	if !found {
		s.handleDomainError(w, domain.ErrBuildingNotFound)
		return
	}

	writeJSON(w, http.StatusOK, buildingToResponse(building))
}

// GetImagery handles GET /v1/buildings/{index}/imagery.
func (s *Server) GetImagery(w http.ResponseWriter, r *http.Request) {
	index, ok := s.buildingIndex(w, r)
	if !ok {
		return
	}

	building, found := s.resolver.Collection().At(index)
	if !found {
		s.handleDomainError(w, domain.ErrBuildingNotFound)
		return
	}

	if s.imagery == nil {
		writeError(w, http.StatusNotFound, codeImageryUnavailable, "street view imagery is not configured")
		return
	}

	// An explicit heading shoots from the building center; without one the
	// camera is aimed at the building from the nearest panorama.
	var lat, lon, heading float64
	if raw := r.URL.Query().Get("heading"); raw != "" {
		h, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "heading must be a number")
			return
		}
		lat, lon = building.Center()
		heading = h
	} else {
		shot, err := insightuc.AimFromPanorama(r.Context(), s.imagery, building)
		if err != nil {
			s.logger.Warn("Panorama lookup failed", zap.Error(err))
		}
		lat, lon, heading = shot.Lat, shot.Lon, shot.HeadingDegrees
	}

	photo, err := s.imagery.Fetch(r.Context(), lat, lon, heading)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(photo)
}

// GenerateInsights handles POST /v1/buildings/{index}/insights.
func (s *Server) GenerateInsights(w http.ResponseWriter, r *http.Request) {
	index, ok := s.buildingIndex(w, r)
	if !ok {
		return
	}

	// An empty body means default options.
	var req insightsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	includeImagery := true
	if req.IncludeImagery != nil {
		includeImagery = *req.IncludeImagery
	}

	result, err := s.insights.Generate(r.Context(), index, insightuc.Options{
		IncludeImagery: includeImagery,
		Headings:       req.Headings,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	photos := make([]photoInfo, len(result.Photos))
	for i, p := range result.Photos {
		photos[i] = photoInfo{HeadingDegrees: p.HeadingDegrees, SizeBytes: len(p.Bytes)}
	}

	writeJSON(w, http.StatusOK, insightsResponse{
		Insights:               result.Insights,
		Attempts:               result.Attempts,
		PanoramaDistanceMeters: result.PanoramaDistanceMeters,
		Photos:                 photos,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    report.Status,
		"buildings": report.Buildings,
		"checks":    report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) buildingIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "index must be a non-negative integer")
		return 0, false
	}
	return index, true
}

func (s *Server) clampMaxDistance(requested *float64) float64 {
	if requested == nil || *requested <= 0 {
		return s.distances.DefaultMeters
	}
	if *requested > s.distances.CapMeters {
		return s.distances.CapMeters
	}
	return *requested
}

func listParams(r *http.Request) (limit, offset int, err error) {
	limit = defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > maxListLimit {
			return 0, 0, errors.New("limit must be between 1 and " + strconv.Itoa(maxListLimit))
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, errors.New("offset must be a non-negative integer")
		}
	}
	return limit, offset, nil
}

func buildingToResponse(b domain.Building) buildingResponse {
	lat, lon := b.Center()
	return buildingResponse{
		Index:      b.Index,
		Center:     coordinate{Latitude: lat, Longitude: lon},
		Bounds:     b.Bounds(),
		Attributes: b.Attributes,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrDataLoad,
		domain.ErrBuildingNotFound,
		domain.ErrInvalidCoordinates,
		domain.ErrImageryUnavailable,
		domain.ErrInsightProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
