package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/welfare-metrics-service/internal/domain"
	"github.com/couchcryptid/welfare-metrics-service/internal/resolver"
)

// MetricsResolver is the slice of the resolver the handlers need.
type MetricsResolver interface {
	Resolve(ctx context.Context, req domain.MetricsRequest) (resolver.Resolution, error)
	Locate(ctx context.Context, point domain.Geo) resolver.Placement
}

// Handlers implements the /api/v1 routes.
type Handlers struct {
	resolver  MetricsResolver
	districts domain.DistrictStore // may be nil when no database is configured
	logger    *slog.Logger
}

// NewHandlers creates the API handlers.
func NewHandlers(res MetricsResolver, districts domain.DistrictStore, logger *slog.Logger) *Handlers {
	return &Handlers{resolver: res, districts: districts, logger: logger}
}

// envelope is the response wrapper shared by all data endpoints. Counter
// fields inside data serialize as decimal strings and timestamps as
// ISO-8601.
type envelope struct {
	Success  bool   `json:"success"`
	Data     any    `json:"data,omitempty"`
	Error    string `json:"error,omitempty"`
	Source   string `json:"source,omitempty"`
	CachedAt string `json:"cachedAt,omitempty"`
}

// metricsPayload flattens a resolution for the response body.
type metricsPayload struct {
	DistrictID    string `json:"districtId"`
	FinancialYear string `json:"financialYear"`
	Month         int    `json:"month"`
	domain.MetricsRecord
	IsStale   bool   `json:"isStale"`
	FetchedAt string `json:"fetchedAt"`
}

// Metrics handles GET /api/v1/metrics?districtId=&financialYear=&month=.
func (h *Handlers) Metrics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req, err := domain.NormalizeRequest(
		q.Get("districtId"), q.Get("financialYear"), q.Get("month"), clientIP(r))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Error: err.Error()})
		return
	}

	res, err := h.resolver.Resolve(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrRateLimited) {
			writeJSON(w, http.StatusTooManyRequests, envelope{
				Success: false,
				Error:   "Rate limit exceeded. Please try again later.",
			})
			return
		}
		h.logger.Error("resolution failed", "district_id", req.DistrictID, "error", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Data: metricsPayload{
			DistrictID:    res.DistrictID,
			FinancialYear: res.FinancialYear,
			Month:         res.Month,
			MetricsRecord: res.Record,
			IsStale:       res.Stale,
			FetchedAt:     res.CachedAt.UTC().Format(time.RFC3339),
		},
		Source:   string(res.Source),
		CachedAt: res.CachedAt.UTC().Format(time.RFC3339),
	})
}

type detectRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type detectPayload struct {
	District   *domain.District     `json:"district,omitempty"`
	City       *domain.FallbackCity `json:"city,omitempty"`
	DistanceKm float64              `json:"distanceKm"`
	Covered    bool                 `json:"covered"`
}

// DetectDistrict handles POST /api/v1/detect-district with a JSON body of
// {latitude, longitude}. Coordinate range validation happens here; the
// distance search itself does not validate.
func (h *Handlers) DetectDistrict(w http.ResponseWriter, r *http.Request) {
	var body detectRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Error: "invalid JSON body"})
		return
	}
	if body.Latitude == nil || body.Longitude == nil ||
		*body.Latitude < -90 || *body.Latitude > 90 ||
		*body.Longitude < -180 || *body.Longitude > 180 {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Error: "invalid coordinates"})
		return
	}

	placement := h.resolver.Locate(r.Context(), domain.Geo{Lat: *body.Latitude, Lon: *body.Longitude})

	resp := envelope{
		Success: true,
		Data: detectPayload{
			District:   placement.District,
			City:       placement.City,
			DistanceKm: placement.DistanceKm,
			Covered:    placement.Covered,
		},
	}
	if placement.Degraded {
		resp.Source = string(resolver.SourceFallback)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Districts handles GET /api/v1/districts?state=. When the district store
// is unconfigured or unreachable it serves the static fallback list so the
// district picker still renders.
func (h *Handlers) Districts(w http.ResponseWriter, r *http.Request) {
	filter := domain.DistrictFilter{StateCode: r.URL.Query().Get("state")}

	if h.districts == nil {
		writeJSON(w, http.StatusOK, envelope{
			Success: true,
			Data:    domain.FallbackDistricts(filter),
			Source:  string(resolver.SourceFallback),
		})
		return
	}
	districts, err := h.districts.FindAll(r.Context(), filter)
	if err != nil {
		h.logger.Warn("district listing failed, serving fallback list", "error", err)
		writeJSON(w, http.StatusOK, envelope{
			Success: true,
			Data:    domain.FallbackDistricts(filter),
			Source:  string(resolver.SourceFallback),
		})
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: districts})
}

// clientIP derives the rate-limiting key: first forwarded address, then the
// connection's remote address, then "unknown". Identification only, never
// authentication.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}
