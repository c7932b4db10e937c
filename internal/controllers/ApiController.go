package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"shiftwatch/internal/models"
	"shiftwatch/internal/providers"
	"shiftwatch/internal/scheduler"
	"shiftwatch/internal/services"
)

const (
	defaultDeliveryLimit = 100
	maxDeliveryLimit     = 1000
)

type ApiController struct {
	logger    providers.Logger
	service   services.MonitorServiceInterface
	scheduler scheduler.SchedulerInterface
	cache     providers.CacheProviderInterface
}

func NewApiController(logger providers.Logger, service services.MonitorServiceInterface, scheduler scheduler.SchedulerInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:    logger,
		service:   service,
		scheduler: scheduler,
		cache:     cache,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	gson, _ := json.Marshal(errorResponse{Error: msg})
	writeJSON(w, status, gson)
}

// errNoContent signals a compute function found nothing to return.
var errNoContent = errors.New("not found")

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, data)
		return
	}

	result, err := compute()
	if errors.Is(err, errNoContent) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		ac.logger.Errorf(providers.TypeGet, "%s: %s", cacheKey, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)
	writeJSON(w, http.StatusOK, gson)
}

// GetCodes lists stored codes, optionally filtered by ?status=.
func (ac *ApiController) GetCodes(w http.ResponseWriter, r *http.Request) {
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	ac.serveFromCacheOrCompute(w, providers.APICacheKeyPrefix+"codes:"+strings.ToLower(status), func() (any, error) {
		codes, err := ac.service.ListCodes(r.Context())
		if err != nil {
			return nil, err
		}
		out := make([]models.CanonicalCode, 0, len(codes))
		for _, c := range codes {
			if status == "" || strings.EqualFold(string(c.Status), status) {
				out = append(out, c)
			}
		}
		return out, nil
	})
}

func (ac *ApiController) GetLatestRun(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, providers.APICacheKeyPrefix+"runs:latest", func() (any, error) {
		summary, err := ac.service.LatestRun(r.Context())
		if err != nil {
			return nil, err
		}
		if summary == nil {
			return nil, errNoContent
		}
		return summary, nil
	})
}

func (ac *ApiController) GetDeliveries(w http.ResponseWriter, r *http.Request) {
	limit := defaultDeliveryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxDeliveryLimit)
	}
	ac.serveFromCacheOrCompute(w, providers.APICacheKeyPrefix+"deliveries:"+strconv.Itoa(limit), func() (any, error) {
		deliveries, err := ac.service.ListDeliveries(r.Context(), limit)
		if err != nil {
			return nil, err
		}
		if deliveries == nil {
			deliveries = []models.DeliveryAttempt{}
		}
		return deliveries, nil
	})
}

// TriggerRun starts a run in the background.
func (ac *ApiController) TriggerRun(w http.ResponseWriter, r *http.Request) {
	if err := ac.scheduler.Trigger(); err != nil {
		if errors.Is(err, scheduler.ErrRunInProgress) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	ac.logger.Infof(providers.TypePost, "Run triggered by %s", r.RemoteAddr)
	ac.cache.Clear()
	w.WriteHeader(http.StatusAccepted)
}

func (ac *ApiController) Resend(w http.ResponseWriter, r *http.Request) {
	hash := strings.TrimSpace(r.URL.Query().Get("hash"))
	if hash == "" {
		writeError(w, http.StatusBadRequest, "hash is required")
		return
	}

	attempt, err := ac.service.Resend(r.Context(), hash)
	ac.cache.Clear()
	switch {
	case errors.Is(err, services.ErrCodeNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, services.ErrNotEligible):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		ac.logger.Errorf(providers.TypePost, "Resend %s: %s", hash, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(attempt)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, gson)
}
