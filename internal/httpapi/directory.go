package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/kwabenadarko/navicare/internal/providers"
	"github.com/kwabenadarko/navicare/internal/store"
)

func (s *Server) handleProviderSearch(w http.ResponseWriter, r *http.Request) {
	if s.directory == nil {
		respondError(w, http.StatusNotImplemented, "unavailable", "provider search not configured")
		return
	}

	var q providers.Query
	if err := decodeJSON(r, &q); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := q.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}

	records, err := s.directory.Search(r.Context(), q)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ProviderErrors.WithLabelValues("directory", "search_failed").Inc()
		}
		respondError(w, http.StatusBadGateway, "search_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"providers": records})
}

func (s *Server) userIDFromQuery(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		respondError(w, http.StatusBadRequest, "missing_user_id", "query parameter user_id is required")
		return "", false
	}
	return userID, true
}

func (s *Server) handleListSaved(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userIDFromQuery(w, r)
	if !ok {
		return
	}
	records, err := s.records.SavedProviders(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"providers": records})
}

type savedProviderRequest struct {
	UserID   string           `json:"user_id"`
	Provider providers.Record `json:"provider"`
}

func (s *Server) handleToggleSaved(w http.ResponseWriter, r *http.Request) {
	var req savedProviderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.Provider.Name) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "user_id and provider.name are required")
		return
	}

	saved, err := s.records.ToggleSaved(r.Context(), req.UserID, req.Provider)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"saved": saved})
}

func (s *Server) handleDeleteSaved(w http.ResponseWriter, r *http.Request) {
	var req savedProviderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.Provider.Name) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "user_id and provider.name are required")
		return
	}

	list, err := s.records.SavedProviders(r.Context(), req.UserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_failed", err.Error())
		return
	}
	for _, rec := range list {
		if strings.EqualFold(strings.TrimSpace(rec.Name), strings.TrimSpace(req.Provider.Name)) &&
			strings.TrimSpace(rec.Phone) == strings.TrimSpace(req.Provider.Phone) {
			if _, err := s.records.ToggleSaved(r.Context(), req.UserID, rec); err != nil {
				respondError(w, http.StatusInternalServerError, "store_failed", err.Error())
				return
			}
			respondJSON(w, http.StatusOK, map[string]any{"saved": false})
			return
		}
	}
	respondError(w, http.StatusNotFound, "provider_not_saved", "no matching saved provider")
}

func (s *Server) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userIDFromQuery(w, r)
	if !ok {
		return
	}
	sub, err := s.records.Subscription(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_failed", err.Error())
		return
	}
	if sub == nil {
		respondError(w, http.StatusNotFound, "no_subscription", "no subscription on record")
		return
	}
	respondJSON(w, http.StatusOK, sub)
}

type subscriptionRequest struct {
	UserID     string  `json:"user_id"`
	FullName   string  `json:"full_name"`
	Email      string  `json:"email"`
	MoMoNumber string  `json:"momo_number"`
	AmountGhs  float64 `json:"amount_ghs"`
}

func (s *Server) handleSaveSubscription(w http.ResponseWriter, r *http.Request) {
	var req subscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.FullName) == "" || strings.TrimSpace(req.MoMoNumber) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "user_id, full_name and momo_number are required")
		return
	}
	if req.AmountGhs <= 0 {
		req.AmountGhs = 25
	}

	sub := store.Subscription{
		FullName:   strings.TrimSpace(req.FullName),
		Email:      strings.TrimSpace(req.Email),
		MoMoNumber: strings.TrimSpace(req.MoMoNumber),
		AmountGhs:  req.AmountGhs,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.records.SaveSubscription(r.Context(), req.UserID, sub); err != nil {
		respondError(w, http.StatusInternalServerError, "store_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, sub)
}
