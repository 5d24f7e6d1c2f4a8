package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/shubh-37/decluttr/internal/database"
	"github.com/shubh-37/decluttr/internal/declutter"
	"github.com/shubh-37/decluttr/internal/models"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Health(r.Context()); err != nil {
		s.logger.Error("Health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	users, err := s.store.Count(r.Context())
	if err != nil {
		s.logger.Warn("Failed to count users", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "users": users})
}

func (s *Server) handleNewGuest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, map[string]string{"userId": models.NewGuestID()})
}

// handleGetUser returns the stored record, or {} for unknown ids
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	rec, err := s.store.GetUser(r.Context(), userID)
	if errors.Is(err, database.ErrUserNotFound) {
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}
	if err != nil {
		s.logger.Error("Failed to load user", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleSaveUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var data models.UserData
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&data); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	data.Normalize()

	if s.locker != nil {
		unlock := s.locker.LockUser(userID)
		defer unlock()
	}
	rec, err := s.store.UpsertUser(r.Context(), userID, data)
	if err != nil {
		s.logger.Error("Failed to save user", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save user")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDump(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, declutter.ErrEmptyThought.Error())
		return
	}

	out, err := s.dumper.Dump(r.Context(), userID, req.Text)
	switch {
	case errors.Is(err, declutter.ErrEmptyThought):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, declutter.ErrSubmissionInFlight):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		s.logger.Error("Dump failed", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "dump failed")
	default:
		writeJSON(w, http.StatusOK, out)
	}
}
