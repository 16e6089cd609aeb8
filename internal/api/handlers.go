package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starford/munin/internal/apperr"
)

// Handler holds API route handlers.
type Handler struct {
	svc *Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// PostMessage handles POST /api/message.
//
//	@Summary		Run a review from a free-text chat message
//	@Tags			chat
//	@Accept			json
//	@Produce		json
//	@Param			body	body		MessageRequest	true	"Chat message, may hint a window like 'last 14 days' or 'all time'"
//	@Success		200		{object}	MessageResponse
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Router			/message [post]
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("message is required"))
		return
	}

	resp, err := h.svc.HandleMessage(r.Context(), req.Message)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrConfiguration):
			writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
		case r.Context().Err() != nil:
			// Client went away; nothing useful to send.
			slog.Warn("review run cancelled", slog.String("error", err.Error()))
		default:
			slog.Error("review run failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
