package api

import (
	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with the chat routes mounted.
func NewRouter(svc *Service) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Post("/message", h.PostMessage)

	return r
}
