package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tuanvumaihuynh/autoparts-admin/internal/model"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/service"
)

const maxBodyBytes = 1 << 20

type collectionHandler[T model.Entity[T]] struct {
	*Service
	svc service.CollectionService[T]
}

func registerCollection[T model.Entity[T]](r chi.Router, s *Service, svc service.CollectionService[T]) {
	h := &collectionHandler[T]{Service: s, svc: svc}

	r.Route("/"+svc.Collection().String(), func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *collectionHandler[T]) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		h.handleResponseError(w, r, fmt.Errorf("%s service list: %w", h.svc.Collection(), err))
		return
	}

	h.writeJSON(w, r, http.StatusOK, items)
}

func (h *collectionHandler[T]) get(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleResponseError(w, r, fmt.Errorf("%s service get: %w", h.svc.Collection(), err))
		return
	}

	h.writeJSON(w, r, http.StatusOK, item)
}

func (h *collectionHandler[T]) create(w http.ResponseWriter, r *http.Request) {
	draft, ok := h.decode(w, r)
	if !ok {
		return
	}

	created, err := h.svc.Create(r.Context(), draft)
	if err != nil {
		h.handleResponseError(w, r, fmt.Errorf("%s service create: %w", h.svc.Collection(), err))
		return
	}

	h.writeJSON(w, r, http.StatusCreated, created)
}

func (h *collectionHandler[T]) update(w http.ResponseWriter, r *http.Request) {
	entity, ok := h.decode(w, r)
	if !ok {
		return
	}

	updated, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), entity)
	if err != nil {
		h.handleResponseError(w, r, fmt.Errorf("%s service update: %w", h.svc.Collection(), err))
		return
	}

	h.writeJSON(w, r, http.StatusOK, updated)
}

func (h *collectionHandler[T]) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleResponseError(w, r, fmt.Errorf("%s service delete: %w", h.svc.Collection(), err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *collectionHandler[T]) decode(w http.ResponseWriter, r *http.Request) (T, bool) {
	var entity T
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&entity); err != nil {
		h.handleRequestError(w, r, fmt.Errorf("decode %s body: %w", h.svc.Collection(), err))
		return entity, false
	}

	return entity, true
}
