package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ariefcatur/attic-lounges/internal/availability"
	"github.com/ariefcatur/attic-lounges/internal/catalog"
	"github.com/go-chi/chi/v5"
)

type CatalogService interface {
	List(ctx context.Context) ([]catalog.Product, error)
	Get(ctx context.Context, id string) (catalog.Product, error)
	Create(ctx context.Context, patch catalog.Patch) (catalog.Product, error)
	Update(ctx context.Context, id string, patch catalog.Patch) (catalog.Product, error)
	Delete(ctx context.Context, id string) error
	SetAvailability(ctx context.Context, id string, in availability.Intent) (catalog.Product, error)
}

type CatalogHandler struct {
	Catalog CatalogService
	Auth    *Authenticator
	Log     *slog.Logger
}

func (h *CatalogHandler) Register(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Put("/{id}/sold", h.setAvailability(availability.Sold))
		r.Put("/{id}/available", h.setAvailability(availability.Available))

		r.Group(func(r chi.Router) {
			r.Use(h.Auth.Require, RequireOwner)
			r.Post("/", h.create)
			r.Put("/{id}", h.update)
			r.Delete("/{id}", h.delete)
		})
	})
}

func (h *CatalogHandler) list(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Catalog.List(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *CatalogHandler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) create(w http.ResponseWriter, r *http.Request) {
	var patch catalog.Patch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidBody, "Invalid payload")
		return
	}
	p, err := h.Catalog.Create(r.Context(), patch)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *CatalogHandler) update(w http.ResponseWriter, r *http.Request) {
	var patch catalog.Patch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidBody, "Invalid payload")
		return
	}
	p, err := h.Catalog.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) setAvailability(in availability.Intent) http.HandlerFunc {
	msg := "Product marked as sold"
	if in == availability.Available {
		msg = "Product marked as available"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := h.Catalog.SetAvailability(r.Context(), chi.URLParam(r, "id"), in)
		if err != nil {
			h.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": msg, "product": p})
	}
}

func (h *CatalogHandler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, codeProductNotFound, "Not found")
	case errors.Is(err, catalog.ErrInvalidProduct):
		writeError(w, http.StatusBadRequest, codeInvalidProduct, err.Error())
	default:
		if h.Log != nil {
			h.Log.Error("catalog request failed", "err", err)
		}
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}
