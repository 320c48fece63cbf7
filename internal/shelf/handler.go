package shelf

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/officina-pos/officina/internal/catalog/medicaments"
	"github.com/officina-pos/officina/internal/platform/httpx"
)

type CreateShelfRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Capacity int    `json:"capacity" validate:"required,gt=0"`
}

type StockShelfRequest struct {
	Code int64 `json:"code" validate:"required,gt=0"`
}

// Handler wires HTTP endpoints for shelf management. Items are stocked onto
// shelves from the medicament catalog by code.
type Handler struct {
	logger      *slog.Logger
	manager     *Manager
	medicaments *medicaments.Service
	validate    *validator.Validate
}

// NewHandler constructs the shelf handler.
func NewHandler(logger *slog.Logger, manager *Manager, medicamentSvc *medicaments.Service) *Handler {
	return &Handler{logger: logger, manager: manager, medicaments: medicamentSvc, validate: validator.New()}
}

// MountRoutes registers shelf routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{name}", h.show)
	r.Delete("/{name}", h.delete)
	r.Post("/{name}/items", h.stock)
	r.Get("/{name}/items/{position}", h.getItem)
	r.Delete("/{name}/items/{position}", h.removeByPosition)
	r.Delete("/{name}/items", h.removeByKey)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateShelfRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid JSON body", httpx.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	view, err := h.manager.Create(req.Name, req.Capacity)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, view)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"shelves": h.manager.Views()})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	view, err := h.manager.View(chi.URLParam(r, "name"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Delete(chi.URLParam(r, "name")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) stock(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req StockShelfRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid JSON body", httpx.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}

	item, err := h.medicaments.Get(r.Context(), req.Code)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	var position int
	err = h.manager.With(name, func(s *Shelf) error {
		if err := s.Add(item); err != nil {
			return err
		}
		position = s.Len()
		return nil
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"position": position, "item": item})
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	position, err := strconv.Atoi(chi.URLParam(r, "position"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid position", httpx.ErrValidation))
		return
	}

	var item *medicaments.Medicament
	err = h.manager.With(name, func(s *Shelf) error {
		item = s.Get(position)
		return nil
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if item == nil {
		httpx.RespondError(w, fmt.Errorf("position %d: %w", position, httpx.ErrNotFound))
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) removeByPosition(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	position, err := strconv.Atoi(chi.URLParam(r, "position"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid position", httpx.ErrValidation))
		return
	}

	var removed *medicaments.Medicament
	err = h.manager.With(name, func(s *Shelf) error {
		removed = s.Remove(position)
		return nil
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if removed == nil {
		httpx.RespondError(w, fmt.Errorf("position %d: %w", position, httpx.ErrNotFound))
		return
	}
	httpx.JSON(w, http.StatusOK, removed)
}

func (h *Handler) removeByKey(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	q := r.URL.Query()
	itemName := q.Get("item")
	category := q.Get("category")
	if itemName == "" || category == "" {
		httpx.RespondError(w, fmt.Errorf("%w: item and category query parameters required", httpx.ErrValidation))
		return
	}

	var removed *medicaments.Medicament
	err := h.manager.With(name, func(s *Shelf) error {
		removed = s.RemoveByKey(itemName, category)
		return nil
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if removed == nil {
		httpx.RespondError(w, fmt.Errorf("item %q/%q: %w", itemName, category, httpx.ErrNotFound))
		return
	}
	httpx.JSON(w, http.StatusOK, removed)
}
