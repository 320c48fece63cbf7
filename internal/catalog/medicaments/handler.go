package medicaments

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/officina-pos/officina/internal/catalog"
	"github.com/officina-pos/officina/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the medicament catalog.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the medicament handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Delete("/", h.deleteByName)
	r.Get("/expiring", h.listExpiring)
	r.Get("/stats", h.stats)
	r.Get("/overview", h.overview)
	r.Get("/{code}", h.get)
	r.Put("/{code}", h.update)
	r.Patch("/{code}/stock", h.updateStock)
	r.Delete("/{code}", h.deleteByCode)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateMedicamentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid JSON body", httpx.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}

	expiry, err := parseExpiry(req.Expiry)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	created, err := h.service.Create(r.Context(), Medicament{
		SerialNo:       req.SerialNo,
		Name:           req.Name,
		Category:       req.Category,
		Kind:           Kind(req.Kind),
		Price:          req.Price,
		Expiry:         expiry,
		Stock:          req.Stock,
		ActiveCompound: req.ActiveCompound,
		MinimumAge:     req.MinimumAge,
		PlantSource:    req.PlantSource,
	})
	if err != nil {
		h.logger.Error("create medicament failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	code, err := codeParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	m, err := h.service.Get(r.Context(), code)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := ListFilters{
		ListFilters: catalog.ListFilters{
			Prefix:  q.Get("prefix"),
			Search:  q.Get("search"),
			SortBy:  q.Get("sort_by"),
			SortDir: q.Get("sort_dir"),
		},
		Kind:     Kind(q.Get("kind")),
		Category: q.Get("category"),
	}
	if v := q.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			filters.Limit = parsed
		}
	}
	if v := q.Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			filters.Offset = parsed
		}
	}

	items, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list medicaments failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	code, err := codeParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateMedicamentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid JSON body", httpx.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}

	current, err := h.service.Get(r.Context(), code)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	if req.Name != nil {
		current.Name = *req.Name
	}
	if req.Category != nil {
		current.Category = *req.Category
	}
	if req.Price != nil {
		current.Price = *req.Price
	}
	if req.Expiry != nil {
		expiry, err := parseExpiry(req.Expiry)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		current.Expiry = expiry
	}
	if req.ActiveCompound != nil {
		current.ActiveCompound = *req.ActiveCompound
	}
	if req.MinimumAge != nil {
		current.MinimumAge = *req.MinimumAge
	}
	if req.PlantSource != nil {
		current.PlantSource = *req.PlantSource
	}

	if err := h.service.Update(r.Context(), code, *current); err != nil {
		h.logger.Error("update medicament failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, current)
}

func (h *Handler) updateStock(w http.ResponseWriter, r *http.Request) {
	code, err := codeParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateStockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid JSON body", httpx.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	if err := h.service.UpdateStock(r.Context(), code, req.Stock); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"code": code, "stock": req.Stock})
}

func (h *Handler) deleteByCode(w http.ResponseWriter, r *http.Request) {
	code, err := codeParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.DeleteByCode(r.Context(), code); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteByName(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		httpx.RespondError(w, fmt.Errorf("%w: name query parameter required", httpx.ErrValidation))
		return
	}
	deleted, err := h.service.DeleteByName(r.Context(), name)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": deleted})
}

func (h *Handler) listExpiring(w http.ResponseWriter, r *http.Request) {
	months := 1
	if v := r.URL.Query().Get("months"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			httpx.RespondError(w, fmt.Errorf("%w: invalid months", httpx.ErrValidation))
			return
		}
		months = parsed
	}
	items, err := h.service.ListExpiringWithin(r.Context(), months)
	if err != nil {
		h.logger.Error("list expiring medicaments failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "months": months})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.logger.Error("medicament stats failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

// overview combines the catalog aggregates with the expiring-soon list in
// one round trip for the dashboard.
func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	var (
		stats    Stats
		expiring []Medicament
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		stats, err = h.service.Stats(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		expiring, err = h.service.ListExpiringWithin(ctx, 1)
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("catalog overview failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"stats": stats, "expiring": expiring})
}

func codeParam(r *http.Request) (int64, error) {
	code, err := strconv.ParseInt(chi.URLParam(r, "code"), 10, 64)
	if err != nil || code <= 0 {
		return 0, fmt.Errorf("%w: invalid code", httpx.ErrValidation)
	}
	return code, nil
}

func parseExpiry(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return nil, fmt.Errorf("%w: expiry must be YYYY-MM-DD", httpx.ErrValidation)
	}
	return &t, nil
}
