package pos

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/officina-pos/officina/internal/platform/httpx"
)

// PurchaseMedicamentRequest is the body of a medicament sale.
type PurchaseMedicamentRequest struct {
	Name      string `json:"name" validate:"required"`
	CIN       int64  `json:"cin" validate:"required,gt=0"`
	RequestID string `json:"request_id,omitempty"`
}

// PurchaseDeviceRequest is the body of a device sale.
type PurchaseDeviceRequest struct {
	Code      int64  `json:"code" validate:"required,gt=0"`
	CIN       int64  `json:"cin" validate:"required,gt=0"`
	RequestID string `json:"request_id,omitempty"`
}

// QuoteRequest prices a basket without selling anything.
type QuoteRequest struct {
	Lines []QuoteLine `json:"lines" validate:"required,min=1,dive"`
}

// Handler wires HTTP endpoints for the point of sale.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the POS handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers point-of-sale routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/purchases/medicaments", h.purchaseMedicament)
	r.Post("/purchases/devices", h.purchaseDevice)
	r.Post("/quotes", h.quote)
}

func (h *Handler) purchaseMedicament(w http.ResponseWriter, r *http.Request) {
	var req PurchaseMedicamentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid JSON body", httpx.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}

	result, err := h.service.PurchaseMedicament(r.Context(), MedicamentPurchaseInput{
		Name:      req.Name,
		CIN:       req.CIN,
		RequestID: req.RequestID,
	})
	if err != nil {
		h.logger.Error("medicament purchase failed", slog.String("name", req.Name), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) purchaseDevice(w http.ResponseWriter, r *http.Request) {
	var req PurchaseDeviceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid JSON body", httpx.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}

	result, err := h.service.PurchaseDevice(r.Context(), DevicePurchaseInput{
		Code:      req.Code,
		CIN:       req.CIN,
		RequestID: req.RequestID,
	})
	if err != nil {
		h.logger.Error("device purchase failed", slog.Int64("code", req.Code), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid JSON body", httpx.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}

	quote, err := h.service.QuoteBasket(r.Context(), req.Lines)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}
