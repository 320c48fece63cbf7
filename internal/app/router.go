package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/officina-pos/officina/internal/catalog/devices"
	"github.com/officina-pos/officina/internal/catalog/medicaments"
	"github.com/officina-pos/officina/internal/loyalty"
	"github.com/officina-pos/officina/internal/pos"
	"github.com/officina-pos/officina/internal/shelf"
	"github.com/officina-pos/officina/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	MedicamentHandler *medicaments.Handler
	DeviceHandler     *devices.Handler
	LoyaltyHandler    *loyalty.Handler
	ShelfHandler      *shelf.Handler
	POSHandler        *pos.Handler
	JobsHandler       *jobs.Handler
}

// NewRouter constructs the chi.Router with Officina defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/medicaments", params.MedicamentHandler.MountRoutes)
	r.Route("/devices", params.DeviceHandler.MountRoutes)
	r.Route("/customers", params.LoyaltyHandler.MountRoutes)
	r.Route("/shelves", params.ShelfHandler.MountRoutes)
	r.Route("/pos", params.POSHandler.MountRoutes)
	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}

	return r
}
