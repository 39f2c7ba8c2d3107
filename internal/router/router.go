package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/kiwari-pos/register/internal/catalog"
	"github.com/kiwari-pos/register/internal/config"
	"github.com/kiwari-pos/register/internal/handler"
	"github.com/kiwari-pos/register/internal/metrics"
	mw "github.com/kiwari-pos/register/internal/middleware"
	"github.com/kiwari-pos/register/internal/preorder"
	"github.com/kiwari-pos/register/internal/session"
	"github.com/kiwari-pos/register/internal/ws"
	"github.com/rs/zerolog"
)

// Deps are the components the routes are wired to. PreOrders and Metrics
// may be nil, which leaves their routes unmounted.
type Deps struct {
	Config    *config.Config
	Catalog   catalog.Catalog
	Sessions  *session.Manager
	PreOrders *preorder.Tracker
	Hub       *ws.Hub
	Metrics   *metrics.Metrics
	Logger    zerolog.Logger
}

// New creates a Chi router with all register routes wired up.
// Applies authentication and outlet scoping as needed.
func New(d Deps) chi.Router {
	cfg := d.Config
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/outlets/{oid}/register", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(d.Hub, cfg.JWTSecret, w, r)
	})

	// Protected, outlet-scoped routes
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		r.Route("/outlets/{oid}", func(r chi.Router) {
			r.Use(mw.RequireOutlet)

			catalogHandler := handler.NewCatalogHandler(d.Catalog, d.Logger)
			r.Route("/catalog", catalogHandler.RegisterRoutes)

			sessionHandler := handler.NewSessionHandler(d.Sessions, d.Catalog, cfg.Register.CurrencySuffix, d.Logger)
			r.Route("/sessions", sessionHandler.RegisterRoutes)

			if d.PreOrders != nil {
				preOrderHandler := handler.NewPreOrderHandler(d.PreOrders)
				r.Route("/preorders", preOrderHandler.RegisterRoutes)
			}
		})
	})

	return r
}
