package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/revlens-lab/revlens/pkg/usecase"
	"github.com/revlens-lab/revlens/pkg/utils/logging"
)

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
}

func New(uc *usecase.UseCases) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Post("/", s.createCatalogEntry)
			r.Get("/", s.listCatalog)
			r.Put("/", s.updateCatalogEntry)
			r.Get("/resolve", s.resolveRisk)
			r.Post("/{catalogType}/{riskID}/disable", s.disableCatalogEntry)
		})

		r.Route("/opportunities", func(r chi.Router) {
			r.Post("/", s.createOpportunity)
			r.Get("/", s.listOpportunities)
			r.Route("/{opportunityID}", func(r chi.Router) {
				r.Get("/", s.getOpportunity)
				r.Put("/", s.updateOpportunity)
				r.Delete("/", s.deleteOpportunity)

				r.Post("/evaluate", s.evaluateOpportunity)
				r.Post("/risks/{riskID}/acknowledge", s.acknowledgeRisk)
				r.Post("/risks/{riskID}/dismiss", s.dismissRisk)
				r.Post("/risks/{riskID}/mitigate", s.mitigateRisk)
				r.Post("/risks/{riskID}/accept", s.acceptRisk)

				r.Post("/warnings", s.addEarlyWarning)
				r.Post("/warnings/{signalID}/acknowledge", s.acknowledgeEarlyWarning)
				r.Post("/warnings/{signalID}/resolve", s.resolveEarlyWarning)

				r.Post("/actions", s.addMitigationAction)
				r.Post("/actions/{actionID}/status", s.updateMitigationActionStatus)

				r.Post("/simulate", s.simulate)
				r.Get("/simulations", s.listSimulations)
				r.Get("/simulations/{simulationID}", s.getSimulation)

				r.Get("/snapshots", s.listSnapshots)
				r.Post("/snapshots/prune", s.pruneSnapshots)
			})
		})

		r.Route("/quotas", func(r chi.Router) {
			r.Post("/", s.createQuota)
			r.Get("/", s.listQuotas)
			r.Route("/{quotaID}", func(r chi.Router) {
				r.Get("/", s.getQuota)
				r.Put("/", s.updateQuota)
				r.Delete("/", s.deleteQuota)
				r.Post("/rollup", s.rollupQuota)
			})
		})

		r.Post("/portfolio/{scope}/{scopeID}/rollup", s.rollupPortfolio)

		r.Route("/benchmarks", func(r chi.Router) {
			r.Post("/calculate", s.calculateBenchmark)
			r.Get("/", s.getBenchmark)
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
