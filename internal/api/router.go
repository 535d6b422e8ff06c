package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/sameezy667/ResQ-sub000/internal/api/handlers/http/dispatch"
	"github.com/sameezy667/ResQ-sub000/internal/api/handlers/http/public"
	"github.com/sameezy667/ResQ-sub000/internal/api/handlers/http/system"
	"github.com/sameezy667/ResQ-sub000/internal/config"
	"github.com/sameezy667/ResQ-sub000/internal/middleware"
	"github.com/sameezy667/ResQ-sub000/internal/service"
	"github.com/sameezy667/ResQ-sub000/internal/store"
)

type Server struct {
	logger *slog.Logger
	router *chi.Mux
	cfg    config.Config
}

// ImageGetter serves stored incident attachments by key.
type ImageGetter interface {
	Get(ctx context.Context, key string) ([]byte, string, error)
}

func NewServer(cfg *config.Config, logger *slog.Logger, svc *service.Service, st *store.Store, images ImageGetter) *Server {
	dispatchHandler := dispatch.NewHandler(logger, svc.Dispatch, svc.Report, svc.Stats, st)
	publicHandler := public.NewHandler(logger, svc.Report, images, service.MaxImageBytes)
	systemHandler := system.NewHandler(logger, st)

	r := InitRouter(cfg, dispatchHandler, publicHandler, systemHandler, logger)

	return &Server{
		logger: logger,
		router: r,
		cfg:    *cfg,
	}
}

func InitRouter(cfg *config.Config, dispatchHandler *dispatch.Handler, publicHandler *public.Handler, systemHandler *system.Handler, logger *slog.Logger) *chi.Mux {
	r := chi.NewMux()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Logger)

	r.Route("/api/v1", func(api chi.Router) {
		// DISPATCHER
		api.Route("/dispatch", func(dr chi.Router) {
			dr.Use(middleware.APIKeyMiddleware(cfg.APIKey))
			dr.Use(middleware.Limit(5, 10, 10*time.Minute, logger))

			dr.Post("/preview", dispatchHandler.DispatchPreview)
			dr.Post("/commit", dispatchHandler.DispatchCommit)
			dr.Post("/cancel", dispatchHandler.DispatchCancel)
			dr.Get("/nearby", dispatchHandler.DispatchNearby)
			dr.Get("/stats", dispatchHandler.DispatchStats)
			dr.Put("/filter", dispatchHandler.DispatchFilter)

			dr.Delete("/routes/{id}", dispatchHandler.DispatchRouteDelete)
			dr.Put("/units/{id}/status", dispatchHandler.DispatchUnitStatus)

			dr.Route("/incidents/{id}", func(ir chi.Router) {
				ir.Put("/status", dispatchHandler.DispatchIncidentStatus)
				ir.Delete("/", dispatchHandler.DispatchIncidentDelete)
			})
		})

		// PUBLIC
		api.Route("/incidents", func(pr chi.Router) {
			pr.Use(middleware.Limit(10, 20, 5*time.Minute, logger))
			pr.Post("/", publicHandler.PublicIncidentReport)
			pr.Post("/{id}/verify", publicHandler.PublicIncidentVerify)
			pr.Post("/{id}/image", publicHandler.PublicIncidentImageUpload)
		})
		api.Get("/images/*", publicHandler.PublicImageGet)

		// read model for dashboard polling
		api.Get("/state", dispatchHandler.StateSnapshot)

		// SYSTEM
		api.Get("/health", systemHandler.SystemHealth)
	})

	return r
}

func (s *Server) Run(ctx context.Context) error {
	port := s.cfg.Http.Port
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         port,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Http.ReadTimeout,
		WriteTimeout: s.cfg.Http.WriteTimeout,
		IdleTimeout:  30 * time.Second,
	}

	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("Starting HTTP server",
			slog.String("addr", srv.Addr),
			slog.Duration("read_timeout", s.cfg.Http.ReadTimeout),
			slog.Duration("write_timeout", s.cfg.Http.WriteTimeout),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("ListenAndServe error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server", slog.String("reason", ctx.Err().Error()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Http.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Server shutdown failed", slog.Any("error", err))
			return err
		}
		return nil

	case err := <-errChan:
		return err
	}
}
