package service

import (
	"context"
	"log/slog"

	"github.com/sameezy667/ResQ-sub000/internal/mapper"
	"github.com/sameezy667/ResQ-sub000/internal/store"
)

// Loader performs the initial (and any later) bulk loads. Loads never
// raise: a fetch failure is logged and the last-known-good collection is
// kept, so a transient blip does not blank the dashboard. The realtime
// layer converges the state afterwards.
type Loader struct {
	store      *store.Store
	mapper     *mapper.Mapper
	incidents  IncidentRepository
	units      UnitRepository
	dispatches DispatchRepository
	logger     *slog.Logger
}

func NewLoader(
	st *store.Store,
	m *mapper.Mapper,
	incidents IncidentRepository,
	units UnitRepository,
	dispatches DispatchRepository,
	logger *slog.Logger,
) *Loader {
	return &Loader{
		store:      st,
		mapper:     m,
		incidents:  incidents,
		units:      units,
		dispatches: dispatches,
		logger:     logger,
	}
}

func (l *Loader) LoadIncidents(ctx context.Context) {
	l.setLoading(func(f *store.Loading) { f.Incidents = true })
	defer l.setLoading(func(f *store.Loading) { f.Incidents = false })

	rows, err := l.incidents.ListRows(ctx)
	if err != nil {
		l.logger.Error("incident load failed, keeping cached collection", slog.Any("error", err))
		return
	}
	mapped := l.mapper.Incidents(rows)
	l.store.SetIncidents(mapped)
	l.logger.Info("incidents loaded",
		slog.Int("rows", len(rows)),
		slog.Int("mapped", len(mapped)),
	)
}

func (l *Loader) LoadUnits(ctx context.Context) {
	l.setLoading(func(f *store.Loading) { f.Units = true })
	defer l.setLoading(func(f *store.Loading) { f.Units = false })

	rows, err := l.units.ListRows(ctx)
	if err != nil {
		l.logger.Error("unit load failed, keeping cached collection", slog.Any("error", err))
		return
	}
	mapped := l.mapper.Units(rows)
	l.store.SetUnits(mapped)
	l.logger.Info("units loaded",
		slog.Int("rows", len(rows)),
		slog.Int("mapped", len(mapped)),
	)
}

func (l *Loader) LoadRoutes(ctx context.Context) {
	l.setLoading(func(f *store.Loading) { f.Routes = true })
	defer l.setLoading(func(f *store.Loading) { f.Routes = false })

	rows, err := l.dispatches.ListRows(ctx)
	if err != nil {
		l.logger.Error("route load failed, keeping cached collection", slog.Any("error", err))
		return
	}
	l.store.SetRoutes(l.mapper.Routes(rows))
	l.logger.Info("routes loaded", slog.Int("rows", len(rows)))
}

func (l *Loader) LoadAll(ctx context.Context) {
	l.LoadIncidents(ctx)
	l.LoadUnits(ctx)
	l.LoadRoutes(ctx)
}

func (l *Loader) setLoading(mutate func(*store.Loading)) {
	flags := l.store.Loading()
	mutate(&flags)
	l.store.SetLoading(flags)
}
