package realtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sameezy667/ResQ-sub000/internal/domain"
	"github.com/sameezy667/ResQ-sub000/internal/geo"
	"github.com/sameezy667/ResQ-sub000/internal/mapper"
	"github.com/sameezy667/ResQ-sub000/internal/store"
)

// ChangeFeed is the push-based event source the merger consumes.
type ChangeFeed interface {
	Subscribe(ctx context.Context, table string) (<-chan domain.ChangeEvent, error)
	Unsubscribe(table string) error
}

// Merger folds realtime change events into the store. One consumer
// goroutine per watched table preserves per-table delivery order; no
// ordering holds across tables. Every event is applied under panic
// isolation so one bad payload never kills a subscription, and a feed
// that is down at startup degrades to fetch-only operation.
type Merger struct {
	store  *store.Store
	mapper *mapper.Mapper
	geo    *geo.Normalizer
	feed   ChangeFeed
	logger *slog.Logger

	wg         sync.WaitGroup
	subscribed []string
}

func NewMerger(st *store.Store, m *mapper.Mapper, feed ChangeFeed, logger *slog.Logger) *Merger {
	return &Merger{
		store:  st,
		mapper: m,
		geo:    geo.NewNormalizer(logger),
		feed:   feed,
		logger: logger,
	}
}

var watchedTables = []string{domain.TableIncidents, domain.TableUnits, domain.TableDispatches}

// Start opens one subscription per watched table. A failed subscription
// is logged and skipped; the store stays usable on fetched data.
func (m *Merger) Start(ctx context.Context) {
	if m.feed == nil {
		m.logger.Warn("realtime feed unavailable, running on fetched data only")
		return
	}

	for _, table := range watchedTables {
		ch, err := m.feed.Subscribe(ctx, table)
		if err != nil {
			m.logger.Error("subscription failed",
				slog.String("table", table),
				slog.Any("error", err),
			)
			continue
		}
		m.subscribed = append(m.subscribed, table)

		m.wg.Add(1)
		go func(table string, ch <-chan domain.ChangeEvent) {
			defer m.wg.Done()
			m.consume(ctx, table, ch)
		}(table, ch)
	}

	m.logger.Info("realtime merge started", slog.Int("subscriptions", len(m.subscribed)))
}

// Close unsubscribes every active channel. An individual unsubscribe
// failure is logged and does not prevent clearing the registry.
func (m *Merger) Close() {
	for _, table := range m.subscribed {
		if err := m.feed.Unsubscribe(table); err != nil {
			m.logger.Error("unsubscribe failed",
				slog.String("table", table),
				slog.Any("error", err),
			)
		}
	}
	m.subscribed = nil
	m.wg.Wait()
}

func (m *Merger) consume(ctx context.Context, table string, ch <-chan domain.ChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				m.logger.Info("change stream closed", slog.String("table", table))
				return
			}
			m.apply(table, ev)
		}
	}
}

// apply dispatches one event under panic isolation.
func (m *Merger) apply(table string, ev domain.ChangeEvent) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("event handler panicked",
				slog.String("table", table),
				slog.String("type", string(ev.Type)),
				slog.Any("panic", r),
			)
		}
	}()

	switch table {
	case domain.TableIncidents:
		m.applyIncident(ev)
	case domain.TableUnits:
		m.applyUnit(ev)
	case domain.TableDispatches:
		m.applyDispatch(ev)
	default:
		m.logger.Warn("event for unwatched table", slog.String("table", table))
	}
}

func (m *Merger) applyIncident(ev domain.ChangeEvent) {
	switch ev.Type {
	case domain.EventInsert:
		inc := m.mapper.Incident(ev.New)
		if inc == nil {
			m.logger.Warn("dropping incident insert with invalid geodata",
				slog.String("id", rowID(ev.New)),
			)
			return
		}
		m.store.UpsertIncident(*inc)

	case domain.EventUpdate:
		// re-validate coordinates even though the patch does not touch
		// them; a partially corrupt row is dropped whole
		if !m.validGeo(ev.New) {
			m.logger.Warn("dropping incident update with invalid geodata",
				slog.String("id", rowID(ev.New)),
			)
			return
		}
		id := rowID(ev.New)
		if id == "" {
			id = rowID(ev.Old)
		}
		if !m.store.PatchIncident(id, incidentPatch(ev.New)) {
			m.logger.Debug("update for unknown incident", slog.String("id", id))
		}

	case domain.EventDelete:
		id := rowID(ev.Old)
		if !m.store.RemoveIncident(id) {
			m.logger.Debug("delete for unknown incident", slog.String("id", id))
		}
	}
}

func (m *Merger) applyUnit(ev domain.ChangeEvent) {
	switch ev.Type {
	case domain.EventInsert:
		u := m.mapper.Unit(ev.New)
		if u == nil {
			m.logger.Warn("dropping unit insert with invalid geodata",
				slog.String("id", rowID(ev.New)),
			)
			return
		}
		m.store.UpsertUnit(*u)

	case domain.EventUpdate:
		loc, ok := m.geo.Extract(ev.New)
		if !ok || !loc.InRange() {
			m.logger.Warn("dropping unit update with invalid geodata",
				slog.String("id", rowID(ev.New)),
			)
			return
		}
		id := rowID(ev.New)
		if id == "" {
			id = rowID(ev.Old)
		}
		patch := domain.UnitPatch{Location: &loc}
		if s, found := ev.New["status"].(string); found && s != "" {
			status := domain.UnitStatus(s)
			patch.Status = &status
		}
		if !m.store.PatchUnit(id, patch) {
			m.logger.Debug("update for unknown unit", slog.String("id", id))
		}

	case domain.EventDelete:
		id := rowID(ev.Old)
		if !m.store.RemoveUnit(id) {
			m.logger.Debug("delete for unknown unit", slog.String("id", id))
		}
	}
}

func (m *Merger) applyDispatch(ev domain.ChangeEvent) {
	switch ev.Type {
	case domain.EventInsert:
		m.store.AppendRoute(m.mapper.Route(ev.New))
	case domain.EventDelete:
		id := rowID(ev.Old)
		if !m.store.RemoveRoute(id) {
			m.logger.Debug("delete for unknown route", slog.String("id", id))
		}
	default:
		// dispatches are immutable once created; updates carry nothing
		// the dashboard uses
		m.logger.Debug("ignoring dispatch update", slog.String("id", rowID(ev.New)))
	}
}

func (m *Merger) validGeo(row domain.Row) bool {
	loc, ok := m.geo.Extract(row)
	return ok && loc.InRange()
}

// incidentPatch picks out only the fields realtime updates are
// authoritative for; everything else stays untouched.
func incidentPatch(row domain.Row) domain.IncidentPatch {
	var patch domain.IncidentPatch
	if s, ok := row["status"].(string); ok && s != "" {
		status := domain.IncidentStatus(s)
		patch.Status = &status
	}
	if s, ok := row["severity"].(string); ok && s != "" {
		severity := domain.Severity(s)
		patch.Severity = &severity
	}
	if v, ok := row["verified"].(bool); ok {
		patch.Verified = &v
	}
	if n, ok := intValue(row["verify_count"]); ok {
		patch.VerifyCount = &n
	}
	if units, ok := stringSlice(row["assigned_unit_ids"]); ok {
		patch.AssignedUnitIDs = &units
	}
	return patch
}

func rowID(row domain.Row) string {
	if row == nil {
		return ""
	}
	id, _ := row["id"].(string)
	return id
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func stringSlice(v any) ([]string, bool) {
	switch s := v.(type) {
	case []string:
		return s, true
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, str)
		}
		return out, true
	}
	return nil, false
}
