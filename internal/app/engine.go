// Package app wires a backend, the catalog and the record store into the
// query engine used by the shell, the query API and the exporter.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/sdvxrec/internal/adapters/repository"
	"github.com/okian/sdvxrec/internal/adapters/source"
	"github.com/okian/sdvxrec/internal/domain/catalog"
	"github.com/okian/sdvxrec/internal/domain/model"
	"github.com/okian/sdvxrec/internal/domain/ranking"
	"github.com/okian/sdvxrec/internal/domain/scoring"
	"github.com/okian/sdvxrec/internal/domain/stats"
	"github.com/okian/sdvxrec/pkg/logger"
	"github.com/okian/sdvxrec/pkg/metrics"
)

// Load stages, used as metric labels.
const (
	stageCatalog = "catalog"
	stageEvents  = "events"
)

// Engine holds the loaded catalog and best records. It is read-only after
// Load returns, so the shell and the query API may share it.
type Engine struct {
	source  string
	catalog *catalog.Catalog
	store   *repository.BestRecordStore

	log     logger.Logger
	fuzzy   bool
	metrics bool

	eventsRead     int
	eventsIngested int
	loadDuration   time.Duration
}

// Stats describes a loaded engine.
type Stats struct {
	Source         string        `json:"source"`
	Music          int           `json:"music"`
	Records        int           `json:"records"`
	EventsRead     int           `json:"events_read"`
	EventsIngested int           `json:"events_ingested"`
	LoadDuration   time.Duration `json:"load_duration"`
}

// Load reads the catalog and every score event from src and folds them into
// the best record store. Any backend or catalog failure aborts the load; no
// partial engine is returned. src is not closed.
func Load(ctx context.Context, src source.Source, opts ...Option) (*Engine, error) {
	if src == nil {
		return nil, ErrNoSource
	}
	e := &Engine{
		source:  src.Name(),
		log:     logger.Nop(),
		fuzzy:   true,
		metrics: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	started := time.Now()

	musics, err := src.Catalog(ctx)
	if err == nil {
		e.catalog, err = catalog.New(musics)
	}
	if err != nil {
		e.loadFailed(stageCatalog)
		return nil, fmt.Errorf("load catalog from %s: %w", e.source, err)
	}
	e.observeLoad(stageCatalog, started)
	if e.metrics {
		metrics.UpdateCatalogSize(e.catalog.Len())
	}
	if skipped := e.catalog.Skipped(); len(skipped) > 0 {
		e.log.Debug(ctx, "skipping music without a title", logger.Int("count", len(skipped)), logger.Any("ids", skipped))
	}
	e.log.Info(ctx, "catalog loaded", logger.String("source", e.source), logger.Int("music", e.catalog.Len()))

	eventsStarted := time.Now()
	e.store = repository.New(repository.WithCapacity(e.catalog.Len()), repository.WithMetrics(e.metrics))
	err = src.Events(ctx, func(ev model.RawScoreEvent) {
		e.eventsRead++
		if e.metrics {
			metrics.RecordEventRead(e.source)
		}
		if e.store.Ingest(scoring.Build(ev, e.catalog)) {
			e.eventsIngested++
		}
	})
	if err != nil {
		e.loadFailed(stageEvents)
		return nil, fmt.Errorf("load events from %s: %w", e.source, err)
	}
	e.observeLoad(stageEvents, eventsStarted)
	e.loadDuration = time.Since(started)

	e.log.Info(ctx, "records loaded",
		logger.String("source", e.source),
		logger.Int("events", e.eventsRead),
		logger.Int("records", e.store.Len()),
		logger.Any("duration", e.loadDuration),
	)
	if e.metrics {
		metrics.UpdateVolforce(uint32(ranking.AverageSkill(e.store.All())))
	}
	return e, nil
}

func (e *Engine) loadFailed(stage string) {
	if e.metrics {
		metrics.RecordLoadError(stage)
	}
}

func (e *Engine) observeLoad(stage string, since time.Time) {
	if e.metrics {
		metrics.RecordLoadDuration(stage, float64(time.Since(since).Microseconds())/1000)
	}
}

// observe returns a func that records one query of the given kind.
func (e *Engine) observe(kind string) func() {
	if !e.metrics {
		return func() {}
	}
	start := time.Now()
	return func() {
		metrics.RecordQuery(kind, float64(time.Since(start).Microseconds())/1000)
	}
}

// RecordsByID returns every stored difficulty of the given musics.
func (e *Engine) RecordsByID(ids []uint16) []model.CanonicalRecord {
	defer e.observe("by_id")()
	return e.store.GetByIDs(ids)
}

// RecordsByName searches the catalog by name and returns the records of
// every matching music.
func (e *Engine) RecordsByName(name string) []model.CanonicalRecord {
	defer e.observe("by_name")()
	return e.store.GetByIDs(e.catalog.SearchByName(name, e.fuzzy))
}

// SearchMusic returns the ids of the musics whose name matches.
func (e *Engine) SearchMusic(name string) []uint16 {
	return e.catalog.SearchByName(name, e.fuzzy)
}

// Best returns the n best records by volforce.
func (e *Engine) Best(n int) []model.CanonicalRecord {
	defer e.observe("best")()
	return ranking.BestN(e.store.All(), n)
}

// Best50 returns the records that make up the aggregate volforce.
func (e *Engine) Best50() []model.CanonicalRecord {
	return e.Best(ranking.SkillSetSize)
}

// Volforce returns the aggregate skill score.
func (e *Engine) Volforce() model.Volforce {
	defer e.observe("volforce")()
	vf := ranking.AverageSkill(e.store.All())
	if e.metrics {
		metrics.UpdateVolforce(uint32(vf))
	}
	return vf
}

// LevelStats tallies grades and clears per level; nil means every level.
func (e *Engine) LevelStats(level *uint8) []model.LevelStat {
	defer e.observe("level_stats")()
	return stats.Aggregate(e.store.All(), level)
}

// LevelCount returns how many charts of the catalog have the given level.
func (e *Engine) LevelCount(level uint8) int {
	return e.catalog.CountAtLevel(level)
}

// MusicName returns the catalog name of a music or the placeholder.
func (e *Engine) MusicName(id uint16) string {
	return e.catalog.DisplayName(id)
}

// Records returns every stored record ordered by music and difficulty.
func (e *Engine) Records() []model.CanonicalRecord {
	defer e.observe("all")()
	return e.store.All()
}

// Stats describes the loaded state.
func (e *Engine) Stats() Stats {
	return Stats{
		Source:         e.source,
		Music:          e.catalog.Len(),
		Records:        e.store.Len(),
		EventsRead:     e.eventsRead,
		EventsIngested: e.eventsIngested,
		LoadDuration:   e.loadDuration,
	}
}
