// Package repository holds the best record per chart.
package repository

import (
	"sort"

	"github.com/okian/sdvxrec/internal/domain/model"
	"github.com/okian/sdvxrec/pkg/metrics"
)

// Key identifies one chart: a music and its resolved difficulty. Refined
// infinite variants are distinct keys.
type Key struct {
	MusicID    uint16
	Difficulty model.Difficulty
}

// KeyOf returns the key a record is stored under.
func KeyOf(rec model.CanonicalRecord) Key {
	return Key{MusicID: rec.MusicID, Difficulty: rec.Difficulty}
}

func (k Key) less(o Key) bool {
	if k.MusicID != o.MusicID {
		return k.MusicID < o.MusicID
	}
	return k.Difficulty < o.Difficulty
}

// BestRecordStore keeps at most one record per Key. It is filled once during
// load and read-only afterwards, so it carries no locking.
type BestRecordStore struct {
	records  map[Key]model.CanonicalRecord
	byMusic  map[uint16][]Key
	capacity int
	metrics  bool
}

// New creates an empty store.
func New(opts ...Option) *BestRecordStore {
	s := &BestRecordStore{metrics: true}
	for _, opt := range opts {
		opt(s)
	}
	s.records = make(map[Key]model.CanonicalRecord, s.capacity)
	s.byMusic = make(map[uint16][]Key, s.capacity)
	return s
}

// Ingest inserts rec when its key is absent, or replaces the stored record
// when rec has a strictly greater volforce. It reports whether the store
// changed.
func (s *BestRecordStore) Ingest(rec model.CanonicalRecord) bool {
	k := KeyOf(rec)
	cur, ok := s.records[k]
	switch {
	case !ok:
		s.records[k] = rec
		s.byMusic[k.MusicID] = append(s.byMusic[k.MusicID], k)
	case rec.Volforce > cur.Volforce:
		s.records[k] = rec
		if s.metrics {
			metrics.RecordRecordReplaced()
		}
	default:
		return false
	}

	if s.metrics {
		metrics.RecordEventIngested()
		metrics.UpdateRecordsStored(len(s.records))
	}
	return true
}

// Get returns the record stored under k.
func (s *BestRecordStore) Get(k Key) (model.CanonicalRecord, bool) {
	rec, ok := s.records[k]
	return rec, ok
}

// GetByIDs returns every stored difficulty of the requested musics, ordered
// by music id then difficulty. Unknown ids contribute nothing and repeated
// ids are returned once.
func (s *BestRecordStore) GetByIDs(ids []uint16) []model.CanonicalRecord {
	seen := make(map[uint16]struct{}, len(ids))
	var keys []Key
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, s.byMusic[id]...)
	}
	return s.collect(keys)
}

// All returns every stored record ordered by music id then difficulty.
func (s *BestRecordStore) All() []model.CanonicalRecord {
	keys := make([]Key, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	return s.collect(keys)
}

// Len returns the number of stored records.
func (s *BestRecordStore) Len() int { return len(s.records) }

func (s *BestRecordStore) collect(keys []Key) []model.CanonicalRecord {
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })
	out := make([]model.CanonicalRecord, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.records[k])
	}
	return out
}
