// Package catalog holds the static chart metadata every record is resolved
// against: id lookup, per-slot levels, name search and per-level counts.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/okian/sdvxrec/internal/domain/model"
)

// FuzzyThreshold is the minimum similarity for a fuzzy name match.
const FuzzyThreshold = 0.5

// Catalog is an immutable index over the loaded music entries.
type Catalog struct {
	byID   map[uint16]model.Music
	byName map[string][]uint16
	names  []string // distinct lower-cased names, for fuzzy scans
	metric strutil.StringMetric

	skipped []uint16
}

// New indexes musics. A later entry with an id already seen replaces the
// earlier one. Entries without a name are left out and reported by Skipped;
// a non-empty list in which no entry has a name is a parse failure.
func New(musics []model.Music) (*Catalog, error) {
	c := &Catalog{
		byID:   make(map[uint16]model.Music, len(musics)),
		byName: make(map[string][]uint16, len(musics)),
		metric: metrics.NewJaroWinkler(),
	}
	for _, m := range musics {
		if strings.TrimSpace(m.Name) == "" {
			c.skipped = append(c.skipped, m.ID)
			continue
		}
		c.byID[m.ID] = m
	}
	if len(musics) > 0 && len(c.byID) == 0 {
		return nil, fmt.Errorf("%w: none of %d music entries has a name", ErrParseFailure, len(musics))
	}

	for id, m := range c.byID {
		key := normalize(m.Name)
		if _, ok := c.byName[key]; !ok {
			c.names = append(c.names, key)
		}
		c.byName[key] = append(c.byName[key], id)
	}
	sort.Strings(c.names)
	for _, ids := range c.byName {
		sortIDs(ids)
	}
	return c, nil
}

// Len returns the number of distinct music ids.
func (c *Catalog) Len() int { return len(c.byID) }

// Skipped returns the ids of the entries New left out for having no name,
// in input order.
func (c *Catalog) Skipped() []uint16 {
	return append([]uint16(nil), c.skipped...)
}

// Resolve returns the music with the given id.
func (c *Catalog) Resolve(id uint16) (model.Music, bool) {
	m, ok := c.byID[id]
	return m, ok
}

// DisplayName returns the music name, or model.NotFoundName for unknown ids.
func (c *Catalog) DisplayName(id uint16) string {
	if m, ok := c.byID[id]; ok {
		return m.Name
	}
	return model.NotFoundName
}

// LevelFor returns the level of one chart slot; 0 when the music or the slot
// is unknown.
func (c *Catalog) LevelFor(id uint16, code uint8) uint8 {
	m, ok := c.byID[id]
	if !ok {
		return 0
	}
	return m.Levels.ForCode(code)
}

// CountAtLevel counts chart slots across every difficulty whose level is
// exactly level. Empty slots (level 0) are never counted.
func (c *Catalog) CountAtLevel(level uint8) int {
	if level == 0 {
		return 0
	}
	n := 0
	for _, m := range c.byID {
		for _, l := range m.Levels.All() {
			if l == level {
				n++
			}
		}
	}
	return n
}

// SearchByName returns the ids whose name equals query, ignoring case. With
// fuzzy set, names whose similarity to query reaches FuzzyThreshold match as
// well. The result is in ascending id order and may be empty.
func (c *Catalog) SearchByName(query string, fuzzy bool) []uint16 {
	q := normalize(query)
	if q == "" {
		return nil
	}
	if !fuzzy {
		ids := c.byName[q]
		out := make([]uint16, len(ids))
		copy(out, ids)
		return out
	}

	var out []uint16
	for _, name := range c.names {
		if name == q || strutil.Similarity(q, name, c.metric) >= FuzzyThreshold {
			out = append(out, c.byName[name]...)
		}
	}
	sortIDs(out)
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func sortIDs(ids []uint16) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
