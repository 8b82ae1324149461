// Package stats tallies grades and clear lamps per chart level.
package stats

import (
	"sort"

	"github.com/okian/sdvxrec/internal/domain/model"
)

// Aggregate tallies records per level. When level is non-nil only records of
// exactly that level are considered. Rows come back in ascending level order
// and only for levels that have at least one record.
func Aggregate(records []model.CanonicalRecord, level *uint8) []model.LevelStat {
	byLevel := make(map[uint8]model.LevelStat)
	for _, r := range records {
		if level != nil && r.Level != *level {
			continue
		}
		cur, ok := byLevel[r.Level]
		if !ok {
			cur = model.LevelStat{Level: r.Level}
		}
		byLevel[r.Level] = cur.Add(tally(r))
	}

	out := make([]model.LevelStat, 0, len(byLevel))
	for _, s := range byLevel {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out
}

// tally counts a single record: one grade bucket at most, one clear bucket at
// most, and always one play.
func tally(r model.CanonicalRecord) model.LevelStat {
	s := model.LevelStat{Level: r.Level, Played: 1}
	switch r.Grade {
	case model.GradeS:
		s.S = 1
	case model.GradeAAAPlus:
		s.AAAPlus = 1
	case model.GradeAAA:
		s.AAA = 1
	}
	switch r.ClearType {
	case model.ClearComplete:
		s.NC = 1
	case model.ClearHardComplete:
		s.HC = 1
	case model.ClearUltimateChain:
		s.UC = 1
	case model.ClearPerfectUltimateChain:
		s.PUC = 1
	}
	return s
}
