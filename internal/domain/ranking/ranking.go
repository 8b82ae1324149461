// Package ranking selects the best records and derives the aggregate skill
// score from them.
package ranking

import (
	"sort"

	"github.com/okian/sdvxrec/internal/domain/model"
	"github.com/okian/sdvxrec/internal/domain/types"
)

// SkillSetSize is the number of records the aggregate skill score averages.
const SkillSetSize = 50

// less orders records by volforce desc, then music id asc, then difficulty asc.
func less(a, b model.CanonicalRecord) bool {
	if a.Volforce != b.Volforce {
		return a.Volforce > b.Volforce
	}
	if a.MusicID != b.MusicID {
		return a.MusicID < b.MusicID
	}
	return a.Difficulty < b.Difficulty
}

// BestN returns up to n records in ranking order. The input is not modified.
// n <= 0 yields an empty result.
func BestN(records []model.CanonicalRecord, n int) []model.CanonicalRecord {
	if n <= 0 || len(records) == 0 {
		return []model.CanonicalRecord{}
	}
	sorted := make([]model.CanonicalRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// AverageSkill sums the volforce of the best SkillSetSize records and divides
// by SkillSetSize, even when fewer records exist.
func AverageSkill(records []model.CanonicalRecord) model.Volforce {
	var sum uint64
	for _, r := range BestN(records, SkillSetSize) {
		sum += uint64(r.Volforce)
	}
	return model.Volforce(sum / SkillSetSize) //nolint:gosec // at most the largest single volforce
}

// Rank numbers records positionally starting at 1, in the given order.
func Rank(records []model.CanonicalRecord) []types.Entry {
	out := make([]types.Entry, len(records))
	for i, r := range records {
		out[i] = types.Entry{Rank: i + 1, Record: r}
	}
	return out
}
