// Package scoring turns raw score events into canonical records and computes
// the volforce of a single chart result.
package scoring

import "github.com/okian/sdvxrec/internal/domain/model"

// volforceDivisor brings level*score*gradeCoef*clearCoef into thousandths.
const volforceDivisor = 100_000_000

// Resolver is the part of the catalog the builder needs.
type Resolver interface {
	Resolve(id uint16) (model.Music, bool)
	LevelFor(id uint16, code uint8) uint8
}

// Volforce computes floor(level*score*gradeCoef*clearCoef / 1e8). All
// arithmetic is unsigned 64-bit, so the largest input cannot overflow.
func Volforce(level uint8, score uint32, grade model.Grade, clear model.ClearType) model.Volforce {
	v := uint64(level) * uint64(score) * grade.Coef() * clear.Coef() / volforceDivisor
	return model.Volforce(v) //nolint:gosec // bounded by 255*1e7*105*110/1e8
}

// Build resolves ev against the catalog. A music missing from the catalog
// yields an Unknown difficulty, level 0 and the placeholder name.
func Build(ev model.RawScoreEvent, cat Resolver) model.CanonicalRecord {
	rec := model.CanonicalRecord{
		MusicID:    ev.MusicID,
		MusicName:  model.NotFoundName,
		Difficulty: model.DifficultyUnknown,
		Score:      ev.Score,
		Grade:      model.GradeFromCode(ev.Space, ev.GradeCode),
		ClearType:  model.ClearTypeFromCode(ev.Space, ev.ClearCode),
	}

	if m, ok := cat.Resolve(ev.MusicID); ok {
		rec.MusicName = m.Name
		rec.Difficulty = model.DifficultyFromCode(ev.DiffCode).WithInfVer(m.InfVer)
		rec.Level = cat.LevelFor(ev.MusicID, ev.DiffCode)
	}

	rec.Volforce = Volforce(rec.Level, rec.Score, rec.Grade, rec.ClearType)
	return rec
}
