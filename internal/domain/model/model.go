// Package model contains the domain values passed between the catalog, the
// ingestion adapters, the record store and the query layer.
package model

import "fmt"

// NotFoundName is the display name of a record whose music is not in the catalog.
const NotFoundName = "(NOT FOUND)"

// Volforce is a skill value in thousandths: 12345 displays as "12.345".
type Volforce uint32

func (v Volforce) String() string {
	return fmt.Sprintf("%d.%03d", uint32(v)/1000, uint32(v)%1000)
}

// Levels holds the level of each chart slot of a music; 0 means no chart.
type Levels struct {
	Novice   uint8 `json:"novice"`
	Advanced uint8 `json:"advanced"`
	Exhaust  uint8 `json:"exhaust"`
	Infinite uint8 `json:"infinite"`
	Maximum  uint8 `json:"maximum"`
}

// ForCode returns the level stored in the slot for a difficulty code.
func (l Levels) ForCode(code uint8) uint8 {
	switch code {
	case CodeNovice:
		return l.Novice
	case CodeAdvanced:
		return l.Advanced
	case CodeExhaust:
		return l.Exhaust
	case CodeInfinite:
		return l.Infinite
	case CodeMaximum:
		return l.Maximum
	default:
		return 0
	}
}

// Set stores a level in the slot for a difficulty code. Unknown codes are ignored.
func (l *Levels) Set(code, level uint8) {
	switch code {
	case CodeNovice:
		l.Novice = level
	case CodeAdvanced:
		l.Advanced = level
	case CodeExhaust:
		l.Exhaust = level
	case CodeInfinite:
		l.Infinite = level
	case CodeMaximum:
		l.Maximum = level
	}
}

// All returns the five slots in code order.
func (l Levels) All() [5]uint8 {
	return [5]uint8{l.Novice, l.Advanced, l.Exhaust, l.Infinite, l.Maximum}
}

// Music is a catalog entry. It is immutable once the catalog is loaded.
type Music struct {
	ID     uint16
	Name   string
	Levels Levels
	InfVer uint8
}

// RawScoreEvent is one play result as read from a backend, before it is
// resolved against the catalog.
type RawScoreEvent struct {
	Owner     string
	MusicID   uint16
	DiffCode  uint8
	Score     uint32
	GradeCode uint16
	ClearCode uint16
	Space     CodeSpace
}

// CanonicalRecord is a play result resolved against the catalog.
type CanonicalRecord struct {
	MusicID    uint16     `json:"music_id"`
	MusicName  string     `json:"music_name"`
	Difficulty Difficulty `json:"difficulty"`
	Level      uint8      `json:"level"`
	Score      uint32     `json:"score"`
	Grade      Grade      `json:"grade"`
	ClearType  ClearType  `json:"clear_type"`
	Volforce   Volforce   `json:"volforce"`
}

// LevelStat tallies grades and clear lamps of the records at one level.
type LevelStat struct {
	Level   uint8 `json:"level"`
	S       int   `json:"s"`
	AAAPlus int   `json:"aaa_plus"`
	AAA     int   `json:"aaa"`
	NC      int   `json:"nc"`
	HC      int   `json:"hc"`
	UC      int   `json:"uc"`
	PUC     int   `json:"puc"`
	Played  int   `json:"played"`
}

// Add merges two stats field by field. The receiver's level is kept since
// only stats of the same level are ever merged.
func (s LevelStat) Add(o LevelStat) LevelStat {
	return LevelStat{
		Level:   s.Level,
		S:       s.S + o.S,
		AAAPlus: s.AAAPlus + o.AAAPlus,
		AAA:     s.AAA + o.AAA,
		NC:      s.NC + o.NC,
		HC:      s.HC + o.HC,
		UC:      s.UC + o.UC,
		PUC:     s.PUC + o.PUC,
		Played:  s.Played + o.Played,
	}
}
