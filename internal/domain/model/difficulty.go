package model

// Difficulty is the resolved chart slot of a record.
type Difficulty uint8

// Difficulties ordered from easiest to the maximum slot. Gravity, Heaven and
// Vivid are renamed Infinite charts selected by the catalog's version byte.
const (
	DifficultyUnknown Difficulty = iota
	DifficultyNovice
	DifficultyAdvanced
	DifficultyExhaust
	DifficultyInfinite
	DifficultyGravity
	DifficultyHeaven
	DifficultyVivid
	DifficultyMaximum
)

// Difficulty ordinal codes shared by both backends.
const (
	CodeNovice   uint8 = 0
	CodeAdvanced uint8 = 1
	CodeExhaust  uint8 = 2
	CodeInfinite uint8 = 3
	CodeMaximum  uint8 = 4
)

// Infinite variant version bytes.
const (
	InfVerGravity uint8 = 3
	InfVerHeaven  uint8 = 4
	InfVerVivid   uint8 = 5
)

var difficultyLabels = [...]string{
	DifficultyUnknown:  "UNKNOWN",
	DifficultyNovice:   "NOV",
	DifficultyAdvanced: "ADV",
	DifficultyExhaust:  "EXH",
	DifficultyInfinite: "INF",
	DifficultyGravity:  "GRV",
	DifficultyHeaven:   "HVN",
	DifficultyVivid:    "VVD",
	DifficultyMaximum:  "MXM",
}

func (d Difficulty) String() string {
	if int(d) < len(difficultyLabels) {
		return difficultyLabels[d]
	}
	return difficultyLabels[DifficultyUnknown]
}

// DifficultyFromCode maps an ordinal code to its base difficulty.
func DifficultyFromCode(code uint8) Difficulty {
	switch code {
	case CodeNovice:
		return DifficultyNovice
	case CodeAdvanced:
		return DifficultyAdvanced
	case CodeExhaust:
		return DifficultyExhaust
	case CodeInfinite:
		return DifficultyInfinite
	case CodeMaximum:
		return DifficultyMaximum
	default:
		return DifficultyUnknown
	}
}

// WithInfVer refines Infinite into the variant named by the version byte.
// Every other difficulty is returned unchanged.
func (d Difficulty) WithInfVer(infVer uint8) Difficulty {
	if d != DifficultyInfinite {
		return d
	}
	switch infVer {
	case InfVerGravity:
		return DifficultyGravity
	case InfVerHeaven:
		return DifficultyHeaven
	case InfVerVivid:
		return DifficultyVivid
	default:
		return d
	}
}

// Code folds the difficulty back into its ordinal code. Infinite variants
// share the infinite slot; Unknown maps to novice.
func (d Difficulty) Code() uint8 {
	switch d {
	case DifficultyAdvanced:
		return CodeAdvanced
	case DifficultyExhaust:
		return CodeExhaust
	case DifficultyInfinite, DifficultyGravity, DifficultyHeaven, DifficultyVivid:
		return CodeInfinite
	case DifficultyMaximum:
		return CodeMaximum
	default:
		return CodeNovice
	}
}
