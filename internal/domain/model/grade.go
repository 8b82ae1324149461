package model

// CodeSpace identifies which backend encoding a raw grade/clear code uses.
type CodeSpace uint8

const (
	// CodeSpaceLocal is the small-integer encoding of the local event log.
	CodeSpaceLocal CodeSpace = iota
	// CodeSpaceRemote is the hundreds-scaled encoding of the remote database.
	CodeSpaceRemote
)

func (c CodeSpace) String() string {
	if c == CodeSpaceRemote {
		return "remote"
	}
	return "local"
}

// Grade is the letter grade of a play, ordered worst to best.
type Grade uint8

const (
	GradeNone Grade = iota
	GradeD
	GradeC
	GradeB
	GradeA
	GradeAPlus
	GradeAA
	GradeAAPlus
	GradeAAA
	GradeAAAPlus
	GradeS
)

var gradeLabels = [...]string{"No Grade", "D", "C", "B", "A", "A+", "AA", "AA+", "AAA", "AAA+", "S"}

var gradeCoefs = [...]uint64{0, 80, 82, 85, 88, 91, 94, 97, 100, 102, 105}

// remote grade codes, indexed by Grade.
var remoteGradeCodes = [...]uint16{100, 200, 300, 400, 500, 550, 600, 650, 700, 800, 900}

func (g Grade) String() string {
	if int(g) < len(gradeLabels) {
		return gradeLabels[g]
	}
	return gradeLabels[GradeNone]
}

// Coef is the grade multiplier used by the volforce formula.
func (g Grade) Coef() uint64 {
	if int(g) < len(gradeCoefs) {
		return gradeCoefs[g]
	}
	return 0
}

// GradeFromCode maps a raw grade code in the given code space.
func GradeFromCode(space CodeSpace, code uint16) Grade {
	if space == CodeSpaceRemote {
		for g, c := range remoteGradeCodes {
			if c == code {
				return Grade(g)
			}
		}
		return GradeNone
	}
	if code >= uint16(GradeD) && code <= uint16(GradeS) {
		return Grade(code)
	}
	return GradeNone
}

// Code returns the raw code of g in the given code space.
func (g Grade) Code(space CodeSpace) uint16 {
	if g > GradeS {
		g = GradeNone
	}
	if space == CodeSpaceRemote {
		return remoteGradeCodes[g]
	}
	return uint16(g)
}

// ClearType is the clear lamp of a play.
type ClearType uint8

const (
	ClearNone ClearType = iota
	ClearPlayed
	ClearComplete
	ClearHardComplete
	ClearUltimateChain
	ClearPerfectUltimateChain
)

var clearLabels = [...]string{"No Play", "Crash", "NC", "HC", "UC", "PUC"}

var remoteClearCodes = [...]uint16{50, 100, 200, 300, 400, 500}

func (c ClearType) String() string {
	if int(c) < len(clearLabels) {
		return clearLabels[c]
	}
	return clearLabels[ClearNone]
}

// Coef is the clear multiplier used by the volforce formula.
func (c ClearType) Coef() uint64 {
	switch c {
	case ClearComplete:
		return 100
	case ClearHardComplete:
		return 102
	case ClearUltimateChain:
		return 105
	case ClearPerfectUltimateChain:
		return 110
	default:
		return 50
	}
}

// ClearTypeFromCode maps a raw clear code in the given code space.
func ClearTypeFromCode(space CodeSpace, code uint16) ClearType {
	if space == CodeSpaceRemote {
		for c, v := range remoteClearCodes {
			if v == code {
				return ClearType(c)
			}
		}
		return ClearNone
	}
	if code >= uint16(ClearPlayed) && code <= uint16(ClearPerfectUltimateChain) {
		return ClearType(code)
	}
	return ClearNone
}

// Code returns the raw code of c in the given code space.
func (c ClearType) Code(space CodeSpace) uint16 {
	if c > ClearPerfectUltimateChain {
		c = ClearNone
	}
	if space == CodeSpaceRemote {
		return remoteClearCodes[c]
	}
	return uint16(c)
}
