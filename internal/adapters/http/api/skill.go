package api

import (
	"net/http"
	"strconv"

	"github.com/okian/sdvxrec/internal/domain/model"
)

// SkillDependencies defines the interface for aggregate queries.
type SkillDependencies interface {
	Volforce() model.Volforce
	LevelStats(level *uint8) []model.LevelStat
	LevelCount(level uint8) int
}

// SkillHandler serves the aggregate volforce and per-level tallies.
type SkillHandler struct {
	deps SkillDependencies
}

// NewSkillHandler creates a new skill handler.
func NewSkillHandler(deps SkillDependencies) *SkillHandler {
	return &SkillHandler{deps: deps}
}

type volforceResponse struct {
	Volforce string `json:"volforce"`
	Internal uint32 `json:"internal"`
}

// HandleVolforce handles GET /volforce requests.
func (h *SkillHandler) HandleVolforce(w http.ResponseWriter, _ *http.Request) {
	v := h.deps.Volforce()
	writeJSON(w, http.StatusOK, volforceResponse{Volforce: v.String(), Internal: uint32(v)})
}

type levelRow struct {
	model.LevelStat
	Charts int `json:"charts"`
}

// HandleLevels handles GET /levels[?level=N] requests. Level 0 selects the
// records whose chart could not be resolved.
func (h *SkillHandler) HandleLevels(w http.ResponseWriter, r *http.Request) {
	var level *uint8
	if s := r.URL.Query().Get("level"); s != "" {
		v, err := strconv.ParseUint(s, 10, 8)
		if err != nil {
			badRequest(w, "invalid level %q", s)
			return
		}
		l := uint8(v)
		level = &l
	}
	stats := h.deps.LevelStats(level)
	rows := make([]levelRow, 0, len(stats))
	for _, st := range stats {
		rows = append(rows, levelRow{LevelStat: st, Charts: h.deps.LevelCount(st.Level)})
	}
	writeJSON(w, http.StatusOK, rows)
}
