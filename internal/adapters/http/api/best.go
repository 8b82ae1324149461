package api

import (
	"net/http"
	"strconv"

	"github.com/okian/sdvxrec/internal/domain/model"
	"github.com/okian/sdvxrec/internal/domain/ranking"
)

// BestDependencies defines the interface for ranked listings.
type BestDependencies interface {
	Best(n int) []model.CanonicalRecord
}

// BestHandler handles best-N requests.
type BestHandler struct {
	deps     BestDependencies
	maxLimit int
}

// NewBestHandler creates a new best-N handler.
func NewBestHandler(deps BestDependencies, maxLimit int) *BestHandler {
	return &BestHandler{deps: deps, maxLimit: maxLimit}
}

// HandleGetBest handles GET /best?limit=N requests. Without a limit the
// skill set size is used.
func (h *BestHandler) HandleGetBest(w http.ResponseWriter, r *http.Request) {
	n := ranking.SkillSetSize
	if s := r.URL.Query().Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			badRequest(w, "limit must be a positive integer")
			return
		}
		n = v
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", ErrLimitExceeded)
		return
	}
	writeJSON(w, http.StatusOK, ranking.Rank(h.deps.Best(n)))
}
