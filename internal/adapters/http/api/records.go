package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okian/sdvxrec/internal/domain/model"
)

// RecordsDependencies defines the interface for record lookups.
type RecordsDependencies interface {
	RecordsByID(ids []uint16) []model.CanonicalRecord
	RecordsByName(name string) []model.CanonicalRecord
}

// RecordsHandler handles record lookups by id and by name.
type RecordsHandler struct {
	deps RecordsDependencies
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(deps RecordsDependencies) *RecordsHandler {
	return &RecordsHandler{deps: deps}
}

// HandleGetRecords handles GET /records/{id} requests. Several ids may be
// joined with commas.
func (h *RecordsHandler) HandleGetRecords(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(chi.URLParam(r, "id"), ",")
	ids := make([]uint16, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(p), 10, 16)
		if err != nil {
			badRequest(w, "invalid music id %q", p)
			return
		}
		ids = append(ids, uint16(id))
	}
	writeRecords(w, h.deps.RecordsByID(ids))
}

// HandleSearch handles GET /search?q=name requests.
func (h *RecordsHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		badRequest(w, "missing q")
		return
	}
	writeRecords(w, h.deps.RecordsByName(q))
}

func writeRecords(w http.ResponseWriter, records []model.CanonicalRecord) {
	if len(records) == 0 {
		writeError(w, http.StatusNotFound, "not_found", ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
