package repl

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/okian/sdvxrec/internal/domain/model"
	"github.com/okian/sdvxrec/internal/domain/types"
)

// table buffers rows and aligns them in columns on flush.
type table struct {
	tw *tabwriter.Writer
}

func newTable(w io.Writer, header ...string) *table {
	t := &table{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
	t.row(header...)
	seps := make([]string, len(header))
	for i, h := range header {
		seps[i] = strings.Repeat("-", len(h))
	}
	t.row(seps...)
	return t
}

func (t *table) row(cells ...string) {
	_, _ = fmt.Fprintln(t.tw, strings.Join(cells, "\t"))
}

func (t *table) flush() error {
	return t.tw.Flush()
}

var recordHeader = []string{"music id", "music name", "difficulty", "level", "score", "grade", "clear lamp", "volforce"}

func recordCells(r model.CanonicalRecord) []string {
	return []string{
		fmt.Sprint(r.MusicID),
		r.MusicName,
		r.Difficulty.String(),
		fmt.Sprint(r.Level),
		fmt.Sprint(r.Score),
		r.Grade.String(),
		r.ClearType.String(),
		r.Volforce.String(),
	}
}

func writeRecords(w io.Writer, records []model.CanonicalRecord) error {
	t := newTable(w, recordHeader...)
	for _, r := range records {
		t.row(recordCells(r)...)
	}
	return t.flush()
}

func writeRanked(w io.Writer, entries []types.Entry) error {
	t := newTable(w, append([]string{"rank"}, recordHeader...)...)
	for _, e := range entries {
		t.row(append([]string{fmt.Sprint(e.Rank)}, recordCells(e.Record)...)...)
	}
	return t.flush()
}

func writeLevelStats(w io.Writer, rows []model.LevelStat, total func(uint8) int) error {
	t := newTable(w, "level", "S", "AAA+", "AAA", "PUC", "UC", "HC", "NC", "played", "charts")
	for _, s := range rows {
		t.row(
			fmt.Sprint(s.Level),
			fmt.Sprint(s.S),
			fmt.Sprint(s.AAAPlus),
			fmt.Sprint(s.AAA),
			fmt.Sprint(s.PUC),
			fmt.Sprint(s.UC),
			fmt.Sprint(s.HC),
			fmt.Sprint(s.NC),
			fmt.Sprint(s.Played),
			fmt.Sprint(total(s.Level)),
		)
	}
	return t.flush()
}
