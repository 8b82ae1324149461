package export_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/sdvxrec/internal/adapters/export"
	"github.com/okian/sdvxrec/internal/adapters/source"
	"github.com/okian/sdvxrec/internal/config"
	"github.com/okian/sdvxrec/internal/domain/model"
)

var fixedNow = time.UnixMilli(1_700_000_000_123)

func records() []model.CanonicalRecord {
	return []model.CanonicalRecord{
		{MusicID: 1, Difficulty: model.DifficultyVivid, Level: 18, Score: 9_900_000, Grade: model.GradeS, ClearType: model.ClearUltimateChain},
		{MusicID: 2, Difficulty: model.DifficultyMaximum, Level: 18, Score: 10_000_000, Grade: model.GradeS, ClearType: model.ClearPerfectUltimateChain},
		{MusicID: 9, MusicName: model.NotFoundName, Difficulty: model.DifficultyUnknown, Score: 8_000_000},
	}
}

func decode(t *testing.T, data []byte) []export.Entry {
	t.Helper()
	var out []export.Entry
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		var e export.Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("decode %q: %v", line, err)
		}
		out = append(out, e)
	}
	return out
}

func TestExporter(t *testing.T) {
	Convey("Given an exporter with a fixed clock", t, func() {
		x, err := export.New("R1", export.WithClock(func() time.Time { return fixedNow }))
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("When writing records", func() {
			var buf bytes.Buffer
			res, err := x.Write(ctx, &buf, records())
			So(err, ShouldBeNil)

			Convey("Then resolved records are written one per line", func() {
				So(res.Written, ShouldEqual, 2)
				So(res.Skipped, ShouldEqual, 1)
				So(strings.Count(buf.String(), "\n"), ShouldEqual, 2)
			})

			Convey("Then codes use the local code space", func() {
				entries := decode(t, buf.Bytes())
				So(entries[0].Type, ShouldEqual, model.CodeInfinite)
				So(entries[0].Grade, ShouldEqual, 10)
				So(entries[0].Clear, ShouldEqual, 4)
				So(entries[1].Type, ShouldEqual, model.CodeMaximum)
				So(entries[1].Clear, ShouldEqual, 5)
			})

			Convey("Then documents carry the log markers", func() {
				line := strings.SplitN(buf.String(), "\n", 2)[0]
				So(line, ShouldContainSubstring, `"collection":"music"`)
				So(line, ShouldContainSubstring, `"createdAt":{"$$date":1700000000123}`)
				So(line, ShouldContainSubstring, `"__a":"sdvx@asphyxia"`)
				So(line, ShouldContainSubstring, `"__s":"plugins_profile"`)
				So(line, ShouldContainSubstring, `"__refid":"R1"`)
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := x.Write(cctx, &bytes.Buffer{}, records())
			So(err, ShouldEqual, context.Canceled)
		})
	})

	Convey("Given no refid", t, func() {
		_, err := export.New("")
		So(err, ShouldEqual, export.ErrNoRefid)
	})
}

func TestRecordID(t *testing.T) {
	Convey("Given the same owner and chart", t, func() {
		a := export.RecordID("R1", 5, 2)

		Convey("Then ids are stable and version 5 shaped", func() {
			So(export.RecordID("R1", 5, 2), ShouldEqual, a)
			So(len(a), ShouldEqual, 36)
			So(a[14], ShouldEqual, byte('5'))
		})

		Convey("Then a different chart or owner changes the id", func() {
			So(export.RecordID("R1", 5, 3), ShouldNotEqual, a)
			So(export.RecordID("R2", 5, 2), ShouldNotEqual, a)
		})
	})
}

func TestRoundTripThroughLocalSource(t *testing.T) {
	Convey("Given records exported to a file", t, func() {
		dir := t.TempDir()
		logPath := filepath.Join(dir, "savedata.db")
		musicPath := filepath.Join(dir, "music_db.xml")
		So(os.WriteFile(musicPath, []byte(`<mdb><music id="1"><info><title_name>x</title_name></info></music></mdb>`), 0o600), ShouldBeNil)

		x, err := export.New("R1", export.WithClock(func() time.Time { return fixedNow }))
		So(err, ShouldBeNil)
		res, err := x.WriteFile(context.Background(), logPath, records())
		So(err, ShouldBeNil)
		So(res.Written, ShouldEqual, 2)

		Convey("When the local source reads it back", func() {
			src, err := source.NewLocal(config.Local{Refid: "R1", RecordPath: logPath, MusicPath: musicPath})
			So(err, ShouldBeNil)
			defer src.Close()

			var got []model.RawScoreEvent
			err = src.Events(context.Background(), func(ev model.RawScoreEvent) { got = append(got, ev) })
			So(err, ShouldBeNil)

			Convey("Then every written record is a local event", func() {
				So(len(got), ShouldEqual, 2)
				So(got[0].MusicID, ShouldEqual, 1)
				So(got[0].DiffCode, ShouldEqual, model.CodeInfinite)
				So(got[0].Score, ShouldEqual, 9_900_000)
				So(got[0].GradeCode, ShouldEqual, 10)
				So(got[1].ClearCode, ShouldEqual, 5)
				So(got[1].Space, ShouldEqual, model.CodeSpaceLocal)
			})
		})
	})
}
