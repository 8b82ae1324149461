package source_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/text/encoding/japanese"

	"github.com/okian/sdvxrec/internal/adapters/source"
	"github.com/okian/sdvxrec/internal/config"
	"github.com/okian/sdvxrec/internal/domain/catalog"
	"github.com/okian/sdvxrec/internal/domain/model"
	"github.com/okian/sdvxrec/pkg/logger"
)

const refid = "AB973E24894A6D58"

const musicDB = `<?xml version="1.0" encoding="UTF-8"?>
<mdb>
  <music id="1">
    <info>
      <title_name>PROLOGUE</title_name>
      <inf_ver __type="u8">2</inf_ver>
    </info>
    <difficulty>
      <novice><difnum __type="u8">1</difnum></novice>
      <advanced><difnum __type="u8">5</difnum></advanced>
      <exhaust><difnum __type="u8">12</difnum></exhaust>
      <infinite><difnum __type="u8">0</difnum></infinite>
    </difficulty>
  </music>
  <music id="913">
    <info>
      <title_name>Opposite World</title_name>
      <inf_ver __type="u8">4</inf_ver>
    </info>
    <difficulty>
      <novice><difnum __type="u8">6</difnum></novice>
      <advanced><difnum __type="u8">13</difnum></advanced>
      <exhaust><difnum __type="u8">17</difnum></exhaust>
      <infinite><difnum __type="u8">18</difnum></infinite>
      <maximum><difnum __type="u8"></difnum></maximum>
    </difficulty>
  </music>
</mdb>
`

var saveLog = strings.Join([]string{
	`{"collection":"music","mid":913,"type":3,"score":9554896,"exscore":0,"clear":2,"grade":7,"buttonRate":8,"longRate":9,"volRate":9,"_id":"009SMt6YgLg33p8n","createdAt":{"$$date":1633772620910},"updatedAt":{"$$date":1635585980942},"__a":"sdvx@asphyxia","__s":"plugins_profile","__refid":"AB973E24894A6D58"}`,
	`{"collection":"profile","name":"PLAYER","__refid":"AB973E24894A6D58","_id":"p1"}`,
	`{"collection":"music","mid":1,"type":2,"score":9900000,"clear":3,"grade":10,"__refid":"SOMEONEELSE","_id":"x"}`,
	`not json at all`,
	``,
	`{"collection":"music","mid":1,"type":2,"score":9950000,"clear":4,"grade":10,"__refid":"AB973E24894A6D58","_id":"y"}`,
	`{"collection":"music","mid":70000,"type":2,"score":1,"clear":1,"grade":1,"__refid":"AB973E24894A6D58","_id":"z"}`,
}, "\n")

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLocal(t *testing.T) {
	Convey("Given a music database and a save log on disk", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		cfg := config.Local{
			Refid:      refid,
			MusicPath:  writeFile(t, dir, "music_db.xml", []byte(musicDB)),
			RecordPath: writeFile(t, dir, "savedata.db", []byte(saveLog)),
		}
		src, err := source.NewLocal(cfg, source.WithLogger(logger.Nop()))
		So(err, ShouldBeNil)
		So(src.Name(), ShouldEqual, source.NameLocal)

		Convey("When reading the catalog", func() {
			musics, err := src.Catalog(ctx)

			Convey("Then every music element is decoded", func() {
				So(err, ShouldBeNil)
				So(musics, ShouldHaveLength, 2)
				So(musics[1], ShouldResemble, model.Music{
					ID:     913,
					Name:   "Opposite World",
					InfVer: 4,
					Levels: model.Levels{Novice: 6, Advanced: 13, Exhaust: 17, Infinite: 18},
				})
			})
		})

		Convey("When streaming events", func() {
			var events []model.RawScoreEvent
			err := src.Events(ctx, func(ev model.RawScoreEvent) { events = append(events, ev) })

			Convey("Then only this player's music results are yielded", func() {
				So(err, ShouldBeNil)
				So(events, ShouldHaveLength, 2)
				So(events[0], ShouldResemble, model.RawScoreEvent{
					Owner: refid, MusicID: 913, DiffCode: 3, Score: 9554896,
					GradeCode: 7, ClearCode: 2, Space: model.CodeSpaceLocal,
				})
				So(events[1].MusicID, ShouldEqual, 1)
				So(events[1].Score, ShouldEqual, 9950000)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			err := src.Events(cctx, func(model.RawScoreEvent) {})

			Convey("Then the scan stops with the context error", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})

	Convey("Given missing files", t, func() {
		dir := t.TempDir()

		Convey("When the save log does not exist", func() {
			_, err := source.NewLocal(config.Local{
				Refid:      refid,
				MusicPath:  writeFile(t, dir, "music_db.xml", []byte(musicDB)),
				RecordPath: filepath.Join(dir, "missing.db"),
			})
			So(errors.Is(err, source.ErrUnavailable), ShouldBeTrue)
		})

		Convey("When no refid is configured", func() {
			_, err := source.NewLocal(config.Local{})
			So(errors.Is(err, source.ErrUnavailable), ShouldBeTrue)
		})
	})
}

func TestDecodeMusicDB(t *testing.T) {
	Convey("Given XML input", t, func() {
		ctx := context.Background()

		Convey("When the document is Shift_JIS encoded", func() {
			doc := `<?xml version="1.0" encoding="shift_jis"?>
<mdb><music id="5"><info><title_name>ツマミ</title_name><inf_ver>3</inf_ver></info>
<difficulty><infinite><difnum>16</difnum></infinite></difficulty></music></mdb>`
			encoded, err := japanese.ShiftJIS.NewEncoder().String(doc)
			So(err, ShouldBeNil)

			musics, err := source.DecodeMusicDB(ctx, strings.NewReader(encoded))

			Convey("Then titles are decoded to UTF-8", func() {
				So(err, ShouldBeNil)
				So(musics, ShouldHaveLength, 1)
				So(musics[0].Name, ShouldEqual, "ツマミ")
				So(musics[0].InfVer, ShouldEqual, 3)
				So(musics[0].Levels.Infinite, ShouldEqual, 16)
			})
		})

		Convey("When the document is truncated", func() {
			_, err := source.DecodeMusicDB(ctx, strings.NewReader(`<mdb><music id="1"><info>`))

			Convey("Then a catalog parse failure is returned", func() {
				So(errors.Is(err, catalog.ErrParseFailure), ShouldBeTrue)
			})
		})

		Convey("When a level is not a number", func() {
			_, err := source.DecodeMusicDB(ctx, strings.NewReader(`<mdb><music id="1"><info><title_name>x</title_name></info><difficulty><novice><difnum>high</difnum></novice></difficulty></music></mdb>`))
			So(errors.Is(err, catalog.ErrParseFailure), ShouldBeTrue)
		})

		Convey("When there are no music elements", func() {
			_, err := source.DecodeMusicDB(ctx, strings.NewReader(`<mdb></mdb>`))
			So(errors.Is(err, catalog.ErrParseFailure), ShouldBeTrue)
		})
	})
}

func TestScanLog(t *testing.T) {
	Convey("Given a log without a trailing newline", t, func() {
		log := `{"collection":"music","mid":2,"type":0,"score":100,"clear":1,"grade":1,"__refid":"R"}` + "\n" +
			`{"collection":"music","mid":3,"type":1,"score":200,"clear":2,"grade":2,"__refid":"R"}`
		var ids []uint16
		err := source.ScanLog(context.Background(), strings.NewReader(log), "R", func(ev model.RawScoreEvent) {
			ids = append(ids, ev.MusicID)
		}, logger.Nop())

		Convey("Then the last line is still read", func() {
			So(err, ShouldBeNil)
			So(ids, ShouldResemble, []uint16{2, 3})
		})
	})
}
