package source_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/sdvxrec/internal/adapters/source"
	"github.com/okian/sdvxrec/internal/config"
	"github.com/okian/sdvxrec/internal/domain/catalog"
	"github.com/okian/sdvxrec/pkg/logger"
)

func TestOpen(t *testing.T) {
	Convey("Given a configuration", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		cfg := config.New()
		cfg.Local.Refid = refid
		cfg.Local.MusicPath = writeFile(t, dir, "music_db.xml", []byte(musicDB))
		cfg.Local.RecordPath = writeFile(t, dir, "savedata.db", []byte(saveLog))

		Convey("When auto finds the local files", func() {
			src, err := source.Open(ctx, cfg, logger.Nop())

			Convey("Then the local backend is used", func() {
				So(err, ShouldBeNil)
				So(src.Name(), ShouldEqual, source.NameLocal)
			})
		})

		Convey("When auto has broken local files and no remote", func() {
			cfg.Local.RecordPath = filepath.Join(dir, "missing.db")
			_, err := source.Open(ctx, cfg, nil)

			Convey("Then no backend is usable", func() {
				So(errors.Is(err, source.ErrNoBackend), ShouldBeTrue)
				So(errors.Is(err, source.ErrUnavailable), ShouldBeTrue)
			})
		})

		Convey("When auto has a corrupt music database and a remote", func() {
			cfg.Local.MusicPath = writeFile(t, dir, "broken.xml", []byte(`<mdb><music id="x">`))
			cfg.Remote.Address = "db.local"
			cfg.Remote.Username = "player"
			tried := false
			restore := source.SetRemoteOpener(func(ctx context.Context, rc config.Remote, opts ...source.Option) (source.Source, error) {
				tried = true
				return source.NewRemote(ctx, openTestDB(t), rc.Username, rc.GameVersion, opts...)
			})
			defer restore()

			src, err := source.Open(ctx, cfg, logger.Nop())

			Convey("Then the remote backend is used instead", func() {
				So(err, ShouldBeNil)
				So(tried, ShouldBeTrue)
				So(src.Name(), ShouldEqual, source.NameRemote)
				So(src.Close(), ShouldBeNil)
			})
		})

		Convey("When auto has a corrupt music database and the remote is down", func() {
			cfg.Local.MusicPath = writeFile(t, dir, "broken.xml", []byte(`<mdb><music id="x">`))
			cfg.Remote.Address = "db.local"
			cfg.Remote.Username = "player"
			restore := source.SetRemoteOpener(func(context.Context, config.Remote, ...source.Option) (source.Source, error) {
				return nil, fmt.Errorf("%w: remote: connection refused", source.ErrUnavailable)
			})
			defer restore()

			_, err := source.Open(ctx, cfg, nil)

			Convey("Then both failures are reported", func() {
				So(errors.Is(err, source.ErrNoBackend), ShouldBeTrue)
				So(errors.Is(err, catalog.ErrParseFailure), ShouldBeTrue)
				So(errors.Is(err, source.ErrUnavailable), ShouldBeTrue)
			})
		})

		Convey("When local is forced with a corrupt music database", func() {
			cfg.Source = config.SourceLocal
			cfg.Local.MusicPath = writeFile(t, dir, "broken.xml", []byte(`<mdb></mdb>`))
			src, err := source.Open(ctx, cfg, nil)

			Convey("Then Open fails before any load", func() {
				So(src, ShouldBeNil)
				So(errors.Is(err, catalog.ErrParseFailure), ShouldBeTrue)
			})
		})

		Convey("When auto has nothing configured", func() {
			cfg.Local.Refid = ""
			_, err := source.Open(ctx, cfg, nil)
			So(errors.Is(err, source.ErrNoBackend), ShouldBeTrue)
		})

		Convey("When local is forced", func() {
			cfg.Source = config.SourceLocal
			src, err := source.Open(ctx, cfg, nil)
			So(err, ShouldBeNil)
			So(src.Name(), ShouldEqual, source.NameLocal)
		})

		Convey("When the selector is unknown", func() {
			cfg.Source = "ftp"
			_, err := source.Open(ctx, cfg, nil)
			So(errors.Is(err, source.ErrNoBackend), ShouldBeTrue)
		})
	})
}

func TestPreload(t *testing.T) {
	Convey("Given a preloaded local backend", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		musicPath := writeFile(t, dir, "music_db.xml", []byte(musicDB))
		src, err := source.NewLocal(config.Local{
			Refid:      refid,
			MusicPath:  musicPath,
			RecordPath: writeFile(t, dir, "savedata.db", []byte(saveLog)),
		})
		So(err, ShouldBeNil)
		So(src.Preload(ctx), ShouldBeNil)

		Convey("When the music database disappears afterwards", func() {
			So(os.Remove(musicPath), ShouldBeNil)
			musics, err := src.Catalog(ctx)

			Convey("Then the decoded catalog is still served", func() {
				So(err, ShouldBeNil)
				So(musics, ShouldHaveLength, 2)
			})
		})
	})
}
