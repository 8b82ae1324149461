package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/sdvxrec/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.Source, convey.ShouldEqual, config.SourceAuto)
			convey.So(cfg.MetricsAddr, convey.ShouldBeEmpty)
			convey.So(cfg.HTTPAddr, convey.ShouldBeEmpty)
			convey.So(cfg.HistoryFile, convey.ShouldEqual, ".sdvxrec_history")
			convey.So(cfg.Local.RecordPath, convey.ShouldEqual, "savedata.db")
			convey.So(cfg.Local.MusicPath, convey.ShouldEqual, "music_db.xml")
			convey.So(cfg.Remote.Port, convey.ShouldEqual, 3306)
			convey.So(cfg.Remote.Database, convey.ShouldEqual, "bemani")
			convey.So(cfg.Remote.User, convey.ShouldEqual, "root")
			convey.So(cfg.Remote.GameVersion, convey.ShouldEqual, 6)
			convey.So(cfg.Remote.QueryTimeout, convey.ShouldEqual, 30*time.Second)
		})

		convey.Convey("Then it does not validate without a backend", func() {
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		convey.Convey("When the local source has a refid", func() {
			cfg.Source = config.SourceLocal
			cfg.Local.Refid = "AB973E24894A6D58"
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When the local source has no refid", func() {
			cfg.Source = config.SourceLocal
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "local.refid")
		})

		convey.Convey("When the remote source misses the address", func() {
			cfg.Source = config.SourceRemote
			cfg.Remote.Username = "player"
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "remote.address")
		})

		convey.Convey("When the remote source is complete", func() {
			cfg.Source = config.SourceRemote
			cfg.Remote.Username = "player"
			cfg.Remote.Address = "127.0.0.1"
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When auto has only the remote backend", func() {
			cfg.Remote.Username = "player"
			cfg.Remote.Address = "db.local"
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When the source is unknown", func() {
			cfg.Source = "cloud"
			cfg.Local.Refid = "X"
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, `"cloud"`)
		})

		convey.Convey("When the port is out of range", func() {
			cfg.Local.Refid = "X"
			cfg.Remote.Port = 70000
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
