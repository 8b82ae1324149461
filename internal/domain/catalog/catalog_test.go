package catalog_test

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/sdvxrec/internal/domain/catalog"
	"github.com/okian/sdvxrec/internal/domain/model"
)

func fixture() []model.Music {
	return []model.Music{
		{ID: 1, Name: "Infinite", Levels: model.Levels{Novice: 5, Advanced: 12, Exhaust: 16, Infinite: 18}, InfVer: 3},
		{ID: 2, Name: "Blastix Riotz", Levels: model.Levels{Novice: 6, Advanced: 12, Exhaust: 17, Maximum: 18}},
		{ID: 3, Name: "Gorgeous", Levels: model.Levels{Novice: 4, Advanced: 10, Exhaust: 15}},
		{ID: 7, Name: "blastix riotz", Levels: model.Levels{Exhaust: 19}},
	}
}

func TestNew(t *testing.T) {
	Convey("Given a list of musics", t, func() {
		Convey("When it is well formed", func() {
			c, err := catalog.New(fixture())

			Convey("Then every id is indexed", func() {
				So(err, ShouldBeNil)
				So(c.Len(), ShouldEqual, 4)
			})
		})

		Convey("When an id repeats", func() {
			musics := append(fixture(), model.Music{ID: 3, Name: "Gorgeous (Remix)"})
			c, err := catalog.New(musics)

			Convey("Then the last entry wins", func() {
				So(err, ShouldBeNil)
				So(c.Len(), ShouldEqual, 4)
				So(c.DisplayName(3), ShouldEqual, "Gorgeous (Remix)")
				So(c.SearchByName("gorgeous", false), ShouldBeEmpty)
			})
		})

		Convey("When one music has a blank title", func() {
			musics := append(fixture(), model.Music{ID: 9, Name: "  ", Levels: model.Levels{Exhaust: 14}})
			c, err := catalog.New(musics)

			Convey("Then it is left out and the rest loads", func() {
				So(err, ShouldBeNil)
				So(c.Len(), ShouldEqual, 4)
				So(c.Skipped(), ShouldResemble, []uint16{9})
				_, ok := c.Resolve(9)
				So(ok, ShouldBeFalse)
				So(c.DisplayName(9), ShouldEqual, model.NotFoundName)
				So(c.SearchByName(" ", true), ShouldBeEmpty)
			})
		})

		Convey("When no music has a name", func() {
			_, err := catalog.New([]model.Music{{ID: 9, Name: "  "}, {ID: 10}})

			Convey("Then a parse failure is returned", func() {
				So(errors.Is(err, catalog.ErrParseFailure), ShouldBeTrue)
			})
		})

		Convey("When the list is well formed", func() {
			c, err := catalog.New(fixture())
			So(err, ShouldBeNil)
			So(c.Skipped(), ShouldBeEmpty)
		})
	})
}

func TestLookups(t *testing.T) {
	Convey("Given a loaded catalog", t, func() {
		c, err := catalog.New(fixture())
		So(err, ShouldBeNil)

		Convey("When resolving ids", func() {
			m, ok := c.Resolve(2)
			So(ok, ShouldBeTrue)
			So(m.Name, ShouldEqual, "Blastix Riotz")

			_, ok = c.Resolve(99)
			So(ok, ShouldBeFalse)
		})

		Convey("When asking for display names", func() {
			So(c.DisplayName(1), ShouldEqual, "Infinite")
			So(c.DisplayName(99), ShouldEqual, model.NotFoundName)
		})

		Convey("When asking for levels", func() {
			So(c.LevelFor(1, model.CodeInfinite), ShouldEqual, 18)
			So(c.LevelFor(2, model.CodeMaximum), ShouldEqual, 18)
			So(c.LevelFor(3, model.CodeMaximum), ShouldEqual, 0)
			So(c.LevelFor(99, model.CodeExhaust), ShouldEqual, 0)
			So(c.LevelFor(1, 7), ShouldEqual, 0)
		})

		Convey("When counting charts by level", func() {
			So(c.CountAtLevel(12), ShouldEqual, 2)
			So(c.CountAtLevel(18), ShouldEqual, 2)
			So(c.CountAtLevel(19), ShouldEqual, 1)
			So(c.CountAtLevel(20), ShouldEqual, 0)

			Convey("Then empty slots are never counted", func() {
				So(c.CountAtLevel(0), ShouldEqual, 0)
			})
		})
	})
}

func TestSearchByName(t *testing.T) {
	Convey("Given a loaded catalog", t, func() {
		c, err := catalog.New(fixture())
		So(err, ShouldBeNil)

		Convey("When searching exactly", func() {
			Convey("Then case is ignored and ids ascend", func() {
				So(c.SearchByName("BLASTIX RIOTZ", false), ShouldResemble, []uint16{2, 7})
				So(c.SearchByName("infinite", false), ShouldResemble, []uint16{1})
			})

			Convey("Then near misses do not match", func() {
				So(c.SearchByName("ifri", false), ShouldBeEmpty)
			})
		})

		Convey("When searching fuzzily", func() {
			Convey("Then a near miss finds the close title", func() {
				So(c.SearchByName("ifri", true), ShouldContain, uint16(1))
			})

			Convey("Then an exact title is still found", func() {
				So(c.SearchByName("blastix riotz", true), ShouldContain, uint16(2))
				So(c.SearchByName("blastix riotz", true), ShouldContain, uint16(7))
			})

			Convey("Then an unrelated query finds nothing", func() {
				So(c.SearchByName("zzz_no_match", true), ShouldBeEmpty)
			})
		})

		Convey("When the query is blank", func() {
			So(c.SearchByName("   ", true), ShouldBeEmpty)
		})
	})
}
