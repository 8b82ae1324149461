package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"golang.org/x/net/html/charset"

	"github.com/okian/sdvxrec/internal/config"
	"github.com/okian/sdvxrec/internal/domain/catalog"
	"github.com/okian/sdvxrec/internal/domain/model"
	"github.com/okian/sdvxrec/pkg/logger"
	"github.com/okian/sdvxrec/pkg/metrics"
)

// musicCollection is the log collection holding per-chart best results.
const musicCollection = "music"

// Local reads a music_db.xml catalog and a line-delimited JSON save log.
type Local struct {
	cfg config.Local
	opt options

	musics []model.Music // set by Preload
}

// NewLocal checks that both files are readable and returns the backend.
func NewLocal(cfg config.Local, opts ...Option) (*Local, error) {
	if cfg.Refid == "" {
		return nil, fmt.Errorf("%w: %s: empty refid", ErrUnavailable, NameLocal)
	}
	for _, p := range []string{cfg.MusicPath, cfg.RecordPath} {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, NameLocal, err)
		}
	}
	return &Local{cfg: cfg, opt: buildOptions(NameLocal, opts)}, nil
}

// Name implements Source.
func (l *Local) Name() string { return NameLocal }

// Close implements Source. Files are opened per call, so there is nothing to release.
func (l *Local) Close() error { return nil }

// Preload decodes the music database and checks that the save log can be
// opened, so a broken install is detected before loading starts. Catalog
// then returns the decoded entries without reading the file again.
func (l *Local) Preload(ctx context.Context) error {
	musics, err := l.readCatalog(ctx)
	if err != nil {
		return err
	}
	f, err := os.Open(l.cfg.RecordPath)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnavailable, NameLocal, err)
	}
	_ = f.Close()
	l.musics = musics
	return nil
}

// Catalog implements Source by decoding the XML music database.
func (l *Local) Catalog(ctx context.Context) ([]model.Music, error) {
	if l.musics != nil {
		return l.musics, nil
	}
	return l.readCatalog(ctx)
}

func (l *Local) readCatalog(ctx context.Context) ([]model.Music, error) {
	f, err := os.Open(l.cfg.MusicPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", catalog.ErrParseFailure, err)
	}
	defer func() { _ = f.Close() }()

	musics, err := DecodeMusicDB(ctx, f)
	if err != nil {
		return nil, err
	}
	l.opt.log.Info(ctx, "music database read", logger.String("path", l.cfg.MusicPath), logger.Int("music", len(musics)))
	return musics, nil
}

// Events implements Source by scanning the save log line by line.
func (l *Local) Events(ctx context.Context, yield func(model.RawScoreEvent)) error {
	f, err := os.Open(l.cfg.RecordPath)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnavailable, NameLocal, err)
	}
	defer func() { _ = f.Close() }()

	return ScanLog(ctx, f, l.cfg.Refid, yield, l.opt.log)
}

type mdbMusic struct {
	ID   uint16 `xml:"id,attr"`
	Info struct {
		TitleName string `xml:"title_name"`
		InfVer    uint8  `xml:"inf_ver"`
	} `xml:"info"`
	Difficulty struct {
		Novice   mdbChart `xml:"novice"`
		Advanced mdbChart `xml:"advanced"`
		Exhaust  mdbChart `xml:"exhaust"`
		Infinite mdbChart `xml:"infinite"`
		Maximum  mdbChart `xml:"maximum"`
	} `xml:"difficulty"`
}

type mdbChart struct {
	Difnum uint8 `xml:"difnum"`
}

func (m mdbMusic) toModel() model.Music {
	return model.Music{
		ID:     m.ID,
		Name:   m.Info.TitleName,
		InfVer: m.Info.InfVer,
		Levels: model.Levels{
			Novice:   m.Difficulty.Novice.Difnum,
			Advanced: m.Difficulty.Advanced.Difnum,
			Exhaust:  m.Difficulty.Exhaust.Difnum,
			Infinite: m.Difficulty.Infinite.Difnum,
			Maximum:  m.Difficulty.Maximum.Difnum,
		},
	}
}

// DecodeMusicDB streams every <music> element of an mdb document. The
// declared encoding (typically Shift_JIS) is honored. Any decoding error is
// wrapped with catalog.ErrParseFailure.
func DecodeMusicDB(ctx context.Context, r io.Reader) ([]model.Music, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var musics []model.Music
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", catalog.ErrParseFailure, err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "music" {
			continue
		}
		var m mdbMusic
		if err := dec.DecodeElement(&m, &se); err != nil {
			return nil, fmt.Errorf("%w: music #%d: %w", catalog.ErrParseFailure, len(musics)+1, err)
		}
		musics = append(musics, m.toModel())

		if len(musics)%512 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	if len(musics) == 0 {
		return nil, fmt.Errorf("%w: no music entries", catalog.ErrParseFailure)
	}
	return musics, nil
}

// logEntry is one document of the save log. Only the fields needed to build
// a score event are decoded.
type logEntry struct {
	Collection string `json:"collection"`
	MusicID    uint16 `json:"mid"`
	Type       uint8  `json:"type"`
	Score      uint32 `json:"score"`
	Clear      uint16 `json:"clear"`
	Grade      uint16 `json:"grade"`
	Refid      string `json:"__refid"`
}

// ScanLog reads a line-delimited JSON save log and yields the music
// results owned by refid. Blank lines are ignored. Lines that do not decode,
// belong to another collection or another player are skipped and counted.
func ScanLog(ctx context.Context, r io.Reader, refid string, yield func(model.RawScoreEvent), log logger.Logger) error {
	br := bufio.NewReader(r)
	lineNo := 0
	for {
		line, readErr := br.ReadBytes('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("%w: %s: line %d: %w", ErrUnavailable, NameLocal, lineNo+1, readErr)
		}
		if len(line) > 0 {
			lineNo++
			if err := ctx.Err(); err != nil {
				return err
			}
			handleLine(ctx, bytes.TrimSpace(line), lineNo, refid, yield, log)
		}
		if readErr != nil {
			return nil
		}
	}
}

func handleLine(ctx context.Context, line []byte, lineNo int, refid string, yield func(model.RawScoreEvent), log logger.Logger) {
	if len(line) == 0 {
		return
	}
	var e logEntry
	if err := json.Unmarshal(line, &e); err != nil {
		metrics.RecordEventSkipped(NameLocal, metrics.SkipMalformed)
		log.Debug(ctx, "skipping malformed log line", logger.Int("line", lineNo), logger.Error(err))
		return
	}
	if e.Collection != musicCollection {
		metrics.RecordEventSkipped(NameLocal, metrics.SkipCollection)
		return
	}
	if e.Refid != refid {
		metrics.RecordEventSkipped(NameLocal, metrics.SkipOwner)
		return
	}
	yield(model.RawScoreEvent{
		Owner:     e.Refid,
		MusicID:   e.MusicID,
		DiffCode:  e.Type,
		Score:     e.Score,
		GradeCode: e.Grade,
		ClearCode: e.Clear,
		Space:     model.CodeSpaceLocal,
	})
}
