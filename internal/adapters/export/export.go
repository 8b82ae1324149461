// Package export writes canonical records in the local save log format so a
// remote history can be replayed by the local backend.
package export

import (
	"bufio"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/okian/sdvxrec/internal/domain/model"
	"github.com/okian/sdvxrec/pkg/logger"
)

// Fixed document markers of the local save log.
const (
	Collection = "music"
	PluginTag  = "sdvx@asphyxia"
	StoreTag   = "plugins_profile"
)

// ErrNoRefid is returned when the exporter has no owner to stamp.
var ErrNoRefid = errors.New("export requires a refid")

// Date is the log's timestamp encoding: milliseconds since the epoch.
type Date struct {
	Millis int64 `json:"$$date"`
}

// Entry is one music document of the local save log.
type Entry struct {
	Collection string `json:"collection"`
	MusicID    uint16 `json:"mid"`
	Type       uint8  `json:"type"`
	Score      uint32 `json:"score"`
	ExScore    uint32 `json:"exscore"`
	Clear      uint16 `json:"clear"`
	Grade      uint16 `json:"grade"`
	ButtonRate uint8  `json:"buttonRate"`
	LongRate   uint8  `json:"longRate"`
	VolRate    uint8  `json:"volRate"`
	ID         string `json:"_id"`
	CreatedAt  Date   `json:"createdAt"`
	UpdatedAt  Date   `json:"updatedAt"`
	A          string `json:"__a"`
	S          string `json:"__s"`
	Refid      string `json:"__refid"`
}

// Result counts what Write did.
type Result struct {
	Written int
	Skipped int
}

// Exporter converts records for one owner.
type Exporter struct {
	refid string
	now   func() time.Time
	log   logger.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithClock sets the time source for createdAt/updatedAt.
func WithClock(now func() time.Time) Option {
	return func(x *Exporter) {
		if now != nil {
			x.now = now
		}
	}
}

// WithLogger sets the logger for skipped records.
func WithLogger(l logger.Logger) Option {
	return func(x *Exporter) {
		if l != nil {
			x.log = l
		}
	}
}

// New creates an exporter stamping refid on every document.
func New(refid string, opts ...Option) (*Exporter, error) {
	if refid == "" {
		return nil, ErrNoRefid
	}
	x := &Exporter{refid: refid, now: time.Now, log: logger.Nop()}
	for _, opt := range opts {
		opt(x)
	}
	return x, nil
}

// RecordID derives a stable document id from the owner and chart, so
// exporting the same history twice yields the same ids.
func RecordID(refid string, musicID uint16, code uint8) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("sdvxrec-export:%s:%d:%d", refid, musicID, code)))
	id, err := uuid.FromBytes(hash[:16])
	if err != nil {
		return uuid.NewString()
	}
	id[6] = (id[6] & 0x0f) | 0x50
	id[8] = (id[8] & 0x3f) | 0x80
	return id.String()
}

// Convert maps a record to a log document using local code values. Records
// whose chart could not be resolved have no code and are rejected.
func (x *Exporter) Convert(rec model.CanonicalRecord, at time.Time) (Entry, bool) {
	if rec.Difficulty == model.DifficultyUnknown {
		return Entry{}, false
	}
	code := rec.Difficulty.Code()
	ts := Date{Millis: at.UnixMilli()}
	return Entry{
		Collection: Collection,
		MusicID:    rec.MusicID,
		Type:       code,
		Score:      rec.Score,
		Clear:      rec.ClearType.Code(model.CodeSpaceLocal),
		Grade:      rec.Grade.Code(model.CodeSpaceLocal),
		ID:         RecordID(x.refid, rec.MusicID, code),
		CreatedAt:  ts,
		UpdatedAt:  ts,
		A:          PluginTag,
		S:          StoreTag,
		Refid:      x.refid,
	}, true
}

// Write encodes one JSON document per line.
func (x *Exporter) Write(ctx context.Context, w io.Writer, records []model.CanonicalRecord) (Result, error) {
	var res Result
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	at := x.now()

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		e, ok := x.Convert(rec, at)
		if !ok {
			res.Skipped++
			x.log.Warn(ctx, "skipping record without a resolved chart", logger.Uint("music_id", uint(rec.MusicID)))
			continue
		}
		if err := enc.Encode(e); err != nil {
			return res, fmt.Errorf("encode music %d: %w", rec.MusicID, err)
		}
		res.Written++
	}
	if err := bw.Flush(); err != nil {
		return res, fmt.Errorf("flush: %w", err)
	}
	return res, nil
}

// WriteFile truncates path and writes records to it.
func (x *Exporter) WriteFile(ctx context.Context, path string, records []model.CanonicalRecord) (Result, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return Result{}, fmt.Errorf("open %s: %w", path, err)
	}
	res, err := x.Write(ctx, f, records)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close %s: %w", path, cerr)
	}
	return res, err
}
