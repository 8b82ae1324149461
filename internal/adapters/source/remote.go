package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"

	"github.com/okian/sdvxrec/internal/config"
	"github.com/okian/sdvxrec/internal/domain/catalog"
	"github.com/okian/sdvxrec/internal/domain/model"
	"github.com/okian/sdvxrec/pkg/logger"
	"github.com/okian/sdvxrec/pkg/metrics"
)

const (
	gameSDVX = "sdvx"

	userQuery = `SELECT id FROM user WHERE username = ?`

	musicQuery = `SELECT songid, chart, COALESCE(name, '') AS name, COALESCE(data, '') AS data
FROM music
WHERE game = ? AND version = ?
ORDER BY songid, chart`

	scoreQuery = `SELECT music.songid AS songid, music.chart AS chart, score.points AS points, COALESCE(score.data, '') AS sdata
FROM score, music
WHERE score.userid = ? AND score.musicid = music.id AND music.game = ? AND music.version = ?
ORDER BY score.id`
)

// Remote reads from a score server database.
type Remote struct {
	db       *sqlx.DB
	username string
	userID   int64
	version  int
	opt      options
}

// OpenRemote connects to the MySQL database described by cfg and resolves
// the configured username.
func OpenRemote(ctx context.Context, cfg config.Remote, opts ...Option) (*Remote, error) {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Address, strconv.Itoa(cfg.Port))
	mc.DBName = cfg.Database
	mc.Timeout = cfg.QueryTimeout

	db, err := sqlx.ConnectContext(ctx, "mysql", mc.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, NameRemote, err)
	}

	opts = append([]Option{WithQueryTimeout(cfg.QueryTimeout)}, opts...)
	r, err := NewRemote(ctx, db, cfg.Username, cfg.GameVersion, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

// NewRemote wraps an open database handle. The username must exist,
// otherwise ErrUserNotFound is returned. The caller's handle is owned by the
// returned Remote and closed by Close.
func NewRemote(ctx context.Context, db *sqlx.DB, username string, version int, opts ...Option) (*Remote, error) {
	r := &Remote{db: db, username: username, version: version, opt: buildOptions(NameRemote, opts)}

	qctx, cancel := r.queryContext(ctx)
	defer cancel()
	err := db.GetContext(qctx, &r.userID, userQuery, username)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("%w: %q", ErrUserNotFound, username)
	case err != nil:
		return nil, fmt.Errorf("%w: %s: user lookup: %w", ErrUnavailable, NameRemote, err)
	}
	r.opt.log.Debug(ctx, "remote user resolved", logger.String("username", username), logger.Any("id", r.userID))
	return r, nil
}

// Name implements Source.
func (r *Remote) Name() string { return NameRemote }

// Close implements Source.
func (r *Remote) Close() error { return r.db.Close() }

func (r *Remote) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opt.queryTimeout > 0 {
		return context.WithTimeout(ctx, r.opt.queryTimeout)
	}
	return context.WithCancel(ctx)
}

type musicRow struct {
	SongID int64  `db:"songid"`
	Chart  int64  `db:"chart"`
	Name   string `db:"name"`
	Data   string `db:"data"`
}

type musicData struct {
	Difficulty uint8 `json:"difficulty"`
}

type scoreRow struct {
	SongID int64  `db:"songid"`
	Chart  int64  `db:"chart"`
	Points int64  `db:"points"`
	SData  string `db:"sdata"`
}

type scoreData struct {
	Grade     uint16 `json:"grade"`
	ClearType uint16 `json:"clear_type"`
}

// Catalog implements Source. Each music row is one chart; rows are grouped
// by song id and charts without a level are left out.
func (r *Remote) Catalog(ctx context.Context) ([]model.Music, error) {
	qctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.db.QueryxContext(qctx, musicQuery, gameSDVX, r.version)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: music query: %w", catalog.ErrParseFailure, NameRemote, err)
	}
	defer func() { _ = rows.Close() }()

	bySong := make(map[uint16]*model.Music)
	var order []uint16
	for rows.Next() {
		var row musicRow
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("%w: %s: music row: %w", catalog.ErrParseFailure, NameRemote, err)
		}
		var md musicData
		if err := json.Unmarshal([]byte(row.Data), &md); err != nil || !fitsUint16(row.SongID) || row.Name == "" {
			r.opt.log.Debug(ctx, "skipping malformed music row", logger.Any("songid", row.SongID), logger.Error(err))
			continue
		}
		if md.Difficulty == 0 {
			continue
		}
		id := uint16(row.SongID) //nolint:gosec // checked by fitsUint16
		m, ok := bySong[id]
		if !ok {
			m = &model.Music{ID: id, Name: row.Name}
			bySong[id] = m
			order = append(order, id)
		}
		if row.Chart >= 0 && row.Chart <= int64(model.CodeMaximum) {
			m.Levels.Set(uint8(row.Chart), md.Difficulty) //nolint:gosec // range checked
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", catalog.ErrParseFailure, NameRemote, err)
	}

	musics := make([]model.Music, 0, len(order))
	for _, id := range order {
		musics = append(musics, *bySong[id])
	}
	r.opt.log.Info(ctx, "remote music read", logger.Int("music", len(musics)), logger.Int("version", r.version))
	return musics, nil
}

// Events implements Source by streaming the user's score rows.
func (r *Remote) Events(ctx context.Context, yield func(model.RawScoreEvent)) error {
	qctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.db.QueryxContext(qctx, scoreQuery, r.userID, gameSDVX, r.version)
	if err != nil {
		return fmt.Errorf("%w: %s: score query: %w", ErrUnavailable, NameRemote, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var row scoreRow
		if err := rows.StructScan(&row); err != nil {
			return fmt.Errorf("%w: %s: score row: %w", ErrUnavailable, NameRemote, err)
		}
		ev, ok := r.toEvent(ctx, row)
		if !ok {
			metrics.RecordEventSkipped(NameRemote, metrics.SkipMalformed)
			continue
		}
		yield(ev)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnavailable, NameRemote, err)
	}
	return nil
}

func (r *Remote) toEvent(ctx context.Context, row scoreRow) (model.RawScoreEvent, bool) {
	var sd scoreData
	if err := json.Unmarshal([]byte(row.SData), &sd); err != nil {
		r.opt.log.Debug(ctx, "skipping score with malformed data", logger.Any("songid", row.SongID), logger.Error(err))
		return model.RawScoreEvent{}, false
	}
	if !fitsUint16(row.SongID) || row.Chart < 0 || row.Chart > math.MaxUint8 || row.Points < 0 || row.Points > math.MaxUint32 {
		r.opt.log.Debug(ctx, "skipping score out of range", logger.Any("songid", row.SongID), logger.Any("chart", row.Chart), logger.Any("points", row.Points))
		return model.RawScoreEvent{}, false
	}
	return model.RawScoreEvent{
		Owner:     r.username,
		MusicID:   uint16(row.SongID), //nolint:gosec // range checked
		DiffCode:  uint8(row.Chart),   //nolint:gosec // range checked
		Score:     uint32(row.Points), //nolint:gosec // range checked
		GradeCode: sd.Grade,
		ClearCode: sd.ClearType,
		Space:     model.CodeSpaceRemote,
	}, true
}

func fitsUint16(v int64) bool {
	return v >= 0 && v <= math.MaxUint16
}
