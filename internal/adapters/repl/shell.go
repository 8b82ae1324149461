// Package repl is the interactive shell over a loaded engine.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/okian/sdvxrec/internal/domain/model"
	"github.com/okian/sdvxrec/internal/domain/ranking"
	"github.com/okian/sdvxrec/pkg/logger"
)

// DefaultPrompt is shown before every line.
const DefaultPrompt = ">> "

// Engine is the query surface the shell needs.
type Engine interface {
	RecordsByID(ids []uint16) []model.CanonicalRecord
	RecordsByName(name string) []model.CanonicalRecord
	Best50() []model.CanonicalRecord
	Volforce() model.Volforce
	LevelStats(level *uint8) []model.LevelStat
	LevelCount(level uint8) int
	MusicName(id uint16) string
}

// LineReader reads edited lines and keeps their history. *liner.State
// satisfies it.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	ReadHistory(r io.Reader) (int, error)
	WriteHistory(w io.Writer) (int, error)
	Close() error
}

type command struct {
	name        string
	usage       string
	description string
	run         func(args []string) error
}

// Shell dispatches command lines to the engine and prints the results.
type Shell struct {
	engine      Engine
	out         io.Writer
	log         logger.Logger
	prompt      string
	historyFile string
	newReader   func(complete func(string) []string) LineReader

	commands []command
	byName   map[string]command
}

// Option configures a Shell.
type Option func(*Shell)

// WithOutput redirects command output; the default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(s *Shell) {
		if w != nil {
			s.out = w
		}
	}
}

// WithLogger sets the logger for history and read errors.
func WithLogger(l logger.Logger) Option {
	return func(s *Shell) {
		if l != nil {
			s.log = l
		}
	}
}

// WithPrompt replaces DefaultPrompt.
func WithPrompt(p string) Option {
	return func(s *Shell) { s.prompt = p }
}

// WithHistoryFile loads history from path on start and saves it on exit.
// An empty path disables persistence.
func WithHistoryFile(path string) Option {
	return func(s *Shell) { s.historyFile = path }
}

// WithLineReader replaces the terminal line editor.
func WithLineReader(factory func(complete func(string) []string) LineReader) Option {
	return func(s *Shell) {
		if factory != nil {
			s.newReader = factory
		}
	}
}

// New creates a shell over e.
func New(e Engine, opts ...Option) *Shell {
	s := &Shell{
		engine:    e,
		out:       os.Stdout,
		log:       logger.Nop(),
		prompt:    DefaultPrompt,
		newReader: newLiner,
		byName:    make(map[string]command),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.register(command{"help", "help", "show the help information.", s.help})
	s.register(command{"record", "record <music-id>...", "find music records by music id.", s.record})
	s.register(command{"search", "search <music-name>", "find music records by name, fuzzily.", s.search})
	s.register(command{"best50", "best50", "show the 50 best records by volforce.", s.best50})
	s.register(command{"vf", "vf", "compute the aggregate volforce.", s.volforce})
	s.register(command{"count", "count [level]", "count grades and clear lamps per level.", s.count})
	return s
}

func newLiner(complete func(string) []string) LineReader {
	l := liner.NewLiner()
	l.SetCtrlCAborts(true)
	l.SetCompleter(complete)
	return l
}

func (s *Shell) register(c command) {
	s.commands = append(s.commands, c)
	s.byName[c.name] = c
}

// Complete returns the command names starting with line, each followed by a
// space. Only the first word is completed.
func (s *Shell) Complete(line string) []string {
	if strings.Contains(line, " ") {
		return nil
	}
	var out []string
	for _, c := range s.commands {
		if strings.HasPrefix(c.name, line) {
			out = append(out, c.name+" ")
		}
	}
	return out
}

// Run reads and executes lines until EOF or ctx is done. Ctrl-C abandons
// the current line only.
func (s *Shell) Run(ctx context.Context) error {
	r := s.newReader(s.Complete)
	defer func() { _ = r.Close() }()
	s.loadHistory(ctx, r)

	last := ""
	for {
		if err := ctx.Err(); err != nil {
			s.saveHistory(ctx, r)
			return err
		}
		line, err := r.Prompt(s.prompt)
		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			s.println("<Keyboard Interrupted>")
			continue
		case errors.Is(err, io.EOF):
			s.println("Bye")
			s.saveHistory(ctx, r)
			return nil
		case err != nil:
			s.saveHistory(ctx, r)
			return fmt.Errorf("read command: %w", err)
		}

		if keepInHistory(line, last) {
			r.AppendHistory(line)
			last = line
		}
		if err := s.Execute(line); err != nil {
			s.println(err.Error())
		}
	}
}

// keepInHistory drops blank lines, lines starting with a space and repeats
// of the previous entry.
func keepInHistory(line, last string) bool {
	return strings.TrimSpace(line) != "" && !strings.HasPrefix(line, " ") && line != last
}

// Execute runs a single command line. Blank lines are ignored.
func (s *Shell) Execute(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	c, ok := s.byName[fields[0]]
	if !ok {
		return ErrUnknownCommand
	}
	return c.run(fields[1:])
}

func (s *Shell) println(msg string) {
	_, _ = fmt.Fprintln(s.out, msg)
}

func (s *Shell) loadHistory(ctx context.Context, r LineReader) {
	if s.historyFile == "" {
		return
	}
	f, err := os.Open(s.historyFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn(ctx, "cannot read history", logger.String("path", s.historyFile), logger.Error(err))
		}
		return
	}
	defer func() { _ = f.Close() }()
	if _, err := r.ReadHistory(f); err != nil {
		s.log.Warn(ctx, "cannot read history", logger.String("path", s.historyFile), logger.Error(err))
	}
}

func (s *Shell) saveHistory(ctx context.Context, r LineReader) {
	if s.historyFile == "" {
		return
	}
	f, err := os.Create(s.historyFile)
	if err != nil {
		s.log.Warn(ctx, "cannot write history", logger.String("path", s.historyFile), logger.Error(err))
		return
	}
	defer func() { _ = f.Close() }()
	if _, err := r.WriteHistory(f); err != nil {
		s.log.Warn(ctx, "cannot write history", logger.String("path", s.historyFile), logger.Error(err))
	}
}

func (s *Shell) help(_ []string) error {
	t := newTable(s.out, "name", "usage", "description")
	for _, c := range s.commands {
		t.row(c.name, c.usage, c.description)
	}
	return t.flush()
}

func (s *Shell) record(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: %s", ErrUsage, s.byName["record"].usage)
	}
	ids := make([]uint16, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseUint(a, 10, 16)
		if err != nil {
			return fmt.Errorf("invalid music id %q: %w", a, err)
		}
		ids = append(ids, uint16(id))
	}
	sorted := append([]uint16(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	for i, id := range sorted {
		if i > 0 && sorted[i-1] == id {
			continue
		}
		s.println(fmt.Sprintf("Music %d: <%s>", id, s.engine.MusicName(id)))
	}
	return writeRecords(s.out, s.engine.RecordsByID(ids))
}

func (s *Shell) search(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: %s", ErrUsage, s.byName["search"].usage)
	}
	return writeRecords(s.out, s.engine.RecordsByName(strings.Join(args, " ")))
}

func (s *Shell) best50(_ []string) error {
	return writeRanked(s.out, ranking.Rank(s.engine.Best50()))
}

func (s *Shell) volforce(_ []string) error {
	s.println(fmt.Sprintf("Your Volforce: %s", s.engine.Volforce()))
	return nil
}

func (s *Shell) count(args []string) error {
	var level *uint8
	switch len(args) {
	case 0:
	case 1:
		v, err := strconv.ParseUint(args[0], 10, 8)
		if err != nil {
			return fmt.Errorf("invalid level %q: %w", args[0], err)
		}
		lv := uint8(v)
		level = &lv
	default:
		return fmt.Errorf("%w: %s", ErrUsage, s.byName["count"].usage)
	}
	return writeLevelStats(s.out, s.engine.LevelStats(level), s.engine.LevelCount)
}
