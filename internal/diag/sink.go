package diag

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrAlreadyStarted is returned on a second StartUp without an
// intervening ShutDown.
var ErrAlreadyStarted = errors.New("diag: already started")

// Config controls the diagnostic sink.
type Config struct {
	// Path is the record file location. Parent directories are created
	// on startup.
	Path string

	// Flush syncs the file after every record. Slow, but nothing is
	// lost on a crash. Can be toggled at runtime with SetFlush.
	Flush bool
}

// Sink is the engine's append-only diagnostic record sink: a zap core
// writing timestamped records to a single file. Records are plain
// formatted lines, not leveled application logs; everything written
// lands in the file.
//
// Writef reports the bytes appended so callers can notice a dead sink
// without treating it as fatal. All methods are single-goroutine, like
// the rest of the frame loop.
type Sink struct {
	cfg     Config
	file    *os.File
	counter *countingSyncer
	log     *zap.Logger
	started bool
}

func New(cfg Config) *Sink {
	if cfg.Path == "" {
		cfg.Path = "ember.log"
	}
	return &Sink{cfg: cfg}
}

func (s *Sink) Name() string { return "diagnostics" }

// StartUp opens the record file for appending and builds the encoder.
func (s *Sink) StartUp() error {
	if s.started {
		return ErrAlreadyStarted
	}
	if dir := filepath.Dir(s.cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create record dir: %w", err)
		}
	}
	f, err := os.OpenFile(s.cfg.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open record file: %w", err)
	}
	s.file = f
	s.counter = &countingSyncer{ws: zapcore.AddSync(f)}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encCfg.ConsoleSeparator = "  "
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), s.counter, zapcore.InfoLevel)

	s.log = zap.New(core)
	s.started = true
	return nil
}

// ShutDown syncs and closes the record file. Safe without a prior
// StartUp, and safe to call twice.
func (s *Sink) ShutDown() {
	if !s.started {
		return
	}
	s.started = false
	_ = s.log.Sync()
	_ = s.file.Close()
	s.log = nil
	s.file = nil
	s.counter = nil
}

// Writef appends one formatted record and returns the number of bytes
// written to the record file, or -1 when the sink is not running or
// the write failed.
func (s *Sink) Writef(format string, args ...any) int {
	if !s.started {
		return -1
	}
	before := s.counter.written
	s.counter.failed = false
	s.log.Info(fmt.Sprintf(format, args...))
	if s.counter.failed {
		return -1
	}
	if s.cfg.Flush {
		if err := s.file.Sync(); err != nil {
			return -1
		}
	}
	return int(s.counter.written - before)
}

// SetFlush toggles sync-after-write at runtime.
func (s *Sink) SetFlush(on bool) {
	s.cfg.Flush = on
}

// countingSyncer tracks bytes written so Writef can report them.
type countingSyncer struct {
	ws      zapcore.WriteSyncer
	written int64
	failed  bool
}

func (c *countingSyncer) Write(p []byte) (int, error) {
	n, err := c.ws.Write(p)
	c.written += int64(n)
	c.failed = err != nil
	return n, err
}

func (c *countingSyncer) Sync() error {
	return c.ws.Sync()
}
