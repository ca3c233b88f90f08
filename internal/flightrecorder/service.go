// Package flightrecorder captures in-flight runtime traces when requests
// time out, so that slow class generations can be diagnosed after the fact.
package flightrecorder

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/trace"
	"sync/atomic"
	"time"

	"github.com/sofiamaki/pilatesapp/internal/errors"
)

const (
	// defaultMinAge is the minimum age of trace events to keep in the buffer.
	defaultMinAge = 5 * time.Minute

	// defaultMaxBytes caps the trace buffer size.
	defaultMaxBytes = 64 * 1024 * 1024 // 64MB

	// cooldown is the minimum time between trace captures so a flood of
	// timeouts does not fill the disk.
	cooldown = 30 * time.Minute
)

// Service owns a runtime trace flight recorder and writes a snapshot of the
// buffer to disk on demand.
type Service struct {
	logger          *slog.Logger
	flightRecorder  *trace.FlightRecorder
	tracesDirectory string
	lastCapture     atomic.Int64 // Unix timestamp of the last capture.
}

// New creates a flight recorder writing trace files under tracesDirectory,
// creating the directory if needed.
func New(logger *slog.Logger, tracesDirectory string) (*Service, error) {
	if tracesDirectory == "" {
		return nil, errors.New("traces directory is required")
	}

	if stat, err := os.Stat(tracesDirectory); err != nil {
		if err = os.MkdirAll(tracesDirectory, 0o700); err != nil {
			return nil, errors.Wrap(err, "create traces directory")
		}
	} else if !stat.IsDir() {
		return nil, errors.New("traces path is not a directory", slog.String("path", tracesDirectory))
	}

	flightRecorder := trace.NewFlightRecorder(trace.FlightRecorderConfig{
		MinAge:   defaultMinAge,
		MaxBytes: defaultMaxBytes,
	})
	if flightRecorder == nil {
		return nil, errors.New("failed to create flight recorder")
	}

	return &Service{
		logger:          logger,
		flightRecorder:  flightRecorder,
		tracesDirectory: tracesDirectory,
		lastCapture:     atomic.Int64{},
	}, nil
}

// Start begins recording into the in-memory buffer.
func (s *Service) Start(ctx context.Context) error {
	if err := s.flightRecorder.Start(); err != nil {
		return errors.Wrap(err, "start flight recorder")
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "flight recorder started",
		slog.String("traces_directory", s.tracesDirectory),
		slog.String("min_age", defaultMinAge.String()),
		slog.Uint64("max_bytes", defaultMaxBytes))
	return nil
}

// Stop ends recording.
func (s *Service) Stop(ctx context.Context) {
	s.flightRecorder.Stop()
	s.logger.LogAttrs(ctx, slog.LevelInfo, "flight recorder stopped")
}

// CaptureTimeoutTrace writes the current trace buffer to a file. Captures
// within the cooldown window are dropped.
func (s *Service) CaptureTimeoutTrace(ctx context.Context) {
	now := time.Now().Unix()
	lastCapture := s.lastCapture.Load()

	if lastCapture > 0 && time.Duration(now-lastCapture)*time.Second < cooldown {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "skipping trace capture due to cooldown",
			slog.Time("last_capture", time.Unix(lastCapture, 0)))
		return
	}
	if !s.lastCapture.CompareAndSwap(lastCapture, now) {
		// Another goroutine won the capture.
		return
	}

	timestamp := time.Unix(now, 0).UTC().Format("20060102-150405")
	path := filepath.Join(s.tracesDirectory, "timeout-"+timestamp+".trace")

	file, err := os.Create(path)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "failed to create trace file",
			slog.String("file", path), errors.SlogError(err))
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			s.logger.LogAttrs(ctx, slog.LevelError, "failed to close trace file",
				slog.String("file", path), errors.SlogError(closeErr))
		}
	}()

	written, err := s.flightRecorder.WriteTo(file)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "failed to write trace file",
			slog.String("file", path), errors.SlogError(err))
		return
	}

	s.logger.LogAttrs(ctx, slog.LevelWarn, "captured timeout trace",
		slog.String("file", path), slog.Int64("bytes", written))
}
