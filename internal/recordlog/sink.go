// Package recordlog streams serialized records as JSON lines. Records are
// encoded by the caller and written by one background goroutine.
package recordlog

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	simplejson "github.com/bitly/go-simplejson"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
	tomb "gopkg.in/tomb.v2"

	"marketsim/internal/config"
	"marketsim/internal/jsondoc"
)

const defaultBufferSize = 100

var ErrClosed = errors.New("sink closed")

type ReportRecord interface {
	SerializeForReport(doc *simplejson.Json, key string)
}

type CheckpointRecord interface {
	SerializeForCheckpoint(doc *simplejson.Json, key string)
}

type Sink struct {
	w       io.Writer
	t       *tomb.Tomb
	records chan []byte
	written atomic.Int64

	mu     sync.Mutex
	closed bool
}

// NewSink starts the writer goroutine. It stops when ctx is cancelled, when a
// write to w fails, or after Close has drained the buffer.
func NewSink(ctx context.Context, w io.Writer, buffer int) *Sink {
	if buffer <= 0 {
		buffer = defaultBufferSize
	}
	t, _ := tomb.WithContext(ctx)
	s := &Sink{
		w:       w,
		t:       t,
		records: make(chan []byte, buffer),
	}
	t.Go(s.run)
	return s
}

func (s *Sink) run() error {
	for {
		select {
		case <-s.t.Dying():
			return nil
		case rec, ok := <-s.records:
			if !ok {
				return nil
			}
			if _, err := s.w.Write(rec); err != nil {
				log.Error().Err(err).Msg("record sink exiting")
				return err
			}
			s.written.Add(1)
		}
	}
}

// Report encodes rec in its report form and queues it.
func (s *Sink) Report(rec ReportRecord) error {
	doc := jsondoc.New()
	rec.SerializeForReport(doc, "")
	return s.writeDoc(doc)
}

// Checkpoint encodes rec in its checkpoint form and queues it.
func (s *Sink) Checkpoint(rec CheckpointRecord) error {
	doc := jsondoc.New()
	rec.SerializeForCheckpoint(doc, "")
	return s.writeDoc(doc)
}

func (s *Sink) writeDoc(doc *simplejson.Json) error {
	data, err := jsondoc.Encode(doc)
	if err != nil {
		return err
	}
	return s.Write(append(data, '\n'))
}

// Write queues one raw line. It blocks while the buffer is full.
func (s *Sink) Write(line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	select {
	case s.records <- line:
		return nil
	case <-s.t.Dying():
		return ErrClosed
	}
}

// Written is the number of records handed to the underlying writer.
func (s *Sink) Written() int64 {
	return s.written.Load()
}

// Close stops accepting records, waits for the queued ones to be written and
// returns the reason the writer stopped, if any.
func (s *Sink) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.records)
	}
	s.mu.Unlock()
	return s.t.Wait()
}

// OpenReportFile opens the rotating report stream described by cfg.
func OpenReportFile(cfg config.Report) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, err
	}
	return &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}, nil
}
