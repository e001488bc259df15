// Package replay restores a checkpoint snapshot, streams its events to the
// report stream and writes a fresh checkpoint.
package replay

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"marketsim/internal/config"
	"marketsim/internal/jsondoc"
	"marketsim/internal/order"
	"marketsim/internal/recordlog"
	"marketsim/internal/snapshot"
)

type Result struct {
	SnapshotID     string
	Events         int
	ReportPath     string
	CheckpointPath string
}

type Replayer struct {
	cfg config.Config
}

func New(cfg config.Config) *Replayer {
	return &Replayer{cfg: cfg}
}

// Run replays the checkpoint snapshot stored at inPath.
func (r *Replayer) Run(ctx context.Context, inPath string) (Result, error) {
	var res Result

	store, err := r.restore(inPath)
	if err != nil {
		return res, err
	}
	res.SnapshotID = store.ID().String()
	res.Events = store.Len()

	if err := r.report(ctx, store); err != nil {
		return res, err
	}
	res.ReportPath = r.cfg.Report.Path

	res.CheckpointPath, err = r.checkpoint(store)
	if err != nil {
		return res, err
	}

	log.Info().
		Str("snapshot", res.SnapshotID).
		Int("events", res.Events).
		Str("report", res.ReportPath).
		Str("checkpoint", res.CheckpointPath).
		Msg("replay complete")
	return res, nil
}

func (r *Replayer) restore(path string) (*snapshot.Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read checkpoint: %w", err)
	}
	doc, err := jsondoc.Parse(data)
	if err != nil {
		return nil, err
	}
	return snapshot.Restore(doc, r.cfg.Restore.PriceDecimals, r.cfg.Restore.VolumeDecimals)
}

func (r *Replayer) report(ctx context.Context, store *snapshot.Store) (err error) {
	w, err := recordlog.OpenReportFile(r.cfg.Report)
	if err != nil {
		return fmt.Errorf("unable to open report stream: %w", err)
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("unable to close report stream: %w", cerr)
		}
	}()

	sink := recordlog.NewSink(ctx, w, r.cfg.Sink.Buffer)
	store.Scan(func(ev *order.Event) bool {
		if err = sink.Report(ev); err != nil {
			log.Error().Err(err).Uint64("order", uint64(ev.Order.ID())).Msg("unable to queue report record")
			return false
		}
		return true
	})
	if cerr := sink.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("report stream: %w", err)
	}
	log.Debug().Int64("records", sink.Written()).Msg("report stream flushed")
	return nil
}

func (r *Replayer) checkpoint(store *snapshot.Store) (string, error) {
	doc := jsondoc.New()
	store.Checkpoint(doc, "")
	data, err := jsondoc.Encode(doc)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(r.cfg.Checkpoint.Dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(r.cfg.Checkpoint.Dir, fmt.Sprintf("checkpoint-%s.json", store.ID()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("unable to write checkpoint: %w", err)
	}
	return path, nil
}
