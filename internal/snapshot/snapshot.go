// Package snapshot keeps an on-disk CSV snapshot of the registry
// current. It can export once, follow the database file and re-export
// when it changes, or re-export on a cron schedule.
package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/qixiang/hukou/internal/export"
	"github.com/qixiang/hukou/internal/manager"
)

const (
	HouseholdsFile = "households.csv"
	MembersFile    = "members.csv"
	ReportFile     = "statistics.txt"

	// debounceDelay coalesces the burst of writes SQLite makes per
	// commit into one export.
	debounceDelay = 2 * time.Second
)

// Runner exports the registry into a directory.
type Runner struct {
	mgr    *manager.Manager
	dbPath string
	dir    string

	pendingMu sync.Mutex
	pending   *time.Timer
}

// New creates a runner exporting into dir.
func New(mgr *manager.Manager, dbPath, dir string) *Runner {
	return &Runner{mgr: mgr, dbPath: dbPath, dir: dir}
}

// Export writes the households CSV, members CSV and statistics report
// into the runner's directory. An empty registry still produces the
// three files.
func (r *Runner) Export() error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return err
	}

	households, err := r.mgr.List()
	if err != nil {
		return err
	}

	if err := export.HouseholdsCSV(households, filepath.Join(r.dir, HouseholdsFile)); err != nil {
		return err
	}
	if err := export.MembersCSV(households, filepath.Join(r.dir, MembersFile)); err != nil {
		return err
	}
	if err := export.StatisticsReport(households, filepath.Join(r.dir, ReportFile)); err != nil {
		return err
	}

	log.Info().Str("dir", r.dir).Int("households", len(households)).Msg("Snapshot exported")
	return nil
}

// Follow exports once, then watches the database file and re-exports
// whenever it changes, until ctx is cancelled. External writers are
// handled by marking the manager cache dirty before each re-export.
func (r *Runner) Follow(ctx context.Context) error {
	if err := r.Export(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory, not the file: SQLite commits through renames
	// of the WAL and journal siblings.
	dbDir := filepath.Dir(r.dbPath)
	if err := watcher.Add(dbDir); err != nil {
		return err
	}

	base := filepath.Base(r.dbPath)
	log.Info().Str("path", r.dbPath).Msg("Following database file")

	for {
		select {
		case <-ctx.Done():
			r.cancelPending()
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(event.Name)
			if name != base && name != base+"-wal" && name != base+"-journal" {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			r.scheduleExport()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("Watcher error")
		}
	}
}

// Schedule exports once, then re-exports on the given cron expression
// until ctx is cancelled.
func (r *Runner) Schedule(ctx context.Context, spec string) error {
	if err := r.Export(); err != nil {
		return err
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		r.mgr.MarkDirty()
		if err := r.Export(); err != nil {
			log.Error().Err(err).Msg("Scheduled export failed")
		}
	})
	if err != nil {
		return err
	}

	c.Start()
	log.Info().Str("schedule", spec).Msg("Scheduled snapshot exports")

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	return nil
}

func (r *Runner) scheduleExport() {
	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()

	if r.pending != nil {
		r.pending.Stop()
	}
	r.pending = time.AfterFunc(debounceDelay, func() {
		r.mgr.MarkDirty()
		if err := r.Export(); err != nil {
			log.Error().Err(err).Msg("Snapshot export failed")
		}
	})
}

func (r *Runner) cancelPending() {
	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()
	if r.pending != nil {
		r.pending.Stop()
		r.pending = nil
	}
}
