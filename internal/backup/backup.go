package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"frontoffice/internal/data"
	"frontoffice/internal/logger"
)

const (
	backupHour = 2 // 2 AM
	filePrefix = "frontoffice_"
	fileSuffix = ".json"
	dateLayout = "2006-01-02"
)

// Runner writes one JSON snapshot of the store per day and prunes old ones.
type Runner struct {
	store         data.Store
	dir           string
	retentionDays int
	now           func() time.Time

	// OnFailure, when set, hears about scheduled runs that fail.
	OnFailure func(error)
}

func New(store data.Store, dir string, retentionDays int) *Runner {
	return &Runner{store: store, dir: dir, retentionDays: retentionDays, now: time.Now}
}

// StartBackupRoutine starts the daily backup job. It stops when ctx ends.
func (r *Runner) StartBackupRoutine(ctx context.Context) {
	go func() {
		logger.LogInfo("Backup routine started - will run daily at %d:00 AM into %s", backupHour, r.dir)

		for {
			now := r.now()
			next := time.Date(now.Year(), now.Month(), now.Day(), backupHour, 0, 0, 0, now.Location())
			if now.After(next) {
				next = next.Add(24 * time.Hour)
			}

			wait := next.Sub(now)
			logger.LogInfo("Next backup scheduled for %v (in %v)", next.Format("2006-01-02 15:04:05"), wait)

			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				logger.LogInfo("Backup routine stopped")
				return
			case <-timer.C:
			}

			r.runScheduled(ctx)
		}
	}()
}

func (r *Runner) runScheduled(ctx context.Context) {
	if _, err := r.Run(ctx); err != nil {
		logger.LogError("Daily backup failed: %v", err)
		if r.OnFailure != nil {
			r.OnFailure(err)
		}
	}
}

// Run writes today's snapshot, replacing an earlier one from the same day, then
// removes snapshots past the retention window. It returns the written path.
func (r *Runner) Run(ctx context.Context) (string, error) {
	logger.LogInfo("Starting daily backup")

	snap, err := r.store.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("reading store: %w", err)
	}

	path, err := r.write(snap)
	if err != nil {
		return "", err
	}

	removed, err := r.prune()
	if err != nil {
		logger.LogError("Failed to prune old backups: %v", err)
	} else if removed > 0 {
		logger.LogInfo("Removed %d backups older than %d days", removed, r.retentionDays)
	}

	logger.LogInfo("Backup completed - wrote %s", path)
	return path, nil
}

func (r *Runner) write(snap *data.Snapshot) (string, error) {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return "", fmt.Errorf("creating backup directory %q: %w", r.dir, err)
	}

	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}

	path := filepath.Join(r.dir, filePrefix+r.now().Format(dateLayout)+fileSuffix)

	tmp, err := os.CreateTemp(r.dir, ".backup-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing backup: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("moving backup into place: %w", err)
	}
	return path, nil
}

// prune deletes backups dated before the retention window. Files that do not
// look like backups are left alone.
func (r *Runner) prune() (int, error) {
	if r.retentionDays <= 0 {
		return 0, nil
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return 0, fmt.Errorf("listing %q: %w", r.dir, err)
	}

	now := r.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	cutoff := today.AddDate(0, 0, -r.retentionDays)

	removed := 0
	for _, e := range entries {
		day, ok := backupDate(e.Name(), now.Location())
		if e.IsDir() || !ok || !day.Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(r.dir, e.Name())); err != nil {
			logger.LogWarn("Could not remove old backup %s: %v", e.Name(), err)
			continue
		}
		removed++
	}
	return removed, nil
}

// List returns the backup file names in the directory, oldest first.
func (r *Runner) List() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("listing %q: %w", r.dir, err)
	}

	names := []string{}
	for _, e := range entries {
		if _, ok := backupDate(e.Name(), time.UTC); ok && !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func backupDate(name string, loc *time.Location) (time.Time, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	day, err := time.ParseInLocation(dateLayout, stamp, loc)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}
