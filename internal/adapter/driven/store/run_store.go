package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/diillson/aws-cost-report/internal/domain/entity"
	"github.com/diillson/aws-cost-report/internal/domain/repository"
	"github.com/diillson/aws-cost-report/internal/shared/types"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

const (
	// RunIDLayout is the timestamp layout of run directory names.
	RunIDLayout = "20060102_150405"
	// LatestName is the alias that always points at the most recent complete run.
	LatestName = "latest"
	// PointerName is written instead of the alias where symlinks are unavailable.
	PointerName = "LATEST"
)

var runDirPattern = regexp.MustCompile(`^[0-9]{8}_[0-9]{6}(_[0-9a-f]{8})?$`)

// FileRunStore publica execuções num diretório local.
type FileRunStore struct {
	root     string
	keepRuns int
	logger   *zap.Logger
	symlink  func(oldname, newname string) error
}

// NewRunStore creates a store rooted at root. keepRuns <= 0 keeps every run.
func NewRunStore(root string, keepRuns int, logger *zap.Logger) repository.RunStore {
	return &FileRunStore{root: root, keepRuns: keepRuns, logger: logger, symlink: os.Symlink}
}

// NewRunID returns a timestamp based id, suffixed when that directory already exists.
func (s *FileRunStore) NewRunID(now time.Time) string {
	id := now.Format(RunIDLayout)
	if _, err := os.Lstat(filepath.Join(s.root, id)); err == nil {
		id += "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}
	return id
}

// Publish writes every artifact into a staging directory, renames it into place and
// then swaps the latest alias. On failure nothing of this run is left behind.
func (s *FileRunStore) Publish(ctx context.Context, run entity.Run) (string, error) {
	const op = "store.Publish"

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return "", &types.RunStoreError{Op: "create root", Path: s.root, Err: err}
	}
	final := filepath.Join(s.root, run.ID)
	if _, err := os.Lstat(final); err == nil {
		return "", &types.RunStoreError{Op: "create run directory", Path: final, Err: os.ErrExist}
	}

	staging, err := os.MkdirTemp(s.root, "."+run.ID+".partial-")
	if err != nil {
		return "", &types.RunStoreError{Op: "create staging directory", Path: s.root, Err: err}
	}

	fail := func(stage, path string, cause error, created ...string) (string, error) {
		var result error = &types.RunStoreError{Op: stage, Path: path, Err: cause}
		for _, dir := range created {
			if rmErr := os.RemoveAll(dir); rmErr != nil {
				result = multierror.Append(result, fmt.Errorf("cleanup %s: %w", dir, rmErr))
			}
		}
		s.logger.Error("run not published", zap.String("op", op), zap.String("run_id", run.ID), zap.Error(result))
		return "", result
	}

	for _, a := range run.Artifacts {
		if err := ctx.Err(); err != nil {
			return fail("write artifact", a.Name, err, staging)
		}
		if err := validName(a.Name); err != nil {
			return fail("write artifact", a.Name, err, staging)
		}
		if err := writeFileAtomic(staging, a.Name, a.Data); err != nil {
			return fail("write artifact", filepath.Join(staging, a.Name), err, staging)
		}
		s.logger.Debug("artifact written", zap.String("op", op), zap.String("name", a.Name), zap.Int("bytes", len(a.Data)))
	}

	if err := os.Chmod(staging, 0o755); err != nil {
		return fail("chmod run directory", staging, err, staging)
	}
	syncDir(staging)
	if err := os.Rename(staging, final); err != nil {
		return fail("publish run directory", final, err, staging)
	}
	syncDir(s.root)

	if err := s.swapLatest(run.ID); err != nil {
		return fail("update latest alias", filepath.Join(s.root, LatestName), err, final)
	}

	s.logger.Info("run published", zap.String("op", op), zap.String("run_id", run.ID), zap.String("path", final))
	if err := s.prune(run.ID); err != nil {
		s.logger.Warn("retention cleanup incomplete", zap.String("op", op), zap.Error(err))
	}
	return final, nil
}

// LatestPath is the alias of the latest run, or the pointer file where symlinks were unavailable.
func (s *FileRunStore) LatestPath() string {
	alias := filepath.Join(s.root, LatestName)
	if _, err := os.Lstat(alias); err == nil {
		return alias
	}
	return filepath.Join(s.root, PointerName)
}

// swapLatest points the alias at runID by renaming a fresh symlink over it, so readers
// see either the old or the new target. Only one of latest and LATEST survives.
func (s *FileRunStore) swapLatest(runID string) error {
	alias := filepath.Join(s.root, LatestName)
	pointer := filepath.Join(s.root, PointerName)

	tmp := filepath.Join(s.root, ".latest-"+uuid.NewString())
	if err := s.symlink(runID, tmp); err != nil {
		s.logger.Warn("symlinks unavailable, writing pointer file instead",
			zap.String("op", "store.swapLatest"), zap.Error(err))
		if err := writeFileAtomic(s.root, PointerName, []byte(runID+"\n")); err != nil {
			return err
		}
		// Um alias de uma execução anterior apontaria para a execução errada.
		if info, err := os.Lstat(alias); err == nil && info.Mode()&os.ModeSymlink != 0 {
			return os.Remove(alias)
		}
		return nil
	}
	if err := os.Rename(tmp, alias); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Remove(pointer); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("stale pointer file not removed", zap.String("op", "store.swapLatest"), zap.Error(err))
	}
	return nil
}

// prune removes the oldest run directories beyond keepRuns. The current run is never removed.
func (s *FileRunStore) prune(current string) error {
	if s.keepRuns <= 0 {
		return nil
	}
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return err
	}
	var runs []string
	for _, e := range entries {
		if e.IsDir() && runDirPattern.MatchString(e.Name()) {
			runs = append(runs, e.Name())
		}
	}
	sort.Strings(runs)

	var result error
	for len(runs) > s.keepRuns {
		oldest := runs[0]
		runs = runs[1:]
		if oldest == current {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.root, oldest)); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		s.logger.Debug("old run removed", zap.String("op", "store.prune"), zap.String("run_id", oldest))
	}
	return result
}

// writeFileAtomic writes data to a temp file next to the target, fsyncs it and renames it into place.
func writeFileAtomic(dir, name string, data []byte) (err error) {
	f, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(dir, name))
}

var errBadName = errors.New("artifact name must be a plain file name")

func validName(name string) error {
	if name == "" || name == "." || name == ".." || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", errBadName, name)
	}
	return nil
}

// syncDir flushes directory entries; not every platform supports it.
func syncDir(dir string) {
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
}
