package sqlite

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const (
	backupPrefix      = "todoui_"
	backupExt         = ".db"
	backupStampLayout = "20060102_150405"
)

// backupLocked closes the connection, copies the database file into the
// backup directory and reopens it. The caller must hold s.mu exclusively.
//
// A failed copy is logged and swallowed since the write it follows is
// already committed. A failed reopen leaves the store closed and is returned.
func (s *Store) backupLocked(op string) error {
	dst, err := nextBackupPath(s.backupDir, s.now().Format(backupStampLayout))
	if err != nil {
		s.logger.Warn("database backup skipped", slog.String("op", op), slog.String("error", err.Error()))
		return nil
	}

	if err := s.db.Close(); err != nil {
		s.logger.Warn("close before backup", slog.String("op", op), slog.String("error", err.Error()))
	}
	s.db = nil

	copyErr := copyFile(s.path, dst)

	conn, err := openConn(s.path)
	if err != nil {
		return fmt.Errorf("%s: reopen after backup: %w", op, err)
	}
	s.db = conn

	if copyErr != nil {
		s.logger.Warn("database backup failed",
			slog.String("op", op),
			slog.String("path", dst),
			slog.String("error", copyErr.Error()))
		return nil
	}
	s.logger.Debug("database backup written", slog.String("op", op), slog.String("path", dst))

	if s.retention > 0 {
		s.pruneBackups()
	}
	return nil
}

// nextBackupPath returns the first unused name for stamp. Several writes in
// the same second get _1, _2 ... suffixes instead of overwriting each other.
func nextBackupPath(dir, stamp string) (string, error) {
	base := filepath.Join(dir, backupPrefix+stamp)
	candidate := base + backupExt
	for i := 1; ; i++ {
		_, err := os.Stat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s_%d%s", base, i, backupExt)
	}
}

// copyFile copies src to dst and carries over the modification time.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err = out.Sync(); err != nil {
		_ = out.Close()
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// pruneBackups removes the oldest backups beyond the retention limit.
func (s *Store) pruneBackups() {
	names, err := listBackups(s.backupDir)
	if err != nil {
		s.logger.Warn("list backups", slog.String("error", err.Error()))
		return
	}
	if len(names) <= s.retention {
		return
	}
	for _, name := range names[:len(names)-s.retention] {
		if err := os.Remove(filepath.Join(s.backupDir, name)); err != nil {
			s.logger.Warn("remove old backup", slog.String("name", name), slog.String("error", err.Error()))
		}
	}
}

// listBackups returns backup file names in dir, oldest first.
func listBackups(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	type backup struct {
		name  string
		stamp string
		seq   int
	}
	var backups []backup
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		stamp, seq, ok := parseBackupName(e.Name())
		if !ok {
			continue
		}
		backups = append(backups, backup{name: e.Name(), stamp: stamp, seq: seq})
	}

	sort.Slice(backups, func(i, j int) bool {
		if backups[i].stamp != backups[j].stamp {
			return backups[i].stamp < backups[j].stamp
		}
		return backups[i].seq < backups[j].seq
	})

	names := make([]string, len(backups))
	for i, b := range backups {
		names[i] = b.name
	}
	return names, nil
}

func parseBackupName(name string) (stamp string, seq int, ok bool) {
	if !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupExt) {
		return "", 0, false
	}
	rest := strings.TrimSuffix(strings.TrimPrefix(name, backupPrefix), backupExt)
	if len(rest) < len(backupStampLayout) {
		return "", 0, false
	}
	stamp, suffix := rest[:len(backupStampLayout)], rest[len(backupStampLayout):]
	if suffix == "" {
		return stamp, 0, true
	}
	n, err := strconv.Atoi(strings.TrimPrefix(suffix, "_"))
	if err != nil || !strings.HasPrefix(suffix, "_") {
		return "", 0, false
	}
	return stamp, n, true
}
