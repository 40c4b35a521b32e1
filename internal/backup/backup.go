// internal/backup/backup.go
package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"sttbackend/internal/logger"
)

const (
	retentionDays     = 14 // Backups older than this are pruned
	maxDeletionPerRun = 25 // Maximum files to delete per run
	timestampLayout   = "20060102_150405"
	backupPrefix      = "merchant_"
	backupSuffix      = ".db"
)

// CreateBackup copies the store file into the backup directory under a
// timestamped name and returns the path of the copy.
func CreateBackup(dbPath, backupDir string) (string, error) {
	if err := os.MkdirAll(backupDir, 0775); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	src, err := os.Open(dbPath)
	if err != nil {
		return "", fmt.Errorf("failed to open store file: %w", err)
	}
	defer src.Close()

	name := backupPrefix + time.Now().Format(timestampLayout) + backupSuffix
	dstPath := filepath.Join(backupDir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("failed to copy store file: %w", err)
	}

	logger.LogInfo("Created store backup at %s", dstPath)
	return dstPath, nil
}

// PruneBackups deletes backups older than the retention window, oldest
// first, capped per run so a huge backlog never blocks the caller.
func PruneBackups(backupDir string) (int, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	logger.LogInfo("Pruning backups older than %s", cutoff.Format("2006-01-02 15:04:05"))

	entries, err := os.ReadDir(backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read backup directory: %w", err)
	}

	type candidate struct {
		path string
		at   time.Time
	}
	var stale []candidate

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		at, ok := parseBackupTime(entry.Name())
		if !ok {
			continue
		}
		if at.Before(cutoff) {
			stale = append(stale, candidate{path: filepath.Join(backupDir, entry.Name()), at: at})
		}
	}

	sort.Slice(stale, func(i, j int) bool { return stale[i].at.Before(stale[j].at) })
	if len(stale) > maxDeletionPerRun {
		logger.LogWarn("Found %d stale backups, deleting %d this run", len(stale), maxDeletionPerRun)
		stale = stale[:maxDeletionPerRun]
	}

	deleted := 0
	for _, c := range stale {
		if err := os.Remove(c.path); err != nil {
			logger.LogError("Failed to delete backup %s: %v", c.path, err)
			continue
		}
		deleted++
	}

	if deleted > 0 {
		logger.LogInfo("Pruned %d stale backups", deleted)
	}
	return deleted, nil
}

func parseBackupTime(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, backupPrefix), backupSuffix)
	at, err := time.ParseInLocation(timestampLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}
