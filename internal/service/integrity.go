package service

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

type BackupInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
}

type DoctorReport struct {
	DuplicateNutrients []string `json:"duplicate_nutrients"`
	OverlappingBounds  []string `json:"overlapping_bounds"`
	EmptyRecipes       []string `json:"empty_recipes"`
	BadConversions     int      `json:"bad_conversions"`
	ExpiredCacheRows   int      `json:"expired_cache_rows"`
	PurgedCacheRows    int64    `json:"purged_cache_rows,omitempty"`
}

// Healthy reports whether the checks found no data problems. Expired cache
// rows are housekeeping and do not count.
func (r DoctorReport) Healthy() bool {
	return len(r.DuplicateNutrients) == 0 && len(r.OverlappingBounds) == 0 && len(r.EmptyRecipes) == 0 && r.BadConversions == 0
}

func CreateBackup(dbPath, outPath string) (BackupInfo, error) {
	if strings.TrimSpace(dbPath) == "" {
		return BackupInfo{}, fmt.Errorf("db path is required")
	}
	if strings.TrimSpace(outPath) == "" {
		return BackupInfo{}, fmt.Errorf("backup output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return BackupInfo{}, fmt.Errorf("create backup directory: %w", err)
	}
	if err := copyFile(dbPath, outPath); err != nil {
		return BackupInfo{}, err
	}
	checksum, err := fileSHA256(outPath)
	if err != nil {
		return BackupInfo{}, err
	}
	if err := os.WriteFile(outPath+".sha256", []byte(checksum+"\n"), 0o644); err != nil {
		return BackupInfo{}, fmt.Errorf("write checksum file: %w", err)
	}
	st, err := os.Stat(outPath)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("stat backup: %w", err)
	}
	return BackupInfo{Path: outPath, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()}, nil
}

func RestoreBackup(backupPath, dbPath string, force bool) error {
	if strings.TrimSpace(backupPath) == "" || strings.TrimSpace(dbPath) == "" {
		return fmt.Errorf("backup path and db path are required")
	}
	if !force {
		if _, err := os.Stat(dbPath); err == nil {
			return fmt.Errorf("target db already exists; use --force to overwrite")
		}
	}
	checksumFile := backupPath + ".sha256"
	if expected, err := os.ReadFile(checksumFile); err == nil {
		actual, err := fileSHA256(backupPath)
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(expected)) != actual {
			return fmt.Errorf("backup checksum mismatch")
		}
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	return copyFile(backupPath, dbPath)
}

func ListBackups(dir string) ([]BackupInfo, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	out := make([]BackupInfo, 0)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".db") {
			continue
		}
		full := filepath.Join(dir, f.Name())
		st, err := os.Stat(full)
		if err != nil {
			continue
		}
		checksum := ""
		if b, err := os.ReadFile(full + ".sha256"); err == nil {
			checksum = strings.TrimSpace(string(b))
		}
		out = append(out, BackupInfo{Path: full, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// RunDoctor checks the invariants the schema cannot enforce on its own.
// With fix, expired lookup cache rows are purged.
func RunDoctor(db *sql.DB, fix bool) (DoctorReport, error) {
	report := DoctorReport{DuplicateNutrients: []string{}, OverlappingBounds: []string{}, EmptyRecipes: []string{}}

	nutrients, err := ListNutrients(db)
	if err != nil {
		return report, err
	}
	byKey := map[string][]string{}
	keys := make([]string, 0)
	for _, n := range nutrients {
		key := NormalizeNotation(n.Name)
		if _, ok := byKey[key]; !ok {
			keys = append(keys, key)
		}
		byKey[key] = append(byKey[key], n.Name)
	}
	for _, key := range keys {
		if names := byKey[key]; len(names) > 1 {
			report.DuplicateNutrients = append(report.DuplicateNutrients, strings.Join(names, ", "))
		}
	}

	bounds, err := ListBounds(db, "")
	if err != nil {
		return report, err
	}
	for i := range bounds {
		for j := i + 1; j < len(bounds); j++ {
			a, b := bounds[i], bounds[j]
			if a.Nutrient == b.Nutrient && a.Sex == b.Sex && a.Overlaps(b) {
				report.OverlappingBounds = append(report.OverlappingBounds,
					fmt.Sprintf("%s %s [%d, %d) and [%d, %d)", a.Nutrient, a.Sex, a.AgeLower, a.AgeUpper, b.AgeLower, b.AgeUpper))
			}
		}
	}

	rows, err := db.Query(`
SELECT r.name FROM recipes r
WHERE NOT EXISTS (SELECT 1 FROM recipe_ingredients ri WHERE ri.recipe_id = r.id)
ORDER BY r.name`)
	if err != nil {
		return report, fmt.Errorf("doctor empty recipe query: %w", err)
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			_ = rows.Close()
			return report, fmt.Errorf("doctor empty recipe scan: %w", err)
		}
		report.EmptyRecipes = append(report.EmptyRecipes, name)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return report, fmt.Errorf("doctor empty recipe iterate: %w", err)
	}
	_ = rows.Close()

	if err := db.QueryRow(`SELECT COUNT(1) FROM ingredient_conversions WHERE multiplier <= 0`).Scan(&report.BadConversions); err != nil {
		return report, fmt.Errorf("doctor conversion check: %w", err)
	}

	// Rows come back from CSV import in SQL datetime form, so compare through
	// datetime() rather than as text.
	now := time.Now().UTC().Format(sqlDateTime)
	if err := db.QueryRow(`SELECT COUNT(1) FROM nutrient_lookup_cache WHERE datetime(expires_at) < datetime(?)`, now).Scan(&report.ExpiredCacheRows); err != nil {
		return report, fmt.Errorf("doctor cache check: %w", err)
	}
	if fix && report.ExpiredCacheRows > 0 {
		res, err := db.Exec(`DELETE FROM nutrient_lookup_cache WHERE datetime(expires_at) < datetime(?)`, now)
		if err != nil {
			return report, fmt.Errorf("doctor purge expired cache: %w", err)
		}
		report.PurgedCacheRows, _ = res.RowsAffected()
	}
	return report, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync destination file: %w", err)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
