package service

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/Kipparis/cooking-notebook/internal/db"
)

const (
	csvDelimiter = '|'
	csvNull      = `\N`
	// SQL datetime form used for DATETIME columns in CSV files.
	sqlDateTime = "2006-01-02 15:04:05"
)

type ExportReport struct {
	Dir    string         `json:"dir"`
	Tables map[string]int `json:"tables"`
}

type ImportReport struct {
	Inserted int            `json:"inserted"`
	Skipped  int            `json:"skipped"`
	Tables   map[string]int `json:"tables"`
	Missing  []string       `json:"missing,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
}

// ExportCSV writes one pipe-delimited <table>.csv per domain table into dir.
// The header row holds column names; NULL is written as \N.
func ExportCSV(sqldb *sql.DB, dir string) (ExportReport, error) {
	report := ExportReport{Dir: dir, Tables: map[string]int{}}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return report, fmt.Errorf("create export directory: %w", err)
	}
	for _, table := range db.Tables {
		n, err := exportTable(sqldb, table, filepath.Join(dir, table+".csv"))
		if err != nil {
			return report, err
		}
		report.Tables[table] = n
	}
	return report, nil
}

func exportTable(sqldb *sql.DB, table, path string) (int, error) {
	rows, err := sqldb.Query(`SELECT * FROM ` + table + ` ORDER BY rowid`)
	if err != nil {
		return 0, fmt.Errorf("export %s: %w", table, err)
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return 0, fmt.Errorf("export %s columns: %w", table, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	w.Comma = csvDelimiter
	if err := w.Write(cols); err != nil {
		return 0, fmt.Errorf("write %s header: %w", table, err)
	}

	count := 0
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	record := make([]string, len(cols))
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return count, fmt.Errorf("scan %s row: %w", table, err)
		}
		for i, v := range values {
			record[i] = csvValue(v)
		}
		if err := w.Write(record); err != nil {
			return count, fmt.Errorf("write %s row: %w", table, err)
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return count, fmt.Errorf("iterate %s: %w", table, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return count, fmt.Errorf("flush %s: %w", path, err)
	}
	return count, nil
}

func csvValue(v any) string {
	switch t := v.(type) {
	case nil:
		return csvNull
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case []byte:
		return string(t)
	case time.Time:
		return t.UTC().Format(sqlDateTime)
	case bool:
		if t {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(t)
	}
}

// ImportCSV adds the rows of every <table>.csv found in dir, parents first.
// Import never updates or deletes: rows that violate a uniqueness, check or
// foreign-key constraint are skipped and counted. Missing files are skipped.
func ImportCSV(sqldb *sql.DB, dir string, log *zap.Logger) (ImportReport, error) {
	if log == nil {
		log = zap.NewNop()
	}
	report := ImportReport{Tables: map[string]int{}}
	for _, table := range db.Tables {
		path := filepath.Join(dir, table+".csv")
		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			report.Missing = append(report.Missing, table)
			continue
		}
		if err != nil {
			return report, fmt.Errorf("open %s: %w", path, err)
		}
		err = importTable(sqldb, table, f, &report, log)
		_ = f.Close()
		if err != nil {
			return report, err
		}
	}
	if err := SetConfig(sqldb, ConfigLastImport, dir); err != nil {
		return report, err
	}
	return report, nil
}

func importTable(sqldb *sql.DB, table string, r io.Reader, report *ImportReport, log *zap.Logger) error {
	cr := csv.NewReader(r)
	cr.Comma = csvDelimiter
	cr.FieldsPerRecord = 0
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s header: %w", table, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
		if !isIdentifier(header[i]) {
			return malformed("%s.csv: bad column name %q", table, header[i])
		}
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(header)), ", ")
	stmt := `INSERT INTO ` + table + `(` + strings.Join(header, ", ") + `) VALUES(` + placeholders + `)`

	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			report.Skipped++
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s.csv line %d: %v", table, line, err))
			continue
		}
		args := make([]any, len(record))
		for i, v := range record {
			if v == csvNull {
				args[i] = nil
			} else {
				args[i] = v
			}
		}
		if _, err := sqldb.Exec(stmt, args...); err != nil {
			if !isConstraintViolation(err) {
				return fmt.Errorf("import %s line %d: %w", table, line, err)
			}
			report.Skipped++
			log.Debug("import row skipped", zap.String("table", table), zap.Int("line", line), zap.Error(err))
			continue
		}
		report.Inserted++
		report.Tables[table]++
	}
	return nil
}

func isConstraintViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}
