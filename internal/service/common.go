package service

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

func validateNonNegativeFloat(name string, value float64) error {
	if value < 0 {
		return malformed("%s must be >= 0", name)
	}
	return nil
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

func parseIDLoose(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("not numeric")
	}
	return id, nil
}

type queryer interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

// getOrCreateID returns the id of the row named name in a (id, name UNIQUE)
// reference table, inserting it when missing.
func getOrCreateID(q queryer, table, name string) (int64, error) {
	if name == "" {
		return 0, malformed("%s name is required", strings.TrimSuffix(table, "s"))
	}
	if _, err := q.Exec(`INSERT OR IGNORE INTO `+table+`(name) VALUES(?)`, name); err != nil {
		return 0, fmt.Errorf("insert %s %q: %w", table, name, err)
	}
	var id int64
	if err := q.QueryRow(`SELECT id FROM `+table+` WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("lookup %s %q: %w", table, name, err)
	}
	return id, nil
}

func lookupID(q queryer, table, name string) (int64, error) {
	var id int64
	err := q.QueryRow(`SELECT id FROM `+table+` WHERE name = ?`, name).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, notFound("%s %q", strings.TrimSuffix(table, "s"), name)
	}
	if err != nil {
		return 0, fmt.Errorf("lookup %s %q: %w", table, name, err)
	}
	return id, nil
}
