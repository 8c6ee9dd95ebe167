package db

import (
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "reference_tables",
		sql: `
CREATE TABLE IF NOT EXISTS meal_types (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS ingredients (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS measure_units (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS nutrients (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE,
  full_name TEXT NOT NULL DEFAULT '',
  deficiency TEXT NOT NULL DEFAULT '',
  excess TEXT NOT NULL DEFAULT ''
);
`,
	},
	{
		version: 2,
		name:    "recipes",
		sql: `
CREATE TABLE IF NOT EXISTS recipes (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE,
  meal_type_id INTEGER,
  portions INTEGER NOT NULL DEFAULT 0 CHECK(portions >= 0),
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(meal_type_id) REFERENCES meal_types(id)
);

CREATE TABLE IF NOT EXISTS recipe_steps (
  recipe_id INTEGER NOT NULL,
  position INTEGER NOT NULL CHECK(position > 0),
  text TEXT NOT NULL,
  PRIMARY KEY(recipe_id, position),
  FOREIGN KEY(recipe_id) REFERENCES recipes(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS recipe_ingredients (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  recipe_id INTEGER NOT NULL,
  ingredient_id INTEGER NOT NULL,
  quantity REAL NOT NULL CHECK(quantity > 0),
  measure_unit_id INTEGER NOT NULL,
  position INTEGER NOT NULL DEFAULT 0,
  UNIQUE(recipe_id, ingredient_id),
  FOREIGN KEY(recipe_id) REFERENCES recipes(id) ON DELETE CASCADE,
  FOREIGN KEY(ingredient_id) REFERENCES ingredients(id),
  FOREIGN KEY(measure_unit_id) REFERENCES measure_units(id)
);

CREATE INDEX IF NOT EXISTS idx_recipe_ingredients_recipe_id ON recipe_ingredients(recipe_id);
`,
	},
	{
		version: 3,
		name:    "nutrient_facts",
		sql: `
CREATE TABLE IF NOT EXISTS ingredient_nutrients (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ingredient_id INTEGER NOT NULL,
  nutrient_id INTEGER NOT NULL,
  quantity_per_100g REAL NOT NULL CHECK(quantity_per_100g >= 0),
  measure_unit_id INTEGER NOT NULL,
  source TEXT NOT NULL DEFAULT 'manual',
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(ingredient_id, nutrient_id),
  FOREIGN KEY(ingredient_id) REFERENCES ingredients(id),
  FOREIGN KEY(nutrient_id) REFERENCES nutrients(id),
  FOREIGN KEY(measure_unit_id) REFERENCES measure_units(id)
);

CREATE TABLE IF NOT EXISTS ingredient_conversions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ingredient_id INTEGER NOT NULL,
  from_unit_id INTEGER NOT NULL,
  to_unit_id INTEGER NOT NULL,
  multiplier REAL NOT NULL CHECK(multiplier > 0),
  UNIQUE(ingredient_id, from_unit_id),
  FOREIGN KEY(ingredient_id) REFERENCES ingredients(id),
  FOREIGN KEY(from_unit_id) REFERENCES measure_units(id),
  FOREIGN KEY(to_unit_id) REFERENCES measure_units(id)
);
`,
	},
	{
		version: 4,
		name:    "nutrient_bounds",
		sql: `
CREATE TABLE IF NOT EXISTS nutrient_bounds (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  nutrient_id INTEGER NOT NULL,
  age_lower INTEGER NOT NULL CHECK(age_lower >= 0),
  age_upper INTEGER NOT NULL,
  sex TEXT NOT NULL CHECK(sex IN ('male', 'female')),
  adequate_intake REAL CHECK(adequate_intake >= 0),
  upper_limit REAL CHECK(upper_limit >= 0),
  measure_unit_id INTEGER NOT NULL,
  CHECK(age_lower < age_upper),
  UNIQUE(nutrient_id, age_lower, age_upper, sex),
  FOREIGN KEY(nutrient_id) REFERENCES nutrients(id),
  FOREIGN KEY(measure_unit_id) REFERENCES measure_units(id)
);

CREATE INDEX IF NOT EXISTS idx_nutrient_bounds_lookup ON nutrient_bounds(nutrient_id, sex);
`,
	},
	{
		version: 5,
		name:    "nutrient_lookup_cache",
		sql: `
CREATE TABLE IF NOT EXISTS nutrient_lookup_cache (
  provider TEXT NOT NULL,
  query TEXT NOT NULL,
  facts_json TEXT NOT NULL,
  raw_json TEXT,
  fetched_at DATETIME NOT NULL,
  expires_at DATETIME NOT NULL,
  PRIMARY KEY(provider, query)
);
`,
	},
	{
		version: 6,
		name:    "app_config",
		sql: `
CREATE TABLE IF NOT EXISTS app_config (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`,
	},
}

// Base units are seeded so conversions and nutrient facts can always target them.
var baseUnits = []string{"g", "mg", "mcg"}

// Tables lists the domain tables in dependency order (parents first).
var Tables = []string{
	"meal_types",
	"ingredients",
	"measure_units",
	"nutrients",
	"recipes",
	"recipe_steps",
	"recipe_ingredients",
	"ingredient_nutrients",
	"ingredient_conversions",
	"nutrient_bounds",
}

func ApplyMigrations(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists int
		err := db.QueryRow(`SELECT 1 FROM schema_migrations WHERE version = ?`, m.version).Scan(&exists)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("check migration version %d: %w", m.version, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration tx: %w", err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration version %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version, name) VALUES(?, ?)`, m.version, m.name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration version %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration version %d: %w", m.version, err)
		}
	}

	for _, name := range baseUnits {
		if _, err := db.Exec(`INSERT OR IGNORE INTO measure_units(name) VALUES(?)`, name); err != nil {
			return fmt.Errorf("seed base unit %s: %w", name, err)
		}
	}
	return nil
}
