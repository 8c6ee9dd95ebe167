package service

import "database/sql"

// Store exposes the read-side tables to the aggregators through the
// RecipeStore, NutrientStore, ConversionTable and BoundTable interfaces.
// Aggregation never writes through it.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}
