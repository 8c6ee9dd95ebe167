package service_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kipparis/cooking-notebook/internal/model"
	"github.com/Kipparis/cooking-notebook/internal/service"
)

func ptr(v float64) *float64 { return &v }

func seedBounds(t *testing.T) *sql.DB {
	t.Helper()
	sqldb := newTestDB(t)
	_, err := service.CreateNutrient(sqldb, service.NutrientInput{Name: "Vitamin C"})
	require.NoError(t, err)
	_, err = service.AddBound(sqldb, service.BoundInput{
		Nutrient: "vitamin c", AgeLower: 19, AgeUpper: 50, Sex: model.SexFemale,
		AdequateIntake: ptr(75), UpperLimit: ptr(2000), Unit: "mg",
	})
	require.NoError(t, err)
	_, err = service.AddBound(sqldb, service.BoundInput{
		Nutrient: "vitamin c", AgeLower: 19, AgeUpper: 50, Sex: model.SexMale,
		AdequateIntake: ptr(90), UpperLimit: ptr(2000), Unit: "mg",
	})
	require.NoError(t, err)
	return sqldb
}

var today = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func profile(age int, sex model.Sex) model.UserProfile {
	return model.UserProfile{BirthDate: today.AddDate(-age, -1, 0), Sex: sex}
}

func TestBoundsForSelectsContainingInterval(t *testing.T) {
	t.Parallel()
	store := service.NewStore(seedBounds(t))

	b, err := service.BoundsFor(store, profile(25, model.SexFemale), "Vitamin C", today)
	require.NoError(t, err)
	require.NotNil(t, b.AdequateIntake)
	assert.Equal(t, 75.0, *b.AdequateIntake)

	b, err = service.BoundsFor(store, profile(19, model.SexMale), "Vitamin C", today)
	require.NoError(t, err)
	assert.Equal(t, 90.0, *b.AdequateIntake)

	_, err = service.BoundsFor(store, profile(50, model.SexMale), "Vitamin C", today)
	require.ErrorIs(t, err, service.ErrNotFound, "upper end is exclusive")
}

func TestBoundsForMissingSexOrNutrient(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	_, err := service.CreateNutrient(sqldb, service.NutrientInput{Name: "Vitamin C"})
	require.NoError(t, err)
	_, err = service.AddBound(sqldb, service.BoundInput{
		Nutrient: "Vitamin C", AgeLower: 19, AgeUpper: 50, Sex: model.SexFemale,
		AdequateIntake: ptr(75), Unit: "mg",
	})
	require.NoError(t, err)
	store := service.NewStore(sqldb)

	_, err = service.BoundsFor(store, profile(25, model.SexMale), "Vitamin C", today)
	require.ErrorIs(t, err, service.ErrNotFound)
	_, err = service.BoundsFor(store, profile(25, ""), "Vitamin C", today)
	require.ErrorIs(t, err, service.ErrNotFound)
	_, err = service.BoundsFor(store, profile(25, model.SexFemale), "Zinc", today)
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestAddBoundRejectsOverlapAndBadInput(t *testing.T) {
	t.Parallel()
	sqldb := seedBounds(t)

	_, err := service.AddBound(sqldb, service.BoundInput{
		Nutrient: "Vitamin C", AgeLower: 40, AgeUpper: 70, Sex: model.SexMale, AdequateIntake: ptr(90), Unit: "mg",
	})
	require.ErrorIs(t, err, service.ErrDuplicate)

	_, err = service.AddBound(sqldb, service.BoundInput{
		Nutrient: "Vitamin C", AgeLower: 50, AgeUpper: 120, Sex: model.SexMale, AdequateIntake: ptr(90), Unit: "mg",
	})
	require.NoError(t, err, "adjacent intervals do not overlap")

	_, err = service.AddBound(sqldb, service.BoundInput{
		Nutrient: "Vitamin C", AgeLower: 5, AgeUpper: 5, Sex: model.SexMale, AdequateIntake: ptr(1), Unit: "mg",
	})
	require.ErrorIs(t, err, service.ErrMalformed)

	_, err = service.AddBound(sqldb, service.BoundInput{
		Nutrient: "Vitamin C", AgeLower: 1, AgeUpper: 5, Sex: model.SexMale, AdequateIntake: ptr(10), UpperLimit: ptr(5), Unit: "mg",
	})
	require.ErrorIs(t, err, service.ErrMalformed)

	bounds, err := service.ListBounds(sqldb, "vitamin c")
	require.NoError(t, err)
	assert.Len(t, bounds, 3)
}

func TestCompareIntake(t *testing.T) {
	t.Parallel()
	store := service.NewStore(seedBounds(t))
	summary := []service.NutrientTotal{
		{Nutrient: "Vitamin C", Unit: "g", Quantity: 0.05},
		{Nutrient: "Protein", Unit: "g", Quantity: 60},
	}

	got, err := service.CompareIntake(store, profile(30, model.SexFemale), summary, today)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, service.IntakeBelow, got[0].Status)
	assert.InDelta(t, 50, got[0].Quantity, 1e-9)
	assert.Equal(t, "mg", got[0].Unit)
	assert.Equal(t, service.IntakeNoBound, got[1].Status)

	got, err = service.CompareIntake(store, profile(30, model.SexFemale), []service.NutrientTotal{
		{Nutrient: "Vitamin C", Unit: "mg", Quantity: 100},
		{Nutrient: "Vitamin C", Unit: "mg", Quantity: 2500},
		{Nutrient: "Vitamin C", Unit: "iu", Quantity: 100},
	}, today)
	require.NoError(t, err)
	assert.Equal(t, service.IntakeWithin, got[0].Status)
	assert.Equal(t, service.IntakeAbove, got[1].Status)
	assert.Equal(t, service.IntakeUnitMismatch, got[2].Status)
}

func TestCompareIntakeReportsDuplicateNutrientAndContinues(t *testing.T) {
	t.Parallel()
	sqldb := seedBounds(t)
	// CSV import can bring in names CreateNutrient would reject.
	_, err := sqldb.Exec(`INSERT INTO nutrients(name) VALUES ('Iron'), ('iron')`)
	require.NoError(t, err)

	got, err := service.CompareIntake(service.NewStore(sqldb), profile(30, model.SexFemale), []service.NutrientTotal{
		{Nutrient: "Iron", Unit: "mg", Quantity: 5},
		{Nutrient: "Vitamin C", Unit: "mg", Quantity: 100},
	}, today)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, service.IntakeDuplicate, got[0].Status)
	assert.Nil(t, got[0].Bound)
	assert.Equal(t, service.IntakeWithin, got[1].Status)
}

func TestProfileRoundTrip(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	_, err := service.GetProfile(sqldb)
	require.ErrorIs(t, err, service.ErrNotFound)

	birth := time.Date(1990, 3, 14, 0, 0, 0, 0, time.Local)
	require.NoError(t, service.SetProfile(sqldb, model.UserProfile{BirthDate: birth, Sex: "F"}))
	p, err := service.GetProfile(sqldb)
	require.NoError(t, err)
	assert.Equal(t, model.SexFemale, p.Sex)
	assert.True(t, p.BirthDate.Equal(birth))

	err = service.SetProfile(sqldb, model.UserProfile{BirthDate: birth, Sex: "other"})
	require.ErrorIs(t, err, service.ErrMalformed)
}
