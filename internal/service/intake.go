package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Kipparis/cooking-notebook/internal/model"
)

// BoundTable returns every recommended-intake interval recorded for a
// nutrient and sex.
type BoundTable interface {
	Bounds(nutrient string, sex model.Sex) ([]model.NutrientBound, error)
}

// ParseSex accepts the two classifications bounds are recorded for.
func ParseSex(raw string) (model.Sex, error) {
	switch model.Sex(strings.ToLower(strings.TrimSpace(raw))) {
	case model.SexMale, "m":
		return model.SexMale, nil
	case model.SexFemale, "f":
		return model.SexFemale, nil
	}
	return "", malformed("sex %q (expected male or female)", raw)
}

// BoundsFor picks the interval whose [lower, upper) range contains the
// profile's age on now. No matching interval, including a profile with an
// unrecorded sex, yields ErrNotFound.
func BoundsFor(table BoundTable, profile model.UserProfile, nutrient string, now time.Time) (model.NutrientBound, error) {
	if profile.Sex != model.SexMale && profile.Sex != model.SexFemale {
		return model.NutrientBound{}, notFound("bounds of %s for sex %q", nutrient, profile.Sex)
	}
	bounds, err := table.Bounds(nutrient, profile.Sex)
	if err != nil {
		return model.NutrientBound{}, err
	}
	age := profile.Age(now)
	for _, b := range bounds {
		if b.Contains(age) {
			return b, nil
		}
	}
	return model.NutrientBound{}, notFound("bounds of %s for %s aged %d", nutrient, profile.Sex, age)
}

// Bounds implements BoundTable. An unknown nutrient has no bounds.
func (s *Store) Bounds(nutrient string, sex model.Sex) ([]model.NutrientBound, error) {
	n, err := s.ResolveNutrient(nutrient)
	if errors.Is(err, ErrNotFound) {
		return []model.NutrientBound{}, nil
	}
	if err != nil {
		return nil, err
	}
	return queryBounds(s.db, `WHERE b.nutrient_id = ? AND b.sex = ?`, n.ID, string(sex))
}

const boundColumns = `b.id, n.name, b.age_lower, b.age_upper, b.sex, b.adequate_intake, b.upper_limit, bound_unit.name`

func queryBounds(db *sql.DB, where string, args ...any) ([]model.NutrientBound, error) {
	rows, err := db.Query(`
SELECT `+boundColumns+`
FROM nutrient_bounds b
JOIN nutrients n ON n.id = b.nutrient_id
JOIN measure_units bound_unit ON bound_unit.id = b.measure_unit_id
`+where+`
ORDER BY n.name, b.sex, b.age_lower`, args...)
	if err != nil {
		return nil, fmt.Errorf("list bounds: %w", err)
	}
	defer rows.Close()
	out := make([]model.NutrientBound, 0)
	for rows.Next() {
		var (
			b      model.NutrientBound
			sex    string
			ai, ul sql.NullFloat64
		)
		if err := rows.Scan(&b.ID, &b.Nutrient, &b.AgeLower, &b.AgeUpper, &sex, &ai, &ul, &b.Unit); err != nil {
			return nil, fmt.Errorf("scan bound: %w", err)
		}
		b.Sex = model.Sex(sex)
		if ai.Valid {
			v := ai.Float64
			b.AdequateIntake = &v
		}
		if ul.Valid {
			v := ul.Float64
			b.UpperLimit = &v
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bounds: %w", err)
	}
	return out, nil
}

// ListBounds lists bounds, optionally for one nutrient.
func ListBounds(db *sql.DB, nutrient string) ([]model.NutrientBound, error) {
	if strings.TrimSpace(nutrient) == "" {
		return queryBounds(db, "")
	}
	n, err := NewStore(db).ResolveNutrient(nutrient)
	if err != nil {
		return nil, err
	}
	return queryBounds(db, `WHERE b.nutrient_id = ?`, n.ID)
}

type BoundInput struct {
	Nutrient       string
	AgeLower       int
	AgeUpper       int
	Sex            model.Sex
	AdequateIntake *float64
	UpperLimit     *float64
	Unit           string
}

// AddBound records an intake interval. Intervals for the same nutrient and
// sex must not overlap, so an age always selects at most one bound.
func AddBound(db *sql.DB, in BoundInput) (int64, error) {
	if in.AgeLower < 0 || in.AgeLower >= in.AgeUpper {
		return 0, malformed("age interval [%d, %d) is empty or negative", in.AgeLower, in.AgeUpper)
	}
	sex, err := ParseSex(string(in.Sex))
	if err != nil {
		return 0, err
	}
	if in.AdequateIntake == nil && in.UpperLimit == nil {
		return 0, malformed("bound needs an adequate intake or an upper limit")
	}
	if in.AdequateIntake != nil {
		if err := validateNonNegativeFloat("adequate intake", *in.AdequateIntake); err != nil {
			return 0, err
		}
	}
	if in.UpperLimit != nil {
		if err := validateNonNegativeFloat("upper limit", *in.UpperLimit); err != nil {
			return 0, err
		}
	}
	if in.AdequateIntake != nil && in.UpperLimit != nil && *in.AdequateIntake > *in.UpperLimit {
		return 0, malformed("adequate intake %.4g exceeds upper limit %.4g", *in.AdequateIntake, *in.UpperLimit)
	}
	unit := NormalizeUnit(in.Unit)
	if unit == "" {
		return 0, malformed("bound unit is required")
	}

	store := NewStore(db)
	nutrient, err := store.ResolveNutrient(in.Nutrient)
	if err != nil {
		return 0, err
	}
	existing, err := store.Bounds(nutrient.Name, sex)
	if err != nil {
		return 0, err
	}
	candidate := model.NutrientBound{AgeLower: in.AgeLower, AgeUpper: in.AgeUpper}
	for _, b := range existing {
		if b.Overlaps(candidate) {
			return 0, duplicate("%s bound for %s overlaps [%d, %d)", nutrient.Name, sex, b.AgeLower, b.AgeUpper)
		}
	}

	unitID, err := getOrCreateID(db, "measure_units", string(unit))
	if err != nil {
		return 0, err
	}
	res, err := db.Exec(`
INSERT INTO nutrient_bounds(nutrient_id, age_lower, age_upper, sex, adequate_intake, upper_limit, measure_unit_id)
VALUES(?, ?, ?, ?, ?, ?, ?)`,
		nutrient.ID, in.AgeLower, in.AgeUpper, string(sex), nullableFloat(in.AdequateIntake), nullableFloat(in.UpperLimit), unitID)
	if err != nil {
		return 0, fmt.Errorf("add %s bound: %w", nutrient.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("resolve bound id: %w", err)
	}
	return id, nil
}

func nullableFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

type IntakeStatus string

const (
	IntakeBelow        IntakeStatus = "below"
	IntakeWithin       IntakeStatus = "within"
	IntakeAbove        IntakeStatus = "above"
	IntakeNoBound      IntakeStatus = "no-bound"
	IntakeUnitMismatch IntakeStatus = "unit-mismatch"
	// The nutrient name matches more than one stored nutrient.
	IntakeDuplicate IntakeStatus = "duplicate-nutrient"
)

type IntakeComparison struct {
	Nutrient string               `json:"nutrient"`
	Quantity float64              `json:"quantity"`
	Unit     string               `json:"unit"`
	Bound    *model.NutrientBound `json:"bound,omitempty"`
	Status   IntakeStatus         `json:"status"`
}

// CompareIntake checks each summary total against the profile's bound.
// Mass totals are rescaled to the bound's unit first; Quantity and Unit in the
// result are the compared values.
func CompareIntake(table BoundTable, profile model.UserProfile, summary []NutrientTotal, now time.Time) ([]IntakeComparison, error) {
	out := make([]IntakeComparison, 0, len(summary))
	for _, total := range summary {
		cmp := IntakeComparison{Nutrient: total.Nutrient, Quantity: total.Quantity, Unit: total.Unit}
		bound, err := BoundsFor(table, profile, total.Nutrient, now)
		if errors.Is(err, ErrNotFound) {
			cmp.Status = IntakeNoBound
			out = append(out, cmp)
			continue
		}
		if errors.Is(err, ErrDuplicate) {
			cmp.Status = IntakeDuplicate
			out = append(out, cmp)
			continue
		}
		if err != nil {
			return nil, err
		}
		cmp.Bound = &bound

		qty, ok := Rescale(total.Quantity, NormalizeUnit(total.Unit), NormalizeUnit(bound.Unit))
		if !ok {
			cmp.Status = IntakeUnitMismatch
			out = append(out, cmp)
			continue
		}
		cmp.Quantity, cmp.Unit = qty, bound.Unit

		switch {
		case bound.AdequateIntake != nil && qty < *bound.AdequateIntake:
			cmp.Status = IntakeBelow
		case bound.UpperLimit != nil && qty > *bound.UpperLimit:
			cmp.Status = IntakeAbove
		default:
			cmp.Status = IntakeWithin
		}
		out = append(out, cmp)
	}
	return out, nil
}

// SetProfile stores the profile used by bound lookups.
func SetProfile(db *sql.DB, p model.UserProfile) error {
	if p.BirthDate.IsZero() {
		return malformed("birth date is required")
	}
	sex, err := ParseSex(string(p.Sex))
	if err != nil {
		return err
	}
	if err := SetConfig(db, ConfigProfileBirthDate, p.BirthDate.Format("2006-01-02")); err != nil {
		return err
	}
	return SetConfig(db, ConfigProfileSex, string(sex))
}

// GetProfile returns the stored profile, or ErrNotFound if none was set.
func GetProfile(db *sql.DB) (model.UserProfile, error) {
	birth, ok, err := GetConfig(db, ConfigProfileBirthDate)
	if err != nil {
		return model.UserProfile{}, err
	}
	if !ok {
		return model.UserProfile{}, notFound("profile")
	}
	sex, _, err := GetConfig(db, ConfigProfileSex)
	if err != nil {
		return model.UserProfile{}, err
	}
	t, err := time.ParseInLocation("2006-01-02", birth, time.Local)
	if err != nil {
		return model.UserProfile{}, malformed("stored birth date %q", birth)
	}
	return model.UserProfile{BirthDate: t, Sex: model.Sex(sex)}, nil
}
