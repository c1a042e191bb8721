// Package listing builds parameterized filter/sort clauses from untrusted
// query input. Column names only ever come from compile-time allow-lists;
// user-supplied values are only ever bound as parameters.
package listing

import (
	"net/url"
	"strconv"
	"strings"

	"gorm.io/gorm"

	pkgerrors "github.com/ratehub/ratehub-backend/pkg/errors"
)

const (
	DirectionAsc  = "ASC"
	DirectionDesc = "DESC"
)

// Match selects how a filter value is compared against its column.
type Match int

const (
	// MatchSubstring performs a case-insensitive contains match.
	MatchSubstring Match = iota
	// MatchExact performs an equality match.
	MatchExact
	// MatchInteger performs an equality match against an integer column. The
	// raw value must parse as an integer; Validate rejects anything else so a
	// malformed value never reaches the driver as a mistyped parameter.
	MatchInteger
)

// Filter binds an external filter key to an allow-listed column expression.
type Filter struct {
	Column string
	Match  Match
}

// Sort carries the raw sort request from the client.
type Sort struct {
	Field     string
	Direction string
}

// Params bundles the untrusted listing input.
type Params struct {
	Filters map[string]string
	Sort    Sort
}

// Definition is one entity's compile-time allow-list. Keys absent from
// Filters are silently dropped; sort fields absent from Sorts fall back to
// DefaultSort.
type Definition struct {
	Filters     map[string]Filter
	Sorts       map[string]string
	DefaultSort string
}

// ParamsFromQuery extracts filters and sort from raw URL query values. The
// sort keys are reserved; everything else is passed through as a candidate
// filter and screened against the allow-list later.
func ParamsFromQuery(values url.Values) Params {
	filters := make(map[string]string, len(values))
	for key := range values {
		if key == "sort_by" || key == "sort_order" {
			continue
		}
		if v := strings.TrimSpace(values.Get(key)); v != "" {
			filters[key] = v
		}
	}
	return Params{
		Filters: filters,
		Sort: Sort{
			Field:     values.Get("sort_by"),
			Direction: values.Get("sort_order"),
		},
	}
}

// NormalizeDirection maps arbitrary input onto ASC/DESC, defaulting to DESC.
func NormalizeDirection(value string) string {
	if strings.EqualFold(strings.TrimSpace(value), "asc") {
		return DirectionAsc
	}
	return DirectionDesc
}

// OrderClause resolves the ORDER BY expression for the requested sort.
func (d Definition) OrderClause(sort Sort) string {
	expr, ok := d.Sorts[sort.Field]
	if !ok {
		return d.DefaultSort
	}
	return expr + " " + NormalizeDirection(sort.Direction)
}

// Validate screens the allow-listed filter values before they are bound.
// Integer filters with non-integer values come back as a validation error so
// the request fails with field detail instead of a driver type error.
func (d Definition) Validate(params Params) error {
	for key, value := range params.Filters {
		filter, ok := d.Filters[key]
		if !ok {
			continue
		}
		if filter.Match != MatchInteger {
			continue
		}
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid filter value").
				WithDetails(map[string]string{key: "must be an integer"})
		}
	}
	return nil
}

// Scope applies the allow-listed filters and sort to a GORM query.
func (d Definition) Scope(params Params) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		for key, value := range params.Filters {
			filter, ok := d.Filters[key]
			if !ok {
				continue
			}
			switch filter.Match {
			case MatchExact:
				tx = tx.Where(filter.Column+" = ?", value)
			case MatchInteger:
				parsed, err := strconv.ParseInt(value, 10, 64)
				if err != nil {
					continue
				}
				tx = tx.Where(filter.Column+" = ?", parsed)
			default:
				tx = tx.Where("LOWER("+filter.Column+") LIKE ?", "%"+strings.ToLower(value)+"%")
			}
		}
		return tx.Order(d.OrderClause(params.Sort))
	}
}
