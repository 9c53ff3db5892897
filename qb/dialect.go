package qb

import (
	"fmt"
	"strings"
)

// Dialect describes how a SQL engine spells placeholders, quoted identifiers
// and case-insensitive pattern matching.
type Dialect struct {
	DriverName string
	// LastInsertID is set when generated keys are read through sql.Result
	// instead of a RETURNING clause.
	LastInsertID         bool
	CaseInsensitiveLike  binaryOp
	PlaceHolderGenerator PlaceholderGenerator
	QuoteIdentifier      func(name string) string
}

var Dialects = &struct {
	MySQL      *Dialect
	PostgreSQL *Dialect
	SQLite3    *Dialect
}{
	MySQL: &Dialect{
		DriverName:           "mysql",
		LastInsertID:         true,
		CaseInsensitiveLike:  Like,
		PlaceHolderGenerator: mySQLPlaceHolder,
		QuoteIdentifier:      backtickQuote,
	},
	PostgreSQL: &Dialect{
		DriverName:           "postgres",
		CaseInsensitiveLike:  ILike,
		PlaceHolderGenerator: postgresPlaceholder,
		QuoteIdentifier:      doubleQuote,
	},
	SQLite3: &Dialect{
		DriverName:           "sqlite3",
		LastInsertID:         true,
		CaseInsensitiveLike:  Like,
		PlaceHolderGenerator: mySQLPlaceHolder,
		QuoteIdentifier:      doubleQuote,
	},
}

// DialectFor resolves a database/sql driver name to its dialect.
func DialectFor(driver string) (*Dialect, error) {
	switch driver {
	case "mysql":
		return Dialects.MySQL, nil
	case "sqlite3":
		return Dialects.SQLite3, nil
	case "postgres", "postgresql", "pgx":
		return Dialects.PostgreSQL, nil
	default:
		return nil, fmt.Errorf("err no dialect matched with driver %q", driver)
	}
}

// PlaceholderGenerator returns the placeholders for n bound arguments.
type PlaceholderGenerator func(n int) []string

func postgresPlaceholder(n int) []string {
	output := []string{}
	for i := 1; i < n+1; i++ {
		output = append(output, fmt.Sprintf("$%d", i))
	}
	return output
}

func mySQLPlaceHolder(n int) []string {
	output := []string{}
	for i := 0; i < n; i++ {
		output = append(output, "?")
	}

	return output
}

func doubleQuote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func backtickQuote(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// placeholders returns n placeholders numbered after the first offset ones.
// A negative offset counts as zero.
func (d *Dialect) placeholders(offset, n int) []string {
	if offset < 0 {
		offset = 0
	}
	return d.PlaceHolderGenerator(offset + n)[offset:]
}

// Quote quotes a column or table name.
func (d *Dialect) Quote(name string) string {
	return d.QuoteIdentifier(name)
}

// Placeholder returns the placeholder bound to the n-th (1-based) argument.
func (d *Dialect) Placeholder(n int) string {
	return d.PlaceHolderGenerator(n)[n-1]
}

func dialectOrDefault(d *Dialect) *Dialect {
	if d == nil {
		return Dialects.PostgreSQL
	}
	return d
}
