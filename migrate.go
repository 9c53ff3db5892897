package jobly

import (
	"context"
	"fmt"
)

// columnTypes holds the dialect specific spellings used by the table
// definitions below.
type columnTypes struct {
	serial  string
	text    string
	key     string
	boolean string
	numeric string
}

var typesByDriver = map[string]columnTypes{
	"postgres": {serial: "SERIAL PRIMARY KEY", text: "TEXT", key: "VARCHAR(255)", boolean: "BOOLEAN", numeric: "NUMERIC"},
	"mysql":    {serial: "INTEGER AUTO_INCREMENT PRIMARY KEY", text: "TEXT", key: "VARCHAR(255)", boolean: "BOOLEAN", numeric: "DECIMAL(4,3)"},
	"sqlite3":  {serial: "INTEGER PRIMARY KEY AUTOINCREMENT", text: "TEXT", key: "VARCHAR(255)", boolean: "BOOLEAN", numeric: "NUMERIC"},
}

func (d *DB) tableDefinitions() ([]string, error) {
	t, ok := typesByDriver[d.Dialect.DriverName]
	if !ok {
		return nil, fmt.Errorf("no table definitions for driver %q", d.Dialect.DriverName)
	}
	q := d.Dialect.Quote
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  %s %s PRIMARY KEY,
  %s %s NOT NULL UNIQUE,
  %s %s NOT NULL,
  %s INTEGER CHECK (%s >= 0),
  %s %s
)`, q(companiesTable),
			q(companyFields["handle"]), t.key,
			q(companyFields["name"]), t.key,
			q(companyFields["description"]), t.text,
			q(companyFields["numEmployees"]), q(companyFields["numEmployees"]),
			q(companyFields["logoUrl"]), t.text),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  %s %s,
  %s %s NOT NULL,
  %s INTEGER CHECK (%s >= 0),
  %s %s CHECK (%s <= 1.0),
  %s %s NOT NULL REFERENCES %s (%s) ON DELETE CASCADE
)`, q(jobsTable),
			q(jobFields["id"]), t.serial,
			q(jobFields["title"]), t.text,
			q(jobFields["salary"]), q(jobFields["salary"]),
			q(jobFields["equity"]), t.numeric, q(jobFields["equity"]),
			q(jobFields["companyHandle"]), t.key, q(companiesTable), q(companyFields["handle"])),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  %s %s PRIMARY KEY,
  password %s NOT NULL,
  %s %s NOT NULL,
  %s %s NOT NULL,
  %s %s NOT NULL,
  %s %s NOT NULL DEFAULT FALSE
)`, q(usersTable),
			q(userFields["username"]), t.key,
			t.text,
			q(userFields["firstName"]), t.text,
			q(userFields["lastName"]), t.text,
			q(userFields["email"]), t.text,
			q(userFields["isAdmin"]), t.boolean),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  %s %s NOT NULL REFERENCES %s (%s) ON DELETE CASCADE,
  %s INTEGER NOT NULL REFERENCES %s (%s) ON DELETE CASCADE,
  PRIMARY KEY (%s, %s)
)`, q(applicationsTable),
			q(applicationFields["username"]), t.key, q(usersTable), q(userFields["username"]),
			q(applicationFields["jobId"]), q(jobsTable), q(jobFields["id"]),
			q(applicationFields["username"]), q(applicationFields["jobId"])),
	}, nil
}

// CreateTables creates the companies, jobs, users and applications tables
// when they do not exist yet.
func (d *DB) CreateTables(ctx context.Context) error {
	stmts, err := d.tableDefinitions()
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := d.exec(ctx, stmt); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}
