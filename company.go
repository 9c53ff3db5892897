package jobly

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jobly/jobly/qb"
)

var (
	companiesTable = TableNameOf(Company{})
	companyColumns = ColumnsOf(Company{}, true)
	companyFields  = FieldMapOf(Company{})

	// CompanyFilters are the query keys accepted by Companies.FindAll.
	CompanyFilters = qb.DefaultFilterKeys

	companyFilterFields = qb.FieldMap{
		"nameLike":     companyFields["name"],
		"minEmployees": companyFields["numEmployees"],
		"maxEmployees": companyFields["numEmployees"],
	}
)

type Companies struct {
	db *DB
}

func scanCompany(row interface{ Scan(...any) error }) (*Company, error) {
	var c Company
	if err := row.Scan(&c.Handle, &c.Name, &c.Description, &c.NumEmployees, &c.LogoURL); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a company. A handle already in use fails with ErrDuplicate.
func (cs *Companies) Create(ctx context.Context, c Company) (*Company, error) {
	exists, err := cs.exists(ctx, c.Handle)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, duplicatef("Duplicate company: %s", c.Handle)
	}
	_, err = cs.db.insert(ctx, qb.Insert{
		Table:   companiesTable,
		Columns: companyColumns,
		Values:  [][]interface{}{{c.Handle, c.Name, c.Description, c.NumEmployees, c.LogoURL}},
	})
	if isUniqueViolation(err) {
		return nil, duplicatef("Duplicate company: %s", c.Handle)
	}
	if err != nil {
		return nil, fmt.Errorf("insert company %s: %w", c.Handle, err)
	}
	c.Jobs = nil
	return &c, nil
}

func (cs *Companies) exists(ctx context.Context, handle string) (bool, error) {
	var found string
	err := cs.db.queryRow(ctx,
		fmt.Sprintf("SELECT handle FROM %s WHERE handle = %s", companiesTable, cs.db.ph(1)),
		handle,
	).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// FindAll lists companies ordered by name. filters may hold nameLike,
// minEmployees and maxEmployees; any other key is compared for equality.
func (cs *Companies) FindAll(ctx context.Context, filters qb.KV) ([]Company, error) {
	where, err := cs.db.builder(CompanyFilters).Where(filters, companyFilterFields)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf("SELECT %s FROM %s", strings.Join(companyColumns, ", "), companiesTable)
	if !where.IsEmpty() {
		q += " WHERE " + where.Fragment
	}
	q += " ORDER BY name"

	rows, err := cs.db.query(ctx, q, where.Values...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	companies := []Company{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, *c)
	}
	return companies, rows.Err()
}

func (cs *Companies) get(ctx context.Context, handle string) (*Company, error) {
	c, err := scanCompany(cs.db.queryRow(ctx,
		fmt.Sprintf("SELECT %s FROM %s WHERE handle = %s", strings.Join(companyColumns, ", "), companiesTable, cs.db.ph(1)),
		handle,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFoundf("No company: %s", handle)
	}
	return c, err
}

// Get returns the company with its jobs.
func (cs *Companies) Get(ctx context.Context, handle string) (*Company, error) {
	c, err := cs.get(ctx, handle)
	if err != nil {
		return nil, err
	}
	jobs, err := cs.db.Jobs().FindAll(ctx, qb.KV{{Key: "companyHandle", Value: handle}})
	if err != nil {
		return nil, err
	}
	c.Jobs = jobs
	return c, nil
}

// Update applies a partial update. data keys are logical field names.
func (cs *Companies) Update(ctx context.Context, handle string, data qb.KV) (*Company, error) {
	q, args, err := qb.Update{
		Dialect:  cs.db.Dialect,
		Table:    companiesTable,
		Set:      data,
		FieldMap: companyFields,
		Where:    &qb.Cond{Lhs: "handle", Op: qb.Eq, Rhs: handle},
	}.ToSql()
	if err != nil {
		return nil, err
	}
	res, err := cs.db.exec(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("update company %s: %w", handle, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, notFoundf("No company: %s", handle)
	}
	return cs.get(ctx, handle)
}

func (cs *Companies) Remove(ctx context.Context, handle string) error {
	q, args := qb.Delete{
		Dialect: cs.db.Dialect,
		From:    companiesTable,
		Where:   &qb.Cond{Lhs: "handle", Op: qb.Eq, Rhs: handle},
	}.ToSql()
	res, err := cs.db.exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("delete company %s: %w", handle, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFoundf("No company: %s", handle)
	}
	return nil
}
