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
	jobsTable   = TableNameOf(Job{})
	jobColumns  = ColumnsOf(Job{}, true)
	jobFields   = FieldMapOf(Job{})
	jobInserted = ColumnsOf(Job{}, false)

	// JobFilters are the query keys accepted by Jobs.FindAll besides
	// hasEquity and companyHandle.
	JobFilters = qb.FilterKeys{
		Contains: "title",
		Lower:    "minSalary",
		Upper:    "maxSalary",
	}

	jobFilterFields = qb.FieldMap{
		"title":         jobFields["title"],
		"minSalary":     jobFields["salary"],
		"maxSalary":     jobFields["salary"],
		"companyHandle": jobFields["companyHandle"],
	}
)

type Jobs struct {
	db *DB
}

func scanJob(row interface{ Scan(...any) error }) (*Job, error) {
	var j Job
	if err := row.Scan(&j.ID, &j.Title, &j.Salary, &j.Equity, &j.CompanyHandle); err != nil {
		return nil, err
	}
	return &j, nil
}

// Create inserts a job for an existing company and returns it with its id.
func (js *Jobs) Create(ctx context.Context, j Job) (*Job, error) {
	exists, err := js.db.Companies().exists(ctx, j.CompanyHandle)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, notFoundf("No company: %s", j.CompanyHandle)
	}
	id, err := js.db.insert(ctx, qb.Insert{
		Table:     jobsTable,
		Columns:   jobInserted,
		Values:    [][]interface{}{{j.Title, j.Salary, j.Equity, j.CompanyHandle}},
		Returning: []string{"id"},
	})
	if err != nil {
		return nil, fmt.Errorf("insert job %q: %w", j.Title, err)
	}
	j.ID = id
	return &j, nil
}

// FindAll lists jobs ordered by id. filters may hold title, minSalary,
// maxSalary, companyHandle and hasEquity; hasEquity=true keeps jobs with a
// non-zero equity.
func (js *Jobs) FindAll(ctx context.Context, filters qb.KV) ([]Job, error) {
	hasEquity := false
	if v, ok := filters.Get("hasEquity"); ok {
		hasEquity = v == true
		filters = filters.Without("hasEquity")
	}
	where, err := js.db.builder(JobFilters).Where(filters, jobFilterFields)
	if err != nil {
		return nil, err
	}
	var conds []string
	if !where.IsEmpty() {
		conds = append(conds, where.Fragment)
	}
	if hasEquity {
		conds = append(conds, js.db.Dialect.Quote(jobFields["equity"])+" > 0")
	}

	q := fmt.Sprintf("SELECT %s FROM %s", strings.Join(jobColumns, ", "), jobsTable)
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY id"

	rows, err := js.db.query(ctx, q, where.Values...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	jobs := []Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

func (js *Jobs) Get(ctx context.Context, id int64) (*Job, error) {
	j, err := scanJob(js.db.queryRow(ctx,
		fmt.Sprintf("SELECT %s FROM %s WHERE id = %s", strings.Join(jobColumns, ", "), jobsTable, js.db.ph(1)),
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFoundf("No job: %d", id)
	}
	return j, err
}

// Update applies a partial update. The id and owning company cannot change.
func (js *Jobs) Update(ctx context.Context, id int64, data qb.KV) (*Job, error) {
	for _, key := range []string{"id", "companyHandle"} {
		if data.Has(key) {
			return nil, qb.Invalid(fmt.Sprintf("%s cannot be updated", key))
		}
	}
	q, args, err := qb.Update{
		Dialect:  js.db.Dialect,
		Table:    jobsTable,
		Set:      data,
		FieldMap: jobFields,
		Where:    &qb.Cond{Lhs: "id", Op: qb.Eq, Rhs: id},
	}.ToSql()
	if err != nil {
		return nil, err
	}
	res, err := js.db.exec(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("update job %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, notFoundf("No job: %d", id)
	}
	return js.Get(ctx, id)
}

func (js *Jobs) Remove(ctx context.Context, id int64) error {
	q, args := qb.Delete{
		Dialect: js.db.Dialect,
		From:    jobsTable,
		Where:   &qb.Cond{Lhs: "id", Op: qb.Eq, Rhs: id},
	}.ToSql()
	res, err := js.db.exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("delete job %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFoundf("No job: %d", id)
	}
	return nil
}
