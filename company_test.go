package jobly

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jobly/jobly/qb"
)

func mockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	db, err := Open(ConnectionConfig{
		Name:       "test",
		DB:         conn,
		Dialect:    qb.Dialects.PostgreSQL,
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)
	return db, mock
}

var companyRowColumns = []string{"handle", "name", "description", "num_employees", "logo_url"}

func TestCompanies_Create(t *testing.T) {
	t.Run("inserts a new company", func(t *testing.T) {
		db, mock := mockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT handle FROM companies WHERE handle = $1`)).
			WithArgs("new").
			WillReturnRows(sqlmock.NewRows([]string{"handle"}))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "companies" ("handle", "name", "description", "num_employees", "logo_url") VALUES ($1, $2, $3, $4, $5)`)).
			WithArgs("new", "New", "New Description", int64(1), "http://new.img").
			WillReturnResult(sqlmock.NewResult(0, 1))

		n, logo := 1, "http://new.img"
		c, err := db.Companies().Create(context.Background(), Company{
			Handle: "new", Name: "New", Description: "New Description", NumEmployees: &n, LogoURL: &logo,
		})
		require.NoError(t, err)
		assert.Equal(t, "new", c.Handle)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects a duplicate handle", func(t *testing.T) {
		db, mock := mockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT handle FROM companies WHERE handle = $1`)).
			WithArgs("c1").
			WillReturnRows(sqlmock.NewRows([]string{"handle"}).AddRow("c1"))

		_, err := db.Companies().Create(context.Background(), Company{Handle: "c1", Name: "C1"})
		assert.True(t, errors.Is(err, ErrDuplicate))
		assert.Equal(t, "Duplicate company: c1", err.Error())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCompanies_FindAll(t *testing.T) {
	t.Run("without filters", func(t *testing.T) {
		db, mock := mockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT handle, name, description, num_employees, logo_url FROM companies ORDER BY name`)).
			WillReturnRows(sqlmock.NewRows(companyRowColumns).
				AddRow("c1", "C1", "Desc1", 1, "http://c1.img").
				AddRow("c2", "C2", "Desc2", nil, nil))

		companies, err := db.Companies().FindAll(context.Background(), nil)
		require.NoError(t, err)
		require.Len(t, companies, 2)
		require.NotNil(t, companies[0].NumEmployees)
		assert.Equal(t, 1, *companies[0].NumEmployees)
		assert.Nil(t, companies[1].NumEmployees)
		assert.Nil(t, companies[1].LogoURL)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("with filters", func(t *testing.T) {
		db, mock := mockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM companies WHERE "name" ILIKE $1 AND "num_employees" > $2 AND "num_employees" < $3 ORDER BY name`)).
			WithArgs("%net%", int64(2), int64(300)).
			WillReturnRows(sqlmock.NewRows(companyRowColumns).AddRow("c2", "Net", "Desc", 20, nil))

		filters := qb.KV{
			{Key: "nameLike", Value: "net"},
			{Key: "minEmployees", Value: int64(2)},
			{Key: "maxEmployees", Value: int64(300)},
		}
		companies, err := db.Companies().FindAll(context.Background(), filters)
		require.NoError(t, err)
		assert.Len(t, companies, 1)
		assert.Equal(t, "net", filters[0].Value)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects an inverted range before querying", func(t *testing.T) {
		db, mock := mockDB(t)
		_, err := db.Companies().FindAll(context.Background(), qb.KV{
			{Key: "minEmployees", Value: int64(10)},
			{Key: "maxEmployees", Value: int64(2)},
		})
		assert.True(t, errors.Is(err, qb.ErrInvalidRange))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCompanies_Get(t *testing.T) {
	t.Run("includes jobs", func(t *testing.T) {
		db, mock := mockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT handle, name, description, num_employees, logo_url FROM companies WHERE handle = $1`)).
			WithArgs("c1").
			WillReturnRows(sqlmock.NewRows(companyRowColumns).AddRow("c1", "C1", "Desc1", 1, nil))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, title, salary, equity, company_handle FROM jobs WHERE "company_handle" = $1 ORDER BY id`)).
			WithArgs("c1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "salary", "equity", "company_handle"}).
				AddRow(1, "J1", 100, "0.1", "c1").
				AddRow(2, "J2", nil, nil, "c1"))

		c, err := db.Companies().Get(context.Background(), "c1")
		require.NoError(t, err)
		require.Len(t, c.Jobs, 2)
		assert.Equal(t, "J1", c.Jobs[0].Title)
		assert.True(t, c.Jobs[0].Equity.Valid)
		assert.Equal(t, "0.1", c.Jobs[0].Equity.Decimal.String())
		assert.False(t, c.Jobs[1].Equity.Valid)
		assert.Nil(t, c.Jobs[1].Salary)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := mockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM companies WHERE handle = $1`)).
			WithArgs("nope").
			WillReturnRows(sqlmock.NewRows(companyRowColumns))

		_, err := db.Companies().Get(context.Background(), "nope")
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.Equal(t, "No company: nope", err.Error())
	})
}

func TestCompanies_Update(t *testing.T) {
	t.Run("partial update", func(t *testing.T) {
		db, mock := mockDB(t)
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "companies" SET "name"=$1, "logo_url"=$2 WHERE "handle" = $3`)).
			WithArgs("New", "http://new.img", "c1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(regexp.QuoteMeta(`FROM companies WHERE handle = $1`)).
			WithArgs("c1").
			WillReturnRows(sqlmock.NewRows(companyRowColumns).AddRow("c1", "New", "Desc1", 1, "http://new.img"))

		c, err := db.Companies().Update(context.Background(), "c1", qb.KV{
			{Key: "name", Value: "New"},
			{Key: "logoUrl", Value: "http://new.img"},
		})
		require.NoError(t, err)
		assert.Equal(t, "New", c.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no data", func(t *testing.T) {
		db, mock := mockDB(t)
		_, err := db.Companies().Update(context.Background(), "c1", qb.KV{})
		assert.True(t, errors.Is(err, qb.ErrEmptyPayload))
		assert.True(t, errors.Is(err, qb.ErrValidation))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := mockDB(t)
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "companies"`)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		_, err := db.Companies().Update(context.Background(), "nope", qb.KV{{Key: "name", Value: "x"}})
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestCompanies_Remove(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "companies" WHERE "handle" = $1`)).
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "companies" WHERE "handle" = $1`)).
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, db.Companies().Remove(context.Background(), "c1"))
	err := db.Companies().Remove(context.Background(), "c1")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
