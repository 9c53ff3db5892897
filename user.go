package jobly

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/jobly/jobly/qb"
)

var (
	usersTable        = TableNameOf(User{})
	userColumns       = ColumnsOf(User{}, true)
	userFields        = FieldMapOf(User{})
	applicationsTable = TableNameOf(Application{})
	applicationFields = FieldMapOf(Application{})
)

type Users struct {
	db *DB
}

func scanUser(row interface{ Scan(...any) error }, extra ...any) (*User, error) {
	var u User
	dest := append([]any{&u.Username, &u.FirstName, &u.LastName, &u.Email, &u.IsAdmin}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &u, nil
}

func (us *Users) selectUser(withPassword bool) string {
	cols := strings.Join(userColumns, ", ")
	if withPassword {
		cols += ", password"
	}
	return fmt.Sprintf("SELECT %s FROM %s WHERE username = %s", cols, usersTable, us.db.ph(1))
}

// Authenticate checks username and password; any mismatch is ErrUnauthorized.
func (us *Users) Authenticate(ctx context.Context, username, password string) (*User, error) {
	var hash string
	u, err := scanUser(us.db.queryRow(ctx, us.selectUser(true), username), &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, unauthorizedf("Invalid username/password")
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, unauthorizedf("Invalid username/password")
	}
	return u, nil
}

// Register stores a new user with a hashed password.
func (us *Users) Register(ctx context.Context, nu NewUser) (*User, error) {
	_, err := scanUser(us.db.queryRow(ctx, us.selectUser(false), nu.Username))
	if err == nil {
		return nil, duplicatef("Duplicate username: %s", nu.Username)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), us.db.bcryptCost)
	if err != nil {
		return nil, err
	}
	_, err = us.db.insert(ctx, qb.Insert{
		Table:   usersTable,
		Columns: append(append([]string{}, userColumns...), "password"),
		Values:  [][]interface{}{{nu.Username, nu.FirstName, nu.LastName, nu.Email, nu.IsAdmin, string(hash)}},
	})
	if isUniqueViolation(err) {
		return nil, duplicatef("Duplicate username: %s", nu.Username)
	}
	if err != nil {
		return nil, fmt.Errorf("insert user %s: %w", nu.Username, err)
	}
	return &User{
		Username:  nu.Username,
		FirstName: nu.FirstName,
		LastName:  nu.LastName,
		Email:     nu.Email,
		IsAdmin:   nu.IsAdmin,
	}, nil
}

func (us *Users) FindAll(ctx context.Context) ([]User, error) {
	rows, err := us.db.query(ctx,
		fmt.Sprintf("SELECT %s FROM %s ORDER BY username", strings.Join(userColumns, ", "), usersTable))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Get returns the user and the ids of the jobs they applied to.
func (us *Users) Get(ctx context.Context, username string) (*User, error) {
	u, err := scanUser(us.db.queryRow(ctx, us.selectUser(false), username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFoundf("No user: %s", username)
	}
	if err != nil {
		return nil, err
	}
	rows, err := us.db.query(ctx,
		fmt.Sprintf("SELECT %s FROM %s WHERE username = %s ORDER BY %s",
			applicationFields["jobId"], applicationsTable, us.db.ph(1), applicationFields["jobId"]),
		username,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	u.Jobs = []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		u.Jobs = append(u.Jobs, id)
	}
	return u, rows.Err()
}

// Update applies a partial update. A password in data is hashed before it is
// stored; data itself is left untouched.
func (us *Users) Update(ctx context.Context, username string, data qb.KV) (*User, error) {
	if data.Has("username") {
		return nil, qb.Invalid("username cannot be updated")
	}
	set := append(qb.KV{}, data...)
	if pw, ok := set.Get("password"); ok {
		plain, _ := pw.(string)
		hash, err := bcrypt.GenerateFromPassword([]byte(plain), us.db.bcryptCost)
		if err != nil {
			return nil, err
		}
		set.Set("password", string(hash))
	}
	q, args, err := qb.Update{
		Dialect:  us.db.Dialect,
		Table:    usersTable,
		Set:      set,
		FieldMap: userFields,
		Where:    &qb.Cond{Lhs: "username", Op: qb.Eq, Rhs: username},
	}.ToSql()
	if err != nil {
		return nil, err
	}
	res, err := us.db.exec(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("update user %s: %w", username, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, notFoundf("No user: %s", username)
	}
	u, err := scanUser(us.db.queryRow(ctx, us.selectUser(false), username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFoundf("No user: %s", username)
	}
	return u, err
}

func (us *Users) Remove(ctx context.Context, username string) error {
	q, args := qb.Delete{
		Dialect: us.db.Dialect,
		From:    usersTable,
		Where:   &qb.Cond{Lhs: "username", Op: qb.Eq, Rhs: username},
	}.ToSql()
	res, err := us.db.exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("delete user %s: %w", username, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFoundf("No user: %s", username)
	}
	return nil
}

// ApplyToJob records an application of username to the job.
func (us *Users) ApplyToJob(ctx context.Context, username string, jobID int64) error {
	if _, err := us.db.Jobs().Get(ctx, jobID); err != nil {
		return err
	}
	_, err := scanUser(us.db.queryRow(ctx, us.selectUser(false), username))
	if errors.Is(err, sql.ErrNoRows) {
		return notFoundf("No username: %s", username)
	}
	if err != nil {
		return err
	}
	_, err = us.db.insert(ctx, qb.Insert{
		Table:   applicationsTable,
		Columns: ColumnsOf(Application{}, true),
		Values:  [][]interface{}{{username, jobID}},
	})
	if isUniqueViolation(err) {
		return duplicatef("Already applied to job %d", jobID)
	}
	return err
}
