package jobly

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/jobly/jobly/qb"

	//Drivers
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const defaultBcryptCost = 12

type ConnectionConfig struct {
	Name             string
	Driver           string
	ConnectionString string
	// DB and Dialect, when both set, are used instead of opening a new pool.
	DB         *sql.DB
	Dialect    *qb.Dialect
	Logger     Logger
	BcryptCost int
}

// DB is the data-access entry point shared by all models.
type DB struct {
	Name       string
	Dialect    *qb.Dialect
	Connection *sql.DB
	logger     Logger
	bcryptCost int
}

func Open(conf ConnectionConfig) (*DB, error) {
	var dialect *qb.Dialect
	var db *sql.DB
	var err error
	if conf.DB != nil && conf.Dialect != nil {
		dialect = conf.Dialect
		db = conf.DB
	} else {
		dialect, err = qb.DialectFor(conf.Driver)
		if err != nil {
			return nil, err
		}
		dsn, err := dsnFor(conf.Driver, conf.ConnectionString)
		if err != nil {
			return nil, err
		}
		db, err = sql.Open(conf.Driver, dsn)
		if err != nil {
			return nil, fmt.Errorf("open %s connection: %w", conf.Driver, err)
		}
	}
	logger := conf.Logger
	if logger == nil {
		logger = NopLogger()
	}
	cost := conf.BcryptCost
	if cost == 0 {
		cost = defaultBcryptCost
	}
	return &DB{
		Name:       conf.Name,
		Dialect:    dialect,
		Connection: db,
		logger:     logger,
		bcryptCost: cost,
	}, nil
}

// dsnFor adjusts a connection string so every driver behaves the same way:
// sqlite3 enforces foreign keys and mysql reports matched rather than changed
// rows from UPDATE.
func dsnFor(driver, dsn string) (string, error) {
	switch driver {
	case "sqlite3":
		if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
			return dsn, nil
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		return dsn + sep + "_foreign_keys=1", nil
	case "mysql":
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return "", fmt.Errorf("parse mysql dsn: %w", err)
		}
		cfg.ClientFoundRows = true
		return cfg.FormatDSN(), nil
	}
	return dsn, nil
}

func (d *DB) Ping(ctx context.Context) error {
	return d.Connection.PingContext(ctx)
}

func (d *DB) Close() error {
	return d.Connection.Close()
}

func (d *DB) Companies() *Companies {
	return &Companies{db: d}
}

func (d *DB) Jobs() *Jobs {
	return &Jobs{db: d}
}

func (d *DB) Users() *Users {
	return &Users{db: d}
}

func (d *DB) ph(n int) string {
	return d.Dialect.Placeholder(n)
}

func (d *DB) builder(filters qb.FilterKeys) qb.Builder {
	return qb.Builder{Dialect: d.Dialect, Filters: filters}
}

func (d *DB) exec(ctx context.Context, q string, args ...any) (sql.Result, error) {
	d.logger.Debugf("exec %s %v", q, args)
	return d.Connection.ExecContext(ctx, q, args...)
}

func (d *DB) query(ctx context.Context, q string, args ...any) (*sql.Rows, error) {
	d.logger.Debugf("query %s %v", q, args)
	return d.Connection.QueryContext(ctx, q, args...)
}

func (d *DB) queryRow(ctx context.Context, q string, args ...any) *sql.Row {
	d.logger.Debugf("query row %s %v", q, args)
	return d.Connection.QueryRowContext(ctx, q, args...)
}

// insert runs ins and returns the generated key when one is requested.
func (d *DB) insert(ctx context.Context, ins qb.Insert) (int64, error) {
	ins.Dialect = d.Dialect
	q, args, err := ins.ToSql()
	if err != nil {
		return 0, err
	}
	if len(ins.Returning) > 0 && !d.Dialect.LastInsertID {
		var id int64
		err = d.queryRow(ctx, q, args...).Scan(&id)
		return id, err
	}
	res, err := d.exec(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	if len(ins.Returning) == 0 {
		return 0, nil
	}
	return res.LastInsertId()
}
