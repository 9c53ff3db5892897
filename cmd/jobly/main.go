// Command jobly runs the jobly API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jobly/jobly"
	"github.com/jobly/jobly/api"
	"github.com/jobly/jobly/config"
)

const usage = `usage: jobly <command> [flags]

commands:
  serve    start the HTTP server
  migrate  create the database tables
  schema   print the model field mappings
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "serve":
		err = serve(os.Args[2:])
	case "migrate":
		err = migrate(os.Args[2:])
	case "schema":
		jobly.Schematic(os.Stdout, jobly.Company{}, jobly.Job{}, jobly.User{}, jobly.Application{})
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "jobly:", err)
		os.Exit(1)
	}
}

func setup(name string, args []string) (config.Config, jobly.Logger, *jobly.DB, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	path := fs.String("config", "", "path to a YAML config file")
	fs.Parse(args)

	conf, err := config.Load(*path)
	if err != nil {
		return conf, nil, nil, err
	}
	level := jobly.LogLevelDev
	if conf.IsProduction() {
		level = jobly.LogLevelProd
	}
	logger, err := jobly.NewLogger(level)
	if err != nil {
		return conf, nil, nil, err
	}
	db, err := jobly.Open(jobly.ConnectionConfig{
		Name:             "jobly",
		Driver:           conf.Driver,
		ConnectionString: conf.DatabaseURL,
		Logger:           logger,
		BcryptCost:       conf.BcryptCost,
	})
	if err != nil {
		return conf, nil, nil, err
	}
	return conf, logger, db, nil
}

func migrate(args []string) error {
	_, logger, db, err := setup("migrate", args)
	if err != nil {
		return err
	}
	defer jobly.Sync(logger)
	defer db.Close()
	return db.CreateTables(context.Background())
}

func serve(args []string) error {
	conf, logger, db, err := setup("serve", args)
	if err != nil {
		return err
	}
	defer jobly.Sync(logger)
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}

	srv := &http.Server{
		Addr:              conf.Addr(),
		Handler:           api.NewServer(api.StoresOf(db), []byte(conf.SecretKey), logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("Started on http://localhost%s", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Infof("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
