// Package api exposes the jobly resources over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/jobly/jobly"
	"github.com/jobly/jobly/auth"
	"github.com/jobly/jobly/qb"
)

type CompanyStore interface {
	Create(ctx context.Context, c jobly.Company) (*jobly.Company, error)
	FindAll(ctx context.Context, filters qb.KV) ([]jobly.Company, error)
	Get(ctx context.Context, handle string) (*jobly.Company, error)
	Update(ctx context.Context, handle string, data qb.KV) (*jobly.Company, error)
	Remove(ctx context.Context, handle string) error
}

type JobStore interface {
	Create(ctx context.Context, j jobly.Job) (*jobly.Job, error)
	FindAll(ctx context.Context, filters qb.KV) ([]jobly.Job, error)
	Get(ctx context.Context, id int64) (*jobly.Job, error)
	Update(ctx context.Context, id int64, data qb.KV) (*jobly.Job, error)
	Remove(ctx context.Context, id int64) error
}

type UserStore interface {
	Authenticate(ctx context.Context, username, password string) (*jobly.User, error)
	Register(ctx context.Context, nu jobly.NewUser) (*jobly.User, error)
	FindAll(ctx context.Context) ([]jobly.User, error)
	Get(ctx context.Context, username string) (*jobly.User, error)
	Update(ctx context.Context, username string, data qb.KV) (*jobly.User, error)
	Remove(ctx context.Context, username string) error
	ApplyToJob(ctx context.Context, username string, jobID int64) error
}

// Stores groups the data access the handlers need.
type Stores struct {
	Companies CompanyStore
	Jobs      JobStore
	Users     UserStore
}

// StoresOf returns the stores backed by db.
func StoresOf(db *jobly.DB) Stores {
	return Stores{Companies: db.Companies(), Jobs: db.Jobs(), Users: db.Users()}
}

type Server struct {
	Stores
	secret []byte
	logger jobly.Logger
}

func NewServer(stores Stores, secret []byte, logger jobly.Logger) *Server {
	if logger == nil {
		logger = jobly.NopLogger()
	}
	return &Server{Stores: stores, secret: secret, logger: logger}
}

// Handler builds the router with every route mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLog)
	r.Use(middleware.Recoverer)
	r.Use(auth.Authenticate(s.secret))
	s.RegisterRoutes(r)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	return r
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/token", s.token)
		r.Post("/register", s.register)
	})

	r.Route("/companies", func(r chi.Router) {
		r.With(auth.EnsureAdmin).Post("/", s.createCompany)
		r.Get("/", s.listCompanies)
		r.Get("/{handle}", s.getCompany)
		r.With(auth.EnsureAdmin).Patch("/{handle}", s.updateCompany)
		r.With(auth.EnsureAdmin).Delete("/{handle}", s.removeCompany)
	})

	r.Route("/jobs", func(r chi.Router) {
		r.With(auth.EnsureAdmin).Post("/", s.createJob)
		r.Get("/", s.listJobs)
		r.Get("/{id}", s.getJob)
		r.With(auth.EnsureAdmin).Patch("/{id}", s.updateJob)
		r.With(auth.EnsureAdmin).Delete("/{id}", s.removeJob)
	})

	r.Route("/users", func(r chi.Router) {
		r.With(auth.EnsureAdmin).Post("/", s.createUser)
		r.With(auth.EnsureAdmin).Get("/", s.listUsers)
		r.Group(func(r chi.Router) {
			r.Use(auth.EnsureAdminOrCorrectUser("username"))
			r.Get("/{username}", s.getUser)
			r.Patch("/{username}", s.updateUser)
			r.Delete("/{username}", s.removeUser)
			r.Post("/{username}/jobs/{id}", s.applyToJob)
		})
	})
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Infof("%s %s %s %d %s", id, r.Method, r.URL.RequestURI(), ww.Status(), time.Since(start))
	})
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Status  int    `json:"status"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	var body errorBody
	body.Error.Message = msg
	body.Error.Status = status
	writeJSON(w, status, body)
}

// fail maps a domain error onto its status code.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, qb.ErrValidation), errors.Is(err, jobly.ErrDuplicate):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, jobly.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, jobly.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
