package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jobly/jobly"
	"github.com/jobly/jobly/auth"
	"github.com/jobly/jobly/qb"
)

// body decodes and validates the JSON object of r against s.
func body(r *http.Request, s schema) (qb.KV, error) {
	data, err := qb.DecodeKV(r.Body)
	if err != nil {
		return nil, err
	}
	return s.check(data)
}

// filters validates the query string of r against s.
func filters(r *http.Request, s schema) (qb.KV, error) {
	data, err := qb.ParseQueryKV(r.URL.RawQuery)
	if err != nil {
		return nil, err
	}
	return s.check(data)
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, qb.Invalid("id must be an integer")
	}
	return id, nil
}

func (s *Server) token(w http.ResponseWriter, r *http.Request) {
	data, err := body(r, userAuth)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := bindKV(data, &creds); err != nil {
		s.fail(w, r, err)
		return
	}
	u, err := s.Users.Authenticate(r.Context(), creds.Username, creds.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.issueToken(w, r, http.StatusOK, u, false)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	s.newUser(w, r, userRegister, false)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	s.newUser(w, r, userNew, true)
}

func (s *Server) newUser(w http.ResponseWriter, r *http.Request, sc schema, withUser bool) {
	data, err := body(r, sc)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var nu jobly.NewUser
	if err := bindKV(data, &nu); err != nil {
		s.fail(w, r, err)
		return
	}
	u, err := s.Users.Register(r.Context(), nu)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.issueToken(w, r, http.StatusCreated, u, withUser)
}

func (s *Server) issueToken(w http.ResponseWriter, r *http.Request, status int, u *jobly.User, withUser bool) {
	token, err := auth.CreateToken(s.secret, u.Username, u.IsAdmin)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if withUser {
		writeJSON(w, status, map[string]interface{}{"user": u, "token": token})
		return
	}
	writeJSON(w, status, map[string]string{"token": token})
}

func (s *Server) createCompany(w http.ResponseWriter, r *http.Request) {
	data, err := body(r, companyNew)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var c jobly.Company
	if err := bindKV(data, &c); err != nil {
		s.fail(w, r, err)
		return
	}
	created, err := s.Companies.Create(r.Context(), c)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"company": created})
}

func (s *Server) listCompanies(w http.ResponseWriter, r *http.Request) {
	q, err := filters(r, companySearch)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	companies, err := s.Companies.FindAll(r.Context(), q)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"companies": companies})
}

func (s *Server) getCompany(w http.ResponseWriter, r *http.Request) {
	c, err := s.Companies.Get(r.Context(), chi.URLParam(r, "handle"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"company": c})
}

func (s *Server) updateCompany(w http.ResponseWriter, r *http.Request) {
	data, err := body(r, companyUpdate)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.Companies.Update(r.Context(), chi.URLParam(r, "handle"), data)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"company": c})
}

func (s *Server) removeCompany(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")
	if err := s.Companies.Remove(r.Context(), handle); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": handle})
}

func (s *Server) createJob(w http.ResponseWriter, r *http.Request) {
	data, err := body(r, jobNew)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var j jobly.Job
	if err := bindKV(data, &j); err != nil {
		s.fail(w, r, err)
		return
	}
	created, err := s.Jobs.Create(r.Context(), j)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"job": created})
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	q, err := filters(r, jobSearch)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	jobs, err := s.Jobs.FindAll(r.Context(), q)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": jobs})
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	j, err := s.Jobs.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"job": j})
}

func (s *Server) updateJob(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	data, err := body(r, jobUpdate)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	j, err := s.Jobs.Update(r.Context(), id, data)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"job": j})
}

func (s *Server) removeJob(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.Jobs.Remove(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": strconv.FormatInt(id, 10)})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.Users.FindAll(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.Users.Get(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": u})
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	data, err := body(r, userUpdate)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	u, err := s.Users.Update(r.Context(), chi.URLParam(r, "username"), data)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": u})
}

func (s *Server) removeUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := s.Users.Remove(r.Context(), username); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": username})
}

func (s *Server) applyToJob(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.Users.ApplyToJob(r.Context(), chi.URLParam(r, "username"), id); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"applied": id})
}
