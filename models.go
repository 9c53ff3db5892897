package jobly

import "github.com/shopspring/decimal"

type Company struct {
	Handle       string  `json:"handle" jobly:"pk=true"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	NumEmployees *int    `json:"numEmployees"`
	LogoURL      *string `json:"logoUrl" jobly:"col=logo_url"`
	Jobs         []Job   `json:"jobs,omitempty" jobly:"col=_"`
}

type Job struct {
	ID            int64               `json:"id" jobly:"pk=true"`
	Title         string              `json:"title"`
	Salary        *int64              `json:"salary"`
	Equity        decimal.NullDecimal `json:"equity"`
	CompanyHandle string              `json:"companyHandle"`
}

type User struct {
	Username  string  `json:"username" jobly:"pk=true"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	IsAdmin   bool    `json:"isAdmin"`
	Jobs      []int64 `json:"jobs,omitempty" jobly:"col=_"`
}

// NewUser is the registration payload; Password is stored hashed.
type NewUser struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"isAdmin"`
}

type Application struct {
	Username string `json:"username"`
	JobID    int64  `json:"jobId" jobly:"col=job_id"`
}
