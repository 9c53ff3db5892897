package api

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/shopspring/decimal"

	"github.com/jobly/jobly/qb"
)

type kind int

const (
	kindString kind = iota
	kindInt
	kindBool
	kindDecimal
)

// rule constrains a single field of a request body or query string.
type rule struct {
	Kind     kind
	Required bool
	Nullable bool
	MinLen   int
	MaxLen   int
	Min      *float64
	Max      *float64
	Format   string
}

func bound(v float64) *float64 {
	return &v
}

// schema validates a flat object and coerces its values to the Go types the
// data layer expects. Unknown keys are rejected.
type schema map[string]rule

func (s schema) check(data qb.KV) (qb.KV, error) {
	var problems []string
	out := make(qb.KV, 0, len(data))
	for _, pair := range data {
		r, ok := s[pair.Key]
		if !ok {
			problems = append(problems, fmt.Sprintf("instance is not allowed to have the additional property %q", pair.Key))
			continue
		}
		v, err := r.coerce(pair.Value)
		if err != nil {
			problems = append(problems, fmt.Sprintf("instance.%s %v", pair.Key, err))
			continue
		}
		out = append(out, qb.Pair{Key: pair.Key, Value: v})
	}
	var missing []string
	for key, r := range s {
		if r.Required && !data.Has(key) {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	for _, key := range missing {
		problems = append(problems, fmt.Sprintf("instance requires property %q", key))
	}
	if len(problems) > 0 {
		return nil, qb.Invalid(strings.Join(problems, "; "))
	}
	return out, nil
}

func (r rule) coerce(v interface{}) (interface{}, error) {
	if v == nil {
		if r.Nullable {
			return nil, nil
		}
		return nil, fmt.Errorf("must not be null")
	}
	switch r.Kind {
	case kindString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("is not of a type(s) string")
		}
		return s, r.checkString(s)
	case kindInt:
		n, err := toInt(v)
		if err != nil {
			return nil, err
		}
		return n, r.checkRange(float64(n))
	case kindBool:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			parsed, err := strconv.ParseBool(b)
			if err != nil {
				return nil, fmt.Errorf("is not of a type(s) boolean")
			}
			return parsed, nil
		}
		return nil, fmt.Errorf("is not of a type(s) boolean")
	case kindDecimal:
		d, err := toDecimal(v)
		if err != nil {
			return nil, err
		}
		f, _ := d.Float64()
		return d, r.checkRange(f)
	}
	return v, nil
}

func (r rule) checkString(s string) error {
	if len(s) < r.MinLen {
		return fmt.Errorf("does not meet minimum length of %d", r.MinLen)
	}
	if r.MaxLen > 0 && len(s) > r.MaxLen {
		return fmt.Errorf("does not meet maximum length of %d", r.MaxLen)
	}
	switch r.Format {
	case "uri":
		if !govalidator.IsRequestURL(s) {
			return fmt.Errorf("does not conform to the \"uri\" format")
		}
	case "email":
		if !govalidator.IsEmail(s) {
			return fmt.Errorf("does not conform to the \"email\" format")
		}
	}
	return nil
}

func (r rule) checkRange(f float64) error {
	if r.Min != nil && f < *r.Min {
		return fmt.Errorf("must be greater than or equal to %v", *r.Min)
	}
	if r.Max != nil && f > *r.Max {
		return fmt.Errorf("must be less than or equal to %v", *r.Max)
	}
	return nil
}

func toInt(v interface{}) (int64, error) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("is not of a type(s) integer")
		}
		return i, nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("is not of a type(s) integer")
		}
		return i, nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	}
	return 0, fmt.Errorf("is not of a type(s) integer")
}

func toDecimal(v interface{}) (decimal.Decimal, error) {
	switch n := v.(type) {
	case json.Number:
		return decimalFromString(n.String())
	case string:
		return decimalFromString(n)
	case float64:
		return decimal.NewFromFloat(n), nil
	}
	return decimal.Decimal{}, fmt.Errorf("is not of a type(s) number")
}

func decimalFromString(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("is not of a type(s) number")
	}
	return d, nil
}

// bindKV fills out from a validated payload.
func bindKV(data qb.KV, out interface{}) error {
	raw, err := json.Marshal(data.Map())
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

var (
	companyNew = schema{
		"handle":       {Kind: kindString, Required: true, MinLen: 1, MaxLen: 25},
		"name":         {Kind: kindString, Required: true, MinLen: 1},
		"description":  {Kind: kindString, Required: true},
		"numEmployees": {Kind: kindInt, Nullable: true, Min: bound(0)},
		"logoUrl":      {Kind: kindString, Nullable: true, Format: "uri"},
	}
	companyUpdate = schema{
		"name":         {Kind: kindString, MinLen: 1},
		"description":  {Kind: kindString},
		"numEmployees": {Kind: kindInt, Nullable: true, Min: bound(0)},
		"logoUrl":      {Kind: kindString, Nullable: true, Format: "uri"},
	}
	companySearch = schema{
		"nameLike":     {Kind: kindString, MinLen: 1},
		"minEmployees": {Kind: kindInt, Min: bound(0)},
		"maxEmployees": {Kind: kindInt, Min: bound(0)},
	}

	jobNew = schema{
		"title":         {Kind: kindString, Required: true, MinLen: 1},
		"salary":        {Kind: kindInt, Nullable: true, Min: bound(0)},
		"equity":        {Kind: kindDecimal, Nullable: true, Min: bound(0), Max: bound(1)},
		"companyHandle": {Kind: kindString, Required: true, MinLen: 1, MaxLen: 25},
	}
	jobUpdate = schema{
		"title":  {Kind: kindString, MinLen: 1},
		"salary": {Kind: kindInt, Nullable: true, Min: bound(0)},
		"equity": {Kind: kindDecimal, Nullable: true, Min: bound(0), Max: bound(1)},
	}
	jobSearch = schema{
		"title":     {Kind: kindString, MinLen: 1},
		"minSalary": {Kind: kindInt, Min: bound(0)},
		"maxSalary": {Kind: kindInt, Min: bound(0)},
		"hasEquity": {Kind: kindBool},
	}

	userNew = schema{
		"username":  {Kind: kindString, Required: true, MinLen: 1, MaxLen: 30},
		"password":  {Kind: kindString, Required: true, MinLen: 5, MaxLen: 20},
		"firstName": {Kind: kindString, Required: true, MinLen: 1, MaxLen: 30},
		"lastName":  {Kind: kindString, Required: true, MinLen: 1, MaxLen: 30},
		"email":     {Kind: kindString, Required: true, MinLen: 6, MaxLen: 60, Format: "email"},
		"isAdmin":   {Kind: kindBool},
	}
	userRegister = schema{
		"username":  userNew["username"],
		"password":  userNew["password"],
		"firstName": userNew["firstName"],
		"lastName":  userNew["lastName"],
		"email":     userNew["email"],
	}
	userUpdate = schema{
		"password":  {Kind: kindString, MinLen: 5, MaxLen: 20},
		"firstName": {Kind: kindString, MinLen: 1, MaxLen: 30},
		"lastName":  {Kind: kindString, MinLen: 1, MaxLen: 30},
		"email":     {Kind: kindString, MinLen: 6, MaxLen: 60, Format: "email"},
	}
	userAuth = schema{
		"username": {Kind: kindString, Required: true, MinLen: 1},
		"password": {Kind: kindString, Required: true, MinLen: 1},
	}
)
