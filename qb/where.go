package qb

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

type binaryOp string

const (
	Eq    binaryOp = "="
	GT    binaryOp = ">"
	LT    binaryOp = "<"
	Like  binaryOp = "LIKE"
	ILike binaryOp = "ILIKE"
)

// Cond is a single `<column> <op> <placeholder>` comparison.
type Cond struct {
	Lhs string
	Op  binaryOp
	Rhs interface{}
}

func (c Cond) toSql(d *Dialect, offset int) (string, []interface{}) {
	op := c.Op
	if op == "" {
		op = Eq
	}
	ph := d.placeholders(offset, 1)[0]
	return fmt.Sprintf("%s %s %s", d.Quote(c.Lhs), op, ph), []interface{}{c.Rhs}
}

// FilterKeys names the logical keys that get a non-equality operator.
type FilterKeys struct {
	// Contains is matched case-insensitively against %value%.
	Contains string
	// Lower is an exclusive lower bound.
	Lower string
	// Upper is an exclusive upper bound.
	Upper string
}

var DefaultFilterKeys = FilterKeys{
	Contains: "nameLike",
	Lower:    "minEmployees",
	Upper:    "maxEmployees",
}

// Where emits one condition per pair of params, joined with " AND ". The
// Contains key is rewritten to a wildcard pattern in the returned values;
// params itself is never modified.
func (b Builder) Where(params KV, fieldMap FieldMap) (Clause, error) {
	keys := b.filterKeys()
	if err := keys.checkRange(params); err != nil {
		return Clause{}, err
	}
	d := b.dialect()
	phs := d.placeholders(b.Offset, len(params))
	conds := make([]string, 0, len(params))
	values := make([]interface{}, 0, len(params))
	for i, pair := range params {
		op, value := keys.operator(d, pair)
		conds = append(conds, fmt.Sprintf("%s %s %s", d.Quote(fieldMap.Column(pair.Key)), op, phs[i]))
		values = append(values, value)
	}
	return Clause{Fragment: strings.Join(conds, " AND "), Values: values}, nil
}

func (k FilterKeys) operator(d *Dialect, pair Pair) (binaryOp, interface{}) {
	switch pair.Key {
	case k.Lower:
		return GT, pair.Value
	case k.Upper:
		return LT, pair.Value
	case k.Contains:
		if pair.Value == nil {
			return d.CaseInsensitiveLike, nil
		}
		return d.CaseInsensitiveLike, fmt.Sprintf("%%%v%%", pair.Value)
	default:
		return Eq, pair.Value
	}
}

// checkRange rejects a lower bound above the upper bound. Bounds that cannot
// be read as numbers are not compared.
func (k FilterKeys) checkRange(params KV) error {
	lo, hasLo := params.Get(k.Lower)
	hi, hasHi := params.Get(k.Upper)
	if !hasLo || !hasHi {
		return nil
	}
	l, okL := toFloat(lo)
	h, okH := toFloat(hi)
	if okL && okH && l > h {
		return ErrInvalidRange
	}
	return nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
