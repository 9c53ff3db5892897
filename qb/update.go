package qb

import (
	"fmt"
	"strings"
)

// PartialUpdate emits `"<column>"=<placeholder>` for every pair of data in
// order, joined with ", ". It fails with ErrEmptyPayload when data is empty.
func (b Builder) PartialUpdate(data KV, fieldMap FieldMap) (Clause, error) {
	if len(data) == 0 {
		return Clause{}, ErrEmptyPayload
	}
	d := b.dialect()
	phs := d.placeholders(b.Offset, len(data))
	sets := make([]string, 0, len(data))
	for i, pair := range data {
		sets = append(sets, fmt.Sprintf("%s=%s", d.Quote(fieldMap.Column(pair.Key)), phs[i]))
	}
	return Clause{Fragment: strings.Join(sets, ", "), Values: data.Values()}, nil
}

// Update is a complete UPDATE statement whose SET list comes from a partial
// payload.
type Update struct {
	Dialect  *Dialect
	Table    string
	Set      KV
	FieldMap FieldMap
	Where    *Cond
}

func (u Update) ToSql() (string, []interface{}, error) {
	d := dialectOrDefault(u.Dialect)
	set, err := Builder{Dialect: d}.PartialUpdate(u.Set, u.FieldMap)
	if err != nil {
		return "", nil, err
	}
	base := fmt.Sprintf("UPDATE %s SET %s", d.Quote(u.Table), set.Fragment)
	args := set.Values
	if u.Where != nil {
		where, whereArgs := u.Where.toSql(d, len(args))
		base += " WHERE " + where
		args = append(args, whereArgs...)
	}
	return base, args, nil
}

func quoteAll(d *Dialect, cols []string) string {
	quoted := make([]string, 0, len(cols))
	for _, col := range cols {
		quoted = append(quoted, d.Quote(col))
	}
	return strings.Join(quoted, ", ")
}
