package qb

import (
	"fmt"
	"strings"
)

type Insert struct {
	Dialect *Dialect
	Table   string
	Columns []string
	Values  [][]interface{}
	// Returning is ignored by dialects that report ids through LastInsertId.
	Returning []string
}

func (i Insert) flatValues() []interface{} {
	var values []interface{}
	for _, row := range i.Values {
		values = append(values, row...)
	}
	return values
}

func (i Insert) getValuesStr(d *Dialect) string {
	phs := d.PlaceHolderGenerator(len(i.Values) * len(i.Columns))

	var output []string
	for _, valueRow := range i.Values {
		output = append(output, fmt.Sprintf("(%s)", strings.Join(phs[:len(valueRow)], ", ")))
		phs = phs[len(valueRow):]
	}
	return strings.Join(output, ", ")
}

func (i Insert) ToSql() (string, []interface{}, error) {
	if len(i.Values) == 0 {
		return "", nil, fmt.Errorf("insert into %s: no rows given", i.Table)
	}
	for _, row := range i.Values {
		if len(row) != len(i.Columns) {
			return "", nil, fmt.Errorf("insert into %s: %d columns but %d values", i.Table, len(i.Columns), len(row))
		}
	}
	d := dialectOrDefault(i.Dialect)
	base := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		d.Quote(i.Table),
		quoteAll(d, i.Columns),
		i.getValuesStr(d),
	)
	if len(i.Returning) > 0 && !d.LastInsertID {
		base += " RETURNING " + quoteAll(d, i.Returning)
	}
	return base, i.flatValues(), nil
}
