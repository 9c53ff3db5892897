package qb

import "fmt"

type Delete struct {
	Dialect *Dialect
	From    string
	Where   *Cond
}

func (d Delete) ToSql() (string, []interface{}) {
	dialect := dialectOrDefault(d.Dialect)
	base := fmt.Sprintf("DELETE FROM %s", dialect.Quote(d.From))
	var args []interface{}
	if d.Where != nil {
		where, whereArgs := d.Where.toSql(dialect, 0)
		base += " WHERE " + where
		args = append(args, whereArgs...)
	}
	return base, args
}
