package qb

// Clause is a SQL fragment together with the arguments bound to its
// placeholders. Placeholder $i refers to Values[i-1].
type Clause struct {
	Fragment string
	Values   []interface{}
}

func (c Clause) IsEmpty() bool {
	return c.Fragment == ""
}

// Builder turns sparse key/value input into parameterized SQL fragments.
// The zero value targets PostgreSQL with DefaultFilterKeys.
//
// Offset shifts placeholder numbering so a fragment can follow arguments the
// caller has already bound; with Offset 2 the first placeholder is $3.
type Builder struct {
	Dialect *Dialect
	Filters FilterKeys
	Offset  int
}

func (b Builder) dialect() *Dialect {
	return dialectOrDefault(b.Dialect)
}

func (b Builder) filterKeys() FilterKeys {
	if b.Filters == (FilterKeys{}) {
		return DefaultFilterKeys
	}
	return b.Filters
}

// SqlForPartialUpdate builds the SET list of an UPDATE statement from data.
//
//	SqlForPartialUpdate(KV{{"numEmployees", 100}}, FieldMap{"numEmployees": "num_employees"})
//	// => `"num_employees"=$1`, [100]
func SqlForPartialUpdate(data KV, fieldMap FieldMap) (Clause, error) {
	return Builder{}.PartialUpdate(data, fieldMap)
}

// SqlForWhereQuery builds the condition list of a WHERE clause from params
// using DefaultFilterKeys.
func SqlForWhereQuery(params KV, fieldMap FieldMap) (Clause, error) {
	return Builder{}.Where(params, fieldMap)
}
