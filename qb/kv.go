package qb

// FieldMap maps logical field names to physical column names. Keys without an
// entry are used as the column name verbatim.
type FieldMap map[string]string

// Column returns the physical column for key.
func (m FieldMap) Column(key string) string {
	if col, ok := m[key]; ok && col != "" {
		return col
	}
	return key
}

type Pair struct {
	Key   string
	Value interface{}
}

// KV is an insertion-ordered set of key/value pairs. Placeholder numbering
// follows the order of the pairs, which a Go map could not guarantee.
type KV []Pair

func (kv KV) Len() int {
	return len(kv)
}

func (kv KV) index(key string) int {
	for i, p := range kv {
		if p.Key == key {
			return i
		}
	}
	return -1
}

func (kv KV) Get(key string) (interface{}, bool) {
	if i := kv.index(key); i >= 0 {
		return kv[i].Value, true
	}
	return nil, false
}

func (kv KV) Has(key string) bool {
	return kv.index(key) >= 0
}

// Set replaces the value of an existing key in place or appends a new pair.
func (kv *KV) Set(key string, value interface{}) {
	if i := kv.index(key); i >= 0 {
		(*kv)[i].Value = value
		return
	}
	*kv = append(*kv, Pair{Key: key, Value: value})
}

// Without returns a copy of kv minus the given keys.
func (kv KV) Without(keys ...string) KV {
	out := make(KV, 0, len(kv))
	for _, p := range kv {
		drop := false
		for _, k := range keys {
			if p.Key == k {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, p)
		}
	}
	return out
}

func (kv KV) Keys() []string {
	keys := make([]string, 0, len(kv))
	for _, p := range kv {
		keys = append(keys, p.Key)
	}
	return keys
}

func (kv KV) Values() []interface{} {
	values := make([]interface{}, 0, len(kv))
	for _, p := range kv {
		values = append(values, p.Value)
	}
	return values
}

// Map flattens kv into a map, losing order.
func (kv KV) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(kv))
	for _, p := range kv {
		m[p.Key] = p.Value
	}
	return m
}
