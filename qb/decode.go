package qb

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// DecodeKV reads a flat JSON object from r keeping the order of its keys.
// Numbers are kept as json.Number. An empty body decodes to an empty KV.
func DecodeKV(r io.Reader) (KV, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return KV{}, nil
	}
	if err != nil {
		return nil, Invalid(fmt.Sprintf("malformed JSON body: %v", err))
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, Invalid("request body must be a JSON object")
	}

	kv := KV{}
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return nil, Invalid(fmt.Sprintf("malformed JSON body: %v", err))
		}
		key, _ := tok.(string)
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return nil, Invalid(fmt.Sprintf("malformed value for %q: %v", key, err))
		}
		switch value.(type) {
		case map[string]interface{}, []interface{}:
			return nil, Invalid(fmt.Sprintf("field %q must be a scalar", key))
		}
		kv.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, Invalid(fmt.Sprintf("malformed JSON body: %v", err))
	}
	return kv, nil
}

// ParseQueryKV parses a raw URL query string keeping the order in which keys
// first appear. A repeated key keeps its first position and its last value.
func ParseQueryKV(rawQuery string) (KV, error) {
	kv := KV{}
	for _, part := range strings.Split(rawQuery, "&") {
		if part == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(part, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, Invalid(fmt.Sprintf("malformed query key %q", rawKey))
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, Invalid(fmt.Sprintf("malformed query value for %q", key))
		}
		kv.Set(key, value)
	}
	return kv, nil
}
