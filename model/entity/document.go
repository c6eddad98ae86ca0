package entity

import (
	"encoding/json"
	"fmt"
)

// StringList decodes either a JSON string or an array of strings. Older registry
// revisions store dApp language as a bare string.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*l = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return fmt.Errorf("string list: %w", err)
	}
	*l = list
	return nil
}

// Contains reports whether v is in the list.
func (l StringList) Contains(v string) bool {
	for _, s := range l {
		if s == v {
			return true
		}
	}
	return false
}

// Extras keeps document fields this service does not model, so a read-modify-write
// cycle never drops data that other tools put into the canonical files.
type Extras map[string]json.RawMessage

// splitExtras decodes b into known (a pointer to an alias type) and returns the
// leftover keys not present in knownKeys.
func splitExtras(b []byte, known any, knownKeys map[string]struct{}) (Extras, error) {
	if err := json.Unmarshal(b, known); err != nil {
		return nil, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, err
	}
	var extras Extras
	for k, v := range all {
		if _, ok := knownKeys[k]; ok {
			continue
		}
		if extras == nil {
			extras = make(Extras)
		}
		extras[k] = v
	}
	return extras, nil
}

// joinExtras marshals known and merges extras into the resulting object.
// Modelled fields always win over extras with the same key.
func joinExtras(known any, extras Extras) ([]byte, error) {
	b, err := json.Marshal(known)
	if err != nil || len(extras) == 0 {
		return b, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, err
	}
	for k, v := range extras {
		if _, ok := all[k]; !ok {
			all[k] = v
		}
	}
	return json.Marshal(all)
}

func keySet(keys ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		m[k] = struct{}{}
	}
	return m
}

// Clone deep-copies v through its JSON form. Every document type here round-trips
// losslessly, which also makes the copy independent of the source's slices and maps.
func Clone[T any](v T) (T, error) {
	var out T
	b, err := json.Marshal(v)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(b, &out)
	return out, err
}

// withKeywords adds non-empty key/value string pairs to the JSON object b.
func withKeywords(b []byte, kv ...string) ([]byte, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "" {
			continue
		}
		raw, err := json.Marshal(kv[i+1])
		if err != nil {
			return nil, err
		}
		m[kv[i]] = raw
	}
	return json.Marshal(m)
}
