// Package config holds the dotted-key value table shared by the config
// store adapters. Keys look like "retrieval.k"; TOML files keep them as
// nested tables and Flatten/Nest convert between the two shapes.
package config

import (
	"maps"
	"strings"
	"sync"
)

// Values is a concurrency-safe table of dotted keys.
// Stores embed it to pick up the typed getters of driven.ConfigStore.
type Values struct {
	mu sync.RWMutex
	m  map[string]any
}

// NewValues returns a table holding a copy of each seed map, applied in order.
func NewValues(seed ...map[string]any) *Values {
	v := &Values{m: make(map[string]any)}
	for _, s := range seed {
		maps.Copy(v.m, s)
	}
	return v
}

// Get returns the raw value for key.
func (v *Values) Get(key string) (any, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	val, ok := v.m[key]
	return val, ok
}

// Put stores one value.
func (v *Values) Put(key string, value any) {
	v.mu.Lock()
	v.m[key] = value
	v.mu.Unlock()
}

// Replace swaps the whole table.
func (v *Values) Replace(m map[string]any) {
	if m == nil {
		m = make(map[string]any)
	}
	v.mu.Lock()
	v.m = m
	v.mu.Unlock()
}

// Snapshot returns a shallow copy of the table.
func (v *Values) Snapshot() map[string]any {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return maps.Clone(v.m)
}

func (v *Values) GetString(key string) string {
	val, _ := v.Get(key)
	s, _ := val.(string)
	return s
}

// GetInt accepts the int64 values TOML decodes as well as plain ints.
func (v *Values) GetInt(key string) int {
	val, _ := v.Get(key)
	switch n := val.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case int32:
		return int(n)
	}
	return 0
}

// GetFloat widens integers.
func (v *Values) GetFloat(key string) float64 {
	val, _ := v.Get(key)
	switch n := val.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

func (v *Values) GetBool(key string) bool {
	val, _ := v.Get(key)
	b, _ := val.(bool)
	return b
}

// GetStringSlice keeps only the string members of a decoded TOML array.
func (v *Values) GetStringSlice(key string) []string {
	val, _ := v.Get(key)
	switch list := val.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Flatten turns nested tables into dotted keys under prefix.
func Flatten(nested map[string]any, prefix string) map[string]any {
	out := make(map[string]any)
	flattenInto(out, nested, prefix)
	return out
}

func flattenInto(out, nested map[string]any, prefix string) {
	for k, val := range nested {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if table, ok := val.(map[string]any); ok {
			flattenInto(out, table, key)
			continue
		}
		out[key] = val
	}
}

// Nest is the inverse of Flatten.
func Nest(flat map[string]any) map[string]any {
	root := make(map[string]any)
	for key, val := range flat {
		path := strings.Split(key, ".")
		table := root
		for _, seg := range path[:len(path)-1] {
			next, ok := table[seg].(map[string]any)
			if !ok {
				next = make(map[string]any)
				table[seg] = next
			}
			table = next
		}
		table[path[len(path)-1]] = val
	}
	return root
}
