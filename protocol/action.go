package protocol

import (
	"sort"
	"strings"
)

// Fields is the header set of an outgoing action request. Repeated values
// under one key become repeated header lines in the order they were added.
type Fields map[string][]string

// Set replaces the values stored under key.
func (f Fields) Set(key, value string) {
	f[key] = []string{value}
}

// Add appends a value under key.
func (f Fields) Add(key, value string) {
	f[key] = append(f[key], value)
}

// Get returns the first value stored under key, or "".
func (f Fields) Get(key string) string {
	if vs := f[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// EncodeAction serializes a request: one "Key: Value" line per field value,
// terminated by a blank line. The Action header leads; remaining keys are
// emitted in sorted order so the wire form is deterministic.
func EncodeAction(f Fields) []byte {
	keys := make([]string, 0, len(f))
	for key := range f {
		if key == "Action" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if _, ok := f["Action"]; ok {
		keys = append([]string{"Action"}, keys...)
	}

	var b strings.Builder
	for _, key := range keys {
		for _, value := range f[key] {
			b.WriteString(key)
			b.WriteString(": ")
			b.WriteString(value)
			b.WriteString(EOL)
		}
	}
	b.WriteString(EOL)
	return []byte(b.String())
}
