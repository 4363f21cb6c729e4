package testutil

import (
	"encoding/json"
	"strconv"
)

// PayloadBuilder helps construct solve request bodies with fluent chaining.
// Example:
//
//	body := NewPayload().Number("A", 3).Number("B", 4).Build()
//	legacy := NewPayload().Pointer("/Add").Number("A", 3).Build()
type PayloadBuilder struct {
	pointer *string
	values  []map[string]any
}

// NewPayload creates an empty payload builder.
func NewPayload() *PayloadBuilder { return &PayloadBuilder{values: []map[string]any{}} }

// Pointer sets the legacy "pointer" field (chainable).
func (b *PayloadBuilder) Pointer(p string) *PayloadBuilder { b.pointer = &p; return b }

// Number appends a single System.Double value (chainable).
func (b *PayloadBuilder) Number(name string, v float64) *PayloadBuilder {
	return b.Item(name, "System.Double", strconv.FormatFloat(v, 'f', -1, 64))
}

// Integer appends a single System.Int32 value (chainable).
func (b *PayloadBuilder) Integer(name string, v int) *PayloadBuilder {
	return b.Item(name, "System.Int32", strconv.Itoa(v))
}

// String appends a single System.String value, JSON-encoded inside data as hosts do (chainable).
func (b *PayloadBuilder) String(name, v string) *PayloadBuilder {
	quoted, _ := json.Marshal(v)
	return b.Item(name, "System.String", string(quoted))
}

// Boolean appends a single System.Boolean value (chainable).
func (b *PayloadBuilder) Boolean(name string, v bool) *PayloadBuilder {
	return b.Item(name, "System.Boolean", strconv.FormatBool(v))
}

// Item appends a value whose first branch holds the given data strings (chainable).
func (b *PayloadBuilder) Item(name, hostType string, data ...string) *PayloadBuilder {
	return b.Tree(name, hostType, map[string][]string{"{0}": data})
}

// Tree appends a value with explicit branches (chainable).
func (b *PayloadBuilder) Tree(name, hostType string, branches map[string][]string) *PayloadBuilder {
	tree := make(map[string]any, len(branches))
	for path, data := range branches {
		items := make([]map[string]string, 0, len(data))
		for _, d := range data {
			items = append(items, map[string]string{"type": hostType, "data": d})
		}
		tree[path] = items
	}
	b.values = append(b.values, map[string]any{"ParamName": name, "InnerTree": tree})
	return b
}

// Raw appends an arbitrary value item (chainable).
func (b *PayloadBuilder) Raw(item map[string]any) *PayloadBuilder {
	b.values = append(b.values, item)
	return b
}

// Build returns the JSON encoded payload.
func (b *PayloadBuilder) Build() []byte {
	body := map[string]any{"values": b.values}
	if b.pointer != nil {
		body["pointer"] = *b.pointer
	}
	out, err := json.Marshal(body)
	if err != nil {
		panic(err)
	}
	return out
}
