// Package wire serializes component descriptions, solve results and error
// envelopes to the Hops JSON format.
//
// Domain values that know their own wire representation implement Encodable;
// the encoder defers to it instead of walking the value's structure. Anything
// else is serialized by encoding/json as its plain structural representation.
package wire

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/hupe1980/hops/core"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Encodable is implemented by values that serialize themselves. EncodeHops
// returns a value that is itself encodable (it may again be Encodable).
type Encodable interface {
	EncodeHops() (any, error)
}

// maxDepth bounds recursion through nested Encodable values.
const maxDepth = 64

// Encode serializes v, resolving Encodable values first.
func Encode(v any) ([]byte, error) {
	n, err := normalize(v, 0)
	if err != nil {
		return nil, err
	}
	return json.Marshal(n)
}

// EncodeValues serializes a successful solve payload {"values": [...]}.
func EncodeValues(values []any) ([]byte, error) {
	if values == nil {
		values = []any{}
	}
	return Encode(struct {
		Values []any `json:"values"`
	}{Values: values})
}

// ErrorEnvelope returns a new failure envelope {"values": [], "errors": [messages...]}.
func ErrorEnvelope(messages ...string) []byte {
	if messages == nil {
		messages = []string{}
	}
	b, _ := json.Marshal(struct {
		Values []any    `json:"values"`
		Errors []string `json:"errors"`
	}{Values: []any{}, Errors: messages})
	return b
}

// AppendError adds msg to the "errors" list of an existing envelope.
// An empty envelope yields a fresh one. A scalar "errors" field becomes a
// list holding the prior value followed by msg.
func AppendError(envelope []byte, msg string) ([]byte, error) {
	if len(envelope) == 0 {
		return ErrorEnvelope(msg), nil
	}
	if !gjson.ValidBytes(envelope) {
		return nil, fmt.Errorf("envelope is not valid json")
	}
	root := gjson.ParseBytes(envelope)
	if !root.IsObject() {
		return nil, fmt.Errorf("envelope is not a json object")
	}
	existing := root.Get("errors")
	switch {
	case existing.IsArray():
		return sjson.SetBytes(envelope, "errors.-1", msg)
	case existing.Exists() && existing.Type != gjson.Null:
		return sjson.SetBytes(envelope, "errors", []any{existing.Value(), msg})
	default:
		return sjson.SetBytes(envelope, "errors", []string{msg})
	}
}

// RenderResult returns the response body of a solve result. A failure is the
// message appended to its partial payload, or a fresh envelope when the
// payload is missing or unusable.
func RenderResult(r core.SolveResult) []byte {
	if r.OK() {
		if len(r.Payload) == 0 {
			return []byte(`{"values":[]}`)
		}
		return r.Payload
	}
	if len(r.Payload) > 0 {
		if out, err := AppendError(r.Payload, r.Message()); err == nil {
			return out
		}
	}
	return ErrorEnvelope(r.Message())
}

func normalize(v any, depth int) (any, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("wire: encodable nesting exceeds %d levels", maxDepth)
	}
	if v == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, nil
	}
	if e, ok := v.(Encodable); ok {
		out, err := e.EncodeHops()
		if err != nil {
			return nil, fmt.Errorf("wire: encode %T: %w", v, err)
		}
		return normalize(out, depth+1)
	}
	if _, ok := v.(json.Marshaler); ok {
		return v, nil
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return v, nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return v, nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			n, err := normalize(rv.Index(i).Interface(), depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String || rv.IsNil() {
			return v, nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			n, err := normalize(iter.Value().Interface(), depth+1)
			if err != nil {
				return nil, err
			}
			out[iter.Key().String()] = n
		}
		return out, nil
	case reflect.Struct:
		return normalizeStruct(rv, depth)
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		if rv.Elem().Kind() == reflect.Struct {
			return normalizeStruct(rv.Elem(), depth)
		}
		return v, nil
	default:
		return v, nil
	}
}

// normalizeStruct only rewrites a struct when one of its exported fields holds
// an Encodable somewhere below it. Plain structs are left to encoding/json so
// their tags apply unchanged.
func normalizeStruct(rv reflect.Value, depth int) (any, error) {
	if !containsEncodable(rv, 0) {
		return rv.Interface(), nil
	}
	t := rv.Type()
	out := make(map[string]any, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, omitEmpty, skip := jsonFieldName(f)
		if skip {
			continue
		}
		fv := rv.Field(i)
		if omitEmpty && fv.IsZero() {
			continue
		}
		n, err := normalize(fv.Interface(), depth+1)
		if err != nil {
			return nil, err
		}
		out[name] = n
	}
	return out, nil
}

func containsEncodable(rv reflect.Value, depth int) bool {
	if depth > maxDepth || !rv.IsValid() {
		return false
	}
	if rv.CanInterface() {
		if _, ok := rv.Interface().(Encodable); ok {
			return true
		}
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return false
		}
		return containsEncodable(rv.Elem(), depth+1)
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if containsEncodable(rv.Index(i), depth+1) {
				return true
			}
		}
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			if containsEncodable(iter.Value(), depth+1) {
				return true
			}
		}
	case reflect.Struct:
		for i := 0; i < rv.NumField(); i++ {
			if rv.Type().Field(i).IsExported() && containsEncodable(rv.Field(i), depth+1) {
				return true
			}
		}
	}
	return false
}

func jsonFieldName(f reflect.StructField) (name string, omitEmpty, skip bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	name = f.Name
	parts := strings.Split(tag, ",")
	if parts[0] != "" {
		name = parts[0]
	}
	for _, p := range parts[1:] {
		if p == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}
