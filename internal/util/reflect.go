package util

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// ValidationError describes a handler parameter whose Go type cannot accept
// the native value produced by the declared input.
type ValidationError struct {
	Field   string `json:"field"`   // Parameter that failed validation
	Value   any    `json:"value"`   // Value that was provided, if any
	Message string `json:"message"` // Human-readable error message
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// Compatible reports whether a value of type have can be passed to a
// parameter of type want, either directly or through a conversion.
func Compatible(have, want reflect.Type) bool {
	if have == nil || want == nil {
		return true
	}
	if have.AssignableTo(want) {
		return true
	}
	if isNumeric(have) && isNumeric(want) {
		return true
	}
	return have.ConvertibleTo(want) && have.Kind() == want.Kind()
}

// CoerceArg converts value into a reflect.Value of type target. A nil value
// becomes the zero value of target.
func CoerceArg(field string, value any, target reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(target), nil
	}
	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(target) {
		return rv, nil
	}
	if target.Kind() == reflect.Interface && rv.Type().Implements(target) {
		return rv, nil
	}
	if isNumeric(rv.Type()) && isNumeric(target) {
		if isInteger(target) && isFloat(rv.Type()) {
			f := rv.Float()
			if f != float64(int64(f)) {
				return reflect.Value{}, &ValidationError{
					Field:   field,
					Value:   value,
					Message: fmt.Sprintf("expected whole number for %s, got %v", target, f),
				}
			}
		}
		return rv.Convert(target), nil
	}
	if rv.Type().ConvertibleTo(target) && rv.Kind() == target.Kind() {
		return rv.Convert(target), nil
	}
	return reflect.Value{}, &ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("expected type %s, got %T", target, value),
	}
}

// FuncName returns the short name of a function value: the package path and
// method value suffix are stripped.
func FuncName(fn any) string {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return ""
	}
	f := runtime.FuncForPC(rv.Pointer())
	if f == nil {
		return ""
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, "-fm")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimLeft(name, "(*)")
	return name
}

func isNumeric(t reflect.Type) bool {
	return isInteger(t) || isFloat(t)
}

func isInteger(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func isFloat(t reflect.Type) bool {
	return t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64
}
