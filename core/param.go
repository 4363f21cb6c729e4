package core

import (
	"encoding/json"
	"reflect"
)

// Access describes how many values a parameter carries on the wire.
type Access string

const (
	// AccessItem binds the first value of the first branch.
	AccessItem Access = "item"
	// AccessList binds every value of the first branch.
	AccessList Access = "list"
	// AccessTree binds the whole data tree keyed by branch path.
	AccessTree Access = "tree"
)

// Valid reports whether a is one of the known access modes.
func (a Access) Valid() bool {
	switch a {
	case AccessItem, AccessList, AccessTree:
		return true
	}
	return false
}

// ParamDesc is the wire description of a declared input or output.
type ParamDesc struct {
	Name        string `json:"name"`
	Nickname    string `json:"nickname"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Access      Access `json:"access,omitempty"`
	Default     any    `json:"default"`
	Optional    bool   `json:"optional"`
}

// InputSpec is the contract a declared component input fulfils: converting
// one raw solve-request item (the object carrying "ParamName") into a native
// call argument.
type InputSpec interface {
	Name() string
	Optional() bool
	Default() any
	// WithDefault returns a copy of the input whose default is v.
	WithDefault(v any) InputSpec
	// FromInput converts a raw item. It fails with a KindMarshal *Error on a
	// malformed or type-mismatched value.
	FromInput(raw json.RawMessage) (any, error)
	Describe() ParamDesc
}

// OutputSpec mirrors InputSpec for results.
type OutputSpec interface {
	Name() string
	// ToOutput converts a native handler result into its wire value.
	ToOutput(v any) (any, error)
	Describe() ParamDesc
}

// Typed is implemented by specs that know the Go type their native value
// has. The component builder uses it to check handler parameters at
// registration time.
type Typed interface {
	GoType() reflect.Type
}
