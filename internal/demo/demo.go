// Package demo holds the sample components served by `hops serve --demo`
// and the basic example.
package demo

import (
	"github.com/hupe1980/hops"
	"github.com/hupe1980/hops/component"
	"github.com/hupe1980/hops/core"
	"github.com/hupe1980/hops/param"
)

// Add returns the sum and the product of a and b.
func Add(a, b float64) (float64, float64) {
	return a + b, a * b
}

// BinaryMultiply returns a * b.
func BinaryMultiply(a, b float64) float64 {
	return a * b
}

// IntegerAdd returns a + b.
func IntegerAdd(a, b int) int {
	return a + b
}

// Handlers maps handler names usable from manifests to the demo functions.
func Handlers() map[string]any {
	return map[string]any{
		"add":         Add,
		"binmult":     BinaryMultiply,
		"integer_add": IntegerAdd,
	}
}

// Register adds the demo components to h.
func Register(h *hops.Hops) error {
	components := []struct {
		fn   any
		opts func(o *component.Options)
	}{
		{BinaryMultiply, func(o *component.Options) {
			o.URI = "/binmult"
			o.Inputs = []core.InputSpec{param.Number("A", "A", ""), param.Number("B", "B", "")}
			o.Outputs = []core.OutputSpec{param.Number("Multiply", "Multiply", "")}
		}},
		{Add, func(o *component.Options) {
			o.URI = "/add"
			o.Name = "Add"
			o.Nickname = "Add"
			o.Description = "Add numbers with Go"
			o.Inputs = []core.InputSpec{
				param.Number("A", "A", "First number"),
				param.Number("B", "B", "Second number"),
			}
			o.Outputs = []core.OutputSpec{
				param.Number("Sum", "S", "A + B"),
				param.Number("Multi", "M", "A * B"),
			}
		}},
		{IntegerAdd, func(o *component.Options) {
			o.URI = "/test.IntegerOutput"
			o.Name = "tIntegerOutput"
			o.Nickname = "tIntegerOutput"
			o.Description = "Add numbers with Go and Test Integer output."
			o.Inputs = []core.InputSpec{
				param.Integer("A", "A", "First number"),
				param.Integer("B", "B", "Second number"),
			}
			o.Outputs = []core.OutputSpec{param.Integer("Sum", "S", "A + B")}
		}},
	}

	for _, c := range components {
		if _, err := h.Component(c.fn, c.opts); err != nil {
			return err
		}
	}
	return nil
}
