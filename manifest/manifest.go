// Package manifest declares Hops components in HCL and binds them to Go
// handlers registered by name.
//
// A manifest looks like this:
//
//	component "Add" {
//	  uri         = "/add"
//	  description = "Add numbers"
//	  handler     = "add"
//
//	  input "A" {
//	    type    = "Number"
//	    default = 0
//	  }
//	  input "B" {
//	    type = "Number"
//	  }
//	  output "Sum" {
//	    type = "Number"
//	  }
//	}
//
// Declarations are checked against the handler when they are built: the
// input count must equal the handler's arity and every input type must be
// passable to its parameter.
package manifest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/hupe1980/hops/component"
	"github.com/hupe1980/hops/core"
	"github.com/hupe1980/hops/param"
)

// Extension is the file extension of manifest files inside a directory.
const Extension = ".hcl"

// File is the top-level structure of a manifest file.
type File struct {
	Components []*ComponentBlock `hcl:"component,block"`
}

// ComponentBlock declares one component.
type ComponentBlock struct {
	Name        string        `hcl:"name,label"`
	Handler     string        `hcl:"handler"`
	URI         string        `hcl:"uri,optional"`
	Nickname    string        `hcl:"nickname,optional"`
	Description string        `hcl:"description,optional"`
	Category    string        `hcl:"category,optional"`
	Subcategory string        `hcl:"subcategory,optional"`
	Icon        string        `hcl:"icon,optional"`
	Inputs      []*ParamBlock `hcl:"input,block"`
	Outputs     []*ParamBlock `hcl:"output,block"`

	// Source is the file the block was read from.
	Source string
}

// ParamBlock declares one input or output.
type ParamBlock struct {
	Name        string    `hcl:"name,label"`
	Type        string    `hcl:"type"`
	Nickname    string    `hcl:"nickname,optional"`
	Description string    `hcl:"description,optional"`
	Access      string    `hcl:"access,optional"`
	Default     cty.Value `hcl:"default,optional"`
	Optional    bool      `hcl:"optional,optional"`
}

// Manifest is the merged content of one or more manifest files.
type Manifest struct {
	Components []*ComponentBlock
}

// Parse decodes manifest source. filename is used in diagnostics only.
func Parse(src []byte, filename string) (*Manifest, error) {
	return parse(hclparse.NewParser(), filename, func(p *hclparse.Parser) (*hcl.File, hcl.Diagnostics) {
		return p.ParseHCL(src, filename)
	})
}

// Load reads manifest files. A directory contributes every *.hcl file below
// it in lexical order.
func Load(paths ...string) (*Manifest, error) {
	files, err := expand(paths)
	if err != nil {
		return nil, err
	}

	parser := hclparse.NewParser()
	merged := &Manifest{}
	for _, path := range files {
		m, err := parse(parser, path, func(p *hclparse.Parser) (*hcl.File, hcl.Diagnostics) {
			return p.ParseHCLFile(path)
		})
		if err != nil {
			return nil, err
		}
		merged.Components = append(merged.Components, m.Components...)
	}
	return merged, nil
}

func parse(parser *hclparse.Parser, filename string, read func(p *hclparse.Parser) (*hcl.File, hcl.Diagnostics)) (*Manifest, error) {
	hclFile, diags := read(parser)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var decoded File
	diags = gohcl.DecodeBody(hclFile.Body, nil, &decoded)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	for _, c := range decoded.Components {
		c.Source = filename
	}
	return &Manifest{Components: decoded.Components}, nil
}

func expand(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("manifest %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(path), Extension) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("manifest %s: %w", p, err)
		}
	}
	return files, nil
}

// Build creates a definition for every declared component. handlers maps
// the handler names used in the manifest to Go functions. optFns are
// applied before the manifest's own attributes, so they supply defaults
// such as the category or the resource directory.
func (m *Manifest) Build(handlers map[string]any, optFns ...func(o *component.Options)) ([]*core.Definition, error) {
	defs := make([]*core.Definition, 0, len(m.Components))
	for _, c := range m.Components {
		def, err := c.Build(handlers, optFns...)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Build creates the definition declared by c.
func (c *ComponentBlock) Build(handlers map[string]any, optFns ...func(o *component.Options)) (*core.Definition, error) {
	fn, ok := handlers[c.Handler]
	if !ok {
		return nil, core.NewError(core.KindConfiguration, c.Name, "%s: handler %q is not registered", c.Source, c.Handler)
	}

	inputs := make([]core.InputSpec, 0, len(c.Inputs))
	for _, b := range c.Inputs {
		p, err := b.primitive()
		if err != nil {
			return nil, c.configErr(err)
		}
		var in core.InputSpec = p
		if !b.Default.IsNull() {
			v, err := p.CoerceDefault(b.Default)
			if err != nil {
				return nil, c.configErr(err)
			}
			in = p.WithDefault(v)
		}
		inputs = append(inputs, in)
	}

	outputs := make([]core.OutputSpec, 0, len(c.Outputs))
	for _, b := range c.Outputs {
		p, err := b.primitive()
		if err != nil {
			return nil, c.configErr(err)
		}
		outputs = append(outputs, p)
	}

	all := make([]func(o *component.Options), 0, len(optFns)+1)
	all = append(all, optFns...)
	return component.Build(fn, append(all, func(o *component.Options) {
		o.Name = c.Name
		o.Inputs = inputs
		o.Outputs = outputs
		setIf(&o.URI, c.URI)
		setIf(&o.Nickname, c.Nickname)
		setIf(&o.Description, c.Description)
		setIf(&o.Category, c.Category)
		setIf(&o.Subcategory, c.Subcategory)
		setIf(&o.Icon, c.Icon)
	})...)
}

func (b *ParamBlock) primitive() (*param.Primitive, error) {
	kind, ok := param.LookupKind(b.Type)
	if !ok {
		return nil, fmt.Errorf("parameter %s: unknown type %q", b.Name, b.Type)
	}
	access := core.AccessItem
	if b.Access != "" {
		access = core.Access(strings.ToLower(b.Access))
		if !access.Valid() {
			return nil, fmt.Errorf("parameter %s: unknown access %q", b.Name, b.Access)
		}
	}
	opts := []func(o *param.Options){param.WithAccess(access)}
	if b.Optional {
		opts = append(opts, param.Optional())
	}
	return param.New(kind, b.Name, b.Nickname, b.Description, opts...), nil
}

func (c *ComponentBlock) configErr(err error) error {
	return core.WrapError(core.KindConfiguration, c.Name, err, fmt.Sprintf("%s: component %s: %v", c.Source, c.Name, err))
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
