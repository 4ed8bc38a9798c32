package metadata

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"ilreverse/internal/cil"
	"ilreverse/internal/disasm"
	"ilreverse/internal/ilasm"
)

// Image is the serialized form of a module. Method bodies are stored as
// assembler listings, one instruction per line.
type Image struct {
	Name         string          `json:"name" yaml:"name" jsonschema:"title=Module name"`
	CorLib       string          `json:"corLib,omitempty" yaml:"corLib,omitempty" jsonschema:"description=Assembly primitive types come from"`
	AssemblyRefs []string        `json:"assemblyRefs,omitempty" yaml:"assemblyRefs,omitempty"`
	EntryPoint   string          `json:"entryPoint,omitempty" yaml:"entryPoint,omitempty" jsonschema:"description=Full name of the entry point method"`
	Types        []TypeImage     `json:"types" yaml:"types"`
	Resources    []ResourceImage `json:"resources,omitempty" yaml:"resources,omitempty"`
	Sections     []SectionImage  `json:"sections,omitempty" yaml:"sections,omitempty"`
}

type TypeImage struct {
	Namespace  string          `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Name       string          `json:"name" yaml:"name"`
	BaseType   string          `json:"baseType,omitempty" yaml:"baseType,omitempty"`
	Interfaces []string        `json:"interfaces,omitempty" yaml:"interfaces,omitempty"`
	Attributes []string        `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Fields     []FieldImage    `json:"fields,omitempty" yaml:"fields,omitempty"`
	Methods    []MethodImage   `json:"methods,omitempty" yaml:"methods,omitempty"`
	Properties []PropertyImage `json:"properties,omitempty" yaml:"properties,omitempty"`
	Events     []EventImage    `json:"events,omitempty" yaml:"events,omitempty"`
}

type FieldImage struct {
	Name       string   `json:"name" yaml:"name"`
	Type       string   `json:"type" yaml:"type"`
	Attributes []string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

type ParamImage struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	Type string `json:"type" yaml:"type"`
}

type MethodImage struct {
	Name       string       `json:"name" yaml:"name"`
	ReturnType string       `json:"returnType,omitempty" yaml:"returnType,omitempty"`
	Params     []ParamImage `json:"params,omitempty" yaml:"params,omitempty"`
	Attributes []string     `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Body       *BodyImage   `json:"body,omitempty" yaml:"body,omitempty"`
}

type BodyImage struct {
	MaxStack   uint16      `json:"maxStack,omitempty" yaml:"maxStack,omitempty"`
	InitLocals bool        `json:"initLocals,omitempty" yaml:"initLocals,omitempty"`
	Locals     []cil.Local `json:"locals,omitempty" yaml:"locals,omitempty"`
	Code       []string    `json:"code" yaml:"code" jsonschema:"description=One instruction per line; an IL_xxxx: prefix is optional"`
}

type PropertyImage struct {
	Name   string `json:"name" yaml:"name"`
	Type   string `json:"type" yaml:"type"`
	Getter string `json:"getter,omitempty" yaml:"getter,omitempty" jsonschema:"description=Name of the getter method in the same type"`
	Setter string `json:"setter,omitempty" yaml:"setter,omitempty"`
}

type EventImage struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

type ResourceImage struct {
	Name string `json:"name" yaml:"name"`
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty" jsonschema:"enum=Embedded,enum=Linked,enum=AssemblyLinked"`
	Data string `json:"data,omitempty" yaml:"data,omitempty" jsonschema:"description=Hex encoded contents"`
}

type SectionImage struct {
	Name string `json:"name" yaml:"name"`
	RVA  uint32 `json:"rva" yaml:"rva"`
	Data string `json:"data" yaml:"data" jsonschema:"description=Hex encoded contents"`
}

// Format is an image encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatOf picks the encoding from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return 0, fmt.Errorf("unsupported image format %q (want .json, .yaml or .yml)", filepath.Ext(path))
}

// OpenOption adjusts a decoded image before it is built.
type OpenOption func(*Image)

// WithDefaultCorLib sets the core library of images that name none.
func WithDefaultCorLib(name string) OpenOption {
	return func(img *Image) {
		if img.CorLib == "" {
			img.CorLib = name
		}
	}
}

// Open reads and builds the module at path.
func Open(path string, logger *slog.Logger, opts ...OpenOption) (*Module, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, opt := range opts {
		opt(img)
	}
	m, err := Build(img, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Path = path
	return m, nil
}

// Decode reads an image.
func Decode(r io.Reader, format Format) (*Image, error) {
	var img Image
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&img); err != nil {
			return nil, fmt.Errorf("failed to decode YAML image: %w", err)
		}
	default:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&img); err != nil {
			return nil, fmt.Errorf("failed to decode JSON image: %w", err)
		}
	}
	return &img, nil
}

// Encode writes an image.
func Encode(w io.Writer, img *Image, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(img); err != nil {
			return fmt.Errorf("failed to encode YAML image: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(img); err != nil {
			return fmt.Errorf("failed to encode JSON image: %w", err)
		}
	}
	return nil
}

// Save writes m to path, picking the encoding from the extension. The file
// is replaced only once the whole image has been encoded.
func Save(m *Module, path string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, Snapshot(m), format); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace image: %w", err)
	}
	return nil
}

// Build turns an image into a module. Declarations are added first so
// method bodies can refer to any type or member of the module.
func Build(img *Image, logger *slog.Logger) (*Module, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if img.Name == "" {
		return nil, errors.New("image has no module name")
	}
	m := NewModule(img.Name)
	if img.CorLib != "" {
		m.CorLib = img.CorLib
	}
	m.AssemblyRefs = append(m.AssemblyRefs, img.AssemblyRefs...)

	type pending struct {
		md   *MethodDef
		code []string
	}
	var bodies []pending

	for _, ti := range img.Types {
		attrs, err := ParseTypeAttributes(ti.Attributes)
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", ti.Name, err)
		}
		t := &TypeDef{
			Namespace:  ti.Namespace,
			Name:       ti.Name,
			BaseType:   cil.CanonicalTypeName(ti.BaseType),
			Attributes: attrs,
		}
		for _, in := range ti.Interfaces {
			t.Interfaces = append(t.Interfaces, cil.CanonicalTypeName(in))
		}
		if _, dup := m.FindType(t.FullName()); dup {
			return nil, fmt.Errorf("duplicate type %s", t.FullName())
		}
		for _, fi := range ti.Fields {
			fa, err := ParseFieldAttributes(fi.Attributes)
			if err != nil {
				return nil, fmt.Errorf("field %s::%s: %w", t.FullName(), fi.Name, err)
			}
			t.Fields = append(t.Fields, &FieldDef{Name: fi.Name, Type: cil.CanonicalTypeName(fi.Type), Attributes: fa})
		}
		for _, mi := range ti.Methods {
			ma, err := ParseMethodAttributes(mi.Attributes)
			if err != nil {
				return nil, fmt.Errorf("method %s::%s: %w", t.FullName(), mi.Name, err)
			}
			md := &MethodDef{Name: mi.Name, ReturnType: "System.Void", Attributes: ma}
			if mi.ReturnType != "" {
				md.ReturnType = cil.CanonicalTypeName(mi.ReturnType)
			}
			for _, p := range mi.Params {
				md.Params = append(md.Params, Param{Name: p.Name, Type: cil.CanonicalTypeName(p.Type)})
			}
			if mi.Body != nil {
				md.Body = &cil.Body{
					MaxStack:   mi.Body.MaxStack,
					InitLocals: mi.Body.InitLocals,
				}
				for _, l := range mi.Body.Locals {
					md.Body.Locals = append(md.Body.Locals, cil.Local{Name: l.Name, Type: cil.CanonicalTypeName(l.Type)})
				}
				bodies = append(bodies, pending{md, mi.Body.Code})
			}
			t.Methods = append(t.Methods, md)
		}
		for _, pi := range ti.Properties {
			p := &PropertyDef{Name: pi.Name, Type: cil.CanonicalTypeName(pi.Type)}
			p.Getter = methodNamed(t, pi.Getter)
			p.Setter = methodNamed(t, pi.Setter)
			if (pi.Getter != "" && p.Getter == nil) || (pi.Setter != "" && p.Setter == nil) {
				return nil, fmt.Errorf("property %s::%s: accessor not found", t.FullName(), pi.Name)
			}
			t.Properties = append(t.Properties, p)
		}
		for _, ei := range ti.Events {
			t.Events = append(t.Events, &EventDef{Name: ei.Name, Type: cil.CanonicalTypeName(ei.Type)})
		}
		m.AddType(t)
	}

	for _, ri := range img.Resources {
		kind, err := ParseResourceKind(ri.Kind)
		if err != nil {
			return nil, fmt.Errorf("resource %s: %w", ri.Name, err)
		}
		data, err := hex.DecodeString(ri.Data)
		if err != nil {
			return nil, fmt.Errorf("resource %s: %w", ri.Name, err)
		}
		m.AddResource(&Resource{Name: ri.Name, Kind: kind, Data: data})
	}
	for _, si := range img.Sections {
		data, err := hex.DecodeString(si.Data)
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", si.Name, err)
		}
		m.Sections = append(m.Sections, &Section{Name: si.Name, RVA: si.RVA, Data: data})
	}

	for _, b := range bodies {
		if err := m.loadBody(b.md, b.code, logger); err != nil {
			return nil, fmt.Errorf("method %s: %w", b.md.FullName(), err)
		}
	}

	if img.EntryPoint != "" {
		for _, md := range m.methods {
			if md.FullName() == img.EntryPoint {
				m.EntryPoint = md
				break
			}
		}
		if m.EntryPoint == nil {
			return nil, fmt.Errorf("entry point %q not found", img.EntryPoint)
		}
	}
	logger.Debug("module built",
		"name", m.Name,
		"types", len(m.Types),
		"methods", len(m.methods),
		"typeRefs", len(m.TypeRefs),
		"memberRefs", len(m.MemberRefs),
	)
	return m, nil
}

func methodNamed(t *TypeDef, name string) *MethodDef {
	if name == "" {
		return nil
	}
	for _, md := range t.Methods {
		if md.Name == name {
			return md
		}
	}
	return nil
}

func (m *Module) loadBody(md *MethodDef, code []string, logger *slog.Logger) error {
	lines := make([]string, len(code))
	for i, l := range code {
		lines[i] = disasm.StripLabel(l)
	}
	p := ilasm.New(
		ilasm.WithResolver(m),
		ilasm.WithMethod(md),
		ilasm.WithLogger(logger),
		ilasm.WithVerbatimOperands(),
	)
	list, err := p.ParseLines(lines)
	if err != nil {
		return err
	}
	md.Body.Instructions = list
	md.Body.UpdateOffsets(nil)
	return md.Body.Link()
}

// Snapshot converts m back to its serialized form.
func Snapshot(m *Module) *Image {
	img := &Image{
		Name:         m.Name,
		CorLib:       m.CorLib,
		AssemblyRefs: m.AssemblyRefs,
		Types:        make([]TypeImage, 0, len(m.Types)),
	}
	if m.EntryPoint != nil {
		img.EntryPoint = m.EntryPoint.FullName()
	}
	for _, t := range m.Types {
		ti := TypeImage{
			Namespace:  t.Namespace,
			Name:       t.Name,
			BaseType:   t.BaseType,
			Interfaces: t.Interfaces,
			Attributes: t.Attributes.Names(),
		}
		for _, f := range t.Fields {
			ti.Fields = append(ti.Fields, FieldImage{Name: f.Name, Type: f.Type, Attributes: f.Attributes.Names()})
		}
		for _, md := range t.Methods {
			mi := MethodImage{Name: md.Name, Attributes: md.Attributes.Names()}
			if md.ReturnType != "System.Void" {
				mi.ReturnType = md.ReturnType
			}
			for _, p := range md.Params {
				mi.Params = append(mi.Params, ParamImage(p))
			}
			if md.Body != nil {
				mi.Body = &BodyImage{
					MaxStack:   md.Body.MaxStack,
					InitLocals: md.Body.InitLocals,
					Locals:     md.Body.Locals,
					Code:       disasm.Body(md.Body).Lines(),
				}
			}
			ti.Methods = append(ti.Methods, mi)
		}
		for _, p := range t.Properties {
			pi := PropertyImage{Name: p.Name, Type: p.Type}
			if p.Getter != nil {
				pi.Getter = p.Getter.Name
			}
			if p.Setter != nil {
				pi.Setter = p.Setter.Name
			}
			ti.Properties = append(ti.Properties, pi)
		}
		for _, e := range t.Events {
			ti.Events = append(ti.Events, EventImage{Name: e.Name, Type: e.Type})
		}
		img.Types = append(img.Types, ti)
	}
	for _, r := range m.Resources {
		img.Resources = append(img.Resources, ResourceImage{Name: r.Name, Kind: r.Kind.String(), Data: hex.EncodeToString(r.Data)})
	}
	for _, s := range m.Sections {
		img.Sections = append(img.Sections, SectionImage{Name: s.Name, RVA: s.RVA, Data: hex.EncodeToString(s.Data)})
	}
	return img
}
