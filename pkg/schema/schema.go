// Package schema loads pystructs message layouts from YAML files.
//
// A schema declares enums and structs in dependency order; a type may only
// refer to names declared above it:
//
//	root: Message
//	enums:
//	  - name: QType
//	    type: u16
//	    values: {A: 1, AAAA: 28}
//	structs:
//	  - name: Question
//	    fields:
//	      - {name: name, type: domain}
//	      - {name: qtype, type: QType}
//	  - name: Message
//	    fields:
//	      - {name: id, type: u16}
//	      - {name: flags, type: u16, default: 0}
//	      - {name: questions, type: "list[u16,Question]"}
package schema

import (
	"bytes"
	"os"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/imgurbot12/pystructs"
)

// File is the YAML document layout.
type File struct {
	Root    string       `yaml:"root"`
	Enums   []EnumDecl   `yaml:"enums"`
	Structs []StructDecl `yaml:"structs"`
}

type EnumDecl struct {
	Name   string           `yaml:"name"`
	Type   string           `yaml:"type"`
	Values map[string]int64 `yaml:"values"`
}

type StructDecl struct {
	Name   string      `yaml:"name"`
	Fields []FieldDecl `yaml:"fields"`
}

type FieldDecl struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Default  any    `yaml:"default"`
	Optional bool   `yaml:"optional"`
}

// Schema is a set of named codecs built from a File.
type Schema struct {
	root    string
	codecs  map[string]pystructs.Codec
	structs []string
}

// Load reads and parses the schema file at path.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read schema")
	}
	s, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "schema %s", path)
	}
	return s, nil
}

// Parse builds a Schema from YAML. Unknown keys are rejected.
func Parse(data []byte) (*Schema, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Wrap(err, "parse schema")
	}
	return Build(f)
}

// Build turns a decoded File into a Schema.
func Build(f File) (*Schema, error) {
	s := &Schema{root: f.Root, codecs: make(map[string]pystructs.Codec)}
	for _, e := range f.Enums {
		if err := s.declare(e.Name); err != nil {
			return nil, err
		}
		inner, err := pystructs.ParseCodec(e.Type, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "enum %s", e.Name)
		}
		hint, ok := inner.(pystructs.IntegerCodec)
		if !ok {
			return nil, errors.Errorf("enum %s: %s is not an integer type", e.Name, e.Type)
		}
		s.codecs[e.Name] = pystructs.Enum(e.Name, hint, e.Values)
	}
	for _, decl := range f.Structs {
		if err := s.declare(decl.Name); err != nil {
			return nil, err
		}
		st, err := s.buildStruct(decl)
		if err != nil {
			return nil, err
		}
		s.codecs[decl.Name] = st
		s.structs = append(s.structs, decl.Name)
	}
	if s.root != "" {
		if _, err := s.Struct(s.root); err != nil {
			return nil, errors.Wrap(err, "root")
		}
	}
	return s, nil
}

func (s *Schema) declare(name string) error {
	if name == "" {
		return errors.New("declaration without a name")
	}
	if _, dup := s.codecs[name]; dup {
		return errors.Errorf("%s declared twice", name)
	}
	return nil
}

func (s *Schema) buildStruct(decl StructDecl) (*pystructs.Struct, error) {
	if len(decl.Fields) == 0 {
		return nil, errors.Errorf("struct %s has no fields", decl.Name)
	}
	seen := make(map[string]bool, len(decl.Fields))
	fields := make([]pystructs.Field, 0, len(decl.Fields))
	for i, fd := range decl.Fields {
		switch {
		case fd.Name == "":
			return nil, errors.Errorf("struct %s: field %d has no name", decl.Name, i)
		case seen[fd.Name]:
			return nil, errors.Errorf("struct %s: field %s declared twice", decl.Name, fd.Name)
		case fd.Type == "":
			return nil, errors.Errorf("struct %s: field %s has no type", decl.Name, fd.Name)
		}
		seen[fd.Name] = true
		codec, err := pystructs.ParseCodec(fd.Type, s.Resolve)
		if err != nil {
			return nil, errors.Wrapf(err, "struct %s: field %s", decl.Name, fd.Name)
		}
		if greedy(codec) && i != len(decl.Fields)-1 {
			return nil, errors.Errorf("struct %s: greedy field %s must be last", decl.Name, fd.Name)
		}
		fields = append(fields, pystructs.Field{
			Name:     fd.Name,
			Codec:    codec,
			Default:  fd.Default,
			Optional: fd.Optional,
		})
	}
	return pystructs.NewStruct(decl.Name, fields...), nil
}

// greedy reports whether c consumes the rest of the buffer, looking
// through wrappers and the last field of nested structs.
func greedy(c pystructs.Codec) bool {
	switch c := c.(type) {
	case pystructs.GreedyBytes, pystructs.GreedyList:
		return true
	case pystructs.Wrap:
		return greedy(c.Codec)
	case *pystructs.Struct:
		if n := len(c.Fields); n > 0 {
			return greedy(c.Fields[n-1].Codec)
		}
	}
	return false
}

// Resolve returns the codec declared under name. It only sees
// declarations parsed so far while a schema is being built.
func (s *Schema) Resolve(name string) (pystructs.Codec, bool) {
	c, ok := s.codecs[name]
	return c, ok
}

// Struct returns the named struct. An empty name selects the root.
func (s *Schema) Struct(name string) (*pystructs.Struct, error) {
	if name == "" {
		name = s.root
	}
	if name == "" {
		return nil, errors.New("no struct named and schema has no root")
	}
	c, ok := s.codecs[name]
	if !ok {
		return nil, errors.Errorf("unknown struct %q", name)
	}
	st, ok := c.(*pystructs.Struct)
	if !ok {
		return nil, errors.Errorf("%s is %v, not a struct", name, c)
	}
	return st, nil
}

// Root returns the name of the default struct, if any.
func (s *Schema) Root() string { return s.root }

// Names returns the declared struct names in sorted order.
func (s *Schema) Names() []string {
	names := append([]string(nil), s.structs...)
	sort.Strings(names)
	return names
}
