package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// VarType is the compile-time type of a variable.
type VarType int

const (
	TypeUnknown VarType = iota
	TypeInt
	TypeFloat
	TypePointer
	TypeDict
)

func (t VarType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypePointer:
		return "pointer"
	case TypeDict:
		return "dict"
	default:
		return "unknown"
	}
}

// ParseVarType is the inverse of VarType.String.
func ParseVarType(s string) (VarType, error) {
	switch s {
	case "int":
		return TypeInt, nil
	case "float":
		return TypeFloat, nil
	case "pointer", "str":
		return TypePointer, nil
	case "dict":
		return TypeDict, nil
	case "unknown":
		return TypeUnknown, nil
	}
	return TypeUnknown, fmt.Errorf("unknown type %q", s)
}

// sizeOf is the logical size of a value of type t.
func sizeOf(t VarType) int {
	if t == TypeFloat {
		return 4
	}
	return 2
}

// reserveSize is the storage reserved for every scalar. A variable can be
// retyped from int to float in place without moving.
const reserveSize = 4

// Variable is a registry record. Address never changes once assigned.
type Variable struct {
	Name    string
	Label   string
	Address uint16
	Size    int
	Type    VarType
	Is8Bit  bool
}

func (v *Variable) String() string {
	return fmt.Sprintf("%s %s/%d @$%04X", v.Label, v.Type, v.Size, v.Address)
}

// setType retypes v in place.
func (v *Variable) setType(t VarType, is8Bit bool) {
	v.Type = t
	v.Size = sizeOf(t)
	v.Is8Bit = is8Bit
}

// VarOption overrides one field of a variable record.
type VarOption func(*Variable)

func WithSize(size int) VarOption {
	return func(v *Variable) { v.Size = size }
}

func WithType(t VarType) VarOption {
	return func(v *Variable) { v.Type = t }
}

func With8Bit(is8Bit bool) VarOption {
	return func(v *Variable) { v.Is8Bit = is8Bit }
}

// Registry maps keys to variable records and gives each one storage.
type Registry struct {
	alloc *Allocator
	vars  map[string]*Variable
}

func NewRegistry(alloc *Allocator) *Registry {
	return &Registry{alloc: alloc, vars: make(map[string]*Variable)}
}

// DeclareOrGet returns the global variable name, creating it as int/2 when
// unseen. Only the supplied options overwrite fields.
func (r *Registry) DeclareOrGet(name string, opts ...VarOption) (*Variable, error) {
	return r.declare(name, "v_"+name, opts...)
}

func (r *Registry) declare(key, label string, opts ...VarOption) (*Variable, error) {
	v, ok := r.vars[key]
	if !ok {
		v = &Variable{Name: key, Label: label, Size: 2, Type: TypeInt}
	}
	for _, opt := range opts {
		opt(v)
	}
	if !ok {
		addr, err := r.alloc.Allocate(v.Label, reserveSize)
		if err != nil {
			return nil, err
		}
		v.Address = addr
		r.vars[key] = v
	}
	return v, nil
}

// Lookup finds a record by key without creating it.
func (r *Registry) Lookup(key string) (*Variable, bool) {
	v, ok := r.vars[key]
	return v, ok
}

// Variables returns every record ordered by address.
func (r *Registry) Variables() []*Variable {
	vars := make([]*Variable, 0, len(r.vars))
	for _, v := range r.vars {
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Address < vars[j].Address })
	return vars
}

// Globals returns the records of module-level names, ordered by address.
func (r *Registry) Globals() []*Variable {
	var out []*Variable
	for _, v := range r.Variables() {
		if strings.HasPrefix(v.Label, "v_") {
			out = append(out, v)
		}
	}
	return out
}
