package compiler

import (
	"testing"

	"github.com/nalgeon/be"
)

func newTestRegistry() *Registry {
	return NewRegistry(NewAllocator(DefaultMemStart, DefaultMemEnd))
}

func TestDeclareOrGetIsIdempotent(t *testing.T) {
	reg := newTestRegistry()

	x, err := reg.DeclareOrGet("x")
	be.Err(t, err, nil)
	again, err := reg.DeclareOrGet("x")
	be.Err(t, err, nil)

	be.True(t, x == again)
	be.Equal(t, x.Address, again.Address)
	be.Equal(t, x.Label, "v_x")
	be.Equal(t, x.Type, TypeInt)
	be.Equal(t, x.Size, 2)
}

func TestDeclareOrGetOnlyOverwritesSuppliedFields(t *testing.T) {
	reg := newTestRegistry()

	f, err := reg.DeclareOrGet("f", WithType(TypeFloat), WithSize(4))
	be.Err(t, err, nil)
	addr := f.Address

	f, err = reg.DeclareOrGet("f")
	be.Err(t, err, nil)
	be.Equal(t, f.Type, TypeFloat)
	be.Equal(t, f.Size, 4)

	f, err = reg.DeclareOrGet("f", With8Bit(true))
	be.Err(t, err, nil)
	be.Equal(t, f.Type, TypeFloat)
	be.True(t, f.Is8Bit)
	be.Equal(t, f.Address, addr)
}

func TestRetypingKeepsAddress(t *testing.T) {
	reg := newTestRegistry()
	a, _ := reg.DeclareOrGet("a")
	b, _ := reg.DeclareOrGet("b")
	be.Equal(t, b.Address-a.Address, uint16(reserveSize))

	a.setType(TypeFloat, false)
	be.Equal(t, a.Size, 4)
	be.True(t, a.Address+uint16(a.Size) <= b.Address)
}

func TestGlobalsSkipTemporaries(t *testing.T) {
	reg := newTestRegistry()
	pool := NewTempPool(reg)
	_, err := pool.Acquire()
	be.Err(t, err, nil)
	_, err = reg.DeclareOrGet("z")
	be.Err(t, err, nil)

	be.Equal(t, len(reg.Variables()), 2)
	globals := reg.Globals()
	be.Equal(t, len(globals), 1)
	be.Equal(t, globals[0].Name, "z")
}

func TestParseVarType(t *testing.T) {
	for _, want := range []VarType{TypeUnknown, TypeInt, TypeFloat, TypePointer, TypeDict} {
		got, err := ParseVarType(want.String())
		be.Err(t, err, nil)
		be.Equal(t, got, want)
	}
	got, err := ParseVarType("str")
	be.Err(t, err, nil)
	be.Equal(t, got, TypePointer)

	_, err = ParseVarType("list")
	be.Err(t, err, "unknown type")
}

func TestVariableString(t *testing.T) {
	reg := newTestRegistry()
	v, _ := reg.DeclareOrGet("x")
	be.Equal(t, v.String(), "v_x int/2 @$C000")
}
