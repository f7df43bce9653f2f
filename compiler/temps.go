package compiler

import (
	"errors"
	"fmt"
)

var (
	ErrDoubleRelease = errors.New("temporary released twice")
	ErrStaleTemp     = errors.New("stale temporary handle")
)

// Temp is a handle to a pool slot. Gen changes every time the slot is
// released, so an old handle can be told apart from the current one.
type Temp struct {
	Index int
	Gen   int
}

type tempSlot struct {
	v     *Variable
	gen   int
	inUse bool
}

// TempPool recycles scratch variables. A new slot is only created when the
// free list is empty.
type TempPool struct {
	reg   *Registry
	slots []tempSlot
	free  []int
}

func NewTempPool(reg *Registry) *TempPool {
	return &TempPool{reg: reg}
}

// Acquire hands out a slot whose variable is reset to int/2.
func (p *TempPool) Acquire() (Temp, error) {
	var idx int
	if n := len(p.free); n > 0 {
		idx = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		idx = len(p.slots)
		v, err := p.reg.declare(fmt.Sprintf("%%t%d", idx), fmt.Sprintf("t%d", idx))
		if err != nil {
			return Temp{}, err
		}
		p.slots = append(p.slots, tempSlot{v: v})
	}
	s := &p.slots[idx]
	s.inUse = true
	s.v.setType(TypeInt, false)
	return Temp{Index: idx, Gen: s.gen}, nil
}

// Release returns t to the free list.
func (p *TempPool) Release(t Temp) error {
	if t.Index < 0 || t.Index >= len(p.slots) {
		return fmt.Errorf("%w: index %d", ErrStaleTemp, t.Index)
	}
	s := &p.slots[t.Index]
	if s.gen != t.Gen {
		if !s.inUse && s.gen == t.Gen+1 {
			return fmt.Errorf("%w: t%d", ErrDoubleRelease, t.Index)
		}
		return fmt.Errorf("%w: t%d generation %d, current %d", ErrStaleTemp, t.Index, t.Gen, s.gen)
	}
	if !s.inUse {
		return fmt.Errorf("%w: t%d", ErrDoubleRelease, t.Index)
	}
	s.inUse = false
	s.gen++
	p.free = append(p.free, t.Index)
	return nil
}

// Var returns the variable behind t. Using a released handle is a bug in
// the compiler and panics.
func (p *TempPool) Var(t Temp) *Variable {
	if t.Index < 0 || t.Index >= len(p.slots) {
		panic(fmt.Sprintf("temporary t%d does not exist", t.Index))
	}
	s := &p.slots[t.Index]
	if !s.inUse || s.gen != t.Gen {
		panic(fmt.Sprintf("temporary t%d used after release", t.Index))
	}
	return s.v
}

// InUse is the number of outstanding acquisitions.
func (p *TempPool) InUse() int {
	return len(p.slots) - len(p.free)
}

// Len is the number of slots ever created.
func (p *TempPool) Len() int {
	return len(p.slots)
}

// Live returns the variables of the slots currently in use, by index.
func (p *TempPool) Live() []*Variable {
	var out []*Variable
	for _, s := range p.slots {
		if s.inUse {
			out = append(out, s.v)
		}
	}
	return out
}
