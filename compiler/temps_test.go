package compiler

import (
	"fmt"
	"testing"

	"github.com/nalgeon/be"
)

func TestTempPoolReusesReleasedSlots(t *testing.T) {
	reg := newTestRegistry()
	pool := NewTempPool(reg)

	a, err := pool.Acquire()
	be.Err(t, err, nil)
	b, err := pool.Acquire()
	be.Err(t, err, nil)
	be.Equal(t, a.Index, 0)
	be.Equal(t, b.Index, 1)

	be.Err(t, pool.Release(a), nil)
	c, err := pool.Acquire()
	be.Err(t, err, nil)
	be.Equal(t, c.Index, 0)
	be.Equal(t, c.Gen, a.Gen+1)
	be.Equal(t, pool.Len(), 2)
	be.Equal(t, pool.InUse(), 2)
}

func TestTempPoolResetsType(t *testing.T) {
	pool := NewTempPool(newTestRegistry())
	tmp, _ := pool.Acquire()
	pool.Var(tmp).setType(TypeFloat, false)
	be.Err(t, pool.Release(tmp), nil)

	tmp, _ = pool.Acquire()
	v := pool.Var(tmp)
	be.Equal(t, v.Type, TypeInt)
	be.Equal(t, v.Size, 2)
}

// Acquire and release in an interleaved pattern and check that the pool
// never reports more live names than outstanding handles.
func TestTempPoolSoundness(t *testing.T) {
	reg := newTestRegistry()
	pool := NewTempPool(reg)
	var held []Temp

	for step := 0; step < 200; step++ {
		if step%3 == 2 && len(held) > 0 {
			i := (step * 7) % len(held)
			be.Err(t, pool.Release(held[i]), nil)
			held = append(held[:i], held[i+1:]...)
		} else {
			tmp, err := pool.Acquire()
			be.Err(t, err, nil)
			held = append(held, tmp)
		}

		live := pool.Live()
		be.Equal(t, len(live), len(held))
		be.Equal(t, pool.InUse(), len(held))

		names := make(map[string]bool)
		for _, h := range held {
			v := pool.Var(h)
			be.True(t, !names[v.Label])
			names[v.Label] = true

			rec, ok := reg.Lookup(fmt.Sprintf("%%t%d", h.Index))
			be.True(t, ok)
			be.True(t, rec == v)
			addr, ok := reg.alloc.Address(v.Label)
			be.True(t, ok)
			be.Equal(t, addr, v.Address)
		}
	}
}

func TestTempPoolDoubleRelease(t *testing.T) {
	pool := NewTempPool(newTestRegistry())
	tmp, _ := pool.Acquire()
	be.Err(t, pool.Release(tmp), nil)
	be.Err(t, pool.Release(tmp), ErrDoubleRelease)
}

func TestTempPoolStaleRelease(t *testing.T) {
	pool := NewTempPool(newTestRegistry())
	old, _ := pool.Acquire()
	be.Err(t, pool.Release(old), nil)
	current, _ := pool.Acquire()
	be.Equal(t, current.Index, old.Index)

	be.Err(t, pool.Release(old), ErrStaleTemp)
	be.Err(t, pool.Release(Temp{Index: 9}), ErrStaleTemp)
	be.Err(t, pool.Release(current), nil)
}

func TestTempPoolVarPanicsAfterRelease(t *testing.T) {
	pool := NewTempPool(newTestRegistry())
	tmp, _ := pool.Acquire()
	be.Err(t, pool.Release(tmp), nil)

	panicked := func() (p bool) {
		defer func() { p = recover() != nil }()
		pool.Var(tmp)
		return false
	}()
	be.True(t, panicked)
}

func TestTempPoolOutOfMemory(t *testing.T) {
	reg := NewRegistry(NewAllocator(0xC000, 0xC007))
	pool := NewTempPool(reg)
	_, err := pool.Acquire()
	be.Err(t, err, nil)
	_, err = pool.Acquire()
	be.Err(t, err, nil)
	_, err = pool.Acquire()
	be.Err(t, err, "out of memory")
}
