package vtcore

import "testing"

func TestMultipoolAllocFree(t *testing.T) {
	mp := newMultipool(64, 8, 2)

	a := mp.alloc(10)
	if len(a.cells()) != 10 {
		t.Fatalf("alloc size: %d", len(a.cells()))
	}
	if !a.pool.sealed {
		t.Error("alloc must seal the chosen pool")
	}

	b := mp.alloc(10)
	mp.freeRef(b)
	mp.freeRef(a)
}

func TestMultipoolTailReclamation(t *testing.T) {
	mp := newMultipool(64, 8, 2)
	a := mp.alloc(10)
	p := a.pool
	off := p.offset
	b := poolRef{pool: p, off: p.offset, size: 0}
	_ = b

	// Free the last object: the bump pointer rolls back.
	mp.freeRef(a)
	if p.offset == off {
		t.Error("expected stack-like reclamation of the last object")
	}
}

func TestMultipoolReallocInPlace(t *testing.T) {
	mp := newMultipool(64, 8, 2)
	a := mp.alloc(10)
	a.cells()[0] = makeCell('x', 0, false)
	p := a.pool

	a = mp.realloc(a, 20, true)
	if a.pool != p {
		t.Error("last object should grow in place")
	}
	if a.cells()[0].Rune() != 'x' {
		t.Error("realloc lost cell content")
	}
	if p.sealed {
		t.Error("pinned realloc with free room should unseal the pool")
	}
}

func TestMultipoolReallocMove(t *testing.T) {
	mp := newMultipool(32, 4, 2)
	a := mp.alloc(10)
	a = mp.realloc(a, 10, true) // pin: unseals the pool
	b := mp.alloc(10)           // lands behind a in the same pool
	if b.pool != a.pool {
		t.Fatal("expected b to share a's pool")
	}
	a.cells()[0] = makeCell('y', 0, false)

	// a is no longer the last object; growing it must move.
	a = mp.realloc(a, 30, false)
	if a.pool == b.pool && a.off == 0 {
		t.Error("expected the grown allocation to move")
	}
	if a.cells()[0].Rune() != 'y' {
		t.Error("moving realloc lost content")
	}
	mp.freeRef(a)
	mp.freeRef(b)
}
