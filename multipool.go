package vtcore

// Line payloads are append-mostly: a line grows cell by cell for long
// stretches between erasures. The multipool serves that pattern with
// bump allocation inside slabs ("pools"). A pool is either sealed (off
// the free list, accepts no further allocations) or unsealed. Frees
// roll the bump pointer back when they hit the last object, so a
// shrinking tail is reclaimed stack-like; a pool whose population drops
// to zero is recycled or released depending on the unsealed quota.

const (
	defaultPoolCells  = 16 * 1024
	defaultMaxPad     = 128
	defaultMaxUnseal  = 4
)

// poolRef locates one allocation: the owning pool plus offset and
// capacity in cells. Lines hold their storage through a poolRef.
type poolRef struct {
	pool *cellPool
	off  int
	size int
}

// cells returns the allocated slab window.
func (r poolRef) cells() []Cell {
	return r.pool.buf[r.off : r.off+r.size]
}

type cellPool struct {
	prev, next *cellPool // unsealed list links
	buf        []Cell
	offset     int // bump pointer
	nAlloc     int
	sealed     bool
}

func (p *cellPool) free() int {
	return len(p.buf) - p.offset
}

// multipool manages the pools backing one screen store's lines.
type multipool struct {
	unsealed      *cellPool // head of the unsealed list
	unsealedCount int
	poolCount     int

	poolSize    int // cells per pool
	maxPad      int // free tail below which a pool is kept sealed
	maxUnsealed int
}

func newMultipool(poolSize, maxPad, maxUnsealed int) *multipool {
	if poolSize <= 0 {
		poolSize = defaultPoolCells
	}
	if maxPad <= 0 {
		maxPad = defaultMaxPad
	}
	if maxUnsealed <= 0 {
		maxUnsealed = defaultMaxUnseal
	}
	return &multipool{poolSize: poolSize, maxPad: maxPad, maxUnsealed: maxUnsealed}
}

func (mp *multipool) seal(p *cellPool) {
	if p.sealed {
		return
	}
	if p.prev != nil {
		p.prev.next = p.next
	} else {
		mp.unsealed = p.next
	}
	if p.next != nil {
		p.next.prev = p.prev
	}
	p.prev, p.next = nil, nil
	p.sealed = true
	mp.unsealedCount--
}

func (mp *multipool) unseal(p *cellPool) {
	if !p.sealed {
		return
	}
	p.next = mp.unsealed
	if mp.unsealed != nil {
		mp.unsealed.prev = p
	}
	p.prev = nil
	mp.unsealed = p
	p.sealed = false
	mp.unsealedCount++
}

// fittingPool finds an unsealed pool with at least n free cells, or
// creates a new one of size max(poolSize, n).
func (mp *multipool) fittingPool(n int) *cellPool {
	for p := mp.unsealed; p != nil; p = p.next {
		if p.free() >= n {
			return p
		}
	}
	size := mp.poolSize
	if n > size {
		size = n
	}
	p := &cellPool{buf: make([]Cell, size), sealed: true}
	mp.poolCount++
	mp.unseal(p)
	return p
}

// alloc reserves n cells. The chosen pool is sealed afterwards; it
// becomes available again only through free or a pinned realloc.
func (mp *multipool) alloc(n int) poolRef {
	want := n
	if want < mp.maxPad {
		want = mp.maxPad
	}
	p := mp.fittingPool(want)
	r := poolRef{pool: p, off: p.offset, size: n}
	p.offset += n
	p.nAlloc++
	mp.seal(p)
	return r
}

// freeRef releases an allocation. The bump pointer rolls back when the
// freed object is the pool's last; an empty pool is recycled onto the
// unsealed list or dropped if the quota is already met.
func (mp *multipool) freeRef(r poolRef) {
	p := r.pool
	if r.off+r.size == p.offset {
		p.offset = r.off
	}
	p.nAlloc--
	if p.nAlloc == 0 {
		p.offset = 0
		if mp.unsealedCount+1 > mp.maxUnsealed {
			if !p.sealed {
				mp.seal(p)
			}
			mp.poolCount--
		} else {
			mp.unseal(p)
		}
	}
}

// realloc grows or shrinks an allocation. The fast path extends in
// place when the object is the pool's last; otherwise the cells move to
// a fresh allocation. With pin set, a pool with at least maxPad free
// cells is unsealed so subsequent grows of the same line stay cheap.
func (mp *multipool) realloc(r poolRef, n int, pin bool) poolRef {
	p := r.pool
	isLast := r.off+r.size == p.offset

	switch {
	case isLast && n-r.size <= p.free():
		p.offset += n - r.size
		r.size = n
	case n > r.size:
		nr := mp.alloc(n)
		copy(nr.cells(), r.cells())
		mp.freeRef(r)
		r = nr
		p = r.pool
	default:
		r.size = n
	}

	if pin && p.sealed && p.free() >= mp.maxPad {
		mp.unseal(p)
	}
	return r
}
