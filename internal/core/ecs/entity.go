package ecs

// EntityID encodes a 32-bit slot index in the lower bits and a 32-bit
// generation in the upper bits. The generation bumps when a slot is
// recycled, so a handle held across a destroy never resurrects.
type EntityID uint64

// Nil is the zero EntityID. Generations start at 1, so no live entity
// ever compares equal to it.
const Nil EntityID = 0

func newEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }

// Pool allocates entity identifiers, recycling destroyed slots through
// a free list.
type Pool struct {
	generations []uint32
	freeList    []uint32
}

func NewPool() *Pool {
	return &Pool{
		generations: make([]uint32, 0, 1024),
		freeList:    make([]uint32, 0, 256),
	}
}

func (p *Pool) Create() EntityID {
	if n := len(p.freeList); n > 0 {
		idx := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		return newEntityID(idx, p.generations[idx])
	}
	p.generations = append(p.generations, 1)
	idx := uint32(len(p.generations) - 1)
	return newEntityID(idx, 1)
}

func (p *Pool) Alive(id EntityID) bool {
	idx := id.Index()
	if id == Nil || int(idx) >= len(p.generations) {
		return false
	}
	return p.generations[idx] == id.Generation()
}

func (p *Pool) Destroy(id EntityID) {
	idx := id.Index()
	if int(idx) >= len(p.generations) {
		return
	}
	if p.generations[idx] != id.Generation() {
		return // already destroyed (stale reference)
	}
	p.generations[idx]++
	p.freeList = append(p.freeList, idx)
}

// Live reports the number of currently allocated entities.
func (p *Pool) Live() int {
	return len(p.generations) - len(p.freeList)
}

// Reset forgets every allocation. Identifiers issued before the reset
// must not be used afterwards.
func (p *Pool) Reset() {
	p.generations = p.generations[:0]
	p.freeList = p.freeList[:0]
}
