package region

import "math/bits"

// sectorMap tracks which sectors of a region file are in use.
type sectorMap struct {
	words []uint64
	n     int
}

func newSectorMap(n int) *sectorMap {
	m := &sectorMap{}
	m.grow(n)
	return m
}

// Len returns the number of sectors the file holds.
func (m *sectorMap) Len() int { return m.n }

// grow extends the map to n sectors. New sectors are free.
func (m *sectorMap) grow(n int) {
	if n <= m.n {
		return
	}
	if need := (n + 63) / 64; need > len(m.words) {
		m.words = append(m.words, make([]uint64, need-len(m.words))...)
	}
	m.n = n
}

func (m *sectorMap) used(i int) bool {
	return m.words[i/64]&(1<<(uint(i)%64)) != 0
}

// mark sets sectors [off, off+count) to used or free.
func (m *sectorMap) mark(off, count int, used bool) {
	for i := off; i < off+count; i++ {
		if used {
			m.words[i/64] |= 1 << (uint(i) % 64)
		} else {
			m.words[i/64] &^= 1 << (uint(i) % 64)
		}
	}
}

// usedCount returns the number of used sectors.
func (m *sectorMap) usedCount() int {
	n := 0
	for _, w := range m.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// firstFit returns the first offset at or after from where count consecutive
// sectors are free, treating sectors past Len as free. firstFree is the first
// free sector inside the file, or -1 if every sector is used.
func (m *sectorMap) firstFit(from, count int) (start, firstFree int) {
	start, firstFree = from, -1
	run := 0
	for i := from; i < m.n; i++ {
		if m.used(i) {
			start, run = i+1, 0
			continue
		}
		if firstFree < 0 {
			firstFree = i
		}
		if run++; run == count {
			return start, firstFree
		}
	}
	// The run continues into the tail of the file.
	return start, firstFree
}
