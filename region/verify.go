package region

import (
	"fmt"

	"github.com/joshuapare/voxstore/internal/format"
)

// Problem is a defect found by Verify.
type Problem struct {
	Pos ChunkPos
	Err error
}

func (p Problem) Error() string {
	return fmt.Sprintf("chunk %d,%d: %v", p.Pos.X, p.Pos.Z, p.Err)
}

// Verify checks that no two chunks share a sector and that every chunk
// decompresses. Header-level damage is returned as the error.
func (f *File) Verify() ([]Problem, error) {
	if f.closed {
		return nil, ErrClosed
	}
	var problems []Problem
	owner := make(map[uint32]int)
	for i, loc := range f.header.Locations {
		if loc.Empty() {
			continue
		}
		for s := loc.Offset; s < loc.End(); s++ {
			if j, dup := owner[s]; dup {
				q := f.world(j)
				problems = append(problems, Problem{
					Pos: f.world(i),
					Err: fmt.Errorf("sector %d shared with chunk %d,%d: %w", s, q.X, q.Z, format.ErrIllegalMetadata),
				})
				break
			}
			owner[s] = i
		}
	}
	for i, loc := range f.header.Locations {
		if loc.Empty() {
			continue
		}
		p := f.world(i)
		if _, err := f.ReadChunk(p.X, p.Z); err != nil {
			problems = append(problems, Problem{Pos: p, Err: err})
		}
	}
	return problems, nil
}

// Repair removes every chunk named in problems, as returned by Verify, and
// rebuilds the sector map from the remaining entries. It returns the removed
// chunks.
func (f *File) Repair(problems []Problem) ([]ChunkPos, error) {
	if f.closed {
		return nil, ErrClosed
	}
	seen := make(map[ChunkPos]bool)
	var removed []ChunkPos
	for _, p := range problems {
		if seen[p.Pos] || !f.HasChunk(p.Pos.X, p.Pos.Z) {
			continue
		}
		seen[p.Pos] = true
		if err := f.Remove(p.Pos.X, p.Pos.Z); err != nil {
			return removed, fmt.Errorf("repair chunk %d,%d: %w", p.Pos.X, p.Pos.Z, err)
		}
		removed = append(removed, p.Pos)
	}

	// Removing one of two chunks sharing a sector freed it for both.
	f.sectors = newSectorMap(f.sectors.Len())
	f.sectors.mark(0, format.HeaderSectors, true)
	for _, loc := range f.header.Locations {
		if !loc.Empty() {
			f.sectors.mark(int(loc.Offset), int(loc.Sectors), true)
		}
	}
	if len(removed) > 0 {
		f.log.Info("region repaired", "path", f.path, "removed", len(removed))
	}
	return removed, nil
}
