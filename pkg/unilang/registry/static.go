// File: static.go
// Title: Static Command Registry
// Description: Immutable registry over a closed command set. Names and
//              command aliases are placed into a perfect-hash arena with a
//              two-level hash-and-displace scheme: the first level picks a
//              bucket, the bucket's displacement seed picks a collision-free
//              slot. Lookups cost two hash mixes and one comparison and need
//              no locking.
// Author: msto63
// Version: v0.1.0
// Created: 2025-10-04
// Modified: 2025-10-05
//
// Change History:
// - 2025-10-04 v0.1.0: Initial static registry
// - 2025-10-05 v0.1.0: Hash-and-displace arena replaces sorted search

package registry

import (
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"

	uerrors "github.com/msto63/unilang/pkg/unilang/errors"
)

const (
	keysPerBucket = 4
	maxSeed       = 1 << 16
)

// slot is one arena cell: the key, its full hash and the entry index
type slot struct {
	hash  uint64
	name  string
	index int32
	used  bool
}

// Static is an immutable perfect-hash registry. It is safe for
// unsynchronized concurrent reads.
type Static struct {
	seeds   []uint32
	arena   []slot
	entries []*Entry
}

// NewStatic builds a static registry. Names and aliases must be unique
// across all entries.
func NewStatic(entries []*Entry) (*Static, error) {
	sorted := make([]*Entry, 0, len(entries))
	for _, e := range entries {
		if e == nil || e.Definition == nil {
			return nil, uerrors.InvalidDefinition("<nil>", "entry without definition")
		}
		sorted = append(sorted, e)
	}
	sortEntries(sorted)

	owners := make(map[string]string)
	var keys []string
	var indexes []int32
	for i, e := range sorted {
		name := e.Name()
		if owner, taken := owners[name]; taken {
			if owner == name {
				return nil, uerrors.DuplicateCommand(name)
			}
			return nil, uerrors.AmbiguousAlias(name, owner, name)
		}
		owners[name] = name
		keys = append(keys, name)
		indexes = append(indexes, int32(i))

		for _, alias := range e.Definition.QualifiedAliases() {
			if owner, taken := owners[alias]; taken {
				return nil, uerrors.AmbiguousAlias(alias, owner, name)
			}
			owners[alias] = name
			keys = append(keys, alias)
			indexes = append(indexes, int32(i))
		}
	}

	s := &Static{entries: sorted}
	if len(keys) == 0 {
		return s, nil
	}

	// Grow the arena until every bucket finds a seed; a single pass
	// succeeds for any realistic key set
	for size := len(keys) + len(keys)/4 + 1; ; size *= 2 {
		if s.build(keys, indexes, size) {
			return s, nil
		}
		if size > 64*len(keys)+64 {
			return nil, uerrors.Internal(fmt.Sprintf("perfect hash construction failed for %d keys", len(keys)), nil)
		}
	}
}

func (s *Static) build(keys []string, indexes []int32, size int) bool {
	bucketCount := (len(keys)+keysPerBucket-1)/keysPerBucket + 1
	buckets := make([][]int, bucketCount)
	hashes := make([]uint64, len(keys))
	for i, k := range keys {
		hashes[i] = xxhash.Sum64String(k)
		b := hashes[i] % uint64(bucketCount)
		buckets[b] = append(buckets[b], i)
	}

	// Largest buckets first
	order := make([]int, bucketCount)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return len(buckets[order[a]]) > len(buckets[order[b]])
	})

	seeds := make([]uint32, bucketCount)
	arena := make([]slot, size)
	taken := make([]int, 0, keysPerBucket*2)

	for _, b := range order {
		members := buckets[b]
		if len(members) == 0 {
			continue
		}

		placed := false
		for seed := uint32(0); seed < maxSeed && !placed; seed++ {
			taken = taken[:0]
			ok := true
			for _, m := range members {
				pos := int(displace(hashes[m], seed) % uint64(size))
				if arena[pos].used || containsInt(taken, pos) {
					ok = false
					break
				}
				taken = append(taken, pos)
			}
			if !ok {
				continue
			}
			for j, m := range members {
				arena[taken[j]] = slot{hash: hashes[m], name: keys[m], index: indexes[m], used: true}
			}
			seeds[b] = seed
			placed = true
		}
		if !placed {
			return false
		}
	}

	s.seeds = seeds
	s.arena = arena
	return true
}

// displace mixes the key hash with a bucket seed (splitmix64 finalizer)
func displace(h uint64, seed uint32) uint64 {
	x := h ^ (uint64(seed)+1)*0x9E3779B97F4A7C15
	x ^= x >> 30
	x *= 0xBF58476D1CE4E5B9
	x ^= x >> 27
	x *= 0x94D049BB133111EB
	x ^= x >> 31
	return x
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// Lookup implements Registry
func (s *Static) Lookup(name string) (*Entry, bool) {
	if len(s.arena) == 0 {
		return nil, false
	}
	name = normalize(name)
	h := xxhash.Sum64String(name)
	seed := s.seeds[h%uint64(len(s.seeds))]
	cell := &s.arena[displace(h, seed)%uint64(len(s.arena))]
	if !cell.used || cell.hash != h || cell.name != name {
		return nil, false
	}
	return s.entries[cell.index], true
}

// Commands implements Registry
func (s *Static) Commands() []*Entry {
	out := make([]*Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len implements Registry
func (s *Static) Len() int {
	return len(s.entries)
}

// Keys returns the number of names and aliases in the arena
func (s *Static) Keys() int {
	n := 0
	for i := range s.arena {
		if s.arena[i].used {
			n++
		}
	}
	return n
}
