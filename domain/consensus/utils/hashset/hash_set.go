// Package hashset provides a set of unit and ball hashes
package hashset

import (
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
)

// HashSet is an unordered set of DomainHashes
type HashSet map[externalapi.DomainHash]struct{}

// New returns an empty HashSet
func New() HashSet {
	return HashSet{}
}

// NewFromSlice returns a HashSet holding hashes, duplicates collapsed
func NewFromSlice(hashes ...*externalapi.DomainHash) HashSet {
	set := make(HashSet, len(hashes))
	for _, hash := range hashes {
		set.Add(hash)
	}
	return set
}

// Add adds hash to the set
func (hs HashSet) Add(hash *externalapi.DomainHash) {
	hs[*hash] = struct{}{}
}

// Remove removes hash from the set, if present
func (hs HashSet) Remove(hash *externalapi.DomainHash) {
	delete(hs, *hash)
}

// Contains returns whether hash is in the set
func (hs HashSet) Contains(hash *externalapi.DomainHash) bool {
	_, ok := hs[*hash]
	return ok
}

// Subtract returns a new set of the hashes of hs missing from other
func (hs HashSet) Subtract(other HashSet) HashSet {
	diff := New()
	for hash := range hs {
		if _, ok := other[hash]; !ok {
			diff[hash] = struct{}{}
		}
	}
	return diff
}

// ToSortedSlice returns the hashes ordered by DomainHash.Less. Each returned
// pointer refers to its own copy.
func (hs HashSet) ToSortedSlice() []*externalapi.DomainHash {
	slice := make([]*externalapi.DomainHash, 0, len(hs))
	for hash := range hs {
		hashCopy := hash
		slice = append(slice, &hashCopy)
	}
	externalapi.SortHashes(slice)
	return slice
}

func (hs HashSet) String() string {
	return externalapi.HashesToString(hs.ToSortedSlice())
}
