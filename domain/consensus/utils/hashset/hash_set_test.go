package hashset

import (
	"testing"

	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
)

func TestHashSet(t *testing.T) {
	first := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1})
	second := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{2})
	secondCopy := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{2})

	set := NewFromSlice(second, first, secondCopy)
	if len(set) != 2 {
		t.Fatalf("expected 2 hashes, got %d", len(set))
	}

	slice := set.ToSortedSlice()
	if slice[0] == slice[1] || slice[0].Equal(slice[1]) {
		t.Fatalf("ToSortedSlice returned the same hash twice")
	}
	if !externalapi.HashesAreSortedAndUnique(slice) {
		t.Fatalf("ToSortedSlice returned unsorted hashes: %s", set)
	}

	diff := set.Subtract(NewFromSlice(first))
	if len(diff) != 1 || !diff.Contains(second) || diff.Contains(first) {
		t.Fatalf("unexpected Subtract result: %s", diff)
	}
	if len(set) != 2 {
		t.Fatalf("Subtract modified its receiver")
	}

	set.Remove(secondCopy)
	if set.Contains(second) {
		t.Fatalf("Remove did not remove an equal hash")
	}
}
