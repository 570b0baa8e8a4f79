package lrucache

import (
	"testing"

	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
)

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache := New(2)
	hash1 := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1})
	hash2 := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{2})
	hash3 := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{3})

	cache.Add(hash1, 1)
	cache.Add(hash2, 2)
	if _, ok := cache.Get(hash1); !ok {
		t.Fatalf("hash1 unexpectedly missing")
	}
	cache.Add(hash3, 3)

	if cache.Has(hash2) {
		t.Fatalf("hash2 should have been evicted")
	}
	value, ok := cache.Get(hash1)
	if !ok || value.(int) != 1 {
		t.Fatalf("unexpected value for hash1: %v", value)
	}

	// A different pointer to the same hash hits the same entry
	hash1Copy := externalapi.NewDomainHashFromByteArray(hash1.ByteArray())
	cache.Remove(hash1Copy)
	if cache.Has(hash1) {
		t.Fatalf("hash1 should have been removed")
	}
}
