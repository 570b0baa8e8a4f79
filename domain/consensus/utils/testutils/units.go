package testutils

import (
	"fmt"
	"testing"

	"github.com/minio/sha256-simd"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/model/testapi"
	"github.com/witnessdag/witnessd/domain/consensus/utils/consensushashing"
	"golang.org/x/crypto/ed25519"
)

// NewKey returns a deterministic key that is not one of the witnesses of
// any network
func NewKey(seed int) ed25519.PrivateKey {
	keySeed := sha256.Sum256([]byte(fmt.Sprintf("testutils-key-%d", seed)))
	return ed25519.NewKeyFromSeed(keySeed[:])
}

// WitnessKey returns the key of the i-th witness of the test consensus
// network, wrapping around the witness count
func WitnessKey(tc testapi.TestConsensus, i int) ed25519.PrivateKey {
	keys := tc.DAGParams().WitnessKeys
	return keys[i%len(keys)]
}

// AddChain adds length units, each one the only child of the previous one,
// starting over parent. authorKey returns the author of the i-th unit,
// counting from 0. Returns the hashes of the added units in order.
func AddChain(t *testing.T, tc testapi.TestConsensus, parent *externalapi.DomainHash, length int,
	authorKey func(i int) ed25519.PrivateKey) []*externalapi.DomainHash {

	hashes := make([]*externalapi.DomainHash, 0, length)
	tip := parent
	for i := 0; i < length; i++ {
		unitHash, err := tc.AddUnit([]*externalapi.DomainHash{tip}, []ed25519.PrivateKey{authorKey(i)})
		if err != nil {
			t.Fatalf("AddChain: unit %d over %s: %+v", i, tip, err)
		}
		hashes = append(hashes, unitHash)
		tip = unitHash
	}
	return hashes
}

// LastStableMCI returns the last stable main chain index of tc, failing the
// test on error
func LastStableMCI(t *testing.T, tc testapi.TestConsensus) uint64 {
	lastStableMCI, err := tc.LastStableMCI()
	if err != nil {
		t.Fatalf("LastStableMCI: %+v", err)
	}
	return lastStableMCI
}

// UnitInfo returns the unit info of unitHash, failing the test on error
func UnitInfo(t *testing.T, tc testapi.TestConsensus, unitHash *externalapi.DomainHash) *externalapi.UnitInfo {
	unitInfo, err := tc.GetUnitInfo(unitHash)
	if err != nil {
		t.Fatalf("GetUnitInfo %s: %+v", unitHash, err)
	}
	if !unitInfo.Exists {
		t.Fatalf("GetUnitInfo: unit %s does not exist", unitHash)
	}
	return unitInfo
}

// AddressOf returns the address defined by the public key of key
func AddressOf(key ed25519.PrivateKey) string {
	return consensushashing.AddressFromDefinition(key.Public().(ed25519.PublicKey))
}
