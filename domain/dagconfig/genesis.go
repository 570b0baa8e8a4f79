package dagconfig

import (
	"fmt"
	"sort"

	"github.com/minio/sha256-simd"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/utils/consensushashing"
	"golang.org/x/crypto/ed25519"
)

const (
	simnetGenesisTimestamp = 1577836800
	devnetGenesisTimestamp = 1609459200
)

type genesis struct {
	unit      *externalapi.DomainUnit
	hash      *externalapi.DomainHash
	witnesses []string
	keys      []ed25519.PrivateKey
}

// deriveWitnessKeys derives the witness keys of a test network from its
// name. The keys are sorted by the address they define.
func deriveWitnessKeys(netName string, count int) []ed25519.PrivateKey {
	keys := make([]ed25519.PrivateKey, count)
	for i := range keys {
		seed := sha256.Sum256([]byte(fmt.Sprintf("witnessd-%s-witness-%d", netName, i)))
		keys[i] = ed25519.NewKeyFromSeed(seed[:])
	}
	sort.Slice(keys, func(i, j int) bool {
		return keyAddress(keys[i]) < keyAddress(keys[j])
	})
	return keys
}

func keyAddress(key ed25519.PrivateKey) string {
	return consensushashing.AddressFromDefinition(key.Public().(ed25519.PublicKey))
}

func newGenesis(netName string, keys []ed25519.PrivateKey, timestamp int64) *genesis {
	witnesses := make([]string, len(keys))
	authors := make([]*externalapi.UnitAuthor, len(keys))
	keysByAddress := make(map[string]ed25519.PrivateKey, len(keys))
	for i, key := range keys {
		definition := key.Public().(ed25519.PublicKey)
		address := consensushashing.AddressFromDefinition(definition)
		witnesses[i] = address
		authors[i] = &externalapi.UnitAuthor{
			Address:    address,
			Definition: append([]byte(nil), definition...),
		}
		keysByAddress[address] = key
	}

	unit := &externalapi.DomainUnit{
		Version:   "1.0",
		Alt:       netName,
		Witnesses: witnesses,
		Authors:   authors,
		Payload:   []byte(fmt.Sprintf("witnessd %s genesis", netName)),
		Timestamp: timestamp,
	}
	hash, err := consensushashing.SignUnit(unit, keysByAddress)
	if err != nil {
		panic(err)
	}

	return &genesis{
		unit:      unit,
		hash:      hash,
		witnesses: witnesses,
		keys:      keys,
	}
}
