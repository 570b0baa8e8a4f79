package consensushashing

import (
	"encoding/base32"

	"github.com/minio/sha256-simd"
	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"golang.org/x/crypto/ed25519"
)

const addressHashLength = 20

var addressEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// DefinitionChash returns the checksummed hash of an address definition.
// An address is the chash of its original definition.
func DefinitionChash(definition []byte) string {
	digest := sha256.Sum256(definition)
	return addressEncoding.EncodeToString(digest[:addressHashLength])
}

// AddressFromDefinition returns the address defined by the given definition
func AddressFromDefinition(definition []byte) string {
	return DefinitionChash(definition)
}

// ValidateDefinition checks that definition is a well formed ed25519 public key
func ValidateDefinition(definition []byte) error {
	if len(definition) != ed25519.PublicKeySize {
		return errors.Errorf("definition length is %d, while it should be %d",
			len(definition), ed25519.PublicKeySize)
	}
	return nil
}

// VerifySignature checks an author's signature over a unit hash
func VerifySignature(definition []byte, unitHash *externalapi.DomainHash, signature []byte) bool {
	if ValidateDefinition(definition) != nil || len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(definition, unitHash.ByteSlice(), signature)
}

// SignUnit sets the signatures of the unit authors using the given keys,
// indexed by address, and returns the unit hash
func SignUnit(unit *externalapi.DomainUnit, keys map[string]ed25519.PrivateKey) (*externalapi.DomainHash, error) {
	unitHash, err := UnitHash(unit)
	if err != nil {
		return nil, err
	}
	for _, author := range unit.Authors {
		key, ok := keys[author.Address]
		if !ok {
			return nil, errors.Errorf("no key for author %s", author.Address)
		}
		author.Signature = ed25519.Sign(key, unitHash.ByteSlice())
	}
	return unitHash, nil
}
