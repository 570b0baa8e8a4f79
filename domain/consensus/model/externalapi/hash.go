package externalapi

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// DomainHashSize of array used to store hashes.
const DomainHashSize = 32

// DomainHash is the domain representation of a hash. Both unit ids and
// balls are DomainHashes.
type DomainHash struct {
	hashArray [DomainHashSize]byte
}

// NewDomainHashFromByteArray constructs a new DomainHash out of a byte array
func NewDomainHashFromByteArray(hashBytes *[DomainHashSize]byte) *DomainHash {
	return &DomainHash{
		hashArray: *hashBytes,
	}
}

// NewDomainHashFromByteSlice constructs a new DomainHash out of a byte slice.
// Returns an error if the length of the byte slice is not exactly `DomainHashSize`
func NewDomainHashFromByteSlice(hashBytes []byte) (*DomainHash, error) {
	if len(hashBytes) != DomainHashSize {
		return nil, errors.Errorf("invalid hash size. Want: %d, got: %d",
			DomainHashSize, len(hashBytes))
	}
	domainHash := DomainHash{
		hashArray: [DomainHashSize]byte{},
	}
	copy(domainHash.hashArray[:], hashBytes)
	return &domainHash, nil
}

// NewDomainHashFromString constructs a new DomainHash out of its base64
// string representation.
func NewDomainHashFromString(hashString string) (*DomainHash, error) {
	expectedLength := base64.StdEncoding.EncodedLen(DomainHashSize)
	if len(hashString) != expectedLength {
		return nil, errors.Errorf("hash string length is %d, while it should be be %d",
			len(hashString), expectedLength)
	}

	hashBytes, err := base64.StdEncoding.DecodeString(hashString)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return NewDomainHashFromByteSlice(hashBytes)
}

// String returns the hash as the base64 string of the hash.
func (hash DomainHash) String() string {
	return base64.StdEncoding.EncodeToString(hash.hashArray[:])
}

// ByteArray returns the bytes in this hash represented as a bytes array.
// The hash bytes are cloned, therefore it is safe to modify the resulting array.
func (hash *DomainHash) ByteArray() *[DomainHashSize]byte {
	arrayClone := hash.hashArray
	return &arrayClone
}

// ByteSlice returns the bytes in this hash represented as a bytes slice.
// The hash bytes are cloned, therefore it is safe to modify the resulting slice.
func (hash *DomainHash) ByteSlice() []byte {
	return hash.ByteArray()[:]
}

// Equal returns whether hash equals to other
func (hash *DomainHash) Equal(other *DomainHash) bool {
	if hash == nil || other == nil {
		return hash == other
	}

	return hash.hashArray == other.hashArray
}

// Less returns whether hash sorts before other. Hashes are ordered by
// their string representation, which is the order units are compared
// by when everything else is equal.
func (hash *DomainHash) Less(other *DomainHash) bool {
	return hash.String() < other.String()
}

// MarshalJSON encodes the hash as its base64 string
func (hash DomainHash) MarshalJSON() ([]byte, error) {
	return json.Marshal(hash.String())
}

// UnmarshalJSON decodes a hash from its base64 string
func (hash *DomainHash) UnmarshalJSON(data []byte) error {
	var hashString string
	err := json.Unmarshal(data, &hashString)
	if err != nil {
		return errors.WithStack(err)
	}
	decoded, err := NewDomainHashFromString(hashString)
	if err != nil {
		return err
	}
	*hash = *decoded
	return nil
}

// CloneHashes returns a clone of the given hashes slice.
// Note: since DomainHash is a read-only type, the clone is shallow
func CloneHashes(hashes []*DomainHash) []*DomainHash {
	clone := make([]*DomainHash, len(hashes))
	copy(clone, hashes)
	return clone
}

// HashesEqual returns whether the given hash slices are equal.
func HashesEqual(a, b []*DomainHash) bool {
	if len(a) != len(b) {
		return false
	}

	for i, hash := range a {
		if !hash.Equal(b[i]) {
			return false
		}
	}
	return true
}

// HashesToString joins the string forms of hashes with commas
func HashesToString(hashes []*DomainHash) string {
	hashStrings := make([]string, len(hashes))
	for i, hash := range hashes {
		hashStrings[i] = hash.String()
	}
	return strings.Join(hashStrings, ", ")
}

// SortHashes sorts the given hashes in place by their string representation
func SortHashes(hashes []*DomainHash) {
	sortHashes(hashes)
}

// HashesAreSortedAndUnique returns whether every hash is strictly less than the next one
func HashesAreSortedAndUnique(hashes []*DomainHash) bool {
	for i := 1; i < len(hashes); i++ {
		if !hashes[i-1].Less(hashes[i]) {
			return false
		}
	}
	return true
}
