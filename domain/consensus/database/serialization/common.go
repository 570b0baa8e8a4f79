package serialization

import (
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	listItemField protowire.Number = 1
	uint64Field   protowire.Number = 1
)

// SerializeHashes serializes a list of hashes
func SerializeHashes(hashes []*externalapi.DomainHash) []byte {
	return appendRepeatedHash(nil, listItemField, hashes)
}

// DeserializeHashes deserializes a list of hashes
func DeserializeHashes(data []byte) ([]*externalapi.DomainHash, error) {
	hashes := []*externalapi.DomainHash{}
	err := decodeFields(data, func(num protowire.Number, _ uint64, value []byte) error {
		if num != listItemField {
			return nil
		}
		hash, err := decodeHash(value)
		if err != nil {
			return err
		}
		hashes = append(hashes, hash)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return hashes, nil
}

// SerializeStrings serializes a list of strings
func SerializeStrings(values []string) []byte {
	return appendRepeatedString(nil, listItemField, values)
}

// DeserializeStrings deserializes a list of strings
func DeserializeStrings(data []byte) ([]string, error) {
	values := []string{}
	err := decodeFields(data, func(num protowire.Number, _ uint64, value []byte) error {
		if num == listItemField {
			values = append(values, string(value))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

// SerializeUint64 serializes a single uint64
func SerializeUint64(value uint64) []byte {
	b := protowire.AppendTag(nil, uint64Field, protowire.VarintType)
	return protowire.AppendVarint(b, value)
}

// DeserializeUint64 deserializes a single uint64
func DeserializeUint64(data []byte) (uint64, error) {
	var result uint64
	err := decodeFields(data, func(num protowire.Number, varint uint64, _ []byte) error {
		if num == uint64Field {
			result = varint
		}
		return nil
	})
	return result, err
}
