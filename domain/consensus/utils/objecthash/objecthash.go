// Package objecthash computes order-independent hashes of JSON-like objects.
//
// An object is flattened into a list of typed components: strings are
// prefixed with "s", numbers with "n" and booleans with "b". Arrays are
// wrapped in "[" and "]" and objects in "{" and "}", with object keys visited
// in sorted order. The components are joined by a zero byte and hashed with
// SHA-256.
package objecthash

import (
	"sort"
	"strconv"
	"strings"

	"github.com/minio/sha256-simd"
	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
)

// Object is a JSON-like object
type Object map[string]interface{}

// Array is a JSON-like array
type Array []interface{}

const separator = "\x00"

// ErrUnsupportedValue is returned for values that have no canonical form
var ErrUnsupportedValue = errors.New("unsupported value")

// SourceString returns the canonical string that is hashed for value
func SourceString(value interface{}) (string, error) {
	var components []string
	err := appendComponents(&components, value)
	if err != nil {
		return "", err
	}
	return strings.Join(components, separator), nil
}

// Hash returns the object hash of value
func Hash(value interface{}) (*externalapi.DomainHash, error) {
	source, err := SourceString(value)
	if err != nil {
		return nil, err
	}
	digest := sha256.Sum256([]byte(source))
	return externalapi.NewDomainHashFromByteArray(&digest), nil
}

func appendComponents(components *[]string, value interface{}) error {
	switch v := value.(type) {
	case string:
		*components = append(*components, "s", v)
	case *externalapi.DomainHash:
		if v == nil {
			return errors.Wrap(ErrUnsupportedValue, "nil hash")
		}
		*components = append(*components, "s", v.String())
	case bool:
		*components = append(*components, "b", strconv.FormatBool(v))
	case int:
		*components = append(*components, "n", strconv.FormatInt(int64(v), 10))
	case int64:
		*components = append(*components, "n", strconv.FormatInt(v, 10))
	case uint64:
		*components = append(*components, "n", strconv.FormatUint(v, 10))
	case []string:
		array := make(Array, len(v))
		for i, s := range v {
			array[i] = s
		}
		return appendComponents(components, array)
	case []*externalapi.DomainHash:
		array := make(Array, len(v))
		for i, hash := range v {
			array[i] = hash
		}
		return appendComponents(components, array)
	case Array:
		if len(v) == 0 {
			return errors.Wrap(ErrUnsupportedValue, "empty array")
		}
		*components = append(*components, "[")
		for _, element := range v {
			err := appendComponents(components, element)
			if err != nil {
				return err
			}
		}
		*components = append(*components, "]")
	case Object:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		*components = append(*components, "{")
		for _, key := range keys {
			*components = append(*components, key)
			err := appendComponents(components, v[key])
			if err != nil {
				return errors.Wrapf(err, "key %s", key)
			}
		}
		*components = append(*components, "}")
	default:
		return errors.Wrapf(ErrUnsupportedValue, "%T", value)
	}
	return nil
}
