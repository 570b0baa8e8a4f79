package serialization

import (
	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"google.golang.org/protobuf/encoding/protowire"
)

// Records are stored in the protobuf wire format. Field numbers are part of
// the database format and must never be reused.

type fieldHandler func(num protowire.Number, varint uint64, bytes []byte) error

func decodeFields(data []byte, handle fieldHandler) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return errors.Wrap(protowire.ParseError(n), "malformed tag")
		}
		data = data[n:]

		switch typ {
		case protowire.VarintType:
			value, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return errors.Wrapf(protowire.ParseError(n), "malformed varint field %d", num)
			}
			data = data[n:]
			err := handle(num, value, nil)
			if err != nil {
				return err
			}
		case protowire.BytesType:
			value, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return errors.Wrapf(protowire.ParseError(n), "malformed bytes field %d", num)
			}
			data = data[n:]
			err := handle(num, 0, value)
			if err != nil {
				return err
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return errors.Wrapf(protowire.ParseError(n), "malformed field %d", num)
			}
			data = data[n:]
		}
	}
	return nil
}

func appendVarint(b []byte, num protowire.Number, value uint64) []byte {
	if value == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, value)
}

func appendSignedVarint(b []byte, num protowire.Number, value int64) []byte {
	return appendVarint(b, num, protowire.EncodeZigZag(value))
}

func appendBool(b []byte, num protowire.Number, value bool) []byte {
	return appendVarint(b, num, protowire.EncodeBool(value))
}

func appendBytes(b []byte, num protowire.Number, value []byte) []byte {
	if len(value) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, value)
}

func appendString(b []byte, num protowire.Number, value string) []byte {
	if value == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, value)
}

func appendRepeatedString(b []byte, num protowire.Number, values []string) []byte {
	for _, value := range values {
		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendString(b, value)
	}
	return b
}

func appendHash(b []byte, num protowire.Number, hash *externalapi.DomainHash) []byte {
	if hash == nil {
		return b
	}
	return appendBytes(b, num, hash.ByteSlice())
}

func appendRepeatedHash(b []byte, num protowire.Number, hashes []*externalapi.DomainHash) []byte {
	for _, hash := range hashes {
		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendBytes(b, hash.ByteSlice())
	}
	return b
}

func appendMessage(b []byte, num protowire.Number, message []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, message)
}

func decodeHash(value []byte) (*externalapi.DomainHash, error) {
	return externalapi.NewDomainHashFromByteSlice(value)
}

func copyBytes(value []byte) []byte {
	return append([]byte(nil), value...)
}
