package grpcserver

import (
	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/database/serialization"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/encoding/protowire"
)

// codecName is the content subtype catchup calls are made with
const codecName = "protowire"

const (
	witnessProofRequestWitnessesField     protowire.Number = 1
	witnessProofRequestLastStableMCIField protowire.Number = 2

	witnessProofResponseIsCurrentField protowire.Number = 1
	witnessProofResponseProofField     protowire.Number = 2

	jointRequestUnitHashField protowire.Number = 1

	freeUnitsResponseFreeUnitsField protowire.Number = 1
)

// protowireCodec encodes catchup messages in the protobuf wire format
type protowireCodec struct{}

func init() {
	encoding.RegisterCodec(protowireCodec{})
}

func (protowireCodec) Marshal(v interface{}) ([]byte, error) {
	switch message := v.(type) {
	case *externalapi.CatchupRequest:
		return serialization.SerializeCatchupRequest(message), nil
	case *externalapi.CatchupChain:
		return serialization.SerializeCatchupChain(message), nil
	case *externalapi.HashTreeRequest:
		return serialization.SerializeHashTreeRequest(message), nil
	case *externalapi.HashTreeResponse:
		return serialization.SerializeHashTreeResponse(message), nil
	case *externalapi.DomainJoint:
		return serialization.SerializeJoint(message), nil
	case *WitnessProofRequest:
		var b []byte
		for _, witness := range message.Witnesses {
			b = protowire.AppendTag(b, witnessProofRequestWitnessesField, protowire.BytesType)
			b = protowire.AppendString(b, witness)
		}
		b = protowire.AppendTag(b, witnessProofRequestLastStableMCIField, protowire.VarintType)
		return protowire.AppendVarint(b, message.LastStableMCI), nil
	case *WitnessProofResponse:
		var b []byte
		if message.IsCurrent {
			b = protowire.AppendTag(b, witnessProofResponseIsCurrentField, protowire.VarintType)
			b = protowire.AppendVarint(b, protowire.EncodeBool(true))
		}
		if message.Proof != nil {
			b = protowire.AppendTag(b, witnessProofResponseProofField, protowire.BytesType)
			b = protowire.AppendBytes(b, serialization.SerializeWitnessProof(message.Proof))
		}
		return b, nil
	case *JointRequest:
		if message.UnitHash == nil {
			return nil, errors.New("joint request without a unit")
		}
		b := protowire.AppendTag(nil, jointRequestUnitHashField, protowire.BytesType)
		return protowire.AppendBytes(b, message.UnitHash.ByteSlice()), nil
	case *FreeUnitsRequest:
		return nil, nil
	case *FreeUnitsResponse:
		var b []byte
		for _, unitHash := range message.FreeUnits {
			b = protowire.AppendTag(b, freeUnitsResponseFreeUnitsField, protowire.BytesType)
			b = protowire.AppendBytes(b, unitHash.ByteSlice())
		}
		return b, nil
	}
	return nil, errors.Errorf("cannot encode %T", v)
}

func (protowireCodec) Unmarshal(data []byte, v interface{}) error {
	err := unmarshal(data, v)
	if err != nil {
		return errors.Wrapf(err, "error decoding %T", v)
	}
	return nil
}

func unmarshal(data []byte, v interface{}) error {
	switch message := v.(type) {
	case *externalapi.CatchupRequest:
		decoded, err := serialization.DeserializeCatchupRequest(data)
		if err != nil {
			return err
		}
		*message = *decoded
	case *externalapi.CatchupChain:
		decoded, err := serialization.DeserializeCatchupChain(data)
		if err != nil {
			return err
		}
		*message = *decoded
	case *externalapi.HashTreeRequest:
		decoded, err := serialization.DeserializeHashTreeRequest(data)
		if err != nil {
			return err
		}
		*message = *decoded
	case *externalapi.HashTreeResponse:
		decoded, err := serialization.DeserializeHashTreeResponse(data)
		if err != nil {
			return err
		}
		*message = *decoded
	case *externalapi.DomainJoint:
		decoded, err := serialization.DeserializeJoint(data)
		if err != nil {
			return err
		}
		*message = *decoded
	case *WitnessProofRequest:
		*message = WitnessProofRequest{}
		return serialization.DecodeFields(data, func(num protowire.Number, varint uint64, value []byte) error {
			switch num {
			case witnessProofRequestWitnessesField:
				message.Witnesses = append(message.Witnesses, string(value))
			case witnessProofRequestLastStableMCIField:
				message.LastStableMCI = varint
			}
			return nil
		})
	case *WitnessProofResponse:
		*message = WitnessProofResponse{}
		return serialization.DecodeFields(data, func(num protowire.Number, varint uint64, value []byte) error {
			switch num {
			case witnessProofResponseIsCurrentField:
				message.IsCurrent = protowire.DecodeBool(varint)
			case witnessProofResponseProofField:
				proof, err := serialization.DeserializeWitnessProof(value)
				if err != nil {
					return err
				}
				message.Proof = proof
			}
			return nil
		})
	case *JointRequest:
		*message = JointRequest{}
		err := serialization.DecodeFields(data, func(num protowire.Number, _ uint64, value []byte) error {
			if num != jointRequestUnitHashField {
				return nil
			}
			unitHash, err := externalapi.NewDomainHashFromByteSlice(value)
			if err != nil {
				return err
			}
			message.UnitHash = unitHash
			return nil
		})
		if err != nil {
			return err
		}
		if message.UnitHash == nil {
			return errors.New("joint request without a unit")
		}
	case *FreeUnitsRequest:
	case *FreeUnitsResponse:
		*message = FreeUnitsResponse{}
		return serialization.DecodeFields(data, func(num protowire.Number, _ uint64, value []byte) error {
			if num != freeUnitsResponseFreeUnitsField {
				return nil
			}
			unitHash, err := externalapi.NewDomainHashFromByteSlice(value)
			if err != nil {
				return err
			}
			message.FreeUnits = append(message.FreeUnits, unitHash)
			return nil
		})
	default:
		return errors.Errorf("cannot decode %T", v)
	}
	return nil
}

func (protowireCodec) Name() string {
	return codecName
}
