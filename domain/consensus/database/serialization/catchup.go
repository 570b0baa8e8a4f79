package serialization

import (
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"google.golang.org/protobuf/encoding/protowire"
)

// Catchup messages travel in the same wire format as stored records.

const (
	jointUnitHashField protowire.Number = 1
	jointUnitField     protowire.Number = 2
	jointBallField     protowire.Number = 3

	ballRecordUnitField          protowire.Number = 1
	ballRecordBallField          protowire.Number = 2
	ballRecordParentBallsField   protowire.Number = 3
	ballRecordSkiplistBallsField protowire.Number = 4
	ballRecordIsNonserialField   protowire.Number = 5

	hashTreeRequestFromBallField         protowire.Number = 1
	hashTreeRequestToBallField           protowire.Number = 2
	hashTreeRequestContinueAfterMCIField protowire.Number = 3

	hashTreeResponseBallsField    protowire.Number = 1
	hashTreeResponseLastMCIField  protowire.Number = 2
	hashTreeResponseCompleteField protowire.Number = 3

	catchupRequestLastStableMCIField protowire.Number = 1
	catchupRequestLastKnownMCIField  protowire.Number = 2
	catchupRequestWitnessesField     protowire.Number = 3

	catchupChainIsCurrentField            protowire.Number = 1
	catchupChainUnstableMCJointsField     protowire.Number = 2
	catchupChainWitnessChangeJointsField  protowire.Number = 3
	catchupChainStableLastBallJointsField protowire.Number = 4

	witnessProofUnstableMCJointsField    protowire.Number = 1
	witnessProofWitnessChangeJointsField protowire.Number = 2
	witnessProofLastBallUnitField        protowire.Number = 3
	witnessProofLastBallMCIField         protowire.Number = 4
)

// FieldHandler receives a single decoded field. varint is set for varint
// fields and bytes for length-delimited ones.
type FieldHandler func(num protowire.Number, varint uint64, bytes []byte) error

// DecodeFields calls handle for every field of data in order. Fields of
// other wire types are skipped.
func DecodeFields(data []byte, handle FieldHandler) error {
	return decodeFields(data, fieldHandler(handle))
}

// SerializeJoint serializes a DomainJoint
func SerializeJoint(joint *externalapi.DomainJoint) []byte {
	var b []byte
	b = appendHash(b, jointUnitHashField, joint.UnitHash)
	if joint.Unit != nil {
		b = appendMessage(b, jointUnitField, SerializeUnit(joint.Unit))
	}
	b = appendHash(b, jointBallField, joint.Ball)
	return b
}

// DeserializeJoint deserializes a DomainJoint
func DeserializeJoint(data []byte) (*externalapi.DomainJoint, error) {
	joint := &externalapi.DomainJoint{}
	err := decodeFields(data, func(num protowire.Number, _ uint64, value []byte) error {
		var err error
		switch num {
		case jointUnitHashField:
			joint.UnitHash, err = decodeHash(value)
		case jointUnitField:
			joint.Unit, err = DeserializeUnit(value)
		case jointBallField:
			joint.Ball, err = decodeHash(value)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return joint, nil
}

func appendJoints(b []byte, num protowire.Number, joints []*externalapi.DomainJoint) []byte {
	for _, joint := range joints {
		b = appendMessage(b, num, SerializeJoint(joint))
	}
	return b
}

func serializeBallRecord(record *externalapi.BallRecord) []byte {
	var b []byte
	b = appendHash(b, ballRecordUnitField, record.Unit)
	b = appendHash(b, ballRecordBallField, record.Ball)
	b = appendRepeatedHash(b, ballRecordParentBallsField, record.ParentBalls)
	b = appendRepeatedHash(b, ballRecordSkiplistBallsField, record.SkiplistBalls)
	b = appendBool(b, ballRecordIsNonserialField, record.IsNonserial)
	return b
}

func deserializeBallRecord(data []byte) (*externalapi.BallRecord, error) {
	record := &externalapi.BallRecord{}
	err := decodeFields(data, func(num protowire.Number, varint uint64, value []byte) error {
		switch num {
		case ballRecordUnitField:
			hash, err := decodeHash(value)
			record.Unit = hash
			return err
		case ballRecordBallField:
			hash, err := decodeHash(value)
			record.Ball = hash
			return err
		case ballRecordParentBallsField:
			hash, err := decodeHash(value)
			if err != nil {
				return err
			}
			record.ParentBalls = append(record.ParentBalls, hash)
		case ballRecordSkiplistBallsField:
			hash, err := decodeHash(value)
			if err != nil {
				return err
			}
			record.SkiplistBalls = append(record.SkiplistBalls, hash)
		case ballRecordIsNonserialField:
			record.IsNonserial = protowire.DecodeBool(varint)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// SerializeHashTreeRequest serializes a HashTreeRequest
func SerializeHashTreeRequest(request *externalapi.HashTreeRequest) []byte {
	var b []byte
	b = appendHash(b, hashTreeRequestFromBallField, request.FromBall)
	b = appendHash(b, hashTreeRequestToBallField, request.ToBall)
	b = appendVarint(b, hashTreeRequestContinueAfterMCIField, request.ContinueAfterMCI)
	return b
}

// DeserializeHashTreeRequest deserializes a HashTreeRequest
func DeserializeHashTreeRequest(data []byte) (*externalapi.HashTreeRequest, error) {
	request := &externalapi.HashTreeRequest{}
	err := decodeFields(data, func(num protowire.Number, varint uint64, value []byte) error {
		var err error
		switch num {
		case hashTreeRequestFromBallField:
			request.FromBall, err = decodeHash(value)
		case hashTreeRequestToBallField:
			request.ToBall, err = decodeHash(value)
		case hashTreeRequestContinueAfterMCIField:
			request.ContinueAfterMCI = varint
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// SerializeHashTreeResponse serializes a HashTreeResponse
func SerializeHashTreeResponse(response *externalapi.HashTreeResponse) []byte {
	var b []byte
	for _, record := range response.Balls {
		b = appendMessage(b, hashTreeResponseBallsField, serializeBallRecord(record))
	}
	b = appendVarint(b, hashTreeResponseLastMCIField, response.LastMCI)
	b = appendBool(b, hashTreeResponseCompleteField, response.Complete)
	return b
}

// DeserializeHashTreeResponse deserializes a HashTreeResponse
func DeserializeHashTreeResponse(data []byte) (*externalapi.HashTreeResponse, error) {
	response := &externalapi.HashTreeResponse{}
	err := decodeFields(data, func(num protowire.Number, varint uint64, value []byte) error {
		switch num {
		case hashTreeResponseBallsField:
			record, err := deserializeBallRecord(value)
			if err != nil {
				return err
			}
			response.Balls = append(response.Balls, record)
		case hashTreeResponseLastMCIField:
			response.LastMCI = varint
		case hashTreeResponseCompleteField:
			response.Complete = protowire.DecodeBool(varint)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// SerializeCatchupRequest serializes a CatchupRequest
func SerializeCatchupRequest(request *externalapi.CatchupRequest) []byte {
	var b []byte
	b = appendVarint(b, catchupRequestLastStableMCIField, request.LastStableMCI)
	b = appendVarint(b, catchupRequestLastKnownMCIField, request.LastKnownMCI)
	b = appendRepeatedString(b, catchupRequestWitnessesField, request.Witnesses)
	return b
}

// DeserializeCatchupRequest deserializes a CatchupRequest
func DeserializeCatchupRequest(data []byte) (*externalapi.CatchupRequest, error) {
	request := &externalapi.CatchupRequest{}
	err := decodeFields(data, func(num protowire.Number, varint uint64, value []byte) error {
		switch num {
		case catchupRequestLastStableMCIField:
			request.LastStableMCI = varint
		case catchupRequestLastKnownMCIField:
			request.LastKnownMCI = varint
		case catchupRequestWitnessesField:
			request.Witnesses = append(request.Witnesses, string(value))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// SerializeCatchupChain serializes a CatchupChain
func SerializeCatchupChain(chain *externalapi.CatchupChain) []byte {
	var b []byte
	b = appendBool(b, catchupChainIsCurrentField, chain.IsCurrent)
	b = appendJoints(b, catchupChainUnstableMCJointsField, chain.UnstableMCJoints)
	b = appendJoints(b, catchupChainWitnessChangeJointsField, chain.WitnessChangeAndDefinitionJoints)
	b = appendJoints(b, catchupChainStableLastBallJointsField, chain.StableLastBallJoints)
	return b
}

// DeserializeCatchupChain deserializes a CatchupChain
func DeserializeCatchupChain(data []byte) (*externalapi.CatchupChain, error) {
	chain := &externalapi.CatchupChain{}
	err := decodeFields(data, func(num protowire.Number, varint uint64, value []byte) error {
		if num == catchupChainIsCurrentField {
			chain.IsCurrent = protowire.DecodeBool(varint)
			return nil
		}

		var joints *[]*externalapi.DomainJoint
		switch num {
		case catchupChainUnstableMCJointsField:
			joints = &chain.UnstableMCJoints
		case catchupChainWitnessChangeJointsField:
			joints = &chain.WitnessChangeAndDefinitionJoints
		case catchupChainStableLastBallJointsField:
			joints = &chain.StableLastBallJoints
		default:
			return nil
		}
		joint, err := DeserializeJoint(value)
		if err != nil {
			return err
		}
		*joints = append(*joints, joint)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return chain, nil
}

// SerializeWitnessProof serializes a WitnessProof
func SerializeWitnessProof(proof *externalapi.WitnessProof) []byte {
	var b []byte
	b = appendJoints(b, witnessProofUnstableMCJointsField, proof.UnstableMCJoints)
	b = appendJoints(b, witnessProofWitnessChangeJointsField, proof.WitnessChangeAndDefinitionJoints)
	b = appendHash(b, witnessProofLastBallUnitField, proof.LastBallUnit)
	b = appendVarint(b, witnessProofLastBallMCIField, proof.LastBallMCI)
	return b
}

// DeserializeWitnessProof deserializes a WitnessProof
func DeserializeWitnessProof(data []byte) (*externalapi.WitnessProof, error) {
	proof := &externalapi.WitnessProof{}
	err := decodeFields(data, func(num protowire.Number, varint uint64, value []byte) error {
		switch num {
		case witnessProofUnstableMCJointsField, witnessProofWitnessChangeJointsField:
			joint, err := DeserializeJoint(value)
			if err != nil {
				return err
			}
			if num == witnessProofUnstableMCJointsField {
				proof.UnstableMCJoints = append(proof.UnstableMCJoints, joint)
			} else {
				proof.WitnessChangeAndDefinitionJoints = append(proof.WitnessChangeAndDefinitionJoints, joint)
			}
		case witnessProofLastBallUnitField:
			hash, err := decodeHash(value)
			if err != nil {
				return err
			}
			proof.LastBallUnit = hash
		case witnessProofLastBallMCIField:
			proof.LastBallMCI = varint
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return proof, nil
}
