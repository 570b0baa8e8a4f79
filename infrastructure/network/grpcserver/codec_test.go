package grpcserver

import (
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"google.golang.org/grpc/encoding"
)

func testHash(b byte) *externalapi.DomainHash {
	return externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{b})
}

func TestCodecIsRegistered(t *testing.T) {
	if encoding.GetCodec(codecName) == nil {
		t.Fatalf("codec %s is not registered", codecName)
	}
}

func TestCodecEncodesWitnessProofResponse(t *testing.T) {
	joint := &externalapi.DomainJoint{
		UnitHash: testHash(1),
		Unit: &externalapi.DomainUnit{
			Version:      "1.0",
			Alt:          "1",
			Parents:      []*externalapi.DomainHash{testHash(2)},
			LastBall:     testHash(3),
			LastBallUnit: testHash(4),
			Witnesses:    []string{"A", "B"},
			Authors: []*externalapi.UnitAuthor{
				{Address: "A", Definition: []byte{1, 2, 3}, Signature: []byte{4, 5}},
			},
			Timestamp: 1000,
		},
	}
	response := &WitnessProofResponse{
		Proof: &externalapi.WitnessProof{
			UnstableMCJoints: []*externalapi.DomainJoint{joint},
			LastBallUnit:     testHash(4),
			LastBallMCI:      20,
		},
	}

	codec := protowireCodec{}
	data, err := codec.Marshal(response)
	if err != nil {
		t.Fatalf("Marshal: %+v", err)
	}
	decoded := &WitnessProofResponse{}
	err = codec.Unmarshal(data, decoded)
	if err != nil {
		t.Fatalf("Unmarshal: %+v", err)
	}
	if !reflect.DeepEqual(response, decoded) {
		t.Fatalf("response changed in encoding. Want: %s, got: %s", spew.Sdump(response), spew.Sdump(decoded))
	}

	err = codec.Unmarshal(data[:len(data)-2], &WitnessProofResponse{})
	if err == nil {
		t.Fatalf("Unmarshal unexpectedly accepted truncated data")
	}
}

func TestCodecEncodesHashTreeResponse(t *testing.T) {
	response := &externalapi.HashTreeResponse{
		Balls: []*externalapi.BallRecord{
			{Unit: testHash(1), Ball: testHash(2)},
			{
				Unit:          testHash(3),
				Ball:          testHash(4),
				ParentBalls:   []*externalapi.DomainHash{testHash(2)},
				SkiplistBalls: []*externalapi.DomainHash{testHash(2)},
				IsNonserial:   true,
			},
		},
		LastMCI:  7,
		Complete: true,
	}

	codec := protowireCodec{}
	data, err := codec.Marshal(response)
	if err != nil {
		t.Fatalf("Marshal: %+v", err)
	}
	decoded := &externalapi.HashTreeResponse{}
	err = codec.Unmarshal(data, decoded)
	if err != nil {
		t.Fatalf("Unmarshal: %+v", err)
	}
	if !reflect.DeepEqual(response, decoded) {
		t.Fatalf("response changed in encoding. Want: %s, got: %s", spew.Sdump(response), spew.Sdump(decoded))
	}
}

func TestCodecRejectsUnknownMessages(t *testing.T) {
	codec := protowireCodec{}
	_, err := codec.Marshal(&struct{}{})
	if err == nil {
		t.Fatalf("Marshal unexpectedly encoded an unknown message")
	}
	err = codec.Unmarshal(nil, &JointRequest{})
	if err == nil {
		t.Fatalf("Unmarshal unexpectedly accepted a joint request without a unit")
	}
}
