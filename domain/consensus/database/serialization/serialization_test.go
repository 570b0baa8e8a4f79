package serialization

import (
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
)

func TestUnitSerialization(t *testing.T) {
	parent := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1})
	lastBall := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{2})
	lastBallUnit := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{3})
	unit := &externalapi.DomainUnit{
		Version:      "1.0",
		Alt:          "1",
		Parents:      []*externalapi.DomainHash{parent},
		LastBall:     lastBall,
		LastBallUnit: lastBallUnit,
		Witnesses:    []string{"A", "B"},
		Authors: []*externalapi.UnitAuthor{
			{Address: "A", Definition: []byte{1, 2, 3}, Signature: []byte{4, 5}},
		},
		DefinitionChanges: []*externalapi.DefinitionChange{{Address: "A", DefinitionChash: "C"}},
		Payload:           []byte("payload"),
		Timestamp:         -5,
	}

	deserialized, err := DeserializeUnit(SerializeUnit(unit))
	if err != nil {
		t.Fatalf("DeserializeUnit: %+v", err)
	}
	if !reflect.DeepEqual(unit, deserialized) {
		t.Fatalf("unit changed in serialization. Want: %s, got: %s", spew.Sdump(unit), spew.Sdump(deserialized))
	}
}

func TestUnitPropsSerializationKeepsFalseAndZeroValues(t *testing.T) {
	props := &model.UnitProps{
		Level:          7,
		WitnessedLevel: 0,
		MainChainIndex: 0,
		HasMCI:         true,
		IsOnMainChain:  true,
		Sequence:       externalapi.SequenceTempBad,
		Authors:        []string{"X"},
	}

	deserialized, err := DeserializeUnitProps(SerializeUnitProps(props))
	if err != nil {
		t.Fatalf("DeserializeUnitProps: %+v", err)
	}
	if !reflect.DeepEqual(props, deserialized) {
		t.Fatalf("props changed in serialization. Want: %s, got: %s", spew.Sdump(props), spew.Sdump(deserialized))
	}
}

func TestDeserializeRejectsTruncatedData(t *testing.T) {
	serialized := SerializeHashes([]*externalapi.DomainHash{{}, {}})
	_, err := DeserializeHashes(serialized[:len(serialized)-3])
	if err == nil {
		t.Fatalf("DeserializeHashes unexpectedly accepted truncated data")
	}
}
