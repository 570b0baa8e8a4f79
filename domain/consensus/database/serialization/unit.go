package serialization

import (
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	unitVersionField           protowire.Number = 1
	unitAltField               protowire.Number = 2
	unitParentsField           protowire.Number = 3
	unitLastBallField          protowire.Number = 4
	unitLastBallUnitField      protowire.Number = 5
	unitWitnessListUnitField   protowire.Number = 6
	unitWitnessesField         protowire.Number = 7
	unitAuthorsField           protowire.Number = 8
	unitDefinitionChangesField protowire.Number = 9
	unitPayloadField           protowire.Number = 10
	unitContentHashField       protowire.Number = 11
	unitTimestampField         protowire.Number = 12

	authorAddressField    protowire.Number = 1
	authorDefinitionField protowire.Number = 2
	authorSignatureField  protowire.Number = 3

	definitionChangeAddressField protowire.Number = 1
	definitionChangeChashField   protowire.Number = 2
)

// SerializeUnit serializes a DomainUnit for storage
func SerializeUnit(unit *externalapi.DomainUnit) []byte {
	var b []byte
	b = appendString(b, unitVersionField, unit.Version)
	b = appendString(b, unitAltField, unit.Alt)
	b = appendRepeatedHash(b, unitParentsField, unit.Parents)
	b = appendHash(b, unitLastBallField, unit.LastBall)
	b = appendHash(b, unitLastBallUnitField, unit.LastBallUnit)
	b = appendHash(b, unitWitnessListUnitField, unit.WitnessListUnit)
	b = appendRepeatedString(b, unitWitnessesField, unit.Witnesses)
	for _, author := range unit.Authors {
		var authorBytes []byte
		authorBytes = appendString(authorBytes, authorAddressField, author.Address)
		authorBytes = appendBytes(authorBytes, authorDefinitionField, author.Definition)
		authorBytes = appendBytes(authorBytes, authorSignatureField, author.Signature)
		b = appendMessage(b, unitAuthorsField, authorBytes)
	}
	for _, change := range unit.DefinitionChanges {
		var changeBytes []byte
		changeBytes = appendString(changeBytes, definitionChangeAddressField, change.Address)
		changeBytes = appendString(changeBytes, definitionChangeChashField, change.DefinitionChash)
		b = appendMessage(b, unitDefinitionChangesField, changeBytes)
	}
	b = appendBytes(b, unitPayloadField, unit.Payload)
	b = appendHash(b, unitContentHashField, unit.ContentHash)
	b = appendSignedVarint(b, unitTimestampField, unit.Timestamp)
	return b
}

// DeserializeUnit deserializes a DomainUnit from storage
func DeserializeUnit(data []byte) (*externalapi.DomainUnit, error) {
	unit := &externalapi.DomainUnit{}
	err := decodeFields(data, func(num protowire.Number, varint uint64, value []byte) error {
		var err error
		switch num {
		case unitVersionField:
			unit.Version = string(value)
		case unitAltField:
			unit.Alt = string(value)
		case unitParentsField:
			parent, err := decodeHash(value)
			if err != nil {
				return err
			}
			unit.Parents = append(unit.Parents, parent)
		case unitLastBallField:
			unit.LastBall, err = decodeHash(value)
		case unitLastBallUnitField:
			unit.LastBallUnit, err = decodeHash(value)
		case unitWitnessListUnitField:
			unit.WitnessListUnit, err = decodeHash(value)
		case unitWitnessesField:
			unit.Witnesses = append(unit.Witnesses, string(value))
		case unitAuthorsField:
			author, err := deserializeAuthor(value)
			if err != nil {
				return err
			}
			unit.Authors = append(unit.Authors, author)
		case unitDefinitionChangesField:
			change, err := deserializeDefinitionChange(value)
			if err != nil {
				return err
			}
			unit.DefinitionChanges = append(unit.DefinitionChanges, change)
		case unitPayloadField:
			unit.Payload = copyBytes(value)
		case unitContentHashField:
			unit.ContentHash, err = decodeHash(value)
		case unitTimestampField:
			unit.Timestamp = protowire.DecodeZigZag(varint)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return unit, nil
}

func deserializeAuthor(data []byte) (*externalapi.UnitAuthor, error) {
	author := &externalapi.UnitAuthor{}
	err := decodeFields(data, func(num protowire.Number, _ uint64, value []byte) error {
		switch num {
		case authorAddressField:
			author.Address = string(value)
		case authorDefinitionField:
			author.Definition = copyBytes(value)
		case authorSignatureField:
			author.Signature = copyBytes(value)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return author, nil
}

func deserializeDefinitionChange(data []byte) (*externalapi.DefinitionChange, error) {
	change := &externalapi.DefinitionChange{}
	err := decodeFields(data, func(num protowire.Number, _ uint64, value []byte) error {
		switch num {
		case definitionChangeAddressField:
			change.Address = string(value)
		case definitionChangeChashField:
			change.DefinitionChash = string(value)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}
