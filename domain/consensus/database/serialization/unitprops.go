package serialization

import (
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	propsLevelField          protowire.Number = 1
	propsWitnessedLevelField protowire.Number = 2
	propsBestParentField     protowire.Number = 3
	propsMCIField            protowire.Number = 4
	propsHasMCIField         protowire.Number = 5
	propsIsOnMainChainField  protowire.Number = 6
	propsIsStableField       protowire.Number = 7
	propsSequenceField       protowire.Number = 8
	propsHasContentHashField protowire.Number = 9
	propsTimestampField      protowire.Number = 10
	propsAuthorsField        protowire.Number = 11
	propsLastBallUnitField   protowire.Number = 12

	relationsParentsField  protowire.Number = 1
	relationsChildrenField protowire.Number = 2
)

// SerializeUnitProps serializes UnitProps for storage
func SerializeUnitProps(props *model.UnitProps) []byte {
	var b []byte
	b = appendVarint(b, propsLevelField, props.Level)
	b = appendVarint(b, propsWitnessedLevelField, props.WitnessedLevel)
	b = appendHash(b, propsBestParentField, props.BestParent)
	b = appendVarint(b, propsMCIField, props.MainChainIndex)
	b = appendBool(b, propsHasMCIField, props.HasMCI)
	b = appendBool(b, propsIsOnMainChainField, props.IsOnMainChain)
	b = appendBool(b, propsIsStableField, props.IsStable)
	b = appendVarint(b, propsSequenceField, uint64(props.Sequence))
	b = appendBool(b, propsHasContentHashField, props.HasContentHash)
	b = appendSignedVarint(b, propsTimestampField, props.Timestamp)
	b = appendRepeatedString(b, propsAuthorsField, props.Authors)
	b = appendHash(b, propsLastBallUnitField, props.LastBallUnit)
	return b
}

// DeserializeUnitProps deserializes UnitProps from storage
func DeserializeUnitProps(data []byte) (*model.UnitProps, error) {
	props := &model.UnitProps{}
	err := decodeFields(data, func(num protowire.Number, varint uint64, value []byte) error {
		var err error
		switch num {
		case propsLevelField:
			props.Level = varint
		case propsWitnessedLevelField:
			props.WitnessedLevel = varint
		case propsBestParentField:
			props.BestParent, err = decodeHash(value)
		case propsMCIField:
			props.MainChainIndex = varint
		case propsHasMCIField:
			props.HasMCI = protowire.DecodeBool(varint)
		case propsIsOnMainChainField:
			props.IsOnMainChain = protowire.DecodeBool(varint)
		case propsIsStableField:
			props.IsStable = protowire.DecodeBool(varint)
		case propsSequenceField:
			props.Sequence = externalapi.Sequence(varint)
		case propsHasContentHashField:
			props.HasContentHash = protowire.DecodeBool(varint)
		case propsTimestampField:
			props.Timestamp = protowire.DecodeZigZag(varint)
		case propsAuthorsField:
			props.Authors = append(props.Authors, string(value))
		case propsLastBallUnitField:
			props.LastBallUnit, err = decodeHash(value)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return props, nil
}

// SerializeUnitRelations serializes UnitRelations for storage
func SerializeUnitRelations(relations *model.UnitRelations) []byte {
	var b []byte
	b = appendRepeatedHash(b, relationsParentsField, relations.Parents)
	b = appendRepeatedHash(b, relationsChildrenField, relations.Children)
	return b
}

// DeserializeUnitRelations deserializes UnitRelations from storage
func DeserializeUnitRelations(data []byte) (*model.UnitRelations, error) {
	relations := &model.UnitRelations{
		Parents:  []*externalapi.DomainHash{},
		Children: []*externalapi.DomainHash{},
	}
	err := decodeFields(data, func(num protowire.Number, _ uint64, value []byte) error {
		switch num {
		case relationsParentsField:
			hash, err := decodeHash(value)
			if err != nil {
				return err
			}
			relations.Parents = append(relations.Parents, hash)
		case relationsChildrenField:
			hash, err := decodeHash(value)
			if err != nil {
				return err
			}
			relations.Children = append(relations.Children, hash)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return relations, nil
}
