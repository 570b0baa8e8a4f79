package consensushashing

import (
	"encoding/base64"

	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/utils/objecthash"
)

// UnitHash returns the given unit's hash. Signatures are not covered by the
// hash, and neither are the payload and definition changes, which are
// covered through the content hash instead.
func UnitHash(unit *externalapi.DomainUnit) (*externalapi.DomainHash, error) {
	contentHash, err := ContentHash(unit)
	if err != nil {
		return nil, err
	}

	object := objecthash.Object{
		"version":      unit.Version,
		"alt":          unit.Alt,
		"content_hash": contentHash,
		"timestamp":    unit.Timestamp,
	}
	if len(unit.Parents) > 0 {
		object["parent_units"] = unit.Parents
	}
	if unit.LastBall != nil {
		object["last_ball"] = unit.LastBall
	}
	if unit.LastBallUnit != nil {
		object["last_ball_unit"] = unit.LastBallUnit
	}
	if unit.WitnessListUnit != nil {
		object["witness_list_unit"] = unit.WitnessListUnit
	}
	if len(unit.Witnesses) > 0 {
		object["witnesses"] = unit.Witnesses
	}

	authors := make(objecthash.Array, len(unit.Authors))
	for i, author := range unit.Authors {
		if author == nil {
			return nil, errors.Errorf("author #%d is missing", i)
		}
		authorObject := objecthash.Object{"address": author.Address}
		if len(author.Definition) > 0 {
			authorObject["definition"] = base64.StdEncoding.EncodeToString(author.Definition)
		}
		authors[i] = authorObject
	}
	if len(authors) > 0 {
		object["authors"] = authors
	}

	return objecthash.Hash(object)
}

// ContentHash returns the hash of the strippable content of the unit. For
// a unit that has already been stripped this is its ContentHash.
func ContentHash(unit *externalapi.DomainUnit) (*externalapi.DomainHash, error) {
	if unit.ContentHash != nil {
		return unit.ContentHash, nil
	}

	object := objecthash.Object{}
	if len(unit.Payload) > 0 {
		object["payload"] = base64.StdEncoding.EncodeToString(unit.Payload)
	}
	if len(unit.DefinitionChanges) > 0 {
		changes := make(objecthash.Array, len(unit.DefinitionChanges))
		for i, change := range unit.DefinitionChanges {
			if change == nil {
				return nil, errors.Errorf("definition change #%d is missing", i)
			}
			changes[i] = objecthash.Object{
				"address":          change.Address,
				"definition_chash": change.DefinitionChash,
			}
		}
		object["definition_changes"] = changes
	}
	return objecthash.Hash(object)
}

// StripUnit returns a clone of the unit with its content replaced by the
// content hash. The stripped unit has the same hash as the original.
func StripUnit(unit *externalapi.DomainUnit) (*externalapi.DomainUnit, error) {
	contentHash, err := ContentHash(unit)
	if err != nil {
		return nil, err
	}
	stripped := unit.Clone()
	stripped.ContentHash = contentHash
	stripped.Payload = nil
	stripped.DefinitionChanges = nil
	return stripped, nil
}

// ValidateJointHash checks that the joint's unit hashes to the hash the
// joint claims
func ValidateJointHash(joint *externalapi.DomainJoint) error {
	if joint == nil || joint.Unit == nil || joint.UnitHash == nil {
		return errors.New("incomplete joint")
	}
	unitHash, err := UnitHash(joint.Unit)
	if err != nil {
		return err
	}
	if !unitHash.Equal(joint.UnitHash) {
		return errors.Errorf("joint claims hash %s but its unit hashes to %s", joint.UnitHash, unitHash)
	}
	return nil
}
