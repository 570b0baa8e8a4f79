package witnessproofmanager

import (
	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/ruleerrors"
	"github.com/witnessdag/witnessd/domain/consensus/utils/consensushashing"
)

// VerifyWitnessProof verifies a witness proof received from a peer. Witness
// definitions are resolved from the joints in the proof only. The node's
// own database is never consulted.
func (wpm *witnessProofManager) VerifyWitnessProof(proof *externalapi.WitnessProof,
	witnesses []string) (*externalapi.VerifiedWitnessProof, error) {

	if len(proof.UnstableMCJoints) == 0 {
		return nil, errors.Wrapf(ruleerrors.ErrInvalidWitnessProof, "witness proof has no unstable main chain joints")
	}
	if len(proof.UnstableMCJoints) > wpm.maxWitnessProofJoints {
		return nil, errors.Wrapf(ruleerrors.ErrInvalidWitnessProof, "witness proof has %d unstable main "+
			"chain joints, which is more than %d", len(proof.UnstableMCJoints), wpm.maxWitnessProofJoints)
	}

	witnessJoints, lastBallUnits, lastBallByLastBallUnit, err := wpm.verifyUnstableMainChainJoints(
		proof.UnstableMCJoints, witnesses)
	if err != nil {
		return nil, err
	}

	definitions, err := verifyDefinitionJoints(proof.WitnessChangeAndDefinitionJoints, witnesses)
	if err != nil {
		return nil, err
	}

	for _, joint := range witnessJoints {
		for _, author := range joint.Unit.Authors {
			if !isWitness(author.Address, witnesses) {
				continue
			}
			err := definitions.verifyAuthor(joint.UnitHash, author)
			if err != nil {
				return nil, err
			}
		}
	}

	if proof.LastBallUnit == nil {
		return nil, errors.Wrapf(ruleerrors.ErrInvalidWitnessProof, "witness proof has no last ball unit")
	}
	lastBall, ok := lastBallByLastBallUnit[*proof.LastBallUnit]
	if !ok {
		return nil, errors.Wrapf(ruleerrors.ErrInvalidWitnessProof, "last ball unit %s is not referenced "+
			"by the unstable main chain joints", proof.LastBallUnit)
	}

	return &externalapi.VerifiedWitnessProof{
		Witnesses:              append([]string(nil), witnesses...),
		LastBallUnits:          lastBallUnits,
		LastBallByLastBallUnit: lastBallByLastBallUnit,
		LastBallUnit:           proof.LastBallUnit,
		LastBall:               lastBall,
	}, nil
}

// verifyUnstableMainChainJoints checks that the joints form a chain where
// every joint is a parent of the previous one, and collects the last balls
// referenced once a majority of witnesses has been seen. It returns the
// joints that were authored by witnesses.
func (wpm *witnessProofManager) verifyUnstableMainChainJoints(joints []*externalapi.DomainJoint, witnesses []string) (
	witnessJoints []*externalapi.DomainJoint, lastBallUnits []*externalapi.DomainHash,
	lastBallByLastBallUnit map[externalapi.DomainHash]*externalapi.DomainHash, err error) {

	foundWitnesses := make(map[string]struct{})
	lastBallByLastBallUnit = make(map[externalapi.DomainHash]*externalapi.DomainHash)
	for i, joint := range joints {
		err := consensushashing.ValidateJointHash(joint)
		if err != nil {
			return nil, nil, nil, errors.Wrapf(ruleerrors.ErrInvalidWitnessProof, "unstable main chain "+
				"joint #%d: %s", i, err)
		}
		if joint.Ball != nil {
			return nil, nil, nil, errors.Wrapf(ruleerrors.ErrInvalidWitnessProof, "unstable main chain "+
				"joint %s has a ball", joint.UnitHash)
		}
		if i > 0 && !containsHash(joints[i-1].Unit.Parents, joint.UnitHash) {
			return nil, nil, nil, errors.Wrapf(ruleerrors.ErrInvalidWitnessProof, "unstable main chain "+
				"joint %s is not a parent of the previous joint", joint.UnitHash)
		}

		isWitnessJoint := false
		for _, author := range joint.Unit.Authors {
			if isWitness(author.Address, witnesses) {
				foundWitnesses[author.Address] = struct{}{}
				isWitnessJoint = true
			}
		}
		if isWitnessJoint {
			witnessJoints = append(witnessJoints, joint)
		}

		unit := joint.Unit
		if unit.LastBallUnit != nil && len(foundWitnesses) >= wpm.majorityOfWitnesses {
			if unit.LastBall == nil {
				return nil, nil, nil, errors.Wrapf(ruleerrors.ErrInvalidWitnessProof, "joint %s has a "+
					"last ball unit but no last ball", joint.UnitHash)
			}
			if _, ok := lastBallByLastBallUnit[*unit.LastBallUnit]; !ok {
				lastBallUnits = append(lastBallUnits, unit.LastBallUnit)
			}
			lastBallByLastBallUnit[*unit.LastBallUnit] = unit.LastBall
		}
	}

	if len(foundWitnesses) < wpm.majorityOfWitnesses {
		return nil, nil, nil, errors.Wrapf(ruleerrors.ErrNotEnoughWitnesses, "only %d witnesses authored "+
			"unstable main chain joints, while %d are needed", len(foundWitnesses), wpm.majorityOfWitnesses)
	}
	if len(lastBallUnits) == 0 {
		return nil, nil, nil, errors.Wrapf(ruleerrors.ErrNoLastBallUnits, "no last ball unit is referenced "+
			"after a majority of witnesses")
	}
	return witnessJoints, lastBallUnits, lastBallByLastBallUnit, nil
}

// proofDefinitions tracks witness definitions as they are revealed and
// changed by the definition joints of a proof
type proofDefinitions struct {
	chashByAddress    map[string]string
	definitionByChash map[string][]byte
}

func (pd *proofDefinitions) chash(address string) string {
	if chash, ok := pd.chashByAddress[address]; ok {
		return chash
	}
	return address
}

func (pd *proofDefinitions) verifyAuthor(unitHash *externalapi.DomainHash, author *externalapi.UnitAuthor) error {
	definition, ok := pd.definitionByChash[pd.chash(author.Address)]
	if !ok {
		return errors.Wrapf(ruleerrors.ErrMissingWitnessDefinition, "definition of witness %s is not "+
			"in the witness proof", author.Address)
	}
	if !consensushashing.VerifySignature(definition, unitHash, author.Signature) {
		return errors.Wrapf(ruleerrors.ErrInvalidWitnessProof, "signature of witness %s on %s does not verify",
			author.Address, unitHash)
	}
	return nil
}

func verifyDefinitionJoints(joints []*externalapi.DomainJoint, witnesses []string) (*proofDefinitions, error) {
	definitions := &proofDefinitions{
		chashByAddress:    make(map[string]string),
		definitionByChash: make(map[string][]byte),
	}

	for i, joint := range joints {
		if joint.Ball == nil {
			return nil, errors.Wrapf(ruleerrors.ErrInvalidWitnessProof, "definition joint #%d has no ball", i)
		}
		err := consensushashing.ValidateJointHash(joint)
		if err != nil {
			return nil, errors.Wrapf(ruleerrors.ErrInvalidWitnessProof, "definition joint #%d: %s", i, err)
		}

		isAuthoredByWitness := false
		for _, author := range joint.Unit.Authors {
			if !isWitness(author.Address, witnesses) {
				continue
			}
			isAuthoredByWitness = true

			if len(author.Definition) > 0 {
				chash := consensushashing.DefinitionChash(author.Definition)
				if chash != definitions.chash(author.Address) {
					return nil, errors.Wrapf(ruleerrors.ErrInvalidWitnessProof, "definition of witness %s "+
						"in %s does not hash to its current definition chash", author.Address, joint.UnitHash)
				}
				definitions.definitionByChash[chash] = author.Definition
			}
			err := definitions.verifyAuthor(joint.UnitHash, author)
			if err != nil {
				return nil, err
			}
		}
		if !isAuthoredByWitness {
			return nil, errors.Wrapf(ruleerrors.ErrInvalidWitnessProof, "definition joint %s is not "+
				"authored by a witness", joint.UnitHash)
		}

		for _, change := range joint.Unit.DefinitionChanges {
			if isWitness(change.Address, witnesses) {
				definitions.chashByAddress[change.Address] = change.DefinitionChash
			}
		}
	}
	return definitions, nil
}

func containsHash(hashes []*externalapi.DomainHash, hash *externalapi.DomainHash) bool {
	for _, candidate := range hashes {
		if candidate.Equal(hash) {
			return true
		}
	}
	return false
}
