package witnessproofmanager

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/ruleerrors"
	"github.com/witnessdag/witnessd/domain/consensus/utils/hashset"
)

// BuildWitnessProof builds a proof of a recent stable last ball for a node
// that trusts witnesses and whose last stable main chain index is
// lastStableMCI. It returns ruleerrors.ErrAlreadyCurrent if that node
// already has everything the proof could give it.
func (wpm *witnessProofManager) BuildWitnessProof(ctx context.Context, stagingArea *model.StagingArea,
	witnesses []string, lastStableMCI uint64) (*externalapi.WitnessProof, error) {

	unstableMCJoints, lastBallUnits, err := wpm.unstableMainChainJoints(ctx, stagingArea, witnesses)
	if err != nil {
		return nil, err
	}

	lastBallUnit, lastBallMCI, err := wpm.highestLastBallUnit(stagingArea, lastBallUnits)
	if err != nil {
		return nil, err
	}
	if lastStableMCI >= lastBallMCI {
		return nil, ruleerrors.ErrAlreadyCurrent
	}

	definitionJoints, err := wpm.witnessDefinitionJoints(ctx, stagingArea, witnesses, lastBallMCI)
	if err != nil {
		return nil, err
	}

	return &externalapi.WitnessProof{
		UnstableMCJoints:                 unstableMCJoints,
		WitnessChangeAndDefinitionJoints: definitionJoints,
		LastBallUnit:                     lastBallUnit,
		LastBallMCI:                      lastBallMCI,
	}, nil
}

// minRetrievableMCI is the main chain index of the last ball of the last
// stable main chain unit
func (wpm *witnessProofManager) minRetrievableMCI(stagingArea *model.StagingArea) (uint64, error) {
	lastStableMCI, err := wpm.consensusStateStore.LastStableMCI(wpm.databaseContext, stagingArea)
	if err != nil {
		return 0, err
	}
	lastStableUnit, err := wpm.mainChainStore.MainChainUnit(wpm.databaseContext, stagingArea, lastStableMCI)
	if err != nil {
		return 0, err
	}
	lastStableProps, err := wpm.unitPropsStore.Get(wpm.databaseContext, stagingArea, lastStableUnit)
	if err != nil {
		return 0, err
	}
	if lastStableProps.LastBallUnit == nil {
		return 0, nil
	}
	lastBallProps, err := wpm.unitPropsStore.Get(wpm.databaseContext, stagingArea, lastStableProps.LastBallUnit)
	if err != nil {
		return 0, err
	}
	return lastBallProps.MainChainIndex, nil
}

// unstableMainChainJoints returns the main chain joints above the minimal
// retrievable main chain index, newest first and without balls, together
// with the last ball units they reference once a majority of witnesses
// has authored the joints seen so far
func (wpm *witnessProofManager) unstableMainChainJoints(ctx context.Context, stagingArea *model.StagingArea,
	witnesses []string) ([]*externalapi.DomainJoint, []*externalapi.DomainHash, error) {

	minRetrievableMCI, err := wpm.minRetrievableMCI(stagingArea)
	if err != nil {
		return nil, nil, err
	}
	lastMCI, err := wpm.consensusStateStore.LastMCI(wpm.databaseContext, stagingArea)
	if err != nil {
		return nil, nil, err
	}
	if lastMCI-minRetrievableMCI > uint64(wpm.maxWitnessProofJoints) {
		return nil, nil, errors.Wrapf(ruleerrors.ErrTooManyUnitsInRange, "witness proof would have %d "+
			"unstable main chain joints, which is more than %d", lastMCI-minRetrievableMCI, wpm.maxWitnessProofJoints)
	}

	foundWitnesses := make(map[string]struct{})
	joints := make([]*externalapi.DomainJoint, 0, lastMCI-minRetrievableMCI)
	lastBallUnits := []*externalapi.DomainHash{}
	for mci := lastMCI; mci > minRetrievableMCI; mci-- {
		if err := ctx.Err(); err != nil {
			return nil, nil, errors.WithStack(err)
		}

		unitHash, err := wpm.mainChainStore.MainChainUnit(wpm.databaseContext, stagingArea, mci)
		if err != nil {
			return nil, nil, err
		}
		unit, err := wpm.unitStore.Unit(wpm.databaseContext, stagingArea, unitHash)
		if err != nil {
			return nil, nil, err
		}
		joints = append(joints, &externalapi.DomainJoint{UnitHash: unitHash, Unit: unit})

		for _, author := range unit.Authors {
			if isWitness(author.Address, witnesses) {
				foundWitnesses[author.Address] = struct{}{}
			}
		}
		if unit.LastBallUnit != nil && len(foundWitnesses) >= wpm.majorityOfWitnesses {
			lastBallUnits = append(lastBallUnits, unit.LastBallUnit)
		}
	}

	if len(lastBallUnits) == 0 {
		return nil, nil, errors.Wrapf(ruleerrors.ErrNoLastBallUnits, "only %d witnesses authored unstable "+
			"main chain units, the witness list might be too far off", len(foundWitnesses))
	}
	return joints, lastBallUnits, nil
}

func (wpm *witnessProofManager) highestLastBallUnit(stagingArea *model.StagingArea,
	lastBallUnits []*externalapi.DomainHash) (*externalapi.DomainHash, uint64, error) {

	var highest *externalapi.DomainHash
	highestMCI := uint64(0)
	for _, lastBallUnit := range lastBallUnits {
		props, err := wpm.unitPropsStore.Get(wpm.databaseContext, stagingArea, lastBallUnit)
		if err != nil {
			return nil, 0, err
		}
		if !props.IsStable {
			continue
		}
		if highest == nil || props.MainChainIndex > highestMCI {
			highest = lastBallUnit
			highestMCI = props.MainChainIndex
		}
	}

	if highest == nil {
		return nil, 0, errors.Wrapf(ruleerrors.ErrNoLastBallUnits, "none of the last ball units is stable")
	}
	return highest, highestMCI, nil
}

// witnessDefinitionJoints returns the stable joints, up to lastBallMCI,
// that define the witnesses or change their definitions, in main chain
// order
func (wpm *witnessProofManager) witnessDefinitionJoints(ctx context.Context, stagingArea *model.StagingArea,
	witnesses []string, lastBallMCI uint64) ([]*externalapi.DomainJoint, error) {

	type definitionUnit struct {
		hash  *externalapi.DomainHash
		props *model.UnitProps
	}

	included := hashset.New()
	definitionUnits := []definitionUnit{}
	for _, witness := range witnesses {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}

		unitHashes, err := wpm.definitionStore.DefinitionUnits(wpm.databaseContext, stagingArea, witness)
		if err != nil {
			return nil, err
		}
		for _, unitHash := range unitHashes {
			if included.Contains(unitHash) {
				continue
			}
			props, err := wpm.unitPropsStore.Get(wpm.databaseContext, stagingArea, unitHash)
			if err != nil {
				return nil, err
			}
			if !props.IsStable || props.MainChainIndex > lastBallMCI || props.Sequence != externalapi.SequenceGood {
				continue
			}
			included.Add(unitHash)
			definitionUnits = append(definitionUnits, definitionUnit{hash: unitHash, props: props})
		}
	}

	sort.Slice(definitionUnits, func(i, j int) bool {
		propsI, propsJ := definitionUnits[i].props, definitionUnits[j].props
		if propsI.MainChainIndex != propsJ.MainChainIndex {
			return propsI.MainChainIndex < propsJ.MainChainIndex
		}
		if propsI.Level != propsJ.Level {
			return propsI.Level < propsJ.Level
		}
		return definitionUnits[i].hash.Less(definitionUnits[j].hash)
	})

	joints := make([]*externalapi.DomainJoint, len(definitionUnits))
	for i, definitionUnit := range definitionUnits {
		unit, err := wpm.unitStore.Unit(wpm.databaseContext, stagingArea, definitionUnit.hash)
		if err != nil {
			return nil, err
		}
		ball, err := wpm.ballStore.Ball(wpm.databaseContext, stagingArea, definitionUnit.hash)
		if err != nil {
			return nil, err
		}
		joints[i] = &externalapi.DomainJoint{UnitHash: definitionUnit.hash, Unit: unit, Ball: ball}
	}
	return joints, nil
}
