package unitvalidator

import (
	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/ruleerrors"
	"github.com/witnessdag/witnessd/domain/consensus/utils/consensushashing"
)

// ValidateUnitInContext validates a unit against the DAG and returns the
// properties it will be inserted with. Nothing is staged.
func (v *unitValidator) ValidateUnitInContext(stagingArea *model.StagingArea, unit *externalapi.DomainUnit,
	sequence externalapi.Sequence) (*model.ValidatedUnit, error) {

	unitHash, err := consensushashing.UnitHash(unit)
	if err != nil {
		return nil, errors.Wrapf(ruleerrors.ErrUnitHashMismatch, "cannot hash unit: %s", err)
	}

	exists, err := v.unitStore.HasUnit(v.databaseContext, stagingArea, unitHash)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.Wrapf(ruleerrors.ErrDuplicateUnit, "unit %s already exists", unitHash)
	}

	err = v.checkParentsExist(stagingArea, unit)
	if err != nil {
		return nil, err
	}

	parentProps, level, err := v.parentPropsAndLevel(stagingArea, unit)
	if err != nil {
		return nil, err
	}

	err = checkTimestamp(unit, parentProps)
	if err != nil {
		return nil, err
	}

	err = v.checkParentsAreUnrelated(stagingArea, unit)
	if err != nil {
		return nil, err
	}

	witnesses, err := v.resolveWitnessList(stagingArea, unit)
	if err != nil {
		return nil, err
	}

	err = v.witnessCompatibilityChecker.ValidateCompatibilityWithParents(stagingArea, witnesses, unit.Parents)
	if err != nil {
		return nil, err
	}

	bestParent, err := v.bestParentSelector.ChooseBestParent(stagingArea, unit.Parents)
	if err != nil {
		return nil, err
	}
	witnessedLevel, err := v.witnessedLevelManager.WitnessedLevel(stagingArea, bestParent, witnesses)
	if err != nil {
		return nil, err
	}
	bestParentProps := parentProps[*bestParent]
	if witnessedLevel < bestParentProps.WitnessedLevel {
		return nil, errors.Wrapf(ruleerrors.ErrWitnessedLevelRetreat, "witnessed level %d is lower than "+
			"the witnessed level %d of best parent %s", witnessedLevel, bestParentProps.WitnessedLevel, bestParent)
	}

	lastBallMCI, isLastBallStable, err := v.checkLastBall(stagingArea, unit, level, parentProps)
	if err != nil {
		return nil, err
	}

	err = v.checkAuthentifiers(stagingArea, unit, unitHash, lastBallMCI, isLastBallStable)
	if err != nil {
		return nil, err
	}

	return &model.ValidatedUnit{
		UnitHash:  unitHash,
		Witnesses: witnesses,
		Props: &model.UnitProps{
			Level:          level,
			WitnessedLevel: witnessedLevel,
			BestParent:     bestParent,
			Sequence:       sequence,
			HasContentHash: unit.ContentHash != nil,
			Timestamp:      unit.Timestamp,
			Authors:        unit.AuthorAddresses(),
			LastBallUnit:   unit.LastBallUnit,
		},
	}, nil
}

func (v *unitValidator) checkParentsExist(stagingArea *model.StagingArea, unit *externalapi.DomainUnit) error {
	missingParentHashes := []*externalapi.DomainHash{}
	for _, parent := range unit.Parents {
		parentExists, err := v.unitPropsStore.Has(v.databaseContext, stagingArea, parent)
		if err != nil {
			return err
		}
		if !parentExists {
			missingParentHashes = append(missingParentHashes, parent)
		}
	}

	if len(missingParentHashes) > 0 {
		return ruleerrors.NewErrMissingParents(missingParentHashes)
	}
	return nil
}

func (v *unitValidator) parentPropsAndLevel(stagingArea *model.StagingArea,
	unit *externalapi.DomainUnit) (map[externalapi.DomainHash]*model.UnitProps, uint64, error) {

	parentProps := make(map[externalapi.DomainHash]*model.UnitProps, len(unit.Parents))
	maxParentLevel := uint64(0)
	for _, parent := range unit.Parents {
		props, err := v.unitPropsStore.Get(v.databaseContext, stagingArea, parent)
		if err != nil {
			return nil, 0, err
		}
		parentProps[*parent] = props
		if props.Level > maxParentLevel {
			maxParentLevel = props.Level
		}
	}
	return parentProps, maxParentLevel + 1, nil
}

func checkTimestamp(unit *externalapi.DomainUnit, parentProps map[externalapi.DomainHash]*model.UnitProps) error {
	for parent, props := range parentProps {
		if unit.Timestamp < props.Timestamp {
			return errors.Wrapf(ruleerrors.ErrTimestampRetreat, "unit timestamp %d is lower than "+
				"the timestamp %d of parent %s", unit.Timestamp, props.Timestamp, parent)
		}
	}
	return nil
}

func (v *unitValidator) checkParentsAreUnrelated(stagingArea *model.StagingArea, unit *externalapi.DomainUnit) error {
	if len(unit.Parents) < 2 {
		return nil
	}
	for i, parent := range unit.Parents {
		others := make([]*externalapi.DomainHash, 0, len(unit.Parents)-1)
		others = append(others, unit.Parents[:i]...)
		others = append(others, unit.Parents[i+1:]...)

		isAncestor, err := v.dagTopologyManager.IsAncestorOfAny(stagingArea, parent, others)
		if err != nil {
			return err
		}
		if isAncestor {
			return errors.Wrapf(ruleerrors.ErrRelatedParents, "parent %s is an ancestor of "+
				"another parent", parent)
		}
	}
	return nil
}

// resolveWitnessList returns the witnesses a unit declares, or the
// witnesses declared by its witness list unit
func (v *unitValidator) resolveWitnessList(stagingArea *model.StagingArea, unit *externalapi.DomainUnit) ([]string, error) {
	if len(unit.Witnesses) > 0 {
		return unit.Witnesses, nil
	}

	witnessListUnit := unit.WitnessListUnit
	exists, err := v.unitPropsStore.Has(v.databaseContext, stagingArea, witnessListUnit)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.Wrapf(ruleerrors.ErrInvalidWitnessListUnit, "witness list unit %s is not known",
			witnessListUnit)
	}
	props, err := v.unitPropsStore.Get(v.databaseContext, stagingArea, witnessListUnit)
	if err != nil {
		return nil, err
	}
	if !props.IsStable {
		return nil, errors.Wrapf(ruleerrors.ErrInvalidWitnessListUnit, "witness list unit %s is not stable",
			witnessListUnit)
	}
	declaringUnit, err := v.unitStore.Unit(v.databaseContext, stagingArea, witnessListUnit)
	if err != nil {
		return nil, err
	}
	if len(declaringUnit.Witnesses) == 0 {
		return nil, errors.Wrapf(ruleerrors.ErrInvalidWitnessListUnit, "witness list unit %s does not "+
			"declare witnesses", witnessListUnit)
	}
	return v.witnessListStore.WitnessList(v.databaseContext, stagingArea, witnessListUnit)
}

// checkLastBall validates the last ball reference of the unit. The last
// ball unit may still be unstable locally while catching up, in which case
// its ball cannot be checked yet. It returns the mci of the last ball unit
// and whether it is stable.
func (v *unitValidator) checkLastBall(stagingArea *model.StagingArea, unit *externalapi.DomainUnit, level uint64,
	parentProps map[externalapi.DomainHash]*model.UnitProps) (uint64, bool, error) {

	exists, err := v.unitPropsStore.Has(v.databaseContext, stagingArea, unit.LastBallUnit)
	if err != nil {
		return 0, false, err
	}
	if !exists {
		return 0, false, errors.Wrapf(ruleerrors.ErrInvalidLastBall, "last ball unit %s is not known",
			unit.LastBallUnit)
	}
	lastBallProps, err := v.unitPropsStore.Get(v.databaseContext, stagingArea, unit.LastBallUnit)
	if err != nil {
		return 0, false, err
	}
	if lastBallProps.Level >= level {
		return 0, false, errors.Wrapf(ruleerrors.ErrInvalidLastBall, "last ball unit %s is not below the unit",
			unit.LastBallUnit)
	}
	if !lastBallProps.IsStable {
		log.Debugf("Last ball unit %s is not stable yet, skipping its ball check", unit.LastBallUnit)
		return 0, false, nil
	}

	if !lastBallProps.IsOnMainChain {
		return 0, false, errors.Wrapf(ruleerrors.ErrInvalidLastBall, "last ball unit %s is not on the main chain",
			unit.LastBallUnit)
	}
	ball, err := v.ballStore.Ball(v.databaseContext, stagingArea, unit.LastBallUnit)
	if err != nil {
		return 0, false, err
	}
	if !ball.Equal(unit.LastBall) {
		return 0, false, errors.Wrapf(ruleerrors.ErrInvalidLastBall, "last ball %s is not the ball %s "+
			"of last ball unit %s", unit.LastBall, ball, unit.LastBallUnit)
	}

	for parent, props := range parentProps {
		if props.LastBallUnit == nil {
			continue
		}
		parentLastBallProps, err := v.unitPropsStore.Get(v.databaseContext, stagingArea, props.LastBallUnit)
		if err != nil {
			return 0, false, err
		}
		if parentLastBallProps.IsStable && parentLastBallProps.MainChainIndex > lastBallProps.MainChainIndex {
			return 0, false, errors.Wrapf(ruleerrors.ErrLastBallRetreat, "last ball mci %d is lower than "+
				"the last ball mci %d of parent %s", lastBallProps.MainChainIndex,
				parentLastBallProps.MainChainIndex, parent)
		}
	}

	return lastBallProps.MainChainIndex, true, nil
}
