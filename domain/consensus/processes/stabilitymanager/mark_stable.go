package stabilitymanager

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/ruleerrors"
	"github.com/witnessdag/witnessd/domain/consensus/utils/consensushashing"
)

// markMCIStable freezes every unit at mci and gives it a ball. Units are
// processed by level so that parents at the same mci get their balls first.
func (sm *stabilityManager) markMCIStable(stagingArea *model.StagingArea, mci uint64) error {
	lastStableMCI, err := sm.consensusStateStore.LastStableMCI(sm.databaseContext, stagingArea)
	if err != nil {
		return err
	}
	if mci != lastStableMCI+1 {
		return errors.Wrapf(ruleerrors.ErrStabilityRetreat, "cannot mark mci %d stable when the "+
			"last stable mci is %d", mci, lastStableMCI)
	}

	mainChainUnit, err := sm.mainChainStore.MainChainUnit(sm.databaseContext, stagingArea, mci)
	if err != nil {
		return err
	}
	unitsAtMCI, err := sm.mainChainStore.UnitsAtMCI(sm.databaseContext, stagingArea, mci)
	if err != nil {
		return err
	}
	unitsProps, err := sm.sortByLevel(stagingArea, unitsAtMCI)
	if err != nil {
		return err
	}

	for i, unitHash := range unitsAtMCI {
		props := unitsProps[i]
		if props.IsStable {
			return errors.Wrapf(ruleerrors.ErrStableUnitReassigned, "unit %s at mci %d is already stable",
				unitHash, mci)
		}
		props.IsStable = true
		if props.Sequence == externalapi.SequenceTempBad {
			props.Sequence = externalapi.SequenceFinalBad
		}
		sm.unitPropsStore.Stage(stagingArea, unitHash, props)

		var skiplistUnits []*externalapi.DomainHash
		if unitHash.Equal(mainChainUnit) {
			skiplistUnits, err = sm.skiplistUnits(stagingArea, mci)
			if err != nil {
				return err
			}
			sm.skiplistStore.Stage(stagingArea, unitHash, skiplistUnits)
		}

		ball, err := sm.calculateBall(stagingArea, unitHash, skiplistUnits, props.IsNonserial())
		if err != nil {
			return err
		}
		sm.ballStore.Stage(stagingArea, unitHash, ball)
	}

	sm.consensusStateStore.StageLastStableMCI(stagingArea, mci)
	log.Debugf("Main chain index %d is stable: %s", mci, mainChainUnit)
	return nil
}

func (sm *stabilityManager) sortByLevel(stagingArea *model.StagingArea,
	unitHashes []*externalapi.DomainHash) ([]*model.UnitProps, error) {

	unitsProps := make(map[externalapi.DomainHash]*model.UnitProps, len(unitHashes))
	for _, unitHash := range unitHashes {
		props, err := sm.unitPropsStore.Get(sm.databaseContext, stagingArea, unitHash)
		if err != nil {
			return nil, err
		}
		unitsProps[*unitHash] = props
	}

	sort.Slice(unitHashes, func(i, j int) bool {
		levelI, levelJ := unitsProps[*unitHashes[i]].Level, unitsProps[*unitHashes[j]].Level
		if levelI != levelJ {
			return levelI < levelJ
		}
		return unitHashes[i].Less(unitHashes[j])
	})

	sortedProps := make([]*model.UnitProps, len(unitHashes))
	for i, unitHash := range unitHashes {
		sortedProps[i] = unitsProps[*unitHash]
	}
	return sortedProps, nil
}

// skiplistUnits returns the main chain units a main chain unit at mci
// references: for every power of skiplistBase that divides mci, the main
// chain unit that many indexes back
func (sm *stabilityManager) skiplistUnits(stagingArea *model.StagingArea, mci uint64) ([]*externalapi.DomainHash, error) {
	skiplistUnits := []*externalapi.DomainHash{}
	if mci == 0 {
		return skiplistUnits, nil
	}

	for divisor := sm.skiplistBase; divisor <= mci && mci%divisor == 0; divisor *= sm.skiplistBase {
		skiplistUnit, err := sm.mainChainStore.MainChainUnit(sm.databaseContext, stagingArea, mci-divisor)
		if err != nil {
			return nil, err
		}
		skiplistUnits = append(skiplistUnits, skiplistUnit)
	}
	return skiplistUnits, nil
}

func (sm *stabilityManager) calculateBall(stagingArea *model.StagingArea, unitHash *externalapi.DomainHash,
	skiplistUnits []*externalapi.DomainHash, isNonserial bool) (*externalapi.DomainHash, error) {

	parents, err := sm.dagTopologyManager.Parents(stagingArea, unitHash)
	if err != nil {
		return nil, err
	}
	parentBalls, err := sm.balls(stagingArea, parents)
	if err != nil {
		return nil, err
	}
	skiplistBalls, err := sm.balls(stagingArea, skiplistUnits)
	if err != nil {
		return nil, err
	}
	return consensushashing.BallHash(unitHash, parentBalls, skiplistBalls, isNonserial)
}

func (sm *stabilityManager) balls(stagingArea *model.StagingArea,
	unitHashes []*externalapi.DomainHash) ([]*externalapi.DomainHash, error) {

	balls := make([]*externalapi.DomainHash, len(unitHashes))
	for i, unitHash := range unitHashes {
		ball, err := sm.ballStore.Ball(sm.databaseContext, stagingArea, unitHash)
		if err != nil {
			return nil, errors.Wrapf(err, "missing ball of %s", unitHash)
		}
		balls[i] = ball
	}
	return balls, nil
}
