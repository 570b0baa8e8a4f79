package witnessedlevelmanager

import (
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
)

type witnessedLevelManager struct {
	majorityOfWitnesses int

	databaseContext model.DBReader
	unitPropsStore  model.UnitPropsStore
}

// New instantiates a new WitnessedLevelManager
func New(
	majorityOfWitnesses int,
	databaseContext model.DBReader,
	unitPropsStore model.UnitPropsStore) model.WitnessedLevelManager {

	return &witnessedLevelManager{
		majorityOfWitnesses: majorityOfWitnesses,
		databaseContext:     databaseContext,
		unitPropsStore:      unitPropsStore,
	}
}

// WitnessedLevel returns the witnessed level of a unit with the given best
// parent and witness list: walking down the best parent chain starting at
// bestParent, it is the level of the unit at which a majority of distinct
// witnesses has been collected. Genesis authors are not collected, so a
// chain that reaches genesis first has witnessed level 0.
func (wlm *witnessedLevelManager) WitnessedLevel(stagingArea *model.StagingArea,
	bestParent *externalapi.DomainHash, witnesses []string) (uint64, error) {

	collected := make(map[string]struct{}, wlm.majorityOfWitnesses)
	current := bestParent
	for {
		props, err := wlm.unitPropsStore.Get(wlm.databaseContext, stagingArea, current)
		if err != nil {
			return 0, err
		}
		if props.Level == 0 {
			return 0, nil
		}

		collectWitnessAuthors(collected, props.Authors, witnesses)
		if len(collected) >= wlm.majorityOfWitnesses {
			return props.Level, nil
		}
		current = props.BestParent
	}
}

// MinMainChainWitnessedLevel walks down the best parent chain from tip until
// a majority of distinct witnesses has authored units on the way, and returns
// the minimal witnessed level among those witness-authored units. found is
// false if genesis is reached first.
func (wlm *witnessedLevelManager) MinMainChainWitnessedLevel(stagingArea *model.StagingArea,
	tip *externalapi.DomainHash, witnesses []string) (minWitnessedLevel uint64, found bool, err error) {

	collected := make(map[string]struct{}, wlm.majorityOfWitnesses)
	minWitnessedLevel = ^uint64(0)
	current := tip
	for {
		props, err := wlm.unitPropsStore.Get(wlm.databaseContext, stagingArea, current)
		if err != nil {
			return 0, false, err
		}
		if props.Level == 0 {
			return 0, false, nil
		}

		if collectWitnessAuthors(collected, props.Authors, witnesses) > 0 &&
			props.WitnessedLevel < minWitnessedLevel {
			minWitnessedLevel = props.WitnessedLevel
		}
		if len(collected) >= wlm.majorityOfWitnesses {
			return minWitnessedLevel, true, nil
		}
		current = props.BestParent
	}
}

// collectWitnessAuthors adds the authors that are witnesses to collected and
// returns how many of the authors are witnesses
func collectWitnessAuthors(collected map[string]struct{}, authors []string, witnesses []string) int {
	count := 0
	for _, author := range authors {
		for _, witness := range witnesses {
			if author == witness {
				collected[author] = struct{}{}
				count++
				break
			}
		}
	}
	return count
}
