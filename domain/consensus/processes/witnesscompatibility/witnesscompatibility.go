package witnesscompatibility

import (
	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/ruleerrors"
)

type witnessCompatibilityChecker struct {
	countWitnesses          int
	maxWitnessListMutations int

	databaseContext  model.DBReader
	witnessListStore model.WitnessListStore
}

// New instantiates a new WitnessCompatibilityChecker
func New(
	countWitnesses int,
	maxWitnessListMutations int,
	databaseContext model.DBReader,
	witnessListStore model.WitnessListStore) model.WitnessCompatibilityChecker {

	return &witnessCompatibilityChecker{
		countWitnesses:          countWitnesses,
		maxWitnessListMutations: maxWitnessListMutations,
		databaseContext:         databaseContext,
		witnessListStore:        witnessListStore,
	}
}

// AreCompatible returns whether witnessesA and witnessesB share at least
// countWitnesses - maxWitnessListMutations addresses
func (wcc *witnessCompatibilityChecker) AreCompatible(witnessesA []string, witnessesB []string) bool {
	inA := make(map[string]struct{}, len(witnessesA))
	for _, witness := range witnessesA {
		inA[witness] = struct{}{}
	}

	common := 0
	counted := make(map[string]struct{}, len(witnessesB))
	for _, witness := range witnessesB {
		if _, ok := counted[witness]; ok {
			continue
		}
		counted[witness] = struct{}{}
		if _, ok := inA[witness]; ok {
			common++
		}
	}

	return common >= wcc.countWitnesses-wcc.maxWitnessListMutations
}

// ValidateCompatibilityWithParents makes sure witnesses is compatible with
// the witness list of every one of parents
func (wcc *witnessCompatibilityChecker) ValidateCompatibilityWithParents(stagingArea *model.StagingArea,
	witnesses []string, parents []*externalapi.DomainHash) error {

	for _, parent := range parents {
		isCompatible, err := wcc.IsCompatibleWithUnit(stagingArea, witnesses, parent)
		if err != nil {
			return err
		}
		if !isCompatible {
			return errors.Wrapf(ruleerrors.ErrIncompatibleWitnessList,
				"witness list is incompatible with the witness list of parent %s", parent)
		}
	}
	return nil
}

// IsCompatibleWithUnit returns whether witnesses is compatible with the
// witness list of unitHash
func (wcc *witnessCompatibilityChecker) IsCompatibleWithUnit(stagingArea *model.StagingArea,
	witnesses []string, unitHash *externalapi.DomainHash) (bool, error) {

	unitWitnesses, err := wcc.witnessListStore.WitnessList(wcc.databaseContext, stagingArea, unitHash)
	if err != nil {
		return false, err
	}
	return wcc.AreCompatible(witnesses, unitWitnesses), nil
}
