package unitvalidator

import (
	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/ruleerrors"
	"github.com/witnessdag/witnessd/domain/consensus/utils/consensushashing"
)

// ValidateUnitInIsolation validates a unit without looking at the DAG
func (v *unitValidator) ValidateUnitInIsolation(unit *externalapi.DomainUnit) error {
	err := v.checkParents(unit)
	if err != nil {
		return err
	}

	err = v.checkAuthors(unit)
	if err != nil {
		return err
	}

	err = v.checkWitnessListShape(unit)
	if err != nil {
		return err
	}

	err = checkContent(unit)
	if err != nil {
		return err
	}

	return checkLastBallPresence(unit)
}

func (v *unitValidator) checkParents(unit *externalapi.DomainUnit) error {
	if len(unit.Parents) == 0 {
		return errors.Wrapf(ruleerrors.ErrNoParents, "unit has no parents")
	}

	if len(unit.Parents) > v.maxParentsPerUnit {
		return errors.Wrapf(ruleerrors.ErrTooManyParents, "unit has %d parents, but the maximum allowed amount "+
			"is %d", len(unit.Parents), v.maxParentsPerUnit)
	}

	for i, parent := range unit.Parents {
		if parent == nil {
			return errors.Wrapf(ruleerrors.ErrParentsNotSorted, "parent #%d is missing", i)
		}
	}
	if !externalapi.HashesAreSortedAndUnique(unit.Parents) {
		return errors.Wrapf(ruleerrors.ErrParentsNotSorted, "unit parents are not in sorted order "+
			"or contain repetitions")
	}
	return nil
}

func (v *unitValidator) checkAuthors(unit *externalapi.DomainUnit) error {
	if len(unit.Authors) == 0 {
		return errors.Wrapf(ruleerrors.ErrNoAuthors, "unit has no authors")
	}

	if len(unit.Authors) > v.maxAuthorsPerUnit {
		return errors.Wrapf(ruleerrors.ErrTooManyAuthors, "unit has %d authors, but the maximum allowed amount "+
			"is %d", len(unit.Authors), v.maxAuthorsPerUnit)
	}

	for i, author := range unit.Authors {
		if author == nil || author.Address == "" {
			return errors.Wrapf(ruleerrors.ErrAuthorsNotSorted, "author #%d has no address", i)
		}
		if i > 0 && unit.Authors[i-1].Address >= author.Address {
			return errors.Wrapf(ruleerrors.ErrAuthorsNotSorted, "unit authors are not in sorted order "+
				"or contain repetitions")
		}
		if len(author.Definition) > 0 {
			err := consensushashing.ValidateDefinition(author.Definition)
			if err != nil {
				return errors.Wrapf(ruleerrors.ErrInvalidDefinition, "definition of author %s: %s",
					author.Address, err)
			}
		}
	}
	return nil
}

func (v *unitValidator) checkWitnessListShape(unit *externalapi.DomainUnit) error {
	hasWitnessListUnit := unit.WitnessListUnit != nil
	hasWitnesses := len(unit.Witnesses) > 0
	if hasWitnessListUnit == hasWitnesses {
		return errors.Wrapf(ruleerrors.ErrWitnessListAmbiguous, "unit must have exactly one of "+
			"witnesses and witness_list_unit")
	}
	if hasWitnesses {
		return v.validateWitnessList(unit.Witnesses)
	}
	return nil
}

func (v *unitValidator) validateWitnessList(witnesses []string) error {
	if len(witnesses) != v.countWitnesses {
		return errors.Wrapf(ruleerrors.ErrInvalidWitnessList, "witness list has %d witnesses, "+
			"while it should have %d", len(witnesses), v.countWitnesses)
	}
	for i, witness := range witnesses {
		if witness == "" {
			return errors.Wrapf(ruleerrors.ErrInvalidWitnessList, "witness #%d is empty", i)
		}
		if i > 0 && witnesses[i-1] >= witness {
			return errors.Wrapf(ruleerrors.ErrInvalidWitnessList, "witnesses are not in sorted order "+
				"or contain repetitions")
		}
	}
	return nil
}

func checkContent(unit *externalapi.DomainUnit) error {
	if unit.ContentHash != nil && (len(unit.Payload) > 0 || len(unit.DefinitionChanges) > 0) {
		return errors.Wrapf(ruleerrors.ErrContentHashWithContent, "stripped unit still carries content")
	}

	for i, change := range unit.DefinitionChanges {
		if change == nil || change.DefinitionChash == "" {
			return errors.Wrapf(ruleerrors.ErrInvalidDefinitionChange, "definition change #%d "+
				"has no definition chash", i)
		}
		if !isAuthor(unit, change.Address) {
			return errors.Wrapf(ruleerrors.ErrInvalidDefinitionChange, "definition change of %s "+
				"is not signed by it", change.Address)
		}
	}
	return nil
}

func checkLastBallPresence(unit *externalapi.DomainUnit) error {
	if unit.LastBall == nil || unit.LastBallUnit == nil {
		return errors.Wrapf(ruleerrors.ErrMissingLastBall, "unit must reference both a last ball "+
			"and a last ball unit")
	}
	return nil
}

func isAuthor(unit *externalapi.DomainUnit, address string) bool {
	for _, author := range unit.Authors {
		if author.Address == address {
			return true
		}
	}
	return false
}
