package unitvalidator

import (
	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/ruleerrors"
	"github.com/witnessdag/witnessd/domain/consensus/utils/consensushashing"
)

// checkAuthentifiers verifies the signature of every author against the
// definition the author's address is bound to
func (v *unitValidator) checkAuthentifiers(stagingArea *model.StagingArea, unit *externalapi.DomainUnit,
	unitHash *externalapi.DomainHash, lastBallMCI uint64, isLastBallStable bool) error {

	for _, author := range unit.Authors {
		definitionChash, err := v.definitionChash(stagingArea, author.Address, lastBallMCI, isLastBallStable)
		if err != nil {
			return err
		}

		definition := author.Definition
		if len(definition) > 0 {
			if consensushashing.DefinitionChash(definition) != definitionChash {
				return errors.Wrapf(ruleerrors.ErrInvalidDefinition, "definition of author %s does not "+
					"hash to %s", author.Address, definitionChash)
			}
		} else {
			definition, err = v.knownDefinition(stagingArea, author.Address, definitionChash)
			if err != nil {
				return err
			}
		}

		if !consensushashing.VerifySignature(definition, unitHash, author.Signature) {
			return errors.Wrapf(ruleerrors.ErrInvalidSignature, "signature of author %s does not verify",
				author.Address)
		}
	}
	return nil
}

// definitionChash returns the definition chash address is bound to as of
// the last ball. An address that was never changed is bound to its own
// definition.
func (v *unitValidator) definitionChash(stagingArea *model.StagingArea, address string,
	lastBallMCI uint64, isLastBallStable bool) (string, error) {

	definitionUnits, err := v.definitionStore.DefinitionUnits(v.databaseContext, stagingArea, address)
	if err != nil {
		return "", err
	}

	definitionChash := address
	var latestProps *model.UnitProps
	for _, definitionUnit := range definitionUnits {
		props, err := v.unitPropsStore.Get(v.databaseContext, stagingArea, definitionUnit)
		if err != nil {
			return "", err
		}
		if !props.IsStable || (isLastBallStable && props.MainChainIndex > lastBallMCI) {
			continue
		}
		if latestProps != nil && !isLaterUnit(props, latestProps) {
			continue
		}

		unit, err := v.unitStore.Unit(v.databaseContext, stagingArea, definitionUnit)
		if err != nil {
			return "", err
		}
		for _, change := range unit.DefinitionChanges {
			if change.Address == address {
				definitionChash = change.DefinitionChash
				latestProps = props
			}
		}
	}
	return definitionChash, nil
}

// knownDefinition looks for a definition hashing to definitionChash that
// was revealed by a previous unit of address
func (v *unitValidator) knownDefinition(stagingArea *model.StagingArea, address string,
	definitionChash string) ([]byte, error) {

	definitionUnits, err := v.definitionStore.DefinitionUnits(v.databaseContext, stagingArea, address)
	if err != nil {
		return nil, err
	}

	for i := len(definitionUnits) - 1; i >= 0; i-- {
		unit, err := v.unitStore.Unit(v.databaseContext, stagingArea, definitionUnits[i])
		if err != nil {
			return nil, err
		}
		for _, author := range unit.Authors {
			if author.Address == address && len(author.Definition) > 0 &&
				consensushashing.DefinitionChash(author.Definition) == definitionChash {
				return author.Definition, nil
			}
		}
	}

	return nil, errors.Wrapf(ruleerrors.ErrInvalidDefinition, "definition %s of author %s is not known",
		definitionChash, address)
}

func isLaterUnit(props *model.UnitProps, other *model.UnitProps) bool {
	if props.MainChainIndex != other.MainChainIndex {
		return props.MainChainIndex > other.MainChainIndex
	}
	return props.Level > other.Level
}
