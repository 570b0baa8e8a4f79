package unitprocessor

import (
	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/ruleerrors"
	"github.com/witnessdag/witnessd/domain/consensus/utils/consensushashing"
	"github.com/witnessdag/witnessd/domain/consensus/utils/staging"
)

func (up *unitProcessor) initGenesis(genesis *externalapi.DomainUnit) error {
	stagingArea := model.NewStagingArea()

	isInitialized, err := up.consensusStateStore.IsInitialized(up.databaseContext, stagingArea)
	if err != nil {
		return err
	}
	if isInitialized {
		hasGenesis, err := up.unitStore.HasUnit(up.databaseContext, stagingArea, up.genesisHash)
		if err != nil {
			return err
		}
		if !hasGenesis {
			return errors.Wrapf(ruleerrors.ErrUnexpectedGenesis, "database was initialized with "+
				"a genesis other than %s", up.genesisHash)
		}
		return nil
	}

	genesisHash, err := up.validateGenesis(genesis)
	if err != nil {
		return err
	}

	up.unitStore.Stage(stagingArea, genesisHash, genesis)
	up.unitPropsStore.Stage(stagingArea, genesisHash, &model.UnitProps{
		Level:          0,
		WitnessedLevel: 0,
		MainChainIndex: 0,
		HasMCI:         true,
		IsOnMainChain:  true,
		IsStable:       true,
		Sequence:       externalapi.SequenceGood,
		Timestamp:      genesis.Timestamp,
		Authors:        genesis.AuthorAddresses(),
	})
	up.unitRelationStore.StageUnitRelation(stagingArea, genesisHash, &model.UnitRelations{
		Parents:  []*externalapi.DomainHash{},
		Children: []*externalapi.DomainHash{},
	})
	up.witnessListStore.Stage(stagingArea, genesisHash, genesis.Witnesses)
	up.stageDefinitionUnits(stagingArea, genesisHash, genesis)

	ball, err := consensushashing.BallHash(genesisHash, nil, nil, false)
	if err != nil {
		return err
	}
	up.ballStore.Stage(stagingArea, genesisHash, ball)

	up.mainChainStore.StageMainChainUnit(stagingArea, 0, genesisHash)
	up.mainChainStore.StageUnitAtMCI(stagingArea, 0, genesisHash)
	up.consensusStateStore.StageLastStableMCI(stagingArea, 0)
	up.consensusStateStore.StageLastMCI(stagingArea, 0)
	up.consensusStateStore.StageTips(stagingArea, []*externalapi.DomainHash{genesisHash})

	err = staging.CommitAllChanges(up.databaseContext, stagingArea)
	if err != nil {
		return err
	}
	log.Infof("Initialized the DAG with genesis %s (ball %s)", genesisHash, ball)
	return nil
}

// validateGenesis checks that genesis is the expected unit, that it declares
// its witnesses and that every author signed it
func (up *unitProcessor) validateGenesis(genesis *externalapi.DomainUnit) (*externalapi.DomainHash, error) {
	genesisHash, err := consensushashing.UnitHash(genesis)
	if err != nil {
		return nil, err
	}
	if !genesisHash.Equal(up.genesisHash) {
		return nil, errors.Wrapf(ruleerrors.ErrUnexpectedGenesis, "genesis hashes to %s instead of %s",
			genesisHash, up.genesisHash)
	}
	if !genesis.IsGenesis() {
		return nil, errors.Wrapf(ruleerrors.ErrUnexpectedGenesis, "genesis has parents")
	}
	if len(genesis.Witnesses) != up.countWitnesses {
		return nil, errors.Wrapf(ruleerrors.ErrInvalidWitnessList, "genesis declares %d witnesses "+
			"instead of %d", len(genesis.Witnesses), up.countWitnesses)
	}
	for _, author := range genesis.Authors {
		if consensushashing.AddressFromDefinition(author.Definition) != author.Address {
			return nil, errors.Wrapf(ruleerrors.ErrInvalidDefinition, "genesis author %s does not "+
				"match its definition", author.Address)
		}
		if !consensushashing.VerifySignature(author.Definition, genesisHash, author.Signature) {
			return nil, errors.Wrapf(ruleerrors.ErrInvalidSignature, "genesis author %s did not sign it",
				author.Address)
		}
	}
	return genesisHash, nil
}
