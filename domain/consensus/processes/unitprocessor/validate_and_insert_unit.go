package unitprocessor

import (
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/utils/hashset"
	"github.com/witnessdag/witnessd/domain/consensus/utils/staging"
	"github.com/witnessdag/witnessd/infrastructure/logger"
)

func (up *unitProcessor) validateAndInsertUnit(unit *externalapi.DomainUnit,
	sequence externalapi.Sequence) (*model.UnitInsertionResult, error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, "validateAndInsertUnit")
	defer onEnd()

	err := up.unitValidator.ValidateUnitInIsolation(unit)
	if err != nil {
		return nil, err
	}

	stagingArea := model.NewStagingArea()
	validatedUnit, err := up.unitValidator.ValidateUnitInContext(stagingArea, unit, sequence)
	if err != nil {
		return nil, err
	}

	err = up.stageUnit(stagingArea, unit, validatedUnit)
	if err != nil {
		return nil, err
	}

	mainChainChanges, err := up.mainChainManager.UpdateMainChain(stagingArea)
	if err != nil {
		return nil, err
	}

	newlyStableMCIs, err := up.stabilityManager.AdvanceStability(stagingArea)
	if err != nil {
		return nil, err
	}

	err = staging.CommitAllChanges(up.databaseContext, stagingArea)
	if err != nil {
		return nil, err
	}

	log.Debugf("Unit %s inserted at level %d with witnessed level %d", validatedUnit.UnitHash,
		validatedUnit.Props.Level, validatedUnit.Props.WitnessedLevel)
	if len(newlyStableMCIs) > 0 {
		log.Infof("Stabilized main chain indexes %d to %d", newlyStableMCIs[0],
			newlyStableMCIs[len(newlyStableMCIs)-1])
	}

	return &model.UnitInsertionResult{
		UnitHash:         validatedUnit.UnitHash,
		MainChainChanges: mainChainChanges,
		NewlyStableMCIs:  newlyStableMCIs,
	}, nil
}

func (up *unitProcessor) stageUnit(stagingArea *model.StagingArea, unit *externalapi.DomainUnit,
	validatedUnit *model.ValidatedUnit) error {

	unitHash := validatedUnit.UnitHash
	up.unitStore.Stage(stagingArea, unitHash, unit)
	up.unitPropsStore.Stage(stagingArea, unitHash, validatedUnit.Props)
	up.witnessListStore.Stage(stagingArea, unitHash, validatedUnit.Witnesses)
	up.stageDefinitionUnits(stagingArea, unitHash, unit)

	up.unitRelationStore.StageUnitRelation(stagingArea, unitHash, &model.UnitRelations{
		Parents:  externalapi.CloneHashes(unit.Parents),
		Children: []*externalapi.DomainHash{},
	})
	for _, parent := range unit.Parents {
		parentRelations, err := up.unitRelationStore.UnitRelation(up.databaseContext, stagingArea, parent)
		if err != nil {
			return err
		}
		parentRelations = parentRelations.Clone()
		parentRelations.Children = append(parentRelations.Children, unitHash)
		up.unitRelationStore.StageUnitRelation(stagingArea, parent, parentRelations)
	}

	return up.updateTips(stagingArea, unitHash, unit.Parents)
}

func (up *unitProcessor) stageDefinitionUnits(stagingArea *model.StagingArea, unitHash *externalapi.DomainHash,
	unit *externalapi.DomainUnit) {

	staged := make(map[string]struct{})
	stage := func(address string) {
		if _, ok := staged[address]; ok {
			return
		}
		staged[address] = struct{}{}
		up.definitionStore.StageDefinitionUnit(stagingArea, address, unitHash)
	}

	for _, author := range unit.Authors {
		if len(author.Definition) > 0 {
			stage(author.Address)
		}
	}
	for _, change := range unit.DefinitionChanges {
		stage(change.Address)
	}
}

func (up *unitProcessor) updateTips(stagingArea *model.StagingArea, unitHash *externalapi.DomainHash,
	parents []*externalapi.DomainHash) error {

	tips, err := up.consensusStateStore.Tips(up.databaseContext, stagingArea)
	if err != nil {
		return err
	}

	newTips := hashset.NewFromSlice(tips...)
	for _, parent := range parents {
		newTips.Remove(parent)
	}
	newTips.Add(unitHash)
	up.consensusStateStore.StageTips(stagingArea, newTips.ToSortedSlice())
	return nil
}
