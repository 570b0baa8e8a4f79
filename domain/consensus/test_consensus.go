package consensus

import (
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/utils/consensushashing"
	"github.com/witnessdag/witnessd/domain/dagconfig"
	"golang.org/x/crypto/ed25519"
)

type testConsensus struct {
	*consensus
	params *dagconfig.Params

	// unitCounter makes the payload of every built unit unique
	unitCounter uint64

	dagTopologyManager          model.DAGTopologyManager
	witnessCompatibilityChecker model.WitnessCompatibilityChecker
	bestParentSelector          model.BestParentSelector
	witnessedLevelManager       model.WitnessedLevelManager
	mainChainManager            model.MainChainManager
	branchBoundCalculator       model.BranchBoundCalculator
	stabilityManager            model.StabilityManager
	unitValidator               model.UnitValidator

	unitRelationStore model.UnitRelationStore
	skiplistStore     model.SkiplistStore
	definitionStore   model.DefinitionStore
}

func (tc *testConsensus) BuildUnitWithParents(parentHashes []*externalapi.DomainHash,
	authorKeys []ed25519.PrivateKey) (*externalapi.DomainUnit, error) {

	unlock := tc.lock.HighPriorityReadGuard()
	defer unlock()

	stagingArea := model.NewStagingArea()
	parents := externalapi.CloneHashes(parentHashes)
	externalapi.SortHashes(parents)

	lastBall, lastBallUnit, err := tc.parentComposer.LastBallForParents(stagingArea, parents)
	if err != nil {
		return nil, err
	}

	timestamp := tc.params.GenesisUnit.Timestamp
	for _, parent := range parents {
		parentProps, err := tc.unitPropsStore.Get(tc.databaseContext, stagingArea, parent)
		if err != nil {
			return nil, err
		}
		if parentProps.Timestamp >= timestamp {
			timestamp = parentProps.Timestamp + 1
		}
	}

	authors := make([]*externalapi.UnitAuthor, 0, len(authorKeys))
	keysByAddress := make(map[string]ed25519.PrivateKey, len(authorKeys))
	for _, key := range authorKeys {
		definition := key.Public().(ed25519.PublicKey)
		address := consensushashing.AddressFromDefinition(definition)
		if _, ok := keysByAddress[address]; ok {
			continue
		}
		keysByAddress[address] = key

		author := &externalapi.UnitAuthor{Address: address}
		definitionUnits, err := tc.definitionStore.DefinitionUnits(tc.databaseContext, stagingArea, address)
		if err != nil {
			return nil, err
		}
		if len(definitionUnits) == 0 {
			author.Definition = append([]byte(nil), definition...)
		}
		authors = append(authors, author)
	}
	sort.Slice(authors, func(i, j int) bool {
		return authors[i].Address < authors[j].Address
	})

	unit := &externalapi.DomainUnit{
		Version:      tc.params.GenesisUnit.Version,
		Alt:          tc.params.GenesisUnit.Alt,
		Parents:      parents,
		LastBall:     lastBall,
		LastBallUnit: lastBallUnit,
		Witnesses:    append([]string(nil), tc.params.GenesisWitnesses...),
		Authors:      authors,
		Payload:      []byte(fmt.Sprintf("test unit %d", atomic.AddUint64(&tc.unitCounter, 1))),
		Timestamp:    timestamp,
	}
	_, err = consensushashing.SignUnit(unit, keysByAddress)
	if err != nil {
		return nil, err
	}
	return unit, nil
}

func (tc *testConsensus) AddUnit(parentHashes []*externalapi.DomainHash,
	authorKeys []ed25519.PrivateKey) (*externalapi.DomainHash, error) {

	unit, err := tc.BuildUnitWithParents(parentHashes, authorKeys)
	if err != nil {
		return nil, err
	}
	return tc.ValidateAndInsertUnit(unit, externalapi.SequenceGood)
}
