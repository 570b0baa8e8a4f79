package model

import "github.com/witnessdag/witnessd/domain/consensus/model/externalapi"

// UnitProps holds the consensus properties of a unit. Level, WitnessedLevel
// and BestParent are fixed when the unit is inserted. The main chain fields
// change while the unit is unstable and are frozen once IsStable is set.
type UnitProps struct {
	Level          uint64
	WitnessedLevel uint64
	BestParent     *externalapi.DomainHash

	MainChainIndex uint64
	HasMCI         bool
	IsOnMainChain  bool
	IsStable       bool

	Sequence       externalapi.Sequence
	HasContentHash bool
	Timestamp      int64
	Authors        []string
	LastBallUnit   *externalapi.DomainHash
}

// Clone returns a clone of UnitProps
func (up *UnitProps) Clone() *UnitProps {
	return &UnitProps{
		Level:          up.Level,
		WitnessedLevel: up.WitnessedLevel,
		BestParent:     up.BestParent,
		MainChainIndex: up.MainChainIndex,
		HasMCI:         up.HasMCI,
		IsOnMainChain:  up.IsOnMainChain,
		IsStable:       up.IsStable,
		Sequence:       up.Sequence,
		HasContentHash: up.HasContentHash,
		Timestamp:      up.Timestamp,
		Authors:        append([]string(nil), up.Authors...),
		LastBallUnit:   up.LastBallUnit,
	}
}

// IsNonserial returns whether the unit conflicts with another unit of its authors
func (up *UnitProps) IsNonserial() bool {
	return up.HasContentHash || up.Sequence != externalapi.SequenceGood
}

// IsAuthoredByAnyOf returns whether any of the unit authors is in addresses
func (up *UnitProps) IsAuthoredByAnyOf(addresses []string) bool {
	for _, author := range up.Authors {
		for _, address := range addresses {
			if author == address {
				return true
			}
		}
	}
	return false
}

// UnitRelations represents a unit's parent/child relations
type UnitRelations struct {
	Parents  []*externalapi.DomainHash
	Children []*externalapi.DomainHash
}

// Clone returns a clone of UnitRelations
func (br *UnitRelations) Clone() *UnitRelations {
	return &UnitRelations{
		Parents:  externalapi.CloneHashes(br.Parents),
		Children: externalapi.CloneHashes(br.Children),
	}
}
