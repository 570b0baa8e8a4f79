package model

// StabilityManager advances the last stable main chain index
type StabilityManager interface {
	AdvanceStability(stagingArea *StagingArea) (newlyStableMCIs []uint64, err error)
	IsNextMCIStable(stagingArea *StagingArea) (bool, error)
}
