package catchupmanager

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/database"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/ruleerrors"
)

// GetHashTree returns the ball records of every unit with a main chain
// index in (mci(FromBall), mci(ToBall)], ordered by mci and level. Both
// balls must be stable main chain balls. Responses are cut at the first mci
// boundary after maxHashTreeBalls records, and the requester resumes with
// ContinueAfterMCI.
func (cm *catchupManager) GetHashTree(ctx context.Context, stagingArea *model.StagingArea,
	request *externalapi.HashTreeRequest) (*externalapi.HashTreeResponse, error) {

	fromMCI, err := cm.stableMainChainBallMCI(stagingArea, request.FromBall)
	if err != nil {
		return nil, err
	}
	toMCI, err := cm.stableMainChainBallMCI(stagingArea, request.ToBall)
	if err != nil {
		return nil, err
	}
	if fromMCI >= toMCI {
		return nil, errors.Wrapf(ruleerrors.ErrInvalidHashTree, "from mci %d is not below to mci %d",
			fromMCI, toMCI)
	}
	if toMCI-fromMCI > cm.maxHashTreeSpan {
		return nil, errors.Wrapf(ruleerrors.ErrHashTreeSpanTooLarge, "hash tree spans %d main chain indexes, "+
			"which is more than %d", toMCI-fromMCI, cm.maxHashTreeSpan)
	}

	startMCI := fromMCI + 1
	if request.ContinueAfterMCI != 0 {
		if request.ContinueAfterMCI <= fromMCI || request.ContinueAfterMCI >= toMCI {
			return nil, errors.Wrapf(ruleerrors.ErrInvalidHashTree, "cannot continue after mci %d in "+
				"the range (%d, %d]", request.ContinueAfterMCI, fromMCI, toMCI)
		}
		startMCI = request.ContinueAfterMCI + 1
	}

	response := &externalapi.HashTreeResponse{Balls: []*externalapi.BallRecord{}}
	for mci := startMCI; mci <= toMCI; mci++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}

		records, err := cm.ballRecordsAtMCI(stagingArea, mci)
		if err != nil {
			return nil, err
		}
		response.Balls = append(response.Balls, records...)
		response.LastMCI = mci

		if len(response.Balls) >= cm.maxHashTreeBalls {
			break
		}
	}
	response.Complete = response.LastMCI == toMCI

	log.Debugf("Serving %d balls in (%d, %d], complete: %t", len(response.Balls), startMCI-1,
		response.LastMCI, response.Complete)
	return response, nil
}

func (cm *catchupManager) stableMainChainBallMCI(stagingArea *model.StagingArea,
	ball *externalapi.DomainHash) (uint64, error) {

	if ball == nil {
		return 0, errors.Wrapf(ruleerrors.ErrInvalidHashTree, "hash tree request is missing a ball")
	}
	unitHash, err := cm.ballStore.UnitByBall(cm.databaseContext, stagingArea, ball)
	if database.IsNotFoundError(err) {
		return 0, errors.Wrapf(ruleerrors.ErrUnknownBall, "ball %s is not known", ball)
	}
	if err != nil {
		return 0, err
	}
	props, err := cm.unitPropsStore.Get(cm.databaseContext, stagingArea, unitHash)
	if err != nil {
		return 0, err
	}
	if !props.IsStable || !props.IsOnMainChain {
		return 0, errors.Wrapf(ruleerrors.ErrInvalidHashTree, "ball %s is not a stable main chain ball", ball)
	}
	return props.MainChainIndex, nil
}

func (cm *catchupManager) ballRecordsAtMCI(stagingArea *model.StagingArea, mci uint64) ([]*externalapi.BallRecord, error) {
	unitHashes, err := cm.mainChainStore.UnitsByMCIRange(cm.databaseContext, stagingArea, mci, mci, cm.maxHashTreeBalls)
	if err != nil {
		return nil, err
	}

	levels := make(map[externalapi.DomainHash]uint64, len(unitHashes))
	records := make([]*externalapi.BallRecord, len(unitHashes))
	for i, unitHash := range unitHashes {
		props, err := cm.unitPropsStore.Get(cm.databaseContext, stagingArea, unitHash)
		if err != nil {
			return nil, err
		}
		levels[*unitHash] = props.Level

		record, err := cm.ballRecord(stagingArea, unitHash, props)
		if err != nil {
			return nil, err
		}
		records[i] = record
	}

	sort.Slice(records, func(i, j int) bool {
		levelI, levelJ := levels[*records[i].Unit], levels[*records[j].Unit]
		if levelI != levelJ {
			return levelI < levelJ
		}
		return records[i].Unit.Less(records[j].Unit)
	})
	return records, nil
}

func (cm *catchupManager) ballRecord(stagingArea *model.StagingArea, unitHash *externalapi.DomainHash,
	props *model.UnitProps) (*externalapi.BallRecord, error) {

	ball, err := cm.ballStore.Ball(cm.databaseContext, stagingArea, unitHash)
	if err != nil {
		return nil, err
	}

	parents, err := cm.dagTopologyManager.Parents(stagingArea, unitHash)
	if err != nil {
		return nil, err
	}
	parentBalls, err := cm.balls(stagingArea, parents)
	if err != nil {
		return nil, err
	}

	skiplistUnits, err := cm.skiplistStore.SkiplistUnits(cm.databaseContext, stagingArea, unitHash)
	if err != nil {
		return nil, err
	}
	skiplistBalls, err := cm.balls(stagingArea, skiplistUnits)
	if err != nil {
		return nil, err
	}

	return &externalapi.BallRecord{
		Unit:          unitHash,
		Ball:          ball,
		ParentBalls:   parentBalls,
		SkiplistBalls: skiplistBalls,
		IsNonserial:   props.IsNonserial(),
	}, nil
}

func (cm *catchupManager) balls(stagingArea *model.StagingArea,
	unitHashes []*externalapi.DomainHash) ([]*externalapi.DomainHash, error) {

	balls := make([]*externalapi.DomainHash, len(unitHashes))
	for i, unitHash := range unitHashes {
		ball, err := cm.ballStore.Ball(cm.databaseContext, stagingArea, unitHash)
		if err != nil {
			return nil, err
		}
		balls[i] = ball
	}
	externalapi.SortHashes(balls)
	return balls, nil
}
