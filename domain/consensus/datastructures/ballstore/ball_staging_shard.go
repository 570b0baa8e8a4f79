package ballstore

import (
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
)

type ballStagingShard struct {
	store      *ballStore
	ballByUnit map[externalapi.DomainHash]*externalapi.DomainHash
	unitByBall map[externalapi.DomainHash]*externalapi.DomainHash
}

func (bs *ballStore) stagingShard(stagingArea *model.StagingArea) *ballStagingShard {
	return stagingArea.GetOrCreateShard("BallStore", func() model.StagingShard {
		return &ballStagingShard{
			store:      bs,
			ballByUnit: make(map[externalapi.DomainHash]*externalapi.DomainHash),
			unitByBall: make(map[externalapi.DomainHash]*externalapi.DomainHash),
		}
	}).(*ballStagingShard)
}

func (bss *ballStagingShard) Commit(dbTx model.DBTransaction) error {
	for unitHash, ball := range bss.ballByUnit {
		unitHashCopy := unitHash
		err := dbTx.Put(ballByUnitBucket.Key(unitHashCopy.ByteSlice()), ball.ByteSlice())
		if err != nil {
			return err
		}
		err = dbTx.Put(unitByBallBucket.Key(ball.ByteSlice()), unitHashCopy.ByteSlice())
		if err != nil {
			return err
		}
		bss.store.ballByUnitCache.Add(&unitHashCopy, ball)
		bss.store.unitByBallCache.Add(ball, &unitHashCopy)
	}
	return nil
}

func (bss *ballStagingShard) isStaged() bool {
	return len(bss.ballByUnit) != 0
}
