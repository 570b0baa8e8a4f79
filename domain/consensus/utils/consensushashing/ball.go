package consensushashing

import (
	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/utils/objecthash"
)

// BallHash returns the ball of a stable unit. parentBalls and
// skiplistBalls are sorted before hashing, so their order doesn't matter.
func BallHash(unitHash *externalapi.DomainHash, parentBalls []*externalapi.DomainHash,
	skiplistBalls []*externalapi.DomainHash, isNonserial bool) (*externalapi.DomainHash, error) {

	if unitHash == nil {
		return nil, errors.New("missing unit hash")
	}
	object := objecthash.Object{"unit": unitHash}
	if len(parentBalls) > 0 {
		sorted, err := sortedCopy(parentBalls)
		if err != nil {
			return nil, err
		}
		object["parent_balls"] = sorted
	}
	if len(skiplistBalls) > 0 {
		sorted, err := sortedCopy(skiplistBalls)
		if err != nil {
			return nil, err
		}
		object["skiplist_balls"] = sorted
	}
	if isNonserial {
		object["is_nonserial"] = true
	}
	return objecthash.Hash(object)
}

// BallRecordHash recomputes the ball of a record from its contents
func BallRecordHash(record *externalapi.BallRecord) (*externalapi.DomainHash, error) {
	return BallHash(record.Unit, record.ParentBalls, record.SkiplistBalls, record.IsNonserial)
}

func sortedCopy(hashes []*externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	for _, hash := range hashes {
		if hash == nil {
			return nil, errors.New("missing ball")
		}
	}
	sorted := externalapi.CloneHashes(hashes)
	externalapi.SortHashes(sorted)
	return sorted, nil
}
