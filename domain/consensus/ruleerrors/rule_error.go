package ruleerrors

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
)

// These constants are used to identify a specific RuleError.
var (
	// ErrNoParents indicates that a non-genesis unit has no parents
	ErrNoParents = newStructuralError("ErrNoParents")

	// ErrTooManyParents indicates that a unit references more parents than allowed
	ErrTooManyParents = newStructuralError("ErrTooManyParents")

	// ErrParentsNotSorted indicates that parents are either unsorted or repeated
	ErrParentsNotSorted = newStructuralError("ErrParentsNotSorted")

	// ErrRelatedParents indicates that one parent of a unit is an ancestor of another
	ErrRelatedParents = newStructuralError("ErrRelatedParents")

	// ErrUnexpectedGenesis indicates a parentless unit that isn't the genesis of the network
	ErrUnexpectedGenesis = newStructuralError("ErrUnexpectedGenesis")

	// ErrDuplicateUnit indicates a unit with the same hash already exists
	ErrDuplicateUnit = newStructuralError("ErrDuplicateUnit")

	// ErrInvalidWitnessList indicates that a witness list is of the wrong
	// size, has repetitions or malformed addresses
	ErrInvalidWitnessList = newStructuralError("ErrInvalidWitnessList")

	// ErrWitnessListAmbiguous indicates a unit that sets both or none of
	// witnesses and witness_list_unit
	ErrWitnessListAmbiguous = newStructuralError("ErrWitnessListAmbiguous")

	// ErrInvalidWitnessListUnit indicates a witness list unit that is unknown,
	// unstable or declares no witnesses
	ErrInvalidWitnessListUnit = newStructuralError("ErrInvalidWitnessListUnit")

	// ErrIncompatibleWitnessList indicates that a unit's witness list differs
	// from the witness list of one of its parents by more than the allowed
	// number of mutations
	ErrIncompatibleWitnessList = newStructuralError("ErrIncompatibleWitnessList")

	// ErrNoAuthors indicates a unit without authors
	ErrNoAuthors = newStructuralError("ErrNoAuthors")

	// ErrTooManyAuthors indicates a unit with more authors than allowed
	ErrTooManyAuthors = newStructuralError("ErrTooManyAuthors")

	// ErrAuthorsNotSorted indicates authors that are either unsorted or repeated
	ErrAuthorsNotSorted = newStructuralError("ErrAuthorsNotSorted")

	// ErrInvalidDefinition indicates an author definition that doesn't match its address
	ErrInvalidDefinition = newStructuralError("ErrInvalidDefinition")

	// ErrInvalidSignature indicates an author signature that doesn't verify
	ErrInvalidSignature = newStructuralError("ErrInvalidSignature")

	// ErrInvalidDefinitionChange indicates a malformed definition change
	ErrInvalidDefinitionChange = newStructuralError("ErrInvalidDefinitionChange")

	// ErrContentHashWithContent indicates a stripped unit that still carries content
	ErrContentHashWithContent = newStructuralError("ErrContentHashWithContent")

	// ErrWitnessedLevelRetreat indicates a unit whose witnessed level is lower
	// than the witnessed level of its best parent
	ErrWitnessedLevelRetreat = newStructuralError("ErrWitnessedLevelRetreat")

	// ErrTimestampRetreat indicates a unit with a timestamp lower than one of its parents'
	ErrTimestampRetreat = newStructuralError("ErrTimestampRetreat")

	// ErrMissingLastBall indicates a non-genesis unit without a last ball reference
	ErrMissingLastBall = newStructuralError("ErrMissingLastBall")

	// ErrInvalidLastBall indicates a last ball that doesn't match the ball of
	// the last ball unit, or a last ball unit that is not on the main chain
	ErrInvalidLastBall = newStructuralError("ErrInvalidLastBall")

	// ErrLastBallRetreat indicates a last ball that is older than the last ball of one of the parents
	ErrLastBallRetreat = newStructuralError("ErrLastBallRetreat")

	// ErrUnitHashMismatch indicates a joint whose claimed unit hash is not the hash of its unit
	ErrUnitHashMismatch = newStructuralError("ErrUnitHashMismatch")

	// ErrBallHashMismatch indicates a ball that is not the hash of its components
	ErrBallHashMismatch = newStructuralError("ErrBallHashMismatch")

	// ErrInvalidWitnessProof indicates a malformed witness proof
	ErrInvalidWitnessProof = newStructuralError("ErrInvalidWitnessProof")

	// ErrInvalidCatchupRequest indicates a malformed catchup request
	ErrInvalidCatchupRequest = newStructuralError("ErrInvalidCatchupRequest")

	// ErrInvalidCatchupChain indicates a catchup chain whose joints don't link up
	ErrInvalidCatchupChain = newStructuralError("ErrInvalidCatchupChain")

	// ErrInvalidHashTree indicates a hash tree request or response that
	// doesn't match the stable main chain
	ErrInvalidHashTree = newStructuralError("ErrInvalidHashTree")

	// ErrUnknownBall indicates a ball that is not known to the node
	ErrUnknownBall = newStructuralError("ErrUnknownBall")

	// ErrStableUnitRemovedFromMainChain indicates that a main chain update
	// tried to unassign a stable main chain index
	ErrStableUnitRemovedFromMainChain = newConsistencyViolation("ErrStableUnitRemovedFromMainChain")

	// ErrStableUnitReassigned indicates an attempt to change the main chain
	// properties of a stable unit
	ErrStableUnitReassigned = newConsistencyViolation("ErrStableUnitReassigned")

	// ErrStabilityRetreat indicates an attempt to move the last stable
	// main chain index backwards
	ErrStabilityRetreat = newConsistencyViolation("ErrStabilityRetreat")

	// ErrConsensusHalted is returned for every write once a consistency
	// violation has been detected
	ErrConsensusHalted = newConsistencyViolation("ErrConsensusHalted")

	// ErrNotEnoughWitnesses indicates a witness proof where less than a
	// majority of the witnesses authored unstable main chain units
	ErrNotEnoughWitnesses = newIncompleteProof("ErrNotEnoughWitnesses")

	// ErrNoLastBallUnits indicates a witness proof that references no last ball
	ErrNoLastBallUnits = newIncompleteProof("ErrNoLastBallUnits")

	// ErrMissingWitnessDefinition indicates a witness whose definition is not
	// found in the witness proof
	ErrMissingWitnessDefinition = newIncompleteProof("ErrMissingWitnessDefinition")

	// ErrHashTreeSpanTooLarge indicates a hash tree request spanning more
	// main chain indexes than allowed
	ErrHashTreeSpanTooLarge = newResourceBoundExceeded("ErrHashTreeSpanTooLarge")

	// ErrTooManyUnitsInRange indicates a main chain index range holding more units than allowed
	ErrTooManyUnitsInRange = newResourceBoundExceeded("ErrTooManyUnitsInRange")

	// ErrAltBranchTooLarge indicates alternative branches too large to bound
	ErrAltBranchTooLarge = newResourceBoundExceeded("ErrAltBranchTooLarge")

	// ErrTooManyParentsToCheck indicates a related-parents check that ran out of budget
	ErrTooManyParentsToCheck = newResourceBoundExceeded("ErrTooManyParentsToCheck")

	// ErrCatchupChainTooLong indicates a catchup chain longer than allowed
	ErrCatchupChainTooLong = newResourceBoundExceeded("ErrCatchupChainTooLong")
)

// ErrAlreadyCurrent is returned when the requester doesn't need a witness
// proof or catchup chain. It is not a rule error.
var ErrAlreadyCurrent = errors.New("already current")

// Category classifies RuleErrors by how their callers must react
type Category uint8

// Category values
const (
	// CategoryStructural is a rejection of a single input. The
	// offending input is dropped and the node carries on.
	CategoryStructural Category = iota + 1

	// CategoryConsistencyViolation is fatal. The node halts writes and
	// alerts.
	CategoryConsistencyViolation

	// CategoryIncompleteProof means a proof lacks data needed to verify
	// it. The proof is rejected.
	CategoryIncompleteProof

	// CategoryResourceBoundExceeded means a request was refused before
	// doing the work.
	CategoryResourceBoundExceeded
)

var categoryStrings = map[Category]string{
	CategoryStructural:            "StructuralError",
	CategoryConsistencyViolation:  "ConsistencyViolation",
	CategoryIncompleteProof:       "IncompleteProof",
	CategoryResourceBoundExceeded: "ResourceBoundExceeded",
}

func (c Category) String() string {
	if str, ok := categoryStrings[c]; ok {
		return str
	}
	return fmt.Sprintf("Category(%d)", c)
}

// RuleError identifies a rule violation. It is used to indicate that
// processing of a unit, proof or request failed due to one of the many
// validation rules. The caller can use type assertions to determine if
// a failure was specifically due to a rule violation, and use the
// Category to decide how to react.
type RuleError struct {
	message  string
	category Category
	inner    error
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	if e.inner != nil {
		return e.message + ": " + e.inner.Error()
	}
	return e.message
}

// Unwrap satisfies the errors.Unwrap interface
func (e RuleError) Unwrap() error {
	return e.inner
}

// Cause satisfies the github.com/pkg/errors.Cause interface
func (e RuleError) Cause() error {
	return e.inner
}

// Code returns the stable identifier of the rule
func (e RuleError) Code() string {
	return e.message
}

// Category returns the category of the rule
func (e RuleError) Category() Category {
	return e.category
}

func newStructuralError(message string) RuleError {
	return RuleError{message: message, category: CategoryStructural}
}

func newConsistencyViolation(message string) RuleError {
	return RuleError{message: message, category: CategoryConsistencyViolation}
}

func newIncompleteProof(message string) RuleError {
	return RuleError{message: message, category: CategoryIncompleteProof}
}

func newResourceBoundExceeded(message string) RuleError {
	return RuleError{message: message, category: CategoryResourceBoundExceeded}
}

// CategoryOf returns the category of the RuleError wrapped by err, if any
func CategoryOf(err error) (Category, bool) {
	var ruleErr RuleError
	if !errors.As(err, &ruleErr) {
		return 0, false
	}
	return ruleErr.category, true
}

// IsStructuralError returns whether err is a StructuralError
func IsStructuralError(err error) bool {
	category, ok := CategoryOf(err)
	return ok && category == CategoryStructural
}

// IsConsistencyViolation returns whether err is a ConsistencyViolation
func IsConsistencyViolation(err error) bool {
	category, ok := CategoryOf(err)
	return ok && category == CategoryConsistencyViolation
}

// IsIncompleteProof returns whether err is an IncompleteProof
func IsIncompleteProof(err error) bool {
	category, ok := CategoryOf(err)
	return ok && category == CategoryIncompleteProof
}

// IsResourceBoundExceeded returns whether err is a ResourceBoundExceeded
func IsResourceBoundExceeded(err error) bool {
	category, ok := CategoryOf(err)
	return ok && category == CategoryResourceBoundExceeded
}

// ErrMissingParents indicates units that are referenced but not known
type ErrMissingParents struct {
	MissingParentHashes []*externalapi.DomainHash
}

func (e ErrMissingParents) Error() string {
	return fmt.Sprintf("missing the following parent hashes: %v", e.MissingParentHashes)
}

// NewErrMissingParents returns a StructuralError wrapping ErrMissingParents
func NewErrMissingParents(missingParentHashes []*externalapi.DomainHash) error {
	return errors.WithStack(RuleError{
		message:  "ErrMissingParents",
		category: CategoryStructural,
		inner:    ErrMissingParents{missingParentHashes},
	})
}

// ErrStableMainChainConflict carries the details of a consistency violation
// in the main chain
type ErrStableMainChainConflict struct {
	LastStableMCI   uint64
	IntersectionMCI uint64
	Tip             *externalapi.DomainHash
}

func (e ErrStableMainChainConflict) Error() string {
	return fmt.Sprintf("main chain from tip %s meets the stable main chain at mci %d, "+
		"below the last stable mci %d", e.Tip, e.IntersectionMCI, e.LastStableMCI)
}

// NewErrStableMainChainConflict returns a ConsistencyViolation wrapping ErrStableMainChainConflict
func NewErrStableMainChainConflict(lastStableMCI, intersectionMCI uint64, tip *externalapi.DomainHash) error {
	return errors.WithStack(RuleError{
		message:  "ErrStableMainChainConflict",
		category: CategoryConsistencyViolation,
		inner:    ErrStableMainChainConflict{lastStableMCI, intersectionMCI, tip},
	})
}
