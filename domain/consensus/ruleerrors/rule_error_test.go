package ruleerrors

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
)

func TestCategories(t *testing.T) {
	tests := []struct {
		err      error
		category Category
	}{
		{errors.Wrapf(ErrRelatedParents, "parent %d", 1), CategoryStructural},
		{errors.WithStack(ErrStableUnitRemovedFromMainChain), CategoryConsistencyViolation},
		{errors.Wrap(ErrMissingWitnessDefinition, "witness"), CategoryIncompleteProof},
		{ErrHashTreeSpanTooLarge, CategoryResourceBoundExceeded},
		{NewErrMissingParents([]*externalapi.DomainHash{{}}), CategoryStructural},
		{NewErrStableMainChainConflict(5, 3, &externalapi.DomainHash{}), CategoryConsistencyViolation},
	}

	for _, test := range tests {
		category, ok := CategoryOf(test.err)
		if !ok {
			t.Fatalf("CategoryOf(%s) found no RuleError", test.err)
		}
		if category != test.category {
			t.Fatalf("CategoryOf(%s): want %s, got %s", test.err, test.category, category)
		}
	}

	if _, ok := CategoryOf(errors.New("plain")); ok {
		t.Fatalf("CategoryOf unexpectedly categorized a plain error")
	}
}

func TestErrorsIs(t *testing.T) {
	err := errors.Wrapf(ErrIncompatibleWitnessList, "unit %s", "x")
	if !errors.Is(err, ErrIncompatibleWitnessList) {
		t.Fatalf("errors.Is didn't find the wrapped rule error")
	}
	if errors.Is(err, ErrRelatedParents) {
		t.Fatalf("errors.Is matched an unrelated rule error")
	}
	if !IsStructuralError(err) || IsConsistencyViolation(err) {
		t.Fatalf("unexpected category predicates for %s", err)
	}

	var missingParents ErrMissingParents
	if !errors.As(NewErrMissingParents(nil), &missingParents) {
		t.Fatalf("errors.As didn't find ErrMissingParents")
	}
}
