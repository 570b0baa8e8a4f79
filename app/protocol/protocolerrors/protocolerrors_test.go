package protocolerrors

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/ruleerrors"
)

func TestConvertToBanningProtocolErrorIfRuleError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		expectBanning bool
	}{
		{
			name:          "structural",
			err:           errors.Wrapf(ruleerrors.ErrInvalidHashTree, "bad ball"),
			expectBanning: true,
		},
		{
			name:          "incomplete proof",
			err:           errors.Wrapf(ruleerrors.ErrMissingWitnessDefinition, "no definition"),
			expectBanning: true,
		},
		{
			name:          "resource bound",
			err:           errors.Wrapf(ruleerrors.ErrHashTreeSpanTooLarge, "too wide"),
			expectBanning: false,
		},
		{
			name:          "plain error",
			err:           errors.New("connection reset"),
			expectBanning: false,
		},
	}

	for _, test := range tests {
		converted := ConvertToBanningProtocolErrorIfRuleError(test.err, "test %s", test.name)
		if ShouldBan(converted) != test.expectBanning {
			t.Errorf("%s: expected banning %t, got %t", test.name, test.expectBanning, ShouldBan(converted))
		}
		if !errors.Is(converted, test.err) {
			t.Errorf("%s: converted error does not wrap the original", test.name)
		}
	}
}

func TestShouldBan(t *testing.T) {
	if ShouldBan(New(false, "timeout")) {
		t.Errorf("non-banning protocol error reported as banning")
	}
	if !ShouldBan(errors.Wrap(Errorf(true, "bad ball %d", 1), "outer")) {
		t.Errorf("wrapped banning protocol error not reported as banning")
	}
	if !IsProtocolError(New(false, "timeout")) || IsProtocolError(errors.New("other")) {
		t.Errorf("IsProtocolError misreports")
	}
}
