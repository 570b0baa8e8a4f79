package bestparentselector

import (
	"testing"

	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
)

func TestLess(t *testing.T) {
	smallHash := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1})
	bigHash := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{2})

	tests := []struct {
		name          string
		propsA        *model.UnitProps
		propsB        *model.UnitProps
		expectedLess  bool
		expectedGreat bool
	}{
		{
			name:          "higher witnessed level wins",
			propsA:        &model.UnitProps{Level: 20, WitnessedLevel: 10},
			propsB:        &model.UnitProps{Level: 12, WitnessedLevel: 9},
			expectedLess:  true,
			expectedGreat: false,
		},
		{
			name:          "fewer levels since the witnessed level wins",
			propsA:        &model.UnitProps{Level: 12, WitnessedLevel: 10},
			propsB:        &model.UnitProps{Level: 13, WitnessedLevel: 10},
			expectedLess:  true,
			expectedGreat: false,
		},
		{
			name:          "smaller unit id breaks ties",
			propsA:        &model.UnitProps{Level: 12, WitnessedLevel: 10},
			propsB:        &model.UnitProps{Level: 12, WitnessedLevel: 10},
			expectedLess:  true,
			expectedGreat: false,
		},
	}

	for _, test := range tests {
		if result := less(smallHash, test.propsA, bigHash, test.propsB); result != test.expectedLess {
			t.Errorf("%s: expected less(A, B) to be %t but got %t", test.name, test.expectedLess, result)
		}
		if result := less(bigHash, test.propsB, smallHash, test.propsA); result != test.expectedGreat {
			t.Errorf("%s: expected less(B, A) to be %t but got %t", test.name, test.expectedGreat, result)
		}
	}
}
