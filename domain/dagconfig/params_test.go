package dagconfig

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/utils/consensushashing"
)

func TestGenesis(t *testing.T) {
	for _, params := range []*Params{&SimnetParams, &DevnetParams} {
		if len(params.GenesisWitnesses) != params.CountWitnesses {
			t.Fatalf("%s: expected %d witnesses, got %d", params.Name,
				params.CountWitnesses, len(params.GenesisWitnesses))
		}
		for i := 1; i < len(params.GenesisWitnesses); i++ {
			if params.GenesisWitnesses[i-1] >= params.GenesisWitnesses[i] {
				t.Fatalf("%s: genesis witnesses are not sorted", params.Name)
			}
		}

		genesisHash, err := consensushashing.UnitHash(params.GenesisUnit)
		if err != nil {
			t.Fatalf("%s: UnitHash: %+v", params.Name, err)
		}
		if !genesisHash.Equal(params.GenesisHash) {
			t.Fatalf("%s: genesis hash mismatch", params.Name)
		}
		for _, author := range params.GenesisUnit.Authors {
			if !consensushashing.VerifySignature(author.Definition, genesisHash, author.Signature) {
				t.Fatalf("%s: invalid genesis signature by %s", params.Name, author.Address)
			}
		}
	}

	if SimnetParams.GenesisHash.Equal(DevnetParams.GenesisHash) {
		t.Fatalf("simnet and devnet share a genesis")
	}
}

func TestParamsByName(t *testing.T) {
	params, err := ParamsByName("devnet")
	if err != nil {
		t.Fatalf("ParamsByName: %+v", err)
	}
	if params != &DevnetParams {
		t.Fatalf("unexpected params %s", params.Name)
	}
	_, err = ParamsByName("nonet")
	if !errors.Is(err, ErrUnknownNet) {
		t.Fatalf("expected ErrUnknownNet, got %v", err)
	}
}
