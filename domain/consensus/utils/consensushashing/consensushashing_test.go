package consensushashing

import (
	"testing"

	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"golang.org/x/crypto/ed25519"
)

func testKey(seed byte) ed25519.PrivateKey {
	seedBytes := make([]byte, ed25519.SeedSize)
	seedBytes[0] = seed
	return ed25519.NewKeyFromSeed(seedBytes)
}

func testUnit(key ed25519.PrivateKey) *externalapi.DomainUnit {
	definition := key.Public().(ed25519.PublicKey)
	return &externalapi.DomainUnit{
		Version:   "1.0",
		Alt:       "1",
		Parents:   []*externalapi.DomainHash{externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{9})},
		Witnesses: []string{"W"},
		Authors: []*externalapi.UnitAuthor{
			{Address: AddressFromDefinition(definition), Definition: definition},
		},
		Payload:   []byte("hello"),
		Timestamp: 1,
	}
}

func TestStrippedUnitKeepsItsHash(t *testing.T) {
	unit := testUnit(testKey(1))
	unitHash, err := UnitHash(unit)
	if err != nil {
		t.Fatalf("UnitHash: %+v", err)
	}
	stripped, err := StripUnit(unit)
	if err != nil {
		t.Fatalf("StripUnit: %+v", err)
	}
	if len(stripped.Payload) != 0 {
		t.Fatalf("stripped unit still has a payload")
	}
	strippedHash, err := UnitHash(stripped)
	if err != nil {
		t.Fatalf("UnitHash: %+v", err)
	}
	if !unitHash.Equal(strippedHash) {
		t.Fatalf("stripping changed the unit hash")
	}

	unit.Payload = []byte("changed")
	changedHash, err := UnitHash(unit)
	if err != nil {
		t.Fatalf("UnitHash: %+v", err)
	}
	if changedHash.Equal(unitHash) {
		t.Fatalf("payload is not covered by the unit hash")
	}
}

func TestSignaturesAreNotCoveredByTheHash(t *testing.T) {
	key := testKey(2)
	unit := testUnit(key)
	address := unit.Authors[0].Address

	unitHash, err := SignUnit(unit, map[string]ed25519.PrivateKey{address: key})
	if err != nil {
		t.Fatalf("SignUnit: %+v", err)
	}
	hashAfterSigning, err := UnitHash(unit)
	if err != nil {
		t.Fatalf("UnitHash: %+v", err)
	}
	if !unitHash.Equal(hashAfterSigning) {
		t.Fatalf("signing changed the unit hash")
	}
	if !VerifySignature(unit.Authors[0].Definition, unitHash, unit.Authors[0].Signature) {
		t.Fatalf("valid signature rejected")
	}
	otherDefinition := testKey(3).Public().(ed25519.PublicKey)
	if VerifySignature(otherDefinition, unitHash, unit.Authors[0].Signature) {
		t.Fatalf("signature accepted under another definition")
	}

	err = ValidateJointHash(&externalapi.DomainJoint{UnitHash: unitHash, Unit: unit})
	if err != nil {
		t.Fatalf("ValidateJointHash: %+v", err)
	}
	err = ValidateJointHash(&externalapi.DomainJoint{UnitHash: unit.Parents[0], Unit: unit})
	if err == nil {
		t.Fatalf("ValidateJointHash accepted a wrong hash")
	}
}

func TestBallHash(t *testing.T) {
	unitHash := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1})
	ballA := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{2})
	ballB := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{3})

	ball1, err := BallHash(unitHash, []*externalapi.DomainHash{ballA, ballB}, nil, false)
	if err != nil {
		t.Fatalf("BallHash: %+v", err)
	}
	ball2, err := BallHash(unitHash, []*externalapi.DomainHash{ballB, ballA}, nil, false)
	if err != nil {
		t.Fatalf("BallHash: %+v", err)
	}
	if !ball1.Equal(ball2) {
		t.Fatalf("ball depends on parent order")
	}

	nonserialBall, err := BallHash(unitHash, []*externalapi.DomainHash{ballA, ballB}, nil, true)
	if err != nil {
		t.Fatalf("BallHash: %+v", err)
	}
	if nonserialBall.Equal(ball1) {
		t.Fatalf("ball doesn't depend on is_nonserial")
	}

	skiplistBall, err := BallHash(unitHash, []*externalapi.DomainHash{ballA}, []*externalapi.DomainHash{ballB}, false)
	if err != nil {
		t.Fatalf("BallHash: %+v", err)
	}
	if skiplistBall.Equal(ball1) {
		t.Fatalf("moving a ball from parents to skiplist kept the ball")
	}

	_, err = BallHash(unitHash, []*externalapi.DomainHash{nil}, nil, false)
	if err == nil {
		t.Fatalf("BallHash accepted a missing parent ball")
	}
}

func TestAddressLength(t *testing.T) {
	address := AddressFromDefinition(testKey(4).Public().(ed25519.PublicKey))
	if len(address) != 32 {
		t.Fatalf("expected a 32 character address, got %q", address)
	}
}
