package externalapi

// DomainUnit is the domain representation of a unit: a node of the DAG
// that references one or more parent units.
type DomainUnit struct {
	Version string `json:"version"`
	Alt     string `json:"alt"`

	Parents      []*DomainHash `json:"parent_units,omitempty"`
	LastBall     *DomainHash   `json:"last_ball,omitempty"`
	LastBallUnit *DomainHash   `json:"last_ball_unit,omitempty"`

	// Exactly one of WitnessListUnit and Witnesses is set
	WitnessListUnit *DomainHash `json:"witness_list_unit,omitempty"`
	Witnesses       []string    `json:"witnesses,omitempty"`

	Authors           []*UnitAuthor       `json:"authors"`
	DefinitionChanges []*DefinitionChange `json:"definition_changes,omitempty"`
	Payload           []byte              `json:"payload,omitempty"`

	// ContentHash is set instead of DefinitionChanges and Payload once the
	// content of a nonserial unit has been stripped
	ContentHash *DomainHash `json:"content_hash,omitempty"`

	Timestamp int64 `json:"timestamp"`
}

// UnitAuthor is an address that signed a unit
type UnitAuthor struct {
	Address string `json:"address"`

	// Definition is the ed25519 public key the address is derived from. It
	// is included the first time an address authors a unit, and the first
	// time after its definition has been changed.
	Definition []byte `json:"definition,omitempty"`
	Signature  []byte `json:"authentifier"`
}

// DefinitionChange moves an address to a new definition
type DefinitionChange struct {
	Address         string `json:"address"`
	DefinitionChash string `json:"definition_chash"`
}

// IsGenesis returns whether the unit has no parents
func (unit *DomainUnit) IsGenesis() bool {
	return len(unit.Parents) == 0
}

// AuthorAddresses returns the addresses of the unit authors
func (unit *DomainUnit) AuthorAddresses() []string {
	addresses := make([]string, len(unit.Authors))
	for i, author := range unit.Authors {
		addresses[i] = author.Address
	}
	return addresses
}

// Clone returns a clone of DomainUnit
func (unit *DomainUnit) Clone() *DomainUnit {
	authors := make([]*UnitAuthor, len(unit.Authors))
	for i, author := range unit.Authors {
		authors[i] = &UnitAuthor{
			Address:    author.Address,
			Definition: append([]byte(nil), author.Definition...),
			Signature:  append([]byte(nil), author.Signature...),
		}
	}
	definitionChanges := make([]*DefinitionChange, len(unit.DefinitionChanges))
	for i, change := range unit.DefinitionChanges {
		changeClone := *change
		definitionChanges[i] = &changeClone
	}

	return &DomainUnit{
		Version:           unit.Version,
		Alt:               unit.Alt,
		Parents:           CloneHashes(unit.Parents),
		LastBall:          unit.LastBall,
		LastBallUnit:      unit.LastBallUnit,
		WitnessListUnit:   unit.WitnessListUnit,
		Witnesses:         append([]string(nil), unit.Witnesses...),
		Authors:           authors,
		DefinitionChanges: definitionChanges,
		Payload:           append([]byte(nil), unit.Payload...),
		ContentHash:       unit.ContentHash,
		Timestamp:         unit.Timestamp,
	}
}

// DomainJoint is a unit together with the hash it claims to have and, once
// the unit is stable, its ball.
type DomainJoint struct {
	UnitHash *DomainHash `json:"unit"`
	Unit     *DomainUnit `json:"unit_content"`
	Ball     *DomainHash `json:"ball,omitempty"`
}

// Sequence is the serial status of a unit as determined by content
// validation.
type Sequence uint8

// Sequence values
const (
	SequenceGood Sequence = iota
	SequenceTempBad
	SequenceFinalBad
)

var sequenceStrings = map[Sequence]string{
	SequenceGood:     "good",
	SequenceTempBad:  "temp-bad",
	SequenceFinalBad: "final-bad",
}

func (s Sequence) String() string {
	if str, ok := sequenceStrings[s]; ok {
		return str
	}
	return "unknown"
}
