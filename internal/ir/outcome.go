package ir

// Outcome tags the result of extracting or converting a declaration. Only
// OutcomeConverted carries a usable declaration; every other value is a normal,
// reportable result and never an error.
type Outcome string

const (
	OutcomeConverted       Outcome = "converted"
	OutcomeTooSmall        Outcome = "too_small"
	OutcomeSkipped         Outcome = "skipped"
	OutcomeNoDeclaration   Outcome = "no_declaration"
	OutcomeInvalidName     Outcome = "invalid_name"
	OutcomeUnparseableBody Outcome = "unparseable_body"
)

// MatchStatus is the state of a single pattern matcher.
type MatchStatus int

const (
	NoMatch MatchStatus = iota
	Matched
	Malformed
)

func (s MatchStatus) String() string {
	switch s {
	case Matched:
		return "matched"
	case Malformed:
		return "malformed"
	default:
		return "no match"
	}
}

// Signature is the identity of a declaration: its kind, name and supertype.
type Signature struct {
	Kind  Kind
	Name  string
	Super string
}

// SignatureMatch is the tagged result of signature extraction. Reason is set
// for Malformed matches.
type SignatureMatch struct {
	Status    MatchStatus
	Signature Signature
	Reason    string
}

// Extraction is what a source plugin hands to the converter.
type Extraction struct {
	Outcome     Outcome
	Declaration *Declaration
	// Detail carries the offending kind and name for OutcomeInvalidName.
	Detail Signature
}

// Converted reports whether the extraction produced a declaration.
func (e Extraction) Converted() bool {
	return e.Outcome == OutcomeConverted && e.Declaration != nil
}
