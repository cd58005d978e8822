package domain

// PolicyRule is the static content policy for one channel: the tier the
// channel accepts and an optional inclusive print range. MaxPrint 0 means
// no range is enforced.
type PolicyRule struct {
	Tier     Tier
	MinPrint int
	MaxPrint int
}

// HasRange reports whether the rule enforces a print range.
func (r PolicyRule) HasRange() bool {
	return r.MaxPrint > 0
}

// VerdictKind classifies a policy decision.
type VerdictKind int

const (
	Accept VerdictKind = iota
	RejectMalformedCommand
	RejectTierMismatch
	RejectPrintOutOfRange
)

// Verdict is the outcome of evaluating a record against a channel rule.
// Tier and print context is populated for the rejection kinds that need it
// in warning templates.
type Verdict struct {
	Kind         VerdictKind
	ActualTier   Tier
	ExpectedTier Tier
	Print        int
	MinPrint     int
	MaxPrint     int
}

// ViewVerb reports whether verb is one of the recognized view-command
// aliases.
func ViewVerb(verb string) bool {
	return verb == "nv" || verb == "nview"
}

// Evaluate runs the ordered policy decision table for a channel rule.
// A malformed leading verb rejects before any record inspection; a tier
// mismatch rejects before the print range is considered.
func Evaluate(rule PolicyRule, verb string, record CardRecord) Verdict {
	if !ViewVerb(verb) {
		return Verdict{Kind: RejectMalformedCommand}
	}

	if record.Tier != rule.Tier {
		return Verdict{
			Kind:         RejectTierMismatch,
			ActualTier:   record.Tier,
			ExpectedTier: rule.Tier,
		}
	}

	if rule.HasRange() {
		n, ok := PrintNumber(record.Print)
		if ok && (n < rule.MinPrint || n > rule.MaxPrint) {
			return Verdict{
				Kind:     RejectPrintOutOfRange,
				Print:    n,
				MinPrint: rule.MinPrint,
				MaxPrint: rule.MaxPrint,
			}
		}
	}

	return Verdict{Kind: Accept}
}
