package domain

// Tier is the coarse rarity/series category used for channel routing policy.
type Tier string

const (
	TierT1      Tier = "T1"
	TierT2      Tier = "T2"
	TierSmr25   Tier = "Smr25"
	TierXmas25  Tier = "Xmas25"
	TierUnknown Tier = "Unknown"
)

// ParseTier parses a tier name. Unrecognized names map to TierUnknown.
func ParseTier(s string) Tier {
	switch s {
	case "T1":
		return TierT1
	case "T2":
		return TierT2
	case "Smr25":
		return TierSmr25
	case "Xmas25":
		return TierXmas25
	}
	return TierUnknown
}

func (t Tier) String() string {
	return string(t)
}

// TierForFingerprint resolves a card tier from an opaque thumbnail
// fingerprint. Unmatched fingerprints default to T1, never an error.
func TierForFingerprint(table map[string]Tier, fingerprint string) Tier {
	if tier, ok := table[fingerprint]; ok {
		return tier
	}
	return TierT1
}

// CardRecord is a card parsed out of a companion reply. Immutable once built.
type CardRecord struct {
	Code   string
	Print  string
	Tier   Tier
	Series string
	Owner  string
}
