package types

// LabelTable maps label codes to the text shown in the dashboard. Treat it as
// read-only once built; the engine never writes to it.
type LabelTable struct {
	StrengthNames        map[StrengthLabel]string
	StrengthDescriptions map[StrengthLabel]string
	MomentumNames        map[MomentumLabel]string
	MomentumDescriptions map[MomentumLabel]string
}

// DefaultLabels returns the English tooltip tables.
func DefaultLabels() LabelTable {
	return LabelTable{
		StrengthNames: map[StrengthLabel]string{
			VeryStrong: "Very Strong",
			Strong:     "Strong",
			Neutral:    "Neutral",
			Weak:       "Weak",
			VeryWeak:   "Very Weak",
		},
		StrengthDescriptions: map[StrengthLabel]string{
			VeryStrong: "Significantly outperforming (top 10%)",
			Strong:     "Outperforming the average",
			Neutral:    "Performing around average",
			Weak:       "Underperforming the average",
			VeryWeak:   "Significantly underperforming (bottom 10%)",
		},
		MomentumNames: map[MomentumLabel]string{
			Accelerating: "Accelerating",
			Steady:       "Steady",
			Fading:       "Fading",
		},
		MomentumDescriptions: map[MomentumLabel]string{
			Accelerating: "Relative performance improving",
			Steady:       "Relative performance stable",
			Fading:       "Relative performance declining",
		},
	}
}

// StrengthDescription returns "" for unknown codes.
func (t LabelTable) StrengthDescription(l StrengthLabel) string {
	return t.StrengthDescriptions[l]
}

// MomentumDescription returns "" for unknown codes.
func (t LabelTable) MomentumDescription(l MomentumLabel) string {
	return t.MomentumDescriptions[l]
}
