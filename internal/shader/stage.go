package shader

import "strings"

// Stage is a shader pipeline stage code as it appears on the command line.
type Stage string

const (
	StageVertex   Stage = "vs"
	StagePixel    Stage = "ps"
	StageGeometry Stage = "gs"
	StageHull     Stage = "hs"
	StageDomain   Stage = "ds"
	StageCompute  Stage = "cs"
)

// KnownStages lists the recognized stage codes in pipeline order.
var KnownStages = []Stage{StageVertex, StagePixel, StageGeometry, StageHull, StageDomain, StageCompute}

// Known reports whether s is one of KnownStages.
// Unknown stages are still compiled; the compiler rejects them itself.
func (s Stage) Known() bool {
	for _, k := range KnownStages {
		if s == k {
			return true
		}
	}
	return false
}

func (s Stage) String() string { return string(s) }

// ParseTargets splits a comma separated target list, keeping caller order.
// Whitespace around codes is trimmed and empty entries are dropped.
func ParseTargets(raw string) []Stage {
	parts := strings.Split(raw, ",")
	out := make([]Stage, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, Stage(p))
	}
	return out
}
