package transform

import (
	"strings"

	"github.com/jumpingaccess/Hippodata2Equipe/internal/domain/model"
)

// Status classifies a competitor's aggregate result state.
type Status int

// Result statuses, in the order the source reports them.
const (
	StatusNormal Status = iota
	StatusRetired
	StatusEliminated
	StatusDisqualified
	StatusWithdrawn
	StatusNoShow

	// StatusUnknownSpecial is any other non-normal STATUS value. The
	// mapped rounds stay as reported but team scoring is suppressed.
	StatusUnknownSpecial
)

// statusOf classifies the RESULTTOTAL block. A STATUS of 1 (or a missing
// block) is a normal result; anything else is special, keyed off the
// status text when it is recognized.
func statusOf(total *model.ResultTotal) Status {
	if total == nil || total.Status == nil || total.Status.Int() == 1 {
		return StatusNormal
	}
	switch strings.ToLower(total.Text) {
	case "retired":
		return StatusRetired
	case "eliminated":
		return StatusEliminated
	case "disqualified":
		return StatusDisqualified
	case "withdrawn":
		return StatusWithdrawn
	case "no show":
		return StatusNoShow
	default:
		return StatusUnknownSpecial
	}
}

// special reports whether the status overrides normal round mapping.
func (s Status) special() bool {
	return s != StatusNormal
}

// Round numbers a class can run. Round one is the "ground" round; the
// Equipe field sets for rounds two to five follow a second naming scheme.
type Round int

// Rounds one to five.
const (
	RoundOne Round = iota + 1
	RoundTwo
	RoundThree
	RoundFour
	RoundFive
)

// withdrawnRound inspects the round name text of a withdrawn result to
// decide which round's fields receive the sentinel. Zero means the text
// matched no round: a full no-show.
func withdrawnRound(roundName string) Round {
	name := strings.ToLower(roundName)
	switch {
	case name == "jump-off" || strings.Contains(name, "round 2") || strings.Contains(name, "phase 2"):
		return RoundTwo
	case strings.Contains(name, "round 3") || strings.Contains(name, "phase 3"):
		return RoundThree
	case strings.Contains(name, "round 4") || strings.Contains(name, "phase 4"):
		return RoundFour
	case strings.Contains(name, "round 5") || strings.Contains(name, "phase 5"):
		return RoundFive
	default:
		return 0
	}
}
