package transform

import (
	"time"

	"github.com/jumpingaccess/Hippodata2Equipe/internal/domain/equipe"
	"github.com/jumpingaccess/Hippodata2Equipe/internal/domain/identity"
	"github.com/jumpingaccess/Hippodata2Equipe/internal/domain/model"
	"github.com/jumpingaccess/Hippodata2Equipe/internal/domain/team"
)

// sentinel marks a round a rider did not complete; Equipe's scoring
// engine treats 999 faults/time as a non-score rather than a fault.
const sentinel = 999

// timestampLayout is Equipe's result_at format.
const timestampLayout = "2006-01-02 15:04:05"

// ResultInput carries one competition's resultlist document.
type ResultInput struct {
	CompetitionForeignID string
	EventID              string
	IsTeam               bool
	Detail               model.ClassDetail

	// Now supplies the result_at timestamps.
	Now time.Time
}

// ResultOutput is the per-competition result batch content.
type ResultOutput struct {
	// CompetitionUpdate carries the class-level allowed times (and the
	// team flag); nil when the source declares neither.
	CompetitionUpdate *equipe.Competition
	Starts            []equipe.Start

	// Skipped counts competitors dropped for lacking an identifiable
	// rider or horse.
	Skipped int
}

// Results maps one competition's per-round result documents onto Equipe
// start updates.
func Results(in ResultInput) ResultOutput {
	var out ResultOutput

	out.CompetitionUpdate = competitionUpdate(in)

	competitors := []model.Competitor(in.Detail.Competitors.Competitor)

	// The shared rank assigned to every eliminated or retired competitor:
	// the first such rank found across the whole field.
	eliminatedRank := firstEliminatedRank(competitors)

	var skips map[string][]int
	if in.IsTeam {
		skips = team.SkipRounds(competitors, in.CompetitionForeignID, in.EventID)
	}

	now := in.Now.Format(timestampLayout)

	for _, c := range competitors {
		riderID := identity.ResolveRider(c.Rider, in.EventID)
		horseID := identity.ResolveHorse(c.Horse, in.EventID)
		if riderID == "" || horseID == "" {
			out.Skipped++
			continue
		}

		start := equipe.Start{
			ForeignID:    equipe.StartForeignID(riderID, horseID, in.CompetitionForeignID),
			Rider:        &equipe.Ref{ForeignID: riderID},
			Horse:        &equipe.Ref{ForeignID: horseID},
			Rid:          true,
			ResultAt:     now,
			LastResultAt: now,
			K:            "H",
			Av:           "A",
		}

		if in.IsTeam {
			if rounds, ok := skips[start.ForeignID]; ok {
				start.SkipRounds = rounds
			}
		}

		ord := 1000
		if c.SortOrder != nil {
			ord = c.SortOrder.Int()
		}
		start.Ord = intp(ord)

		for _, r := range c.Result {
			mapRound(&start, r)
		}

		total := c.Total()
		totfel := 0.0
		if total != nil && total.Faults != nil {
			totfel = total.Faults.Float()
		}
		start.Totfel = f64p(totfel)

		status := statusOf(total)
		applyStatus(&start, status, total, eliminatedRank)

		if in.IsTeam {
			applyTeamFlags(&start, c, status)
		}

		if start.Re == nil && total != nil && total.Rank != nil {
			start.Re = intp(total.Rank.Int())
		}

		applyPrize(&start, total)

		// No round data and no flag set yet: treat as a no-show.
		if len(c.Result) == 0 && start.Or == "" && start.A == "" {
			markNoStart(&start, "U", "NS")
		}

		out.Starts = append(out.Starts, start)
	}

	return out
}

// competitionUpdate lifts the class-level allowed times into a
// competition record.
func competitionUpdate(in ResultInput) *equipe.Competition {
	d := in.Detail
	upd := equipe.Competition{ForeignID: in.CompetitionForeignID}
	set := false

	if d.Time1Allowed != nil {
		upd.Grundt = intp(d.Time1Allowed.Int())
		set = true
	}
	if d.Time2Allowed != nil {
		upd.Omh1t = intp(d.Time2Allowed.Int())
		set = true
	}
	if d.Time3Allowed != nil {
		upd.Omh2t = intp(d.Time3Allowed.Int())
		set = true
	}
	if d.Time4Allowed != nil {
		upd.Omg3t = intp(d.Time4Allowed.Int())
		set = true
	}
	if d.Time5Allowed != nil {
		upd.Omg4t = intp(d.Time5Allowed.Int())
		set = true
	}
	if in.IsTeam {
		upd.Team = true
		set = true
	}

	if !set {
		return nil
	}
	return &upd
}

// firstEliminatedRank scans the field for the first eliminated or retired
// competitor carrying a rank; that single value is shared by every
// competitor with such a status.
func firstEliminatedRank(competitors []model.Competitor) *int {
	for _, c := range competitors {
		total := c.Total()
		if total == nil || total.Status == nil || total.Status.Int() == 1 {
			continue
		}
		switch statusOf(total) {
		case StatusEliminated, StatusRetired:
			if total.Rank != nil {
				return intp(total.Rank.Int())
			}
		}
	}
	return nil
}

// mapRound writes one round's fault/time/time-fault triple into the
// round's fixed field set.
func mapRound(start *equipe.Start, r model.RoundResult) {
	faults := r.Faults.Float()
	t := r.Time.Float()
	tf := r.TimeFaults.Float()

	switch Round(r.Round.Int()) {
	case RoundOne:
		start.Grundf, start.Grundt, start.Tfg = f64p(faults), f64p(t), f64p(tf)
	case RoundTwo:
		start.Omh1f, start.Omh1t, start.Tf1 = f64p(faults), f64p(t), f64p(tf)
	case RoundThree:
		start.Omh2f, start.Omh2t, start.Tf2 = f64p(faults), f64p(t), f64p(tf)
	case RoundFour:
		start.Omg3f, start.Omg3t, start.Tf3 = f64p(faults), f64p(t), f64p(tf)
	case RoundFive:
		start.Omg4f, start.Omg4t, start.Tf4 = f64p(faults), f64p(t), f64p(tf)
	}
}

// applyStatus layers special statuses onto the mapped rounds.
func applyStatus(start *equipe.Start, status Status, total *model.ResultTotal, eliminatedRank *int) {
	switch status {
	case StatusRetired:
		markEliminated(start, "U", "Ret.", eliminatedRank)
	case StatusEliminated:
		markEliminated(start, "D", "El.", eliminatedRank)
	case StatusDisqualified:
		markEliminated(start, "S", "Dsq.", eliminatedRank)
	case StatusWithdrawn:
		applyWithdrawn(start, total)
	case StatusNoShow:
		markNoStart(start, "U", "NS")
	}
}

// markEliminated applies the retired/eliminated/disqualified treatment:
// status flag, round-1 sentinels, and the competition-wide rank.
func markEliminated(start *equipe.Start, flag, preview string, eliminatedRank *int) {
	start.Or = flag
	start.ResultPreview = preview
	start.Grundf = f64p(sentinel)
	start.Grundt = f64p(sentinel)
	start.Tfg = nil
	start.Re = eliminatedRank
}

// markNoStart applies the no-show treatment.
func markNoStart(start *equipe.Start, flag, preview string) {
	start.A = flag
	start.Grundf = f64p(sentinel)
	start.Grundt = f64p(sentinel)
	start.Tfg = nil
	start.ResultPreview = preview
}

// applyWithdrawn routes the sentinel to the round named in the status
// text; an unrecognized round name is a full no-show with the Ö flag.
func applyWithdrawn(start *equipe.Start, total *model.ResultTotal) {
	roundName := ""
	if total != nil {
		roundName = total.Name
	}

	switch withdrawnRound(roundName) {
	case RoundTwo:
		start.Omh1f, start.Omh1t = f64p(sentinel), f64p(sentinel)
		start.Totfel = f64p(sentinel)
		start.ResultPreview = "0-ABST"
	case RoundThree:
		start.Omh2f, start.Omh2t = f64p(sentinel), f64p(sentinel)
		start.Totfel = f64p(sentinel)
		start.ResultPreview = "0-0-ABST"
	case RoundFour:
		start.Omg3f, start.Omg3t = f64p(sentinel), f64p(sentinel)
		start.Totfel = f64p(sentinel)
		start.ResultPreview = "0-0-0-ABST"
	case RoundFive:
		start.Omg4f, start.Omg4t = f64p(sentinel), f64p(sentinel)
		start.Totfel = f64p(sentinel)
		start.ResultPreview = "0-0-0-0-ABST"
	default:
		markNoStart(start, "Ö", "ABST")
	}
}

// applyTeamFlags derives the per-round in-team flags. A rider with data
// for a round is in the team for that round; a missing round after a
// ridden one becomes a forced abstention (sentinel, A flag) unless
// skip_rounds already exempts it — team rounds are mandatory once
// entered unless explicitly exempted.
func applyTeamFlags(start *equipe.Start, c model.Competitor, status Status) {
	start.Round1InTeam = boolp(start.Grundf != nil && *start.Grundf != sentinel)

	if status.special() && status != StatusWithdrawn {
		// Any non-withdrawal special status, recognized or not, takes
		// the rider out of the team score for every later round.
		start.Round2InTeam = boolp(false)
		start.Round3InTeam = boolp(false)
		start.Round4InTeam = boolp(false)
		start.Round5InTeam = boolp(false)
		return
	}

	has1 := c.HasRound(1)
	has2 := c.HasRound(2)
	has3 := c.HasRound(3)

	switch {
	case has1 && !has2 && status == StatusNormal && !skipsRound(start.SkipRounds, 2):
		forceAbstention(start, RoundTwo)
		start.Round2InTeam = boolp(true)
		start.ResultPreview = formatFaults(deref(start.Grundf)) + "-ABST"
	case has2:
		start.Round2InTeam = boolp(true)
	default:
		start.Round2InTeam = boolp(false)
	}

	switch {
	case has1 && has2 && !has3 && status == StatusNormal && !skipsRound(start.SkipRounds, 3):
		forceAbstention(start, RoundThree)
		start.Round3InTeam = boolp(true)
		start.ResultPreview = formatFaults(deref(start.Grundf)) + "-" + formatFaults(deref(start.Omh1f)) + "-ABST"
	case has3:
		start.Round3InTeam = boolp(true)
	default:
		start.Round3InTeam = boolp(false)
	}
}

// forceAbstention writes the sentinel into a round's fault/time fields
// and raises the total to the sentinel floor.
func forceAbstention(start *equipe.Start, round Round) {
	switch round {
	case RoundTwo:
		start.Omh1f, start.Omh1t = f64p(sentinel), f64p(sentinel)
	case RoundThree:
		start.Omh2f, start.Omh2t = f64p(sentinel), f64p(sentinel)
	}
	start.Or = "A"
	if start.Totfel == nil || *start.Totfel < sentinel {
		start.Totfel = f64p(sentinel)
	}
}

// applyPrize maps prize money, or a prize in kind when no money is set.
func applyPrize(start *equipe.Start, total *model.ResultTotal) {
	if total == nil || total.Prize == nil {
		return
	}
	if total.Prize.Money != nil {
		money := total.Prize.Money.Float()
		start.Premie = f64p(money)
		start.PremieShow = f64p(money)
		return
	}
	if total.Prize.Text != "" {
		start.Rtxt = total.Prize.Text
		start.Premie = f64p(0)
		start.PremieShow = f64p(0)
	}
}

func skipsRound(rounds []int, n int) bool {
	for _, r := range rounds {
		if r == n {
			return true
		}
	}
	return false
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
