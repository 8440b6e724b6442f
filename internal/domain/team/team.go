// Package team groups competitors into national teams and derives the
// per-round exemptions team scoring needs.
package team

import (
	"sort"

	"github.com/jumpingaccess/Hippodata2Equipe/internal/domain/countries"
	"github.com/jumpingaccess/Hippodata2Equipe/internal/domain/equipe"
	"github.com/jumpingaccess/Hippodata2Equipe/internal/domain/identity"
	"github.com/jumpingaccess/Hippodata2Equipe/internal/domain/model"
)

const (
	// minTeamSize is the smallest nation group that forms a team.
	minTeamSize = 3
	// minSkipRoundsSize is the smallest nation group eligible for
	// skip-round inference. Groups of exactly three never infer.
	minSkipRoundsSize = 4
)

// ClubForeignID builds the synthetic club id for a nation.
func ClubForeignID(nation string) string {
	return "club_" + nation
}

// TeamForeignID builds the synthetic team id for a nation within a
// competition.
func TeamForeignID(competitionID, nation string) string {
	return "team_" + competitionID + "_" + nation
}

// Assignment is the outcome of grouping one competition's roster.
type Assignment struct {
	// Teams in creation order, one per nation with at least minTeamSize riders.
	Teams []equipe.Team
	// NewClubs holds clubs not yet present in Equipe nor queued earlier
	// in the current batch.
	NewClubs []equipe.Club
	// ByNation maps a nation code to its team's foreign id.
	ByNation map[string]string
}

// HasTeam reports whether a nation reached the team threshold.
func (a Assignment) HasTeam(nation string) bool {
	_, ok := a.ByNation[nation]
	return ok
}

// nationGroup collects a nation's competitors and the club label seen on
// its first rider.
type nationGroup struct {
	nation   string
	clubName string
	count    int
}

// Assign groups competitors by nation and creates a team for every nation
// with at least three riders. knownClubs carries club ids already present
// in Equipe or queued earlier in the batch; clubs created here are added
// to it so they dedupe across competitions.
func Assign(competitors []model.Competitor, competitionID string, knownClubs *identity.KnownSet) Assignment {
	out := Assignment{ByNation: make(map[string]string)}

	groups := make(map[string]*nationGroup)
	var order []string
	for _, c := range competitors {
		nation := c.Rider.Nation
		if nation == "" {
			continue
		}
		g, ok := groups[nation]
		if !ok {
			club := c.Rider.Club
			if club == "" {
				club = nation
			}
			g = &nationGroup{nation: nation, clubName: club}
			groups[nation] = g
			order = append(order, nation)
		}
		g.count++
	}

	teamCounter := 1
	for _, nation := range order {
		g := groups[nation]
		if g.count < minTeamSize {
			continue
		}

		clubID := ClubForeignID(nation)
		if !knownClubs.SeenAndRecord(clubID) {
			out.NewClubs = append(out.NewClubs, equipe.Club{
				ForeignID: clubID,
				Name:      clubName(nation, g.clubName),
				LogoID:    nation,
				LogoGroup: "flags48",
			})
		}

		teamID := TeamForeignID(competitionID, nation)
		out.Teams = append(out.Teams, equipe.Team{
			ForeignID: teamID,
			St:        teamCounter,
			Ord:       teamCounter,
			Lagnr:     teamCounter,
			Lagledare: "",
			Club:      &equipe.Ref{ForeignID: clubID},
		})
		out.ByNation[nation] = teamID
		teamCounter++
	}

	return out
}

// clubName labels a national team club: full country name when the IOC
// code is known, the raw club text when it differs from the code, else
// the code itself, always suffixed " Team" for code-derived names.
func clubName(nation, clubText string) string {
	if name, ok := countries.Name(nation); ok {
		return name + " Team"
	}
	if clubText != "" && clubText != nation {
		return clubText
	}
	return nation + " Team"
}

// SkipRounds derives, per start foreign id, the rounds a rider is exempt
// from under team scoring. Only nations with at least four riders are
// considered:
//   - when exactly three riders carry a round-2 result, every rider
//     without one skips round 2;
//   - when exactly one rider carries a round-3 result (and not the whole
//     group does), every rider without one skips round 3.
//
// Both checks are independent; the returned lists are sorted ascending
// with no duplicates.
func SkipRounds(competitors []model.Competitor, competitionID, eventID string) map[string][]int {
	type riderRounds struct {
		foreignID string
		hasRound2 bool
		hasRound3 bool
	}

	byNation := make(map[string][]riderRounds)
	var order []string
	for _, c := range competitors {
		nation := c.Rider.Nation
		if nation == "" {
			continue
		}

		riderID := identity.ResolveRider(c.Rider, eventID)
		horseID := identity.ResolveHorse(c.Horse, eventID)
		if riderID == "" || horseID == "" {
			continue
		}

		if _, ok := byNation[nation]; !ok {
			order = append(order, nation)
		}
		byNation[nation] = append(byNation[nation], riderRounds{
			foreignID: equipe.StartForeignID(riderID, horseID, competitionID),
			hasRound2: c.HasRound(2),
			hasRound3: c.HasRound(3),
		})
	}

	skips := make(map[string][]int)
	add := func(foreignID string, round int) {
		for _, r := range skips[foreignID] {
			if r == round {
				return
			}
		}
		skips[foreignID] = append(skips[foreignID], round)
	}

	for _, nation := range order {
		riders := byNation[nation]
		if len(riders) < minSkipRoundsSize {
			continue
		}

		withRound2 := 0
		withRound3 := 0
		for _, r := range riders {
			if r.hasRound2 {
				withRound2++
			}
			if r.hasRound3 {
				withRound3++
			}
		}

		// Three counted round-2 scores: the remaining riders sat it out.
		if withRound2 == minTeamSize {
			for _, r := range riders {
				if !r.hasRound2 {
					add(r.foreignID, 2)
				}
			}
		}

		// Jump-off detection: a single round-3 finisher exempts the rest.
		if withRound3 > 0 && withRound3 < len(riders) && withRound3 == 1 {
			for _, r := range riders {
				if !r.hasRound3 {
					add(r.foreignID, 3)
				}
			}
		}
	}

	for id := range skips {
		sort.Ints(skips[id])
	}
	return skips
}
