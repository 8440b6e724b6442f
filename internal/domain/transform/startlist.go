package transform

import (
	"strings"
	"time"

	"github.com/jumpingaccess/Hippodata2Equipe/internal/domain/equipe"
	"github.com/jumpingaccess/Hippodata2Equipe/internal/domain/identity"
	"github.com/jumpingaccess/Hippodata2Equipe/internal/domain/model"
	"github.com/jumpingaccess/Hippodata2Equipe/internal/domain/team"
)

// sexMap translates Hippodata gender codes to Equipe's sex codes.
var sexMap = map[string]string{
	"m":        "val",
	"g":        "val",
	"gelding":  "val",
	"f":        "sto",
	"mare":     "sto",
	"stallion": "hin",
}

// StartlistInput carries one competition's roster plus the per-batch
// known-identity state shared across competitions.
type StartlistInput struct {
	CompetitionForeignID string
	EventID              string
	IsTeam               bool
	Competitors          []model.Competitor

	// KnownPeople, KnownHorses and KnownClubs are seeded from Equipe's
	// existing collections and mutated as new entities are queued, so
	// nothing is created twice within one multi-competition batch.
	KnownPeople *identity.KnownSet
	KnownHorses *identity.KnownSet
	KnownClubs  *identity.KnownSet

	// Now supplies the clock for the born-year sanity check.
	Now time.Time
}

// StartlistOutput lists the entities one competition contributes.
type StartlistOutput struct {
	People []equipe.Person
	Horses []equipe.Horse
	Clubs  []equipe.Club
	Teams  []equipe.Team
	Starts []equipe.Start

	// Skipped counts competitors dropped for lacking an identifiable
	// rider or horse.
	Skipped int
}

// Startlist maps one competition's competitors onto Equipe person, horse,
// club, team and start records. Team grouping runs before the competitor
// loop so it sees the full roster.
func Startlist(in StartlistInput) StartlistOutput {
	var out StartlistOutput

	var assignment team.Assignment
	if in.IsTeam {
		assignment = team.Assign(in.Competitors, in.CompetitionForeignID, in.KnownClubs)
		out.Clubs = assignment.NewClubs
		out.Teams = assignment.Teams
	}

	for i, c := range in.Competitors {
		riderID := identity.ResolveRider(c.Rider, in.EventID)
		horseID := identity.ResolveHorse(c.Horse, in.EventID)

		if riderID != "" && !in.KnownPeople.SeenAndRecord(riderID) {
			out.People = append(out.People, newPerson(riderID, c.Rider))
		}
		if horseID != "" && !in.KnownHorses.SeenAndRecord(horseID) {
			out.Horses = append(out.Horses, newHorse(horseID, c.Horse, in.Now))
		}

		// Partial competitor data never becomes an incomplete start.
		if riderID == "" || horseID == "" {
			out.Skipped++
			continue
		}

		sort := startSort(c, i)
		start := equipe.Start{
			ForeignID: equipe.StartForeignID(riderID, horseID, in.CompetitionForeignID),
			St:        itoa(sort),
			Ord:       intp(sort),
			Rider:     &equipe.Ref{ForeignID: riderID},
			Horse:     &equipe.Ref{ForeignID: horseID},
		}

		nation := c.Rider.Nation
		if in.IsTeam && nation != "" && assignment.HasTeam(nation) {
			start.Category = "H"
			start.Section = "A"
			start.Team = &equipe.Ref{ForeignID: assignment.ByNation[nation]}
			start.Club = &equipe.Ref{ForeignID: team.ClubForeignID(nation)}
		} else if c.Rider.Club != "" && nation == "" {
			// National classes often carry a free-text club instead of
			// a nation code.
			start.ClubText = c.Rider.Club
		}

		out.Starts = append(out.Starts, start)
	}

	return out
}

// startSort picks the start's sort position: the declared round-1 order,
// else the generic sort field, else the 1-based roster position.
func startSort(c model.Competitor, index int) int {
	if c.SortRound != nil && c.SortRound.Round1 != nil {
		return c.SortRound.Round1.Int()
	}
	if c.SortOrder != nil {
		return c.SortOrder.Int()
	}
	return index + 1
}

// newPerson builds an Equipe person from a rider record. Display names
// arrive as "Last, First"; the country code defaults to XXX when the
// source has none. Synthetic ids never emit an fei_id.
func newPerson(riderID string, r model.Rider) equipe.Person {
	last, first := splitName(r.Name)
	country := r.Nation
	if country == "" {
		country = "XXX"
	}

	p := equipe.Person{
		ForeignID: riderID,
		FirstName: first,
		LastName:  last,
		Country:   country,
	}
	if !identity.IsSynthetic(riderID) {
		p.FeiID = riderID
	}
	return p
}

func splitName(name string) (last, first string) {
	parts := strings.SplitN(name, ",", 2)
	last = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		first = strings.TrimSpace(parts[1])
	}
	return last, first
}

// newHorse builds an Equipe horse from a horse record.
func newHorse(horseID string, h model.Horse, now time.Time) equipe.Horse {
	var info model.HorseInfo
	if h.Info != nil {
		info = *h.Info
	}

	sex, ok := sexMap[strings.ToLower(info.Gender)]
	if !ok {
		sex = "val"
	}

	out := equipe.Horse{
		ForeignID: horseID,
		Num:       h.Number.String(),
		Name:      h.Name,
		Sex:       sex,
		BornYear:  bornYear(info, now),
		Owner:     info.Owner,
		Category:  "H",
	}
	if !identity.IsSynthetic(horseID) {
		out.FeiID = horseID
	}

	out.Father = info.Father
	out.MotherFather = info.MotherFather
	out.Breed = info.Breed
	out.Color = info.Color

	return out
}

// bornYear returns the reported birth year, blanked when it equals the
// current year with an age of zero: that combination is a known source
// artefact for horses with no registered birth year.
func bornYear(info model.HorseInfo, now time.Time) string {
	born := info.BornYear.String()
	age := 0
	if info.Age != nil {
		age = info.Age.Int()
	}
	if born == itoa(now.Year()) && age == 0 {
		return ""
	}
	return born
}
