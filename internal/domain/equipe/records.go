// Package equipe contains the record shapes of Equipe's batch-import
// schema. Field names follow Equipe's Swedish-derived wire format
// (klass, datum, grundf, omh1t, ...) and are not translated.
package equipe

// Ref references another record by its foreign id.
type Ref struct {
	ForeignID string `json:"foreign_id"`
}

// Competition is one competition record. The same shape serves both the
// class import (name, date, prize) and the result-time update (grundt,
// omh1t, ...) — unset fields stay off the wire.
type Competition struct {
	ForeignID  string  `json:"foreign_id"`
	Clabb      string  `json:"clabb,omitempty"`
	Klass      string  `json:"klass,omitempty"`
	Oeverskr1  string  `json:"oeverskr1,omitempty"`
	Datum      string  `json:"datum,omitempty"`
	Klock      string  `json:"klock,omitempty"`
	Ord        *int    `json:"ord,omitempty"`
	Tavlingspl string  `json:"tavlingspl,omitempty"`
	Z          string  `json:"z,omitempty"`
	X          string  `json:"x,omitempty"`
	Alias      bool    `json:"alias,omitempty"`
	PremieCurr string  `json:"premie_curr,omitempty"`
	Prsum1     float64 `json:"prsum1,omitempty"`
	FeiArticle string  `json:"fei_article,omitempty"`
	TeamClass  bool    `json:"team_class,omitempty"`

	// Per-round allowed times, set by the result import.
	Grundt *int `json:"grundt,omitempty"`
	Omh1t  *int `json:"omh1t,omitempty"`
	Omh2t  *int `json:"omh2t,omitempty"`
	Omg3t  *int `json:"omg3t,omitempty"`
	Omg4t  *int `json:"omg4t,omitempty"`
	Team   bool `json:"team,omitempty"`
}

// Person is one rider record. FeiID is omitted for synthetic identities.
type Person struct {
	ForeignID string `json:"foreign_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Country   string `json:"country"`
	FeiID     string `json:"fei_id,omitempty"`
}

// Horse is one horse record.
type Horse struct {
	ForeignID    string `json:"foreign_id"`
	Num          string `json:"num"`
	Name         string `json:"name"`
	Sex          string `json:"sex"`
	BornYear     string `json:"born_year"`
	Owner        string `json:"owner"`
	Category     string `json:"category"`
	FeiID        string `json:"fei_id,omitempty"`
	Father       string `json:"father,omitempty"`
	MotherFather string `json:"mother_father,omitempty"`
	Breed        string `json:"breed,omitempty"`
	Color        string `json:"color,omitempty"`
}

// Club is one club record, used as the anchor for national teams.
type Club struct {
	ForeignID string `json:"foreign_id"`
	Name      string `json:"name"`
	LogoID    string `json:"logo_id"`
	LogoGroup string `json:"logo_group"`
}

// Team is one national team within a team-scored competition.
type Team struct {
	ForeignID string `json:"foreign_id"`
	St        int    `json:"st"`
	Ord       int    `json:"ord"`
	Lagnr     int    `json:"lagnr"`
	Lagledare string `json:"lagledare"`
	Club      *Ref   `json:"club"`
}

// Start is one rider+horse entry within a competition. The startlist
// import fills the entry fields; the result import reuses the same
// composite foreign id and fills the per-round result fields.
type Start struct {
	ForeignID string `json:"foreign_id"`
	St        string `json:"st,omitempty"`
	Ord       *int   `json:"ord,omitempty"`
	Category  string `json:"category,omitempty"`
	Section   string `json:"section,omitempty"`
	Rider     *Ref   `json:"rider,omitempty"`
	Horse     *Ref   `json:"horse,omitempty"`
	Team      *Ref   `json:"team,omitempty"`
	Club      *Ref   `json:"club,omitempty"`
	ClubText  string `json:"club_text,omitempty"`

	Rid          bool   `json:"rid,omitempty"`
	ResultAt     string `json:"result_at,omitempty"`
	LastResultAt string `json:"last_result_at,omitempty"`
	K            string `json:"k,omitempty"`
	Av           string `json:"av,omitempty"`

	// Round 1 ("ground" round) triple.
	Grundf *float64 `json:"grundf,omitempty"`
	Grundt *float64 `json:"grundt,omitempty"`
	Tfg    *float64 `json:"tfg,omitempty"`

	// Rounds 2..5 triples.
	Omh1f *float64 `json:"omh1f,omitempty"`
	Omh1t *float64 `json:"omh1t,omitempty"`
	Tf1   *float64 `json:"tf1,omitempty"`
	Omh2f *float64 `json:"omh2f,omitempty"`
	Omh2t *float64 `json:"omh2t,omitempty"`
	Tf2   *float64 `json:"tf2,omitempty"`
	Omg3f *float64 `json:"omg3f,omitempty"`
	Omg3t *float64 `json:"omg3t,omitempty"`
	Tf3   *float64 `json:"tf3,omitempty"`
	Omg4f *float64 `json:"omg4f,omitempty"`
	Omg4t *float64 `json:"omg4t,omitempty"`
	Tf4   *float64 `json:"tf4,omitempty"`

	Totfel *float64 `json:"totfel,omitempty"`
	Re     *int     `json:"re,omitempty"`
	Or     string   `json:"or,omitempty"`
	A      string   `json:"a,omitempty"`

	Premie        *float64 `json:"premie,omitempty"`
	PremieShow    *float64 `json:"premie_show,omitempty"`
	Rtxt          string   `json:"rtxt,omitempty"`
	ResultPreview string   `json:"result_preview,omitempty"`

	SkipRounds []int `json:"skip_rounds,omitempty"`

	Round1InTeam *bool `json:"round1_in_team,omitempty"`
	Round2InTeam *bool `json:"round2_in_team,omitempty"`
	Round3InTeam *bool `json:"round3_in_team,omitempty"`
	Round4InTeam *bool `json:"round4_in_team,omitempty"`
	Round5InTeam *bool `json:"round5_in_team,omitempty"`
}

// StartForeignID builds the composite key the batch endpoint dedupes on.
// It must come out identical for the startlist and the result import of
// the same rider/horse/competition tuple so upserts converge.
func StartForeignID(riderID, horseID, competitionID string) string {
	return riderID + "_" + horseID + "_" + competitionID
}

// RecordSet is one entity-type section of a batch document.
type RecordSet struct {
	UniqueBy        string         `json:"unique_by"`
	Where           map[string]any `json:"where,omitempty"`
	AbortIfAny      map[string]any `json:"abort_if_any,omitempty"`
	Replace         bool           `json:"replace,omitempty"`
	SkipUserChanged bool           `json:"skip_user_changed,omitempty"`
	Records         any            `json:"records"`
}

// Batch is a full batch document keyed by entity type
// (competitions, people, horses, clubs, teams, starts).
type Batch map[string]RecordSet

// CompetitionScope builds the where-clause that scopes a record set to a
// single competition.
func CompetitionScope(competitionForeignID string) map[string]any {
	return map[string]any{
		"competition": Ref{ForeignID: competitionForeignID},
	}
}
