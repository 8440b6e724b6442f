// Package transform maps Hippodata documents onto Equipe batch records.
// It is pure: all I/O stays in the adapters, all sequencing in the app.
package transform

import (
	"github.com/jumpingaccess/Hippodata2Equipe/internal/domain/equipe"
	"github.com/jumpingaccess/Hippodata2Equipe/internal/domain/model"
)

// Selection is one class choice made by the caller.
type Selection struct {
	ClassID         string `json:"class_id"`
	ImportClass     bool   `json:"import_class"`
	ImportStartlist bool   `json:"import_startlist"`
	ImportResults   bool   `json:"import_results"`
	TeamClass       bool   `json:"team_class"`
	FeiArticle      string `json:"fei_article"`
}

// Class maps one source class onto an Equipe competition record. counter
// drives the human-readable "HD-n" label (1-based) and ord the zero-based
// sort position; the two run as independent counters incremented together
// per selected class.
func Class(cls model.Class, sel Selection, counter, ord int) equipe.Competition {
	name := cls.DisplayName()

	comp := equipe.Competition{
		ForeignID:  cls.ID.String(),
		Clabb:      "HD-" + itoa(counter),
		Klass:      name,
		Oeverskr1:  name,
		Datum:      cls.Date,
		Klock:      cls.StartTime(),
		Ord:        intp(ord),
		Tavlingspl: cls.Category,
		Z:          "H",
		X:          "I",
		Alias:      true,
		PremieCurr: cls.PrizeCurrency(),
		Prsum1:     cls.PrizeMoney(),
	}

	if sel.FeiArticle != "" {
		comp.FeiArticle = sel.FeiArticle
	}
	if sel.TeamClass {
		comp.TeamClass = true
	}

	return comp
}
