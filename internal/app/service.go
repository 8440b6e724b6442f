// Package app sequences the import pipeline: fetch from Hippodata,
// transform, submit to Equipe, and track per-competition outcomes. All
// state lives inside one call; the service itself is stateless and safe
// for concurrent requests.
package app

import (
	"context"
	"fmt"
	"time"

	equipeapi "github.com/jumpingaccess/Hippodata2Equipe/internal/adapters/equipe"
	"github.com/jumpingaccess/Hippodata2Equipe/internal/adapters/hippodata"
	"github.com/jumpingaccess/Hippodata2Equipe/internal/domain/equipe"
	"github.com/jumpingaccess/Hippodata2Equipe/internal/domain/identity"
	"github.com/jumpingaccess/Hippodata2Equipe/internal/domain/transform"
	"github.com/jumpingaccess/Hippodata2Equipe/pkg/logger"
	"github.com/jumpingaccess/Hippodata2Equipe/pkg/metrics"
)

// Outcome states of one competition within an import call.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// ClassSummary is one class as shown to the operator for selection.
type ClassSummary struct {
	ID            string  `json:"id"`
	NR            string  `json:"nr"`
	Name          string  `json:"name"`
	Date          string  `json:"date"`
	Time          string  `json:"time"`
	Category      string  `json:"category"`
	Status        string  `json:"status"`
	PrizeMoney    float64 `json:"prize_money"`
	PrizeCurrency string  `json:"prize_currency"`
}

// EventInfo is the show header plus its selectable classes.
type EventInfo struct {
	EventID  string         `json:"event_id"`
	Caption  string         `json:"caption"`
	Location string         `json:"location"`
	Classes  []ClassSummary `json:"classes"`
}

// ImportedStatus lists which source classes already exist in the meeting,
// keyed by competition foreign id.
type ImportedStatus struct {
	Classes    []string `json:"classes"`
	Startlists []string `json:"startlists"`
	Results    []string `json:"results"`
}

// CompetitionTask names one competition queued for a startlist or result
// import. ForeignID is the Equipe competition key (the source class ID);
// ClassID addresses the Hippodata startlist and resultlist endpoints and
// is the class number when the source assigns one, the ID otherwise. The
// two differ whenever a class carries a display number.
type CompetitionTask struct {
	ForeignID string `json:"foreign_id"`
	ClassID   string `json:"class_id"`
	Name      string `json:"name"`
	IsTeam    bool   `json:"team_class"`
}

// foreignID tolerates callers that only supply the class id.
func (t CompetitionTask) foreignID() string {
	if t.ForeignID != "" {
		return t.ForeignID
	}
	return t.ClassID
}

// CompetitionOutcome is the per-competition report entry.
type CompetitionOutcome struct {
	ClassID string `json:"class_id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`

	People int `json:"people,omitempty"`
	Horses int `json:"horses,omitempty"`
	Starts int `json:"starts,omitempty"`
}

// ClassImportReport is the outcome of an import_selected call.
type ClassImportReport struct {
	EventID             string               `json:"event_id"`
	Results             []CompetitionOutcome `json:"results"`
	StartlistsToProcess []CompetitionTask    `json:"startlists_to_process"`
	ResultsToProcess    []CompetitionTask    `json:"results_to_process"`
}

// ImportReport is the outcome of a startlist or result import call.
type ImportReport struct {
	Processed []CompetitionOutcome `json:"processed_competitions"`
	Batches   []equipe.Batch       `json:"batch_data"`
}

// Service wires the two clients into the import operations the API
// exposes.
type Service struct {
	source hippodata.Client
	target equipeapi.Client
	logger logger.Logger
	now    func() time.Time
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets the Hippodata client.
func WithSource(c hippodata.Client) Option {
	return func(s *Service) {
		s.source = c
	}
}

// WithTarget sets the Equipe client.
func WithTarget(c equipeapi.Client) Option {
	return func(s *Service) {
		s.target = c
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New builds a Service. Both clients are required.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.source == nil {
		return nil, ErrMissingSource
	}
	if s.target == nil {
		return nil, ErrMissingTarget
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("app")
	}
	return s, nil
}

// FetchEventInfo returns the show header and class list for selection.
func (s *Service) FetchEventInfo(ctx context.Context, showID string) (*EventInfo, error) {
	if showID == "" {
		return nil, validationError("blank show id")
	}

	doc, err := s.source.Event(ctx, showID)
	if err != nil {
		return nil, err
	}

	info := &EventInfo{
		EventID:  doc.Event.ID.String(),
		Caption:  doc.Event.Caption,
		Location: doc.Event.Location,
	}
	for _, cls := range doc.Classes.Class {
		info.Classes = append(info.Classes, ClassSummary{
			ID:            cls.ID.String(),
			NR:            cls.NR.String(),
			Name:          cls.DisplayName(),
			Date:          cls.Date,
			Time:          cls.StartTime(),
			Category:      cls.Category,
			Status:        cls.Status,
			PrizeMoney:    cls.PrizeMoney(),
			PrizeCurrency: cls.PrizeCurrency(),
		})
	}

	s.logger.Info(ctx, "fetched event info",
		logger.String("show_id", showID),
		logger.Int("classes", len(info.Classes)))
	return info, nil
}

// ImportedStatus cross-references the meeting's competitions against its
// starts and results so the operator sees what is already imported. The
// results check reads the per-competition results endpoint and counts a
// competition only when some record carries a numeric score; team
// competitions check team membership on the starts.
func (s *Service) ImportedStatus(ctx context.Context, meetingURL, apiKey string) (*ImportedStatus, error) {
	if meetingURL == "" {
		return nil, validationError("blank meeting url")
	}

	comps, err := s.target.Competitions(ctx, meetingURL, apiKey)
	if err != nil {
		return nil, err
	}

	status := &ImportedStatus{}
	for _, comp := range comps {
		if comp.ForeignID == "" {
			continue
		}
		status.Classes = append(status.Classes, comp.ForeignID)

		starts, err := s.target.Starts(ctx, meetingURL, apiKey, comp.ID)
		if err != nil {
			s.logger.Warn(ctx, "starts check failed",
				logger.String("competition", comp.ForeignID),
				logger.Error(err))
			continue
		}
		if len(starts) == 0 {
			continue
		}

		// Team competitions only count as imported once starts carry
		// their team links.
		if comp.Lag && !anyInTeam(starts) {
			continue
		}
		status.Startlists = append(status.Startlists, comp.ForeignID)

		results, err := s.target.Results(ctx, meetingURL, apiKey, comp.ID)
		if err != nil {
			s.logger.Warn(ctx, "results check failed",
				logger.String("competition", comp.ForeignID),
				logger.Error(err))
			continue
		}
		if anyWithResult(results) {
			status.Results = append(status.Results, comp.ForeignID)
		}
	}
	return status, nil
}

func anyInTeam(starts []equipeapi.Start) bool {
	for _, st := range starts {
		if st.InTeam() {
			return true
		}
	}
	return false
}

func anyWithResult(starts []equipeapi.Start) bool {
	for _, st := range starts {
		if st.HasResult() {
			return true
		}
	}
	return false
}

// ImportClasses maps the selected classes onto competition records,
// submits them as one batch, and returns the follow-up work lists.
func (s *Service) ImportClasses(ctx context.Context, showID, apiKey, meetingURL string, selections []transform.Selection) (*ClassImportReport, error) {
	if showID == "" {
		return nil, validationError("blank show id")
	}
	if meetingURL == "" {
		return nil, validationError("blank meeting url")
	}
	if len(selections) == 0 {
		return nil, validationError("no classes selected")
	}

	doc, err := s.source.Event(ctx, showID)
	if err != nil {
		return nil, err
	}

	classByID := make(map[string]int)
	for i, cls := range doc.Classes.Class {
		classByID[cls.ID.String()] = i
	}

	report := &ClassImportReport{EventID: doc.Event.ID.String()}

	var competitions []equipe.Competition
	var imported []int
	counter := 1
	ord := 0

	for _, sel := range selections {
		idx, ok := classByID[sel.ClassID]
		if !ok {
			report.Results = append(report.Results, CompetitionOutcome{
				ClassID: sel.ClassID,
				Status:  StatusFailed,
				Message: "class not found in event",
			})
			continue
		}
		cls := doc.Classes.Class[idx]
		classID := cls.NR.String()
		if classID == "" {
			classID = sel.ClassID
		}
		task := CompetitionTask{
			ForeignID: sel.ClassID,
			ClassID:   classID,
			Name:      cls.DisplayName(),
			IsTeam:    sel.TeamClass,
		}

		if sel.ImportClass {
			competitions = append(competitions, transform.Class(cls, sel, counter, ord))
			counter++
			ord++

			report.Results = append(report.Results, CompetitionOutcome{
				ClassID: sel.ClassID,
				Name:    task.Name,
				Status:  StatusPending,
			})
			imported = append(imported, len(report.Results)-1)
		}

		if sel.ImportStartlist {
			report.StartlistsToProcess = append(report.StartlistsToProcess, task)
		}
		if sel.ImportResults {
			report.ResultsToProcess = append(report.ResultsToProcess, task)
		}
	}

	if len(competitions) == 0 {
		return report, nil
	}

	// skip_user_changed keeps a re-import from clobbering competition
	// fields the operator edited in Equipe.
	batch := equipe.Batch{
		"competitions": equipe.RecordSet{
			UniqueBy:        "foreign_id",
			SkipUserChanged: true,
			Records:         competitions,
		},
	}

	reply, err := s.target.SubmitBatch(ctx, meetingURL, apiKey, batch, "")
	outcome, message := submissionOutcome(reply, err)
	for _, i := range imported {
		report.Results[i].Status = outcome
		report.Results[i].Message = message
	}

	metrics.RecordImport("classes", outcome)
	metrics.RecordImportRecords("competitions", len(competitions))
	s.logger.Info(ctx, "class import finished",
		logger.String("show_id", showID),
		logger.Int("competitions", len(competitions)),
		logger.String("outcome", outcome))
	return report, nil
}

// competitionWork holds one competition's transformed startlist while the
// consolidated reference data is being collected.
type competitionWork struct {
	task    CompetitionTask
	outcome int
	teams   []equipe.Team
	starts  []equipe.Start
}

// ImportStartlists fetches and transforms each competition's roster,
// consolidates the new people, horses and clubs across competitions, and
// submits the reference data before the per-competition teams and starts.
// One competition's fetch failure never blocks the others.
func (s *Service) ImportStartlists(ctx context.Context, eventID, apiKey, meetingURL string, tasks []CompetitionTask) (*ImportReport, error) {
	if eventID == "" {
		return nil, validationError("blank event id")
	}
	if meetingURL == "" {
		return nil, validationError("blank meeting url")
	}
	if len(tasks) == 0 {
		return nil, validationError("no competitions to process")
	}

	knownPeople, knownHorses, knownClubs, err := s.seedKnownSets(ctx, meetingURL, apiKey)
	if err != nil {
		return nil, err
	}

	report := &ImportReport{}
	now := s.now()

	// First pass: transform everything, accumulating reference data in
	// first-occurrence order across competitions.
	var people []equipe.Person
	var horses []equipe.Horse
	var clubs []equipe.Club
	var work []competitionWork

	for _, task := range tasks {
		report.Processed = append(report.Processed, CompetitionOutcome{
			ClassID: task.ClassID,
			Name:    task.Name,
			Status:  StatusPending,
		})
		idx := len(report.Processed) - 1

		doc, err := s.source.Startlist(ctx, eventID, task.ClassID)
		if err != nil {
			report.Processed[idx].Status = StatusFailed
			report.Processed[idx].Message = err.Error()
			s.logger.Warn(ctx, "startlist fetch failed",
				logger.String("class_id", task.ClassID),
				logger.Error(err))
			continue
		}

		out := transform.Startlist(transform.StartlistInput{
			CompetitionForeignID: task.foreignID(),
			EventID:              eventID,
			IsTeam:               task.IsTeam,
			Competitors:          doc.Class.Competitors.Competitor,
			KnownPeople:          knownPeople,
			KnownHorses:          knownHorses,
			KnownClubs:           knownClubs,
			Now:                  now,
		})

		people = append(people, out.People...)
		horses = append(horses, out.Horses...)
		clubs = append(clubs, out.Clubs...)

		report.Processed[idx].People = len(out.People)
		report.Processed[idx].Horses = len(out.Horses)
		report.Processed[idx].Starts = len(out.Starts)

		work = append(work, competitionWork{
			task:    task,
			outcome: idx,
			teams:   out.Teams,
			starts:  out.Starts,
		})
	}

	// Reference data goes first so the per-competition batches can link
	// to it by foreign id.
	if len(people) > 0 || len(horses) > 0 || len(clubs) > 0 {
		ref := equipe.Batch{}
		if len(clubs) > 0 {
			ref["clubs"] = equipe.RecordSet{UniqueBy: "foreign_id", Records: clubs}
		}
		if len(people) > 0 {
			ref["people"] = equipe.RecordSet{UniqueBy: "foreign_id", Records: people}
		}
		if len(horses) > 0 {
			ref["horses"] = equipe.RecordSet{UniqueBy: "foreign_id", Records: horses}
		}
		report.Batches = append(report.Batches, ref)

		reply, err := s.target.SubmitBatch(ctx, meetingURL, apiKey, ref, "")
		if outcome, message := submissionOutcome(reply, err); outcome != StatusSuccess {
			// Without the reference data every start would dangle.
			for _, w := range work {
				report.Processed[w.outcome].Status = StatusFailed
				report.Processed[w.outcome].Message = message
			}
			metrics.RecordImport("startlists", StatusFailed)
			return report, nil
		}

		metrics.RecordImportRecords("people", len(people))
		metrics.RecordImportRecords("horses", len(horses))
		metrics.RecordImportRecords("clubs", len(clubs))
	}

	for _, w := range work {
		batch := equipe.Batch{
			"starts": equipe.RecordSet{
				UniqueBy:   "foreign_id",
				Where:      equipe.CompetitionScope(w.task.foreignID()),
				AbortIfAny: map[string]any{"rid": true},
				Replace:    true,
				Records:    w.starts,
			},
		}
		if len(w.teams) > 0 {
			batch["teams"] = equipe.RecordSet{
				UniqueBy: "foreign_id",
				Where:    equipe.CompetitionScope(w.task.foreignID()),
				Records:  w.teams,
			}
		}
		report.Batches = append(report.Batches, batch)

		reply, err := s.target.SubmitBatch(ctx, meetingURL, apiKey, batch, "")
		status, message := submissionOutcome(reply, err)
		report.Processed[w.outcome].Status = status
		report.Processed[w.outcome].Message = message

		metrics.RecordImport("startlists", status)
		metrics.RecordImportRecords("starts", len(w.starts))
		s.logger.Info(ctx, "startlist import finished",
			logger.String("class_id", w.task.ClassID),
			logger.Int("starts", len(w.starts)),
			logger.String("outcome", status))
	}

	return report, nil
}

// ImportResults fetches and transforms each competition's resultlist and
// submits one batch per competition: the class-level time update plus the
// scored starts.
func (s *Service) ImportResults(ctx context.Context, eventID, apiKey, meetingURL string, tasks []CompetitionTask) (*ImportReport, error) {
	if eventID == "" {
		return nil, validationError("blank event id")
	}
	if meetingURL == "" {
		return nil, validationError("blank meeting url")
	}
	if len(tasks) == 0 {
		return nil, validationError("no competitions to process")
	}

	report := &ImportReport{}

	for _, task := range tasks {
		report.Processed = append(report.Processed, CompetitionOutcome{
			ClassID: task.ClassID,
			Name:    task.Name,
			Status:  StatusPending,
		})
		outcome := &report.Processed[len(report.Processed)-1]

		doc, err := s.source.Resultlist(ctx, eventID, task.ClassID)
		if err != nil {
			outcome.Status = StatusFailed
			outcome.Message = err.Error()
			s.logger.Warn(ctx, "resultlist fetch failed",
				logger.String("class_id", task.ClassID),
				logger.Error(err))
			continue
		}

		out := transform.Results(transform.ResultInput{
			CompetitionForeignID: task.foreignID(),
			EventID:              eventID,
			IsTeam:               task.IsTeam,
			Detail:               doc.Class,
			Now:                  s.now(),
		})

		batch := equipe.Batch{
			"starts": equipe.RecordSet{
				UniqueBy: "foreign_id",
				Where:    equipe.CompetitionScope(task.foreignID()),
				Replace:  true,
				Records:  out.Starts,
			},
		}
		if out.CompetitionUpdate != nil {
			batch["competitions"] = equipe.RecordSet{
				UniqueBy: "foreign_id",
				Records:  []equipe.Competition{*out.CompetitionUpdate},
			}
		}
		report.Batches = append(report.Batches, batch)

		reply, err := s.target.SubmitBatch(ctx, meetingURL, apiKey, batch, "")
		outcome.Status, outcome.Message = submissionOutcome(reply, err)
		outcome.Starts = len(out.Starts)

		metrics.RecordImport("results", outcome.Status)
		metrics.RecordImportRecords("starts", len(out.Starts))
		s.logger.Info(ctx, "result import finished",
			logger.String("class_id", task.ClassID),
			logger.Int("starts", len(out.Starts)),
			logger.String("outcome", outcome.Status))
	}

	return report, nil
}

// SendBatch forwards a prepared batch document as-is: the proxy exists so
// the API key never has to reach a browser.
func (s *Service) SendBatch(ctx context.Context, meetingURL, apiKey string, batch map[string]any, txUUID string) (equipeapi.BatchReply, error) {
	if meetingURL == "" {
		return equipeapi.BatchReply{}, validationError("blank meeting url")
	}
	if len(batch) == 0 {
		return equipeapi.BatchReply{}, validationError("empty batch")
	}

	reply, err := s.target.SubmitBatch(ctx, meetingURL, apiKey, batch, txUUID)
	if err != nil {
		metrics.RecordBatchSubmission(StatusFailed)
		return reply, err
	}

	if reply.OK() {
		metrics.RecordBatchSubmission(StatusSuccess)
	} else {
		metrics.RecordBatchSubmission(StatusFailed)
	}
	return reply, nil
}

// seedKnownSets loads the meeting's existing people, horses and clubs so
// the transformers never queue an entity Equipe already has.
func (s *Service) seedKnownSets(ctx context.Context, meetingURL, apiKey string) (people, horses, clubs *identity.KnownSet, err error) {
	people = identity.NewKnownSet()
	horses = identity.NewKnownSet()
	clubs = identity.NewKnownSet()

	existingPeople, err := s.target.People(ctx, meetingURL, apiKey)
	if err != nil {
		return nil, nil, nil, err
	}
	for _, p := range existingPeople {
		people.Add(p.ForeignID)
		people.Add(p.FeiID)
	}

	existingHorses, err := s.target.Horses(ctx, meetingURL, apiKey)
	if err != nil {
		return nil, nil, nil, err
	}
	for _, h := range existingHorses {
		horses.Add(h.ForeignID)
		horses.Add(h.FeiID)
	}

	existingClubs, err := s.target.Clubs(ctx, meetingURL, apiKey)
	if err != nil {
		return nil, nil, nil, err
	}
	for _, c := range existingClubs {
		clubs.Add(c.ForeignID)
	}

	return people, horses, clubs, nil
}

// submissionOutcome folds a batch reply into a status plus message.
func submissionOutcome(reply equipeapi.BatchReply, err error) (string, string) {
	if err != nil {
		return StatusFailed, err.Error()
	}
	if !reply.OK() {
		return StatusFailed, fmt.Sprintf("equipe returned %d: %s", reply.StatusCode, reply.Body)
	}
	return StatusSuccess, ""
}
