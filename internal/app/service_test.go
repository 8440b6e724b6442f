package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	equipeapi "github.com/jumpingaccess/Hippodata2Equipe/internal/adapters/equipe"
	"github.com/jumpingaccess/Hippodata2Equipe/internal/app"
	"github.com/jumpingaccess/Hippodata2Equipe/internal/domain/equipe"
	"github.com/jumpingaccess/Hippodata2Equipe/internal/domain/model"
	"github.com/jumpingaccess/Hippodata2Equipe/internal/domain/transform"
	"github.com/jumpingaccess/Hippodata2Equipe/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

type fakeSource struct {
	event      *model.EventDocument
	eventErr   error
	startlists map[string]*model.ClassDocument
	resultlist map[string]*model.ClassDocument
	fetchErr   map[string]error
}

func (f *fakeSource) Event(_ context.Context, _ string) (*model.EventDocument, error) {
	return f.event, f.eventErr
}

func (f *fakeSource) Startlist(_ context.Context, _, classID string) (*model.ClassDocument, error) {
	if err := f.fetchErr[classID]; err != nil {
		return nil, err
	}
	return f.startlists[classID], nil
}

func (f *fakeSource) Resultlist(_ context.Context, _, classID string) (*model.ClassDocument, error) {
	if err := f.fetchErr[classID]; err != nil {
		return nil, err
	}
	return f.resultlist[classID], nil
}

type fakeTarget struct {
	people       []equipeapi.Person
	horses       []equipeapi.Horse
	clubs        []equipeapi.Club
	competitions []equipeapi.Competition
	starts       map[int][]equipeapi.Start
	results      map[int][]equipeapi.Start

	batches []any
	reply   equipeapi.BatchReply
	err     error
}

func (f *fakeTarget) People(_ context.Context, _, _ string) ([]equipeapi.Person, error) {
	return f.people, nil
}

func (f *fakeTarget) Horses(_ context.Context, _, _ string) ([]equipeapi.Horse, error) {
	return f.horses, nil
}

func (f *fakeTarget) Clubs(_ context.Context, _, _ string) ([]equipeapi.Club, error) {
	return f.clubs, nil
}

func (f *fakeTarget) Competitions(_ context.Context, _, _ string) ([]equipeapi.Competition, error) {
	return f.competitions, nil
}

func (f *fakeTarget) Starts(_ context.Context, _, _ string, competitionID int) ([]equipeapi.Start, error) {
	return f.starts[competitionID], nil
}

func (f *fakeTarget) Results(_ context.Context, _, _ string, competitionID int) ([]equipeapi.Start, error) {
	return f.results[competitionID], nil
}

func (f *fakeTarget) SubmitBatch(_ context.Context, _, _ string, batch any, _ string) (equipeapi.BatchReply, error) {
	f.batches = append(f.batches, batch)
	if f.err != nil {
		return equipeapi.BatchReply{}, f.err
	}
	if f.reply.StatusCode == 0 {
		return equipeapi.BatchReply{StatusCode: 200, Body: "{}"}, nil
	}
	return f.reply, nil
}

func newService(src *fakeSource, tgt *fakeTarget) *app.Service {
	svc, err := app.New(
		app.WithSource(src),
		app.WithTarget(tgt),
		app.WithClock(func() time.Time {
			return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		}),
	)
	if err != nil {
		panic(err)
	}
	return svc
}

func eventDoc() *model.EventDocument {
	doc := &model.EventDocument{}
	doc.Event.ID = "2213"
	doc.Event.Caption = "Spring Tour"
	doc.Classes.Class = []model.Class{
		{ID: "500", NR: "12", Name: "Grand Prix", Date: "2025-06-01"},
		{ID: "501", Sponsor: "Longines Cup", Date: "2025-06-02"},
	}
	return doc
}

func classDoc(competitors ...model.Competitor) *model.ClassDocument {
	doc := &model.ClassDocument{}
	doc.Class.Competitors.Competitor = competitors
	return doc
}

func competitor(riderID, nation string) model.Competitor {
	return model.Competitor{
		Rider: model.Rider{FeiID: model.FlexString(riderID), Name: "Rider " + riderID, Nation: nation},
		Horse: model.Horse{FeiID: model.FlexString("H" + riderID), Name: "Horse " + riderID},
	}
}

func TestNew(t *testing.T) {
	Convey("Given missing dependencies", t, func() {
		_, err := app.New(app.WithTarget(&fakeTarget{}))
		So(err, ShouldWrap, app.ErrMissingSource)

		_, err = app.New(app.WithSource(&fakeSource{}))
		So(err, ShouldWrap, app.ErrMissingTarget)
	})
}

func TestFetchEventInfo(t *testing.T) {
	Convey("Given an event with two classes", t, func() {
		svc := newService(&fakeSource{event: eventDoc()}, &fakeTarget{})

		Convey("When the info is fetched", func() {
			info, err := svc.FetchEventInfo(context.Background(), "2213")

			So(err, ShouldBeNil)
			So(info.EventID, ShouldEqual, "2213")
			So(info.Classes, ShouldHaveLength, 2)
			So(info.Classes[1].Name, ShouldEqual, "Longines Cup")
		})

		Convey("When the show id is blank", func() {
			_, err := svc.FetchEventInfo(context.Background(), "")
			So(err, ShouldWrap, app.ErrValidation)
		})
	})

	Convey("Given an unreachable source", t, func() {
		svc := newService(&fakeSource{eventErr: errors.New("boom")}, &fakeTarget{})

		_, err := svc.FetchEventInfo(context.Background(), "2213")
		So(err, ShouldNotBeNil)
	})
}

func TestImportedStatus(t *testing.T) {
	Convey("Given a meeting with three competitions", t, func() {
		tgt := &fakeTarget{
			competitions: []equipeapi.Competition{
				{ID: 1, ForeignID: "500"},
				{ID: 2, ForeignID: "501"},
				{ID: 3, ForeignID: "502", Lag: true},
			},
			starts: map[int][]equipeapi.Start{
				1: {{Grundf: nil, Grundt: nil}},
				2: {{Grundf: 7.0}},
				3: {{Grundf: 0.0}},
			},
			results: map[int][]equipeapi.Start{
				1: {{Grundf: 4.0}},
				2: {{Grundf: nil, Grundt: nil}},
			},
		}
		svc := newService(&fakeSource{}, tgt)

		Convey("When the status is derived", func() {
			status, err := svc.ImportedStatus(context.Background(), "https://app.equipe.com/meetings/1", "key")

			So(err, ShouldBeNil)
			So(status.Classes, ShouldResemble, []string{"500", "501", "502"})

			Convey("Then results require a numeric score on the results endpoint", func() {
				So(status.Startlists, ShouldResemble, []string{"500", "501"})
				So(status.Results, ShouldResemble, []string{"500"})
			})

			Convey("And a numeric score on the startlist alone does not count", func() {
				So(status.Results, ShouldNotContain, "501")
			})

			Convey("And a team competition without team links is not an imported startlist", func() {
				So(status.Startlists, ShouldNotContain, "502")
			})
		})

		Convey("When the meeting url is blank", func() {
			_, err := svc.ImportedStatus(context.Background(), "", "key")
			So(err, ShouldWrap, app.ErrValidation)
		})
	})
}

func TestImportClasses(t *testing.T) {
	Convey("Given two selected classes", t, func() {
		tgt := &fakeTarget{}
		svc := newService(&fakeSource{event: eventDoc()}, tgt)

		selections := []transform.Selection{
			{ClassID: "500", ImportClass: true, ImportStartlist: true, ImportResults: true},
			{ClassID: "501", ImportClass: true, ImportStartlist: true},
		}

		Convey("When the classes are imported", func() {
			report, err := svc.ImportClasses(context.Background(), "2213", "key", "https://m", selections)

			So(err, ShouldBeNil)

			Convey("Then one competitions batch is submitted", func() {
				So(tgt.batches, ShouldHaveLength, 1)
				batch := tgt.batches[0].(equipe.Batch)
				So(batch["competitions"].SkipUserChanged, ShouldBeTrue)
				records := batch["competitions"].Records.([]equipe.Competition)
				So(records, ShouldHaveLength, 2)
				So(records[0].Clabb, ShouldEqual, "HD-1")
				So(*records[0].Ord, ShouldEqual, 0)
				So(records[1].Clabb, ShouldEqual, "HD-2")
			})

			Convey("And both classes report success", func() {
				So(report.EventID, ShouldEqual, "2213")
				So(report.Results[0].Status, ShouldEqual, app.StatusSuccess)
				So(report.Results[1].Status, ShouldEqual, app.StatusSuccess)
			})

			Convey("And the follow-up work lists are split", func() {
				So(report.StartlistsToProcess, ShouldHaveLength, 2)
				So(report.ResultsToProcess, ShouldHaveLength, 1)
				So(report.ResultsToProcess[0].ForeignID, ShouldEqual, "500")
			})

			Convey("And each task carries the class number for fetching", func() {
				So(report.StartlistsToProcess[0].ForeignID, ShouldEqual, "500")
				So(report.StartlistsToProcess[0].ClassID, ShouldEqual, "12")
				So(report.StartlistsToProcess[1].ClassID, ShouldEqual, "501")
			})
		})

		Convey("When Equipe rejects the batch", func() {
			tgt.reply = equipeapi.BatchReply{StatusCode: 422, Body: `{"error": "nope"}`}

			report, err := svc.ImportClasses(context.Background(), "2213", "key", "https://m", selections)

			So(err, ShouldBeNil)
			So(report.Results[0].Status, ShouldEqual, app.StatusFailed)
			So(report.Results[0].Message, ShouldContainSubstring, "422")
		})

		Convey("When a selection names an unknown class", func() {
			report, err := svc.ImportClasses(context.Background(), "2213", "key", "https://m",
				[]transform.Selection{{ClassID: "999", ImportClass: true}})

			So(err, ShouldBeNil)
			So(report.Results[0].Status, ShouldEqual, app.StatusFailed)
			So(tgt.batches, ShouldBeEmpty)
		})

		Convey("When no classes are selected", func() {
			_, err := svc.ImportClasses(context.Background(), "2213", "key", "https://m", nil)
			So(err, ShouldWrap, app.ErrValidation)
			So(tgt.batches, ShouldBeEmpty)
		})
	})
}

func TestImportStartlists(t *testing.T) {
	Convey("Given two competitions sharing a rider", t, func() {
		shared := competitor("R1", "")
		src := &fakeSource{
			startlists: map[string]*model.ClassDocument{
				"500": classDoc(shared, competitor("R2", "")),
				"501": classDoc(shared),
			},
			fetchErr: map[string]error{},
		}
		tgt := &fakeTarget{}
		svc := newService(src, tgt)

		tasks := []app.CompetitionTask{
			{ClassID: "500", Name: "Grand Prix"},
			{ClassID: "501", Name: "Longines Cup"},
		}

		Convey("When the startlists are imported", func() {
			report, err := svc.ImportStartlists(context.Background(), "2213", "key", "https://m", tasks)

			So(err, ShouldBeNil)

			Convey("Then the reference batch goes first and dedupes the rider", func() {
				So(len(tgt.batches), ShouldEqual, 3)
				ref := tgt.batches[0].(equipe.Batch)
				people := ref["people"].Records.([]equipe.Person)
				So(people, ShouldHaveLength, 2)
				horses := ref["horses"].Records.([]equipe.Horse)
				So(horses, ShouldHaveLength, 2)
			})

			Convey("And each competition submits its own starts batch", func() {
				first := tgt.batches[1].(equipe.Batch)
				starts := first["starts"]
				So(starts.UniqueBy, ShouldEqual, "foreign_id")
				So(starts.Replace, ShouldBeTrue)
				So(starts.AbortIfAny, ShouldResemble, map[string]any{"rid": true})
				So(starts.Where, ShouldResemble, equipe.CompetitionScope("500"))
			})

			Convey("And both competitions report success with counts", func() {
				So(report.Processed[0].Status, ShouldEqual, app.StatusSuccess)
				So(report.Processed[0].Starts, ShouldEqual, 2)
				So(report.Processed[1].Starts, ShouldEqual, 1)
				So(report.Processed[1].People, ShouldEqual, 0)
			})
		})

		Convey("When one competition's fetch fails", func() {
			src.fetchErr["500"] = errors.New("upstream 500")

			report, err := svc.ImportStartlists(context.Background(), "2213", "key", "https://m", tasks)

			Convey("Then the failure is isolated", func() {
				So(err, ShouldBeNil)
				So(report.Processed[0].Status, ShouldEqual, app.StatusFailed)
				So(report.Processed[0].Message, ShouldContainSubstring, "upstream 500")
				So(report.Processed[1].Status, ShouldEqual, app.StatusSuccess)
			})
		})

		Convey("When the meeting already knows the shared rider", func() {
			tgt.people = []equipeapi.Person{{ForeignID: "R1"}}
			tgt.horses = []equipeapi.Horse{{ForeignID: "HR1"}}

			_, err := svc.ImportStartlists(context.Background(), "2213", "key", "https://m", tasks)

			So(err, ShouldBeNil)
			ref := tgt.batches[0].(equipe.Batch)
			people := ref["people"].Records.([]equipe.Person)
			So(people, ShouldHaveLength, 1)
			So(people[0].ForeignID, ShouldEqual, "R2")
		})

		Convey("When the class number differs from the class id", func() {
			src.startlists["12"] = classDoc(competitor("R9", ""))
			nrTasks := []app.CompetitionTask{{ForeignID: "500", ClassID: "12", Name: "Grand Prix"}}

			_, err := svc.ImportStartlists(context.Background(), "2213", "key", "https://m", nrTasks)

			So(err, ShouldBeNil)

			Convey("Then the fetch uses the number and the batch the foreign id", func() {
				So(len(tgt.batches), ShouldEqual, 2)
				batch := tgt.batches[1].(equipe.Batch)
				So(batch["starts"].Where, ShouldResemble, equipe.CompetitionScope("500"))

				starts := batch["starts"].Records.([]equipe.Start)
				So(starts, ShouldHaveLength, 1)
				So(starts[0].ForeignID, ShouldEndWith, "_500")
			})
		})

		Convey("When no competitions are given", func() {
			_, err := svc.ImportStartlists(context.Background(), "2213", "key", "https://m", nil)
			So(err, ShouldWrap, app.ErrValidation)
		})
	})
}

func TestImportResults(t *testing.T) {
	Convey("Given a competition with results", t, func() {
		status := model.FlexFloat(1)
		rank := model.FlexFloat(1)
		c := competitor("R1", "")
		c.Result = model.RoundResultList{{Round: 1, Faults: 0, Time: 64.2}}
		c.Totals = model.ResultTotalList{{Status: &status, Rank: &rank}}

		src := &fakeSource{
			resultlist: map[string]*model.ClassDocument{"500": classDoc(c)},
			fetchErr:   map[string]error{},
		}
		tgt := &fakeTarget{}
		svc := newService(src, tgt)

		tasks := []app.CompetitionTask{{ClassID: "500", Name: "Grand Prix"}}

		Convey("When the results are imported", func() {
			report, err := svc.ImportResults(context.Background(), "2213", "key", "https://m", tasks)

			So(err, ShouldBeNil)
			So(report.Processed[0].Status, ShouldEqual, app.StatusSuccess)

			Convey("Then one batch per competition is submitted", func() {
				So(tgt.batches, ShouldHaveLength, 1)
				batch := tgt.batches[0].(equipe.Batch)
				starts := batch["starts"]
				So(starts.Replace, ShouldBeTrue)
				So(starts.Where, ShouldResemble, equipe.CompetitionScope("500"))

				records := starts.Records.([]equipe.Start)
				So(records, ShouldHaveLength, 1)
				So(records[0].Rid, ShouldBeTrue)
				So(*records[0].Grundt, ShouldEqual, 64.2)
			})
		})

		Convey("When the class number differs from the class id", func() {
			src.resultlist["77"] = src.resultlist["500"]
			nrTasks := []app.CompetitionTask{{ForeignID: "500", ClassID: "77", Name: "Grand Prix"}}

			_, err := svc.ImportResults(context.Background(), "2213", "key", "https://m", nrTasks)

			So(err, ShouldBeNil)
			batch := tgt.batches[0].(equipe.Batch)
			So(batch["starts"].Where, ShouldResemble, equipe.CompetitionScope("500"))
		})

		Convey("When the fetch fails the competition reports it", func() {
			src.fetchErr["500"] = errors.New("gone")

			report, err := svc.ImportResults(context.Background(), "2213", "key", "https://m", tasks)

			So(err, ShouldBeNil)
			So(report.Processed[0].Status, ShouldEqual, app.StatusFailed)
			So(tgt.batches, ShouldBeEmpty)
		})
	})
}

func TestSendBatch(t *testing.T) {
	Convey("Given a prepared batch document", t, func() {
		tgt := &fakeTarget{}
		svc := newService(&fakeSource{}, tgt)
		batch := map[string]any{"people": map[string]any{"unique_by": "foreign_id"}}

		Convey("When it is proxied", func() {
			reply, err := svc.SendBatch(context.Background(), "https://m", "key", batch, "tx-1")

			So(err, ShouldBeNil)
			So(reply.OK(), ShouldBeTrue)
			So(tgt.batches, ShouldHaveLength, 1)
		})

		Convey("When the batch is empty", func() {
			_, err := svc.SendBatch(context.Background(), "https://m", "key", nil, "")
			So(err, ShouldWrap, app.ErrValidation)
		})
	})
}
