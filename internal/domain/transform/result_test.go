package transform_test

import (
	"testing"

	"github.com/jumpingaccess/Hippodata2Equipe/internal/domain/equipe"
	"github.com/jumpingaccess/Hippodata2Equipe/internal/domain/model"
	"github.com/jumpingaccess/Hippodata2Equipe/internal/domain/transform"
	. "github.com/smartystreets/goconvey/convey"
)

type roundSpec struct {
	round      int
	faults     float64
	time       float64
	timeFaults float64
}

func scored(feiID, nation string, total *model.ResultTotal, rounds ...roundSpec) model.Competitor {
	c := model.Competitor{
		Rider: model.Rider{FeiID: model.FlexString(feiID), Name: "Rider " + feiID, Nation: nation},
		Horse: model.Horse{FeiID: model.FlexString("H" + feiID), Name: "Horse " + feiID},
	}
	for _, r := range rounds {
		c.Result = append(c.Result, model.RoundResult{
			Round:      model.FlexFloat(r.round),
			Faults:     model.FlexFloat(r.faults),
			Time:       model.FlexFloat(r.time),
			TimeFaults: model.FlexFloat(r.timeFaults),
		})
	}
	if total != nil {
		c.Totals = model.ResultTotalList{*total}
	}
	return c
}

func normalTotal(rank int, faults float64) *model.ResultTotal {
	status := model.FlexFloat(1)
	r := model.FlexFloat(rank)
	f := model.FlexFloat(faults)
	return &model.ResultTotal{Status: &status, Rank: &r, Faults: &f}
}

func specialTotal(text, roundName string, rank *int) *model.ResultTotal {
	status := model.FlexFloat(2)
	t := &model.ResultTotal{Status: &status, Text: text, Name: roundName}
	if rank != nil {
		r := model.FlexFloat(*rank)
		t.Rank = &r
	}
	return t
}

func resultInput(isTeam bool, competitors ...model.Competitor) transform.ResultInput {
	detail := model.ClassDetail{}
	detail.Competitors.Competitor = competitors
	return transform.ResultInput{
		CompetitionForeignID: "500",
		EventID:              "2213",
		IsTeam:               isTeam,
		Detail:               detail,
		Now:                  testNow,
	}
}

func TestResultsNormal(t *testing.T) {
	Convey("Given a clear round over two rounds", t, func() {
		order := model.FlexFloat(5)
		c := scored("R1", "", normalTotal(1, 0),
			roundSpec{round: 1, faults: 0, time: 65.3},
			roundSpec{round: 2, faults: 0, time: 38.1})
		c.SortOrder = &order

		out := transform.Results(resultInput(false, c))

		Convey("Then the start carries both round triples", func() {
			So(out.Starts, ShouldHaveLength, 1)
			st := out.Starts[0]
			So(*st.Grundf, ShouldEqual, 0.0)
			So(*st.Grundt, ShouldEqual, 65.3)
			So(*st.Omh1f, ShouldEqual, 0.0)
			So(*st.Omh1t, ShouldEqual, 38.1)
			So(*st.Totfel, ShouldEqual, 0.0)
		})

		Convey("And the result bookkeeping fields are set", func() {
			st := out.Starts[0]
			So(st.ForeignID, ShouldEqual, "R1_HR1_500")
			So(st.Rid, ShouldBeTrue)
			So(st.K, ShouldEqual, "H")
			So(st.Av, ShouldEqual, "A")
			So(st.ResultAt, ShouldEqual, "2025-06-01 12:00:00")
			So(*st.Ord, ShouldEqual, 5)
			So(*st.Re, ShouldEqual, 1)
		})
	})

	Convey("Given a competitor without a sort order", t, func() {
		out := transform.Results(resultInput(false,
			scored("R1", "", normalTotal(3, 4), roundSpec{round: 1, faults: 4, time: 70})))

		So(*out.Starts[0].Ord, ShouldEqual, 1000)
	})

	Convey("Given a competitor with zero result entries", t, func() {
		out := transform.Results(resultInput(false, scored("R1", "", nil)))

		Convey("Then it is treated as a no-show", func() {
			st := out.Starts[0]
			So(st.A, ShouldEqual, "U")
			So(*st.Grundf, ShouldEqual, 999.0)
			So(*st.Grundt, ShouldEqual, 999.0)
			So(st.Tfg, ShouldBeNil)
			So(st.ResultPreview, ShouldEqual, "NS")
		})
	})

	Convey("Given an unidentifiable competitor", t, func() {
		out := transform.Results(resultInput(false, model.Competitor{}))

		So(out.Starts, ShouldBeEmpty)
		So(out.Skipped, ShouldEqual, 1)
	})
}

func TestResultsStatuses(t *testing.T) {
	Convey("Given an eliminated and a retired competitor", t, func() {
		rank := 12
		out := transform.Results(resultInput(false,
			scored("R1", "", specialTotal("Eliminated", "", &rank), roundSpec{round: 1, faults: 4, time: 40}),
			scored("R2", "", specialTotal("Retired", "", nil), roundSpec{round: 1, faults: 8, time: 30}),
		))

		Convey("Then both share the first eliminated rank", func() {
			So(*out.Starts[0].Re, ShouldEqual, 12)
			So(*out.Starts[1].Re, ShouldEqual, 12)
		})

		Convey("And each carries its own status flag and sentinels", func() {
			el := out.Starts[0]
			So(el.Or, ShouldEqual, "D")
			So(el.ResultPreview, ShouldEqual, "El.")
			So(*el.Grundf, ShouldEqual, 999.0)
			So(el.Tfg, ShouldBeNil)

			ret := out.Starts[1]
			So(ret.Or, ShouldEqual, "U")
			So(ret.ResultPreview, ShouldEqual, "Ret.")
		})
	})

	Convey("Given a disqualified competitor", t, func() {
		out := transform.Results(resultInput(false,
			scored("R1", "", specialTotal("Disqualified", "", nil))))

		So(out.Starts[0].Or, ShouldEqual, "S")
		So(out.Starts[0].ResultPreview, ShouldEqual, "Dsq.")
	})

	Convey("Given a withdrawal naming round two", t, func() {
		out := transform.Results(resultInput(false,
			scored("R1", "", specialTotal("Withdrawn", "Round 2", nil),
				roundSpec{round: 1, faults: 0, time: 64})))

		Convey("Then the sentinel lands on the second round's fields", func() {
			st := out.Starts[0]
			So(*st.Omh1f, ShouldEqual, 999.0)
			So(*st.Omh1t, ShouldEqual, 999.0)
			So(*st.Totfel, ShouldEqual, 999.0)
			So(st.ResultPreview, ShouldEqual, "0-ABST")
			So(st.A, ShouldBeEmpty)
			So(*st.Grundf, ShouldEqual, 0.0)
		})
	})

	Convey("Given a withdrawal naming the jump-off", t, func() {
		out := transform.Results(resultInput(false,
			scored("R1", "", specialTotal("Withdrawn", "Jump-Off", nil),
				roundSpec{round: 1, faults: 0, time: 64})))

		So(*out.Starts[0].Omh1f, ShouldEqual, 999.0)
	})

	Convey("Given a withdrawal with no recognizable round name", t, func() {
		out := transform.Results(resultInput(false,
			scored("R1", "", specialTotal("Withdrawn", "", nil))))

		Convey("Then the whole start is abstained", func() {
			st := out.Starts[0]
			So(st.A, ShouldEqual, "Ö")
			So(*st.Grundf, ShouldEqual, 999.0)
			So(st.ResultPreview, ShouldEqual, "ABST")
		})
	})

	Convey("Given an explicit no show", t, func() {
		out := transform.Results(resultInput(false,
			scored("R1", "", specialTotal("No Show", "", nil))))

		So(out.Starts[0].A, ShouldEqual, "U")
		So(out.Starts[0].ResultPreview, ShouldEqual, "NS")
	})
}

func TestResultsPrize(t *testing.T) {
	Convey("Given a competitor with prize money", t, func() {
		money := model.FlexFloat(1500)
		total := normalTotal(2, 0)
		total.Prize = &model.Prize{Money: &money}

		out := transform.Results(resultInput(false,
			scored("R1", "", total, roundSpec{round: 1, faults: 0, time: 60})))

		So(*out.Starts[0].Premie, ShouldEqual, 1500.0)
		So(*out.Starts[0].PremieShow, ShouldEqual, 1500.0)
		So(out.Starts[0].Rtxt, ShouldBeEmpty)
	})

	Convey("Given a prize in kind", t, func() {
		total := normalTotal(4, 4)
		total.Prize = &model.Prize{Text: "Saddle pad"}

		out := transform.Results(resultInput(false,
			scored("R1", "", total, roundSpec{round: 1, faults: 4, time: 62})))

		So(out.Starts[0].Rtxt, ShouldEqual, "Saddle pad")
		So(*out.Starts[0].Premie, ShouldEqual, 0.0)
	})
}

func TestResultsCompetitionUpdate(t *testing.T) {
	Convey("Given class-level allowed times", t, func() {
		t1 := model.FlexFloat(78)
		t2 := model.FlexFloat(45)
		in := resultInput(true, scored("R1", "FRA", normalTotal(1, 0),
			roundSpec{round: 1, faults: 0, time: 70}))
		in.Detail.Time1Allowed = &t1
		in.Detail.Time2Allowed = &t2

		out := transform.Results(in)

		Convey("Then the competition update carries them plus the team flag", func() {
			So(out.CompetitionUpdate, ShouldNotBeNil)
			So(out.CompetitionUpdate.ForeignID, ShouldEqual, "500")
			So(*out.CompetitionUpdate.Grundt, ShouldEqual, 78)
			So(*out.CompetitionUpdate.Omh1t, ShouldEqual, 45)
			So(out.CompetitionUpdate.Team, ShouldBeTrue)
		})
	})

	Convey("Given no allowed times in an individual class", t, func() {
		out := transform.Results(resultInput(false,
			scored("R1", "", normalTotal(1, 0), roundSpec{round: 1, faults: 0, time: 70})))

		So(out.CompetitionUpdate, ShouldBeNil)
	})
}

func TestResultsTeamFlags(t *testing.T) {
	Convey("Given a team competition", t, func() {
		Convey("When a rider completed round one", func() {
			out := transform.Results(resultInput(true,
				scored("R1", "FRA", normalTotal(1, 0), roundSpec{round: 1, faults: 0, time: 64})))

			So(*out.Starts[0].Round1InTeam, ShouldBeTrue)
		})

		Convey("When a rider was eliminated", func() {
			out := transform.Results(resultInput(true,
				scored("R1", "FRA", specialTotal("Eliminated", "", nil),
					roundSpec{round: 1, faults: 4, time: 40})))

			Convey("Then the 999 sentinel keeps them out of every round", func() {
				st := out.Starts[0]
				So(*st.Round1InTeam, ShouldBeFalse)
				So(*st.Round2InTeam, ShouldBeFalse)
				So(*st.Round5InTeam, ShouldBeFalse)
			})
		})

		Convey("When two of four riders missed round two without an exemption", func() {
			out := transform.Results(resultInput(true,
				scored("F1", "FRA", normalTotal(1, 0), roundSpec{round: 1}, roundSpec{round: 2}),
				scored("F2", "FRA", normalTotal(2, 0), roundSpec{round: 1}, roundSpec{round: 2}),
				scored("F3", "FRA", normalTotal(5, 0), roundSpec{round: 1}),
				scored("F4", "FRA", normalTotal(6, 0), roundSpec{round: 1}),
			))

			Convey("Then the absentees are forced into a scored abstention", func() {
				st := out.Starts[2]
				So(*st.Omh1f, ShouldEqual, 999.0)
				So(*st.Omh1t, ShouldEqual, 999.0)
				So(st.Or, ShouldEqual, "A")
				So(*st.Totfel, ShouldEqual, 999.0)
				So(*st.Round2InTeam, ShouldBeTrue)
				So(st.ResultPreview, ShouldEqual, "0-ABST")
				So(st.SkipRounds, ShouldBeEmpty)
			})
		})

		Convey("When three of four riders rode round two", func() {
			out := transform.Results(resultInput(true,
				scored("F1", "FRA", normalTotal(1, 0), roundSpec{round: 1}, roundSpec{round: 2}),
				scored("F2", "FRA", normalTotal(2, 0), roundSpec{round: 1}, roundSpec{round: 2}),
				scored("F3", "FRA", normalTotal(3, 0), roundSpec{round: 1}, roundSpec{round: 2}),
				scored("F4", "FRA", normalTotal(6, 0), roundSpec{round: 1}),
			))

			Convey("Then the fourth rider is exempt instead of abstained", func() {
				st := out.Starts[3]
				So(st.SkipRounds, ShouldResemble, []int{2})
				So(st.Omh1f, ShouldBeNil)
				So(st.Or, ShouldBeEmpty)
				So(*st.Round2InTeam, ShouldBeFalse)
			})
		})

		Convey("When a rider carries an unrecognized special status", func() {
			out := transform.Results(resultInput(true,
				scored("F1", "FRA", normalTotal(1, 0), roundSpec{round: 1}, roundSpec{round: 2}),
				scored("F2", "FRA", specialTotal("Under review", "", nil),
					roundSpec{round: 1, faults: 0, time: 64}),
			))

			Convey("Then no abstention is forced and later rounds stay out", func() {
				st := out.Starts[1]
				So(st.Omh1f, ShouldBeNil)
				So(st.Or, ShouldBeEmpty)
				So(*st.Round1InTeam, ShouldBeTrue)
				So(*st.Round2InTeam, ShouldBeFalse)
				So(*st.Round5InTeam, ShouldBeFalse)
			})
		})

		Convey("When a rider rode all three rounds", func() {
			out := transform.Results(resultInput(true,
				scored("R1", "FRA", normalTotal(1, 0),
					roundSpec{round: 1}, roundSpec{round: 2}, roundSpec{round: 3})))

			st := out.Starts[0]
			So(*st.Round1InTeam, ShouldBeTrue)
			So(*st.Round2InTeam, ShouldBeTrue)
			So(*st.Round3InTeam, ShouldBeTrue)
			So(st.Round4InTeam, ShouldBeNil)
		})
	})
}

func TestResultsBatchKeyStability(t *testing.T) {
	Convey("Given the same competitor in startlist and result context", t, func() {
		c := scored("R1", "FRA", normalTotal(1, 0), roundSpec{round: 1, faults: 0, time: 64})

		resultOut := transform.Results(resultInput(false, c))
		startOut := transform.Startlist(startlistInput(false, c))

		Convey("Then both produce the identical composite key", func() {
			So(resultOut.Starts[0].ForeignID, ShouldEqual, startOut.Starts[0].ForeignID)
			So(resultOut.Starts[0].ForeignID, ShouldEqual,
				equipe.StartForeignID("R1", "HR1", "500"))
		})
	})
}
