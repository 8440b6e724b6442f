// Package model contains the typed shapes of Hippodata scoring documents.
//
// Hippodata payloads are built from uppercase keys and are loose about
// scalar types (numbers may arrive as strings) and about cardinality (a
// list with a single element may arrive as a bare object). All of that
// tolerance lives here, at the decoding boundary, so the transformers
// downstream operate on plain typed fields.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FlexString is a string that can be unmarshaled from either a string or a
// number. Hippodata mixes both for identifiers and start numbers.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler for FlexString.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexString(n.String())
		return nil
	}

	return fmt.Errorf("FlexString: cannot unmarshal %s", string(data))
}

// String returns the string value.
func (f FlexString) String() string {
	return string(f)
}

// FlexFloat is a float64 that can be unmarshaled from a number or a
// numeric string. Blank strings and null decode as zero.
type FlexFloat float64

// UnmarshalJSON implements json.Unmarshaler for FlexFloat.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = 0
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*f = FlexFloat(v)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("FlexFloat: cannot parse %q", s)
		}
		*f = FlexFloat(v)
		return nil
	}

	return fmt.Errorf("FlexFloat: cannot unmarshal %s", string(data))
}

// Float returns the float64 value.
func (f FlexFloat) Float() float64 {
	return float64(f)
}

// Int returns the value truncated to int.
func (f FlexFloat) Int() int {
	return int(f)
}

// Event is the show header of an event document.
type Event struct {
	ID       FlexString `json:"ID"`
	Caption  string     `json:"CAPTION"`
	Location string     `json:"LOCATION"`
}

// Prize carries a class or result prize. Classes use MONEY/CURRENCY,
// result totals use MONEY/TEXT (prize in kind).
type Prize struct {
	Money    *FlexFloat `json:"MONEY"`
	Currency string     `json:"CURRENCY"`
	Text     string     `json:"TEXT"`
}

// Class is one scored unit within an event.
type Class struct {
	ID       FlexString `json:"ID"`
	NR       FlexString `json:"NR"`
	Name     string     `json:"NAME"`
	Sponsor  string     `json:"SPONSOR"`
	Date     string     `json:"DATE"`
	DateTime string     `json:"DATETIME"`
	Category string     `json:"CATEGORY"`
	Status   string     `json:"STATUS"`
	Prize    *Prize     `json:"PRIZE"`
}

// DisplayName returns NAME, falling back to SPONSOR when NAME is blank.
func (c Class) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Sponsor
}

// StartTime derives a HH:MM start time from the optional DATETIME field.
// An absent or unparseable DATETIME yields an empty string, not an error.
func (c Class) StartTime() string {
	if c.DateTime == "" {
		return ""
	}
	t, err := time.Parse("2006-01-02 15:04:05", c.DateTime)
	if err != nil {
		return ""
	}
	return t.Format("15:04")
}

// PrizeMoney returns the prize amount, zero when absent.
func (c Class) PrizeMoney() float64 {
	if c.Prize == nil || c.Prize.Money == nil {
		return 0
	}
	return c.Prize.Money.Float()
}

// PrizeCurrency returns the prize currency, defaulting to EUR.
func (c Class) PrizeCurrency() string {
	if c.Prize == nil || c.Prize.Currency == "" {
		return "EUR"
	}
	return c.Prize.Currency
}

// EventDocument is the response of GET /scoring/event/{id}.
type EventDocument struct {
	Event   Event `json:"EVENT"`
	Classes struct {
		Class []Class `json:"CLASS"`
	} `json:"CLASSES"`
}

// Rider is a competitor's rider record.
type Rider struct {
	FeiID  FlexString `json:"RFEI_ID"`
	Name   string     `json:"RNAME"`
	Nation string     `json:"NATION"`
	Club   string     `json:"CLUB"`
}

// HorseInfo carries breeding and registration details of a horse.
type HorseInfo struct {
	Gender       string     `json:"GENDER"`
	BornYear     FlexString `json:"BORNYEAR"`
	Age          *FlexFloat `json:"AGE"`
	Owner        string     `json:"OWNER"`
	Father       string     `json:"FATHER"`
	MotherFather string     `json:"MOTHERFATHER"`
	Breed        string     `json:"BREED"`
	Color        string     `json:"COLOR"`
}

// Horse is a competitor's horse record.
type Horse struct {
	FeiID  FlexString `json:"HFEI_ID"`
	Name   string     `json:"HNAME"`
	Number FlexString `json:"HNR"`
	Info   *HorseInfo `json:"HORSEINFO"`
}

// RoundResult is one round's fault/time/time-fault triple.
type RoundResult struct {
	Round      FlexFloat `json:"ROUND"`
	Faults     FlexFloat `json:"FAULTS"`
	Time       FlexFloat `json:"TIME"`
	TimeFaults FlexFloat `json:"TIMEFAULTS"`
}

// ResultTotal is the aggregate block of a competitor's result.
type ResultTotal struct {
	Status *FlexFloat `json:"STATUS"`
	Text   string     `json:"TEXT"`
	Name   string     `json:"NAME"`
	Rank   *FlexFloat `json:"RANK"`
	Faults *FlexFloat `json:"FAULTS"`
	Prize  *Prize     `json:"PRIZE"`
}

// Competitor embeds a rider and a horse plus per-round result entries.
type Competitor struct {
	Rider     Rider           `json:"RIDER"`
	Horse     Horse           `json:"HORSE"`
	SortOrder *FlexFloat      `json:"SORTORDER"`
	SortRound *SortRound      `json:"SORTROUND"`
	Result    RoundResultList `json:"RESULT"`
	Totals    ResultTotalList `json:"RESULTTOTAL"`
}

// SortRound carries the declared per-round sort orders.
type SortRound struct {
	Round1 *FlexFloat `json:"ROUND1"`
}

// HasRound reports whether the competitor has a result entry for round n.
func (c Competitor) HasRound(n int) bool {
	for _, r := range c.Result {
		if r.Round.Int() == n {
			return true
		}
	}
	return false
}

// Total returns the first RESULTTOTAL block, or nil when absent.
func (c Competitor) Total() *ResultTotal {
	if len(c.Totals) == 0 {
		return nil
	}
	return &c.Totals[0]
}

// CompetitorList normalizes Hippodata's COMPETITOR field: a single
// competitor arrives as a bare object rather than a one-element array.
type CompetitorList []Competitor

// UnmarshalJSON implements json.Unmarshaler for CompetitorList.
func (l *CompetitorList) UnmarshalJSON(data []byte) error {
	return unmarshalObjectOrArray(data, (*[]Competitor)(l))
}

// RoundResultList applies the same single-object normalization to RESULT.
type RoundResultList []RoundResult

// UnmarshalJSON implements json.Unmarshaler for RoundResultList.
func (l *RoundResultList) UnmarshalJSON(data []byte) error {
	return unmarshalObjectOrArray(data, (*[]RoundResult)(l))
}

// ResultTotalList applies the same single-object normalization to RESULTTOTAL.
type ResultTotalList []ResultTotal

// UnmarshalJSON implements json.Unmarshaler for ResultTotalList.
func (l *ResultTotalList) UnmarshalJSON(data []byte) error {
	return unmarshalObjectOrArray(data, (*[]ResultTotal)(l))
}

// unmarshalObjectOrArray decodes data into out, accepting either a JSON
// array or a bare object treated as a one-element array.
func unmarshalObjectOrArray[T any](data []byte, out *[]T) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*out = nil
		return nil
	}

	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*out = items
		return nil
	}

	var single T
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return err
	}
	*out = []T{single}
	return nil
}

// ClassDetail is the class body of a startlist or resultlist document,
// including class-level timing fields and the competitor roster.
type ClassDetail struct {
	Class

	Time1Allowed *FlexFloat `json:"TIME1_ALLOWED"`
	Time2Allowed *FlexFloat `json:"TIME2_ALLOWED"`
	Time3Allowed *FlexFloat `json:"TIME3_ALLOWED"`
	Time4Allowed *FlexFloat `json:"TIME4_ALLOWED"`
	Time5Allowed *FlexFloat `json:"TIME5_ALLOWED"`

	Rounds json.RawMessage `json:"ROUNDS"`

	Competitors struct {
		Competitor CompetitorList `json:"COMPETITOR"`
	} `json:"COMPETITORS"`
}

// ClassDocument is the response of the startlist and resultlist endpoints.
type ClassDocument struct {
	Class ClassDetail `json:"CLASS"`
}
