package transcript

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	perr "hansard/internal/platform/errors"
)

// BaseURL is the upstream report endpoint a sitting is fetched from
const BaseURL = "https://sprs.parl.gov.sg/search/getHansardReport/"

// SittingDateLayout is the DD-MM-YYYY form used by the upstream metadata and URLs
const SittingDateLayout = "02-01-2006"

// lenient form of SittingDateLayout, accepts unpadded day and month
const sittingDateInput = "2-1-2006"

// DayLayout is the ISO day stored in every output row
const DayLayout = "2006-01-02"

// Document is one sitting as delivered upstream. Only the fields the parser reads are modelled
type Document struct {
	Metadata   Metadata     `json:"metadata"`
	Attendance []RosterLine `json:"attendanceList"`
	Leave      []LeaveLine  `json:"ptbaList"`
	Sections   []Section    `json:"takesSectionVOList"`
}

// Metadata is the sitting header. ParliamentNo is read from the upstream's misspelled key
type Metadata struct {
	SittingDate  string          `json:"sittingDate"`
	ParliamentNo json.RawMessage `json:"parlimentNO"`
	Speaker      Text            `json:"speaker"`
	PTBAFrom     json.RawMessage `json:"ptbaFrom"`
}

// RosterLine is one attendance list entry
type RosterLine struct {
	Name    Text   `json:"mpName"`
	Present Truthy `json:"attendance"`
}

// LeaveLine is one permission-to-be-absent entry. A blank Name repeats the previous member
type LeaveLine struct {
	Name Text `json:"mpName"`
	From Text `json:"from"`
	To   Text `json:"to"`
}

// Section is one block of the transcript with its HTML fragment
type Section struct {
	Type    Text `json:"sectionType"`
	Title   Text `json:"title"`
	Content Text `json:"content"`
}

// Text is a lenient JSON string: null, objects and arrays read as empty, numbers and
// bools keep their literal form
type Text string

// UnmarshalJSON implements json.Unmarshaler
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")):
		*t = ""
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	case b[0] == '{', b[0] == '[':
		*t = ""
		return nil
	}
	*t = Text(b)
	return nil
}

// String returns the underlying value
func (t Text) String() string { return string(t) }

// Truthy decodes any JSON value by truthiness: false, 0, "", null, [] and {} are false
type Truthy bool

// UnmarshalJSON implements json.Unmarshaler
func (t *Truthy) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		*t = false
	case bool:
		*t = Truthy(x)
	case float64:
		*t = x != 0
	case string:
		*t = x != ""
	case []any:
		*t = len(x) > 0
	case map[string]any:
		*t = len(x) > 0
	}
	return nil
}

// Decode reads a sitting document. Any structural problem is a JSON coded error
func Decode(raw []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, perr.Wrap(err, perr.ErrorCodeJSON, "decode sitting document")
	}
	return doc, nil
}

// Blank reports a document with no sitting date, roster or sections. Upstream answers
// non-sitting days with one of these rather than a 404
func (d Document) Blank() bool {
	return strings.TrimSpace(d.Metadata.SittingDate) == "" && len(d.Attendance) == 0 && len(d.Sections) == 0
}

// Date parses metadata.sittingDate. A sitting without a valid date cannot be keyed
func (m Metadata) Date() (time.Time, error) {
	s := strings.TrimSpace(m.SittingDate)
	if s == "" {
		return time.Time{}, perr.WithField(perr.New(perr.ErrorCodeValidation, "missing sitting date"), "metadata.sittingDate")
	}
	d, err := time.Parse(sittingDateInput, s)
	if err != nil {
		return time.Time{}, perr.WithField(perr.Wrapf(err, perr.ErrorCodeValidation, "invalid sitting date %q", s), "metadata.sittingDate")
	}
	return d, nil
}

// Parliament reads parlimentNO as a number or numeric string; anything else is absent
func (m Metadata) Parliament() *int {
	if len(m.ParliamentNo) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(m.ParliamentNo, &v); err != nil {
		return nil
	}
	var n int
	switch x := v.(type) {
	case float64:
		if x != float64(int(x)) {
			return nil
		}
		n = int(x)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return nil
		}
		n = i
	default:
		return nil
	}
	return &n
}

var reYear = regexp.MustCompile(`(19\d{2}|20\d{2})`)

// DefaultYear is the year ambiguous leave dates resolve into: a bare number, or the first
// 19xx/20xx in strings like "FY2017/2018", else fallback
func (m Metadata) DefaultYear(fallback int) int {
	if len(m.PTBAFrom) == 0 {
		return fallback
	}
	var v any
	if err := json.Unmarshal(m.PTBAFrom, &v); err != nil {
		return fallback
	}
	switch x := v.(type) {
	case float64:
		if x == float64(int(x)) {
			return int(x)
		}
	case string:
		if y := reYear.FindString(x); y != "" {
			n, _ := strconv.Atoi(y)
			return n
		}
	}
	return fallback
}

// SourceURL is the report URL for a sitting day
func SourceURL(day time.Time) string {
	return BaseURL + "?sittingDate=" + day.Format(SittingDateLayout)
}
