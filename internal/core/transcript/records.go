package transcript

import (
	"strings"
	"time"
	"unicode"

	"hansard/internal/core/names"
)

// SectionKind is the normalized class of a transcript section
type SectionKind string

const (
	// KindOralAnswer is Question Time, sectionType OA
	KindOralAnswer SectionKind = "oral_answer"
	// KindWrittenAnswer is a written answer, WA
	KindWrittenAnswer SectionKind = "written_answer"
	// KindWrittenNotAnswered is a question not reached orally and answered in writing, WANA
	KindWrittenNotAnswered SectionKind = "written_answer_not_answered"
	// KindOther covers everything else, including codes never seen before
	KindOther SectionKind = "other"
)

// Written reports whether text in this section was never spoken
func (k SectionKind) Written() bool {
	return k == KindWrittenAnswer || k == KindWrittenNotAnswered
}

// SectionCode normalizes a raw sectionType: letters only, upper-cased. Hidden characters
// such as BOMs, NBSPs and stray punctuation drop out
func SectionCode(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(raw)) {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// KindOf maps a normalized code to its kind. Unknown codes are KindOther
func KindOf(code string) SectionKind {
	switch code {
	case "OA":
		return KindOralAnswer
	case "WA":
		return KindWrittenAnswer
	case "WANA":
		return KindWrittenNotAnswered
	}
	return KindOther
}

// Sitting is everything parsed from one document
type Sitting struct {
	Date         time.Time    `json:"-"`
	SittingDate  string       `json:"sitting_date"`
	ParliamentNo *int         `json:"parliament_no"`
	SourceURL    string       `json:"source_url"`
	DefaultYear  int          `json:"default_year"`
	Attendance   []Attendance `json:"attendance"`
	Leave        []Leave      `json:"ptba"`
	Speeches     []Speech     `json:"speeches"`
	Stats        Stats        `json:"stats"`
}

// Empty reports the "no sitting" shape upstream returns for non-sitting days
func (s *Sitting) Empty() bool { return len(s.Attendance) == 0 && len(s.Speeches) == 0 }

// Attendance is one roster row. Key: (sitting_date, mp_name_raw)
type Attendance struct {
	ParliamentNo    *int    `json:"parliament_no"`
	SittingDate     string  `json:"sitting_date"`
	NameRaw         string  `json:"mp_name_raw"`
	NameCleaned     *string `json:"mp_name_cleaned"`
	IsSpeaker       bool    `json:"dim_is_speaker"`
	IsDeputySpeaker bool    `json:"dim_is_deputy_speaker"`
	IsPresent       bool    `json:"dim_is_present"`
}

// Leave is a leave row overlapping the sitting. Key: (sitting_date, mp_name_raw, ptba_from, ptba_to)
type Leave struct {
	ParliamentNo *int    `json:"parliament_no"`
	SittingDate  string  `json:"sitting_date"`
	NameRaw      string  `json:"mp_name_raw"`
	NameCleaned  *string `json:"mp_name_cleaned"`
	From         string  `json:"ptba_from"`
	To           string  `json:"ptba_to"`
	Start        string  `json:"start"`
	End          string  `json:"end"`
}

// Speech is one emitted utterance or question listing. Key: (sitting_date, row_num)
type Speech struct {
	ParliamentNo               *int         `json:"parliament_no"`
	SittingDate                string       `json:"sitting_date"`
	RowNum                     int          `json:"row_num"`
	DiscussionTitle            *string      `json:"discussion_title"`
	SectionType                string       `json:"section_type"`
	NameRaw                    string       `json:"mp_name_raw"`
	Speaker                    *string      `json:"mp_name_fuzzy_matched"`
	Text                       string       `json:"speech_details"`
	WordCount                  int          `json:"word_count"`
	ChairRole                  *string      `json:"dim_speaker"`
	ChairName                  *string      `json:"chair_name_raw"`
	IsQuestionForOralAnswer    bool         `json:"dim_is_question_for_oral_answer"`
	IsOralSpeech               bool         `json:"dim_is_oral_speech"`
	IsWrittenAnswerNotAnswered bool         `json:"dim_is_written_answer_not_answered"`
	IsWrittenAnswer            bool         `json:"dim_is_written_answer_to_questions"`
	IsQuestionListing          bool         `json:"is_question_listing"`
	Match                      names.Method `json:"match_method"`
	MatchScore                 float64      `json:"match_score"`
}

// Stats are per-sitting walk diagnostics for logs
type Stats struct {
	Sections          int `json:"sections"`
	EmptySections     int `json:"empty_sections"`
	Blocks            int `json:"blocks"`
	ChairMarkers      int `json:"chair_markers"`
	TimeStamps        int `json:"time_stamps"`
	CallOuts          int `json:"call_outs"`
	QuestionListings  int `json:"question_listings"`
	Continuations     int `json:"continuations"`
	Orphans           int `json:"orphans"`
	LooseRuns         int `json:"loose_runs"`
	Unresolved        int `json:"unresolved"`
	LeaveOutOfRange   int `json:"leave_out_of_range"`
	AttendanceDeduped int `json:"attendance_deduped"`
	LeaveDeduped      int `json:"leave_deduped"`
	SpeechesDeduped   int `json:"speeches_deduped"`
}

func ptr[T any](v T) *T { return &v }

func optional(s string) *string {
	if s = strings.TrimFunc(s, unicode.IsSpace); s == "" {
		return nil
	}
	return &s
}
