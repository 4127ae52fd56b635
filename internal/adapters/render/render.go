// Package render lays parsed sitting tables out as text: boxed tables for terminals and
// CSV for debug dumps
package render

import (
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"hansard/internal/core/transcript"
	perr "hansard/internal/platform/errors"
)

// Kind names one output table
type Kind string

const (
	Attendance Kind = "attendance"
	Leave      Kind = "ptba"
	Speeches   Kind = "speeches"
)

// Kinds is every table in output order
var Kinds = []Kind{Attendance, Leave, Speeches}

// ParseKind accepts a table name, or "all" for every table
func ParseKind(s string) ([]Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "", "all":
		return Kinds, nil
	case Attendance, Leave, Speeches:
		return []Kind{k}, nil
	}
	return nil, perr.InvalidArgf("unknown table %q, want attendance|ptba|speeches|all", s)
}

// Grid is a header row plus string cells
type Grid struct {
	Headers []string
	Rows    [][]string
	Right   []bool // right-aligned columns
}

// GridOf flattens one table of s
func GridOf(s *transcript.Sitting, k Kind) Grid {
	switch k {
	case Attendance:
		g := Grid{
			Headers: []string{"sitting_date", "parliament_no", "mp_name_raw", "mp_name_cleaned", "dim_is_speaker", "dim_is_deputy_speaker", "dim_is_present"},
			Right:   []bool{false, true},
		}
		for _, a := range s.Attendance {
			g.Rows = append(g.Rows, []string{
				a.SittingDate, intp(a.ParliamentNo), a.NameRaw, strp(a.NameCleaned),
				flag(a.IsSpeaker), flag(a.IsDeputySpeaker), flag(a.IsPresent),
			})
		}
		return g
	case Leave:
		g := Grid{
			Headers: []string{"sitting_date", "parliament_no", "mp_name_raw", "mp_name_cleaned", "ptba_from", "ptba_to", "start", "end"},
			Right:   []bool{false, true},
		}
		for _, l := range s.Leave {
			g.Rows = append(g.Rows, []string{
				l.SittingDate, intp(l.ParliamentNo), l.NameRaw, strp(l.NameCleaned), l.From, l.To, l.Start, l.End,
			})
		}
		return g
	default:
		g := Grid{
			Headers: []string{
				"sitting_date", "row_num", "section_type", "discussion_title", "mp_name_raw", "mp_name_fuzzy_matched",
				"match_method", "match_score", "dim_speaker", "chair_name_raw", "word_count",
				"dim_is_question_for_oral_answer", "dim_is_oral_speech",
				"dim_is_written_answer_not_answered", "dim_is_written_answer_to_questions",
				"is_question_listing", "speech_details",
			},
			Right: []bool{false, true, false, false, false, false, false, true, false, false, true},
		}
		for _, sp := range s.Speeches {
			g.Rows = append(g.Rows, []string{
				sp.SittingDate, strconv.Itoa(sp.RowNum), sp.SectionType, strp(sp.DiscussionTitle), sp.NameRaw, strp(sp.Speaker),
				string(sp.Match), strconv.FormatFloat(sp.MatchScore, 'f', 3, 64), strp(sp.ChairRole), strp(sp.ChairName),
				strconv.Itoa(sp.WordCount),
				flag(sp.IsQuestionForOralAnswer), flag(sp.IsOralSpeech),
				flag(sp.IsWrittenAnswerNotAnswered), flag(sp.IsWrittenAnswer),
				flag(sp.IsQuestionListing), sp.Text,
			})
		}
		return g
	}
}

// Table renders g as a rounded box table. Cells wider than maxCell are clipped; zero keeps them whole
func Table(g Grid, maxCell int) string {
	tw := writer(g)
	tw.SetStyle(table.StyleRounded)

	cfgs := make([]table.ColumnConfig, 0, len(g.Headers))
	for i := range g.Headers {
		align := text.AlignLeft
		if i < len(g.Right) && g.Right[i] {
			align = text.AlignRight
		}
		cfgs = append(cfgs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
			WidthMax:    maxCell,
			WidthMaxEnforcer: func(s string, n int) string {
				return text.Trim(s, n)
			},
		})
	}
	tw.SetColumnConfigs(cfgs)
	return tw.Render()
}

// CSV renders g as comma separated values with a header row
func CSV(g Grid) string {
	return writer(g).RenderCSV()
}

func writer(g Grid) table.Writer {
	tw := table.NewWriter()
	header := make(table.Row, len(g.Headers))
	for i, h := range g.Headers {
		header[i] = h
	}
	tw.AppendHeader(header)
	for _, row := range g.Rows {
		r := make(table.Row, len(g.Headers))
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}
	return tw
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func intp(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func strp(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
