package transcript

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"hansard/internal/core/names"
	"hansard/internal/core/normalize"
)

var (
	reClock      = regexp.MustCompile(`(?i)^\d{1,2}\.\d{2}\s*(?:am|pm)$`)
	reListNumber = regexp.MustCompile(`^\d{1,3}\.?$`)
)

// walker is the single-pass paragraph classifier for one sitting
type walker struct {
	day          string
	parliamentNo *int
	roster       *names.Roster
	chairs       names.ChairDirectory

	chair ChairState
	rows  []Speech
	stats *Stats

	// index into rows of the first row emitted by the current section
	sectionStart int
}

// section walks one section's HTML fragment in document order
func (w *walker) section(sec Section) {
	w.stats.Sections++
	code := SectionCode(sec.Type.String())
	kind := KindOf(code)
	content := sec.Content.String()
	if strings.TrimSpace(content) == "" {
		w.stats.EmptySections++
		return
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		// x/net/html only fails on reader errors; a strings.Reader has none
		w.stats.EmptySections++
		return
	}

	ctx := sectionCtx{
		code:  code,
		kind:  kind,
		title: optional(normalize.WS(sec.Title.String())),
	}
	w.sectionStart = len(w.rows)
	var sp splitter
	for _, n := range nodes {
		sp.walk(n)
	}
	sp.flush()
	for _, u := range sp.units {
		if u.block != nil {
			w.block(u.block, ctx)
			continue
		}
		w.loose(u.text)
	}
}

type sectionCtx struct {
	code  string
	kind  SectionKind
	title *string
}

// block classifies one paragraph or heading
func (w *walker) block(n *html.Node, sec sectionCtx) {
	w.stats.Blocks++
	rawText := textOf(n)
	text := names.StripQuestionNumber(rawText)
	if text == "" {
		return
	}

	if label, ok := names.ChairMarker(text); ok {
		w.chair = w.chair.Marker(label)
		w.stats.ChairMarkers++
		return
	}
	if n.DataAtom != atom.P {
		if reClock.MatchString(text) {
			w.stats.TimeStamps++
		}
		return
	}

	strong := leadingStrong(n)
	if strong == nil {
		w.continuation(text)
		return
	}

	// split <strong> runs ("<strong>Mr </strong><strong>Ong Ye Kung</strong>:") are why the
	// visible text up to the first colon beats the emphasized span
	head, rest, hasColon := strings.Cut(text, ":")
	label := strings.TrimSpace(head)
	if !hasColon {
		label = textOf(strong)
	}
	label = strings.TrimSpace(strings.TrimRight(label, ":"))
	if label == "" {
		w.continuation(text)
		return
	}

	if !hasColon && names.IsQuestionListing(label, rawText) {
		w.stats.QuestionListings++
		w.emitListing(label, text, sec)
		return
	}

	w.chair = w.chair.Observe(label)

	var speech string
	if hasColon {
		speech = strings.TrimSpace(rest)
	} else {
		body, _ := strings.CutPrefix(text, label)
		speech = strings.TrimSpace(strings.TrimLeft(body, " :"))
	}
	speech = strings.TrimSpace(names.StripTrailingChairCall(speech))
	if speech == "" {
		return
	}

	role := names.RoleOf(label)
	if role.IsChair() && names.IsChairCallOut(speech) {
		w.stats.CallOuts++
		return
	}

	row := w.newRow(label, speech, sec)
	if role.IsChair() {
		w.chairSpeaker(&row)
	} else {
		res := w.roster.Resolve(label)
		row.Speaker, row.Match, row.MatchScore = optional(res.Name), res.Method, res.Score
		if !res.Resolved() {
			w.stats.Unresolved++
		}
	}
	row.IsOralSpeech = !sec.kind.Written()
	w.emit(row)
}

// chairSpeaker credits a Chair row to the presiding officer. A bare role title that the
// roster cannot put a name to stays unresolved
func (w *walker) chairSpeaker(row *Speech) {
	disp := w.chairs.DisplayName(w.chair.Label())
	if n, ok := w.roster.Lookup(disp); ok {
		row.Speaker, row.Match, row.MatchScore = &n, names.MethodChair, 1
		return
	}
	if disp == "" || names.RoleOf(disp) != names.RoleNone {
		row.Speaker, row.Match, row.MatchScore = nil, names.MethodNone, 0
		w.stats.Unresolved++
		return
	}
	row.Speaker, row.Match, row.MatchScore = &disp, names.MethodChair, 1
}

// loose handles text that sits outside any paragraph, eg after a <div> closed the <p>
// it was written in
func (w *walker) loose(text string) {
	w.stats.LooseRuns++
	text = names.StripQuestionNumber(text)
	if text == "" {
		return
	}
	if label, ok := names.ChairMarker(text); ok {
		w.chair = w.chair.Marker(label)
		w.stats.ChairMarkers++
		return
	}
	if reClock.MatchString(text) {
		w.stats.TimeStamps++
		return
	}
	w.continuation(text)
}

// emitListing keeps a "<n> Mr X asked the Minister ..." paper entry as a non-oral row
func (w *walker) emitListing(label, text string, sec sectionCtx) {
	row := w.newRow(label, text, sec)
	res := w.roster.Resolve(label)
	row.Speaker, row.Match, row.MatchScore = optional(res.Name), res.Method, res.Score
	if !res.Resolved() {
		w.stats.Unresolved++
	}
	row.IsQuestionListing = true
	row.IsQuestionForOralAnswer = sec.kind == KindOralAnswer
	w.emit(row)
}

func (w *walker) newRow(label, text string, sec sectionCtx) Speech {
	row := Speech{
		ParliamentNo:               w.parliamentNo,
		SittingDate:                w.day,
		DiscussionTitle:            sec.title,
		SectionType:                sec.code,
		NameRaw:                    label,
		Text:                       text,
		WordCount:                  normalize.WordCount(text),
		IsWrittenAnswer:            sec.kind == KindWrittenAnswer,
		IsWrittenAnswerNotAnswered: sec.kind == KindWrittenNotAnswered,
	}
	// nobody presides over text that was never spoken
	if !sec.kind.Written() {
		if r := w.chair.Role(); r.IsChair() {
			row.ChairRole = ptr(string(r))
		}
		row.ChairName = optional(w.chairs.DisplayName(w.chair.Label()))
	}
	return row
}

// emit assigns the next row number; numbering is shared by every section of the sitting
func (w *walker) emit(row Speech) {
	row.RowNum = len(w.rows) + 1
	w.rows = append(w.rows, row)
}

// continuation appends text to the section's last row. With no row yet it is dropped
func (w *walker) continuation(text string) {
	if len(w.rows) == w.sectionStart {
		w.stats.Orphans++
		return
	}
	t := strings.TrimSpace(names.StripTrailingChairCall(text))
	if t == "" {
		return
	}
	last := &w.rows[len(w.rows)-1]
	last.Text = strings.TrimSpace(last.Text + "\n\n" + t)
	last.WordCount = normalize.WordCount(last.Text)
	w.stats.Continuations++
}

type unit struct {
	block *html.Node // p or h1-h6
	text  string     // loose text when block is nil
}

// splitter cuts a fragment into paragraph and heading blocks in document order. Text
// outside them is gathered into loose runs, one per enclosing container
type splitter struct {
	units []unit
	run   []string
}

func (s *splitter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if t := strings.TrimSpace(n.Data); t != "" {
			s.run = append(s.run, t)
		}
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Template:
			return
		case atom.P, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			s.flush()
			s.units = append(s.units, unit{block: n})
			return
		case atom.Div, atom.Blockquote, atom.Li, atom.Ul, atom.Ol, atom.Table, atom.Tr:
			s.flush()
			defer s.flush()
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		s.walk(c)
	}
}

func (s *splitter) flush() {
	if len(s.run) == 0 {
		return
	}
	s.units = append(s.units, unit{text: strings.Join(s.run, " ")})
	s.run = s.run[:0]
}

// leadingStrong is the <strong> that opens n. Blank text and a question number may
// precede it; any other text first means n has no label
func leadingStrong(n *html.Node) *html.Node {
	numbered := false
	var find func(*html.Node) (*html.Node, bool)
	find = func(n *html.Node) (*html.Node, bool) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				t := strings.TrimSpace(c.Data)
				if t == "" {
					continue
				}
				if !numbered && reListNumber.MatchString(t) {
					numbered = true
					continue
				}
				return nil, true
			case html.ElementNode:
				if c.DataAtom == atom.Strong {
					return c, true
				}
				if s, done := find(c); done {
					return s, true
				}
			}
		}
		return nil, false
	}
	s, _ := find(n)
	return s
}

// textOf joins the trimmed, non-empty text runs below n with single spaces.
// Script and style bodies are not visible text
func textOf(n *html.Node) string {
	var parts []string
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		case html.ElementNode:
			if n.DataAtom == atom.Script || n.DataAtom == atom.Style || n.DataAtom == atom.Template {
				return
			}
		case html.CommentNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return strings.Join(parts, " ")
}
