// Package transcript turns one Hansard sitting document into attendance, leave and
// speech rows.
//
// The walk is a strict left-to-right scan of the sitting's sections. Each paragraph is
// a chair marker, a Chair call-out, a question paper listing, a new speech, or a
// continuation of the previous one; which of these depends on the ChairState left
// behind by earlier paragraphs, so a sitting is never split across goroutines.
// Independent sittings share nothing and may be parsed concurrently.
package transcript

import (
	"strconv"
	"strings"

	"hansard/internal/core/names"
	"hansard/internal/core/normalize"
)

// Parse decodes raw and parses it. Only whole-sitting problems such as bad JSON or a
// missing sitting date are errors
func Parse(raw []byte) (*Sitting, error) {
	doc, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return ParseDocument(doc)
}

// ParseDocument parses an already decoded document
func ParseDocument(doc Document) (*Sitting, error) {
	day, err := doc.Metadata.Date()
	if err != nil {
		return nil, err
	}

	s := &Sitting{
		Date:         day,
		SittingDate:  day.Format(DayLayout),
		ParliamentNo: doc.Metadata.Parliament(),
		SourceURL:    SourceURL(day),
		DefaultYear:  doc.Metadata.DefaultYear(day.Year()),
	}

	labels := make([]string, 0, len(doc.Attendance))
	for _, l := range doc.Attendance {
		labels = append(labels, strings.TrimSpace(normalize.Sanitize(l.Name.String())))
	}

	s.Attendance = attendanceRows(s, doc.Attendance)
	s.Leave = leaveRows(s, doc.Leave)

	w := &walker{
		day:          s.SittingDate,
		parliamentNo: s.ParliamentNo,
		roster:       names.NewRoster(labels),
		chairs:       names.NewChairDirectory(labels),
		chair:        NewChairState(doc.Metadata.Speaker.String()),
		stats:        &s.Stats,
	}
	for _, sec := range doc.Sections {
		w.section(sec)
	}
	s.Speeches = w.rows

	s.Dedupe()
	return s, nil
}

func attendanceRows(s *Sitting, lines []RosterLine) []Attendance {
	out := make([]Attendance, 0, len(lines))
	for _, l := range lines {
		raw := strings.TrimSpace(normalize.Sanitize(l.Name.String()))
		if raw == "" {
			// separator rows would only collide on the key
			continue
		}
		u := strings.ToUpper(raw)
		row := Attendance{
			ParliamentNo:    s.ParliamentNo,
			SittingDate:     s.SittingDate,
			NameRaw:         raw,
			IsSpeaker:       strings.Contains(u, "SPEAKER") && !strings.Contains(u, "DEPUTY"),
			IsDeputySpeaker: strings.Contains(u, "DEPUTY SPEAKER"),
			IsPresent:       bool(l.Present),
		}
		if c, ok := names.Clean(raw); ok {
			row.NameCleaned = &c
		}
		out = append(out, row)
	}
	return out
}

// leaveRows applies the carry-forward rule for blank names and keeps only leave that
// covers the sitting day
func leaveRows(s *Sitting, lines []LeaveLine) []Leave {
	var out []Leave
	current := ""
	for _, l := range lines {
		if n := strings.TrimSpace(normalize.Sanitize(l.Name.String())); n != "" {
			current = n
		}
		if current == "" {
			continue
		}
		from, to := l.From.String(), l.To.String()
		start, end, ok := LeaveInterval(from, to, s.DefaultYear)
		if !ok || s.Date.Before(start) || s.Date.After(end) {
			s.Stats.LeaveOutOfRange++
			continue
		}
		row := Leave{
			ParliamentNo: s.ParliamentNo,
			SittingDate:  s.SittingDate,
			NameRaw:      current,
			From:         from,
			To:           to,
			Start:        start.Format(DayLayout),
			End:          end.Format(DayLayout),
		}
		if c, ok := names.Clean(current); ok {
			row.NameCleaned = &c
		}
		out = append(out, row)
	}
	return out
}

// Dedupe normalizes every table's key columns (control runes dropped, trim plus
// whitespace collapse) and keeps the first row per key, so two labels that only differ
// by bytes the store would strip never reach one upsert. It is safe to call more than once
func (s *Sitting) Dedupe() {
	s.SittingDate = keyText(s.SittingDate)

	var n int
	s.Attendance, n = dedupe(s.Attendance, func(a *Attendance) string {
		a.SittingDate, a.NameRaw = keyText(a.SittingDate), keyText(a.NameRaw)
		return key(a.SittingDate, a.NameRaw)
	})
	s.Stats.AttendanceDeduped += n

	s.Leave, n = dedupe(s.Leave, func(l *Leave) string {
		l.SittingDate, l.NameRaw = keyText(l.SittingDate), keyText(l.NameRaw)
		l.From, l.To = keyText(l.From), keyText(l.To)
		return key(l.SittingDate, l.NameRaw, l.From, l.To)
	})
	s.Stats.LeaveDeduped += n

	s.Speeches, n = dedupe(s.Speeches, func(sp *Speech) string {
		sp.SittingDate = keyText(sp.SittingDate)
		sp.NameRaw = keyText(sp.NameRaw)
		sp.Text = normalize.Sanitize(sp.Text)
		return key(sp.SittingDate, sp.RowNum)
	})
	s.Stats.SpeechesDeduped += n
}

// dedupe normalizes rows in place through keyOf and drops later rows with a seen key
func dedupe[T any](rows []T, keyOf func(*T) string) ([]T, int) {
	seen := make(map[string]struct{}, len(rows))
	out := rows[:0]
	for i := range rows {
		r := rows[i]
		k := keyOf(&r)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out, len(rows) - len(out)
}

func keyText(s string) string { return normalize.WS(normalize.Sanitize(s)) }

func key(parts ...any) string {
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteByte(0)
		}
		switch v := p.(type) {
		case string:
			b.WriteString(v)
		case int:
			b.WriteString(strconv.Itoa(v))
		}
	}
	return b.String()
}
