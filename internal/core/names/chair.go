package names

import (
	"regexp"
	"strings"
	"unicode"

	"hansard/internal/core/normalize"
)

// Role is the presiding role a label denotes
type Role string

const (
	// RoleNone is a plain member
	RoleNone Role = ""
	// RoleSpeaker is the Speaker
	RoleSpeaker Role = "speaker"
	// RoleDeputySpeaker is a Deputy Speaker
	RoleDeputySpeaker Role = "deputy_speaker"
)

// IsChair reports whether r is one of the presiding roles
func (r Role) IsChair() bool { return r != RoleNone }

// DefaultChair is assumed to preside until the document says otherwise
const DefaultChair = "Mr Speaker"

var (
	reChairMarker    = regexp.MustCompile(`(?i)^\[(.+?)\s+in\s+the\s+Chair\.?\]\s*$`)
	reTrailingCall   = regexp.MustCompile(`(?i)\s+(?:Mr|Madam)\s+Speaker\.?\s*$`)
	reChairCallLead  = regexp.MustCompile(`(?i)^` + chairCallHonorifics + `\b`)
	reSubstantive    = regexp.MustCompile(`(?i)\b(?:thank|ask|welcome|move|agree|urge|request|clarif\w*|supplementary|question)\b`)
	femaleHonorifics = []string{"MDM", "MADAM", "MS", "MISS"}
)

// maxCallOutWords bounds how long a Chair call-out like "Er Dr Lee Bee Wah." can be
const maxCallOutWords = 7

// RoleOf classifies a label. Deputy is tested first since it contains "SPEAKER"
func RoleOf(label string) Role {
	u := upper(label)
	switch {
	case u == "":
		return RoleNone
	case strings.Contains(u, "DEPUTY SPEAKER"):
		return RoleDeputySpeaker
	case strings.Contains(u, "SPEAKER"):
		return RoleSpeaker
	}
	return RoleNone
}

// ChairMarker returns the label inside a "[<label> in the Chair]" paragraph
func ChairMarker(text string) (string, bool) {
	t := strings.TrimSpace(text)
	if !strings.Contains(t, "in the Chair") || !strings.HasPrefix(t, "[") || !strings.Contains(upper(t), "SPEAKER") {
		return "", false
	}
	m := reChairMarker.FindStringSubmatch(spaces(t))
	if m == nil {
		return "", false
	}
	label := strings.TrimSpace(m[1])
	return label, label != ""
}

// ChairFromLabel returns the speaker label itself when it names the Chair,
// eg "Mr Deputy Speaker (Mr X)" or "Madam Speaker"
func ChairFromLabel(label string) (string, bool) {
	s := strings.TrimSpace(label)
	if s == "" {
		return "", false
	}
	u := upper(s)
	if strings.Contains(u, "DEPUTY SPEAKER") {
		return s, true
	}
	if strings.Contains(u, "SPEAKER") && !strings.Contains(u, "DEPUTY") {
		return s, true
	}
	return "", false
}

// IsChairCallOut reports whether text is the Chair calling the next member,
// eg "Mr Patrick Tay." rather than a substantive remark
func IsChairCallOut(text string) bool {
	t := normalize.WS(text)
	if t == "" || !strings.HasSuffix(t, ".") {
		return false
	}
	if normalize.WordCount(t) > maxCallOutWords {
		return false
	}
	if !reChairCallLead.MatchString(t) {
		return false
	}
	return !reSubstantive.MatchString(t)
}

// StripTrailingChairCall drops a closing "... Mr Speaker." address
func StripTrailingChairCall(text string) string {
	if text == "" {
		return text
	}
	return strings.TrimRightFunc(reTrailingCall.ReplaceAllString(spaces(text), ""), unicode.IsSpace)
}

// ChairDirectory maps bare Speaker/Deputy Speaker labels to the people holding those
// offices in one sitting. Built once from the roster, read only afterwards
type ChairDirectory struct {
	speaker     string
	deputies    map[string]string // NameKey -> display name
	byHonorific map[string]string // "MR", "MDM", ... -> display name
}

// NewChairDirectory scans roster labels for the Speaker and Deputy Speaker lines
func NewChairDirectory(labels []string) ChairDirectory {
	d := ChairDirectory{
		deputies:    map[string]string{},
		byHonorific: map[string]string{},
	}
	for _, raw := range labels {
		raw = strings.TrimSpace(raw)
		u := upper(raw)
		if d.speaker == "" && strings.Contains(u, "SPEAKER") && !strings.Contains(u, "DEPUTY") {
			if p, ok := PersonFromSpeakerLine(raw); ok {
				d.speaker = p
			}
		}
		if !strings.Contains(u, "DEPUTY SPEAKER") {
			continue
		}
		disp, ok := PersonFromLabel(raw)
		if !ok {
			// "Ms Jessica Tan Soon Neo (East Coast), Deputy Speaker."
			disp, ok = Clean(raw)
		}
		if !ok || reRoleWords.MatchString(disp) {
			continue
		}
		// keyed by the person so two deputies never collapse onto the shared role title
		if k := NameKey(disp); k != "" {
			d.deputies[k] = disp
		}
		if m := reDeputyHonorific.FindStringSubmatch(raw); m != nil {
			d.byHonorific[upper(m[1])] = disp
		}
	}
	return d
}

// Speaker returns the Speaker named on the roster, if any
func (d ChairDirectory) Speaker() string { return d.speaker }

// Deputies returns how many distinct Deputy Speakers the roster names
func (d ChairDirectory) Deputies() int { return len(d.deputies) }

// DisplayName resolves a chair label to a person. Falls back to the raw label when the
// Deputy Speaker is ambiguous
func (d ChairDirectory) DisplayName(label string) string {
	if label == "" {
		return ""
	}
	if p, ok := PersonFromLabel(label); ok {
		return p
	}
	switch RoleOf(label) {
	case RoleSpeaker:
		if d.speaker != "" {
			return d.speaker
		}
	case RoleDeputySpeaker:
		if p, ok := d.deputyByHonorific(strings.TrimSpace(label)); ok {
			return p
		}
		if len(d.deputies) == 1 {
			for _, p := range d.deputies {
				return p
			}
		}
	}
	return label
}

func (d ChairDirectory) deputyByHonorific(label string) (string, bool) {
	m := reDeputyHonorific.FindStringSubmatch(spaces(label))
	if m == nil {
		return "", false
	}
	h := upper(m[1])
	if p, ok := d.byHonorific[h]; ok {
		return p, true
	}
	for _, fh := range femaleHonorifics {
		if h != fh {
			continue
		}
		for _, alt := range femaleHonorifics {
			if p, ok := d.byHonorific[alt]; ok {
				return p, true
			}
		}
	}
	p, ok := d.byHonorific["MR"]
	return p, ok
}
