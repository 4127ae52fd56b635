package service

import (
	"encoding/json"
	"strings"

	"hansard/internal/core/names"
	"hansard/internal/core/normalize"
	"hansard/internal/core/transcript"
	"hansard/internal/services/summaries/domain"
)

const (
	// ChairShortCircuitChars: chair speech shorter than this is procedural without asking the model
	ChairShortCircuitChars = 180
	// MinTextChars: any speech shorter than this is procedural without asking the model
	MinTextChars = 30

	maxOneLinerWords = 30
	maxThemes        = 6
	maxThemeWords    = 4
	maxKeyClaims     = 5

	schemaName      = "hansard_speech_summary"
	truncatedMarker = "\n...[truncated]"
	emptyOneLiner   = "Procedural line."
)

const speechSystemPrompt = "You are extracting structured evidence from Singapore parliamentary speech excerpts. " +
	"Each excerpt may be a question, answer, statement, or procedural line. " +
	"Output valid JSON only matching the provided schema. " +
	"Do not infer beyond what is explicitly stated. " +
	"Keep language neutral and literal."

const speechGuidance = `Guidance:
- one_liner must be specific and literal; avoid generic phrasing like 'supports the Bill' without details.
- Do not name people unless the name appears in the text; do not infer names from metadata.
- Ignore salutations and formalities.
- If the text is procedural (calls next speaker, asks for clarification, order/adjournment), set segment_type=procedural and use a short literal one_liner.`

const sittingSystemPrompt = "You are a careful assistant."

// speechSchema is the strict output schema for a speech summary
var speechSchema = func() json.RawMessage {
	enum := make([]string, 0, len(domain.SegmentTypes))
	for _, t := range domain.SegmentTypes {
		enum = append(enum, string(t))
	}
	b, err := json.Marshal(map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"segment_type": map[string]any{"type": "string", "enum": enum},
			"one_liner":    map[string]any{"type": "string"},
			"themes":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "maxItems": maxThemes},
			"key_claims":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "maxItems": maxKeyClaims},
		},
		"required": []string{"segment_type", "one_liner", "themes", "key_claims"},
	})
	if err != nil {
		panic(err)
	}
	return b
}()

// speechMeta is the context line block sent with a speech
type speechMeta struct {
	SpeakerName string
	Role        string
	SittingDate string
}

// chairRole is "chair" for presiding labels, else empty
func chairRole(label string) string {
	if names.RoleOf(label).IsChair() || strings.Contains(strings.ToUpper(label), "CHAIR") {
		return "chair"
	}
	return ""
}

func metaFor(row domain.SpeechRow) speechMeta {
	role := chairRole(row.NameRaw)
	if row.ChairRole != nil && *row.ChairRole != "" {
		role = "chair"
	}
	return speechMeta{SpeakerName: row.NameRaw, Role: role, SittingDate: row.SittingDate}
}

func userContent(text string, m speechMeta) string {
	var b strings.Builder
	b.WriteString(speechGuidance)
	b.WriteString("\nMetadata:")
	if v := strings.TrimSpace(m.SpeakerName); v != "" {
		b.WriteString("\n- speaker_name: " + v)
	}
	if v := strings.TrimSpace(m.Role); v != "" {
		b.WriteString("\n- role: " + v)
	}
	if v := strings.TrimSpace(m.SittingDate); v != "" {
		b.WriteString("\n- sitting_date: " + v)
	}
	b.WriteString("\nText:\n")
	b.WriteString(text)
	return strings.TrimSpace(b.String())
}

func fixPrompt(raw string) string {
	return "Fix to schema. Output valid JSON only matching the provided schema.\n\n" +
		"Schema:\n" + string(speechSchema) + "\n\n" +
		"Invalid output:\n" + raw + "\n"
}

// shortCircuit summarizes short or procedural text locally
func shortCircuit(cleaned string, m speechMeta) (domain.SpeechSummary, bool) {
	n := len([]rune(cleaned))
	if (m.Role == "chair" && n < ChairShortCircuitChars) || n < MinTextChars {
		return localSummary(cleaned), true
	}
	return domain.SpeechSummary{}, false
}

func localSummary(cleaned string) domain.SpeechSummary {
	if cleaned == "" {
		return domain.SpeechSummary{SegmentType: domain.SegmentOther, OneLiner: emptyOneLiner, Themes: []string{}, KeyClaims: []string{}}
	}
	return domain.SpeechSummary{
		SegmentType: domain.SegmentProcedural,
		OneLiner:    normalize.TrimWords(cleaned, maxOneLinerWords),
		Themes:      []string{},
		KeyClaims:   []string{},
	}
}

// parseOutput decodes and validates a model reply. ok is false when the reply must be repaired
func parseOutput(raw string) (domain.SpeechSummary, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.SpeechSummary{}, false
	}
	var v struct {
		SegmentType *string `json:"segment_type"`
		OneLiner    *string `json:"one_liner"`
		Themes      []any   `json:"themes"`
		KeyClaims   []any   `json:"key_claims"`
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return domain.SpeechSummary{}, false
	}
	if v.SegmentType == nil || v.OneLiner == nil || v.Themes == nil || v.KeyClaims == nil {
		return domain.SpeechSummary{}, false
	}
	st := domain.SegmentType(*v.SegmentType)
	if !st.Valid() {
		return domain.SpeechSummary{}, false
	}

	out := domain.SpeechSummary{
		SegmentType: st,
		OneLiner:    normalize.TrimWords(strings.TrimSpace(*v.OneLiner), maxOneLinerWords),
		Themes:      []string{},
		KeyClaims:   []string{},
	}
	if out.OneLiner == "" {
		out.OneLiner = emptyOneLiner
	}
	for _, t := range v.Themes {
		s, ok := t.(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		out.Themes = append(out.Themes, normalize.TrimWords(s, maxThemeWords))
		if len(out.Themes) == maxThemes {
			break
		}
	}
	for _, c := range v.KeyClaims {
		s, ok := c.(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		out.KeyClaims = append(out.KeyClaims, strings.TrimSpace(s))
		if len(out.KeyClaims) == maxKeyClaims {
			break
		}
	}
	return out, true
}

// sittingPrompt builds the three sentence digest prompt from speeches in row order.
// The transcript part is capped at maxChars runes when maxChars > 0
func sittingPrompt(day string, speeches []transcript.Speech, maxChars int) string {
	lines := make([]string, 0, len(speeches))
	for _, sp := range speeches {
		text := strings.TrimSpace(sp.Text)
		if text == "" {
			continue
		}
		speaker := sp.NameRaw
		if sp.Speaker != nil && *sp.Speaker != "" {
			speaker = *sp.Speaker
		}
		lines = append(lines, strings.TrimSpace(speaker)+": "+text)
	}
	if len(lines) == 0 {
		return "Sitting date: " + day + ".\n" +
			"No speech content was parsed for this sitting.\n\n" +
			"Write a 3-sentence summary:\n" +
			"1) What topics were talked about\n" +
			"2) How it impacts Singapore\n" +
			"3) Why we should care\n"
	}

	body := strings.Join(lines, "\n")
	if r := []rune(body); maxChars > 0 && len(r) > maxChars {
		body = string(r[:maxChars]) + truncatedMarker
	}
	return "You are summarizing a Singapore Parliament sitting transcript.\n" +
		"Write exactly 3 sentences, no bullet points.\n" +
		"Sentence 1: what topics were discussed.\n" +
		"Sentence 2: how it impacts Singapore.\n" +
		"Sentence 3: why the public should care.\n" +
		"Keep it neutral and factual; do not invent details. No need to mention which date it is for.\n" +
		"It should also sound natural and not robotic like how the leading words are the same for all parses\n\n" +
		"Sitting date: " + day + "\n\n" +
		"Transcript (may be truncated):\n" +
		body
}
