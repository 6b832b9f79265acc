package negotiation

import (
	"html"
	"sort"
	"strings"
)

// Kind doubles as the CSS class of the rendered <mark>.
type Kind string

const (
	KindBias         Kind = "bias"
	KindManipulation Kind = "manip"
	KindFallacy      Kind = "fallacy"
	KindDistortion   Kind = "cog"
)

type Span struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Kind  Kind   `json:"kind"`
	Label string `json:"label"`
}

// Spans collects the text spans of every flagged phenomenon, unfiltered.
func (r *Result) Spans() []Span {
	var out []Span
	for _, b := range r.Biases {
		out = append(out, Span{b.TextSpan.Start, b.TextSpan.End, KindBias, b.Name})
	}
	for _, m := range r.Manipulations {
		out = append(out, Span{m.TextSpan.Start, m.TextSpan.End, KindManipulation, m.Type})
	}
	for _, f := range r.RhetologicalFallacies {
		out = append(out, Span{f.TextSpan.Start, f.TextSpan.End, KindFallacy, f.Name})
	}
	for _, d := range r.CognitiveDistortions {
		out = append(out, Span{d.TextSpan.Start, d.TextSpan.End, KindDistortion, d.Name})
	}
	return out
}

// NormalizeSpans makes spans safe to slice a text of textLen characters:
// spans with End <= Start are dropped, the rest are clamped to the text,
// sorted by Start and trimmed so that none overlaps its predecessor.
func NormalizeSpans(spans []Span, textLen int) []Span {
	out := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.End <= s.Start {
			continue
		}
		if s.Start < 0 {
			s.Start = 0
		}
		if s.End > textLen {
			s.End = textLen
		}
		if s.End <= s.Start {
			continue
		}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })

	kept := out[:0]
	cursor := 0
	for _, s := range out {
		if s.Start < cursor {
			s.Start = cursor
		}
		if s.End <= s.Start {
			continue
		}
		kept = append(kept, s)
		cursor = s.End
	}
	return kept
}

// RenderHighlighted returns text as escaped HTML with each span wrapped in
// <mark class="kind">. Offsets count characters (runes), not bytes.
func RenderHighlighted(text string, spans []Span) string {
	runes := []rune(text)
	spans = NormalizeSpans(spans, len(runes))

	var b strings.Builder
	cursor := 0
	for _, s := range spans {
		b.WriteString(html.EscapeString(string(runes[cursor:s.Start])))
		b.WriteString(`<mark class="`)
		b.WriteString(string(s.Kind))
		if s.Label != "" {
			b.WriteString(`" title="`)
			b.WriteString(html.EscapeString(s.Label))
		}
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(string(runes[s.Start:s.End])))
		b.WriteString(`</mark>`)
		cursor = s.End
	}
	b.WriteString(html.EscapeString(string(runes[cursor:])))
	return b.String()
}
