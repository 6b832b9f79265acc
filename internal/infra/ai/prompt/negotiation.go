// Package prompt builds the system and user messages sent to the model.
// Every system prompt embeds the JSON schema of the typed result that
// parses its answer.
package prompt

import (
	"encoding/json"
	"fmt"

	"github.com/bryanwahyu/teampulse-turbo/internal/domain/negotiation"
)

const (
	TextStart = "<<<TEXT_START>>>"
	TextEnd   = "<<<TEXT_END>>>"
)

// NegotiationSystem provides strict directions and schema for the negotiation coach.
func NegotiationSystem() string {
	return `You are a negotiation coach. Analyze the transcript of a negotiation or interview.
Your output must be exactly one valid JSON object following the schema below (no markdown, no commentary, no code fences).
Detect needs, concerns, biases, manipulations, every rhetological fallacy and every cognitive distortion.

Pay attention to the Ukrainian business context: cultural specifics, business etiquette, regional differences,
post-Soviet habits alongside modern European standards.

Rate how easy collaboration will be in "collaboration_ease" with detailed reasons.
For every finding include an evidence excerpt and the EXACT character positions in the original text
(text_span.start inclusive, text_span.end exclusive, counted in characters from the first character after ` + TextStart + `).

Cognitive distortions checklist:
- All-or-nothing thinking
- Overgeneralization
- Mental filter
- Discounting the positive
- Jumping to conclusions
- Magnification/Minimization
- Emotional reasoning
- Should statements
- Labeling
- Personalization

Schema:
{
  "summary": "<detailed analysis>",
  "client_profile": {
    "needs": ["<string>"],
    "concerns": ["<string>"],
    "priorities": ["<in order of importance>"],
    "decision_criteria": ["<string>"],
    "budget_indicators": ["<string>"],
    "timeline_signals": ["<string>"],
    "authority_level": "<decision_maker|influencer|gatekeeper|user>"
  },
  "opportunities": ["<string>"],
  "risks": ["<string>"],
  "competitive_landscape": ["<mentions of competitors and alternatives>"],
  "negotiation_strategy": {
    "overall": "<string>",
    "opening_tactics": ["<string>"],
    "value_propositions": ["<string>"],
    "framing": ["<string>"],
    "concessions": ["<string>"],
    "closing": ["<string>"],
    "follow_up": ["<string>"]
  },
  "objections_and_responses": [
    {"objection": "<string>", "probability": "<high|medium|low>", "best_response": "<string>", "backup_responses": ["<string>"], "prevention": "<string>"}
  ],
  "biases": [
    {"name": "<string>", "evidence_excerpt": "<quote>", "text_span": {"start": 0, "end": 0}, "severity": "<low|medium|high>", "mitigation": "<string>", "exploitation": "<string>"}
  ],
  "manipulations": [
    {"type": "<string>", "evidence_excerpt": "<quote>", "text_span": {"start": 0, "end": 0}, "intent": "<string>", "counter_strategy": "<string>", "red_flag_level": "<low|medium|high>"}
  ],
  "rhetological_fallacies": [
    {"name": "<string>", "category": "<logical|rhetorical|emotional>", "evidence_excerpt": "<quote>", "text_span": {"start": 0, "end": 0}, "why_it_is_fallacy": "<string>", "suggested_rebuttal": "<string>", "impact": "<string>"}
  ],
  "cognitive_distortions": [
    {"name": "<string>", "pattern": "<string>", "evidence_excerpt": "<quote>", "text_span": {"start": 0, "end": 0}, "reframe": "<string>", "coaching_note": "<string>"}
  ],
  "leverage_points": [
    {"title": "<string>", "why_it_matters": "<string>", "how_to_use": "<string>", "timing": "<string>", "risk_level": "<low|medium|high>"}
  ],
  "collaboration_ease": {
    "label": "<smooth|easy|neutral|hard|bloody hell>",
    "score": 85,
    "reasons": ["<string>"],
    "improvement_suggestions": ["<string>"],
    "warning_signs": ["<string>"],
    "cultural_factors": ["<string>"]
  },
  "next_best_actions": [
    {"action": "<string>", "priority": "<high|medium|low>", "timeline": "<string>", "expected_outcome": "<string>"}
  ],
  "market_intelligence": {
    "industry_insights": ["<string>"],
    "competitive_positioning": ["<string>"],
    "market_trends": ["<string>"]
  },
  "confidence": 0.85
}`
}

// NegotiationUser embeds the counterpart profile and the transcript between
// the text markers.
func NegotiationUser(p negotiation.Profile, text string) string {
	return fmt.Sprintf(`Context, client/company profile:
%s

Original negotiation or interview text (UTF-8):
%s
%s
%s

Analyze according to the system instructions. Return STRICTLY valid JSON with no extra commentary.
Be precise with the text_span positions of every finding.`, indent(p), TextStart, text, TextEnd)
}

// indent renders v as two-space indented JSON. Values built here always marshal.
func indent(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}
