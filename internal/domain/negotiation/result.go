package negotiation

import (
	"errors"
	"fmt"

	"github.com/bryanwahyu/teampulse-turbo/internal/domain/ai"
)

// TextSpan is a [Start, End) character offset pair in the analysed text.
type TextSpan struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (s TextSpan) Valid() bool { return s.End > s.Start }

// Evidence is shared by every flagged phenomenon.
type Evidence struct {
	EvidenceExcerpt string   `json:"evidence_excerpt"`
	TextSpan        TextSpan `json:"text_span"`
}

type Bias struct {
	Name string `json:"name"`
	Evidence
	Severity     string `json:"severity,omitempty"`
	Mitigation   string `json:"mitigation,omitempty"`
	Exploitation string `json:"exploitation,omitempty"`
}

type Manipulation struct {
	Type string `json:"type"`
	Evidence
	Intent          string `json:"intent,omitempty"`
	CounterStrategy string `json:"counter_strategy,omitempty"`
	RedFlagLevel    string `json:"red_flag_level,omitempty"`
}

type Fallacy struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Evidence
	WhyItIsFallacy    string `json:"why_it_is_fallacy,omitempty"`
	SuggestedRebuttal string `json:"suggested_rebuttal,omitempty"`
	Impact            string `json:"impact,omitempty"`
}

type Distortion struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern,omitempty"`
	Evidence
	Reframe      string `json:"reframe,omitempty"`
	CoachingNote string `json:"coaching_note,omitempty"`
}

type ClientProfile struct {
	Needs            []string `json:"needs"`
	Concerns         []string `json:"concerns"`
	Priorities       []string `json:"priorities"`
	DecisionCriteria []string `json:"decision_criteria"`
	BudgetIndicators []string `json:"budget_indicators"`
	TimelineSignals  []string `json:"timeline_signals"`
	AuthorityLevel   string   `json:"authority_level"`
}

type Strategy struct {
	Overall           string   `json:"overall"`
	OpeningTactics    []string `json:"opening_tactics"`
	ValuePropositions []string `json:"value_propositions"`
	Framing           []string `json:"framing"`
	Concessions       []string `json:"concessions"`
	Closing           []string `json:"closing"`
	FollowUp          []string `json:"follow_up"`
}

type Objection struct {
	Objection       string   `json:"objection"`
	Probability     string   `json:"probability"`
	BestResponse    string   `json:"best_response"`
	BackupResponses []string `json:"backup_responses"`
	Prevention      string   `json:"prevention"`
}

type LeveragePoint struct {
	Title        string `json:"title"`
	WhyItMatters string `json:"why_it_matters"`
	HowToUse     string `json:"how_to_use"`
	Timing       string `json:"timing"`
	RiskLevel    string `json:"risk_level"`
}

type CollaborationEase struct {
	Label                  string   `json:"label"`
	Score                  float64  `json:"score"`
	Reasons                []string `json:"reasons"`
	ImprovementSuggestions []string `json:"improvement_suggestions"`
	WarningSigns           []string `json:"warning_signs"`
	CulturalFactors        []string `json:"cultural_factors"`
}

type Action struct {
	Action          string `json:"action"`
	Priority        string `json:"priority"`
	Timeline        string `json:"timeline"`
	ExpectedOutcome string `json:"expected_outcome"`
}

type MarketIntelligence struct {
	IndustryInsights       []string `json:"industry_insights"`
	CompetitivePositioning []string `json:"competitive_positioning"`
	MarketTrends           []string `json:"market_trends"`
}

// Result is the typed form of a negotiation analysis.
type Result struct {
	Summary                string             `json:"summary"`
	ClientProfile          ClientProfile      `json:"client_profile"`
	Opportunities          []string           `json:"opportunities"`
	Risks                  []string           `json:"risks"`
	CompetitiveLandscape   []string           `json:"competitive_landscape"`
	NegotiationStrategy    Strategy           `json:"negotiation_strategy"`
	ObjectionsAndResponses []Objection        `json:"objections_and_responses"`
	Biases                 []Bias             `json:"biases"`
	Manipulations          []Manipulation     `json:"manipulations"`
	RhetologicalFallacies  []Fallacy          `json:"rhetological_fallacies"`
	CognitiveDistortions   []Distortion       `json:"cognitive_distortions"`
	LeveragePoints         []LeveragePoint    `json:"leverage_points"`
	CollaborationEase      CollaborationEase  `json:"collaboration_ease"`
	NextBestActions        []Action           `json:"next_best_actions"`
	MarketIntelligence     MarketIntelligence `json:"market_intelligence"`
	Confidence             float64            `json:"confidence"`
}

var errEmptyResult = errors.New("analysis has no summary and no findings")

// Parse turns raw model output into a Result. Anything that is not a
// recognisable analysis is reported as ai.ErrUnparseable.
func Parse(raw string) (*Result, error) {
	var r Result
	if err := ai.DecodeJSON(raw, &r); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ai.ErrUnparseable, err)
	}
	return &r, nil
}

// Validate normalises scores and rejects empty analyses.
func (r *Result) Validate() error {
	if r.Summary == "" && len(r.Spans()) == 0 && len(r.Opportunities) == 0 && len(r.Risks) == 0 {
		return errEmptyResult
	}
	r.Confidence = ai.NormalizeConfidence(r.Confidence)
	switch {
	case r.CollaborationEase.Score < 0:
		r.CollaborationEase.Score = 0
	case r.CollaborationEase.Score > 100:
		r.CollaborationEase.Score = 100
	}
	return nil
}
