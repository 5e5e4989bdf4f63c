package analysis

import (
	"strings"

	"axinsight/internal/contract"
	"axinsight/internal/core"
	"axinsight/internal/insight"
	"axinsight/internal/session"
)

// PestSwotView is the render-ready news-only analysis.
type PestSwotView struct {
	HasResult bool               `json:"has_result"`
	PEST      core.PestQuadrants `json:"pest"`
	SWOT      core.SwotQuadrants `json:"swot"`
	OneLiner  string             `json:"one_liner"`
	News      []core.NewsItem    `json:"news"`
}

// CombinedView is the render-ready combined insight.
type CombinedView struct {
	HasResult       bool                   `json:"has_result"`
	InternalSummary []string               `json:"internal_summary"`
	ExternalSummary []string               `json:"external_summary"`
	Strengths       []string               `json:"strengths"`
	Weaknesses      []string               `json:"weaknesses"`
	PriorityChoice  insight.ProposalChoice `json:"priority_choice"`
	PrioritySummary []string               `json:"priority_summary"`
}

// externalSummaryKeys are scanned in order when the completion put the
// news-side summary under a name the schema did not ask for.
var externalSummaryKeys = []string{
	"news_summary", "external_summary", "summary_from_news",
	"summary_external", "external_insights",
}

// proposalScavengeKeys and insightScavengeKeys are the proposal-bearing
// names scanned when the schema's three categories came back empty, in
// order: the proposals object first, then integrated_insights with its
// Korean category aliases.
var (
	proposalScavengeKeys = []string{
		"priorities", "priority_suggestions", "우선제안",
		"differentiation", "cooperation", "benchmarking",
	}
	insightScavengeKeys = []string{
		"priorities", "priority_suggestions", "우선제안",
		"cooperation", "benchmarking", "differentiation",
		"협력안", "벤치마킹", "차별화",
	}
)

// PestSwotView builds the quadrant view from the session's raw analysis
// text. It never fails: a missing or malformed result renders as empty
// quadrants, keeping the dashboard layout stable.
func (s *Service) PestSwotView(sess *session.State) PestSwotView {
	view := PestSwotView{News: sess.NewsResults()}
	raw := sess.PestSwotRaw()
	if raw == "" {
		return view
	}
	view.HasResult = true

	data := contract.SafeParse(raw)
	pest := mapValue(data, "PEST")
	swot := mapValue(data, "SWOT")
	view.PEST = core.PestQuadrants{
		P: insight.Take2(listValue(pest, "P")),
		E: insight.Take2(listValue(pest, "E")),
		S: insight.Take2(listValue(pest, "S")),
		T: insight.Take2(listValue(pest, "T")),
	}
	view.SWOT = core.SwotQuadrants{
		S: insight.Take2(listValue(swot, "S")),
		W: insight.Take2(listValue(swot, "W")),
		O: insight.Take2(listValue(swot, "O")),
		T: insight.Take2(listValue(swot, "T")),
	}
	if oneLiner, ok := data["one_liner"].(string); ok {
		view.OneLiner = insight.CleanOneLiner(oneLiner)
	}
	return view
}

// CombinedView builds the combined-insight view from the session's raw
// combined text. Like PestSwotView it never fails, and it scavenges the
// alternate key names models drift to when they ignore the schema.
func (s *Service) CombinedView(sess *session.State) CombinedView {
	raw := sess.CombinedRaw()
	if raw == "" {
		return CombinedView{}
	}
	data := contract.SafeParse(raw)
	view := CombinedView{HasResult: true}

	view.InternalSummary = insight.Take2(listValue(data, "internal_summary"))
	for _, key := range externalSummaryKeys {
		view.ExternalSummary = append(view.ExternalSummary, insight.Take2(listValue(data, key))...)
	}

	integrated := mapValue(data, "integrated_insights")
	strengths := insight.Take2(listValue(data, "strengths"))
	if ext := firstNonEmpty(integrated, "strengths", "강점"); len(ext) > 0 {
		strengths = append(strengths, ext...)
	}
	weaknesses := insight.Take2(listValue(data, "weaknesses"))
	if ext := firstNonEmpty(integrated, "weaknesses", "약점"); len(ext) > 0 {
		weaknesses = append(weaknesses, ext...)
	}
	view.Strengths = insight.Dedup(strengths)
	view.Weaknesses = insight.Dedup(weaknesses)

	proposals := mapValue(data, "proposals")
	choice, summary := insight.ChoosePriorityProposal(
		proposalList(proposals, "benchmarking"),
		proposalList(proposals, "cooperation"),
		proposalList(proposals, "differentiation"),
	)
	if len(summary) == 0 {
		var candidates []string
		for _, key := range proposalScavengeKeys {
			candidates = append(candidates, insight.Take2(listValue(proposals, key))...)
		}
		for _, key := range insightScavengeKeys {
			candidates = append(candidates, insight.Take2(listValue(integrated, key))...)
		}
		summary = candidates
		if len(summary) > 0 && choice == insight.ChoiceNone {
			choice = insight.ChoiceCooperation
		}
	}
	view.PriorityChoice = choice
	view.PrioritySummary = insight.Dedup(summary)
	return view
}

// Proposals extracts the full-schema proposal lists from a combined view's
// raw text, execution KPIs included.
func (s *Service) Proposals(sess *session.State) core.Proposals {
	data := contract.SafeParse(sess.CombinedRaw())
	proposals := mapValue(data, "proposals")
	return core.Proposals{
		Benchmarking:    proposalList(proposals, "benchmarking"),
		Cooperation:     proposalList(proposals, "cooperation"),
		Differentiation: proposalList(proposals, "differentiation"),
		ExecutionKPIs:   proposalList(proposals, "execution_kpis"),
	}
}

func proposalList(m map[string]any, key string) []string {
	return insight.NormalizeList(listValue(m, key), insight.ProposalLimit)
}

// firstNonEmpty returns the first key's normalized two entries, matching
// the "canonical name or Korean alias, not both" shape of drifted output.
func firstNonEmpty(m map[string]any, keys ...string) []string {
	for _, key := range keys {
		if got := insight.Take2(listValue(m, key)); len(got) > 0 {
			return got
		}
	}
	return nil
}

// listValue coerces a field to a list: lists pass through, a single scalar
// becomes a one-element list, nil stays empty.
func listValue(m map[string]any, key string) []any {
	switch v := m[key].(type) {
	case nil:
		return nil
	case []any:
		return v
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return []any{v}
	default:
		return []any{v}
	}
}

func mapValue(m map[string]any, key string) map[string]any {
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return map[string]any{}
}
