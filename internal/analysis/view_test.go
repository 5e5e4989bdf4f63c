package analysis

import (
	"reflect"
	"testing"

	"axinsight/internal/core"
	"axinsight/internal/insight"
	"axinsight/internal/session"
)

func TestPestSwotViewEmpty(t *testing.T) {
	svc := NewService(Deps{})
	sess := session.NewState()
	sess.SetNewsResults("AI", []core.NewsItem{{Title: "기사"}})

	view := svc.PestSwotView(sess)
	if view.HasResult {
		t.Error("no raw result should render as HasResult=false")
	}
	if len(view.News) != 1 {
		t.Error("the news list should still be present for the evidence panel")
	}
}

func TestPestSwotViewParsesFencedResult(t *testing.T) {
	svc := NewService(Deps{})
	sess := session.NewState()
	sess.SetPestSwotRaw("```json\n" + `{
		"PEST": {"P": ["정책 완화 [N1]", "규제 강화 [N2]", "세 번째"], "E": "환율 변동"},
		"SWOT": {"S": ["기술력 [N1]"]},
		"one_liner": "한 줄 요약 [N1][N2]"
	}` + "\n```")

	view := svc.PestSwotView(sess)
	if !view.HasResult {
		t.Fatal("HasResult = false")
	}
	if want := []string{"정책 완화", "규제 강화"}; !reflect.DeepEqual(view.PEST.P, want) {
		t.Errorf("PEST.P = %v, want %v", view.PEST.P, want)
	}
	if want := []string{"환율 변동"}; !reflect.DeepEqual(view.PEST.E, want) {
		t.Errorf("PEST.E = %v, want %v: a scalar field should render as one entry", view.PEST.E, want)
	}
	if len(view.PEST.S) != 0 || len(view.SWOT.W) != 0 {
		t.Error("absent quadrants should stay empty")
	}
	if want := []string{"기술력"}; !reflect.DeepEqual(view.SWOT.S, want) {
		t.Errorf("SWOT.S = %v, want %v", view.SWOT.S, want)
	}
	if view.OneLiner != "한 줄 요약" {
		t.Errorf("OneLiner = %q", view.OneLiner)
	}
}

func TestPestSwotViewMalformedResult(t *testing.T) {
	svc := NewService(Deps{})
	sess := session.NewState()
	sess.SetPestSwotRaw("이것은 JSON이 아닙니다")

	view := svc.PestSwotView(sess)
	if !view.HasResult {
		t.Error("a raw result was present, even if malformed")
	}
	if len(view.PEST.P) != 0 || view.OneLiner != "" {
		t.Error("malformed raw should render as empty quadrants")
	}
}

func TestCombinedViewSchemaResult(t *testing.T) {
	svc := NewService(Deps{})
	sess := session.NewState()
	sess.SetCombinedRaw(`{
		"internal_summary": ["내부 강점 정리 [D1]"],
		"external_summary": ["시장이 빠르게 성장 [N1]"],
		"strengths": ["클라우드 역량"],
		"weaknesses": ["해외 인지도 부족"],
		"proposals": {
			"benchmarking": ["사례 분석"],
			"cooperation": ["제휴 추진", "공동 연구"],
			"differentiation": []
		}
	}`)

	view := svc.CombinedView(sess)
	if !view.HasResult {
		t.Fatal("HasResult = false")
	}
	if want := []string{"내부 강점 정리"}; !reflect.DeepEqual(view.InternalSummary, want) {
		t.Errorf("InternalSummary = %v, want %v", view.InternalSummary, want)
	}
	if want := []string{"시장이 빠르게 성장"}; !reflect.DeepEqual(view.ExternalSummary, want) {
		t.Errorf("ExternalSummary = %v, want %v", view.ExternalSummary, want)
	}
	if view.PriorityChoice != insight.ChoiceCooperation {
		t.Errorf("PriorityChoice = %q, want cooperation: it has the most entries", view.PriorityChoice)
	}
	if want := []string{"제휴 추진", "공동 연구"}; !reflect.DeepEqual(view.PrioritySummary, want) {
		t.Errorf("PrioritySummary = %v, want %v", view.PrioritySummary, want)
	}
}

func TestCombinedViewScavengesExternalSummary(t *testing.T) {
	svc := NewService(Deps{})
	sess := session.NewState()
	sess.SetCombinedRaw(`{"news_summary": ["외부 동향 [N2]"]}`)

	view := svc.CombinedView(sess)
	if want := []string{"외부 동향"}; !reflect.DeepEqual(view.ExternalSummary, want) {
		t.Errorf("ExternalSummary = %v, want %v: news_summary should be scavenged", view.ExternalSummary, want)
	}
}

func TestCombinedViewMergesIntegratedInsights(t *testing.T) {
	svc := NewService(Deps{})
	sess := session.NewState()
	sess.SetCombinedRaw(`{
		"strengths": ["기술력"],
		"integrated_insights": {
			"강점": ["기술력", "브랜드"],
			"약점": ["인지도 부족"]
		}
	}`)

	view := svc.CombinedView(sess)
	if want := []string{"기술력", "브랜드"}; !reflect.DeepEqual(view.Strengths, want) {
		t.Errorf("Strengths = %v, want %v: merged then deduplicated", view.Strengths, want)
	}
	if want := []string{"인지도 부족"}; !reflect.DeepEqual(view.Weaknesses, want) {
		t.Errorf("Weaknesses = %v, want %v", view.Weaknesses, want)
	}
}

func TestCombinedViewScavengesPriorities(t *testing.T) {
	svc := NewService(Deps{})
	sess := session.NewState()
	sess.SetCombinedRaw(`{
		"proposals": {"우선제안": ["파트너십 강화", "파트너십 강화."]}
	}`)

	view := svc.CombinedView(sess)
	if view.PriorityChoice != insight.ChoiceCooperation {
		t.Errorf("PriorityChoice = %q: scavenged candidates default to cooperation", view.PriorityChoice)
	}
	if want := []string{"파트너십 강화"}; !reflect.DeepEqual(view.PrioritySummary, want) {
		t.Errorf("PrioritySummary = %v, want %v: deduplicated after scavenging", view.PrioritySummary, want)
	}
}

func TestCombinedViewScavengeKeySplit(t *testing.T) {
	svc := NewService(Deps{})
	sess := session.NewState()
	sess.SetCombinedRaw(`{
		"proposals": {"차별화": ["제안 A"]},
		"integrated_insights": {
			"differentiation": ["차별화 전략"],
			"cooperation": ["제휴 추진"]
		}
	}`)

	view := svc.CombinedView(sess)
	// Korean category names are only scanned under integrated_insights,
	// where cooperation comes before differentiation.
	want := []string{"제휴 추진", "차별화 전략"}
	if !reflect.DeepEqual(view.PrioritySummary, want) {
		t.Errorf("PrioritySummary = %v, want %v", view.PrioritySummary, want)
	}
}

func TestCombinedViewEmpty(t *testing.T) {
	svc := NewService(Deps{})
	view := svc.CombinedView(session.NewState())
	if view.HasResult {
		t.Error("no raw result should render as HasResult=false")
	}
}

func TestProposals(t *testing.T) {
	svc := NewService(Deps{})
	sess := session.NewState()
	sess.SetCombinedRaw(`{
		"proposals": {
			"benchmarking": ["사례 분석"],
			"cooperation": [{"text": "제휴 추진"}],
			"differentiation": ["차별화 전략"],
			"execution_kpis": ["분기별 매출 성장률"]
		}
	}`)

	got := svc.Proposals(sess)
	want := core.Proposals{
		Benchmarking:    []string{"사례 분석"},
		Cooperation:     []string{"제휴 추진"},
		Differentiation: []string{"차별화 전략"},
		ExecutionKPIs:   []string{"분기별 매출 성장률"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Proposals() = %+v, want %+v", got, want)
	}
}
