package insight

import (
	"reflect"
	"testing"
)

func TestCleanCitations(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Document tag stripped",
			input:    "내부 역량 강화 필요 [D1]",
			expected: "내부 역량 강화 필요",
		},
		{
			name:     "News tag stripped mid-sentence",
			input:    "수요 확대 [N2] 전망",
			expected: "수요 확대 전망",
		},
		{
			name:     "Source suffix stripped",
			input:    "규제 완화 진행 (출처: [3])",
			expected: "규제 완화 진행",
		},
		{
			name:     "Plain text untouched",
			input:    "변경 없음",
			expected: "변경 없음",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanCitations(tc.input); got != tc.expected {
				t.Errorf("CleanCitations(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestNormalizeList(t *testing.T) {
	items := []any{
		" 정책 지원 확대 ",
		"",
		"NULL",
		map[string]any{"text": "경쟁 심화"},
		map[string]any{"summary": "수요 증가"},
		3.0,
		nil,
	}
	got := NormalizeList(items, 10)
	want := []string{"정책 지원 확대", "경쟁 심화", "수요 증가", "3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeList() = %v, want %v", got, want)
	}
}

func TestNormalizeListLimit(t *testing.T) {
	items := []any{"a", "b", "c"}
	if got := NormalizeList(items, 2); len(got) != 2 {
		t.Errorf("NormalizeList() returned %d entries, want 2", len(got))
	}
}

func TestDedup(t *testing.T) {
	testCases := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "Case, whitespace and trailing period collapse",
			input:    []string{"A.", "a", " A "},
			expected: []string{"A."},
		},
		{
			name:     "Citation tags ignored for comparison",
			input:    []string{"전략 수립 [D1]", "전략 수립"},
			expected: []string{"전략 수립"},
		},
		{
			name:     "Distinct entries survive in order",
			input:    []string{"b", "a", "b"},
			expected: []string{"b", "a"},
		},
		{
			name:     "Empties dropped",
			input:    []string{"", "  ", "x"},
			expected: []string{"x"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Dedup(tc.input)
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("Dedup(%v) = %v, want %v", tc.input, got, tc.expected)
			}
		})
	}
}

func TestDedupKeepsFirstForm(t *testing.T) {
	got := Dedup([]string{"A.", "a", " A "})
	if len(got) != 1 {
		t.Fatalf("Dedup() = %v, want exactly one entry", got)
	}
	if got[0] != "A." {
		t.Errorf("Dedup() kept %q, want first-seen form %q", got[0], "A.")
	}
}

func TestChoosePriorityProposal(t *testing.T) {
	testCases := []struct {
		name            string
		benchmarking    []string
		cooperation     []string
		differentiation []string
		expectedChoice  ProposalChoice
	}{
		{
			name:            "Highest count wins",
			benchmarking:    []string{"a"},
			cooperation:     []string{"a", "b"},
			differentiation: []string{"c"},
			expectedChoice:  ChoiceCooperation,
		},
		{
			name:            "Tie-break prefers differentiation",
			benchmarking:    []string{"a", "b"},
			cooperation:     []string{"c", "d"},
			differentiation: []string{"e", "f"},
			expectedChoice:  ChoiceDifferentiation,
		},
		{
			name:            "Cooperation beats benchmarking on tie with differentiation empty",
			benchmarking:    []string{"a", "b"},
			cooperation:     []string{"a", "b"},
			differentiation: nil,
			expectedChoice:  ChoiceCooperation,
		},
		{
			name:           "All empty selects nothing",
			expectedChoice: ChoiceNone,
		},
		{
			name:            "Whitespace entries count as empty",
			benchmarking:    []string{" ", ""},
			cooperation:     nil,
			differentiation: nil,
			expectedChoice:  ChoiceNone,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			choice, summary := ChoosePriorityProposal(tc.benchmarking, tc.cooperation, tc.differentiation)
			if choice != tc.expectedChoice {
				t.Errorf("choice = %q, want %q", choice, tc.expectedChoice)
			}
			if tc.expectedChoice == ChoiceNone && summary != nil {
				t.Errorf("summary = %v, want nil for no selection", summary)
			}
		})
	}
}

func TestChoosePriorityProposalBackfill(t *testing.T) {
	cooperation := []string{"공동 연구 [D1]", "공동 연구", "표준화 협력", "생태계 구축", "파트너십 확대"}
	choice, summary := ChoosePriorityProposal(nil, cooperation, nil)
	if choice != ChoiceCooperation {
		t.Fatalf("choice = %q, want cooperation", choice)
	}
	if len(summary) != ProposalLimit {
		t.Errorf("summary has %d entries, want backfill to %d: %v", len(summary), ProposalLimit, summary)
	}
}

func TestCleanOneLiner(t *testing.T) {
	input := "핵심 전략 유지 [N1]\n내부 문서 기반 판단 [D2]\n핵심 전략 유지 [N1]\n추가 투자 확대"
	got := CleanOneLiner(input)
	want := "핵심 전략 유지\n추가 투자 확대"
	if got != want {
		t.Errorf("CleanOneLiner() = %q, want %q", got, want)
	}
}
