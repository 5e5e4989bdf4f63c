// Package prompt renders retrieved evidence and user-selected context into
// the instruction pairs the completion client sends. Three tasks exist:
// news-only PEST·SWOT analysis, internal document summarization, and the
// combined insight over both evidence sets. All three instruct the model to
// emit only a JSON object; the contract package depends on that.
package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"axinsight/internal/core"
)

// Messages is one (system instruction, user instruction) pair for the
// completion client.
type Messages struct {
	System string
	User   string
}

// DefaultDocBudget is the character budget for the merged document block.
const DefaultDocBudget = 20000

// NewsPestSwotSchema is the JSON shape the news-only task must produce.
const NewsPestSwotSchema = `{
  "PEST": {"P": ["문장1~2"], "E": ["문장1~2"], "S": ["문장1~2"], "T": ["문장1~2"]},
  "SWOT": {"S": ["문장1~2"], "W": ["문장1~2"], "O": ["문장1~2"], "T": ["문장1~2"]},
  "one_liner": "자사 한 줄 대응전략 + KPI 2~3개 예시"
}`

// CombinedSchema is the JSON shape the combined task must produce.
const CombinedSchema = `{
  "internal_summary": ["문장(끝에 [D#])", "문장(끝에 [D#])"],
  "strengths": ["문장(끝에 [D#])", "문장(끝에 [D#])"],
  "weaknesses": ["문장(끝에 [D#])", "문장(끝에 [D#])"],
  "external_insights": ["문장(끝에 [N#])", "문장(끝에 [N#])"],
  "proposals": {
    "benchmarking": ["문장(근거 [D#]/[N#])", "문장(근거 [D#]/[N#])"],
    "cooperation": ["문장(근거 [D#]/[N#])", "문장(근거 [D#]/[N#])"],
    "differentiation": ["문장(근거 [D#]/[N#])", "문장(근거 [D#]/[N#])"],
    "execution_kpis": ["문장(자사 KPI)", "문장(자사 KPI)"]
  }
}`

const jsonOnlySystem = "한국어로만 작성. 반드시 JSON만 출력."

// BuildNewsAnalysis constructs the news-only PEST·SWOT task. The framing
// rules switch on whether the analysis subject is the home organization:
// first-person mode forbids treating the home organization as a competitor
// or benchmark, third-person mode keeps the two entities distinct and
// evaluates the subject from the home organization's vantage point.
func BuildNewsAnalysis(req core.AnalysisRequest, news []core.NewsItem) Messages {
	var persona strings.Builder
	if IsHomeOrganization(req.Company) {
		fmt.Fprintf(&persona, "- 자사는 '%s'로 정의. 뉴스에 등장하는 '%s'는 곧 자사.\n", HomeOrganization, HomeOrganization)
		fmt.Fprintf(&persona, "- '%s'를 경쟁사로 취급 금지. '자사 대비 %s' 같은 표현 금지.\n", HomeOrganization, HomeOrganization)
		fmt.Fprintf(&persona, "- 벤치마킹/비교 대상은 '%s'가 아님(경쟁사 또는 개별 타사명으로 표기).\n", HomeOrganization)
		persona.WriteString("- 시점은 현재, 어조는 내부 전략 보고서 톤.")
	} else {
		fmt.Fprintf(&persona, "- 자사는 '%s'. 분석 대상 회사는 '%s'.\n", HomeOrganization, req.Company)
		fmt.Fprintf(&persona, "- '자사'는 항상 '%s'를 의미. '%s'와 '%s' 혼동 금지.\n", HomeOrganization, HomeOrganization, req.Company)
		fmt.Fprintf(&persona, "- 출력은 자사 관점(= %s)에서 '%s'를 평가.", HomeOrganization, req.Company)
	}

	var user strings.Builder
	user.WriteString("당신은 전략/기획 전문가입니다. 아래 정보와 뉴스 근거를 기반으로 ")
	user.WriteString("PEST / SWOT 4사분면용 요약(각 칸 1~2문장)을 JSON으로 작성하세요.\n")
	user.WriteString(persona.String())
	user.WriteString("\n\n")
	fmt.Fprintf(&user, "JSON 스키마:\n%s\n\n", NewsPestSwotSchema)
	user.WriteString("제약:\n")
	user.WriteString("- 각 리스트 최대 2문장, 문장 끝 마침표.\n")
	user.WriteString("- 필요 시 문장 끝에 (출처:[1]) 허용.\n")
	user.WriteString("- JSON 외 텍스트 금지.\n\n")
	fmt.Fprintf(&user, "컨텍스트:\n%s\n\n=== 뉴스 근거 ===\n%s", contextBlock(req), newsBlock(news, ""))

	return Messages{System: jsonOnlySystem, User: user.String()}
}

// BuildDocSummary constructs the document summarization task over the
// merged chunk block. The merged block itself comes from MergeChunks so the
// caller can reuse it for the raw-preview fallback.
func BuildDocSummary(merged string) Messages {
	return Messages{
		System: "한국어로 작성. 중복 제거, 핵심만 간결하게.",
		User:   "아래 여러 문서 조각을 3~4줄로 한글 요약하세요. 불필요한 수식어/중복은 제거:\n\n" + merged,
	}
}

// BuildCombinedInsight constructs the combined task over the 1-indexed news
// block ([N#] tags) and document block ([D#] tags).
func BuildCombinedInsight(req core.AnalysisRequest, news []core.NewsItem, docs []core.DocumentChunk) Messages {
	subject := strings.TrimSpace(req.Company)
	if subject == "" {
		subject = "자사"
	}

	var db strings.Builder
	for i, d := range docs {
		title := d.Title
		if strings.TrimSpace(title) == "" {
			title = "(제목 없음)"
		}
		fmt.Fprintf(&db, "[D%d] %s - %s\n내용:\n%s\n\n", i+1, title, d.Source, d.Content)
	}

	var user strings.Builder
	fmt.Fprintf(&user, "아래 외부 뉴스(N#)와 내부 문서(D#)를 바탕으로 자사(%s) 관점의 간결한 인사이트를 JSON으로만 출력.\n\n", subject)
	fmt.Fprintf(&user, "JSON 스키마:\n%s\n\n", CombinedSchema)
	user.WriteString("제약:\n- JSON 외 텍스트 금지.\n- 각 항목 1문장, 배열 최대 2개.\n- [N#]/[D#]만 인용.\n\n")
	fmt.Fprintf(&user, "맥락:\n회사(A): %s\n기술: %s\n도메인: %s\n\n", subject, joinOrNA(req.Technologies), joinOrNA(req.Domains))
	fmt.Fprintf(&user, "=== 외부 뉴스 ===\n%s\n=== 내부 문서 ===\n%s", newsBlock(news, "N"), db.String())

	return Messages{System: jsonOnlySystem, User: user.String()}
}

// MergeChunks concatenates document chunks into one labeled block, stopping
// at the character budget. The chunk that crosses the boundary is truncated
// to fill the budget exactly rather than dropped, so a single oversized
// chunk still contributes evidence.
func MergeChunks(docs []core.DocumentChunk, budget int) string {
	if budget <= 0 {
		budget = DefaultDocBudget
	}
	var sb strings.Builder
	total := 0
	for i, d := range docs {
		title := d.Title
		if strings.TrimSpace(title) == "" {
			title = "(제목 없음)"
		}
		piece := fmt.Sprintf("[D%d] %s\n%s\n\n", i+1, title, d.Content)
		// The budget counts characters, not bytes: Korean content is three
		// bytes per rune and a byte cut could split one.
		runes := utf8.RuneCountInString(piece)
		if total+runes > budget {
			remain := budget - total
			if remain > 0 {
				sb.WriteString(string([]rune(piece)[:remain]))
			}
			break
		}
		sb.WriteString(piece)
		total += runes
	}
	return sb.String()
}

// newsBlock renders the enumerated, 1-indexed evidence block. tagPrefix is
// empty for the news-only task ([1], [2], ...) and "N" for the combined task
// ([N1], [N2], ...).
func newsBlock(news []core.NewsItem, tagPrefix string) string {
	var sb strings.Builder
	for i, n := range news {
		title := n.Title
		if strings.TrimSpace(title) == "" {
			title = "(제목 없음)"
		}
		fmt.Fprintf(&sb, "[%s%d] %s — %s — %s\n", tagPrefix, i+1, title, n.Provider, n.PublishedAt)
		fmt.Fprintf(&sb, "요약: %s\nURL: %s\n\n", n.Snippet, n.URL)
	}
	return sb.String()
}

func contextBlock(req core.AnalysisRequest) string {
	lines := []string{
		"기술: " + joinOrNA(req.Technologies),
		"도메인: " + joinOrNA(req.Domains),
	}
	if strings.TrimSpace(req.Company) != "" {
		lines = append([]string{"회사: " + req.Company}, lines...)
	}
	return strings.Join(lines, "\n")
}

func joinOrNA(items []string) string {
	if len(items) == 0 {
		return "N/A"
	}
	return strings.Join(items, ", ")
}
