// Package insight post-processes parsed completion output for display:
// citation stripping, list normalization, deduplication and the priority
// proposal selection.
package insight

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Display limits for normalized lists.
const (
	QuadrantLimit = 2
	ProposalLimit = 4
)

var (
	citationTagRegex  = regexp.MustCompile(`\s*\[(?:D|N)\d+\]\s*`)
	citationListRegex = regexp.MustCompile(`\s*\(출처:\s*\[\d+\]\)\s*`)
	whitespaceRegex   = regexp.MustCompile(`\s+`)
	docTagRegex       = regexp.MustCompile(`\[D\d+\]`)
)

// CleanCitations removes inline [D#]/[N#] tags and (출처: [#]) suffixes from
// display text. The tags stay meaningful inside the JSON contract; they are
// only noise on screen.
func CleanCitations(text string) string {
	text = citationTagRegex.ReplaceAllString(text, " ")
	text = citationListRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// NormalizeList coerces a heterogeneous list (strings, objects with a
// text/summary/description field, or anything else) to trimmed strings,
// dropping empties and literal "NULL" entries, capped at limit.
func NormalizeList(items []any, limit int) []string {
	out := make([]string, 0, limit)
	for _, item := range items {
		if item == nil {
			continue
		}
		var s string
		switch v := item.(type) {
		case string:
			s = strings.TrimSpace(v)
		case map[string]any:
			for _, key := range []string{"text", "summary", "description"} {
				if field, ok := v[key].(string); ok && strings.TrimSpace(field) != "" {
					s = strings.TrimSpace(field)
					break
				}
			}
		default:
			s = strings.TrimSpace(stringify(v))
		}
		if s == "" || strings.ToUpper(s) == "NULL" {
			continue
		}
		out = append(out, s)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// Take2 normalizes and citation-cleans up to two entries, the quadrant
// display shape.
func Take2(items []any) []string {
	norm := NormalizeList(items, QuadrantLimit)
	out := make([]string, 0, len(norm))
	for _, s := range norm {
		out = append(out, CleanCitations(s))
	}
	return out
}

// Dedup strips citation tags, then drops entries whose normalized form
// (whitespace collapsed, case folded, one trailing period removed) was
// already seen, keeping the first-seen cleaned form in order.
func Dedup(items []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range items {
		s := strings.TrimSpace(item)
		if s == "" {
			continue
		}
		cleaned := strings.TrimSpace(citationTagRegex.ReplaceAllString(s, " "))
		cleaned = whitespaceRegex.ReplaceAllString(cleaned, " ")
		norm := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(cleaned), "."))
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		out = append(out, cleaned)
	}
	return out
}

// ProposalChoice identifies the selected priority-proposal category.
type ProposalChoice string

const (
	ChoiceNone            ProposalChoice = ""
	ChoiceBenchmarking    ProposalChoice = "benchmarking"
	ChoiceCooperation     ProposalChoice = "cooperation"
	ChoiceDifferentiation ProposalChoice = "differentiation"
)

// ChoosePriorityProposal scores the three candidate categories by their
// count of non-empty entries and picks the highest; equal scores break
// differentiation > cooperation > benchmarking. When everything is empty it
// reports no selection rather than defaulting to a category. The summary
// starts from the chosen category's two deduplicated entries and backfills
// remaining raw entries up to ProposalLimit, preserving order.
func ChoosePriorityProposal(benchmarking, cooperation, differentiation []string) (ProposalChoice, []string) {
	counts := map[ProposalChoice]int{
		ChoiceBenchmarking:    countNonEmpty(benchmarking),
		ChoiceCooperation:     countNonEmpty(cooperation),
		ChoiceDifferentiation: countNonEmpty(differentiation),
	}
	if counts[ChoiceBenchmarking] == 0 && counts[ChoiceCooperation] == 0 && counts[ChoiceDifferentiation] == 0 {
		return ChoiceNone, nil
	}

	// tie-break order is the iteration order here
	choice := ChoiceDifferentiation
	for _, cand := range []ProposalChoice{ChoiceCooperation, ChoiceBenchmarking} {
		if counts[cand] > counts[choice] {
			choice = cand
		}
	}

	picked := map[ProposalChoice][]string{
		ChoiceBenchmarking:    benchmarking,
		ChoiceCooperation:     cooperation,
		ChoiceDifferentiation: differentiation,
	}[choice]

	summary := Dedup(picked)
	if len(summary) > QuadrantLimit {
		summary = summary[:QuadrantLimit]
	}
	return choice, backfill(summary, picked, ProposalLimit)
}

// backfill appends remaining non-duplicate raw entries from the same
// category until the summary reaches limit.
func backfill(summary []string, raw []string, limit int) []string {
	have := make(map[string]bool, len(summary))
	for _, s := range summary {
		have[normKey(s)] = true
	}
	for _, item := range raw {
		if len(summary) >= limit {
			break
		}
		s := strings.TrimSpace(item)
		if s == "" {
			continue
		}
		key := normKey(CleanCitations(s))
		if have[key] {
			continue
		}
		have[key] = true
		summary = append(summary, s)
	}
	return summary
}

func normKey(s string) string {
	s = whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
	return strings.ToLower(strings.TrimSuffix(s, "."))
}

func countNonEmpty(items []string) int {
	n := 0
	for _, s := range items {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	return n
}

// CleanOneLiner prepares the one-line strategy for display: lines carrying
// document citations are dropped (they reference evidence the reader cannot
// see on this view), duplicate lines collapse in first-seen order, and the
// remaining text loses its citation tags.
func CleanOneLiner(text string) string {
	seen := make(map[string]bool)
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || docTagRegex.MatchString(line) {
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true
		lines = append(lines, CleanCitations(line))
	}
	return strings.Join(lines, "\n")
}

func stringify(v any) string {
	switch t := v.(type) {
	case float64:
		// JSON numbers arrive as float64; render integral values plainly.
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
