package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"axinsight/internal/config"
	"axinsight/internal/core"
	"axinsight/internal/session"
)

// NewSearchCmd creates the one-shot search command
func NewSearchCmd() *cobra.Command {
	var (
		count     int
		freshness string
		strictAND bool
		documents bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search news (or internal documents with --documents)",
		Long: `Run a one-shot search and print the results.

Examples:
  # Search recent news
  axinsight search "생성형 AI 공공 도입"

  # Search within the last month, conjunctive terms
  axinsight search "클라우드 MSP" --freshness Month --strict-and

  # Search the internal document index
  axinsight search "보안 요구사항" --documents`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args[0], count, freshness, strictAND, documents)
		},
	}

	cmd.Flags().IntVar(&count, "count", 5, "Maximum number of results")
	cmd.Flags().StringVar(&freshness, "freshness", "Week", "Lookback window: Day, Week or Month")
	cmd.Flags().BoolVar(&strictAND, "strict-and", false, "Require all terms (conjunctive query rewrite)")
	cmd.Flags().BoolVar(&documents, "documents", false, "Search the internal document index instead of news")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, count int, freshness string, strictAND, documents bool) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	deps := buildServices(cfg)
	defer deps.close()
	sess := session.NewState()
	ctx := cmd.Context()

	if documents {
		hits, err := deps.svc.SearchDocuments(ctx, sess, query)
		if err != nil {
			return err
		}
		fmt.Printf("📚 %d document chunk(s) for %q\n\n", len(hits), query)
		for i, hit := range hits {
			title := hit.Title
			if title == "" {
				title = "(제목 없음)"
			}
			fmt.Printf("%d. %s\n", i+1, title)
			fmt.Printf("   %s\n", snippetOf(hit.Content, 160))
		}
		return nil
	}

	items, err := deps.svc.SearchNews(ctx, sess, query, count, core.FreshnessWindow(freshness), strictAND)
	if err != nil {
		return err
	}
	fmt.Printf("📰 %d article(s) for %q\n\n", len(items), query)
	for i, item := range items {
		fmt.Printf("%d. %s (%s)\n", i+1, item.Title, item.PublishedAt)
		if item.Snippet != "" {
			fmt.Printf("   %s\n", snippetOf(item.Snippet, 160))
		}
		fmt.Printf("   %s\n", item.URL)
	}
	return nil
}

// snippetOf truncates on runes so multibyte text never splits mid-character.
func snippetOf(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "…"
}
