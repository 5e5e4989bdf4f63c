package handlers

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"axinsight/internal/config"
	"axinsight/internal/core"
	"axinsight/internal/session"
)

// NewAnalyzeCmd creates the one-shot analysis command
func NewAnalyzeCmd() *cobra.Command {
	var (
		company    string
		techs      []string
		domains    []string
		count      int
		freshness  string
		strictAND  bool
		docKeyword string
		combined   bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <query>",
		Short: "Search news and run a grounded PEST/SWOT analysis",
		Long: `Run the full news flow in one shot: search, analyze and print the
quadrant view as JSON. With --combined, also search the document index and
produce the combined insight.

Examples:
  # Analyze from the home organization's perspective
  axinsight analyze "생성형 AI 공공 도입" --tech "LLM" --domain "공공"

  # Analyze a specific company
  axinsight analyze "클라우드 MSP 경쟁" --company "삼성SDS"

  # Combined insight grounded on internal documents too
  axinsight analyze "AX 전략" --combined --doc-keyword "중장기 전략"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := core.AnalysisRequest{
				Company:      company,
				Technologies: techs,
				Domains:      domains,
			}
			return runAnalyze(cmd, args[0], req, count, freshness, strictAND, docKeyword, combined)
		},
	}

	cmd.Flags().StringVar(&company, "company", "", "Company under analysis (empty = home organization, first person)")
	cmd.Flags().StringSliceVar(&techs, "tech", nil, "Technology interests")
	cmd.Flags().StringSliceVar(&domains, "domain", nil, "Domain interests")
	cmd.Flags().IntVar(&count, "count", 5, "Maximum number of news results")
	cmd.Flags().StringVar(&freshness, "freshness", "Week", "Lookback window: Day, Week or Month")
	cmd.Flags().BoolVar(&strictAND, "strict-and", false, "Require all terms (conjunctive query rewrite)")
	cmd.Flags().StringVar(&docKeyword, "doc-keyword", "", "Document keyword for the combined insight")
	cmd.Flags().BoolVar(&combined, "combined", false, "Also produce the combined insight (needs --doc-keyword)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, query string, req core.AnalysisRequest, count int, freshness string, strictAND bool, docKeyword string, combined bool) error {
	if combined && docKeyword == "" {
		return fmt.Errorf("--combined requires --doc-keyword to retrieve document evidence")
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	deps := buildServices(cfg)
	defer deps.close()
	sess := session.NewState()
	ctx := cmd.Context()

	items, err := deps.svc.SearchNews(ctx, sess, query, count, core.FreshnessWindow(freshness), strictAND)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "📰 %d article(s) retrieved\n", len(items))

	if _, err := deps.svc.AnalyzePestSwot(ctx, sess, req); err != nil {
		return err
	}
	if err := printJSON(deps.svc.PestSwotView(sess)); err != nil {
		return err
	}

	if !combined {
		return nil
	}

	hits, err := deps.svc.SearchDocuments(ctx, sess, docKeyword)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "📚 %d document chunk(s) retrieved\n", len(hits))

	if _, err := deps.svc.CombinedInsight(ctx, sess, req); err != nil {
		return err
	}
	return printJSON(deps.svc.CombinedView(sess))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
