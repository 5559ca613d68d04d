package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"codetutor/internal/llm"
	"codetutor/internal/search"
	"codetutor/internal/ui"
)

func newSearchCmd() *cobra.Command {
	var filters search.Filters
	var providerName string
	var summarize bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find GitHub repositories worth documenting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			provider, err := llm.ParseProvider(providerName)
			if err != nil {
				return err
			}
			cli, err := llm.New(ctx, llm.Config{Provider: provider})
			if err != nil {
				return err
			}
			defer cli.Close()

			keywords, err := search.ExtractKeywords(ctx, cli, args[0])
			if err != nil {
				return err
			}
			ui.Infof("searching for: %s", strings.Join(keywords, " "))

			gh := search.NewClient(os.Getenv("GITHUB_TOKEN"))
			repos, err := gh.Repos(ctx, keywords, filters)
			if err != nil {
				return err
			}
			if len(repos) == 0 {
				ui.Warnf("no repositories matched")
				return nil
			}
			for i, r := range repos {
				fmt.Printf("%d. %s (%d stars, %d forks, %s)\n   %s\n   %s\n",
					i+1, r.FullName, r.Stars, r.Forks, r.Language, r.URL, r.Description)
				if summarize {
					readme, err := gh.Readme(ctx, r.FullName)
					if err != nil {
						ui.Warnf("readme for %s: %v", r.FullName, err)
						continue
					}
					fmt.Printf("   %s\n", search.Summarize(ctx, cli, readme))
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&filters.MinStars, "min-stars", 0, "minimum star count")
	f.IntVar(&filters.MinForks, "min-forks", 0, "minimum fork count")
	f.StringVar(&filters.Language, "language", "", "restrict to a language")
	f.StringVar(&filters.SortBy, "sort", "stars", "sort by stars, forks or updated")
	f.StringVar(&filters.UpdatedSince, "updated-since", "", "only repos pushed after this date (YYYY-MM-DD)")
	f.StringVar(&providerName, "provider", string(llm.ProviderGemini), "LLM provider for keyword extraction")
	f.BoolVar(&summarize, "summarize", false, "also summarize each repository README")

	return cmd
}
