package cmd

import (
	"context"
	"flag"

	"github.com/etnz/nexus/insight"
	"github.com/google/subcommands"
)

type insightCmd struct {
	view string
}

func (*insightCmd) Name() string     { return "insight" }
func (*insightCmd) Synopsis() string { return "ask Gemini for a commentary on a view" }
func (*insightCmd) Usage() string {
	return `nx insight [-view <view>]

  Sends the stats and the history of a view to Gemini and prints its
  commentary. Requires GEMINI_API_KEY; the model is NEXUS_GEMINI_MODEL.
`
}

func (c *insightCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.view, "view", "", "View to comment on (main, trading or all). Defaults to the active view.")
}

func (c *insightCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openSession()
	if err != nil {
		return fail("%v", err)
	}
	defer s.Close()

	v, err := s.view(c.view)
	if err != nil {
		return usage("%v", err)
	}
	sum, err := insight.New(ctx, s.cfg.GeminiAPIKey, s.cfg.GeminiModel, s.log)
	if err != nil {
		return fail("%v", err)
	}
	text, err := sum.Summarize(ctx, s.Stats(v), s.Entries(v))
	if err != nil {
		return fail("%v", err)
	}
	printMarkdown("# Insight: " + v.Label() + "\n\n" + text + "\n")
	return subcommands.ExitSuccess
}
