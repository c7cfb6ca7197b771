package cmd

import (
	"context"
	"flag"

	"github.com/etnz/nexus/docs"
	"github.com/google/subcommands"
)

type topicCmd struct{}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "show documentation" }
func (*topicCmd) Usage() string {
	return `nx topic [<topic>...]

  Shows documentation for the given topics, or the list of topics. "*" shows
  every topic.
`
}

func (*topicCmd) SetFlags(*flag.FlagSet) {}

func (*topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	topics := f.Args()
	if len(topics) == 0 {
		topics = []string{docs.Index}
	}
	doc, err := docs.Topics(topics...)
	if err != nil {
		return fail("%v", err)
	}
	printMarkdown(doc)
	return subcommands.ExitSuccess
}
