package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/nexus"
	"github.com/google/subcommands"
)

type viewCmd struct{}

func (*viewCmd) Name() string     { return "view" }
func (*viewCmd) Synopsis() string { return "show or change the active view" }
func (*viewCmd) Usage() string {
	return `nx view [main|trading|all]

  Without argument, prints the active view. With one, makes it the active
  view: reports default to it, and new transactions go to its book (to main
  when the view is all).
`
}

func (*viewCmd) SetFlags(*flag.FlagSet) {}

func (*viewCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		return usage("view expects at most one argument")
	}
	s, err := openSession()
	if err != nil {
		return fail("%v", err)
	}
	defer s.Close()

	if f.NArg() == 0 {
		v := s.Ledger.View()
		fmt.Fprintf(stdout, "%s (%s)\n", v, v.Label())
		return subcommands.ExitSuccess
	}
	v, err := nexus.ParseView(f.Arg(0))
	if err != nil {
		return usage("%v", err)
	}
	s.Ledger.SetView(v)
	if err := s.save(); err != nil {
		return fail("%v", err)
	}
	fmt.Fprintf(stdout, "%s (%s)\n", v, v.Label())
	return subcommands.ExitSuccess
}
