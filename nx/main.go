// Command nx tracks the acquisitions and disposals of a single asset and
// reports their weighted average cost, realized profit and monthly spending.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/nexus"
	"github.com/etnz/nexus/cmd"
	"github.com/etnz/nexus/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	name := path.Base(os.Args[0])
	completion(name).Complete(name)

	commander := subcommands.NewCommander(flag.CommandLine, name)
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// completion describes the command line for shell completion. It is a no-op
// unless the shell asks for completions.
func completion(name string) *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: predictFlags(flag.CommandLine),
	}
	for _, c := range cmd.Commands {
		fs := flag.NewFlagSet(c.Command.Name(), flag.ContinueOnError)
		c.Command.SetFlags(fs)
		sub := &complete.Command{Flags: predictFlags(fs)}
		switch c.Command.Name() {
		case "view":
			sub.Args = viewSet()
		case "preview":
			sub.Args = predict.Set{"acquire", "dispose"}
		case "import":
			sub.Args = predict.Files("*.json")
		case "topic":
			sub.Args = predict.Set(docs.All())
		}
		root.Sub[c.Command.Name()] = sub
	}
	for _, c := range []string{"help", "flags", "commands"} {
		root.Sub[c] = &complete.Command{}
	}
	return root
}

func viewSet() predict.Set {
	var s predict.Set
	for _, v := range nexus.Views() {
		s = append(s, v.String())
	}
	return s
}

// predictFlags predicts the values of the flags of fs from their names.
func predictFlags(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			flags[f.Name] = predict.Nothing
			return
		}
		switch f.Name {
		case "p":
			var s predict.Set
			for _, p := range nexus.Portfolios() {
				s = append(s, p.String())
			}
			flags[f.Name] = s
		case "view":
			flags[f.Name] = viewSet()
		case "sort":
			var s predict.Set
			for _, k := range nexus.SortKeys() {
				s = append(s, string(k))
			}
			flags[f.Name] = s
		case "ledger-file":
			flags[f.Name] = predict.Files("*")
		case "o":
			flags[f.Name] = predict.Files("*.csv")
		default:
			flags[f.Name] = predict.Something
		}
	})
	return flags
}
