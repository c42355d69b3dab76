package terminal

import (
	"io"
	"os"

	"github.com/civic-tools/civiceye/pkg/runtime/terminal/commands"
	"github.com/civic-tools/civiceye/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	lister   commands.Lister
	factory  commands.SubmitterFactory
	reporter *export.Reporter
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Lister  commands.Lister
	Factory commands.SubmitterFactory
	Output  io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		lister:   opts.Lister,
		factory:  opts.Factory,
		reporter: export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "civiceye",
		Short: "Civic issue reporting tool",
	}

	cmd.AddCommand(commands.NewReportsCmd(cli.lister, cli.reporter))
	cmd.AddCommand(commands.NewSubmitCmd(cli.factory))

	return cmd
}
