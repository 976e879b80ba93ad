// Package cli implements ledgerctl, which computes splits, balances and
// settlements for a group described in a YAML file.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fkhayef/splitledger/internal/expense/split"
	"github.com/fkhayef/splitledger/internal/ledger"
	"github.com/fkhayef/splitledger/internal/settlement"
	"github.com/fkhayef/splitledger/internal/validation"
	"github.com/fkhayef/splitledger/pkg/middleware"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "dev"

type options struct {
	file   string
	output string
}

// NewRootCommand builds the ledgerctl command tree
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Split shared expenses and plan who pays whom",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
		Example: `  ledgerctl balances -f trip.yaml
  ledgerctl settle -f trip.yaml -o json
  cat trip.yaml | ledgerctl split -f -`,
	}

	root.PersistentFlags().StringVarP(&opts.file, "file", "f", "group.yaml", `ledger file ("-" reads stdin)`)
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "output format: table or json")

	root.AddCommand(
		newBalancesCommand(opts),
		newSettleCommand(opts),
		newSplitCommand(opts),
		newTokenCommand(),
	)
	return root
}

// load reads and builds the ledger named by the --file flag
func (o *options) load(cmd *cobra.Command) (*Ledger, error) {
	file, err := LoadFile(o.file, cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	return file.Build(validation.New(), split.NewSplitStrategyFactory())
}

func (o *options) printer(cmd *cobra.Command) (*printer, error) {
	switch o.output {
	case formatTable, formatJSON:
		return &printer{w: cmd.OutOrStdout(), format: o.output}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", o.output)
	}
}

func newBalancesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "balances",
		Short: "Show what every member paid, owes and is owed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.printer(cmd)
			if err != nil {
				return err
			}
			l, err := opts.load(cmd)
			if err != nil {
				return err
			}

			balances, err := ledger.ComputeBalances(l.Members, l.Expenses)
			if err != nil {
				return err
			}
			return p.balances(balances, ledger.Summarize(l.Expenses))
		},
	}
}

func newSettleCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "settle",
		Short: "Plan the transfers that settle every balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.printer(cmd)
			if err != nil {
				return err
			}
			l, err := opts.load(cmd)
			if err != nil {
				return err
			}

			balances, err := ledger.ComputeBalances(l.Members, l.Expenses)
			if err != nil {
				return err
			}
			transfers, err := settlement.Plan(balances)
			if err != nil {
				return err
			}
			return p.transfers(transfers)
		},
	}
}

func newSplitCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "split",
		Short: "Show how each expense is divided",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.printer(cmd)
			if err != nil {
				return err
			}
			l, err := opts.load(cmd)
			if err != nil {
				return err
			}
			return p.splits(l.Expenses)
		},
	}
}

func newTokenCommand() *cobra.Command {
	var (
		user   string
		secret string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API bearer token for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("a signing secret is required (--secret or JWT_SECRET)")
			}
			token, err := middleware.NewAuthenticator(secret).Issue(user, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user id to put in the token subject")
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "HS256 signing secret")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	cmd.MarkFlagRequired("user")
	return cmd
}
