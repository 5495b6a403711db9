package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lvu/firemerge/internal/config"
	"github.com/lvu/firemerge/internal/export"
	"github.com/lvu/firemerge/internal/firefly"
)

func newExportCommand() *cobra.Command {
	var (
		accountID int64
		startDate string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the bookkeeping CSV for an account to a file or stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			start, err := time.Parse("2006-01-02", startDate)
			if err != nil {
				return fmt.Errorf("invalid --start, expected YYYY-MM-DD: %w", err)
			}

			var out io.Writer = os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			return runExport(cmd, cfg, accountID, start, out)
		},
	}

	cmd.Flags().Int64Var(&accountID, "account", 0, "Firefly III account id")
	cmd.Flags().StringVar(&startDate, "start", "", "export transactions on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (defaults to stdout)")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("start")

	return cmd
}

func runExport(cmd *cobra.Command, cfg *config.Config, accountID int64, start time.Time, out io.Writer) error {
	ctx := cmd.Context()
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ledger := firefly.New(cfg.Firefly.BaseURL, cfg.Firefly.Token, firefly.WithLogger(log))

	accountSettings, err := ledger.AccountSettings(ctx, accountID)
	if err != nil {
		return err
	}
	if accountSettings == nil || accountSettings.ExportSettings == nil {
		return fmt.Errorf("account %d has no export settings", accountID)
	}

	accounts, err := ledger.Accounts(ctx)
	if err != nil {
		return err
	}
	currencies, err := ledger.Currencies(ctx)
	if err != nil {
		return err
	}
	transactions, err := ledger.Transactions(ctx, accountID, start)
	if err != nil {
		return err
	}

	lookups := export.Lookups{
		AccountNames:  make(map[int64]string, len(accounts)),
		CurrencyCodes: make(map[int64]string, len(currencies)),
	}
	for _, a := range accounts {
		lookups.AccountNames[a.ID] = a.Name
	}
	for _, c := range currencies {
		lookups.CurrencyCodes[c.ID] = c.Code
	}

	return export.WriteCSV(out, transactions, *accountSettings.ExportSettings, lookups)
}
