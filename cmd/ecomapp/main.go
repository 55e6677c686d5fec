package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"ecomapp/internal/config"
	"ecomapp/internal/http/handlers"
	"ecomapp/internal/notify"
	"ecomapp/internal/repos"
	"ecomapp/internal/services"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "ecomapp",
		Short:         "e-commerce backend: catalog, orders and stock reservation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		serveCommand(),
		migrateCommand(),
		createAdminCommand(),
		reportCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads config, tees the standard logger into the log file and opens
// (and migrates) the database.
func setup() (config.Config, *sqlx.DB, error) {
	cfg := config.Load()

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return cfg, nil, fmt.Errorf("open db: %w", err)
	}
	return cfg, db, nil
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := setup()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.SeedDemo {
				if err := repos.SeedDemo(ctx, db, cfg.BcryptCost); err != nil {
					return fmt.Errorf("seed: %w", err)
				}
			}

			var sender notify.Sender = notify.LogSender{}
			if len(cfg.KafkaBrokers) > 0 {
				ks, err := notify.NewKafkaSender(cfg.KafkaBrokers, cfg.KafkaTopic)
				if err != nil {
					return fmt.Errorf("kafka: %w", err)
				}
				defer ks.Close()
				sender = ks
				log.Printf("[notify] publishing to kafka topic %s", cfg.KafkaTopic)
			}
			dispatcher := notify.NewDispatcher(sender, cfg.NotifyTimeout)

			app := handlers.NewApp(handlers.NewDeps(db, cfg, dispatcher), false)

			errc := make(chan error, 1)
			go func() { errc <- app.Listen(":" + cfg.Port) }()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}
			log.Printf("[shutdown] draining requests")
			sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := app.ShutdownWithContext(sctx); err != nil {
				log.Printf("[warn] shutdown: %v", err)
			}
			dispatcher.Wait()
			return nil
		},
	}
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "apply pending schema migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// OpenDB migrates on connect.
			_, db, err := setup()
			if err != nil {
				return err
			}
			return db.Close()
		},
	}
}

func createAdminCommand() *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "create an active admin account, or promote an existing one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := setup()
			if err != nil {
				return err
			}
			defer db.Close()

			auth := services.NewAuthService(db, nil, nil, services.AuthConfig{BcryptCost: cfg.BcryptCost})
			u, err := auth.EnsureAdmin(cmd.Context(), email, password, name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin ready: %s (%s)\n", u.Email, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email (required)")
	cmd.Flags().StringVar(&password, "password", "", "password for a new account")
	cmd.Flags().StringVar(&name, "name", "Admin", "first name for a new account")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func reportCommand() *cobra.Command {
	var period string
	var limit int
	cmd := &cobra.Command{
		Use:       "report [sales|status|top]",
		Short:     "print a sales rollup",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"sales", "status", "top"},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := setup()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			reports := services.NewReportService(db)
			switch args[0] {
			case "sales":
				rows, err := reports.SalesByPeriod(ctx, period)
				if err != nil {
					return err
				}
				for _, r := range rows {
					fmt.Fprintf(out, "%-12s %6d %12s\n", r.Period, r.Orders, r.Revenue.StringFixed(2))
				}
			case "status":
				rows, err := reports.SalesByStatus(ctx)
				if err != nil {
					return err
				}
				for _, r := range rows {
					fmt.Fprintf(out, "%-12s %6d %12s\n", r.Status, r.Orders, r.Revenue.StringFixed(2))
				}
			case "top":
				rows, err := reports.TopProducts(ctx, limit)
				if err != nil {
					return err
				}
				for _, r := range rows {
					fmt.Fprintf(out, "%-36s %-30s %6d %12s\n", r.ProductID, r.Name, r.Units, r.Revenue.StringFixed(2))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&period, "period", "day", "sales bucket: day, week or month")
	cmd.Flags().IntVar(&limit, "limit", services.DefaultTopProducts, "rows for the top report")
	return cmd
}
