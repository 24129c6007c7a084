package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"storefront/internal/config"
	"storefront/internal/http/handlers"
	applog "storefront/internal/log"
	"storefront/internal/notify"
	"storefront/internal/payments"
	"storefront/internal/repos"
	"storefront/internal/services"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var cfgPath string
	load := func() (config.Config, error) { return config.Load(cfgPath) }

	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront API: catalog, cart, checkout and payment webhooks",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a YAML config file")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create the schema and load the demo catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if cfg.DB.Driver == "memory" {
				return errors.New("migrate needs a sqlite or postgres database")
			}
			db, err := repos.OpenDB(cfg.DB.Driver, cfg.DB.DSN, true)
			if err != nil {
				return err
			}
			defer db.Close()
			applog.Info(nil, "db.migrate", map[string]any{"driver": cfg.DB.Driver})
			return nil
		},
	})

	product := &cobra.Command{Use: "product", Short: "Catalog maintenance"}
	product.AddCommand(&cobra.Command{
		Use:   "set-price <slug> <price>",
		Short: "Change a product's catalog price",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("price %q: %w", args[1], err)
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			st, closer, err := openStores(cfg)
			if err != nil {
				return err
			}
			defer closer.Close()
			p, err := services.NewCatalogService(st.Products).SetPrice(cmd.Context(), args[0], price)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s now %s\n", p.Slug, p.Price.StringFixed(2))
			return nil
		},
	})
	root.AddCommand(product)
	return root
}

func openStores(cfg config.Config) (services.Stores, io.Closer, error) {
	if cfg.DB.Driver == "memory" {
		mem := repos.NewMemoryStore()
		if cfg.DB.Seed {
			repos.SeedMemory(mem)
		}
		return mem.Stores(), io.NopCloser(nil), nil
	}
	db, err := repos.OpenDB(cfg.DB.Driver, cfg.DB.DSN, cfg.DB.Seed)
	if err != nil {
		return services.Stores{}, nil, err
	}
	return repos.SQLStores(db), db, nil
}

func serve(ctx context.Context, cfg config.Config) error {
	if cfg.LogFile != "" {
		closer, err := applog.TeeFile(cfg.LogFile)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer closer.Close()
		}
	}

	st, closer, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	if cfg.Payments.SecretKey == "" || cfg.Payments.WebhookSecret == "" {
		log.Printf("[warn] payment keys not configured; intents and webhooks will fail")
	}
	gw := payments.NewStripeGateway(payments.StripeConfig{
		SecretKey:     cfg.Payments.SecretKey,
		WebhookSecret: cfg.Payments.WebhookSecret,
		Timeout:       cfg.Payments.Timeout,
	})

	tpl, err := notify.LoadTemplates()
	if err != nil {
		return fmt.Errorf("email templates: %w", err)
	}
	if cfg.Notify.SMTPHost == "" {
		log.Printf("[warn] SMTP_HOST not set; notifications are only logged")
	}
	dispatcher := notify.NewDispatcher(notify.NewMailer(cfg.Notify), cfg.Notify)
	notifier := notify.NewOrderNotifier(dispatcher, tpl, cfg.Notify)

	deps, err := handlers.NewDeps(st, gw, notifier, cfg)
	if err != nil {
		return err
	}
	app := handlers.NewApp(deps, handlers.DefaultAppOptions())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- app.Listen(":" + cfg.Port) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Printf("[shutdown] draining")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("[warn] http shutdown: %v", err)
	}
	drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := deps.Orders.Drain(drainCtx); err != nil {
		log.Printf("[warn] notifications still in flight: %v", err)
	}
	return nil
}
