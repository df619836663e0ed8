package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aliskhannn/lwopan/internal/delivery/telegram"
	"github.com/aliskhannn/lwopan/internal/delivery/web"
	"github.com/aliskhannn/lwopan/internal/infra/postgres"
	pgrepo "github.com/aliskhannn/lwopan/internal/infra/postgres/repository"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "lwopan",
		Short:        "Answer lookup for happyread reading questions",
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd(), newQueryCmd(), newImportCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the search page and API, and the Telegram bot when a token is set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			return serve(cmd.Context(), a)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	handler := web.NewHandler(a.resolver, a.cfg.HTTP.StaticDir, a.metrics, a.registry, a.logger)
	srv := web.NewServer(a.cfg.HTTP.Addr(), handler.Router(), a.logger)

	if _, err := srv.Start(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	if a.cfg.TelegramAPIToken != "" {
		bot, err := tgbotapi.NewBotAPI(a.cfg.TelegramAPIToken)
		if err != nil {
			a.logger.Error("failed to connect to telegram, bot disabled", zap.Error(err))
		} else {
			if _, err := bot.Request(tgbotapi.NewSetMyCommands(telegram.Commands...)); err != nil {
				a.logger.Warn("failed to set bot commands", zap.Error(err))
			}
			a.logger.Info("authorized on telegram", zap.String("account", bot.Self.UserName))

			tg := telegram.NewHandler(bot, a.logger, a.resolver)
			g.Go(func() error {
				if err := tg.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
					return fmt.Errorf("telegram: %w", err)
				}
				return nil
			})
		}
	}

	<-gctx.Done()
	a.logger.Info("shutdown signal received")

	stopCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if _, err := srv.Stop(stopCtx); err != nil {
		a.logger.Error("failed to stop http server", zap.Error(err))
	}

	return g.Wait()
}

func newQueryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query [text]",
		Short: "Resolve one query and print the results as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			results := a.resolver.Resolve(cmd.Context(), strings.Join(args, " "))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Copy the CSV tables into PostgreSQL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			pool, err := a.openPool(cmd.Context())
			if err != nil {
				return err
			}

			importer := pgrepo.NewImporter(postgres.NewTransactor(pool), a.logger)
			stats, err := importer.Import(cmd.Context(), a.csvStore())
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d questions, %d collections, %d collection items\n",
				stats.Questions, stats.Collections, stats.Items)
			return err
		},
	}
}
