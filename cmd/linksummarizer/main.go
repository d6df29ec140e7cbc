package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bhardwajRahul/telegram-link-summarizer-agent/config"
	"github.com/bhardwajRahul/telegram-link-summarizer-agent/internal/bot"
	srv "github.com/bhardwajRahul/telegram-link-summarizer-agent/internal/server"
	"github.com/bhardwajRahul/telegram-link-summarizer-agent/internal/telemetry"
)

func main() {
	var root = &cobra.Command{Use: "linksummarizer"}

	root.AddCommand(serveCMD(), summarizeCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCMD() *cobra.Command {
	var cfgPath string
	var serveAddr string
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot and HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			if err := cfg.Telegram.Validate(); err != nil {
				return err
			}
			if serveAddr == "" {
				serveAddr = cfg.Server.Address
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			metrics := telemetry.New()
			orch, err := buildOrchestrator(ctx, cfg, metrics)
			if err != nil {
				return err
			}

			tgBot, err := bot.New(cfg.Telegram, orch, nil)
			if err != nil {
				return err
			}

			httpServer := srv.New(orch, metrics, nil)

			errCh := make(chan error, 2)
			go func() {
				if err := httpServer.Start(serveAddr); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()
			go func() {
				if err := tgBot.Run(ctx); err != nil && err != context.Canceled {
					errCh <- err
				}
			}()

			select {
			case <-ctx.Done():
				log.Println("shutting down")
			case err := <-errCh:
				return err
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		},
	}
	serve.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serve.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return serve
}

func summarizeCMD() *cobra.Command {
	var cfgPath string
	var screenshotPath string
	var summarize = &cobra.Command{
		Use:   "summarize <message>",
		Short: "Run one message through the pipeline and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			orch, err := buildOrchestrator(ctx, cfg, nil)
			if err != nil {
				return err
			}

			resp, runErr := orch.Run(ctx, strings.Join(args, " "))
			if resp.Text != "" {
				fmt.Println(resp.Text)
			}
			if len(resp.Screenshot) > 0 {
				if screenshotPath != "" {
					if err := os.WriteFile(screenshotPath, resp.Screenshot, 0o644); err != nil {
						return err
					}
					fmt.Fprintf(os.Stderr, "screenshot written to %s\n", screenshotPath)
				} else {
					fmt.Fprintf(os.Stderr, "screenshot captured (%d bytes, base64 below)\n", len(resp.Screenshot))
					fmt.Println(base64.StdEncoding.EncodeToString(resp.Screenshot))
				}
			}
			return runErr
		},
	}
	summarize.Flags().StringVar(&screenshotPath, "screenshot", "", "write a captured screenshot to this file")
	summarize.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return summarize
}
