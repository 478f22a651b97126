package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"modeltrack/internal/config"
	"modeltrack/internal/gguf"
	"modeltrack/internal/httpapi"
	"modeltrack/internal/normalize"
	"modeltrack/internal/report"
	"modeltrack/internal/scraper"
	"modeltrack/internal/service"
	"modeltrack/internal/sources"
	"modeltrack/internal/store"
	"modeltrack/pkg/types"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:           "modeltrackd",
		Short:         "AI model metadata tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", os.Getenv("MODELTRACK_CONFIG"),
		"Path to config file (.yaml/.json/.toml)")
	root.AddCommand(serveCmd(&cfgPath), scrapeCmd(&cfgPath), reportCmd(&cfgPath))
	return root
}

func newLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// buildTracker wires store, extractor, connectors and orchestrator from the
// loaded configuration.
func buildTracker(cfg config.Config, log zerolog.Logger) (*store.Store, *scraper.Scraper, error) {
	st, err := store.Open(cfg.DatabasePath(), log)
	if err != nil {
		return nil, nil, err
	}

	ext := gguf.New(cfg.ExtractorPath, cfg.ExtractorTimeout(), log)
	inclChinese := cfg.IncludeChinese == nil || *cfg.IncludeChinese
	enricher := normalize.NewEnricher(ext, st, normalize.Options{
		VRAMLimitGB:    cfg.VRAMLimitGB,
		IncludeChinese: inclChinese,
	}, log)

	var srcs []sources.Source
	if cfg.SourceEnabled(string(types.SourceHuggingFace)) {
		srcs = append(srcs, sources.NewHuggingFace(cfg.MaxModelsPerSource, log))
	}
	if cfg.SourceEnabled(string(types.SourceModelScope)) {
		srcs = append(srcs, sources.NewModelScope(cfg.MaxModelsPerSource, log))
	}

	return st, scraper.New(st, srcs, enricher, log), nil
}

func serveCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the tracker daemon: periodic scraping plus the dashboard API",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			st, scr, err := buildTracker(cfg, log)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			svc := service.New(st, scr)
			svc.MarkReady()

			httpapi.SetLogger(log)
			httpapi.SetBaseContext(ctx)
			srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(svc)}

			go scr.RunEvery(ctx, cfg.ScrapeInterval())
			go func() {
				log.Info().Str("addr", cfg.Addr).Msg("modeltrackd listening")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("server error")
				}
			}()

			// Graceful shutdown (Ctrl+C / SIGTERM)
			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			<-stop
			cancel()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("graceful shutdown error")
			}
			return nil
		},
	}
}

func scrapeCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Run one discovery batch and print the summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			st, scr, err := buildTracker(cfg, log)
			if err != nil {
				return err
			}
			defer st.Close()

			sum, err := scr.Run(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(sum)
		},
	}
}

func reportCmd(cfgPath *string) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the weekly HTML digest of new models",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			st, err := store.Open(cfg.DatabasePath(), log)
			if err != nil {
				return err
			}
			defer st.Close()

			w := os.Stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return report.Generate(cmd.Context(), st, w)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the report to a file instead of stdout")
	return cmd
}
