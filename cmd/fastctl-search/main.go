package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/ppetroskevicius/fastctl-search/internal/app"
	"github.com/ppetroskevicius/fastctl-search/internal/config"
	"github.com/ppetroskevicius/fastctl-search/internal/ingest"
	logpkg "github.com/ppetroskevicius/fastctl-search/internal/logger"
	"github.com/ppetroskevicius/fastctl-search/internal/metrics"
	chiTransport "github.com/ppetroskevicius/fastctl-search/internal/transport/chi"
	"github.com/ppetroskevicius/fastctl-search/internal/version"
)

func main() {
	// Secrets come from .env in local development; missing file is fine.
	_ = godotenv.Load()

	cliApp := &cli.App{
		Name:    "fastctl-search",
		Usage:   "Hybrid semantic + filtered search over a rental listing catalog",
		Version: version.String(),
		Commands: []*cli.Command{
			searchCommand(),
			indexCommand(),
			collectionsCommand(),
			serveCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads config, builds the logger and wires the application graph.
func setup() (*app.App, error) {
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	metrics.Register()

	a, err := app.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("wire application: %w", err)
	}
	return a, nil
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Run one free-text search against the indexed catalog",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of results",
				Value:   10,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print results as JSON instead of text",
			},
		},
		Action: func(c *cli.Context) error {
			query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if query == "" {
				return fmt.Errorf("query argument is required")
			}

			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()
			defer func() { _ = a.Logger.Sync() }()

			results, err := a.Search.Search(c.Context, query, c.Int("limit"))
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			if c.Bool("json") {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}

			if len(results) == 0 {
				fmt.Println("No listings matched.")
				return nil
			}
			for i, r := range results {
				fmt.Printf("%2d. [%.4f] %s\n", i+1, r.Score, r.Name)
				fmt.Printf("    %s\n", r.AddressFull)
				fmt.Printf("    ¥%d/month, %.1f m2, built %d\n", r.MonthlyTotal, r.AreaM2, r.YearBuilt)
				for _, s := range r.Stations {
					fmt.Printf("    %s station, %d min walk\n", s.Name, s.WalkTimeMin)
				}
			}
			return nil
		},
	}
}

func indexCommand() *cli.Command {
	return &cli.Command{
		Name:      "index",
		Usage:     "Embed and index a catalog export file",
		ArgsUsage: "<catalog.json>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent embedding workers (0: config default)",
			},
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Listings per upsert batch (0: config default)",
			},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return fmt.Errorf("catalog file argument is required")
			}

			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()
			defer func() { _ = a.Logger.Sync() }()

			records, err := ingest.Load(path)
			if err != nil {
				return err
			}
			a.Logger.Info("loaded catalog",
				zap.String("path", path),
				zap.Int("records", len(records)),
			)

			workers := c.Int("workers")
			if workers <= 0 {
				workers = a.Config.Ingest.Workers
			}
			batchSize := c.Int("batch-size")
			if batchSize <= 0 {
				batchSize = a.Config.Ingest.BatchSize
			}

			pipeline, err := ingest.NewPipeline(&ingest.PipelineConfig{
				Store:      a.Catalog,
				Embedder:   a.Embedder,
				Workers:    workers,
				BatchSize:  batchSize,
				Dimensions: a.Config.OpenAI.EmbeddingDimensions,
				Logger:     a.Logger,
			})
			if err != nil {
				return err
			}
			defer pipeline.Release()

			start := time.Now()
			stats, err := pipeline.Run(c.Context, records)
			if err != nil {
				return fmt.Errorf("ingestion: %w", err)
			}

			fmt.Printf("Indexed %d listings (%d failed) in %s\n",
				stats.Indexed, stats.Failed, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
}

func collectionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "collections",
		Usage: "Inspect and maintain vector store collections",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List collections with point counts",
				Action: func(c *cli.Context) error {
					a, err := setup()
					if err != nil {
						return err
					}
					defer a.Close()

					infos, err := a.Catalog.Collections(c.Context)
					if err != nil {
						return err
					}
					for _, info := range infos {
						fmt.Printf("%-30s %d points\n", info.Name, info.Points)
					}
					return nil
				},
			},
			{
				Name:      "wipe",
				Usage:     "Delete every point in a collection",
				ArgsUsage: "<collection>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip confirmation"},
				},
				Action: func(c *cli.Context) error {
					name := c.Args().First()
					if name == "" {
						return fmt.Errorf("collection argument is required")
					}
					if !c.Bool("yes") && !confirm(os.Stdin, fmt.Sprintf("Wipe all points in %q?", name)) {
						fmt.Println("Aborted.")
						return nil
					}

					a, err := setup()
					if err != nil {
						return err
					}
					defer a.Close()

					if err := a.Catalog.Wipe(c.Context, name); err != nil {
						return err
					}
					fmt.Printf("Wiped %s\n", name)
					return nil
				},
			},
			{
				Name:      "delete-ids",
				Usage:     "Delete listings by catalog id",
				ArgsUsage: "<collection> <id>...",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip confirmation"},
				},
				Action: func(c *cli.Context) error {
					name := c.Args().First()
					ids := c.Args().Tail()
					if name == "" || len(ids) == 0 {
						return fmt.Errorf("collection and at least one id are required")
					}
					if !c.Bool("yes") && !confirm(os.Stdin, fmt.Sprintf("Delete %d listings from %q?", len(ids), name)) {
						fmt.Println("Aborted.")
						return nil
					}

					a, err := setup()
					if err != nil {
						return err
					}
					defer a.Close()

					if err := a.Catalog.DeleteIDs(c.Context, name, ids); err != nil {
						return err
					}
					fmt.Printf("Deleted %d listings from %s\n", len(ids), name)
					return nil
				},
			},
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the search API over HTTP",
		Action: func(c *cli.Context) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()
			defer func() { _ = a.Logger.Sync() }()

			server := chiTransport.NewServer(&chiTransport.ServerConfig{
				Search: a.Search,
				Checks: map[string]chiTransport.Pinger{
					"qdrant": a.Catalog,
					"openai": a.Provider,
				},
				DefaultLimit: a.Config.Search.DefaultLimit,
				MaxLimit:     a.Config.Search.MaxLimit,
				Logger:       a.Logger,
			})

			httpServer := &http.Server{
				Addr:         fmt.Sprintf(":%d", a.Config.HTTP.Port),
				Handler:      server.Router(a.Config.Auth.APIKeys),
				ReadTimeout:  time.Duration(a.Config.HTTP.ReadTimeoutSec) * time.Second,
				WriteTimeout: time.Duration(a.Config.HTTP.WriteTimeoutSec) * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.Logger.Info("starting HTTP server",
					zap.String("version", version.Version),
					zap.String("commit", version.Commit),
					zap.Int("port", a.Config.HTTP.Port),
				)
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return fmt.Errorf("http server: %w", err)
			case sig := <-stop:
				a.Logger.Info("shutting down", zap.String("signal", sig.String()))
			}

			ctx, cancel := context.WithTimeout(
				context.Background(),
				time.Duration(a.Config.HTTP.ShutdownSec)*time.Second,
			)
			defer cancel()
			if err := httpServer.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			a.Logger.Info("server stopped")
			return nil
		},
	}
}

func confirm(in io.Reader, prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
