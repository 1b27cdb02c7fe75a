// Copyright 2026 Inkwell Documents
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	goredis "github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"

	"github.com/inkwelldocs/inkwell/ai"
	"github.com/inkwelldocs/inkwell/ai/openai"
	"github.com/inkwelldocs/inkwell/chunk"
	"github.com/inkwelldocs/inkwell/index"
	badgerindex "github.com/inkwelldocs/inkwell/index/badger"
	"github.com/inkwelldocs/inkwell/index/qdrant"
	"github.com/inkwelldocs/inkwell/ingest"
	"github.com/inkwelldocs/inkwell/intake"
	"github.com/inkwelldocs/inkwell/loader"
	"github.com/inkwelldocs/inkwell/query"
	"github.com/inkwelldocs/inkwell/queue"
	redisqueue "github.com/inkwelldocs/inkwell/queue/redis"
)

func main() {
	app := &cli.App{
		Name:  "inkwell",
		Usage: "Document ingestion and retrieval-augmented question answering",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP intake server, optionally with an embedded worker pool",
				Action: serveCommand,
				Flags: joinFlags(
					[]cli.Flag{
						&cli.StringFlag{
							Name:  "addr",
							Usage: "Listen address for the HTTP server",
							Value: ":8000",
						},
						&cli.StringFlag{
							Name:  "upload-dir",
							Usage: "Directory uploaded files are stored in",
							Value: intake.DefaultUploadDir,
						},
						&cli.BoolFlag{
							Name:  "with-worker",
							Usage: "Run an ingestion worker pool inside the server process",
							Value: true,
						},
					},
					queueFlags(), indexFlags(), aiFlags(), pipelineFlags(),
				),
			},
			{
				Name:   "worker",
				Usage:  "Run a standalone ingestion worker pool",
				Action: workerCommand,
				Flags:  joinFlags(queueFlags(), indexFlags(), aiFlags(), pipelineFlags()),
			},
			{
				Name:      "ask",
				Usage:     "Answer a single question against the indexed corpus",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: joinFlags(
					[]cli.Flag{
						&cli.IntFlag{
							Name:    "top-k",
							Aliases: []string{"k"},
							Usage:   "Number of records to retrieve for context",
							Value:   query.DefaultTopK,
						},
					},
					indexFlags(), aiFlags(),
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func queueFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "redis-addr",
			Usage: "Redis address for the job queue",
			Value: "localhost:6379",
		},
		&cli.StringFlag{
			Name:  "queue-namespace",
			Usage: "Key prefix isolating this deployment's queue",
			Value: "inkwell",
		},
		&cli.IntFlag{
			Name:  "max-attempts",
			Usage: "Delivery attempts before a job is dead-lettered",
			Value: 3,
		},
		&cli.DurationFlag{
			Name:  "visibility-timeout",
			Usage: "How long a claimed job stays invisible before redelivery",
			Value: 5 * time.Minute,
		},
	}
}

func indexFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "index",
			Usage: "Vector index backend (qdrant, badger)",
			Value: "qdrant",
		},
		&cli.StringFlag{
			Name:  "qdrant-url",
			Usage: "Qdrant base URL",
			Value: "http://localhost:6333",
		},
		&cli.StringFlag{
			Name:    "qdrant-api-key",
			Usage:   "Qdrant API key",
			EnvVars: []string{"QDRANT_API_KEY"},
		},
		&cli.StringFlag{
			Name:  "badger-path",
			Usage: "Path to the BadgerDB directory for the embedded index",
			Value: "inkwell-index",
		},
		&cli.StringFlag{
			Name:  "collection",
			Usage: "Vector collection documents are indexed into",
			Value: "langchainjs-testing",
		},
	}
}

func aiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "ai-host",
			Usage: "OpenAI-compatible API base URL",
			Value: "https://api.openai.com/v1",
		},
		&cli.StringFlag{
			Name:    "ai-api-key",
			Usage:   "API key for the AI provider",
			EnvVars: []string{"OPENAI_API_KEY"},
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "text-embedding-3-small",
		},
		&cli.StringFlag{
			Name:  "completion-model",
			Usage: "Completion model name",
			Value: "gpt-4.1",
		},
	}
}

func pipelineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "chunk-size",
			Usage: "Chunk window size in characters",
			Value: chunk.DefaultSize,
		},
		&cli.IntFlag{
			Name:  "chunk-overlap",
			Usage: "Overlap between adjacent chunks in characters",
			Value: chunk.DefaultOverlap,
		},
		&cli.IntFlag{
			Name:  "concurrency",
			Usage: "Number of ingestion workers",
			Value: ingest.DefaultConcurrency,
		},
	}
}

func joinFlags(groups ...[]cli.Flag) []cli.Flag {
	var flags []cli.Flag
	for _, group := range groups {
		flags = append(flags, group...)
	}
	return flags
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := buildProvider(c)
	if err != nil {
		return err
	}
	defer provider.Close()

	vectorIndex, err := buildIndex(c)
	if err != nil {
		return err
	}
	defer vectorIndex.Close()

	jobQueue, redisClient, err := buildQueue(c)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	defer jobQueue.Close()

	handler, err := query.NewHandler(provider, vectorIndex, c.String("collection"))
	if err != nil {
		return fmt.Errorf("failed to create query handler: %w", err)
	}

	server, err := intake.NewServer(jobQueue, handler, intake.WithUploadDir(c.String("upload-dir")))
	if err != nil {
		return fmt.Errorf("failed to create intake server: %w", err)
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	if c.Bool("with-worker") {
		pool, poolErr := buildPool(c, jobQueue, provider, vectorIndex)
		if poolErr != nil {
			return poolErr
		}
		defer pool.Release()

		wg.Add(1)
		go func() {
			defer wg.Done()
			if runErr := pool.Run(ctx); runErr != nil {
				errCh <- fmt.Errorf("worker pool: %w", runErr)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if runErr := server.Run(ctx, c.String("addr")); runErr != nil {
			errCh <- fmt.Errorf("intake server: %w", runErr)
		}
	}()

	wg.Wait()
	close(errCh)
	return <-errCh
}

func workerCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := buildProvider(c)
	if err != nil {
		return err
	}
	defer provider.Close()

	vectorIndex, err := buildIndex(c)
	if err != nil {
		return err
	}
	defer vectorIndex.Close()

	jobQueue, redisClient, err := buildQueue(c)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	defer jobQueue.Close()

	pool, err := buildPool(c, jobQueue, provider, vectorIndex)
	if err != nil {
		return err
	}
	defer pool.Release()

	return pool.Run(ctx)
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := buildProvider(c)
	if err != nil {
		return err
	}
	defer provider.Close()

	vectorIndex, err := buildIndex(c)
	if err != nil {
		return err
	}
	defer vectorIndex.Close()

	handler, err := query.NewHandler(provider, vectorIndex, c.String("collection"))
	if err != nil {
		return fmt.Errorf("failed to create query handler: %w", err)
	}

	answer, err := handler.Answer(ctx, question, c.Int("top-k"))
	if err != nil {
		return err
	}

	fmt.Println(answer.Text)
	if len(answer.Sources) > 0 {
		fmt.Fprintln(os.Stderr)
		for _, source := range answer.Sources {
			fmt.Fprintf(os.Stderr, "[%.3f] %s (page %d)\n",
				source.Score, source.Record.Metadata.Source, source.Record.Metadata.Page)
		}
	}
	return nil
}

func buildProvider(c *cli.Context) (ai.Provider, error) {
	config := ai.NewConfig(
		ai.WithHost(c.String("ai-host")),
		ai.WithAPIKey(c.String("ai-api-key")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithCompletionModel(c.String("completion-model")),
	)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	provider, err := openai.NewProvider(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI provider: %w", err)
	}
	return provider, nil
}

func buildIndex(c *cli.Context) (index.VectorIndex, error) {
	switch c.String("index") {
	case "qdrant":
		var opts []qdrant.Option
		if key := c.String("qdrant-api-key"); key != "" {
			opts = append(opts, qdrant.WithAPIKey(key))
		}
		idx, err := qdrant.New(c.String("qdrant-url"), opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create qdrant index: %w", err)
		}
		return idx, nil
	case "badger":
		idx, err := badgerindex.Open(c.String("badger-path"), false)
		if err != nil {
			return nil, fmt.Errorf("failed to open badger index: %w", err)
		}
		return idx, nil
	default:
		return nil, fmt.Errorf("unknown index backend %q: must be qdrant or badger", c.String("index"))
	}
}

// buildQueue returns the queue and the Redis client backing it; the
// client is owned by the caller and must outlive the queue.
func buildQueue(c *cli.Context) (queue.Queue, *goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{Addr: c.String("redis-addr")})

	q, err := redisqueue.New(client,
		redisqueue.WithNamespace(c.String("queue-namespace")),
		redisqueue.WithMaxAttempts(c.Int("max-attempts")),
		redisqueue.WithVisibilityTimeout(c.Duration("visibility-timeout")),
	)
	if err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to create job queue: %w", err)
	}
	return q, client, nil
}

func buildPool(c *cli.Context, q queue.Queue, provider ai.Provider, vectorIndex index.VectorIndex) (*ingest.Pool, error) {
	splitter, err := chunk.New(c.Int("chunk-size"), c.Int("chunk-overlap"))
	if err != nil {
		return nil, fmt.Errorf("invalid chunking configuration: %w", err)
	}

	pipeline, err := ingest.NewPipeline(
		loader.NewRegistry(),
		splitter,
		provider.Embedder(),
		vectorIndex,
		c.String("collection"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}

	pool, err := ingest.NewPool(q, pipeline, ingest.WithConcurrency(c.Int("concurrency")))
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	return pool, nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
