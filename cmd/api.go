package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/mppise/eaappreciate/internal/accomplishments"
	"github.com/mppise/eaappreciate/internal/api"
	"github.com/mppise/eaappreciate/internal/config"
	"github.com/mppise/eaappreciate/internal/database"
	"github.com/mppise/eaappreciate/internal/jobqueue"
	"github.com/mppise/eaappreciate/internal/llm"
	"github.com/mppise/eaappreciate/internal/orchestrator"
	"github.com/mppise/eaappreciate/internal/prompts"
	"github.com/mppise/eaappreciate/internal/submission"
)

// APICommand returns the api command
func APICommand() *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Start the API server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "no-queue",
				Usage: "Generate share posts inline instead of via the job queue",
			},
		},
		Action: runAPI,
	}
}

func runAPI(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	port := cfg.General.Port
	if c.Int("port") != 0 {
		port = c.Int("port")
	}

	ctx := context.Background()

	db, err := database.NewDB(cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	store := accomplishments.NewStorage(db)
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	registry := prompts.NewRegistry(prompts.DefaultTemplates())
	if cfg.Prompts.TemplatesFile != "" {
		registry, err = prompts.LoadFile(cfg.Prompts.TemplatesFile)
		if err != nil {
			return fmt.Errorf("failed to load prompt templates: %w", err)
		}
	}

	client, err := llm.NewClientFromConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create AI client: %w", err)
	}

	orch := orchestrator.New(registry, client)
	manager := submission.NewManager(orch, store)

	var queue *jobqueue.JobQueue
	var poster api.SharePoster
	if !c.Bool("no-queue") {
		queue, err = jobqueue.NewJobQueue(cfg.Database.URL, orch, store)
		if err != nil {
			return fmt.Errorf("failed to create job queue: %w", err)
		}
		if err := queue.Start(ctx); err != nil {
			return fmt.Errorf("failed to start job queue: %w", err)
		}
		defer queue.Stop(ctx)
		poster = queue
	}

	log.Info().
		Int("port", port).
		Str("ai_provider", cfg.AI.Provider).
		Bool("job_queue", queue != nil).
		Msg("Starting API server")

	server := api.NewServer(port, cfg.General.JWTSecret, manager, store, poster, orch)
	return server.Start()
}
