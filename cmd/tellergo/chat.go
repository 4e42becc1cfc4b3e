package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/peterh/liner"
	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/tellergo-dev/tellergo/agent"
	"github.com/tellergo-dev/tellergo/agents"
	"github.com/tellergo-dev/tellergo/internal/maintenance"
	"github.com/tellergo-dev/tellergo/internal/observability"
	"github.com/tellergo-dev/tellergo/internal/prompts"
	"github.com/tellergo-dev/tellergo/internal/router"
	"github.com/tellergo-dev/tellergo/pkg/config"
	"github.com/tellergo-dev/tellergo/pkg/mcp"
	metrics "github.com/tellergo-dev/tellergo/pkg/observability"
	"github.com/tellergo-dev/tellergo/pkg/security"
	"github.com/tellergo-dev/tellergo/pkg/session"
	"github.com/tellergo-dev/tellergo/pkg/tools"
)

var (
	promptDir string
	threadID  string
	liteTools bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive banking conversation",
	Long: `Chat starts a local REPL against the agent team. The coordinator
routes each message to the right specialist; type "exit" to quit.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&promptDir, "prompt-dir", "", "directory with per-agent prompt overrides")
	chatCmd.Flags().StringVar(&threadID, "thread", "", "thread id to resume (default: new thread)")
	chatCmd.Flags().BoolVar(&liteTools, "lite", false, "use the read-only tool backend")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.OpenAIKey == "" {
		return fmt.Errorf("no OpenAI API key: set openai_key in the config or OPENAI_API_KEY")
	}

	if cfg.Runtime.EnableTracing {
		exporter := "stdout"
		if cfg.Runtime.OTLPEndpoint != "" {
			exporter = "otlp"
		}
		err := observability.Init(observability.Config{
			Enabled:      true,
			ExporterType: exporter,
			OTLPEndpoint: cfg.Runtime.OTLPEndpoint,
		})
		if err != nil {
			log.Printf("tracing disabled: %v", err)
		} else {
			defer observability.Shutdown(context.Background())
		}
	}

	sessions, err := buildSessionStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	defer sessions.Close()

	checkpoints, err := buildCheckpointStore(cfg)
	if err != nil {
		return fmt.Errorf("checkpoint store: %w", err)
	}
	defer checkpoints.Close()

	catalog := newCatalog(liteTools)
	if err := catalog.Bootstrap(ctx); err != nil {
		return fmt.Errorf("tool catalog: %w", err)
	}
	defer catalog.Close()

	toolset, err := catalog.Tools(ctx)
	if err != nil {
		return fmt.Errorf("tool catalog: %w", err)
	}

	if cfg.Runtime.EnableMetrics {
		metrics.InitMetrics()
		hc := metrics.GetHealthChecker()
		hc.RegisterCheck(metrics.SessionStoreCheck(func(ctx context.Context) error {
			_, err := sessions.Read(ctx, agent.ThreadID{Tenant: "health", User: "health", Thread: "probe"})
			if errors.Is(err, session.ErrNotFound) {
				return nil
			}
			return err
		}))
		hc.RegisterCheck(metrics.ToolCatalogCheck(func(ctx context.Context) error {
			_, err := catalog.Tools(ctx)
			return err
		}))
		srv := metrics.NewServer(cfg.Runtime.MetricsAddr)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("metrics server: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
	}

	var caller agents.Caller = catalog
	if cfg.Tools.PerToolRate > 0 {
		tl := security.NewToolLimiter()
		for _, tool := range toolset {
			tl.SetLimit(tool.Name, cfg.Tools.PerToolRate, cfg.Tools.PerToolBurst)
		}
		caller = &limitedCaller{inner: catalog, limiter: tl}
	}

	team := agents.All(agents.Deps{
		Client:   openai.NewClient(cfg.OpenAIKey),
		Caller:   caller,
		Tools:    toolset,
		Prompts:  prompts.NewLibrary(promptDir),
		Sessions: sessions,
		Model: agents.ModelConfig{
			Model:         cfg.DefaultModel,
			MaxTokens:     cfg.MaxTokens,
			Temperature:   float32(cfg.Temperature),
			MaxToolRounds: cfg.MaxToolTurns,
		},
	})

	rt, err := router.New(router.Config{
		Sessions:    sessions,
		Checkpoints: checkpoints,
		Agents:      team,
		Limiter:     security.NewTurnLimiter(cfg.Runtime.TurnsPerSecond, cfg.Runtime.TurnBurst),
		Interactive: true,
	})
	if err != nil {
		return err
	}

	sweeper, err := maintenance.NewSweeper(sessions, cfg.Maintenance.SweepSchedule, cfg.Maintenance.SessionMaxAge.Std())
	if err != nil {
		return err
	}
	sweeper.Start()
	defer sweeper.Stop()

	thread := agent.ThreadID{Tenant: cfg.TenantID, User: cfg.UserID, Thread: threadID}
	if thread.Thread == "" {
		thread.Thread = uuid.New().String()
	}
	fmt.Printf("Thread %s. Type \"exit\" to quit.\n", thread.Thread)

	return repl(ctx, rt, thread)
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if cfgFile != "" {
		loaded, err := config.LoadConfig(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newCatalog(lite bool) *mcp.Catalog {
	primary := func(ctx context.Context) (mcp.Provider, error) {
		return tools.NewBankingServer(tools.NewLedger())
	}
	fallback := func(ctx context.Context) (mcp.Provider, error) {
		return tools.NewLiteBankingServer()
	}
	if lite {
		return mcp.NewCatalog(fallback, fallback)
	}
	return mcp.NewCatalog(primary, fallback)
}

func repl(ctx context.Context, rt *router.Router, thread agent.ThreadID) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	for {
		if ctx.Err() != nil {
			return nil
		}

		input, err := line.Prompt("You: ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			fmt.Println()
			return nil
		}
		if err != nil {
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == "exit" {
			return nil
		}
		line.AppendHistory(input)

		res, err := rt.Turn(ctx, thread, input)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("turn failed: %v", err)
			continue
		}
		fmt.Printf("%s: %s\n", res.Agent, res.Reply)
	}
}

// limitedCaller throttles tool execution on top of the catalog.
type limitedCaller struct {
	inner   agents.Caller
	limiter *security.ToolLimiter
}

func (c *limitedCaller) CallTool(ctx context.Context, name string, args mcp.Args) (any, error) {
	if err := c.limiter.Wait(ctx, name); err != nil {
		return nil, err
	}
	return c.inner.CallTool(ctx, name, args)
}
