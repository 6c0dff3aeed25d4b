package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fastygo/taskproof/internal/capture"
	"github.com/fastygo/taskproof/internal/config"
	"github.com/fastygo/taskproof/internal/detail"
	"github.com/fastygo/taskproof/internal/tui"
	"github.com/fastygo/taskproof/internal/tui/views"
	"github.com/fastygo/taskproof/pkg/logger"
	"github.com/fastygo/taskproof/repository/memory"
	captureUC "github.com/fastygo/taskproof/usecase/capture"
	feedUC "github.com/fastygo/taskproof/usecase/feed"
	taskUC "github.com/fastygo/taskproof/usecase/task"
)

var (
	tuiDemo bool
	tuiUser string
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the terminal client",
	Long: `Opens the story feed in the terminal.

With --demo (the default) the client runs on an in-memory world of three
friends with running and finished tasks. With --demo=false it works against
the configured Postgres and Redis as the user given by --user.

Logs go only to LOG_FILE so they do not disturb the screen.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().BoolVar(&tuiDemo, "demo", true, "Use in-memory demo data")
	tuiCmd.Flags().StringVar(&tuiUser, "user", memory.DemoViewer, "User id to act as")
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.NewFileOnly(loggerConfig(cfg))
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Context.RequestTimeout)
	defer cancel()

	var b *backend
	if tuiDemo {
		b, err = demoBackend(ctx, memory.DemoFixtures(time.Now()))
	} else {
		b, err = openBackend(ctx, cfg, log)
	}
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			log.Warn("close backend", zap.Error(err))
		}
	}()

	camera := capture.NewSimulated(capture.SimulatedConfig{
		Delay:   cfg.Capture.Delay,
		BaseURL: cfg.Capture.BaseURL,
	}, log)
	tasks := taskUC.New(b.Tasks, b.Users, nil, log)

	log.Info("terminal client started", zap.String("user_id", tuiUser), zap.Bool("demo", tuiDemo))
	return tui.Run(views.Deps{
		Viewer: tuiUser,
		Feed:   feedUC.New(b.Tasks, b.Users, b.Views, log),
		Tasks:  tasks,
		Camera: captureUC.New(camera, tasks, log),
		Detail: detail.Options{
			Interval: cfg.Detail.TickInterval,
			Radius:   cfg.Detail.Radius,
			Logger:   log,
		},
		Timeout: cfg.Context.RequestTimeout,
		Logger:  log,
	})
}
