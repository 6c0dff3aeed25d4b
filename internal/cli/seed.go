package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fastygo/taskproof/domain"
	"github.com/fastygo/taskproof/internal/config"
	"github.com/fastygo/taskproof/repository/memory"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo users and tasks into Postgres",
	Long: `Writes the demo world (three friends with running and finished tasks,
timed relative to now) into the configured database. Tasks that already
exist are left untouched, so the command can be re-run.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := consoleLogger(cfg)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.Close()

	created, err := seed(ctx, b, memory.DemoFixtures(time.Now()), log)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d tasks as viewer %s\n", created, memory.DemoViewer)
	return nil
}

// seed writes fixtures through the repositories and reports how many tasks were new.
func seed(ctx context.Context, b *backend, f memory.Fixtures, log *zap.Logger) (int, error) {
	for i := range f.Users {
		if err := b.Users.Upsert(ctx, &f.Users[i]); err != nil {
			return 0, fmt.Errorf("upsert user %s: %w", f.Users[i].ID, err)
		}
	}
	for _, pair := range f.Friends {
		if err := b.Users.AddFriend(ctx, pair[0], pair[1]); err != nil {
			return 0, fmt.Errorf("add friend %s-%s: %w", pair[0], pair[1], err)
		}
	}

	created := 0
	for i := range f.Tasks {
		task := f.Tasks[i]
		if _, err := b.Tasks.Create(ctx, &task); err != nil {
			if domain.IsDomainError(err, domain.ErrCodeConflict) {
				log.Debug("task already seeded", zap.String("task_id", task.ID))
				continue
			}
			return created, fmt.Errorf("create task %s: %w", task.ID, err)
		}
		created++
	}

	for viewer, ids := range f.Viewed {
		for _, id := range ids {
			if err := b.Views.MarkViewed(ctx, viewer, id); err != nil {
				log.Warn("mark viewed failed", zap.String("task_id", id), zap.Error(err))
			}
		}
	}
	return created, nil
}
