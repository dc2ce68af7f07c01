package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"babymind/internal/events"
	"babymind/internal/repository"
	"babymind/internal/rules"
	"babymind/internal/service"
)

// RunCmd returns the run command, which executes a scheduled job once
func RunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a scheduled job once",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "daily-tasks",
		Short: "Generate today's tasks for every baby",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			catalog, err := rules.Load(e.cfg.RulesPath)
			if err != nil {
				return err
			}
			entities := repository.NewEntityRepository(e.db)
			babies := service.NewBabyService(repository.NewBabyRepository(e.db))
			tracker := service.NewTracker(entities, nil, service.NewProgressCalculator(e.cfg.LevelThreshold), e.logger)
			tasks := service.NewTaskService(babies, tracker, service.NewDailyTaskGenerator(catalog), e.logger)

			n, err := tasks.GenerateForAll(time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s created %d tasks\n", ok("✓"), n)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reminders",
		Short: "Fire every due reminder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			bus := events.NewBus(e.logger)
			sub := bus.Subscribe(events.TopicReminderDue)
			defer sub.Close()

			entities := repository.NewEntityRepository(e.db)
			tracker := service.NewTracker(entities, bus, service.NewProgressCalculator(e.cfg.LevelThreshold), e.logger)
			n, err := service.NewReminderService(entities, tracker, bus, e.logger).DispatchDue(time.Now())
			if err != nil {
				return err
			}

			for i := 0; i < n && len(sub.C) > 0; i++ {
				event := <-sub.C
				var due events.ReminderDue
				if err := event.DataAs(&due); err == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s %s (%s)\n", warn("●"), due.Title, due.ScheduledAt.Format(time.Kitchen))
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s fired %d reminders\n", ok("✓"), n)
			return nil
		},
	})

	return cmd
}
