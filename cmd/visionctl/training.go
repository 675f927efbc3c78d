package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/samvad-hq/vision-client/internal/app"
	"github.com/samvad-hq/vision-client/internal/storage"
	"github.com/samvad-hq/vision-client/pkg/apiclient"
)

func trainingCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "training",
		Short: "Start and follow model training",
		Long: `Start training runs and follow their progress.

Examples:
  visionctl training start --config train.yaml
  visionctl training watch train_1718000000
  visionctl training history`,
	}
	cmd.AddCommand(
		trainingStartCmd(e),
		trainingStatusCmd(e),
		trainingTasksCmd(e),
		trainingWatchCmd(e),
		trainingHistoryCmd(e),
	)
	return cmd
}

func trainingStartCmd(e *env) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Submit a training run described by a YAML or JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadTrainingConfig(configPath)
			if err != nil {
				return err
			}

			resp, err := e.client.StartTraining(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			var started apiclient.TrainingStarted
			if resp.OK() && resp.Decode(&started) == nil && started.TaskID != "" {
				if err := e.recordSubmission(started.TaskID, cfg.ProjectName); err != nil {
					e.log.WarnObj("journal write failed", "journal_error", map[string]any{
						"task_id": started.TaskID,
						"error":   err.Error(),
					})
				}
			}
			return e.printResponse(resp)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Training config file (.yaml, .yml or .json)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

// recordSubmission journals a freshly submitted task.
func (e *env) recordSubmission(taskID, projectName string) error {
	store, err := e.journal()
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	return store.PutTask(storage.TaskRecord{
		TaskID:      taskID,
		ProjectName: projectName,
		Status:      apiclient.TaskPending,
		SubmittedAt: now,
		UpdatedAt:   now,
	})
}

func trainingStatusCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "status TASK_ID",
		Short: "Show the state of one training task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := e.client.GetTrainingStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return e.printResponse(resp)
		},
	}
}

func trainingTasksCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List training tasks known to the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := e.client.ListTrainingTasks(cmd.Context())
			if err != nil {
				return err
			}
			return e.printResponse(resp)
		},
	}
}

func trainingWatchCmd(e *env) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch TASK_ID...",
		Short: "Poll tasks until they finish and notify configured sinks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := e.journal()
			if err != nil {
				return err
			}
			fanout, err := e.fanout(cmd.Context())
			if err != nil {
				return err
			}
			defer fanout.Close()

			if !cmd.Flags().Changed("interval") {
				interval = e.cfg.WatchInterval
			}

			w, err := app.NewWatcher(e.client, store, fanout, interval, e.log,
				app.WithObserver(func(st apiclient.TrainingStatus) {
					fmt.Fprintf(e.out, "%s %s %s %.1f%% (epoch %d/%d)\n",
						time.Now().Format("15:04:05"), st.TaskID, statusLabel(st.Status),
						st.Progress, st.CurrentEpoch, st.TotalEpochs)
				}))
			if err != nil {
				return err
			}
			return w.Run(cmd.Context(), args)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "Poll interval (defaults to WATCH_INTERVAL_SECONDS)")
	return cmd
}

func trainingHistoryCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List training tasks recorded in the local journal",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			store, err := e.journal()
			if err != nil {
				return err
			}
			tasks, err := store.Tasks()
			if err != nil {
				return fmt.Errorf("read journal: %w", err)
			}
			if tasks == nil {
				tasks = []storage.TaskRecord{}
			}
			return printJSON(e.out, tasks)
		},
	}
}

func statusLabel(status string) string {
	switch status {
	case apiclient.TaskCompleted:
		return color.GreenString(status)
	case apiclient.TaskFailed:
		return color.RedString(status)
	case apiclient.TaskRunning:
		return color.CyanString(status)
	default:
		return color.YellowString(status)
	}
}
