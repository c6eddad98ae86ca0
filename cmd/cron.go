package cmd

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"dappstore.GO/cron"
)

var jobName string

var cronStartCmd = &cobra.Command{
	Use:   "cron:start",
	Short: "Start the cron scheduler or run a single job by name",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		a.ReindexOnChange()
		jobs := cron.Builtin(a, a.Config.Cron)

		if jobName != "" {
			name := strings.ToLower(jobName)
			j, ok := cron.Lookup(jobs, name)
			if !ok {
				return fmt.Errorf("unknown job: %s (available: %s)", jobName, strings.Join(cron.Names(jobs), ", "))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Running cron job: %s\n", name)
			return cron.RunJob(ctx, a.Log, name, j.Run)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Starting cron scheduler...")
		c, err := cron.Start(ctx, jobs, a.Log)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Cron scheduler started. Press Ctrl+C to exit.")
		<-ctx.Done()
		<-c.Stop().Done()
		return nil
	},
}

func init() {
	cronStartCmd.Flags().StringVarP(&jobName, "job", "j", "", "Run a single cron job by name and exit")
	rootCmd.AddCommand(cronStartCmd)
}
