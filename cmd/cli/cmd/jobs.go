package cmd

import (
	"strconv"

	"dataforge/pkg/api"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage scheduled jobs",
}

var jobsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Schedule a new job",
	Long: `Schedule a new job that runs on a fixed frequency.

Valid frequencies: once, hourly, daily, weekly, monthly.

Example:
  dfctl jobs create --source <source-id> --frequency daily
  dfctl jobs create --source <source-id> --frequency weekly --transformation <transformation-id>`,
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		sourceID, _ := flags.GetString("source")
		frequency, _ := flags.GetString("frequency")
		transformationID, _ := flags.GetString("transformation")

		url := viper.GetString("url")
		token := viper.GetString("token")

		if token == "" {
			cmd.Println("API token not found. Please set it using the --token flag or the DATAFORGE_TOKEN environment variable")
			return
		}

		if sourceID == "" {
			cmd.Println("Error: --source is required")
			return
		}

		if frequency == "" {
			cmd.Println("Error: --frequency is required")
			return
		}

		req := api.CreateJobRequest{
			SourceID:  sourceID,
			Frequency: frequency,
		}
		if transformationID != "" {
			req.TransformationID = &transformationID
		}

		client := NewAPIClient(url, token)
		result, err := client.CreateJob(req)
		if err != nil {
			printClientError(cmd, err)
			return
		}

		cmd.Printf("✓ Job scheduled!\nID: %s\nFrequency: %s\nSchedule: %s\n", result.ID, result.Frequency, result.Schedule)
	},
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled jobs",
	Run: func(cmd *cobra.Command, args []string) {
		url := viper.GetString("url")
		token := viper.GetString("token")

		if token == "" {
			cmd.Println("API token not found. Please set it using the --token flag or the DATAFORGE_TOKEN environment variable")
			return
		}

		includeDeleted, _ := cmd.Flags().GetBool("deleted")

		client := NewAPIClient(url, token)
		jobs, err := client.ListJobs(includeDeleted)
		if err != nil {
			printClientError(cmd, err)
			return
		}

		if len(jobs) == 0 {
			cmd.Println("No jobs found")
			return
		}

		for _, j := range jobs {
			next := "-"
			if j.NextRun != nil {
				next = j.NextRun.Format("2006-01-02 15:04")
			}
			cmd.Printf("%s  %-8s next: %-16s %s\n", j.ID, j.Frequency, next, colorizeStatus(j.Status))
		}
	},
}

var jobsToggleCmd = &cobra.Command{
	Use:   "toggle [job_id]",
	Short: "Pause or resume a job",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		url := viper.GetString("url")
		token := viper.GetString("token")

		if token == "" {
			cmd.Println("API token not found. Please set it using the --token flag or the DATAFORGE_TOKEN environment variable")
			return
		}

		client := NewAPIClient(url, token)
		job, err := client.ToggleJob(args[0])
		if err != nil {
			printClientError(cmd, err)
			return
		}

		cmd.Printf("✓ Job is now %s\n", job.Status)
	},
}

var jobsTriggerCmd = &cobra.Command{
	Use:   "trigger [job_id]",
	Short: "Start a run of an active job now",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		url := viper.GetString("url")
		token := viper.GetString("token")

		if token == "" {
			cmd.Println("API token not found. Please set it using the --token flag or the DATAFORGE_TOKEN environment variable")
			return
		}

		client := NewAPIClient(url, token)
		run, err := client.TriggerJob(args[0])
		if err != nil {
			printClientError(cmd, err)
			return
		}

		cmd.Printf("✓ Run started!\nRun ID: %s\n", run.ID)
	},
}

var jobsRunsCmd = &cobra.Command{
	Use:   "runs [job_id]",
	Short: "List recent runs of a job",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		url := viper.GetString("url")
		token := viper.GetString("token")

		if token == "" {
			cmd.Println("API token not found. Please set it using the --token flag or the DATAFORGE_TOKEN environment variable")
			return
		}

		limit, _ := cmd.Flags().GetInt("limit")

		client := NewAPIClient(url, token)
		runs, err := client.ListJobRuns(args[0], limit)
		if err != nil {
			printClientError(cmd, err)
			return
		}

		if len(runs) == 0 {
			cmd.Println("No runs found")
			return
		}

		for _, r := range runs {
			rows := "-"
			if r.RowsProcessed != nil {
				rows = strconv.FormatInt(*r.RowsProcessed, 10)
			}
			cmd.Printf("%s  started %s  rows: %-8s %s\n",
				r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), rows, colorizeStatus(r.Status))
		}
	},
}

func init() {
	createFlags := jobsCreateCmd.Flags()
	createFlags.StringP("source", "s", "", "Source ID to extract from (required)")
	createFlags.StringP("frequency", "f", "", "Run frequency: once, hourly, daily, weekly, monthly (required)")
	createFlags.String("transformation", "", "Transformation ID to apply (optional)")

	jobsListCmd.Flags().Bool("deleted", false, "Show soft-deleted jobs instead of live ones")
	jobsRunsCmd.Flags().Int("limit", 20, "Maximum number of runs to show")

	jobsCmd.AddCommand(jobsCreateCmd)
	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsToggleCmd)
	jobsCmd.AddCommand(jobsTriggerCmd)
	jobsCmd.AddCommand(jobsRunsCmd)
	rootCmd.AddCommand(jobsCmd)
}
