package cmd

import (
	"fmt"
	"time"

	"dataforge/pkg/api"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "Inspect and run datasets",
}

var datasetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List datasets",
	Run: func(cmd *cobra.Command, args []string) {
		url := viper.GetString("url")
		token := viper.GetString("token")

		if token == "" {
			cmd.Println("API token not found. Please set it using the --token flag or the DATAFORGE_TOKEN environment variable")
			return
		}

		includeDeleted, _ := cmd.Flags().GetBool("deleted")

		client := NewAPIClient(url, token)
		datasets, err := client.ListDatasets(includeDeleted)
		if err != nil {
			printClientError(cmd, err)
			return
		}

		if len(datasets) == 0 {
			cmd.Println("No datasets found")
			return
		}

		for _, d := range datasets {
			cmd.Printf("%s  %-24s %s\n", d.ID, d.Name, colorizeStatus(d.Status))
		}
	},
}

var datasetsStatusCmd = &cobra.Command{
	Use:   "status [dataset_id]",
	Short: "Get status of a dataset",
	Long:  `Retrieve detailed status information for a dataset, including its extraction state (pending, running, completed, failed), progress, and record count.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		url := viper.GetString("url")
		token := viper.GetString("token")

		if token == "" {
			cmd.Println("API token not found. Please set it using the --token flag or the DATAFORGE_TOKEN environment variable")
			return
		}

		client := NewAPIClient(url, token)
		dataset, err := client.GetDataset(args[0])
		if err != nil {
			printClientError(cmd, err)
			return
		}

		printDatasetStatus(cmd, *dataset)
	},
}

var datasetsRunCmd = &cobra.Command{
	Use:   "run [dataset_id]",
	Short: "Start an extraction run for a dataset",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		url := viper.GetString("url")
		token := viper.GetString("token")

		if token == "" {
			cmd.Println("API token not found. Please set it using the --token flag or the DATAFORGE_TOKEN environment variable")
			return
		}

		client := NewAPIClient(url, token)
		dataset, err := client.RunDataset(args[0])
		if err != nil {
			printClientError(cmd, err)
			return
		}

		cmd.Printf("✓ Extraction started for %q\n", dataset.Name)
	},
}

func printDatasetStatus(cmd *cobra.Command, d api.DatasetResponse) {
	icon := statusIcon(d.Status)
	cmd.Printf("%s %sDataset Details%s\n", icon, colorBold, colorReset)
	cmd.Println("──────────────────────────────")

	cmd.Printf("%sID:%s          %s\n", colorDim, colorReset, d.ID)
	cmd.Printf("%sName:%s        %s\n", colorDim, colorReset, d.Name)
	cmd.Printf("%sStatus:%s      %s\n", colorDim, colorReset, colorizeStatus(d.Status))
	cmd.Printf("%sProgress:%s    %d%%\n", colorDim, colorReset, d.Progress)

	if d.RecordCount != nil {
		cmd.Printf("%sRecords:%s     %d\n", colorDim, colorReset, *d.RecordCount)
	} else {
		cmd.Printf("%sRecords:%s     -\n", colorDim, colorReset)
	}

	if d.StatusMessage != nil {
		cmd.Printf("%sError:%s       %s%s%s\n", colorDim, colorReset, colorRed, *d.StatusMessage, colorReset)
	}

	cmd.Printf("%sCreated:%s     %s\n", colorDim, colorReset, formatTimeWithRelative(&d.CreatedAt))
	cmd.Printf("%sCompleted:%s   %s\n", colorDim, colorReset, formatTimeWithRelative(d.CompletedAt))
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func statusIcon(status string) string {
	switch status {
	case "completed", "success", "active":
		return colorGreen + "✓" + colorReset
	case "failed":
		return colorRed + "✗" + colorReset
	case "running":
		return colorYellow + "⏳" + colorReset
	case "pending":
		return colorCyan + "◯" + colorReset
	default:
		return "•"
	}
}

func colorizeStatus(status string) string {
	icon := statusIcon(status)
	switch status {
	case "completed", "success", "active":
		return icon + " " + colorGreen + status + colorReset
	case "failed":
		return icon + " " + colorRed + status + colorReset
	case "running":
		return icon + " " + colorYellow + status + colorReset
	case "pending":
		return icon + " " + colorCyan + status + colorReset
	default:
		return status
	}
}

func formatTimeWithRelative(t *time.Time) string {
	if t == nil {
		return "-"
	}
	relative := relativeTime(*t)
	return fmt.Sprintf("%s %s(%s ago)%s", t.Format("Mon, 02 Jan 2006 15:04:05 MST"), colorDim, relative, colorReset)
}

func relativeTime(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return fmt.Sprintf("%ds", int(duration.Seconds()))
	} else if duration < time.Hour {
		return fmt.Sprintf("%dm", int(duration.Minutes()))
	} else if duration < 24*time.Hour {
		return fmt.Sprintf("%dh", int(duration.Hours()))
	} else {
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
}

func init() {
	datasetsListCmd.Flags().Bool("deleted", false, "Show soft-deleted datasets instead of live ones")

	datasetsCmd.AddCommand(datasetsListCmd)
	datasetsCmd.AddCommand(datasetsStatusCmd)
	datasetsCmd.AddCommand(datasetsRunCmd)
	rootCmd.AddCommand(datasetsCmd)
}
