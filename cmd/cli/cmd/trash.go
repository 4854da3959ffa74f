package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// entityKinds maps the --type flag values to API path segments.
var entityKinds = map[string]string{
	"source":  "sources",
	"dataset": "datasets",
	"job":     "jobs",
}

var trashCmd = &cobra.Command{
	Use:   "trash",
	Short: "Inspect and manage soft-deleted entities",
	Long: `Deleted sources, datasets and jobs are kept in the trash for a retention
window before they are purged permanently. Entities in the trash can be
restored at any time during that window.

Example:
  dfctl trash list --type dataset
  dfctl trash restore --type dataset <dataset-id>
  dfctl trash purge --type job <job-id>`,
}

var trashListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trashed entities of a type",
	Run: func(cmd *cobra.Command, args []string) {
		entityType, _ := cmd.Flags().GetString("type")
		kind, ok := entityKinds[entityType]
		if !ok {
			cmd.Println("Error: --type must be one of: source, dataset, job")
			return
		}

		url := viper.GetString("url")
		token := viper.GetString("token")

		if token == "" {
			cmd.Println("API token not found. Please set it using the --token flag or the DATAFORGE_TOKEN environment variable")
			return
		}

		client := NewAPIClient(url, token)
		switch kind {
		case "sources":
			sources, err := client.ListSources(true)
			if err != nil {
				printClientError(cmd, err)
				return
			}
			if len(sources) == 0 {
				cmd.Println("Trash is empty")
				return
			}
			for _, s := range sources {
				cmd.Printf("%s  %s\n", s.ID, s.Name)
			}
		case "datasets":
			datasets, err := client.ListDatasets(true)
			if err != nil {
				printClientError(cmd, err)
				return
			}
			if len(datasets) == 0 {
				cmd.Println("Trash is empty")
				return
			}
			for _, d := range datasets {
				cmd.Printf("%s  %s\n", d.ID, d.Name)
			}
		case "jobs":
			jobs, err := client.ListJobs(true)
			if err != nil {
				printClientError(cmd, err)
				return
			}
			if len(jobs) == 0 {
				cmd.Println("Trash is empty")
				return
			}
			for _, j := range jobs {
				cmd.Printf("%s  %s\n", j.ID, j.Frequency)
			}
		}
	},
}

var trashRestoreCmd = &cobra.Command{
	Use:   "restore [id]",
	Short: "Restore a trashed entity",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		entityType, _ := cmd.Flags().GetString("type")
		kind, ok := entityKinds[entityType]
		if !ok {
			cmd.Println("Error: --type must be one of: source, dataset, job")
			return
		}

		url := viper.GetString("url")
		token := viper.GetString("token")

		if token == "" {
			cmd.Println("API token not found. Please set it using the --token flag or the DATAFORGE_TOKEN environment variable")
			return
		}

		client := NewAPIClient(url, token)
		if err := client.RestoreEntity(kind, args[0]); err != nil {
			printClientError(cmd, err)
			return
		}

		cmd.Printf("✓ %s restored\n", entityType)
	},
}

var trashPurgeCmd = &cobra.Command{
	Use:   "purge [id]",
	Short: "Permanently remove a trashed entity",
	Long:  `Permanently remove a trashed entity. This cannot be undone. Only entities already in the trash can be purged.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		entityType, _ := cmd.Flags().GetString("type")
		kind, ok := entityKinds[entityType]
		if !ok {
			cmd.Println("Error: --type must be one of: source, dataset, job")
			return
		}

		url := viper.GetString("url")
		token := viper.GetString("token")

		if token == "" {
			cmd.Println("API token not found. Please set it using the --token flag or the DATAFORGE_TOKEN environment variable")
			return
		}

		client := NewAPIClient(url, token)
		if err := client.PurgeEntity(kind, args[0]); err != nil {
			printClientError(cmd, err)
			return
		}

		cmd.Printf("✓ %s purged\n", entityType)
	},
}

func init() {
	for _, c := range []*cobra.Command{trashListCmd, trashRestoreCmd, trashPurgeCmd} {
		c.Flags().String("type", "", "Entity type: source, dataset, job (required)")
	}

	trashCmd.AddCommand(trashListCmd)
	trashCmd.AddCommand(trashRestoreCmd)
	trashCmd.AddCommand(trashPurgeCmd)
	rootCmd.AddCommand(trashCmd)
}
