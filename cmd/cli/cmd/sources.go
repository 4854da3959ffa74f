package cmd

import (
	"dataforge/pkg/api"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage connected data sources",
}

var sourcesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Connect a new data source",
	Long: `Connect a new data source to extract from.

Example:
  dfctl sources create --name "warehouse" --url "postgres://db:5432/analytics" --type postgres`,
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		name, _ := flags.GetString("name")
		sourceURL, _ := flags.GetString("url")
		sourceType, _ := flags.GetString("type")

		url := viper.GetString("url")
		token := viper.GetString("token")

		if token == "" {
			cmd.Println("API token not found. Please set it using the --token flag or the DATAFORGE_TOKEN environment variable")
			return
		}

		if name == "" {
			cmd.Println("Error: --name is required")
			return
		}

		if sourceURL == "" {
			cmd.Println("Error: --url is required")
			return
		}

		client := NewAPIClient(url, token)
		result, err := client.CreateSource(api.CreateSourceRequest{
			Name:       name,
			URL:        sourceURL,
			SourceType: sourceType,
		})
		if err != nil {
			printClientError(cmd, err)
			return
		}

		cmd.Printf("✓ Source connected!\nID: %s\nName: %s\n", result.ID, result.Name)
	},
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List connected sources",
	Run: func(cmd *cobra.Command, args []string) {
		url := viper.GetString("url")
		token := viper.GetString("token")

		if token == "" {
			cmd.Println("API token not found. Please set it using the --token flag or the DATAFORGE_TOKEN environment variable")
			return
		}

		includeDeleted, _ := cmd.Flags().GetBool("deleted")

		client := NewAPIClient(url, token)
		sources, err := client.ListSources(includeDeleted)
		if err != nil {
			printClientError(cmd, err)
			return
		}

		if len(sources) == 0 {
			cmd.Println("No sources found")
			return
		}

		for _, s := range sources {
			cmd.Printf("%s  %-20s %-10s %s\n", s.ID, s.Name, s.SourceType, s.Status)
		}
	},
}

func printClientError(cmd *cobra.Command, err error) {
	if apiErr, ok := err.(*APIError); ok {
		cmd.Printf("Error (%d): %s\n", apiErr.StatusCode, apiErr.Message)
		return
	}
	cmd.Printf("Error: %v\n", err)
}

func init() {
	createFlags := sourcesCreateCmd.Flags()
	createFlags.StringP("name", "n", "", "Name of the source (required)")
	createFlags.StringP("url", "u", "", "Connection URL of the source (required)")
	createFlags.String("type", "postgres", "Source type (postgres, mysql, api, file)")

	sourcesListCmd.Flags().Bool("deleted", false, "Show soft-deleted sources instead of live ones")

	sourcesCmd.AddCommand(sourcesCreateCmd)
	sourcesCmd.AddCommand(sourcesListCmd)
	rootCmd.AddCommand(sourcesCmd)
}
