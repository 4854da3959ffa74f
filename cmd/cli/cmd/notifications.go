package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "View lifecycle notifications",
	Run: func(cmd *cobra.Command, args []string) {
		url := viper.GetString("url")
		token := viper.GetString("token")

		if token == "" {
			cmd.Println("API token not found. Please set it using the --token flag or the DATAFORGE_TOKEN environment variable")
			return
		}

		unreadOnly, _ := cmd.Flags().GetBool("unread")

		client := NewAPIClient(url, token)
		notifications, err := client.ListNotifications(unreadOnly)
		if err != nil {
			printClientError(cmd, err)
			return
		}

		if len(notifications) == 0 {
			cmd.Println("No notifications")
			return
		}

		for _, n := range notifications {
			marker := " "
			if !n.Read {
				marker = "*"
			}
			cmd.Printf("%s %s  [%s/%s] %s %s(%s ago)%s\n",
				marker, n.ID, n.Category, n.Severity, n.Message,
				colorDim, relativeTime(n.CreatedAt), colorReset)
		}
	},
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read [notification_id]",
	Short: "Mark a notification as read",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		url := viper.GetString("url")
		token := viper.GetString("token")

		if token == "" {
			cmd.Println("API token not found. Please set it using the --token flag or the DATAFORGE_TOKEN environment variable")
			return
		}

		client := NewAPIClient(url, token)
		if err := client.MarkNotificationRead(args[0]); err != nil {
			printClientError(cmd, err)
			return
		}

		cmd.Println("✓ Marked as read")
	},
}

func init() {
	notificationsCmd.Flags().Bool("unread", false, "Show only unread notifications")

	notificationsCmd.AddCommand(notificationsReadCmd)
	rootCmd.AddCommand(notificationsCmd)
}
