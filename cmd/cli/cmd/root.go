package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "dfctl",
	Short: "Dfctl is a command line tool for interacting with the dataforge platform",
	Long: `dfctl is the command-line interface for the DataForge data preparation platform.

DataForge lets you connect data sources, assemble datasets and transformations
through a guided wizard, and schedule recurring extraction jobs. The platform
keeps deleted entities in a trash area for a retention window before purging
them permanently.

Common workflows:

  Connect a source:
    dfctl sources create --name "warehouse" --url "postgres://..." --type postgres

  List datasets and their run state:
    dfctl datasets list

  Schedule a daily job:
    dfctl jobs create --source <source-id> --frequency daily

  Trigger a job run now:
    dfctl jobs trigger <job-id>

  Inspect the trash and restore an entity:
    dfctl trash list --type dataset
    dfctl trash restore --type dataset <dataset-id>

Configuration:
  Set the API endpoint and credentials via environment variables or a config file:
    DATAFORGE_URL      API endpoint (default: http://localhost:7070)
    DATAFORGE_TOKEN    API key for authentication`,
}

func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".dfctl"
		viper.AddConfigPath(home)
		viper.SetConfigName(".dfctl")
		viper.SetConfigType("yaml")
	}

	// Read environment variables that match "DATAFORGE_VARNAME"
	viper.SetEnvPrefix("DATAFORGE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.dfctl.yaml)")

	rootCmd.PersistentFlags().String("url", "http://localhost:7070", "DataForge API URL")
	viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))

	rootCmd.PersistentFlags().StringP("token", "t", "", "API key for authentication")
	viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
}
