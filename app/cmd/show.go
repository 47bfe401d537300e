package cmd

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.AddCommand(showConfigCmd)
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show runtime information",
}

var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show effective config",
	Long:  `Renders the config the server would run with, after file and env resolution`,
	Run: func(cmd *cobra.Command, args []string) {
		printable := appConfig
		if printable.Elasticsearch.User != nil {
			redactedUser := *printable.Elasticsearch.User
			redactedUser.Password = "<redacted>"
			printable.Elasticsearch.User = &redactedUser
		}
		out, err := json.MarshalIndent(&printable, "", "  ")
		if err != nil {
			log.Fatal().Err(err).Msg("Error marshalling config to JSON")
		} else {
			log.Info().Msg(string(out))
		}
	},
}
