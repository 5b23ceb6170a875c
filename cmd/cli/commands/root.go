// Package commands defines the CLI verbs over the job API.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/resumeforge/forge/internal/api/v1/client"
	"github.com/resumeforge/forge/internal/api/v1/routes"
)

// flag names
const (
	flagServerAddress = "server-address"
)

// environment variable names
const (
	envServerAddress = "FORGE_SERVER_ADDRESS"
)

var (
	// apiClient is the shared API client instance
	apiClient client.Client
	// serverAddress holds the target API server address. Flag parsing sets this.
	serverAddress string
)

// initClient initializes the API client
func initClient() error {
	var err error
	opts := client.DefaultOptions()
	opts.BaseURL = serverAddress

	apiClient, err = client.NewClient(opts)
	return err
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&serverAddress, flagServerAddress, "s", routes.DefaultBaseURL, "Address of the Forge API server (env: FORGE_SERVER_ADDRESS)")

	RootCmd.AddCommand(jobsCmd)
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "forge",
	Short: "Forge CLI - submit and track resume tailoring jobs",
	Long:  `Forge CLI submits captured job postings to the Forge API and tracks the tailored resume artifacts it produces.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// Precedence: flag > env var > default
		if !cmd.Flags().Changed(flagServerAddress) {
			if envAddr := os.Getenv(envServerAddress); envAddr != "" {
				serverAddress = envAddr
			}
		}

		if serverAddress == "" {
			return fmt.Errorf("server address cannot be empty")
		}
		return initClient()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}
