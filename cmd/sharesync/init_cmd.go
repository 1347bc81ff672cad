package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sharesync/sharesync/internal/client/config"
)

var (
	red   = color.New(color.FgHiRed, color.Bold).SprintFunc()
	green = color.New(color.FgHiGreen).SprintFunc()
	cyan  = color.New(color.FgHiCyan).SprintFunc()
)

func init() {
	rootCmd.AddCommand(newInitCmd())
}

func newInitCmd() *cobra.Command {
	var dataDir string
	var serverURL string
	var apiToken string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the ShareSync config file",
		Run: func(cmd *cobra.Command, args []string) {
			if cfg, err := config.LoadFromFile(config.DefaultConfigPath); err == nil {
				fmt.Println("ShareSync already initialized")
				fmt.Printf("Config Path: %s\n", green(cfg.Path))
				fmt.Printf("Data Dir:    %s\n", cyan(cfg.DataDir))
				fmt.Printf("Server:      %s\n", cyan(cfg.ServerURL))
				os.Exit(0)
			}

			if apiToken == "" {
				fmt.Printf("%s: %s\n", red("ERROR"), "api-token is required")
				os.Exit(1)
			}

			cfg := &config.Config{
				DataDir:   dataDir,
				ServerURL: serverURL,
				APIToken:  apiToken,
				Path:      config.DefaultConfigPath,
			}
			if err := cfg.Validate(); err != nil {
				fmt.Printf("%s: %v\n", red("ERROR"), err)
				os.Exit(1)
			}
			if err := cfg.Save(); err != nil {
				fmt.Printf("%s: %v\n", red("ERROR"), err)
				os.Exit(1)
			}

			fmt.Println("ShareSync initialized")
			fmt.Printf("Config Path: %s\n", green(cfg.Path))
			fmt.Printf("Data Dir:    %s\n", cyan(cfg.DataDir))
			fmt.Printf("Server:      %s\n", cyan(cfg.ServerURL))
		},
	}

	cmd.Flags().StringVarP(&dataDir, "datadir", "d", config.DefaultDataDir, "ShareSync data directory")
	cmd.Flags().StringVarP(&serverURL, "server", "s", config.DefaultServerURL, "Chat backend URL")
	cmd.Flags().StringVar(&apiToken, "api-token", "", "API token for the chat backend")

	return cmd
}
