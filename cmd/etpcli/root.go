// Command etpcli is a small example CLI exercising the etp-go-client
// library end to end, the way the teacher's own cmd/ ties its library
// packages to a cobra command tree.
package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/geosiris-technologies/etp-go-client/internal/config"
	"github.com/geosiris-technologies/etp-go-client/internal/xlog"
)

var (
	serverURL   string
	username    string
	password    string
	accessToken string
	insecure    bool
	debugLog    bool
	timeoutSec  int
	configPath  string

	// cfg is the resolved configuration (env defaults, optionally overridden
	// by configPath's YAML), populated once in PersistentPreRun and read by
	// connect.go and any command applying its ACL/legal-tag defaults.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "etpcli",
	Short: "A small command-line client for the ETP v1.2 protocol",
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "url", "", "ETP server URL (ws:// or wss://), defaults to config/URL env var")
	rootCmd.PersistentFlags().StringVar(&username, "username", "", "basic auth username, defaults to config/USERNAME env var")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "basic auth password (prompted if omitted while a username is set and no token is set)")
	rootCmd.PersistentFlags().StringVar(&accessToken, "token", "", "bearer access token, defaults to config/ACCESS_TOKEN env var")
	rootCmd.PersistentFlags().BoolVar(&insecure, "insecure", false, "skip TLS certificate verification")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "use debug level logging")
	rootCmd.PersistentFlags().IntVar(&timeoutSec, "timeout", 5, "request timeout in seconds")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML file overriding the environment-sourced config")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := "info"
		if debugLog {
			level = "debug"
		}
		xlog.Setup(xlog.Options{Level: level, Pretty: true})
		if debugLog {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}

		loaded, err := config.Load(configPath)
		cobra.CheckErr(err)
		cfg = loaded

		if serverURL == "" {
			serverURL = cfg.URL
		}
		if username == "" {
			username = cfg.Username
		}
		if password == "" {
			password = cfg.Password
		}
		if accessToken == "" {
			accessToken = cfg.AccessToken
		}
	}

	rootCmd.AddCommand(pingCmd, listDataspacesCmd, listResourcesCmd, createDataspaceCmd)
}

func main() {
	Execute()
}
