package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	gitCommit = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:     "sqlguard",
	Short:   "SQL safety firewall: validation and rewrite engine",
	Long:    "sqlguard checks SQL statements against a configurable set of safety rules before they reach a database, either inline in a CI scan of MyBatis mapper XML, ad hoc against one statement, or as a long-running HTTP service.",
	Version: fmt.Sprintf("%s (commit: %s)", version, gitCommit),
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to sqlguard config YAML (defaults applied when omitted)")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}
