package main

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "tellergo",
	Short: "TellerGo - multi-agent banking conversation router",
	Long: `TellerGo routes banking conversations among specialized agents:
a coordinator dispatches each thread to customer support, sales or
transactions, and every routing decision is durably persisted so a
conversation survives process restarts.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(versionCmd)
}
