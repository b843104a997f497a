package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	envPath    string
)

var rootCmd = &cobra.Command{
	Use:   "chorewheel",
	Short: "Household chore rotation",
	Long: `chorewheel keeps a rotating roster of residents and hands each
recurring household task to the next available resident when it is done.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&envPath, "env-file", ".env", "dotenv file with CHOREWHEEL_* overrides (ignored if missing)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(rosterCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
