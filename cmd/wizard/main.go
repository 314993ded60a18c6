// Command wizard drives the onboarding flow from an answers file and requests a prediction.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Onboarding wizard for the future prediction service",
	Long: `Wizard walks the onboarding steps (info, career, assessment, learning goals)
using an answers file, saves the student profile and requests a prediction with
primary, reduced and local fallback tiers.`,
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
