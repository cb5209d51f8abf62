package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "authorizenet",
	Short: "Authorize.Net payment microservice",
	Long:  "A payment microservice for Authorize.Net Accept.js charges, ARB subscriptions, and webhook reconciliation.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
