package commands

import (
	"context"
	"fmt"
	"os"

	"leadharvest/lib/restyutil"
	"leadharvest/lib/scrapers/caredir"
	"leadharvest/lib/scrapers/sitemail"
	"leadharvest/lib/telemetry"

	"github.com/spf13/cobra"
)

var verbose *bool

func init() {
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging and HTTP exchange dumps under .dev/resty.")
}

var rootCmd = &cobra.Command{
	Use:   "leadharvest",
	Short: "leadharvest scrapes business and provider listings into CSV files.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if !*verbose {
			return
		}
		telemetry.InitSlog(true)
		caredir.SetRestyInstrumentOutput(
			restyutil.NewFilesystemOutput(".dev/resty/caredir"),
		)
		sitemail.SetRestyInstrumentOutput(
			restyutil.NewFilesystemOutput(".dev/resty/sitemail"),
		)
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
