package commands

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"leadharvest/lib/configutil"
	"leadharvest/lib/telemetry"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// the names chromedp itself searches for
var chromeNames = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"headless-shell",
	"chrome",
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Checks that the machine can run a scrape: browser binary, config files, host resources.",
	Run: func(cmd *cobra.Command, args []string) {
		t := newTable()
		t.AppendHeader(table.Row{"check", "status", "detail"})

		if path, ok := findChrome(); ok {
			t.AppendRow(table.Row{"chrome binary", "ok", path})
		} else {
			t.AppendRow(table.Row{"chrome binary", "missing", "maps and care --mode capture need chrome; api and dom modes run without it"})
		}

		_, err := configutil.ReadRecursively[Config](configFile)
		switch {
		case errors.Is(err, configutil.ErrNotFound):
			t.AppendRow(table.Row{configFile, "absent", "using compiled-in defaults"})
		case err != nil:
			t.AppendRow(table.Row{configFile, "broken", err.Error()})
		default:
			t.AppendRow(table.Row{configFile, "ok", ""})
		}

		_, err = configutil.ReadRecursively[telemetry.Config]("telemetry.json5")
		switch {
		case errors.Is(err, configutil.ErrNotFound):
			t.AppendRow(table.Row{"telemetry.json5", "absent", "telemetry disabled"})
		case err != nil:
			t.AppendRow(table.Row{"telemetry.json5", "broken", err.Error()})
		default:
			t.AppendRow(table.Row{"telemetry.json5", "ok", ""})
		}

		t.AppendRow(table.Row{"host", "ok", runtime.GOOS + "/" + runtime.GOARCH})

		if cores, err := cpu.Counts(true); err == nil {
			usage := ""
			if percents, err := cpu.Percent(time.Second, false); err == nil && len(percents) > 0 {
				usage = fmt.Sprintf(", %.0f%% busy", percents[0])
			}
			t.AppendRow(table.Row{"cpu", "ok", fmt.Sprintf("%d logical cores%s", cores, usage)})
		} else {
			t.AppendRow(table.Row{"cpu", "unknown", err.Error()})
		}

		if vm, err := mem.VirtualMemory(); err == nil {
			t.AppendRow(table.Row{"memory", "ok",
				fmt.Sprintf("%d MB free of %d MB", vm.Available/1_000_000, vm.Total/1_000_000)})
		} else {
			t.AppendRow(table.Row{"memory", "unknown", err.Error()})
		}

		t.Render()
	},
}

func findChrome() (string, bool) {
	for _, name := range chromeNames {
		if path, err := exec.LookPath(name); err == nil {
			return path, true
		}
	}
	return "", false
}
