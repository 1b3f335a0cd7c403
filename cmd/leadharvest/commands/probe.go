package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"leadharvest/lib/browser"
	"leadharvest/lib/scrapers/caredir"
	"leadharvest/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(probeCmd)
}

var probeCmd = &cobra.Command{
	Use:   "probe [search terms]",
	Short: "Opens the care directory in a browser and dumps the internal search call it makes.",
	Long: "probe is for maintenance: when the directory changes its internal API,\n" +
		"run it to see the current search call's URL, headers and payload shape.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			serviceutil.Fatal("read config", err)
		}

		query := cfg.Care.Query
		if len(args) > 0 {
			query.Q = strings.Join(args, " ")
		}
		if query.Q == "" {
			query.Q = "dermatologist"
		}
		opts := cfg.Care.sourceOptions()

		ctx := cmd.Context()
		session, err := browser.NewSession(ctx, cfg.Browser)
		if err != nil {
			serviceutil.Fatal("launch chrome", err)
		}
		defer session.Close()

		capture, err := session.NewCapture(caredir.APIPathMarker)
		if err != nil {
			serviceutil.Fatal("enable network capture", err)
		}

		link := opts.SearchPage(query, 1)
		slog.InfoContext(ctx, "probing search page", "url", link)
		if err := session.Navigate(ctx, link, "", time.Minute); err != nil {
			serviceutil.Fatal("open results page", err)
		}

		sels := cfg.Care.Selectors
		if sels == nil {
			defaults := caredir.DefaultSelectors()
			sels = &defaults
		}
		session.DismissDialog(ctx, sels.ConsentCSS, sels.ConsentXPath)

		body := capture.Wait(ctx, 20*time.Second)

		for _, req := range capture.Requests() {
			fmt.Println("captured:", req.URL)

			t := newTable()
			t.AppendHeader(table.Row{"header", "value"})
			names := make([]string, 0, len(req.Headers))
			for name := range req.Headers {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				t.AppendRow(table.Row{name, req.Headers[name]})
			}
			t.Render()
		}

		if body == nil {
			serviceutil.Fatal("probe", fmt.Errorf("no request matching %q fired within the wait window", caredir.APIPathMarker))
		}

		describePayload(body)
	},
}

// describePayload prints the shape of the captured JSON so a changed
// payload is obvious at a glance.
func describePayload(body []byte) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		fmt.Printf("payload is not JSON (%v), first bytes:\n%s\n", err, truncate(string(body), 400))
		return
	}

	fmt.Println("top-level keys:", sortedKeys(payload))

	data, _ := payload["data"].(map[string]any)
	if data == nil {
		return
	}
	fmt.Println("data keys:", sortedKeys(data))

	providers, _ := data["response"].([]any)
	fmt.Println("providers:", len(providers))
	if len(providers) == 0 {
		return
	}

	first, _ := providers[0].(map[string]any)
	if first == nil {
		return
	}
	t := newTable()
	t.AppendHeader(table.Row{"field", "sample"})
	for _, key := range sortedKeys(first) {
		t.AppendRow(table.Row{key, truncate(fmt.Sprint(first[key]), 60)})
	}
	t.Render()
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
