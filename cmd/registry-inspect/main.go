// Command registry-inspect loads a registry store and reports asset status as
// of a date. It answers either a single-asset query (-asset) or lists every
// active asset, using the same environment-driven driver selection as the
// library (ASSETREGISTRY_STORAGE_DRIVER and friends).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"assetregistry/internal/registry"
	"assetregistry/pkg/domain"
)

var exitFunc = os.Exit

func main() {
	code := cli(os.Args[1:], os.Stdout, os.Stderr)
	exitFunc(code)
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("registry-inspect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		assetID  string
		asOfRaw  string
		asJSON   bool
		showFull bool
	)
	fs.StringVar(&assetID, "asset", "", "asset id to inspect; empty lists all active assets")
	fs.StringVar(&asOfRaw, "date", "", "as-of date (YYYY-MM-DD); empty means today")
	fs.BoolVar(&asJSON, "json", false, "emit JSON instead of text")
	fs.BoolVar(&showFull, "history", false, "include the full event history for -asset")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if err := run(stdout, assetID, asOfRaw, asJSON, showFull); err != nil {
		fmt.Fprintf(stderr, "registry-inspect: %v\n", err)
		return 1
	}
	return 0
}

type assetReport struct {
	AssetID  string              `json:"asset_id"`
	AsOf     domain.CalendarDate `json:"as_of"`
	Status   domain.Status       `json:"status"`
	Assignee string              `json:"assignee,omitempty"`
	History  *domain.AssetRecord `json:"history,omitempty"`
}

type activeReport struct {
	AsOf   domain.CalendarDate `json:"as_of"`
	Active []string            `json:"active"`
}

func run(stdout io.Writer, assetID, asOfRaw string, asJSON, showFull bool) error {
	asOf := domain.Today()
	if asOfRaw != "" {
		parsed, err := domain.ParseCalendarDate(asOfRaw)
		if err != nil {
			return err
		}
		asOf = parsed
	}

	ctx := context.Background()
	store, err := registry.OpenPersistentStore(ctx, nil)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	svc := registry.NewService(store)

	if assetID == "" {
		report := activeReport{AsOf: asOf, Active: svc.ActiveAssets(asOf)}
		if asJSON {
			return writeJSON(stdout, report)
		}
		fmt.Fprintf(stdout, "active assets as of %s (%d):\n", asOf, len(report.Active))
		for _, id := range report.Active {
			fmt.Fprintf(stdout, "  %s\n", id)
		}
		return nil
	}

	report := assetReport{
		AssetID: domain.NormalizeAssetID(assetID),
		AsOf:    asOf,
		Status:  svc.Status(assetID, asOf),
	}
	if who, ok := svc.CurrentAssignee(assetID, asOf); ok {
		report.Assignee = who
	}
	if showFull {
		rec := svc.AssetDetails(assetID)
		report.History = &rec
	}
	if asJSON {
		return writeJSON(stdout, report)
	}
	fmt.Fprintf(stdout, "%s as of %s: %s", report.AssetID, asOf, report.Status)
	if report.Assignee != "" {
		fmt.Fprintf(stdout, " (assignee %s)", report.Assignee)
	}
	fmt.Fprintln(stdout)
	if report.History != nil {
		for _, ev := range report.History.Acquisitions {
			fmt.Fprintf(stdout, "  acquired %s assignee=%s division=%s\n", ev.Date, ev.AssigneeID, ev.Division)
		}
		for _, ev := range report.History.Disposals {
			fmt.Fprintf(stdout, "  disposed %s reason=%s\n", ev.Date, ev.Reason)
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
