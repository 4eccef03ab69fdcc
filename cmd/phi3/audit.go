package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"workspaces-inventory/phi3/pkg/audit"
	"workspaces-inventory/phi3/pkg/audit/retention"
	"workspaces-inventory/phi3/pkg/audit/storage"
	"workspaces-inventory/phi3/pkg/cli"
	"workspaces-inventory/phi3/pkg/config"
)

var auditFlags struct {
	backend    string
	limit      int
	output     string
	days       int
	maxRecords int64
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect and prune the request audit trail",
	Long: `Inspect and prune the request audit trail written by a running server.

The audit trail stores one record per request: route, status, duration,
engine and the SHA-256 of the prompt. Prompts and completions are never
stored.

Only the sqlite backend keeps records across processes. The memory backend
lives inside a running server, so these commands require audit.backend
(or --backend) to be sqlite.

Subcommands:
  list   - Print the most recent records
  prune  - Apply the retention policy once

Examples:
  # Last 20 records from the configured backend
  phi3 audit list --config phi3.yaml --limit 20

  # Export as CSV
  phi3 audit list --config phi3.yaml --output csv > audit.csv

  # Keep only the newest 10000 records
  phi3 audit prune --config phi3.yaml --days 0 --max-records 10000`,
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent audit records",
	Args:  cobra.NoArgs,
	RunE:  listAudit,
}

var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete audit records outside the retention policy",
	Args:  cobra.NoArgs,
	RunE:  pruneAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditListCmd, auditPruneCmd)

	auditCmd.PersistentFlags().StringVar(&auditFlags.backend, "backend", "", "backend: sqlite (uses config if not specified)")

	auditListCmd.Flags().IntVar(&auditFlags.limit, "limit", 50, "max records, newest first (0 for all)")
	auditListCmd.Flags().StringVarP(&auditFlags.output, "output", "o", "text", "output format: text, json, csv")

	auditPruneCmd.Flags().IntVar(&auditFlags.days, "days", -1, "keep records for this many days, 0 keeps forever (uses config if negative)")
	auditPruneCmd.Flags().Int64Var(&auditFlags.maxRecords, "max-records", -1, "keep at most this many records, 0 is unlimited (uses config if negative)")
}

// openAuditStorage opens the configured audit backend, honoring --backend.
func openAuditStorage() (audit.Storage, *config.Config, error) {
	if err := loadConfig(cfgFile); err != nil {
		return nil, nil, err
	}
	cfg := config.MustGetConfig()

	auditCfg := cfg.Audit
	if auditFlags.backend != "" {
		auditCfg.Backend = auditFlags.backend
	}
	if auditCfg.Backend != "sqlite" {
		return nil, nil, cli.NewCommandError("audit", fmt.Errorf(
			"backend %q does not persist records outside a running server; set audit.backend to sqlite or pass --backend sqlite",
			auditCfg.Backend))
	}

	store, err := storage.New(&auditCfg)
	if err != nil {
		return nil, nil, cli.NewCommandError("audit", err)
	}
	return store, cfg, nil
}

func listAudit(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(auditFlags.output)
	if err != nil {
		return err
	}

	store, _, err := openAuditStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(cmd.Context(), auditFlags.limit)
	if err != nil {
		return cli.NewCommandError("audit", fmt.Errorf("list failed: %w", err))
	}

	if format == cli.FormatJSON {
		if records == nil {
			records = []*audit.Record{}
		}
		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), records)
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), auditTable(records))
}

// auditTable renders records as rows for the text and csv formats.
func auditTable(records []*audit.Record) *cli.Table {
	t := &cli.Table{
		Headers: []string{"TIME", "CONN", "ROUTE", "METHOD", "PATH", "STATUS", "DURATION", "ENGINE", "PROMPT_HASH", "ERROR"},
	}
	for _, r := range records {
		t.Rows = append(t.Rows, []string{
			r.Time.UTC().Format(time.RFC3339Nano),
			r.ConnID,
			r.Route,
			r.Method,
			r.Path,
			strconv.Itoa(r.Status),
			r.Duration.String(),
			r.Engine,
			shortHash(r.PromptHash),
			r.Error,
		})
	}
	return t
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func pruneAudit(cmd *cobra.Command, args []string) error {
	store, cfg, err := openAuditStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	policy := cfg.Audit.Retention
	if auditFlags.days >= 0 {
		policy.Days = auditFlags.days
	}
	if auditFlags.maxRecords >= 0 {
		policy.MaxRecords = auditFlags.maxRecords
	}

	deleted, err := retention.NewPruner(store, &policy, nil).Prune(cmd.Context())
	if err != nil {
		return cli.NewCommandError("audit", err)
	}

	remaining, err := store.Count(cmd.Context())
	if err != nil {
		return cli.NewCommandError("audit", fmt.Errorf("count failed: %w", err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d records, %d remaining\n", deleted, remaining)
	return nil
}
