package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqlguard/sqlguard/cmd/sqlguard/internal/report"
	"github.com/sqlguard/sqlguard/internal/audit"
	"github.com/sqlguard/sqlguard/internal/scanner"
	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
)

var scanCmd = &cobra.Command{
	Use:   "scan <path>",
	Short: "Scan a project tree for unsafe MyBatis mapper statements",
	Long: `Walk <path> for MyBatis-style XML mapper files, validate every
statement they contain against the configured checker pipeline, and
print a findings summary grouped by risk level.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	root := args[0]

	a, err := bootstrap(configPath)
	if err != nil {
		return err
	}

	statements, err := scanner.Scan(root)
	if err != nil {
		return fmt.Errorf("sqlguard: scanning %s: %w", root, err)
	}
	a.logger.Info("scan discovered statements", "path", root, "count", len(statements))

	findings := scanner.ValidateAll(cmd.Context(), a.validator, statements)
	report.WriteSummary(cmd.OutOrStdout(), findings)

	if store, err := a.openAudit(cmd.Context()); err != nil {
		a.logger.Warn("audit store unavailable, skipping persistence", "error", err)
	} else if store != nil {
		defer store.Close()
		if err := persistFindings(cmd, a.cfg.ViolationStrategyValue(), store, findings); err != nil {
			a.logger.Warn("failed to persist scan findings", "error", err)
		}
	}

	if n := countBlocked(findings); n > 0 {
		return fmt.Errorf("scan found %d blocking violation(s)", n)
	}
	return nil
}

func persistFindings(cmd *cobra.Command, strategy sqlcontext.ViolationStrategy, store audit.Store, findings []scanner.Finding) error {
	runID := newRunID()
	var records []audit.Record
	for _, f := range findings {
		if f.Result == nil || f.Result.Passed() {
			continue
		}
		for _, v := range f.Result.Violations {
			records = append(records, audit.FromViolation(runID, f.Statement.MapperID, f.Statement.SQL, f.Statement.SqlType, strategy, v))
		}
	}
	return store.RecordBatch(cmd.Context(), records)
}

func countBlocked(findings []scanner.Finding) int {
	n := 0
	for _, f := range findings {
		if f.Result != nil && f.Err != nil {
			n++
		}
	}
	return n
}
