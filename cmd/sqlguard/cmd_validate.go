package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqlguard/sqlguard/internal/datasource"
	"github.com/sqlguard/sqlguard/pkg/dialect"
	"github.com/sqlguard/sqlguard/pkg/rewriter"
	"github.com/sqlguard/sqlguard/pkg/sqlast"
	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
	"github.com/sqlguard/sqlguard/pkg/validator"
)

var (
	validateSQL        string
	validateMapperID   string
	validateDatasource string
	validateRewrite    bool
	validateLimit      int
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a single SQL statement",
	Long: `Validate one SQL statement against the configured checker pipeline.

Examples:
  sqlguard validate --sql "DELETE FROM users" --mapper-id ad-hoc.query
  sqlguard validate --sql "SELECT * FROM orders" --mapper-id ad-hoc.query --rewrite --datasource postgres`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateSQL, "sql", "", "SQL text to validate (required)")
	validateCmd.Flags().StringVar(&validateMapperID, "mapper-id", "cli.adhoc", "mapper identifier to attribute the statement to")
	validateCmd.Flags().StringVar(&validateDatasource, "datasource", "", "datasource name to resolve a dialect for, when --rewrite is set")
	validateCmd.Flags().BoolVar(&validateRewrite, "rewrite", false, "also run the rewriter pipeline and print the rewritten statement")
	validateCmd.Flags().IntVar(&validateLimit, "default-limit", 1000, "row limit injected by --rewrite when the statement has none")
	_ = validateCmd.MarkFlagRequired("sql")
}

func runValidate(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(configPath)
	if err != nil {
		return err
	}

	sc, err := sqlcontext.NewBuilder().SQL(validateSQL).MapperID(validateMapperID).Build()
	if err != nil {
		return fmt.Errorf("sqlguard: building context: %w", err)
	}

	result, verr := a.validator.Validate(cmd.Context(), sc)

	var safety *validator.SqlSafetyViolation
	blocked := errors.As(verr, &safety)
	if verr != nil && !blocked {
		return verr
	}

	if result.Passed() {
		fmt.Fprintln(cmd.OutOrStdout(), "PASSED")
	} else {
		for _, v := range result.Violations {
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s): %s\n", v.Kind, v.RiskLevel, v.Message)
		}
		if blocked {
			fmt.Fprintln(cmd.OutOrStdout(), "BLOCKED")
		}
	}

	if validateRewrite {
		if err := runRewrite(cmd, a, sc); err != nil {
			return err
		}
	}

	if blocked {
		return fmt.Errorf("sql rejected")
	}
	return nil
}

func runRewrite(cmd *cobra.Command, a *app, sc *sqlcontext.SqlContext) error {
	var strategy dialect.Strategy
	var err error
	if validateDatasource != "" {
		resolver := datasource.NewResolver(dialect.NewFactory())
		strategy, err = resolver.Resolve(context.Background(), "cmd/sqlguard", datasource.Config{
			Driver: validateDatasource,
			DSN:    a.cfg.Datasource.DSN,
		})
	} else {
		strategy, err = a.resolveDialect(context.Background())
	}
	if err != nil {
		return fmt.Errorf("sqlguard: resolving dialect for rewrite: %w", err)
	}

	cache := a.parser.NewCache()
	defer cache.Clear()

	limitRw := rewriter.NewLimitInjectionRewriter(rewriter.LimitInjectionConfig{Enabled: true, DefaultLimit: validateLimit}, strategy)
	pipeline := rewriter.New([]rewriter.Rewriter{limitRw}, cache, a.logger)

	rewritten := a.validator.Rewrite(sc, pipeline)
	fmt.Fprintf(cmd.OutOrStdout(), "rewritten: %s\n", sqlast.Serialize(rewritten))
	return nil
}
