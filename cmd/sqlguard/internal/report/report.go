// Package report renders scan findings to a plain io.Writer, the CLI
// equivalent of a checker's Message field: short, grep-able lines rather
// than a templated document.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/sqlguard/sqlguard/internal/scanner"
	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
)

// riskOrder lists risk levels from most to least severe, the order
// findings are grouped and printed in.
var riskOrder = []sqlcontext.RiskLevel{
	sqlcontext.RiskCritical,
	sqlcontext.RiskHigh,
	sqlcontext.RiskMedium,
	sqlcontext.RiskLow,
	sqlcontext.RiskInfo,
}

// WriteSummary prints every finding that failed validation, grouped by
// the highest risk level each statement raised, followed by a one-line
// total. Findings with a build/context error are reported separately,
// since they never reached the checker pipeline at all.
func WriteSummary(w io.Writer, findings []scanner.Finding) {
	byRisk := map[sqlcontext.RiskLevel][]scanner.Finding{}
	var buildErrors []scanner.Finding
	blocked, warned := 0, 0

	for _, f := range findings {
		if f.Result == nil {
			buildErrors = append(buildErrors, f)
			continue
		}
		if f.Result.Passed() {
			continue
		}
		if f.Err != nil {
			blocked++
		} else {
			warned++
		}
		risk, _ := f.Result.HighestRisk()
		byRisk[risk] = append(byRisk[risk], f)
	}

	for _, risk := range riskOrder {
		group := byRisk[risk]
		if len(group) == 0 {
			continue
		}
		sort.Slice(group, func(i, j int) bool { return group[i].Statement.MapperID < group[j].Statement.MapperID })

		fmt.Fprintf(w, "[%s] %d finding(s)\n", risk, len(group))
		for _, f := range group {
			for _, v := range f.Result.Violations {
				fmt.Fprintf(w, "  %s: %s (%s) — %s\n", f.Statement.MapperID, v.Kind, v.RiskLevel, v.Message)
			}
		}
	}

	for _, f := range buildErrors {
		fmt.Fprintf(w, "[ERROR] %s: %v\n", f.Statement.MapperID, f.Err)
	}

	fmt.Fprintf(w, "\nscanned %d statement(s): %d blocked, %d warned, %d error(s), %d clean\n",
		len(findings), blocked, warned, len(buildErrors), len(findings)-blocked-warned-len(buildErrors))
}
