package checkers

import "github.com/sqlguard/sqlguard/pkg/sqlcontext"

// SqlCommentConfig is the typed config for SqlComment (§4.3.C).
type SqlCommentConfig struct {
	sqlcontext.CheckerConfig
}

// SqlCommentChecker is a text-pattern checker (§4.3.C): it scans the raw
// SQL string for `--` or `/* ... */` comment tokens outside of string
// literals, independent of whether the statement parsed. This is the
// one checker explicitly required to still fire on lenient-mode
// Unparsed input (§8 invariant 9).
type SqlCommentChecker struct {
	cfg SqlCommentConfig
}

func NewSqlCommentChecker(cfg SqlCommentConfig) *SqlCommentChecker {
	return &SqlCommentChecker{cfg: cfg}
}

func (c *SqlCommentChecker) Name() string                  { return "SqlComment" }
func (c *SqlCommentChecker) Enabled() bool                   { return c.cfg.Enabled }
func (c *SqlCommentChecker) RiskLevel() sqlcontext.RiskLevel { return c.cfg.RiskLevel }

func (c *SqlCommentChecker) Check(ctx *sqlcontext.SqlContext, result *sqlcontext.ValidationResult) {
	if !containsUnquotedComment(ctx.SQL()) {
		return
	}
	addViolation(result, c.cfg.RiskLevel, c.Name(),
		"SQL text contains a comment token",
		"remove comments from runtime SQL; they can hide commented-out conditions",
		nil)
}

// containsUnquotedComment scans for `--` and `/* */` outside of single-
// or double-quoted string literals, tracking quote state char-by-char
// so a literal like `'--not a comment'` does not false-positive.
func containsUnquotedComment(sql string) bool {
	var quote byte
	for i := 0; i < len(sql); i++ {
		ch := sql[i]
		if quote != 0 {
			if ch == quote {
				quote = 0
			} else if ch == '\\' && i+1 < len(sql) {
				i++
			}
			continue
		}
		switch ch {
		case '\'', '"', '`':
			quote = ch
		case '-':
			if i+1 < len(sql) && sql[i+1] == '-' {
				return true
			}
		case '/':
			if i+1 < len(sql) && sql[i+1] == '*' {
				return true
			}
		}
	}
	return false
}
