package sqlcontext

import "strings"

// SqlType is the coarse statement classification carried on SqlContext.
type SqlType string

const (
	SqlSelect  SqlType = "SELECT"
	SqlUpdate  SqlType = "UPDATE"
	SqlDelete  SqlType = "DELETE"
	SqlInsert  SqlType = "INSERT"
	SqlCall    SqlType = "CALL"
	SqlDDL     SqlType = "DDL"
	SqlShow    SqlType = "SHOW"
	SqlUse     SqlType = "USE"
	SqlSet     SqlType = "SET"
	SqlUnknown SqlType = "UNKNOWN"
)

// InferSqlType infers a SqlType from the leading keyword of a raw SQL
// string, used when the host does not supply sqlType explicitly (§6:
// "sqlType set or inferable from sql prefix").
func InferSqlType(sql string) SqlType {
	trimmed := strings.TrimLeft(sql, " \t\r\n")
	// skip a leading line or block comment so text-pattern checkers and
	// type inference agree on what the "first token" is.
	for {
		switch {
		case strings.HasPrefix(trimmed, "--"):
			if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
				trimmed = strings.TrimLeft(trimmed[idx+1:], " \t\r\n")
				continue
			}
			return SqlUnknown
		case strings.HasPrefix(trimmed, "/*"):
			if idx := strings.Index(trimmed, "*/"); idx >= 0 {
				trimmed = strings.TrimLeft(trimmed[idx+2:], " \t\r\n")
				continue
			}
			return SqlUnknown
		}
		break
	}

	upper := strings.ToUpper(trimmed)
	switch {
	case strings.HasPrefix(upper, "SELECT"):
		return SqlSelect
	case strings.HasPrefix(upper, "UPDATE"):
		return SqlUpdate
	case strings.HasPrefix(upper, "DELETE"):
		return SqlDelete
	case strings.HasPrefix(upper, "INSERT"), strings.HasPrefix(upper, "REPLACE"):
		return SqlInsert
	case strings.HasPrefix(upper, "CALL"), strings.HasPrefix(upper, "EXEC "), strings.HasPrefix(upper, "EXECUTE"):
		return SqlCall
	case strings.HasPrefix(upper, "CREATE"), strings.HasPrefix(upper, "ALTER"),
		strings.HasPrefix(upper, "DROP"), strings.HasPrefix(upper, "TRUNCATE"),
		strings.HasPrefix(upper, "RENAME"):
		return SqlDDL
	case strings.HasPrefix(upper, "SHOW"), strings.HasPrefix(upper, "DESCRIBE"),
		strings.HasPrefix(upper, "DESC "), strings.HasPrefix(upper, "EXPLAIN"):
		return SqlShow
	case strings.HasPrefix(upper, "USE"):
		return SqlUse
	case strings.HasPrefix(upper, "SET"):
		return SqlSet
	default:
		return SqlUnknown
	}
}
