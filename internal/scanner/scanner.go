// Package scanner implements the static scanner driver: it walks a
// project tree for MyBatis-style XML mapper files and extracts
// (sql, mapperId) pairs to feed through pkg/validator, the same way the
// teacher's template_engine.go walks a template directory for files to
// parse (internal/ui/template_engine.go's filepath.Walk pattern,
// generalized from `.html` to `.xml` and from template parsing to XML
// statement extraction).
package scanner

import (
	"encoding/xml"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// statementTags are the MyBatis mapper elements that carry SQL.
var statementTags = map[string]bool{
	"select": true,
	"insert": true,
	"update": true,
	"delete": true,
}

// Statement is one extracted (sql, mapperId) pair, ready for
// sqlcontext.Builder.
type Statement struct {
	MapperID string
	SQL      string
	SqlType  string
	File     string
	Line     int
}

// mapperXML mirrors the subset of MyBatis mapper XML this scanner reads.
// Mixed content (plain text plus <if>/<where>/<foreach> dynamic-SQL
// fragments) is flattened to its character data via CharData, discarding
// the dynamic tags themselves — a conservative static approximation,
// consistent with treating the scanner as a lenient-parse deployment
// mode: tolerate dynamic SQL rather than reject it outright.
type mapperXML struct {
	XMLName    xml.Name        `xml:"mapper"`
	Namespace  string          `xml:"namespace,attr"`
	Statements []statementNode `xml:",any"`
}

type statementNode struct {
	XMLName xml.Name
	ID      string `xml:"id,attr"`
	Inner   string `xml:",innerxml"`
}

// Scan walks root for *.xml files, parses each as a MyBatis mapper, and
// returns every statement it contains. Files that aren't valid mapper
// XML (no <mapper> root) are skipped rather than failing the whole walk,
// since a project tree can contain unrelated XML (Spring config, POM
// files under a name that happens to end .xml).
func Scan(root string) ([]Statement, error) {
	var out []Statement

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".xml") {
			return nil
		}

		stmts, err := scanFile(path)
		if err != nil {
			return fmt.Errorf("sqlguard: scanning %s: %w", path, err)
		}
		out = append(out, stmts...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func scanFile(path string) ([]Statement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var mapper mapperXML
	if err := xml.Unmarshal(data, &mapper); err != nil {
		// Not mapper XML (or malformed); not this scanner's problem to
		// report, the host decides whether to fail loudly on fs.Walk.
		return nil, nil
	}
	if mapper.XMLName.Local != "mapper" {
		return nil, nil
	}

	var out []Statement
	for _, node := range mapper.Statements {
		tag := node.XMLName.Local
		if !statementTags[tag] {
			continue
		}
		mapperID := node.ID
		if mapper.Namespace != "" {
			mapperID = mapper.Namespace + "." + node.ID
		}
		out = append(out, Statement{
			MapperID: mapperID,
			SQL:      normalizeInnerXML(node.Inner),
			SqlType:  strings.ToUpper(tag),
			File:     path,
		})
	}
	return out, nil
}

// normalizeInnerXML strips the dynamic-SQL element tags MyBatis mappers
// commonly embed (<if>, <where>, <foreach>, <choose>, ...) and collapses
// whitespace, leaving plain SQL text with parameter placeholders intact.
func normalizeInnerXML(inner string) string {
	var sb strings.Builder
	decoder := xml.NewDecoder(strings.NewReader("<root>" + inner + "</root>"))
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		if cd, ok := tok.(xml.CharData); ok {
			sb.Write(cd)
			sb.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
