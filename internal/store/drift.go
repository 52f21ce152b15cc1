package store

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/lib/pq"
)

// SchemaDriftError reports that the hosted schema is behind the code: a
// column or a whole table the core relies on does not exist yet.
type SchemaDriftError struct {
	Table     string
	Column    string
	Statement string
	Err       error
}

func (e *SchemaDriftError) Error() string {
	what := "table " + e.Table
	if e.Column != "" {
		what = fmt.Sprintf("column %s.%s", e.Table, e.Column)
	}
	if e.Statement == "" {
		return fmt.Sprintf("schema out of date: %s is missing", what)
	}
	return fmt.Sprintf("schema out of date: %s is missing; run: %s", what, e.Statement)
}

func (e *SchemaDriftError) Unwrap() error {
	return e.Err
}

var (
	quotedName = regexp.MustCompile(`['"]([A-Za-z0-9_.]+)['"]`)

	columnDDL = map[Collection]map[string]string{
		Submissions: {
			"ownerEmail":       "text",
			"referenceImages":  "jsonb",
			"resultDataUrl":    "text",
			"resultAddUrl":     "text",
			"resultRemoveUrl":  "text",
			"revisionNotes":    "text",
			"instructions":     "text",
			"paymentStatus":    "text not null default 'unpaid'",
			"stripeSessionId":  "text",
			"assignedEditorId": "text",
			"quotedAmount":     "bigint",
		},
		Editors: {
			"email":     "text",
			"specialty": "text",
		},
	}

	tableDDL = map[Collection]string{
		Messages:        `CREATE TABLE messages (id text primary key, submission_id text not null, sender_id text not null, sender_name text, sender_role text not null, content text not null, timestamp bigint not null);`,
		Plans:           `CREATE TABLE plans (id text primary key, title text not null, description text, price text, amount bigint, number text, quote_based boolean not null default false);`,
		ArchiveProjects: `CREATE TABLE archive_projects (id text primary key, title text not null, category text, before_url text, after_url text, description text, timestamp bigint not null);`,
	}
)

// ClassifyError turns store errors that indicate a missing column or
// table into a *SchemaDriftError. Other errors are returned unchanged.
func ClassifyError(c Collection, err error) error {
	if err == nil {
		return nil
	}
	var drift *SchemaDriftError
	if errors.As(err, &drift) {
		return err
	}

	code, msg := errorCode(err)
	switch code {
	case "PGRST204", "42703":
		drift := NewColumnDrift(c, missingName(msg, string(c)))
		drift.Err = err
		return drift
	case "PGRST205", "42P01":
		drift := NewTableDrift(c)
		drift.Err = err
		return drift
	}
	return err
}

func NewColumnDrift(c Collection, column string) *SchemaDriftError {
	return &SchemaDriftError{
		Table:     string(c),
		Column:    column,
		Statement: alterStatement(c, column),
	}
}

func NewTableDrift(c Collection) *SchemaDriftError {
	return &SchemaDriftError{
		Table:     string(c),
		Statement: tableDDL[c],
	}
}

// RequiredColumns lists, per collection, the columns added after the
// first hosted schema. A live schema missing any of them is drifted.
func RequiredColumns() map[Collection][]string {
	out := make(map[Collection][]string, len(columnDDL))
	for c, cols := range columnDDL {
		for name := range cols {
			out[c] = append(out[c], name)
		}
		sort.Strings(out[c])
	}
	return out
}

func errorCode(err error) (string, string) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Message
	}
	msg := err.Error()
	for _, code := range []string{"PGRST204", "PGRST205", "42703", "42P01"} {
		if strings.Contains(msg, code) {
			return code, msg
		}
	}
	return "", msg
}

// missingName picks the first quoted identifier that is not the table.
func missingName(msg, table string) string {
	for _, m := range quotedName.FindAllStringSubmatch(msg, -1) {
		name := m[1]
		if i := strings.LastIndex(name, "."); i >= 0 {
			name = name[i+1:]
		}
		if name != table {
			return name
		}
	}
	return ""
}

func alterStatement(c Collection, column string) string {
	if column == "" {
		return ""
	}
	ddl, ok := columnDDL[c][column]
	if !ok {
		ddl = "text"
	}
	return fmt.Sprintf(`ALTER TABLE %s ADD COLUMN "%s" %s;`, c, column, ddl)
}
