package abstract

import (
	"fmt"
	"strings"

	"go.ytsaurus.tech/library/go/core/xerrors"
)

// DefaultSchema is assumed for table references given without an explicit
// schema part.
const DefaultSchema = "dbo"

// TableID identifies a table within a database. Identity is plain struct
// equality; case sensitivity is left to the backend collation.
type TableID struct {
	Namespace string // schema
	Name      string
}

func (t TableID) String() string {
	return fmt.Sprintf("%v.%v", t.Namespace, t.Name)
}

// Fqtn renders the bracket-quoted form used in generated SQL.
func (t TableID) Fqtn() string {
	return fmt.Sprintf("[%v].[%v]", t.Namespace, t.Name)
}

// ParseTableID accepts "schema.table", "[schema].[table]" and bare "table"
// (which gets DefaultSchema). Bracket quoting protects dots inside names.
func ParseTableID(ref string) (TableID, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return TableID{}, xerrors.New("empty table reference")
	}

	parts, err := splitTableRef(ref)
	if err != nil {
		return TableID{}, err
	}
	switch len(parts) {
	case 1:
		return TableID{Namespace: DefaultSchema, Name: parts[0]}, nil
	case 2:
		return TableID{Namespace: parts[0], Name: parts[1]}, nil
	default:
		return TableID{}, xerrors.Errorf("table reference %q has %v parts, want schema.table", ref, len(parts))
	}
}

func splitTableRef(ref string) ([]string, error) {
	var parts []string
	var current strings.Builder
	inBrackets := false
	for _, r := range ref {
		switch {
		case r == '[' && !inBrackets:
			inBrackets = true
		case r == ']' && inBrackets:
			inBrackets = false
		case r == '.' && !inBrackets:
			parts = append(parts, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if inBrackets {
		return nil, xerrors.Errorf("table reference %q has an unclosed bracket", ref)
	}
	parts = append(parts, current.String())
	for _, part := range parts {
		if part == "" {
			return nil, xerrors.Errorf("table reference %q has an empty name part", ref)
		}
	}
	return parts, nil
}
