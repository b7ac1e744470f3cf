package query

import "strings"

// SortKey is one compiled ordering term.
type SortKey struct {
	Column string
	Desc   bool
}

// CompileSort parses a comma-separated sort expression. A leading '-' sorts
// descending. Unknown attributes and empty tokens are skipped. Keys keep
// their given order so each acts as a tie-break on the previous.
func CompileSort(fields FieldSet, raw string) []SortKey {
	if raw == "" {
		return nil
	}

	var keys []SortKey
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		desc := strings.HasPrefix(token, "-")
		name := strings.TrimPrefix(token, "-")
		field, ok := fields[name]
		if !ok {
			continue
		}
		keys = append(keys, SortKey{Column: field.Column, Desc: desc})
	}
	return keys
}

// OrderBy renders compiled sort keys as an ORDER BY clause body. Returns ""
// when there is nothing to order by.
func OrderBy(keys []SortKey) string {
	if len(keys) == 0 {
		return ""
	}
	parts := make([]string, len(keys))
	for i, key := range keys {
		dir := "ASC"
		if key.Desc {
			dir = "DESC"
		}
		parts[i] = key.Column + " " + dir
	}
	return strings.Join(parts, ", ")
}
