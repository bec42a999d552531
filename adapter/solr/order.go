package solr

import (
	"regexp"
	"strings"
)

// SortField is one entry of a request's sort order.
type SortField struct {
	Field      string
	Descending bool
}

var orderField = regexp.MustCompile(`^<%=\s*field\[\s*["'](.*?)["']\s*\]\s*%>$`)

// ParseOrder parses "order" metadata: comma separated entries of the form
// <%=field["name"]%>:DESC or name:ASC. A missing direction sorts ascending.
func ParseOrder(order string) []SortField {
	var fields []SortField
	for _, entry := range strings.Split(order, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		name, direction := entry, ""
		if i := strings.LastIndex(entry, ":"); i >= 0 && !strings.HasSuffix(entry, "%>") {
			name, direction = strings.TrimSpace(entry[:i]), strings.TrimSpace(entry[i+1:])
		}
		if m := orderField.FindStringSubmatch(name); m != nil {
			name = m[1]
		}
		if name == "" {
			continue
		}
		fields = append(fields, SortField{Field: name, Descending: strings.EqualFold(direction, "DESC")})
	}
	return fields
}

// SortParam renders fields as a Solr sort parameter, e.g. "price desc,name asc".
func SortParam(fields []SortField) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Descending {
			parts = append(parts, f.Field+" desc")
		} else {
			parts = append(parts, f.Field+" asc")
		}
	}
	return strings.Join(parts, ",")
}
