package query

import (
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// Defaults and bounds for list pagination. The limit range is enforced at
// the validation boundary; Parse clamps again so a malformed value can
// never reach the persistence layer.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	DefaultSort  = "-createdAt"
)

// reserved keys are consumed by pagination/sorting and never become filters.
var reservedKeys = map[string]struct{}{
	"page":      {},
	"limit":     {},
	"sort":      {},
	"requester": {},
}

// textColumns are matched as case-insensitive substrings; all other
// columns use exact equality.
var textColumns = map[string]struct{}{
	"name":       {},
	"created_by": {},
	"updated_by": {},
}

// ListQuery captures pagination, sorting and free-form filters for a
// resource list request.
type ListQuery struct {
	Page    int
	Limit   int
	Sort    string
	Filters map[string]string
}

// Parse builds a ListQuery from a raw request parameter bag, applying
// defaults and clamping the limit into its documented range.
func Parse(raw map[string]string) ListQuery {
	q := ListQuery{
		Page:    DefaultPage,
		Limit:   DefaultLimit,
		Sort:    DefaultSort,
		Filters: map[string]string{},
	}

	for key, value := range raw {
		trimmedKey := strings.TrimSpace(key)
		trimmedValue := strings.TrimSpace(value)
		if trimmedKey == "" || trimmedValue == "" {
			continue
		}

		switch trimmedKey {
		case "page":
			if page, err := strconv.Atoi(trimmedValue); err == nil && page >= 1 {
				q.Page = page
			}
		case "limit":
			if limit, err := strconv.Atoi(trimmedValue); err == nil {
				q.Limit = clampLimit(limit)
			}
		case "sort":
			q.Sort = trimmedValue
		case "requester":
			// identity is resolved by the auth layer, never a filter
		default:
			q.Filters[trimmedKey] = trimmedValue
		}
	}

	return q
}

// Offset returns the row offset implied by page and limit.
func (q ListQuery) Offset() int {
	page := q.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * q.Limit
}

// Scope translates the free-form filters into a gorm scope. Filter keys
// are resolved through the caller-supplied mapping table before being
// applied; keys that do not survive column normalisation are dropped
// rather than passed through.
func (q ListQuery) Scope(mapping map[string]string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for key, value := range q.Filters {
			field := key
			if mapped, ok := mapping[key]; ok {
				field = mapped
			}

			column := Columnize(field)
			if column == "" {
				continue
			}

			if _, ok := textColumns[column]; ok {
				pattern := "%" + strings.ToLower(value) + "%"
				db = db.Where("LOWER("+column+") LIKE ?", pattern)
				continue
			}

			db = db.Where(column+" = ?", value)
		}
		return db
	}
}

// OrderClause converts the sort expression ("-createdAt" style) into a SQL
// ORDER BY fragment. Unknown or unsafe columns fall back to the default.
func (q ListQuery) OrderClause() string {
	sort := strings.TrimSpace(q.Sort)
	if sort == "" {
		sort = DefaultSort
	}

	direction := "ASC"
	if strings.HasPrefix(sort, "-") {
		direction = "DESC"
		sort = sort[1:]
	}

	column := Columnize(sort)
	if column == "" {
		column = "created_at"
		direction = "DESC"
	}

	return column + " " + direction
}

// Columnize converts a camelCase field name into its snake_case column and
// rejects anything that is not a plain identifier. An empty return value
// means the field must not be interpolated into SQL.
func Columnize(field string) string {
	field = strings.TrimSpace(field)
	if field == "" {
		return ""
	}

	var b strings.Builder
	for i, r := range field {
		switch {
		case r >= 'A' && r <= 'Z':
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_':
			b.WriteRune(r)
		default:
			return ""
		}
	}

	column := b.String()
	if column == "" || (column[0] >= '0' && column[0] <= '9') {
		return ""
	}
	return column
}

func clampLimit(limit int) int {
	if limit < 1 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
