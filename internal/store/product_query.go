package store

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/01moynul/vividen-storefront/internal/database"
)

// Sort selects the ordering of a product listing.
type Sort string

const (
	SortNewest    Sort = "newest"
	SortOldest    Sort = "oldest"
	SortPriceLow  Sort = "price-low"
	SortPriceHigh Sort = "price-high"
	SortPopular   Sort = "popular"
)

// Ordering for each sort; id is always the final key so pages are stable.
var sortClauses = map[Sort]string{
	SortNewest:    "p.created_at DESC, p.id DESC",
	SortOldest:    "p.created_at ASC, p.id ASC",
	SortPriceLow:  "p.price ASC, p.created_at DESC, p.id DESC",
	SortPriceHigh: "p.price DESC, p.created_at DESC, p.id DESC",
	SortPopular:   "p.download_count DESC, p.created_at DESC, p.id DESC",
}

const (
	DefaultPageSize     = 50
	DefaultFeaturedSize = 8
	MaxPageSize         = 200
)

// likeEscape is the escape character used in every LIKE pattern. '!' needs
// no quoting in any supported dialect, unlike a backslash.
const likeEscape = "!"

var likeEscaper = strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")

// ProductQuery is the single filter set behind every product listing:
// the catalog page, featured products, category pages and search.
// Inactive products are always excluded.
type ProductQuery struct {
	CategoryID string
	Featured   bool   // true restricts to featured products; false applies no filter
	Search     string // case-insensitive substring of title or description; blank means no filter
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	FileFormat string // case-insensitive substring, formats are free text ("MP3, WAV")
	Sort       Sort   // empty means SortNewest

	// Limit 0 returns every match. Offset is applied after ordering.
	Limit  int
	Offset int
}

// Validate reports the first rule the query breaks.
func (q ProductQuery) Validate() error {
	if q.Limit < 0 {
		return invalid("limit", "must not be negative")
	}
	if q.Limit > MaxPageSize {
		return invalid("limit", "must not exceed %d", MaxPageSize)
	}
	if q.Offset < 0 {
		return invalid("offset", "must not be negative")
	}
	if q.MinPrice != nil && q.MinPrice.IsNegative() {
		return invalid("minPrice", "must not be negative")
	}
	if q.MaxPrice != nil && q.MaxPrice.IsNegative() {
		return invalid("maxPrice", "must not be negative")
	}
	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(*q.MaxPrice) {
		return invalid("minPrice", "must not exceed maxPrice")
	}
	if q.Sort != "" {
		if _, ok := sortClauses[q.Sort]; !ok {
			return invalid("sort", "unknown sort %q", q.Sort)
		}
	}
	return nil
}

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// build renders the query with '?' placeholders. Blank text filters are
// skipped; otherwise the term is matched as given, surrounding spaces included.
func (q ProductQuery) build(d database.Dialect) (string, []any) {
	var queryBuilder strings.Builder
	var args []any

	queryBuilder.WriteString(`SELECT ` + productColumns + ` FROM products p WHERE p.is_active = ?`)
	args = append(args, true)

	if q.CategoryID != "" {
		queryBuilder.WriteString(" AND p.category_id = ?")
		args = append(args, q.CategoryID)
	}
	if q.Featured {
		queryBuilder.WriteString(" AND p.is_featured = ?")
		args = append(args, true)
	}
	if strings.TrimSpace(q.Search) != "" {
		queryBuilder.WriteString(" AND (" + d.Lower("p.title") + " LIKE ? ESCAPE '" + likeEscape + "'" +
			" OR " + d.Lower("p.description") + " LIKE ? ESCAPE '" + likeEscape + "')")
		pattern := containsPattern(q.Search)
		args = append(args, pattern, pattern)
	}
	if q.MinPrice != nil {
		queryBuilder.WriteString(" AND p.price >= ?")
		args = append(args, *q.MinPrice)
	}
	if q.MaxPrice != nil {
		queryBuilder.WriteString(" AND p.price <= ?")
		args = append(args, *q.MaxPrice)
	}
	if strings.TrimSpace(q.FileFormat) != "" {
		queryBuilder.WriteString(" AND " + d.Lower("p.file_format") + " LIKE ? ESCAPE '" + likeEscape + "'")
		args = append(args, containsPattern(q.FileFormat))
	}

	sort := q.Sort
	if sort == "" {
		sort = SortNewest
	}
	queryBuilder.WriteString(" ORDER BY " + sortClauses[sort])

	switch {
	case q.Limit > 0:
		queryBuilder.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, q.Limit, q.Offset)
	case q.Offset > 0:
		// MySQL and SQLite only accept OFFSET together with LIMIT.
		queryBuilder.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, math.MaxInt32, q.Offset)
	}

	return queryBuilder.String(), args
}
