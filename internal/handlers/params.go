package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/01moynul/vividen-storefront/internal/store"
)

func badParam(field, message string) error {
	return &store.ValidationError{Field: field, Message: message}
}

// firstQuery returns the value of the first query key present.
func firstQuery(c *gin.Context, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := c.GetQuery(k); ok {
			return v, true
		}
	}
	return "", false
}

func parseLimit(c *gin.Context, def int) (int, error) {
	raw, ok := c.GetQuery("limit")
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, badParam("limit", "must be a whole number")
	}
	if n < 1 {
		return 0, badParam("limit", "must be at least 1")
	}
	if n > store.MaxPageSize {
		return 0, badParam("limit", "must not exceed "+strconv.Itoa(store.MaxPageSize))
	}
	return n, nil
}

func parseOffset(c *gin.Context) (int, error) {
	raw, ok := c.GetQuery("offset")
	if !ok {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, badParam("offset", "must be a whole number")
	}
	if n < 0 {
		return 0, badParam("offset", "must not be negative")
	}
	return n, nil
}

func parsePrice(c *gin.Context, key string) (*decimal.Decimal, error) {
	raw, ok := c.GetQuery(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return nil, badParam(key, "must be a decimal number")
	}
	return &d, nil
}

// parseProductQuery reads the listing filters shared by every product
// endpoint. defLimit is used when no limit is given; 0 means unlimited.
func parseProductQuery(c *gin.Context, defLimit int) (store.ProductQuery, error) {
	var q store.ProductQuery
	var err error

	q.CategoryID, _ = firstQuery(c, "categoryId", "category")
	q.Search, _ = firstQuery(c, "search", "q")
	q.FileFormat = c.Query("fileFormat")

	if raw, ok := c.GetQuery("featured"); ok && raw != "" {
		q.Featured, err = strconv.ParseBool(raw)
		if err != nil {
			return q, badParam("featured", "must be true or false")
		}
	}
	if raw, ok := firstQuery(c, "sort", "sortBy"); ok && raw != "" {
		q.Sort = store.Sort(raw)
	}
	if q.MinPrice, err = parsePrice(c, "minPrice"); err != nil {
		return q, err
	}
	if q.MaxPrice, err = parsePrice(c, "maxPrice"); err != nil {
		return q, err
	}
	if q.Limit, err = parseLimit(c, defLimit); err != nil {
		return q, err
	}
	if q.Offset, err = parseOffset(c); err != nil {
		return q, err
	}

	return q, q.Validate()
}
