package articles

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/sygemat/provider-portal/internal/domain/models"
)

// StockBucket selects articles by consolidated stock level.
type StockBucket string

const (
	StockAll  StockBucket = "all"
	StockIn   StockBucket = "inStock"
	StockOut  StockBucket = "outOfStock"
	StockLow  StockBucket = "lowStock"
	StockHigh StockBucket = "highStock"
)

const lowStockThreshold = 5

// Matches applies the bucket predicate to a consolidated stock quantity.
func (b StockBucket) Matches(qty float64) bool {
	switch b {
	case StockIn:
		return qty > 0
	case StockOut:
		return qty == 0
	case StockLow:
		return qty > 0 && qty < lowStockThreshold
	case StockHigh:
		return qty >= lowStockThreshold
	default:
		return true
	}
}

// ParseStockBucket maps user input to a bucket, defaulting to all.
func ParseStockBucket(s string) StockBucket {
	switch StockBucket(s) {
	case StockIn, StockOut, StockLow, StockHigh:
		return StockBucket(s)
	default:
		return StockAll
	}
}

// SortColumn names a sortable catalog column using the vendor field names the
// front-end already speaks.
type SortColumn string

const (
	SortByName   SortColumn = "name"
	SortByID     SortColumn = "id"
	SortBySku    SortColumn = "sku_prv"
	SortByRef    SortColumn = "ref"
	SortByStock  SortColumn = "stk_con"
	SortByCost   SortColumn = "cos_net"
	SortByPrice  SortColumn = "pre_net"
	SortByMarkup SortColumn = "mar"
)

// SortOrder is the sort direction.
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// ParseSortColumn defaults to name for unrecognized input.
func ParseSortColumn(s string) SortColumn {
	switch SortColumn(s) {
	case SortByName, SortByID, SortBySku, SortByRef, SortByStock, SortByCost, SortByPrice, SortByMarkup:
		return SortColumn(s)
	default:
		return SortByName
	}
}

// ParseSortOrder defaults to ascending.
func ParseSortOrder(s string) SortOrder {
	if SortOrder(s) == Descending {
		return Descending
	}
	return Ascending
}

// NextSort encodes the column-click rule: clicking the active column flips the
// direction, clicking a new column selects it ascending.
func NextSort(current SortColumn, order SortOrder, clicked SortColumn) (SortColumn, SortOrder) {
	if clicked == current {
		if order == Ascending {
			return current, Descending
		}
		return current, Ascending
	}
	return clicked, Ascending
}

// Query is one filter/sort request over a fetched catalog.
type Query struct {
	Search     string
	Stock      StockBucket
	ProviderID int // admin-only provider restriction; 0 means no restriction
	SortBy     SortColumn
	Order      SortOrder
}

const taxRate = 1.21

// DisplayPrice converts a net price to the tax-inclusive value shown to the
// user, rounded to currency precision. Applied at display time only; the raw
// net value is never rewritten.
func DisplayPrice(net float64) float64 {
	return math.Round(net*taxRate*100) / 100
}

// Apply runs the pure filter/sort pipeline. The input slice is never mutated,
// so the same query can be re-applied on every keystroke.
func Apply(in []models.Article, q Query) []models.Article {
	out := make([]models.Article, 0, len(in))

	search := strings.ToLower(strings.TrimSpace(q.Search))
	for _, a := range in {
		if search != "" && !matchesSearch(a, search) {
			continue
		}
		if !q.Stock.Matches(a.StkCon) {
			continue
		}
		if q.ProviderID != 0 && a.Prv != q.ProviderID {
			continue
		}
		out = append(out, a)
	}

	sortArticles(out, q.SortBy, q.Order)
	return out
}

func matchesSearch(a models.Article, search string) bool {
	return strings.Contains(strings.ToLower(a.Name), search) ||
		strings.Contains(strconv.Itoa(a.ID), search) ||
		strings.Contains(strings.ToLower(a.SkuPrv), search) ||
		strings.Contains(strings.ToLower(a.Ref), search)
}

func sortArticles(articles []models.Article, column SortColumn, order SortOrder) {
	// Collators are cheap to build and not safe for concurrent use, so one per
	// call rather than a shared instance.
	coll := collate.New(language.Spanish, collate.IgnoreCase)

	less := func(a, b models.Article) bool {
		var cmp int
		switch column {
		case SortByID:
			cmp = compareFloat(float64(a.ID), float64(b.ID))
		case SortBySku:
			cmp = coll.CompareString(a.SkuPrv, b.SkuPrv)
		case SortByRef:
			cmp = coll.CompareString(a.Ref, b.Ref)
		case SortByStock:
			cmp = compareFloat(a.StkCon, b.StkCon)
		case SortByCost:
			cmp = compareFloat(DisplayPrice(a.CosNet), DisplayPrice(b.CosNet))
		case SortByPrice:
			// Price columns compare on the displayed tax-inclusive value.
			cmp = compareFloat(DisplayPrice(a.PreNet), DisplayPrice(b.PreNet))
		case SortByMarkup:
			cmp = compareFloat(a.Mar, b.Mar)
		default:
			cmp = coll.CompareString(a.Name, b.Name)
		}
		if order == Descending {
			return cmp > 0
		}
		return cmp < 0
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return less(articles[i], articles[j])
	})
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// DeriveProviders recomputes the providers visible in a fetched catalog for
// the admin view, in ascending id order.
func DeriveProviders(in []models.Article) []models.Provider {
	seen := make(map[int]struct{})
	var ids []int
	for _, a := range in {
		if _, ok := seen[a.Prv]; ok {
			continue
		}
		seen[a.Prv] = struct{}{}
		ids = append(ids, a.Prv)
	}
	sort.Ints(ids)

	providers := make([]models.Provider, 0, len(ids))
	for _, id := range ids {
		providers = append(providers, models.Provider{
			ID:          id,
			Name:        fmt.Sprintf("Proveedor %d", id),
			EsProveedor: true,
		})
	}
	return providers
}
