package models

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
)

// SearchParams maps a portal filter name to its value. A nil value means the
// filter is unset and is never sent upstream.
type SearchParams map[string]any

// DefaultSearchParams returns the compiled-in filters for a portal and category.
// The bool is false when the pair is unknown.
func DefaultSearchParams(portal Portal, category Category) (SearchParams, bool) {
	switch portal {
	case PortalOtodom:
		p := SearchParams{
			"ownerTypeSingleSelect": "ALL",
			"limit":                 "72",
			"daysSinceCreated":      1,
			"by":                    "LATEST",
			"direction":             "DESC",
			"viewType":              "listing",
			"priceMin":              nil,
			"priceMax":              nil,
		}
		switch category {
		case CategoryLands:
			p["areaMin"] = nil
			p["areaMax"] = nil
			p["plotType"] = "[BUILDING]"
			p["pricePerMeterMin"] = nil
			p["pricePerMeterMax"] = nil
		case CategoryHouses, CategoryApartments:
		default:
			return nil, false
		}
		return p, true
	case PortalDomiporta:
		switch category {
		case CategoryLands, CategoryHouses, CategoryApartments:
			return SearchParams{
				"SortingOrder": "InsertionDate",
				"RowsPerPage":  "60",
			}, true
		}
	}
	return nil, false
}

// Merge returns a new SearchParams with overrides applied on top of p.
func (p SearchParams) Merge(overrides map[string]any) SearchParams {
	out := make(SearchParams, len(p)+len(overrides))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// With returns a copy of p with a single filter set.
func (p SearchParams) With(key string, value any) SearchParams {
	return p.Merge(map[string]any{key: value})
}

// Compact returns a copy without the unset filters.
func (p SearchParams) Compact() SearchParams {
	out := make(SearchParams, len(p))
	for k, v := range p {
		if v != nil {
			out[k] = v
		}
	}
	return out
}

// Values renders the set filters as a query string.
func (p SearchParams) Values() url.Values {
	values := url.Values{}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := p[k]
		if v == nil {
			continue
		}
		if list, ok := v.([]any); ok {
			for _, item := range list {
				values.Add(k, formatParam(item))
			}
			continue
		}
		values.Set(k, formatParam(v))
	}
	return values
}

func formatParam(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
