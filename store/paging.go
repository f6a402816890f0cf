package store

import "strings"

// Pager carries list-endpoint pagination parameters.
type Pager struct {
	Sort  string
	Skip  int
	Limit int
}

// Page is one page of list results plus the unpaged total.
type Page struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
}

const defaultPageLimit = 50

// normalize clamps the pager to sane bounds and restricts the sort column to
// the given whitelist, falling back to the first entry.
func (p Pager) normalize(sortable ...string) Pager {
	sort := strings.TrimSpace(p.Sort)
	ok := false
	for _, col := range sortable {
		if sort == col {
			ok = true
			break
		}
	}
	if !ok {
		sort = sortable[0]
	}
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 || p.Limit > 1000 {
		p.Limit = defaultPageLimit
	}
	return Pager{Sort: sort, Skip: p.Skip, Limit: p.Limit}
}
