package service

// Paging holds the page size policy shared by list operations.
type Paging struct {
	DefaultLimit int
	MaxLimit     int
	// DefaultSuggestions is the suggested-users page size when none is given.
	DefaultSuggestions int
}

// DefaultPaging is used when the caller supplies a zero Paging.
var DefaultPaging = Paging{DefaultLimit: 10, MaxLimit: 100, DefaultSuggestions: 20}

func (p Paging) withDefaults() Paging {
	if p.DefaultLimit <= 0 {
		p.DefaultLimit = DefaultPaging.DefaultLimit
	}
	if p.MaxLimit <= 0 {
		p.MaxLimit = DefaultPaging.MaxLimit
	}
	if p.DefaultSuggestions <= 0 {
		p.DefaultSuggestions = DefaultPaging.DefaultSuggestions
	}
	return p
}

// normalize clamps page to >= 1 and limit into [1, MaxLimit] and returns
// the matching row offset.
func (p Paging) normalize(page, limit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = p.DefaultLimit
	}
	if limit > p.MaxLimit {
		limit = p.MaxLimit
	}
	return page, limit, (page - 1) * limit
}

func (p Paging) suggestionLimit(limit int) int {
	if limit <= 0 {
		return p.DefaultSuggestions
	}
	if limit > p.MaxLimit {
		return p.MaxLimit
	}
	return limit
}
