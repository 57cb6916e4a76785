package service

// DefaultPageLimit is the page size used when the caller gives none.
const DefaultPageLimit = 25

func normalizePage(limit, skip int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if skip < 0 {
		skip = 0
	}
	return limit, skip
}
