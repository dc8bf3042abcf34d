package screen

import (
	"strconv"
	"strings"
)

// PageSize is the default page size for paginated listings.
const PageSize = 10

// pageAction is what the user chose at a paginated-list prompt.
type pageAction int

const (
	pageNext pageAction = iota
	pagePrev
	pageQuit
	pageSelect
	pageInvalid
)

// paginate slices items into the page starting at offset, returning the
// page's items and whether a next/previous page exists.
func paginate[T any](items []T, offset int) (page []T, hasNext, hasPrev bool) {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		offset = 0
	}
	end := offset + PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end], end < len(items), offset > 0
}

// parsePageChoice interprets a pagination prompt response: "N"/""/space
// advances, "P" goes back, "Q" quits, a bare integer selects an item by
// its displayed 1-based index within the current page (returned via
// selection), anything else is invalid.
func parsePageChoice(input string) (action pageAction, selection int) {
	trimmed := strings.TrimSpace(input)
	upper := strings.ToUpper(trimmed)
	switch upper {
	case "N", "":
		return pageNext, 0
	case "P":
		return pagePrev, 0
	case "Q":
		return pageQuit, 0
	}
	if n, err := strconv.Atoi(trimmed); err == nil && n > 0 {
		return pageSelect, n
	}
	return pageInvalid, 0
}
