// Package pagination slices ordered listings into fixed-size pages.
//
// Page numbers are 1-based. A missing or unparseable page number resolves
// to 1 and a number past the end clamps to the last valid page, so an
// overlong URL never produces an empty page or an error. Zero items yield
// a single empty page (page 1 of 1).
package pagination

import "strconv"

// Page is one page of an ordered listing plus its metadata.
type Page[T any] struct {
	Items       []T  `json:"items"`
	Number      int  `json:"number"`
	NumPages    int  `json:"num_pages"`
	Count       int  `json:"count"`
	HasPrevious bool `json:"has_previous"`
	HasNext     bool `json:"has_next"`
}

// ParsePageNumber converts a raw query value into a page number,
// defaulting to 1 when absent or unparseable.
func ParsePageNumber(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// NumPages returns the number of pages needed for count items.
// An empty listing still has one (empty) page.
func NumPages(count, pageSize int) int {
	if pageSize < 1 {
		pageSize = 1
	}
	if count <= 0 {
		return 1
	}
	return (count + pageSize - 1) / pageSize
}

// ClampPage clamps a requested page number into [1, numPages].
func ClampPage(number, numPages int) int {
	if number < 1 {
		return 1
	}
	if number > numPages {
		return numPages
	}
	return number
}

// Offset returns the item offset of the given (already clamped) page.
func Offset(number, pageSize int) int {
	if number < 1 {
		number = 1
	}
	return (number - 1) * pageSize
}

// Paginate slices items into the requested page.
func Paginate[T any](items []T, pageSize, number int) Page[T] {
	if pageSize < 1 {
		pageSize = 1
	}
	count := len(items)
	numPages := NumPages(count, pageSize)
	number = ClampPage(number, numPages)

	start := Offset(number, pageSize)
	if start > count {
		start = count
	}
	end := start + pageSize
	if end > count {
		end = count
	}

	return PageOf(items[start:end], count, pageSize, number)
}

// PageOf wraps an already-sliced page of items with its metadata. Callers
// that page in the database (count + limit/offset) build pages through this.
func PageOf[T any](items []T, count, pageSize, number int) Page[T] {
	numPages := NumPages(count, pageSize)
	number = ClampPage(number, numPages)
	return Page[T]{
		Items:       items,
		Number:      number,
		NumPages:    numPages,
		Count:       count,
		HasPrevious: number > 1,
		HasNext:     number < numPages,
	}
}
