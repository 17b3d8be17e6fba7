package pagination

import (
	"strconv"

	"github.com/MrJamesThe3rd/invoiceai/internal/apperr"
)

const (
	DefaultSkip  = 0
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Page is an offset window over a listing.
type Page struct {
	Skip  int
	Limit int
}

func Default() Page {
	return Page{Skip: DefaultSkip, Limit: DefaultLimit}
}

// Parse reads skip/limit query values. Empty values take the defaults;
// malformed or out-of-range values are a validation failure.
func Parse(skip, limit string) (Page, error) {
	p := Default()

	if skip != "" {
		n, err := strconv.Atoi(skip)
		if err != nil || n < 0 {
			return Page{}, apperr.Invalid("skip", "must be a non-negative integer")
		}

		p.Skip = n
	}

	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 || n > MaxLimit {
			return Page{}, apperr.Invalid("limit", "must be between 1 and "+strconv.Itoa(MaxLimit))
		}

		p.Limit = n
	}

	return p, nil
}

// Normalize fills a zero Page with defaults.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}

	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}

	if p.Skip < 0 {
		p.Skip = 0
	}

	return p
}
