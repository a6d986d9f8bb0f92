package transfer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var errContentRange = errors.New("malformed Content-Range")

// ContentRange is the parsed "bytes start-end/total" header. Total is -1 when
// the server reports it as "*".
type ContentRange struct {
	Start int64
	End   int64
	Total int64
}

func ParseContentRange(header string) (ContentRange, error) {
	unit, rng, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || unit != "bytes" {
		return ContentRange{}, fmt.Errorf("%w: %q", errContentRange, header)
	}

	span, total, ok := strings.Cut(rng, "/")
	if !ok {
		return ContentRange{}, fmt.Errorf("%w: %q", errContentRange, header)
	}

	start, end, ok := strings.Cut(span, "-")
	if !ok {
		return ContentRange{}, fmt.Errorf("%w: %q", errContentRange, header)
	}

	var (
		cr  = ContentRange{Total: -1}
		err error
	)

	if cr.Start, err = strconv.ParseInt(start, 10, 64); err != nil {
		return ContentRange{}, errors.Join(errContentRange, err)
	}
	if cr.End, err = strconv.ParseInt(end, 10, 64); err != nil {
		return ContentRange{}, errors.Join(errContentRange, err)
	}
	if total != "*" {
		if cr.Total, err = strconv.ParseInt(total, 10, 64); err != nil {
			return ContentRange{}, errors.Join(errContentRange, err)
		}
	}

	if cr.End < cr.Start || (cr.Total >= 0 && cr.End >= cr.Total) {
		return ContentRange{}, fmt.Errorf("%w: %q", errContentRange, header)
	}

	return cr, nil
}

// Last reports whether the served range reaches the end of the resource.
func (c ContentRange) Last() bool {
	return c.Total >= 0 && c.End == c.Total-1
}

func rangeHeader(start, end int64) string {
	return fmt.Sprintf("bytes=%d-%d", start, end)
}
