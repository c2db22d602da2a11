package instagram

import (
	"context"

	"instascraper/pkg/logger"
)

type fetchPage[T any] func(ctx context.Context, first int, after string) (page[T], error)

// paginate walks a cursor-paginated collection until limit items are
// collected or the platform stops advancing. A stalled cursor, an empty page
// and an explicit last page all end the walk. Any error discards the pages
// collected so far.
func paginate[T any](ctx context.Context, log logger.Logger, limit int, fetch fetchPage[T]) ([]T, error) {
	items := make([]T, 0, min(limit, DefaultPageSize))
	cursor := ""

	for {
		first := min(DefaultPageSize, limit-len(items))
		log.DebugWithFields("requesting page", map[string]interface{}{
			"first": first,
			"after": cursor,
		})

		p, err := fetch(ctx, first, cursor)
		if err != nil {
			return nil, err
		}
		items = append(items, p.items...)

		var reason string
		switch {
		case p.cursor == cursor:
			reason = "cursor did not advance"
		case len(items) >= limit:
			reason = "limit reached"
		case len(p.items) == 0:
			reason = "empty page"
		case p.last:
			reason = "last page"
		}
		if reason != "" {
			log.WithField("collected", len(items)).Debug("leaving pagination loop: " + reason)
			break
		}
		cursor = p.cursor
	}

	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}
