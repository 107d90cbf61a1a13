// Package dedupe suppresses repeated processing of transaction signatures.
package dedupe

import "context"

// Deduper answers whether a signature was already admitted within the
// retention horizon. The first caller for a given id wins; concurrent
// callers with the same id see alreadySeen=true.
type Deduper interface {
	// Seen records id and reports whether it was already recorded.
	// alreadySeen=true means the notification is a duplicate and must
	// be dropped silently.
	Seen(ctx context.Context, id string) (alreadySeen bool, err error)
}
