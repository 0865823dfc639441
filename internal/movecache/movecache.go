// Package movecache stores verified best moves keyed by position. A hit
// skips an engine search entirely; a miss costs nothing but the lookup.
package movecache

import "context"

// Store is a best-move cache keyed by FEN. Implementations must be safe for
// concurrent use. Only moves already verified legal belong in the cache;
// callers enforce that before Insert.
type Store interface {
	Lookup(ctx context.Context, fen string) (string, bool)
	Insert(ctx context.Context, fen string, moveUCI string)
}
