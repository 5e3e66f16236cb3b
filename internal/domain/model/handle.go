package model

// Source indicates where a resolved asset handle came from.
type Source string

const (
	// SourceCache means the payload was served from the asset store.
	SourceCache Source = "cache"
	// SourceNetwork means the payload was fetched from the origin on this call.
	SourceNetwork Source = "network"
	// SourceDirect means no payload is available locally; the caller should
	// stream straight from URL. This is the degraded fallback, never an error.
	SourceDirect Source = "direct"
	// SourceEmpty is returned for an empty input URL.
	SourceEmpty Source = "empty"
)

// Handle is a locally constructed reference to a clip's content, distinct
// from the network URL that sourced it. Each Resolve call produces an
// independent Handle; callers own their copy.
type Handle struct {
	// URL is the canonical asset URL (the cache key). Always set except for
	// SourceEmpty.
	URL string
	// Data holds the payload for SourceCache and SourceNetwork. Nil for
	// SourceDirect and SourceEmpty.
	Data []byte
	// Size is the declared byte length from the origin (0 when the origin
	// sent no length). Used for budget accounting only.
	Size int64
	// Source records how the handle was produced, so callers can surface
	// degraded-mode diagnostics without the cache raising errors.
	Source Source
}

// Playable reports whether the handle carries locally served bytes.
func (h Handle) Playable() bool {
	return h.Source == SourceCache || h.Source == SourceNetwork
}
