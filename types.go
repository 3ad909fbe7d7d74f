package jsonify

// ReplacerFunc is the JSON.stringify-compatible transform function. It is
// called once with an empty key for the root (allowing the root itself to be
// substituted), then once per member with that member's key or stringified
// index. Items of an item source serialize as sub-roots and also receive the
// empty key, but only the true root is shape-checked: a transform of a
// sequence root must return a sequence, while items and members may change
// shape freely. Returning Undefined or a func value removes the member from
// an object and maps it to null inside an array.
type ReplacerFunc func(key string, v any) any

// EncodeOpt bundles serialization options. When passed variadically the last
// value wins; when both Replacer and Allow are set, Replacer takes
// precedence.
type EncodeOpt struct {
	// Replacer transforms every value before emission.
	Replacer ReplacerFunc
	// Allow retains only the listed keys of every object at every nesting
	// level. It never filters array elements.
	Allow []string
	// Indent enables pretty output, one copy per nesting level, following
	// JSON.stringify gap semantics.
	Indent string
}
