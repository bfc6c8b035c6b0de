// Package hashkey derives deterministic cache keys from HTTP request
// descriptors.
//
// Two requests that differ only in the insertion order of their parameter
// map, or in the order of a set-valued parameter, must produce the same
// key. Sequence order, by contrast, is semantically meaningful and is
// preserved. The canonical form is a nested tuple structure; its
// deterministic textual representation is digested with SHA-256 and
// base64-encoded into a fixed-width string key suitable for external
// cache stores.
//
// Design decision: The digest is not load-bearing for security, only for
// key width. Structural equality of the canonical form is the real key;
// SHA-256 is used because collisions are then a non-concern and the output
// is a stable 44-character string on every store backend.
package hashkey
