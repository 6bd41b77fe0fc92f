// ABOUTME: Error taxonomy for the posts action engine
// ABOUTME: The three typed failures surfaced to callers; everything else is fatal

package post

import "errors"

// ErrNotFound is returned when an operation references an id that does not exist.
var ErrNotFound = errors.New("post not found")

// ErrAlreadyExists is returned when a create is given an id that is already present.
var ErrAlreadyExists = errors.New("post already exists")

// ErrAmbiguousResult is returned when a uniqueness invariant is found broken at
// runtime: more than one row matched an id, or a post-write lookup failed to
// find the just-written row. It signals data corruption, not user error, and
// callers should treat it as a serious condition.
var ErrAmbiguousResult = errors.New("ambiguous result")
