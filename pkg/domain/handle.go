package domain

import "strings"

// DocumentHandle is an opaque reference to a document owned by the external
// executor: either the ActiveDocument sentinel or a file path. The core only
// holds and forwards it; lifecycle belongs to the executor.
type DocumentHandle string

// ActiveDocument refers to whichever document is active in the host process.
const ActiveDocument DocumentHandle = "active"

// NewHandle normalizes a caller-supplied target. An empty string or any
// casing of "active" maps to the ActiveDocument sentinel; everything else is
// forwarded verbatim (path normalization is host-side business).
func NewHandle(target string) DocumentHandle {
	if target == "" || strings.EqualFold(target, string(ActiveDocument)) {
		return ActiveDocument
	}
	return DocumentHandle(target)
}

// IsActive reports whether the handle is the active-document sentinel.
func (h DocumentHandle) IsActive() bool { return h == ActiveDocument }

func (h DocumentHandle) String() string { return string(h) }
