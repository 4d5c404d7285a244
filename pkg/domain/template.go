package domain

import (
	"fmt"
	"strings"
)

// CandidateSource tags where a resolution candidate came from.
type CandidateSource string

const (
	CandidateOpen      CandidateSource = "open"      // already open in the session
	CandidatePath      CandidateSource = "path"      // filesystem path
	CandidateCatalog   CandidateSource = "catalog"   // known to the stencil catalog
	CandidateBuiltin   CandidateSource = "builtin"   // fixed fallback name
	CandidateBlank     CandidateSource = "blank"     // empty/blank document
	CandidateExact     CandidateSource = "exact"     // exact master name match
	CandidateSubstring CandidateSource = "substring" // case-insensitive partial match
	CandidateCommon    CandidateSource = "common"    // common basic shape fallback
	CandidateFirst     CandidateSource = "first"     // first available master
	CandidateVerbatim  CandidateSource = "verbatim"  // forwarded unchecked for the executor to judge
)

// Candidate is one attempted resolution with its outcome. Rejections are
// recorded, not hidden, even when the chain eventually succeeds.
type Candidate struct {
	Name     string          `json:"name"`
	Source   CandidateSource `json:"source"`
	Accepted bool            `json:"accepted"`
	Reason   string          `json:"reason,omitempty"`
}

// ResolutionTrail is the ordered list of candidates tried.
type ResolutionTrail []Candidate

// Accepted returns the accepted candidate, or nil if the chain was exhausted.
func (t ResolutionTrail) Accepted() *Candidate {
	for i := range t {
		if t[i].Accepted {
			return &t[i]
		}
	}
	return nil
}

// Rejections counts the rejected candidates.
func (t ResolutionTrail) Rejections() int {
	n := 0
	for _, c := range t {
		if !c.Accepted {
			n++
		}
	}
	return n
}

func (t ResolutionTrail) String() string {
	parts := make([]string, 0, len(t))
	for _, c := range t {
		mark := "rejected"
		if c.Accepted {
			mark = "accepted"
		}
		if c.Reason != "" {
			parts = append(parts, fmt.Sprintf("%s(%s)=%s: %s", c.Name, c.Source, mark, c.Reason))
		} else {
			parts = append(parts, fmt.Sprintf("%s(%s)=%s", c.Name, c.Source, mark))
		}
	}
	return strings.Join(parts, " -> ")
}

// TemplateReference is the outcome of template resolution: the requested name,
// what was actually chosen and the full trail. Blank marks the final
// empty-document fallback.
type TemplateReference struct {
	Requested string          `json:"requested"`
	Resolved  string          `json:"resolved"`
	Blank     bool            `json:"blank,omitempty"`
	Trail     ResolutionTrail `json:"trail"`
}

// StencilReference is the outcome of stencil resolution.
type StencilReference struct {
	Requested string          `json:"requested"`
	Resolved  string          `json:"resolved"`
	Trail     ResolutionTrail `json:"trail"`
}

// MasterReference is a resolved master shape within a stencil.
type MasterReference struct {
	Requested string           `json:"requested"`
	Resolved  string           `json:"resolved"`
	Stencil   StencilReference `json:"stencil"`
	Trail     ResolutionTrail  `json:"trail"`
}
