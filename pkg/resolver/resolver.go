// Package resolver implements the deterministic fallback chains for template,
// stencil and master references.
//
// Built-in resource naming is inconsistent across host installations, so a
// plausible request must never abort an otherwise satisfiable operation:
// every chain terminates in a usable fallback, and every attempted candidate
// is recorded in a trail so callers can see "requested X, used Y" even on
// success. True validity of any candidate is only confirmed by the executor.
package resolver

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Therealkorris/MCP/pkg/domain"
	"github.com/Therealkorris/MCP/pkg/ports"
	"github.com/bmatcuk/doublestar/v4"
)

// Default fallback ladders, recovered from the host automation surface.
var (
	DefaultTemplateFallbacks = []string{"BASIC_M.vssx", "Basic_U.vss"}
	DefaultStencilFallbacks  = []string{"Basic Shapes.vss", "Basic_U.vss"}

	// CommonMasters are tried when a requested master matches nothing in the
	// catalog, in this order.
	CommonMasters = []string{"Rectangle", "Square", "Circle", "Ellipse", "Triangle", "Diamond", "Pentagon", "Hexagon"}
)

// Resolver resolves loose stencil/template/master references.
type Resolver struct {
	catalog           ports.StencilCatalog
	searchPaths       []string
	templateFallbacks []string
	stencilFallbacks  []string
	statFn            func(string) (fs.FileInfo, error)
	logger            *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCatalog attaches a stencil catalog consulted for candidate ranking.
func WithCatalog(c ports.StencilCatalog) Option {
	return func(r *Resolver) { r.catalog = c }
}

// WithSearchPaths sets the directories scanned by ListStencils.
func WithSearchPaths(paths []string) Option {
	return func(r *Resolver) { r.searchPaths = paths }
}

// WithTemplateFallbacks overrides the built-in template ladder.
func WithTemplateFallbacks(names []string) Option {
	return func(r *Resolver) { r.templateFallbacks = names }
}

// WithStencilFallbacks overrides the built-in stencil ladder.
func WithStencilFallbacks(names []string) Option {
	return func(r *Resolver) { r.stencilFallbacks = names }
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// withStatFn replaces filesystem probing in tests.
func withStatFn(fn func(string) (fs.FileInfo, error)) Option {
	return func(r *Resolver) { r.statFn = fn }
}

// New creates a Resolver with the default fallback ladders.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		templateFallbacks: DefaultTemplateFallbacks,
		stencilFallbacks:  DefaultStencilFallbacks,
		statFn:            os.Stat,
		logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveTemplate resolves a template request against the session's open
// documents, the filesystem and the built-in ladder. It never fails: the
// chain terminates in a blank-document fallback.
func (r *Resolver) ResolveTemplate(ctx context.Context, requested string, open []string) domain.TemplateReference {
	ref := domain.TemplateReference{Requested: requested}

	// 1. Already open in this session.
	if name, ok := matchOpen(requested, open); ok {
		ref.Trail = append(ref.Trail, domain.Candidate{Name: name, Source: domain.CandidateOpen, Accepted: true})
		ref.Resolved = name
		return ref
	}
	if requested != "" && len(open) > 0 {
		ref.Trail = append(ref.Trail, domain.Candidate{Name: requested, Source: domain.CandidateOpen, Reason: "not open in this session"})
	}

	// 2. Explicit path: probe before forwarding.
	if looksLikePath(requested) {
		if _, err := r.statFn(requested); err == nil {
			ref.Trail = append(ref.Trail, domain.Candidate{Name: requested, Source: domain.CandidatePath, Accepted: true})
			ref.Resolved = requested
			return ref
		}
		ref.Trail = append(ref.Trail, domain.Candidate{Name: requested, Source: domain.CandidatePath, Reason: "no such file"})
	} else if requested != "" && len(open) == 0 {
		// Plain name, nothing open to match against: let the executor judge.
		ref.Trail = append(ref.Trail, domain.Candidate{Name: requested, Source: domain.CandidateVerbatim, Accepted: true})
		ref.Resolved = requested
		return ref
	}

	// 3. Built-in ladder.
	for _, name := range r.templateFallbacks {
		if strings.EqualFold(name, requested) {
			continue // already tried above
		}
		if r.catalogKnows(ctx, name) {
			ref.Trail = append(ref.Trail, domain.Candidate{Name: name, Source: domain.CandidateBuiltin, Accepted: true, Reason: "known fallback"})
			ref.Resolved = name
			return ref
		}
		ref.Trail = append(ref.Trail, domain.Candidate{Name: name, Source: domain.CandidateBuiltin, Reason: "not in catalog"})
	}

	// 4. Blank document. Always accepted.
	ref.Trail = append(ref.Trail, domain.Candidate{Name: "", Source: domain.CandidateBlank, Accepted: true, Reason: "blank document fallback"})
	ref.Blank = true
	r.logger.Debug("template resolution fell back to blank", "requested", requested, "trail", ref.Trail.String())
	return ref
}

// ResolveStencil resolves a stencil request. The last ladder entry is always
// accepted so the chain never fails locally.
func (r *Resolver) ResolveStencil(ctx context.Context, requested string, open []string) domain.StencilReference {
	ref := domain.StencilReference{Requested: requested}

	if name, ok := matchOpen(requested, open); ok {
		ref.Trail = append(ref.Trail, domain.Candidate{Name: name, Source: domain.CandidateOpen, Accepted: true})
		ref.Resolved = name
		return ref
	}
	if requested != "" && len(open) > 0 {
		ref.Trail = append(ref.Trail, domain.Candidate{Name: requested, Source: domain.CandidateOpen, Reason: "not open in this session"})
	}

	if requested != "" {
		if r.catalogKnows(ctx, requested) {
			ref.Trail = append(ref.Trail, domain.Candidate{Name: requested, Source: domain.CandidateCatalog, Accepted: true})
			ref.Resolved = requested
			return ref
		}
		if r.catalog != nil {
			ref.Trail = append(ref.Trail, domain.Candidate{Name: requested, Source: domain.CandidateCatalog, Reason: "not in catalog"})
		} else {
			// No catalog to consult: forward as requested.
			ref.Trail = append(ref.Trail, domain.Candidate{Name: requested, Source: domain.CandidateVerbatim, Accepted: true})
			ref.Resolved = requested
			return ref
		}
	}

	for i, name := range r.stencilFallbacks {
		last := i == len(r.stencilFallbacks)-1
		if r.catalogKnows(ctx, name) || last {
			ref.Trail = append(ref.Trail, domain.Candidate{Name: name, Source: domain.CandidateBuiltin, Accepted: true, Reason: "known fallback"})
			ref.Resolved = name
			return ref
		}
		ref.Trail = append(ref.Trail, domain.Candidate{Name: name, Source: domain.CandidateBuiltin, Reason: "not in catalog"})
	}

	// Empty ladder; forward the request unchecked.
	ref.Trail = append(ref.Trail, domain.Candidate{Name: requested, Source: domain.CandidateVerbatim, Accepted: true})
	ref.Resolved = requested
	return ref
}

// ResolveMaster resolves a master-shape name within a stencil: exact match,
// then case-insensitive substring, then common basic shapes, then the first
// documented master. Without catalog knowledge the name is forwarded as-is.
func (r *Resolver) ResolveMaster(ctx context.Context, requested string, stencil domain.StencilReference) domain.MasterReference {
	ref := domain.MasterReference{Requested: requested, Stencil: stencil}

	masters := r.mastersFor(ctx, stencil.Resolved)
	if len(masters) == 0 {
		ref.Trail = append(ref.Trail, domain.Candidate{Name: requested, Source: domain.CandidateVerbatim, Accepted: true, Reason: "no master inventory for stencil"})
		ref.Resolved = requested
		return ref
	}

	for _, m := range masters {
		if strings.EqualFold(m.Name, requested) {
			ref.Trail = append(ref.Trail, domain.Candidate{Name: m.Name, Source: domain.CandidateExact, Accepted: true})
			ref.Resolved = m.Name
			return ref
		}
	}
	ref.Trail = append(ref.Trail, domain.Candidate{Name: requested, Source: domain.CandidateExact, Reason: "no exact match"})

	lower := strings.ToLower(requested)
	for _, m := range masters {
		if lower != "" && strings.Contains(strings.ToLower(m.Name), lower) {
			ref.Trail = append(ref.Trail, domain.Candidate{Name: m.Name, Source: domain.CandidateSubstring, Accepted: true, Reason: "partial match for " + requested})
			ref.Resolved = m.Name
			return ref
		}
	}
	ref.Trail = append(ref.Trail, domain.Candidate{Name: requested, Source: domain.CandidateSubstring, Reason: "no partial match"})

	for _, common := range CommonMasters {
		for _, m := range masters {
			if strings.EqualFold(m.Name, common) {
				ref.Trail = append(ref.Trail, domain.Candidate{Name: m.Name, Source: domain.CandidateCommon, Accepted: true, Reason: "common shape fallback"})
				ref.Resolved = m.Name
				return ref
			}
		}
	}

	first := masters[0].Name
	ref.Trail = append(ref.Trail, domain.Candidate{Name: first, Source: domain.CandidateFirst, Accepted: true, Reason: "first available master"})
	ref.Resolved = first
	return ref
}

// StencilScan is the outcome of a search-path listing. Individual unreadable
// entries are recorded in Skipped, never aborting the scan.
type StencilScan struct {
	Stencils []domain.StencilInfo
	Skipped  []string
}

// ListStencils merges the catalog with a filesystem scan of the configured
// search paths. Each path is guarded independently.
func (r *Resolver) ListStencils(ctx context.Context) (*StencilScan, error) {
	scan := &StencilScan{}
	seen := make(map[string]bool)

	if r.catalog != nil {
		listed, err := r.catalog.List(ctx)
		if err != nil {
			// The catalog is advisory; record and continue with the scan.
			scan.Skipped = append(scan.Skipped, "catalog: "+err.Error())
			r.logger.Warn("stencil catalog listing failed", "err", err)
		}
		for _, s := range listed {
			if !seen[strings.ToLower(s.Name)] {
				seen[strings.ToLower(s.Name)] = true
				scan.Stencils = append(scan.Stencils, s)
			}
		}
	}

	for _, root := range r.searchPaths {
		matches, err := doublestar.Glob(os.DirFS(root), "**/*.vss*")
		if err != nil {
			scan.Skipped = append(scan.Skipped, root+": "+err.Error())
			r.logger.Warn("stencil search path skipped", "path", root, "err", err)
			continue
		}
		for _, m := range matches {
			name := filepath.Base(m)
			if seen[strings.ToLower(name)] {
				continue
			}
			seen[strings.ToLower(name)] = true
			scan.Stencils = append(scan.Stencils, domain.StencilInfo{
				Name: name,
				Path: filepath.Join(root, m),
				Kind: kindFromName(name),
			})
		}
	}

	return scan, nil
}

func (r *Resolver) catalogKnows(ctx context.Context, name string) bool {
	if r.catalog == nil || name == "" {
		return false
	}
	listed, err := r.catalog.List(ctx)
	if err != nil {
		return false
	}
	for _, s := range listed {
		if strings.EqualFold(s.Name, name) {
			return true
		}
	}
	return false
}

func (r *Resolver) mastersFor(ctx context.Context, stencil string) []domain.MasterInfo {
	if r.catalog == nil || stencil == "" {
		return nil
	}
	masters, err := r.catalog.Masters(ctx, stencil)
	if err != nil {
		r.logger.Warn("master inventory lookup failed", "stencil", stencil, "err", err)
		return nil
	}
	return masters
}

// matchOpen finds requested among open document names: exact first, then
// case-insensitive substring (mirrors the host's own matching).
func matchOpen(requested string, open []string) (string, bool) {
	if requested == "" {
		return "", false
	}
	for _, name := range open {
		if strings.EqualFold(name, requested) {
			return name, true
		}
	}
	lower := strings.ToLower(requested)
	for _, name := range open {
		if strings.Contains(strings.ToLower(name), lower) {
			return name, true
		}
	}
	return "", false
}

func looksLikePath(s string) bool {
	return strings.ContainsAny(s, `/\`) || filepath.IsAbs(s)
}

func kindFromName(name string) string {
	switch {
	case strings.Contains(strings.ToLower(name), "connec"):
		return "connectors"
	case strings.Contains(strings.ToLower(name), "arrow"):
		return "arrows"
	case strings.Contains(strings.ToLower(name), "background"):
		return "backgrounds"
	case strings.Contains(strings.ToLower(name), "border"):
		return "borders"
	default:
		return "basic"
	}
}
