// Package analysis implements the scope-resolution subsystem of the SQL
// front-end: a hierarchical symbol table of analyzers, WITH-clause
// resolution with strict left-to-right inside-out visibility, and the
// accumulation of privilege requests, access events, and missing-object
// diagnostics across nested analysis scopes.
//
// Scoping rules for WITH-clause definitions:
//
// A definition is visible inside the statement its clause belongs to,
// including inline views and nested WITH clauses. Each WITH clause
// establishes a new analysis scope; a definition may refer to definitions
// from the same clause appearing to its left, and to all definitions from
// outer scopes. References resolve inside out: the current scope first, then
// each enclosing scope. Definitions within the same clause may not share an
// alias.
package analysis

import (
	"github.com/luminsql/lumin/pkg/catalog"
	"github.com/luminsql/lumin/pkg/dialect"
	"github.com/luminsql/lumin/pkg/parser"
)

// Analyzer is one node of the scope tree built for a statement's analysis.
// It owns its local bindings and accumulated logs; the parent link is a
// non-owning back-reference used only for lookup fallback. An analyzer is
// built and consumed by one call stack; independent statements use disjoint
// trees.
type Analyzer struct {
	parent *Analyzer

	cat      catalog.Catalog
	dialect  *dialect.Dialect
	queryCtx QueryContext
	authzCfg AuthzConfig

	isRoot    bool
	isExplain bool

	// Local WITH-clause bindings, in registration order.
	localViews map[string]*View
	viewOrder  []*View

	// FROM-clause aliases registered in this scope.
	aliases map[string]parser.TableRef

	// Side-effect logs, owned by this scope until explicitly merged upward.
	accessEvents  []AccessEvent
	eventKeys     map[string]struct{}
	privilegeReqs []PrivilegeRequest
	reqKeys       map[string]struct{}
	missing       map[string]struct{}
	missingOrder  []string

	resolutions map[*parser.TableName]Resolved
}

// NewAnalyzer creates the root analyzer for one statement's analysis pass.
// Root status is fixed at construction and never inferred from call context.
func NewAnalyzer(cat catalog.Catalog, d *dialect.Dialect, qctx QueryContext, acfg AuthzConfig) *Analyzer {
	a := newAnalyzer(cat, d, qctx, acfg)
	a.isRoot = true
	return a
}

// NewChildAnalyzer creates a child scope whose lookups fall back to parent.
func NewChildAnalyzer(parent *Analyzer) *Analyzer {
	a := newAnalyzer(parent.cat, parent.dialect, parent.queryCtx, parent.authzCfg)
	a.parent = parent
	a.isExplain = parent.isExplain
	return a
}

// newBaseAnalyzer creates a detached scope carrying the same catalog,
// query-context, and authorization configuration as from, but with no parent
// link. Used for a top-level WITH clause so its definitions neither leak into
// the statement's bindings nor chain into an unrelated ancestor.
func newBaseAnalyzer(from *Analyzer) *Analyzer {
	return newAnalyzer(from.cat, from.dialect, from.queryCtx, from.authzCfg)
}

func newAnalyzer(cat catalog.Catalog, d *dialect.Dialect, qctx QueryContext, acfg AuthzConfig) *Analyzer {
	return &Analyzer{
		cat:         cat,
		dialect:     d,
		queryCtx:    qctx,
		authzCfg:    acfg,
		localViews:  make(map[string]*View),
		aliases:     make(map[string]parser.TableRef),
		eventKeys:   make(map[string]struct{}),
		reqKeys:     make(map[string]struct{}),
		missing:     make(map[string]struct{}),
		resolutions: make(map[*parser.TableName]Resolved),
	}
}

// IsRootAnalyzer returns true when this scope has no ancestor tying it to an
// enclosing statement's symbol space.
func (a *Analyzer) IsRootAnalyzer() bool {
	return a.isRoot
}

// IsExplain returns true when the statement under analysis is an EXPLAIN.
func (a *Analyzer) IsExplain() bool {
	return a.isExplain
}

// SetExplain marks the statement under analysis as an EXPLAIN.
func (a *Analyzer) SetExplain() {
	a.isExplain = true
}

// Catalog returns the metadata provider.
func (a *Analyzer) Catalog() catalog.Catalog {
	return a.cat
}

// Dialect returns the identifier policy in effect.
func (a *Analyzer) Dialect() *dialect.Dialect {
	return a.dialect
}

// QueryContext returns the per-statement request values.
func (a *Analyzer) QueryContext() QueryContext {
	return a.queryCtx
}

// AuthzConfig returns the authorization configuration.
func (a *Analyzer) AuthzConfig() AuthzConfig {
	return a.authzCfg
}

// viewKey normalizes an alias for registration and lookup: quoted aliases
// compare byte-exact, unquoted ones follow the dialect's normalization.
func (a *Analyzer) viewKey(name string, quoted bool) string {
	return a.dialect.NormalizeIdent(name, quoted)
}

// RegisterLocalView registers a definition in this scope. It fails with
// DuplicateAliasError when the alias already exists in this scope's own
// bindings; ancestor bindings do not count, so shadowing across scope
// boundaries stays legal.
func (a *Analyzer) RegisterLocalView(v *View) error {
	key := a.viewKey(v.Name, v.Quoted)
	if _, ok := a.localViews[key]; ok {
		return &DuplicateAliasError{Alias: v.Name}
	}
	a.localViews[key] = v
	a.viewOrder = append(a.viewOrder, v)
	return nil
}

// LookupView finds a definition by alias, searching this scope first and
// then each enclosing scope. The first match wins: an inner redefinition
// hides an outer one for all lookups performed at or below the inner scope.
func (a *Analyzer) LookupView(name string, quoted bool) (*View, bool) {
	key := a.viewKey(name, quoted)
	for s := a; s != nil; s = s.parent {
		if v, ok := s.localViews[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// LocalViews returns this scope's own bindings in registration order.
func (a *Analyzer) LocalViews() []*View {
	return a.viewOrder
}

// registerAlias records a FROM-clause alias in this scope. Two sources with
// the same effective alias in one scope is an analysis error.
func (a *Analyzer) registerAlias(name string, quoted bool, ref parser.TableRef) error {
	key := a.viewKey(name, quoted)
	if _, ok := a.aliases[key]; ok {
		return Errorf("duplicate table alias %q in FROM clause", name)
	}
	a.aliases[key] = ref
	return nil
}

// resolvesAlias reports whether name is a known table alias or definition,
// searched inside out.
func (a *Analyzer) resolvesAlias(name string, quoted bool) bool {
	key := a.viewKey(name, quoted)
	for s := a; s != nil; s = s.parent {
		if _, ok := s.aliases[key]; ok {
			return true
		}
		if _, ok := s.localViews[key]; ok {
			return true
		}
	}
	return false
}

// recordAccessEvent appends an audit record, keeping first-occurrence order
// and dropping exact duplicates.
func (a *Analyzer) recordAccessEvent(e AccessEvent) {
	if _, ok := a.eventKeys[e.key()]; ok {
		return
	}
	a.eventKeys[e.key()] = struct{}{}
	a.accessEvents = append(a.accessEvents, e)
}

// RegisterPrivilegeRequest appends an authorization request, keeping
// first-occurrence order and dropping exact duplicates.
func (a *Analyzer) RegisterPrivilegeRequest(r PrivilegeRequest) {
	if _, ok := a.reqKeys[r.key()]; ok {
		return
	}
	a.reqKeys[r.key()] = struct{}{}
	a.privilegeReqs = append(a.privilegeReqs, r)
}

// recordMissing notes an object that could not be found in any scope or in
// the catalog.
func (a *Analyzer) recordMissing(name string) {
	if _, ok := a.missing[name]; ok {
		return
	}
	a.missing[name] = struct{}{}
	a.missingOrder = append(a.missingOrder, name)
}

// AccessEvents returns the accumulated audit records in order.
func (a *Analyzer) AccessEvents() []AccessEvent {
	return a.accessEvents
}

// PrivilegeRequests returns the accumulated authorization requests in order.
func (a *Analyzer) PrivilegeRequests() []PrivilegeRequest {
	return a.privilegeReqs
}

// MissingObjects returns the names of unresolved objects in discovery order.
func (a *Analyzer) MissingObjects() []string {
	return a.missingOrder
}

// absorb folds a discarded scope's logs into this one. Bindings are not
// moved; only explicit registration propagates those.
func (a *Analyzer) absorb(child *Analyzer) {
	a.absorbAccessEvents(child)
	a.absorbPrivilegeRequests(child)
	a.absorbMissing(child)
	a.absorbResolutions(child)
}

func (a *Analyzer) absorbAccessEvents(src *Analyzer) {
	for _, e := range src.accessEvents {
		a.recordAccessEvent(e)
	}
}

func (a *Analyzer) absorbPrivilegeRequests(src *Analyzer) {
	for _, r := range src.privilegeReqs {
		a.RegisterPrivilegeRequest(r)
	}
}

func (a *Analyzer) absorbMissing(src *Analyzer) {
	for _, name := range src.missingOrder {
		a.recordMissing(name)
	}
}

func (a *Analyzer) absorbResolutions(src *Analyzer) {
	for ref, r := range src.resolutions {
		a.resolutions[ref] = r
	}
}
