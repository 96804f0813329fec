// Package detect implements the functional-interface and stream-chain
// misuse detectors. Analysis of a class runs as an explicit two-phase
// pipeline: discovery walks the non-synthetic methods and records pending
// invokedynamic call sites, classification walks the synthetic lambda bodies
// those sites reference and decides what, if anything, each pending site is
// reported as.
package detect

// Kind identifies one finding category.
type Kind string

// Finding kinds.
const (
	// KindFunctionIdentity flags a lambda whose body just returns its
	// argument; Function.identity() expresses that directly.
	KindFunctionIdentity Kind = "function-identity-use"

	// KindMethodReference flags a lambda whose body is a single call on its
	// argument, which a method reference expresses directly.
	KindMethodReference Kind = "method-reference-use"

	// KindCombineFilters flags filter(p1).filter(p2) chains that should be
	// a single filter with a combined predicate.
	KindCombineFilters Kind = "combine-filters"

	// KindUseAnyMatch flags filter(p).findFirst().isPresent() chains that
	// should be anyMatch(p).
	KindUseAnyMatch Kind = "use-any-match"

	// KindUseFindFirst flags collect(...).get(0) that should be findFirst().
	KindUseFindFirst Kind = "use-find-first"

	// KindAvoidContains flags contains() on a freshly collected stream; the
	// stream should be matched directly.
	KindAvoidContains Kind = "avoid-contains-on-collected-stream"

	// KindAvoidSize flags size() on a freshly collected stream; the stream
	// should be counted or matched directly.
	KindAvoidSize Kind = "avoid-size-on-collected-stream"
)

// Severity ranks findings for filtering and display.
type Severity string

// Severity levels.
const (
	SeverityNormal Severity = "normal"
	SeverityLow    Severity = "low"
)

// Severity returns the severity a kind is reported with.
func (k Kind) Severity() Severity {
	switch k {
	case KindCombineFilters, KindUseAnyMatch:
		return SeverityLow
	default:
		return SeverityNormal
	}
}

// Finding is one detector result, located by enclosing class, enclosing
// method and source line.
type Finding struct {
	Kind       Kind
	Class      string
	Method     string
	Descriptor string
	Line       int
}
