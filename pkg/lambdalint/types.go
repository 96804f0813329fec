// Package lambdalint provides functional-interface and stream-chain misuse
// analysis for JVM class files.
package lambdalint

import "github.com/715d/lambdalint/internal/detect"

// Finding is one reported issue.
type Finding struct {
	Kind       string `json:"kind"`
	Severity   string `json:"severity"`
	Message    string `json:"message"`
	Class      string `json:"class"`
	Method     string `json:"method"`
	Descriptor string `json:"descriptor"`
	SourceFile string `json:"source_file,omitempty"`
	Line       int    `json:"line"`
	Path       string `json:"path"`
	Archive    string `json:"archive,omitempty"`
}

var kindMessages = map[detect.Kind]string{
	detect.KindFunctionIdentity: "lambda returns its argument unchanged, use Function.identity()",
	detect.KindMethodReference:  "lambda is a single call on its argument, use a method reference",
	detect.KindCombineFilters:   "chained filter() calls, combine the predicates into one filter()",
	detect.KindUseAnyMatch:      "filter().findFirst().isPresent() chain, use anyMatch()",
	detect.KindUseFindFirst:     "collect(...).get(0), use findFirst() on the stream",
	detect.KindAvoidContains:    "contains() on a freshly collected stream, match on the stream instead",
	detect.KindAvoidSize:        "size() on a freshly collected stream, count on the stream instead",
}

// Message returns the human-readable description for a finding kind.
func Message(kind detect.Kind) string {
	return kindMessages[kind]
}
