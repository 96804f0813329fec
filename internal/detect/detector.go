package detect

import (
	"github.com/715d/lambdalint/internal/classfile"
)

// Detector recognizes functional-interface and stream-chain misuse in one
// decoded class at a time. The zero value is ready to use. A Detector holds
// no state between calls, so one instance may be reused for any number of
// classes; concurrent calls require separate instances.
type Detector struct{}

// Analyze runs the two-phase analysis over a decoded class and returns its
// findings. Classes below the Java 8 class-file version or without a
// bootstrap-method table cannot contain the targeted patterns and produce
// no findings.
func (d *Detector) Analyze(cf *classfile.ClassFile) []Finding {
	if cf.MajorVersion < classfile.MajorJava8 || len(cf.Bootstrap) == 0 {
		return nil
	}

	className := cf.ClassName()

	candidates, findings := discover(cf)
	kinds := classify(cf, candidates)

	for i := range findings {
		findings[i].Class = className
	}

	// Report surviving candidates in method-table order so output is
	// deterministic. Synthetic method names are compiler-generated and
	// unique within a class, so each candidate key matches one method.
	for i := range cf.Methods {
		m := &cf.Methods[i]
		if !m.IsSynthetic() {
			continue
		}
		entries, ok := candidates[m.Name]
		if !ok {
			continue
		}
		kind, ok := kinds[m.Name]
		if !ok {
			continue
		}
		for _, c := range entries {
			findings = append(findings, Finding{
				Kind:       kind,
				Class:      className,
				Method:     c.method.Name,
				Descriptor: c.method.Descriptor,
				Line:       c.line,
			})
		}
	}

	return findings
}
