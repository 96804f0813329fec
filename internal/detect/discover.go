package detect

import (
	"github.com/715d/lambdalint/internal/bytecode"
	"github.com/715d/lambdalint/internal/classfile"
)

// candidate is one pending functional-interface use: an invokedynamic call
// site whose target resolved to a synthetic method of the class under
// analysis. Whether it is reported, and as what, is decided by classify.
type candidate struct {
	// method is the non-synthetic method containing the call site.
	method *classfile.Method

	// line is the source line of the call site.
	line int

	// explicitStackOp records whether the instruction immediately before the
	// call site loaded an existing reference (field get or local load), i.e.
	// the functional value is being passed through rather than freshly
	// created.
	explicitStackOp bool

	// staticSite records whether the enclosing method is static.
	staticSite bool
}

// candidateIndex maps a synthetic method name to the ordered call sites that
// reference it. Synthetic names are compiler-generated and unique within a
// class.
type candidateIndex map[string][]candidate

// Fully-qualified methods the stream-chain tagger matches on.
const (
	streamClass   = "java/util/stream/Stream"
	collectName   = "collect"
	collectSig    = "(Ljava/util/stream/Collector;)Ljava/lang/Object;"
	filterName    = "filter"
	filterSig     = "(Ljava/util/function/Predicate;)Ljava/util/stream/Stream;"
	findFirstName = "findFirst"
	findFirstSig  = "()Ljava/util/Optional;"
	optionalClass = "java/util/Optional"
	isPresentName = "isPresent"
	isPresentSig  = "()Z"
	listClass     = "java/util/List"
	getName       = "get"
	getSig        = "(I)Ljava/lang/Object;"

	// contains and size are matched by name and signature alone, on any
	// collection interface.
	containsName = "contains"
	containsSig  = "(Ljava/lang/Object;)Z"
	sizeName     = "size"
	sizeSig      = "()I"
)

// discover is the first analysis phase. It walks every non-synthetic method,
// records a candidate for each accepted invokedynamic site, and runs the
// stream-chain tagger over the same traversal, emitting its findings
// directly. Methods whose bytecode fails to decode are skipped.
func discover(cf *classfile.ClassFile) (candidateIndex, []Finding) {
	candidates := make(candidateIndex)
	var findings []Finding
	var stack bytecode.OperandStack

	for i := range cf.Methods {
		m := &cf.Methods[i]
		if m.IsSynthetic() || m.Code == nil {
			continue
		}
		instrs, err := bytecode.Decode(m.Code.Bytecode)
		if err != nil {
			continue
		}

		stack.Reset()
		prevOp := bytecode.OpNop
		for _, in := range instrs {
			// The tag, if any, is attached to the value this instruction
			// pushes, after the stack step runs.
			tag := bytecode.TagNone

			switch in.Op {
			case bytecode.OpInvokeDynamic:
				if c, ok := siteCandidate(cf, m, in, prevOp); ok {
					name := c.name
					candidates[name] = append(candidates[name], c.candidate)
				}

			case bytecode.OpInvokeInterface:
				var f *Finding
				tag, f = interfaceCall(cf, m, in, &stack)
				if f != nil {
					findings = append(findings, *f)
				}

			case bytecode.OpInvokeVirtual:
				if f := virtualCall(cf, m, in, &stack); f != nil {
					findings = append(findings, *f)
				}
			}

			stack.Execute(cf, in)
			if tag != bytecode.TagNone {
				stack.SetTopTag(tag)
			}
			prevOp = in.Op
		}
	}

	return candidates, findings
}

type namedCandidate struct {
	name string
	candidate
}

func siteCandidate(cf *classfile.ClassFile, m *classfile.Method, in bytecode.Instruction, prevOp bytecode.Opcode) (namedCandidate, bool) {
	cid, err := cf.InvokeDynamicAt(in.CPIndex())
	if err != nil {
		return namedCandidate{}, false
	}
	cmh, ok := methodHandle(cf, int(cid.BootstrapMethodAttrIndex))
	if !ok {
		return namedCandidate{}, false
	}
	name, ok := lambdaTarget(cf, cmh)
	if !ok {
		return namedCandidate{}, false
	}

	explicit := prevOp == bytecode.OpGetField || prevOp == bytecode.OpGetStatic || bytecode.IsALoad(prevOp)
	return namedCandidate{
		name: name,
		candidate: candidate{
			method:          m,
			line:            m.Code.LineFor(in.PC),
			explicitStackOp: explicit,
			staticSite:      m.IsStatic(),
		},
	}, true
}

// interfaceCall applies the stream-chain rules for invokeinterface sites and
// returns the provenance tag for the call's result, if any.
func interfaceCall(cf *classfile.ClassFile, m *classfile.Method, in bytecode.Instruction, stack *bytecode.OperandStack) (bytecode.Tag, *Finding) {
	class, name, sig, err := cf.MethodrefAt(in.CPIndex())
	if err != nil {
		return bytecode.TagNone, nil
	}

	switch {
	case name == containsName && sig == containsSig:
		// Receiver sits below the argument.
		if v, ok := stack.Peek(1); ok && v.Register < 0 && v.Tag == bytecode.TagCollectItem {
			return bytecode.TagNone, siteFinding(KindAvoidContains, m, in)
		}

	case name == sizeName && sig == sizeSig:
		if v, ok := stack.Peek(0); ok && v.Register < 0 && v.Tag == bytecode.TagCollectItem {
			return bytecode.TagNone, siteFinding(KindAvoidSize, m, in)
		}

	case class == streamClass && name == collectName && sig == collectSig:
		return bytecode.TagCollectItem, nil

	case class == streamClass && name == filterName && sig == filterSig:
		var f *Finding
		if v, ok := stack.Peek(1); ok && v.Tag == bytecode.TagFilterItem && v.Register < 0 {
			f = siteFinding(KindCombineFilters, m, in)
		}
		return bytecode.TagFilterItem, f

	case class == streamClass && name == findFirstName && sig == findFirstSig:
		if v, ok := stack.Peek(0); ok && v.Tag == bytecode.TagFilterItem {
			return bytecode.TagFindFirstItem, nil
		}

	case class == listClass && name == getName && sig == getSig:
		idx, ok := stack.Peek(0)
		if !ok || idx.Const != int32(0) {
			break
		}
		if v, ok := stack.Peek(1); ok && v.Tag == bytecode.TagCollectItem && v.Register < 0 {
			return bytecode.TagNone, siteFinding(KindUseFindFirst, m, in)
		}
	}

	return bytecode.TagNone, nil
}

func virtualCall(cf *classfile.ClassFile, m *classfile.Method, in bytecode.Instruction, stack *bytecode.OperandStack) *Finding {
	class, name, sig, err := cf.MethodrefAt(in.CPIndex())
	if err != nil {
		return nil
	}
	if class != optionalClass || name != isPresentName || sig != isPresentSig {
		return nil
	}
	if v, ok := stack.Peek(0); ok && v.Tag == bytecode.TagFindFirstItem && v.Register < 0 {
		return siteFinding(KindUseAnyMatch, m, in)
	}
	return nil
}

func siteFinding(kind Kind, m *classfile.Method, in bytecode.Instruction) *Finding {
	return &Finding{
		Kind:       kind,
		Method:     m.Name,
		Descriptor: m.Descriptor,
		Line:       m.Code.LineFor(in.PC),
	}
}
