package detect

import (
	"github.com/715d/lambdalint/internal/bytecode"
	"github.com/715d/lambdalint/internal/classfile"
)

// anonState is the state of the lambda-body classifier.
type anonState uint8

const (
	seenNothing anonState = iota
	seenALoad0
	seenALoad1
	seenInvoke
)

// verdict is the outcome of one classifier step: keep walking, or stop with
// a terminal decision for the whole method.
type verdict uint8

const (
	verdictContinue verdict = iota
	verdictIdentity
	verdictMethodRef
	verdictDisqualify
)

// classify is the second analysis phase. It visits every synthetic method a
// candidate key exists for, prunes keys whose method cannot be a reportable
// lambda body, and decides the finding kind for the keys that survive. The
// candidate index is mutated in place.
func classify(cf *classfile.ClassFile, candidates candidateIndex) map[string]Kind {
	kinds := make(map[string]Kind)

	for i := range cf.Methods {
		m := &cf.Methods[i]
		if !m.IsSynthetic() {
			continue
		}
		entries, ok := candidates[m.Name]
		if !ok {
			continue
		}

		shape := classfile.ParseShape(m.Descriptor)
		if shape.ParamCount < 1 || shape.ParamCount > 2 {
			// javac never emits lambda bridges outside this shape.
			delete(candidates, m.Name)
			continue
		}
		if !shape.ReturnsReference() {
			// Primitive-returning synthetic methods are javac (un)boxing
			// helpers, not user lambdas.
			delete(candidates, m.Name)
			continue
		}

		parmLambda := shape.ParamCount == 2
		if parmLambda {
			// Two-parameter bridges only correspond to the reported lambda
			// shapes when the dynamic site sat in static context.
			kept := entries[:0]
			for _, c := range entries {
				if c.staticSite {
					kept = append(kept, c)
				}
			}
			if len(kept) == 0 {
				delete(candidates, m.Name)
				continue
			}
			candidates[m.Name] = kept
		}

		if m.Code == nil {
			delete(candidates, m.Name)
			continue
		}
		instrs, err := bytecode.Decode(m.Code.Bytecode)
		if err != nil {
			delete(candidates, m.Name)
			continue
		}

		classifyBody(cf, m, shape, instrs, parmLambda, candidates, kinds)
	}

	return kinds
}

// classifyBody runs the four-state machine over one synthetic method body,
// stopping at the first terminal verdict.
func classifyBody(cf *classfile.ClassFile, m *classfile.Method, shape classfile.Shape, instrs []bytecode.Instruction, parmLambda bool, candidates candidateIndex, kinds map[string]Kind) {
	var stack bytecode.OperandStack
	state := seenNothing

	for _, in := range instrs {
		v := step(cf, &state, in, &stack, shape, parmLambda)
		switch v {
		case verdictContinue:
			stack.Execute(cf, in)

		case verdictIdentity:
			// Call sites that loaded the functional value from an existing
			// field or local are legitimately passing a reference through,
			// not misusing identity.
			entries := candidates[m.Name]
			kept := entries[:0]
			for _, c := range entries {
				if !c.explicitStackOp {
					kept = append(kept, c)
				}
			}
			if len(kept) == 0 {
				delete(candidates, m.Name)
			} else {
				candidates[m.Name] = kept
			}
			kinds[m.Name] = KindFunctionIdentity
			return

		case verdictMethodRef:
			kinds[m.Name] = KindMethodReference
			return

		case verdictDisqualify:
			delete(candidates, m.Name)
			return
		}
	}

	// Ran off the end without a terminal state: not a recognized shape.
	delete(candidates, m.Name)
}

// step advances the classifier by one instruction. The stack passed in
// reflects the state before the instruction executes.
func step(cf *classfile.ClassFile, state *anonState, in bytecode.Instruction, stack *bytecode.OperandStack, shape classfile.Shape, parmLambda bool) verdict {
	switch *state {
	case seenNothing:
		if in.Op == bytecode.OpALoad0 {
			*state = seenALoad0
			return verdictContinue
		}
		return verdictDisqualify

	case seenALoad0:
		switch {
		case in.Op == bytecode.OpInvokeVirtual || in.Op == bytecode.OpInvokeInterface:
			_, _, sig, err := cf.MethodrefAt(in.CPIndex())
			if err == nil && classfile.ParseShape(sig).ParamCount == 0 {
				*state = seenInvoke
				return verdictContinue
			}
			return verdictDisqualify

		case in.Op == bytecode.OpAReturn && in.PC == 1:
			// Loaded the argument and returned it immediately: a disguised
			// Function.identity().
			return verdictIdentity

		case in.Op == bytecode.OpALoad1:
			if !parmLambda {
				return verdictDisqualify
			}
			*state = seenALoad1
			return verdictContinue
		}
		return verdictDisqualify

	case seenALoad1:
		if in.Op == bytecode.OpInvokeVirtual || in.Op == bytecode.OpInvokeInterface {
			class, name, sig, err := cf.MethodrefAt(in.CPIndex())
			if err != nil {
				return verdictDisqualify
			}
			if isBoxingHelper(class, name) {
				// Compiler-inserted; skip without a state change.
				return verdictContinue
			}
			if classfile.ParseShape(sig).ParamCount == 1 {
				*state = seenInvoke
				return verdictContinue
			}
		}
		return verdictDisqualify

	case seenInvoke:
		if !bytecode.IsReturn(in.Op) {
			return verdictDisqualify
		}
		if top, ok := stack.Peek(0); ok && top.Signature != shape.Return {
			return verdictDisqualify
		}
		return verdictMethodRef
	}

	return verdictDisqualify
}
