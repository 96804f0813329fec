package detect

import (
	"strings"

	"github.com/715d/lambdalint/internal/classfile"
)

// methodHandle resolves a bootstrap-method index to the method-handle
// constant describing the method the dynamic call site invokes. It returns
// the first bootstrap argument that is a method handle, or false when the
// index is out of range or no handle argument exists. Results are not
// cached; each call site triggers a fresh lookup.
func methodHandle(cf *classfile.ClassFile, bootstrapIndex int) (classfile.ConstantMethodHandle, bool) {
	if bootstrapIndex < 0 || bootstrapIndex >= len(cf.Bootstrap) {
		return classfile.ConstantMethodHandle{}, false
	}
	for _, arg := range cf.Bootstrap[bootstrapIndex].Arguments {
		if cmh, ok := cf.MethodHandleAt(int(arg)); ok {
			return cmh, true
		}
	}
	return classfile.ConstantMethodHandle{}, false
}

// lambdaTarget returns the name of the synthetic method a resolved handle
// points at, or false when the handle does not look like a compiler-generated
// lambda body: it must be an invokestatic handle on the class under analysis,
// its signature shape must fit a lambda bridge (1-parameter-void and
// 2-parameter-non-void shapes are constructor-reference and non-lambda
// idioms), and the named method must exist and be marked synthetic.
func lambdaTarget(cf *classfile.ClassFile, cmh classfile.ConstantMethodHandle) (string, bool) {
	if cmh.ReferenceKind != classfile.RefInvokeStatic {
		return "", false
	}

	class, name, descriptor, err := cf.MethodrefAt(int(cmh.ReferenceIndex))
	if err != nil || class != cf.ClassName() {
		return "", false
	}

	shape := classfile.ParseShape(descriptor)
	if shape.ParamCount == 1 && shape.IsVoid() || shape.ParamCount == 2 && !shape.IsVoid() {
		return "", false
	}

	m := cf.MethodNamed(name, descriptor)
	if m == nil || !m.IsSynthetic() {
		return "", false
	}
	return name, true
}

// isBoxingHelper reports whether a call is a javac-inserted boxing or
// unboxing helper (Integer.valueOf, Integer.intValue and friends).
func isBoxingHelper(class, name string) bool {
	return strings.HasPrefix(class, "java/lang/") &&
		(strings.HasSuffix(name, "Value") || name == "valueOf")
}
