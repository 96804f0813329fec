package detect

import (
	"github.com/715d/lambdalint/internal/classfile"
)

// classBuilder assembles decoded ClassFile values for detector tests,
// managing constant-pool bookkeeping so test cases read as bytecode.
type classBuilder struct {
	cf    *classfile.ClassFile
	utf8s map[string]uint16
}

func newClass(name string) *classBuilder {
	b := &classBuilder{
		cf: &classfile.ClassFile{
			MajorVersion: classfile.MajorJava8,
			ConstantPool: []classfile.ConstantPoolInfo{classfile.ConstantPlaceholder{}},
		},
		utf8s: make(map[string]uint16),
	}
	b.cf.ThisClass = b.class(name)
	return b
}

func (b *classBuilder) add(cp classfile.ConstantPoolInfo) uint16 {
	b.cf.ConstantPool = append(b.cf.ConstantPool, cp)
	return uint16(len(b.cf.ConstantPool) - 1)
}

func (b *classBuilder) utf8(s string) uint16 {
	if idx, ok := b.utf8s[s]; ok {
		return idx
	}
	idx := b.add(classfile.ConstantUtf8{Bytes: []byte(s)})
	b.utf8s[s] = idx
	return idx
}

func (b *classBuilder) class(name string) uint16 {
	return b.add(classfile.ConstantClass{NameIndex: b.utf8(name)})
}

func (b *classBuilder) nameAndType(name, descriptor string) uint16 {
	return b.add(classfile.ConstantNameAndType{
		NameIndex:       b.utf8(name),
		DescriptorIndex: b.utf8(descriptor),
	})
}

func (b *classBuilder) methodref(class, name, descriptor string) uint16 {
	return b.add(classfile.ConstantMethodref{
		ClassIndex:       b.class(class),
		NameAndTypeIndex: b.nameAndType(name, descriptor),
	})
}

func (b *classBuilder) interfaceMethodref(class, name, descriptor string) uint16 {
	return b.add(classfile.ConstantInterfaceMethodref{
		ClassIndex:       b.class(class),
		NameAndTypeIndex: b.nameAndType(name, descriptor),
	})
}

func (b *classBuilder) fieldref(class, name, descriptor string) uint16 {
	return b.add(classfile.ConstantFieldref{
		ClassIndex:       b.class(class),
		NameAndTypeIndex: b.nameAndType(name, descriptor),
	})
}

func (b *classBuilder) methodHandle(kind uint8, refIndex uint16) uint16 {
	return b.add(classfile.ConstantMethodHandle{ReferenceKind: kind, ReferenceIndex: refIndex})
}

// invokeDynamic registers a bootstrap method whose sole argument is an
// invokestatic handle on the named method of this class, and returns the
// pool index of the matching CONSTANT_InvokeDynamic entry. callSiteDesc is
// the factory descriptor of the dynamic site itself.
func (b *classBuilder) invokeDynamic(targetName, targetDesc, callSiteDesc string) uint16 {
	handle := b.methodHandle(classfile.RefInvokeStatic,
		b.methodref(b.cf.ClassName(), targetName, targetDesc))
	b.cf.Bootstrap = append(b.cf.Bootstrap, classfile.BootstrapMethod{
		Arguments: []uint16{handle},
	})
	return b.add(classfile.ConstantInvokeDynamic{
		BootstrapMethodAttrIndex: uint16(len(b.cf.Bootstrap) - 1),
		NameAndTypeIndex:         b.nameAndType("apply", callSiteDesc),
	})
}

func (b *classBuilder) method(flags uint16, name, descriptor string, code []byte, lines ...classfile.LineNumber) {
	m := classfile.Method{
		AccessFlags: flags,
		Name:        name,
		Descriptor:  descriptor,
	}
	if code != nil {
		m.Code = &classfile.Code{Bytecode: code, LineNumbers: lines}
	}
	b.cf.Methods = append(b.cf.Methods, m)
}

func (b *classBuilder) build() *classfile.ClassFile {
	return b.cf
}

// u16 splits a pool index into operand bytes.
func u16(idx uint16) (byte, byte) {
	return byte(idx >> 8), byte(idx)
}

// Code assembly helpers: each returns the encoded instruction bytes.

func opInvokeDynamic(idx uint16) []byte {
	hi, lo := u16(idx)
	return []byte{186, hi, lo, 0, 0}
}

func opInvokeInterface(idx uint16, count byte) []byte {
	hi, lo := u16(idx)
	return []byte{185, hi, lo, count, 0}
}

func opInvokeVirtual(idx uint16) []byte {
	hi, lo := u16(idx)
	return []byte{182, hi, lo}
}

func opGetStatic(idx uint16) []byte {
	hi, lo := u16(idx)
	return []byte{178, hi, lo}
}

func asm(chunks ...[]byte) []byte {
	var code []byte
	for _, c := range chunks {
		code = append(code, c...)
	}
	return code
}

const (
	opALoad0  = 42
	opALoad1  = 43
	opAStore1 = 76
	opIConst0 = 3
	opIConst1 = 4
	opPop     = 87
	opAReturn = 176
	opIReturn = 172
	opReturn  = 177
)
