// Package classfile implements a decoder for JVM class files, covering the
// structures the lambdalint detectors need: the constant pool, method table,
// Code attributes, line-number tables and the BootstrapMethods attribute.
package classfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// Magic is the class-file magic number (0xCAFEBABE).
const Magic = 0xCAFEBABE

// MajorJava8 is the first class-file major version that can carry
// invokedynamic-compiled lambdas.
const MajorJava8 = 52

// Method access and property flags.
const (
	AccPublic    = 0x0001
	AccPrivate   = 0x0002
	AccStatic    = 0x0008
	AccAbstract  = 0x0400
	AccSynthetic = 0x1000
)

// RefInvokeStatic is the method-handle reference kind for invokestatic
// targets, the kind LambdaMetafactory uses for compiler-generated lambda
// bodies.
const RefInvokeStatic = 6

// ClassFile represents a decoded Java class file.
type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool []ConstantPoolInfo
	AccessFlags  uint16
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []Field
	Methods      []Method
	SourceFile   string
	Bootstrap    []BootstrapMethod
}

// Field represents a decoded field_info entry. Only the header is retained;
// field attributes are not needed by any detector.
type Field struct {
	AccessFlags uint16
	Name        string
	Descriptor  string
}

// Method represents a decoded method_info entry.
type Method struct {
	AccessFlags uint16
	Name        string
	Descriptor  string
	Code        *Code
	synthetic   bool
}

// IsSynthetic reports whether the method is compiler-generated, either via
// the ACC_SYNTHETIC flag or the legacy Synthetic attribute.
func (m *Method) IsSynthetic() bool {
	return m.synthetic || m.AccessFlags&AccSynthetic != 0
}

// IsStatic reports whether the method has the ACC_STATIC flag.
func (m *Method) IsStatic() bool {
	return m.AccessFlags&AccStatic != 0
}

// Code represents a method's Code attribute.
type Code struct {
	MaxStack    uint16
	MaxLocals   uint16
	Bytecode    []byte
	LineNumbers []LineNumber
}

// LineNumber maps a bytecode offset to a source line.
type LineNumber struct {
	StartPC uint16
	Line    uint16
}

// LineFor returns the source line covering the given bytecode offset, or 0
// when the method carries no line-number table.
func (c *Code) LineFor(pc int) int {
	line := 0
	for _, ln := range c.LineNumbers {
		if int(ln.StartPC) > pc {
			break
		}
		line = int(ln.Line)
	}
	return line
}

// BootstrapMethod is one entry of the BootstrapMethods attribute.
type BootstrapMethod struct {
	MethodRef uint16
	Arguments []uint16
}

// ConstantPoolInfo is implemented by all constant pool entry types.
type ConstantPoolInfo interface {
	Kind() ConstantKind
}

// ConstantKind is the tag of a constant pool entry.
type ConstantKind uint8

// Constant pool tags per JVMS §4.4.
const (
	ConstantKindUtf8               ConstantKind = 1
	ConstantKindInteger            ConstantKind = 3
	ConstantKindFloat              ConstantKind = 4
	ConstantKindLong               ConstantKind = 5
	ConstantKindDouble             ConstantKind = 6
	ConstantKindClass              ConstantKind = 7
	ConstantKindString             ConstantKind = 8
	ConstantKindFieldref           ConstantKind = 9
	ConstantKindMethodref          ConstantKind = 10
	ConstantKindInterfaceMethodref ConstantKind = 11
	ConstantKindNameAndType        ConstantKind = 12
	ConstantKindMethodHandle       ConstantKind = 15
	ConstantKindMethodType         ConstantKind = 16
	ConstantKindDynamic            ConstantKind = 17
	ConstantKindInvokeDynamic      ConstantKind = 18
	ConstantKindModule             ConstantKind = 19
	ConstantKindPackage            ConstantKind = 20

	// ConstantKindPlaceholder is not a real constant kind. Long and double
	// constants occupy two pool slots, and the pool itself is 1-indexed; the
	// unusable slots are filled with placeholders so indices line up.
	ConstantKindPlaceholder ConstantKind = 255
)

type (
	// ConstantUtf8 represents a CONSTANT_Utf8_info entry.
	ConstantUtf8 struct {
		Bytes []byte
	}
	// ConstantInteger represents a CONSTANT_Integer_info entry.
	ConstantInteger struct {
		Value int32
	}
	// ConstantFloat represents a CONSTANT_Float_info entry.
	ConstantFloat struct {
		Value float32
	}
	// ConstantLong represents a CONSTANT_Long_info entry.
	ConstantLong struct {
		Value int64
	}
	// ConstantDouble represents a CONSTANT_Double_info entry.
	ConstantDouble struct {
		Value float64
	}
	// ConstantClass represents a CONSTANT_Class_info entry.
	ConstantClass struct {
		NameIndex uint16
	}
	// ConstantString represents a CONSTANT_String_info entry.
	ConstantString struct {
		StringIndex uint16
	}
	// ConstantFieldref represents a CONSTANT_Fieldref_info entry.
	ConstantFieldref struct {
		ClassIndex       uint16
		NameAndTypeIndex uint16
	}
	// ConstantMethodref represents a CONSTANT_Methodref_info entry.
	ConstantMethodref struct {
		ClassIndex       uint16
		NameAndTypeIndex uint16
	}
	// ConstantInterfaceMethodref represents a CONSTANT_InterfaceMethodref_info entry.
	ConstantInterfaceMethodref struct {
		ClassIndex       uint16
		NameAndTypeIndex uint16
	}
	// ConstantNameAndType represents a CONSTANT_NameAndType_info entry.
	ConstantNameAndType struct {
		NameIndex       uint16
		DescriptorIndex uint16
	}
	// ConstantMethodHandle represents a CONSTANT_MethodHandle_info entry.
	ConstantMethodHandle struct {
		ReferenceKind  uint8
		ReferenceIndex uint16
	}
	// ConstantMethodType represents a CONSTANT_MethodType_info entry.
	ConstantMethodType struct {
		DescriptorIndex uint16
	}
	// ConstantDynamic represents a CONSTANT_Dynamic_info entry.
	ConstantDynamic struct {
		BootstrapMethodAttrIndex uint16
		NameAndTypeIndex         uint16
	}
	// ConstantInvokeDynamic represents a CONSTANT_InvokeDynamic_info entry.
	ConstantInvokeDynamic struct {
		BootstrapMethodAttrIndex uint16
		NameAndTypeIndex         uint16
	}
	// ConstantModule represents a CONSTANT_Module_info entry.
	ConstantModule struct {
		NameIndex uint16
	}
	// ConstantPackage represents a CONSTANT_Package_info entry.
	ConstantPackage struct {
		NameIndex uint16
	}
	// ConstantPlaceholder fills the unusable slot after a long or double.
	ConstantPlaceholder struct{}
)

// Kind returns the ConstantKind for ConstantUtf8.
func (c ConstantUtf8) Kind() ConstantKind { return ConstantKindUtf8 }

// Kind returns the ConstantKind for ConstantInteger.
func (c ConstantInteger) Kind() ConstantKind { return ConstantKindInteger }

// Kind returns the ConstantKind for ConstantFloat.
func (c ConstantFloat) Kind() ConstantKind { return ConstantKindFloat }

// Kind returns the ConstantKind for ConstantLong.
func (c ConstantLong) Kind() ConstantKind { return ConstantKindLong }

// Kind returns the ConstantKind for ConstantDouble.
func (c ConstantDouble) Kind() ConstantKind { return ConstantKindDouble }

// Kind returns the ConstantKind for ConstantClass.
func (c ConstantClass) Kind() ConstantKind { return ConstantKindClass }

// Kind returns the ConstantKind for ConstantString.
func (c ConstantString) Kind() ConstantKind { return ConstantKindString }

// Kind returns the ConstantKind for ConstantFieldref.
func (c ConstantFieldref) Kind() ConstantKind { return ConstantKindFieldref }

// Kind returns the ConstantKind for ConstantMethodref.
func (c ConstantMethodref) Kind() ConstantKind { return ConstantKindMethodref }

// Kind returns the ConstantKind for ConstantInterfaceMethodref.
func (c ConstantInterfaceMethodref) Kind() ConstantKind { return ConstantKindInterfaceMethodref }

// Kind returns the ConstantKind for ConstantNameAndType.
func (c ConstantNameAndType) Kind() ConstantKind { return ConstantKindNameAndType }

// Kind returns the ConstantKind for ConstantMethodHandle.
func (c ConstantMethodHandle) Kind() ConstantKind { return ConstantKindMethodHandle }

// Kind returns the ConstantKind for ConstantMethodType.
func (c ConstantMethodType) Kind() ConstantKind { return ConstantKindMethodType }

// Kind returns the ConstantKind for ConstantDynamic.
func (c ConstantDynamic) Kind() ConstantKind { return ConstantKindDynamic }

// Kind returns the ConstantKind for ConstantInvokeDynamic.
func (c ConstantInvokeDynamic) Kind() ConstantKind { return ConstantKindInvokeDynamic }

// Kind returns the ConstantKind for ConstantModule.
func (c ConstantModule) Kind() ConstantKind { return ConstantKindModule }

// Kind returns the ConstantKind for ConstantPackage.
func (c ConstantPackage) Kind() ConstantKind { return ConstantKindPackage }

// Kind returns the ConstantKind for ConstantPlaceholder.
func (c ConstantPlaceholder) Kind() ConstantKind { return ConstantKindPlaceholder }

// Parse decodes a class file from a reader.
func Parse(r io.Reader) (*ClassFile, error) {
	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, fmt.Errorf("not a class file (magic %#x)", magic)
	}

	var cf ClassFile
	if err := binary.Read(r, binary.BigEndian, &cf.MinorVersion); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &cf.MajorVersion); err != nil {
		return nil, err
	}

	if err := cf.parseConstantPool(r); err != nil {
		return nil, err
	}

	if err := binary.Read(r, binary.BigEndian, &cf.AccessFlags); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &cf.ThisClass); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &cf.SuperClass); err != nil {
		return nil, err
	}

	var ifaceCount uint16
	if err := binary.Read(r, binary.BigEndian, &ifaceCount); err != nil {
		return nil, err
	}
	cf.Interfaces = make([]uint16, ifaceCount)
	for i := range cf.Interfaces {
		if err := binary.Read(r, binary.BigEndian, &cf.Interfaces[i]); err != nil {
			return nil, err
		}
	}

	if err := cf.parseFields(r); err != nil {
		return nil, err
	}
	if err := cf.parseMethods(r); err != nil {
		return nil, err
	}

	// Class-level attributes: SourceFile and BootstrapMethods are decoded,
	// everything else is skipped.
	attrs, err := cf.readAttributes(r)
	if err != nil {
		return nil, err
	}
	for _, att := range attrs {
		switch att.name {
		case "SourceFile":
			var idx uint16
			if err := binary.Read(bytes.NewReader(att.data), binary.BigEndian, &idx); err != nil {
				return nil, fmt.Errorf("SourceFile attribute: %w", err)
			}
			if cf.SourceFile, err = cf.Utf8(int(idx)); err != nil {
				return nil, fmt.Errorf("SourceFile attribute: %w", err)
			}
		case "BootstrapMethods":
			if err := cf.parseBootstrapMethods(att.data); err != nil {
				return nil, fmt.Errorf("BootstrapMethods attribute: %w", err)
			}
		}
	}

	return &cf, nil
}

func (cf *ClassFile) parseConstantPool(r io.Reader) error {
	var count uint16
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return err
	}

	// Dummy entry so that pool indices are 1-based per the JVM spec.
	cf.ConstantPool = append(cf.ConstantPool, ConstantPlaceholder{})

	// constant_pool_count is the number of entries plus one.
	for i := 0; i < int(count)-1; i++ {
		var kind ConstantKind
		if err := binary.Read(r, binary.BigEndian, &kind); err != nil {
			return err
		}

		var cp ConstantPoolInfo
		switch kind {
		case ConstantKindUtf8:
			var length uint16
			if err := binary.Read(r, binary.BigEndian, &length); err != nil {
				return err
			}
			const maxConstantLength = 32 * 1024
			if length > maxConstantLength {
				return fmt.Errorf("constant size too large (%d)", length)
			}
			constant := ConstantUtf8{Bytes: make([]byte, length)}
			if _, err := io.ReadFull(r, constant.Bytes); err != nil {
				return err
			}
			cp = constant
		case ConstantKindInteger:
			var constant ConstantInteger
			if err := binary.Read(r, binary.BigEndian, &constant.Value); err != nil {
				return err
			}
			cp = constant
		case ConstantKindFloat:
			var constant ConstantFloat
			if err := binary.Read(r, binary.BigEndian, &constant.Value); err != nil {
				return err
			}
			cp = constant
		case ConstantKindLong:
			var constant ConstantLong
			if err := binary.Read(r, binary.BigEndian, &constant.Value); err != nil {
				return err
			}
			cp = constant
		case ConstantKindDouble:
			var constant ConstantDouble
			if err := binary.Read(r, binary.BigEndian, &constant.Value); err != nil {
				return err
			}
			cp = constant
		case ConstantKindClass:
			var constant ConstantClass
			if err := binary.Read(r, binary.BigEndian, &constant.NameIndex); err != nil {
				return err
			}
			cp = constant
		case ConstantKindString:
			var constant ConstantString
			if err := binary.Read(r, binary.BigEndian, &constant.StringIndex); err != nil {
				return err
			}
			cp = constant
		case ConstantKindFieldref:
			var constant ConstantFieldref
			if err := binary.Read(r, binary.BigEndian, &constant.ClassIndex); err != nil {
				return err
			}
			if err := binary.Read(r, binary.BigEndian, &constant.NameAndTypeIndex); err != nil {
				return err
			}
			cp = constant
		case ConstantKindMethodref:
			var constant ConstantMethodref
			if err := binary.Read(r, binary.BigEndian, &constant.ClassIndex); err != nil {
				return err
			}
			if err := binary.Read(r, binary.BigEndian, &constant.NameAndTypeIndex); err != nil {
				return err
			}
			cp = constant
		case ConstantKindInterfaceMethodref:
			var constant ConstantInterfaceMethodref
			if err := binary.Read(r, binary.BigEndian, &constant.ClassIndex); err != nil {
				return err
			}
			if err := binary.Read(r, binary.BigEndian, &constant.NameAndTypeIndex); err != nil {
				return err
			}
			cp = constant
		case ConstantKindNameAndType:
			var constant ConstantNameAndType
			if err := binary.Read(r, binary.BigEndian, &constant.NameIndex); err != nil {
				return err
			}
			if err := binary.Read(r, binary.BigEndian, &constant.DescriptorIndex); err != nil {
				return err
			}
			cp = constant
		case ConstantKindMethodHandle:
			var constant ConstantMethodHandle
			if err := binary.Read(r, binary.BigEndian, &constant.ReferenceKind); err != nil {
				return err
			}
			if err := binary.Read(r, binary.BigEndian, &constant.ReferenceIndex); err != nil {
				return err
			}
			cp = constant
		case ConstantKindMethodType:
			var constant ConstantMethodType
			if err := binary.Read(r, binary.BigEndian, &constant.DescriptorIndex); err != nil {
				return err
			}
			cp = constant
		case ConstantKindDynamic:
			var constant ConstantDynamic
			if err := binary.Read(r, binary.BigEndian, &constant.BootstrapMethodAttrIndex); err != nil {
				return err
			}
			if err := binary.Read(r, binary.BigEndian, &constant.NameAndTypeIndex); err != nil {
				return err
			}
			cp = constant
		case ConstantKindInvokeDynamic:
			var constant ConstantInvokeDynamic
			if err := binary.Read(r, binary.BigEndian, &constant.BootstrapMethodAttrIndex); err != nil {
				return err
			}
			if err := binary.Read(r, binary.BigEndian, &constant.NameAndTypeIndex); err != nil {
				return err
			}
			cp = constant
		case ConstantKindModule:
			var constant ConstantModule
			if err := binary.Read(r, binary.BigEndian, &constant.NameIndex); err != nil {
				return err
			}
			cp = constant
		case ConstantKindPackage:
			var constant ConstantPackage
			if err := binary.Read(r, binary.BigEndian, &constant.NameIndex); err != nil {
				return err
			}
			cp = constant
		default:
			return fmt.Errorf("invalid cp_info tag %d at index %d", kind, i+1)
		}

		cf.ConstantPool = append(cf.ConstantPool, cp)

		if cp.Kind() == ConstantKindLong || cp.Kind() == ConstantKindDouble {
			// 8-byte constants occupy two pool slots.
			cf.ConstantPool = append(cf.ConstantPool, ConstantPlaceholder{})
			i++
		}
	}

	return nil
}

func (cf *ClassFile) parseFields(r io.Reader) error {
	var count uint16
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return err
	}
	cf.Fields = make([]Field, 0, count)
	for i := 0; i < int(count); i++ {
		var accessFlags, nameIdx, descIdx uint16
		if err := binary.Read(r, binary.BigEndian, &accessFlags); err != nil {
			return err
		}
		if err := binary.Read(r, binary.BigEndian, &nameIdx); err != nil {
			return err
		}
		if err := binary.Read(r, binary.BigEndian, &descIdx); err != nil {
			return err
		}
		name, err := cf.Utf8(int(nameIdx))
		if err != nil {
			return fmt.Errorf("field %d name: %w", i, err)
		}
		desc, err := cf.Utf8(int(descIdx))
		if err != nil {
			return fmt.Errorf("field %d descriptor: %w", i, err)
		}
		if _, err := cf.readAttributes(r); err != nil {
			return err
		}
		cf.Fields = append(cf.Fields, Field{AccessFlags: accessFlags, Name: name, Descriptor: desc})
	}
	return nil
}

func (cf *ClassFile) parseMethods(r io.Reader) error {
	var count uint16
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return err
	}
	cf.Methods = make([]Method, 0, count)
	for i := 0; i < int(count); i++ {
		var accessFlags, nameIdx, descIdx uint16
		if err := binary.Read(r, binary.BigEndian, &accessFlags); err != nil {
			return err
		}
		if err := binary.Read(r, binary.BigEndian, &nameIdx); err != nil {
			return err
		}
		if err := binary.Read(r, binary.BigEndian, &descIdx); err != nil {
			return err
		}
		name, err := cf.Utf8(int(nameIdx))
		if err != nil {
			return fmt.Errorf("method %d name: %w", i, err)
		}
		desc, err := cf.Utf8(int(descIdx))
		if err != nil {
			return fmt.Errorf("method %d descriptor: %w", i, err)
		}

		m := Method{AccessFlags: accessFlags, Name: name, Descriptor: desc}

		attrs, err := cf.readAttributes(r)
		if err != nil {
			return err
		}
		for _, att := range attrs {
			switch att.name {
			case "Code":
				code, err := cf.parseCode(att.data)
				if err != nil {
					return fmt.Errorf("method %s code: %w", name, err)
				}
				m.Code = code
			case "Synthetic":
				m.synthetic = true
			}
		}

		cf.Methods = append(cf.Methods, m)
	}
	return nil
}

type rawAttribute struct {
	name string
	data []byte
}

func (cf *ClassFile) readAttributes(r io.Reader) ([]rawAttribute, error) {
	var count uint16
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, err
	}
	attrs := make([]rawAttribute, 0, count)
	for i := 0; i < int(count); i++ {
		var nameIdx uint16
		var length uint32
		if err := binary.Read(r, binary.BigEndian, &nameIdx); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &length); err != nil {
			return nil, err
		}
		name, err := cf.Utf8(int(nameIdx))
		if err != nil {
			return nil, fmt.Errorf("attribute %d name: %w", i, err)
		}
		data := make([]byte, length)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, err
		}
		attrs = append(attrs, rawAttribute{name: name, data: data})
	}
	return attrs, nil
}

func (cf *ClassFile) parseCode(data []byte) (*Code, error) {
	r := bytes.NewReader(data)

	var code Code
	if err := binary.Read(r, binary.BigEndian, &code.MaxStack); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &code.MaxLocals); err != nil {
		return nil, err
	}
	var codeLen uint32
	if err := binary.Read(r, binary.BigEndian, &codeLen); err != nil {
		return nil, err
	}
	code.Bytecode = make([]byte, codeLen)
	if _, err := io.ReadFull(r, code.Bytecode); err != nil {
		return nil, err
	}

	// Exception table: 8 bytes per entry, unused here.
	var excCount uint16
	if err := binary.Read(r, binary.BigEndian, &excCount); err != nil {
		return nil, err
	}
	if _, err := r.Seek(int64(excCount)*8, io.SeekCurrent); err != nil {
		return nil, err
	}

	attrs, err := cf.readAttributes(r)
	if err != nil {
		return nil, err
	}
	for _, att := range attrs {
		if att.name != "LineNumberTable" {
			continue
		}
		ar := bytes.NewReader(att.data)
		var lnCount uint16
		if err := binary.Read(ar, binary.BigEndian, &lnCount); err != nil {
			return nil, err
		}
		for i := 0; i < int(lnCount); i++ {
			var ln LineNumber
			if err := binary.Read(ar, binary.BigEndian, &ln.StartPC); err != nil {
				return nil, err
			}
			if err := binary.Read(ar, binary.BigEndian, &ln.Line); err != nil {
				return nil, err
			}
			code.LineNumbers = append(code.LineNumbers, ln)
		}
	}

	return &code, nil
}

func (cf *ClassFile) parseBootstrapMethods(data []byte) error {
	r := bytes.NewReader(data)
	var count uint16
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return err
	}
	cf.Bootstrap = make([]BootstrapMethod, 0, count)
	for i := 0; i < int(count); i++ {
		var bm BootstrapMethod
		if err := binary.Read(r, binary.BigEndian, &bm.MethodRef); err != nil {
			return err
		}
		var argCount uint16
		if err := binary.Read(r, binary.BigEndian, &argCount); err != nil {
			return err
		}
		bm.Arguments = make([]uint16, argCount)
		for j := range bm.Arguments {
			if err := binary.Read(r, binary.BigEndian, &bm.Arguments[j]); err != nil {
				return err
			}
		}
		cf.Bootstrap = append(cf.Bootstrap, bm)
	}
	return nil
}

func (cf *ClassFile) checkIndex(idx int) error {
	// A constant_pool index is valid if it is greater than zero and less
	// than constant_pool_count (JVMS §4.4.1).
	if idx <= 0 || idx >= len(cf.ConstantPool) {
		return fmt.Errorf("invalid constant pool index %d", idx)
	}
	return nil
}

// Utf8 returns the UTF-8 string at the given pool index.
func (cf *ClassFile) Utf8(idx int) (string, error) {
	if err := cf.checkIndex(idx); err != nil {
		return "", err
	}
	data, ok := cf.ConstantPool[idx].(ConstantUtf8)
	if !ok {
		return "", errors.New("constant pool index does not point to a utf8 string")
	}
	// Class files use modified UTF-8 (JVMS §4.4.7): NUL as 0xC0 0x80 and
	// supplementary characters as encoded surrogate pairs. Constants using
	// those forms fail this check and the class is skipped.
	if !utf8.Valid(data.Bytes) {
		return "", errors.New("invalid utf8 bytes")
	}
	return string(data.Bytes), nil
}

// ClassNameAt returns the class name at the given pool index.
func (cf *ClassFile) ClassNameAt(idx int) (string, error) {
	if err := cf.checkIndex(idx); err != nil {
		return "", err
	}
	classInfo, ok := cf.ConstantPool[idx].(ConstantClass)
	if !ok {
		return "", errors.New("constant pool index does not point to a class")
	}
	return cf.Utf8(int(classInfo.NameIndex))
}

// ClassName returns the internal name of the class this file defines
// (e.g. "com/example/Foo"), or "" if the pool is malformed.
func (cf *ClassFile) ClassName() string {
	name, err := cf.ClassNameAt(int(cf.ThisClass))
	if err != nil {
		return ""
	}
	return name
}

// NameAndTypeAt returns the name and descriptor strings of the
// CONSTANT_NameAndType entry at the given pool index.
func (cf *ClassFile) NameAndTypeAt(idx int) (name, descriptor string, err error) {
	if err = cf.checkIndex(idx); err != nil {
		return "", "", err
	}
	nat, ok := cf.ConstantPool[idx].(ConstantNameAndType)
	if !ok {
		return "", "", errors.New("constant pool index does not point to a name-and-type")
	}
	if name, err = cf.Utf8(int(nat.NameIndex)); err != nil {
		return "", "", err
	}
	if descriptor, err = cf.Utf8(int(nat.DescriptorIndex)); err != nil {
		return "", "", err
	}
	return name, descriptor, nil
}

// MethodrefAt returns the owning class, member name and descriptor of the
// method reference at the given pool index. Both CONSTANT_Methodref and
// CONSTANT_InterfaceMethodref entries are accepted.
func (cf *ClassFile) MethodrefAt(idx int) (class, name, descriptor string, err error) {
	if err = cf.checkIndex(idx); err != nil {
		return "", "", "", err
	}

	var classIdx, natIdx uint16
	switch ref := cf.ConstantPool[idx].(type) {
	case ConstantMethodref:
		classIdx, natIdx = ref.ClassIndex, ref.NameAndTypeIndex
	case ConstantInterfaceMethodref:
		classIdx, natIdx = ref.ClassIndex, ref.NameAndTypeIndex
	default:
		return "", "", "", errors.New("constant pool index does not point to a method ref")
	}

	if class, err = cf.ClassNameAt(int(classIdx)); err != nil {
		return "", "", "", err
	}
	if name, descriptor, err = cf.NameAndTypeAt(int(natIdx)); err != nil {
		return "", "", "", err
	}
	return class, name, descriptor, nil
}

// FieldrefAt returns the owning class, field name and descriptor of the
// field reference at the given pool index.
func (cf *ClassFile) FieldrefAt(idx int) (class, name, descriptor string, err error) {
	if err = cf.checkIndex(idx); err != nil {
		return "", "", "", err
	}
	ref, ok := cf.ConstantPool[idx].(ConstantFieldref)
	if !ok {
		return "", "", "", errors.New("constant pool index does not point to a field ref")
	}
	if class, err = cf.ClassNameAt(int(ref.ClassIndex)); err != nil {
		return "", "", "", err
	}
	if name, descriptor, err = cf.NameAndTypeAt(int(ref.NameAndTypeIndex)); err != nil {
		return "", "", "", err
	}
	return class, name, descriptor, nil
}

// InvokeDynamicAt returns the CONSTANT_InvokeDynamic entry at the given pool
// index.
func (cf *ClassFile) InvokeDynamicAt(idx int) (ConstantInvokeDynamic, error) {
	if err := cf.checkIndex(idx); err != nil {
		return ConstantInvokeDynamic{}, err
	}
	cid, ok := cf.ConstantPool[idx].(ConstantInvokeDynamic)
	if !ok {
		return ConstantInvokeDynamic{}, errors.New("constant pool index does not point to an invokedynamic entry")
	}
	return cid, nil
}

// MethodHandleAt returns the CONSTANT_MethodHandle entry at the given pool
// index, or false when the index points elsewhere.
func (cf *ClassFile) MethodHandleAt(idx int) (ConstantMethodHandle, bool) {
	if cf.checkIndex(idx) != nil {
		return ConstantMethodHandle{}, false
	}
	cmh, ok := cf.ConstantPool[idx].(ConstantMethodHandle)
	return cmh, ok
}

// MethodNamed returns the method with the given name and descriptor, or nil.
func (cf *ClassFile) MethodNamed(name, descriptor string) *Method {
	for i := range cf.Methods {
		m := &cf.Methods[i]
		if m.Name == name && m.Descriptor == descriptor {
			return m
		}
	}
	return nil
}
