package lambdalint

import (
	"bytes"
	"encoding/binary"

	"github.com/715d/lambdalint/internal/classfile"
)

// classWriter assembles class-file bytes for loader and analyzer tests.
type classWriter struct {
	buf bytes.Buffer
}

func (w *classWriter) u8(v uint8)   { w.buf.WriteByte(v) }
func (w *classWriter) u16(v uint16) { _ = binary.Write(&w.buf, binary.BigEndian, v) }
func (w *classWriter) u32(v uint32) { _ = binary.Write(&w.buf, binary.BigEndian, v) }

func (w *classWriter) utf8(s string) {
	w.u8(uint8(classfile.ConstantKindUtf8))
	w.u16(uint16(len(s)))
	w.buf.WriteString(s)
}

// sampleClassBytes builds a class whose "caller" method instantiates an
// identity lambda, yielding exactly one finding at line 10.
func sampleClassBytes() []byte {
	var w classWriter
	w.u32(classfile.Magic)
	w.u16(0)
	w.u16(classfile.MajorJava8)

	w.u16(21)
	w.utf8("com/example/Sample") // 1
	w.u8(uint8(classfile.ConstantKindClass))
	w.u16(1) // 2
	w.utf8("java/lang/Object") // 3
	w.u8(uint8(classfile.ConstantKindClass))
	w.u16(3) // 4
	w.utf8("caller")          // 5
	w.utf8("()V")             // 6
	w.utf8("Code")            // 7
	w.utf8("LineNumberTable") // 8
	w.utf8("SourceFile")      // 9
	w.utf8("Sample.java")     // 10
	w.utf8("lambda$0")        // 11
	w.utf8("(Ljava/lang/Object;)Ljava/lang/Object;") // 12
	w.utf8("BootstrapMethods")                       // 13
	w.u8(uint8(classfile.ConstantKindNameAndType))
	w.u16(11)
	w.u16(12) // 14
	w.u8(uint8(classfile.ConstantKindMethodref))
	w.u16(2)
	w.u16(14) // 15
	w.u8(uint8(classfile.ConstantKindMethodHandle))
	w.u8(classfile.RefInvokeStatic)
	w.u16(15) // 16
	w.utf8("apply")                           // 17
	w.utf8("()Ljava/util/function/Function;") // 18
	w.u8(uint8(classfile.ConstantKindNameAndType))
	w.u16(17)
	w.u16(18) // 19
	w.u8(uint8(classfile.ConstantKindInvokeDynamic))
	w.u16(0)
	w.u16(19) // 20

	w.u16(classfile.AccPublic)
	w.u16(2)
	w.u16(4)
	w.u16(0) // interfaces
	w.u16(0) // fields

	w.u16(2) // methods

	// caller()V: invokedynamic #20, pop, return.
	w.u16(classfile.AccPublic)
	w.u16(5)
	w.u16(6)
	w.u16(1)
	w.u16(7)
	w.u32(2 + 2 + 4 + 7 + 2 + 2 + 2 + 4 + 2 + 4)
	w.u16(1)
	w.u16(1)
	w.u32(7)
	w.u8(186)
	w.u16(20)
	w.u8(0)
	w.u8(0)
	w.u8(87)  // pop
	w.u8(177) // return
	w.u16(0)
	w.u16(1)
	w.u16(8)
	w.u32(6)
	w.u16(1)
	w.u16(0)
	w.u16(10)

	// lambda$0: aload_0, areturn.
	w.u16(classfile.AccStatic | classfile.AccSynthetic)
	w.u16(11)
	w.u16(12)
	w.u16(1)
	w.u16(7)
	w.u32(2 + 2 + 4 + 2 + 2 + 2)
	w.u16(1)
	w.u16(1)
	w.u32(2)
	w.u8(42)
	w.u8(176)
	w.u16(0)
	w.u16(0)

	w.u16(2) // class attributes
	w.u16(9)
	w.u32(2)
	w.u16(10)
	w.u16(13)
	w.u32(2 + 2 + 2 + 2)
	w.u16(1)
	w.u16(16)
	w.u16(1)
	w.u16(16)

	return w.buf.Bytes()
}

// cleanClassBytes builds a minimal class with no lambdas and no findings.
func cleanClassBytes() []byte {
	var w classWriter
	w.u32(classfile.Magic)
	w.u16(0)
	w.u16(classfile.MajorJava8)

	w.u16(7)
	w.utf8("com/example/Clean") // 1
	w.u8(uint8(classfile.ConstantKindClass))
	w.u16(1) // 2
	w.utf8("java/lang/Object") // 3
	w.u8(uint8(classfile.ConstantKindClass))
	w.u16(3) // 4
	w.utf8("run") // 5
	w.utf8("()V") // 6

	w.u16(classfile.AccPublic)
	w.u16(2)
	w.u16(4)
	w.u16(0)
	w.u16(0)

	w.u16(1)
	w.u16(classfile.AccPublic)
	w.u16(5)
	w.u16(6)
	w.u16(0)

	w.u16(0)

	return w.buf.Bytes()
}

func brokenClassBytes() []byte {
	return []byte{0xDE, 0xAD, 0xBE, 0xEF, 0, 0, 0, 0}
}
