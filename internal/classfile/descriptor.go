package classfile

import (
	"strings"

	"github.com/puzpuzpuz/xsync/v4"
)

// Shape is the parsed form of a method descriptor: the number of declared
// parameters and the return type descriptor.
type Shape struct {
	ParamCount int
	Return     string
}

// IsVoid reports whether the method returns nothing.
func (s Shape) IsVoid() bool { return s.Return == "V" }

// ReturnsReference reports whether the method returns a class or interface
// type. Array and primitive returns are not references in this sense.
func (s Shape) ReturnsReference() bool { return strings.HasPrefix(s.Return, "L") }

// shapeCache memoizes descriptor parses process-wide. Descriptors repeat
// heavily across the classes of one code base and the cache is shared by
// concurrently scanning goroutines.
var shapeCache = xsync.NewMap[string, Shape]()

// ParseShape parses a method descriptor such as "(ILjava/lang/String;)V"
// into its Shape. Malformed descriptors yield a zero-parameter void shape.
func ParseShape(descriptor string) Shape {
	if shape, ok := shapeCache.Load(descriptor); ok {
		return shape
	}
	shape := parseShape(descriptor)
	shapeCache.Store(descriptor, shape)
	return shape
}

func parseShape(descriptor string) Shape {
	if !strings.HasPrefix(descriptor, "(") {
		return Shape{Return: "V"}
	}
	end := strings.IndexByte(descriptor, ')')
	if end < 0 {
		return Shape{Return: "V"}
	}

	var shape Shape
	parms := descriptor[1:end]
	for i := 0; i < len(parms); {
		// Array dimensions prefix the element type and do not add parameters.
		for i < len(parms) && parms[i] == '[' {
			i++
		}
		if i >= len(parms) {
			break
		}
		if parms[i] == 'L' {
			semi := strings.IndexByte(parms[i:], ';')
			if semi < 0 {
				break
			}
			i += semi + 1
		} else {
			i++
		}
		shape.ParamCount++
	}

	shape.Return = descriptor[end+1:]
	if shape.Return == "" {
		shape.Return = "V"
	}
	return shape
}
