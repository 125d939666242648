// Package cheader emits and checks the generated C header that carries the
// gzip-compressed web interface.
package cheader

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
)

// DefaultGuard is the include guard of webFiles.h.
const DefaultGuard = "WEB_FILES_H"

// DefaultBytesPerLine matches the layout of the existing header.
const DefaultBytesPerLine = 15

// VarName turns a file name into a C identifier: "index.html" -> "index_html".
func VarName(file string) string {
	base := filepath.Base(file)
	b := []byte(base)
	for i, c := range b {
		if !isIdent(c) {
			b[i] = '_'
		}
	}
	name := string(b)
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		name = "_" + name
	}
	return name
}

func isIdent(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// Writer streams a header. Call Begin, then Array per asset, then End.
type Writer struct {
	w            *bufio.Writer
	guard        string
	bytesPerLine int
	names        map[string]bool
}

// NewWriter wraps w. Zero values pick the defaults.
func NewWriter(w io.Writer, guard string, bytesPerLine int) *Writer {
	if guard == "" {
		guard = DefaultGuard
	}
	if bytesPerLine <= 0 {
		bytesPerLine = DefaultBytesPerLine
	}
	return &Writer{
		w:            bufio.NewWriter(w),
		guard:        guard,
		bytesPerLine: bytesPerLine,
		names:        make(map[string]bool),
	}
}

// Begin writes the include guard, Arduino include and notice.
// source is named in the notice as the place to edit.
func (hw *Writer) Begin(source string) error {
	fmt.Fprintf(hw.w, "#ifndef %s\n#define %s\n\n#include <Arduino.h>\n\n", hw.guard, hw.guard)
	fmt.Fprintf(hw.w, "// THIS FILE IS AUTOGENERATED DO NOT MODIFY IT. MODIFY FILES IN %s\n\n", source)
	return nil
}

// Array writes one PROGMEM byte array and its size constant.
func (hw *Writer) Array(name string, data []byte) error {
	if hw.names[name] {
		return fmt.Errorf("duplicate array name %q", name)
	}
	hw.names[name] = true

	fmt.Fprintf(hw.w, "const uint8_t %s[] PROGMEM = {\n", name)
	for i := 0; i < len(data); i += hw.bytesPerLine {
		end := i + hw.bytesPerLine
		if end > len(data) {
			end = len(data)
		}
		hw.w.WriteString("  ")
		for j, b := range data[i:end] {
			if j > 0 {
				hw.w.WriteString(", ")
			}
			fmt.Fprintf(hw.w, "0x%02X", b)
		}
		hw.w.WriteString(",\n")
	}
	hw.w.WriteString("};\n\n")
	fmt.Fprintf(hw.w, "const uint32_t %s_size = %d;\n\n", name, len(data))
	return nil
}

// End closes the include guard and flushes.
func (hw *Writer) End() error {
	fmt.Fprintf(hw.w, "#endif // %s\n", hw.guard)
	return hw.w.Flush()
}
