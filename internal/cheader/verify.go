package cheader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	reIfndef = regexp.MustCompile(`^#ifndef\s+(\w+)\s*$`)
	reDefine = regexp.MustCompile(`^#define\s+(\w+)\s*$`)
	reEndif  = regexp.MustCompile(`^#endif\b(?:\s*//\s*(\w+))?`)
	reArray  = regexp.MustCompile(`^const\s+uint8_t\s+(\w+)\[\]\s+PROGMEM\s*=\s*\{\s*$`)
	reSize   = regexp.MustCompile(`^const\s+uint32_t\s+(\w+)_size\s*=\s*(\d+)\s*;\s*$`)
	reByte   = regexp.MustCompile(`^0x[0-9A-Fa-f]{2}$`)
)

// ErrMalformed is wrapped by every Verify failure.
var ErrMalformed = errors.New("malformed header")

// Asset is one array found in a header.
type Asset struct {
	Name string
	Size int
	Data []byte
}

// Report is the parsed content of a header.
type Report struct {
	Guard  string
	Assets []Asset
}

// Names returns the asset names in header order.
func (r *Report) Names() []string {
	names := make([]string, len(r.Assets))
	for i, a := range r.Assets {
		names[i] = a.Name
	}
	return names
}

func malformed(line int, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrMalformed, line, fmt.Sprintf(format, args...))
}

// Verify parses a header and checks that the include guard is balanced and
// that every array has exactly one size constant equal to its length.
func Verify(r io.Reader) (*Report, error) {
	report := &Report{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)

	var (
		lineNo    int
		depth     int
		closed    bool
		current   *Asset
		sizes     = make(map[string]int)
		arrays    = make(map[string]int)
		sawGuard  bool
		sawDefine bool
	)

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())

		if current != nil {
			if line == "};" {
				report.Assets = append(report.Assets, *current)
				current = nil
				continue
			}
			for _, tok := range strings.Split(line, ",") {
				tok = strings.TrimSpace(tok)
				if tok == "" {
					continue
				}
				if !reByte.MatchString(tok) {
					return nil, malformed(lineNo, "bad byte literal %q in %s", tok, current.Name)
				}
				v, _ := strconv.ParseUint(tok[2:], 16, 8)
				current.Data = append(current.Data, byte(v))
			}
			continue
		}

		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#include") {
			continue
		}
		if closed {
			return nil, malformed(lineNo, "content after closing #endif")
		}
		if sawGuard && !sawDefine && !reDefine.MatchString(line) {
			return nil, malformed(lineNo, "#ifndef %s is not followed by #define", report.Guard)
		}

		switch {
		case reIfndef.MatchString(line):
			m := reIfndef.FindStringSubmatch(line)
			if sawGuard {
				return nil, malformed(lineNo, "nested #ifndef %s", m[1])
			}
			report.Guard = m[1]
			sawGuard = true
			depth++
		case reDefine.MatchString(line):
			m := reDefine.FindStringSubmatch(line)
			if !sawGuard || sawDefine || m[1] != report.Guard {
				return nil, malformed(lineNo, "#define %s does not match guard", m[1])
			}
			sawDefine = true
		case reEndif.MatchString(line):
			m := reEndif.FindStringSubmatch(line)
			if depth == 0 {
				return nil, malformed(lineNo, "#endif without #ifndef")
			}
			if m[1] != "" && m[1] != report.Guard {
				return nil, malformed(lineNo, "#endif comment %s does not match guard %s", m[1], report.Guard)
			}
			depth--
			closed = true
		case reArray.MatchString(line):
			name := reArray.FindStringSubmatch(line)[1]
			if _, dup := arrays[name]; dup {
				return nil, malformed(lineNo, "duplicate array %s", name)
			}
			arrays[name] = len(report.Assets)
			current = &Asset{Name: name}
		case reSize.MatchString(line):
			m := reSize.FindStringSubmatch(line)
			if _, dup := sizes[m[1]]; dup {
				return nil, malformed(lineNo, "duplicate size constant %s_size", m[1])
			}
			n, err := strconv.Atoi(m[2])
			if err != nil {
				return nil, malformed(lineNo, "bad size %q", m[2])
			}
			sizes[m[1]] = n
		default:
			return nil, malformed(lineNo, "unexpected line %q", line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	if current != nil {
		return nil, malformed(lineNo, "unterminated array %s", current.Name)
	}
	if !sawGuard {
		return nil, fmt.Errorf("%w: missing include guard", ErrMalformed)
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unbalanced include guard %s", ErrMalformed, report.Guard)
	}

	for i := range report.Assets {
		a := &report.Assets[i]
		n, ok := sizes[a.Name]
		if !ok {
			return nil, fmt.Errorf("%w: array %s has no size constant", ErrMalformed, a.Name)
		}
		if n != len(a.Data) {
			return nil, fmt.Errorf("%w: %s_size = %d but array holds %d bytes", ErrMalformed, a.Name, n, len(a.Data))
		}
		a.Size = n
	}

	var orphans []string
	for name := range sizes {
		if _, ok := arrays[name]; !ok {
			orphans = append(orphans, name+"_size")
		}
	}
	if len(orphans) > 0 {
		sort.Strings(orphans)
		return nil, fmt.Errorf("%w: size constants without array: %s", ErrMalformed, strings.Join(orphans, ", "))
	}

	return report, nil
}
