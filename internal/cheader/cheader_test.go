package cheader

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarName(t *testing.T) {
	tests := []struct {
		file     string
		expected string
	}{
		{"index.html", "index_html"},
		{"/src/web/style.css", "style_css"},
		{"app.min.js", "app_min_js"},
		{"wifi-setup.html", "wifi_setup_html"},
		{"404.html", "_404_html"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, VarName(tc.file), tc.file)
	}
}

func writeHeader(t *testing.T, guard string, perLine int, assets map[string][]byte, order []string) string {
	t.Helper()
	var buf bytes.Buffer
	w := NewWriter(&buf, guard, perLine)
	require.NoError(t, w.Begin("/embedded_resources/web_interface"))
	for _, name := range order {
		require.NoError(t, w.Array(name, assets[name]))
	}
	require.NoError(t, w.End())
	return buf.String()
}

func TestWriter_Layout(t *testing.T) {
	data := make([]byte, 17)
	for i := range data {
		data[i] = byte(i)
	}
	out := writeHeader(t, "", 0, map[string][]byte{"index_html": data}, []string{"index_html"})

	expected := "#ifndef WEB_FILES_H\n#define WEB_FILES_H\n\n#include <Arduino.h>\n\n" +
		"// THIS FILE IS AUTOGENERATED DO NOT MODIFY IT. MODIFY FILES IN /embedded_resources/web_interface\n\n" +
		"const uint8_t index_html[] PROGMEM = {\n" +
		"  0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0A, 0x0B, 0x0C, 0x0D, 0x0E,\n" +
		"  0x0F, 0x10,\n" +
		"};\n\n" +
		"const uint32_t index_html_size = 17;\n\n" +
		"#endif // WEB_FILES_H\n"
	assert.Equal(t, expected, out)
}

func TestWriter_DuplicateName(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, "", 0)
	require.NoError(t, w.Array("a_js", []byte{1}))
	assert.Error(t, w.Array("a_js", []byte{2}))
}

func TestVerify_RoundTrip(t *testing.T) {
	assets := map[string][]byte{
		"index_html": bytes.Repeat([]byte{0x1F, 0x8B, 0xC0}, 40),
		"style_css":  {0xAB},
		"app_js":     {},
	}
	order := []string{"index_html", "style_css", "app_js"}
	out := writeHeader(t, "MY_GUARD_H", 8, assets, order)

	report, err := Verify(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "MY_GUARD_H", report.Guard)
	assert.Equal(t, order, report.Names())
	for _, a := range report.Assets {
		assert.Equal(t, len(assets[a.Name]), a.Size, a.Name)
		if len(assets[a.Name]) > 0 {
			assert.Equal(t, assets[a.Name], a.Data, a.Name)
		}
	}
}

func TestVerify_EmptyHeader(t *testing.T) {
	out := writeHeader(t, "", 0, nil, nil)
	report, err := Verify(strings.NewReader(out))
	require.NoError(t, err)
	assert.Empty(t, report.Assets)
}

func TestVerify_Malformed(t *testing.T) {
	valid := writeHeader(t, "", 0, map[string][]byte{"a_js": {1, 2, 3}}, []string{"a_js"})

	tests := []struct {
		name   string
		header string
	}{
		{"missing endif", strings.Replace(valid, "#endif // WEB_FILES_H\n", "", 1)},
		{"missing define", strings.Replace(valid, "#define WEB_FILES_H\n", "", 1)},
		{"define after content", strings.Replace(strings.Replace(valid, "#define WEB_FILES_H\n", "", 1),
			"#endif", "#define WEB_FILES_H\n#endif", 1)},
		{"duplicate define", strings.Replace(valid, "#define WEB_FILES_H\n", "#define WEB_FILES_H\n#define WEB_FILES_H\n", 1)},
		{"missing guard", strings.Replace(valid, "#ifndef WEB_FILES_H\n#define WEB_FILES_H\n", "", 1)},
		{"guard mismatch", strings.Replace(valid, "#define WEB_FILES_H", "#define OTHER_H", 1)},
		{"endif comment mismatch", strings.Replace(valid, "#endif // WEB_FILES_H", "#endif // OTHER_H", 1)},
		{"size mismatch", strings.Replace(valid, "a_js_size = 3", "a_js_size = 4", 1)},
		{"missing size", strings.Replace(valid, "const uint32_t a_js_size = 3;\n", "", 1)},
		{"orphan size", strings.Replace(valid, "#endif", "const uint32_t b_js_size = 1;\n#endif", 1)},
		{"unterminated array", strings.Replace(valid, "};\n", "", 1)},
		{"bad byte", strings.Replace(valid, "0x02", "0xZZ", 1)},
		{"trailing content", valid + "int x;\n"},
		{"duplicate array", strings.Replace(valid, "#endif",
			"const uint8_t a_js[] PROGMEM = {\n  0x01,\n};\n#endif", 1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Verify(strings.NewReader(tc.header))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}
