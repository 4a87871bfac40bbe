package plugin

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode"
)

// headerReadLimit is how much of a file is inspected for header fields
const headerReadLimit = 8 * 1024

// headerFields maps header labels to setters on Header
var headerFields = map[string]func(h *Header, v string){
	"Plugin Name":      func(h *Header, v string) { h.Name = v },
	"Version":          func(h *Header, v string) { h.Version = v },
	"Description":      func(h *Header, v string) { h.Description = v },
	"Author":           func(h *Header, v string) { h.Author = v },
	"Text Domain":      func(h *Header, v string) { h.TextDomain = v },
	"Requires Plugins": func(h *Header, v string) { h.RequiresPlugins = ParseRequires(v) },
}

var headerLineRe = regexp.MustCompile(`^(?:[ \t]*<\?php)?[ \t/*#@]*([A-Za-z][A-Za-z ]*?)[ \t]*:(.*)$`)

// ReadFields extracts "Label: value" header fields from the first bytes of r.
// The first occurrence of a label wins; labels are matched case-insensitively.
func ReadFields(r io.Reader, labels ...string) map[string]string {
	wanted := make(map[string]string, len(labels))
	for _, l := range labels {
		wanted[strings.ToLower(l)] = l
	}

	found := make(map[string]string)
	scanner := bufio.NewScanner(io.LimitReader(r, headerReadLimit))
	for scanner.Scan() {
		m := headerLineRe.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		label, ok := wanted[strings.ToLower(strings.TrimSpace(m[1]))]
		if !ok {
			continue
		}
		if _, seen := found[label]; seen {
			continue
		}
		found[label] = cleanHeaderValue(m[2])
	}
	return found
}

// ParseHeader parses a plugin header. ok is false when the file has no "Plugin Name"
func ParseHeader(r io.Reader) (Header, bool) {
	labels := make([]string, 0, len(headerFields))
	for l := range headerFields {
		labels = append(labels, l)
	}

	var h Header
	for label, value := range ReadFields(r, labels...) {
		headerFields[label](&h, value)
	}
	return h, h.Name != ""
}

// ReadHeader parses the header of the plugin file at path
func ReadHeader(path string) (Header, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, false, err
	}
	defer f.Close()

	h, ok := ParseHeader(f)
	return h, ok, nil
}

// ParseRequires splits a "Requires Plugins" value into directory names.
// Separators are commas and whitespace; duplicates and empties are dropped.
func ParseRequires(value string) []string {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})

	var deps []string
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "/")
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		deps = append(deps, f)
	}
	return deps
}

// cleanHeaderValue strips closing comment and php tags from a header value
func cleanHeaderValue(v string) string {
	v = strings.TrimSpace(v)
	for _, suffix := range []string{"*/", "?>"} {
		if i := strings.Index(v, suffix); i >= 0 {
			v = v[:i]
		}
	}
	return strings.TrimSpace(v)
}
