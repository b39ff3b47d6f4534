package compose

import (
	"cmp"
	"errors"
	"slices"
	"strings"
)

// DefaultEntryPoint is the entry point name searched by [Compose].
const DefaultEntryPoint = "main"

// ErrMalformedSource is returned when fragments must be placed inside or
// after the entry point but the base source has no recognizable entry point.
var ErrMalformedSource = errors.New("compose: entry point not found in source")

// Section is the region of the composed text an injection lands in.
type Section int

const (
	// SectionPrelude is emitted before the entry point function.
	SectionPrelude Section = iota

	// SectionBody is emitted inside the entry point.
	SectionBody

	// SectionEpilogue is emitted after the entry point function.
	SectionEpilogue
)

// String returns the section name.
func (s Section) String() string {
	switch s {
	case SectionPrelude:
		return "prelude"
	case SectionBody:
		return "body"
	case SectionEpilogue:
		return "epilogue"
	default:
		return "unknown"
	}
}

// Injection is a code fragment with an insertion position.
type Injection struct {
	Position float64
	Code     string
}

// Section reports where the injection is emitted.
func (in Injection) Section() Section {
	switch {
	case in.Position < 0:
		return SectionPrelude
	case in.Position < 1:
		return SectionBody
	default:
		return SectionEpilogue
	}
}

// Sort returns a position-ordered copy of injections.
// Entries with equal positions keep their relative order.
func Sort(injections []Injection) []Injection {
	sorted := slices.Clone(injections)
	slices.SortStableFunc(sorted, func(a, b Injection) int {
		return cmp.Compare(a.Position, b.Position)
	})
	return sorted
}

// Compose builds the final shader text from base and injections using the
// default entry point name.
func Compose(base string, injections []Injection) (string, error) {
	return ComposeEntry(base, DefaultEntryPoint, injections)
}

// ComposeEntry is like [Compose] but anchors body and epilogue fragments to
// the function named entry.
//
// With no injections base is returned unchanged. If only prelude fragments
// are present the entry point is not searched for, so sources without one
// (for example include-style snippets) still compose.
func ComposeEntry(base, entry string, injections []Injection) (string, error) {
	if len(injections) == 0 {
		return base, nil
	}

	var pre, body, post []string
	for _, in := range Sort(injections) {
		switch in.Section() {
		case SectionPrelude:
			pre = append(pre, in.Code)
		case SectionBody:
			body = append(body, in.Code)
		default:
			post = append(post, in.Code)
		}
	}

	var b strings.Builder
	b.Grow(len(base) + fragmentsLen(pre, body, post))

	for _, code := range pre {
		b.WriteString(code)
		b.WriteByte('\n')
	}

	if len(body) == 0 && len(post) == 0 {
		b.WriteString(base)
		return b.String(), nil
	}

	open, closing, ok := FindEntryPoint(base, entry)
	if !ok {
		return "", ErrMalformedSource
	}

	b.WriteString(base[:open+1])
	writeFragments(&b, body)
	b.WriteString(base[open+1 : closing+1])
	writeFragments(&b, post)
	b.WriteString(base[closing+1:])

	return b.String(), nil
}

func writeFragments(b *strings.Builder, fragments []string) {
	if len(fragments) == 0 {
		return
	}
	for _, code := range fragments {
		b.WriteByte('\n')
		b.WriteString(code)
	}
	b.WriteByte('\n')
}

func fragmentsLen(groups ...[]string) int {
	n := 0
	for _, g := range groups {
		for _, s := range g {
			n += len(s) + 1
		}
		n++
	}
	return n
}
