package compose

import "strings"

// stageAttributes mark WGSL entry points that are not named main.
var stageAttributes = []string{"@vertex", "@fragment", "@compute"}

// FindEntryPoint locates the body of the entry point function in src.
// It returns the byte offsets of the opening and the matching closing brace.
//
// The function named entry is searched first. If it is not found and entry
// is [DefaultEntryPoint], the first function following a WGSL stage
// attribute is used. Prototypes and calls (a parameter list followed by ';'
// or by anything other than a body) are skipped.
func FindEntryPoint(src, entry string) (open, closing int, ok bool) {
	code := blankComments(src)

	if open, closing, ok = findNamedFunction(code, entry); ok {
		return open, closing, true
	}
	if entry != DefaultEntryPoint {
		return 0, 0, false
	}
	return findStageFunction(code)
}

func findNamedFunction(code, name string) (int, int, bool) {
	if name == "" {
		return 0, 0, false
	}
	from := 0
	for {
		i := indexIdent(code, name, from)
		if i < 0 {
			return 0, 0, false
		}
		from = i + len(name)
		if open, closing, ok := functionBody(code, from); ok {
			return open, closing, true
		}
	}
}

func findStageFunction(code string) (int, int, bool) {
	best := -1
	for _, attr := range stageAttributes {
		if i := indexIdentAt(code, attr, 0); i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	if best < 0 {
		return 0, 0, false
	}
	fn := indexIdent(code, "fn", best)
	if fn < 0 {
		return 0, 0, false
	}
	i := skipSpace(code, fn+2)
	for i < len(code) && isIdentByte(code[i]) {
		i++
	}
	return functionBody(code, i)
}

// functionBody expects code[from:] to start (after spaces) with a parameter
// list, then scans to the body's opening brace and its matching close.
func functionBody(code string, from int) (int, int, bool) {
	i := skipSpace(code, from)
	if i >= len(code) || code[i] != '(' {
		return 0, 0, false
	}

	depth := 0
	open := -1
	for ; i < len(code); i++ {
		switch code[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ';', '}':
			if depth == 0 {
				return 0, 0, false
			}
		case '{':
			if depth == 0 {
				open = i
			}
		}
		if open >= 0 {
			break
		}
	}
	if open < 0 {
		return 0, 0, false
	}

	depth = 0
	for j := open; j < len(code); j++ {
		switch code[j] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return open, j, true
			}
		}
	}
	return 0, 0, false
}

// indexIdent finds name as a whole identifier in code at or after from.
func indexIdent(code, name string, from int) int {
	for from <= len(code) {
		i := strings.Index(code[from:], name)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(name)
		before := i == 0 || !isIdentByte(code[i-1])
		after := end >= len(code) || !isIdentByte(code[end])
		if before && after {
			return i
		}
		from = i + 1
	}
	return -1
}

// indexIdentAt is indexIdent for tokens that start with a non-identifier
// byte such as '@'; only the trailing boundary is checked.
func indexIdentAt(code, tok string, from int) int {
	for from <= len(code) {
		i := strings.Index(code[from:], tok)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(tok)
		if end >= len(code) || !isIdentByte(code[end]) {
			return i
		}
		from = i + 1
	}
	return -1
}

func skipSpace(code string, i int) int {
	for i < len(code) {
		switch code[i] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			i++
		default:
			return i
		}
	}
	return i
}

func isIdentByte(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}

// blankComments returns src with line and block comments replaced by spaces.
// Newlines are kept and the length is unchanged, so offsets into the result
// are valid offsets into src. Block comments may nest (WGSL).
func blankComments(src string) string {
	if !strings.Contains(src, "/") {
		return src
	}
	out := []byte(src)
	for i := 0; i < len(out); {
		if out[i] != '/' || i+1 >= len(out) {
			i++
			continue
		}
		switch out[i+1] {
		case '/':
			for i < len(out) && out[i] != '\n' {
				out[i] = ' '
				i++
			}
		case '*':
			depth := 0
			for i < len(out) {
				if i+1 < len(out) && out[i] == '/' && out[i+1] == '*' {
					depth++
					out[i], out[i+1] = ' ', ' '
					i += 2
					continue
				}
				if i+1 < len(out) && out[i] == '*' && out[i+1] == '/' {
					depth--
					out[i], out[i+1] = ' ', ' '
					i += 2
					if depth == 0 {
						break
					}
					continue
				}
				if out[i] != '\n' {
					out[i] = ' '
				}
				i++
			}
		default:
			i++
		}
	}
	return string(out)
}
