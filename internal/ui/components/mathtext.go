package components

import (
	"strings"
	"unicode"
)

var mathSymbols = map[string]string{
	"cdot":  "·",
	"pi":    "π",
	"infty": "∞",
	"to":    "→",
	"int":   "∫",
	"neq":   "≠",
	"pm":    "±",
	",":     " ",
	";":     " ",
}

var superscripts = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴',
	'5': '⁵', '6': '⁶', '7': '⁷', '8': '⁸', '9': '⁹',
	'+': '⁺', '-': '⁻', '=': '⁼', '(': '⁽', ')': '⁾',
	'n': 'ⁿ', 'x': 'ˣ',
}

var delimiterSpace = strings.NewReplacer(`\( `, `\(`, ` \)`, `\)`)

// Math renders the inline LaTeX in s as plain Unicode for the terminal:
// \( \) delimiters are dropped, fractions become a/b and simple
// exponents become superscripts.
func Math(s string) string {
	var b strings.Builder
	convertLaTeX(&b, delimiterSpace.Replace(s))
	return strings.Join(strings.Fields(b.String()), " ")
}

func convertLaTeX(b *strings.Builder, s string) {
	for i := 0; i < len(s); {
		switch c := s[i]; c {
		case '\\':
			name, next := latexCommand(s, i+1)
			i = next
			switch name {
			case "(", ")", "left", "right":
			case "frac":
				num, j := latexGroup(s, i)
				den, k := latexGroup(s, j)
				i = k
				b.WriteString(wrapTerm(Math(num)) + "/" + wrapTerm(Math(den)))
			case "sqrt":
				arg, j := latexGroup(s, i)
				i = j
				b.WriteString("√" + wrapTerm(Math(arg)))
			case "operatorname":
				arg, j := latexGroup(s, i)
				i = j
				b.WriteString(arg)
			case "lim":
				b.WriteString("lim")
				if i < len(s) && s[i] == '_' {
					arg, j := latexGroup(s, i+1)
					i = j
					b.WriteString(" (" + Math(arg) + ") ")
				}
			default:
				if sym, ok := mathSymbols[name]; ok {
					b.WriteString(sym)
				} else {
					b.WriteString(name)
				}
			}
		case '^':
			arg, j := latexGroup(s, i+1)
			i = j
			b.WriteString(superscript(Math(arg)))
		case '{', '}':
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
}

// latexCommand reads a command name starting at i: a run of letters, or
// a single symbol such as "(" or ",".
func latexCommand(s string, i int) (string, int) {
	if i >= len(s) {
		return "", i
	}
	j := i
	for j < len(s) && unicode.IsLetter(rune(s[j])) {
		j++
	}
	if j == i {
		return s[i : i+1], i + 1
	}
	return s[i:j], j
}

// latexGroup reads a braced group, or a single character, at i.
func latexGroup(s string, i int) (string, int) {
	for i < len(s) && s[i] == ' ' {
		i++
	}
	if i >= len(s) {
		return "", i
	}
	if s[i] != '{' {
		return s[i : i+1], i + 1
	}
	depth := 0
	for j := i; j < len(s); j++ {
		switch s[j] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[i+1 : j], j + 1
			}
		}
	}
	return s[i+1:], len(s)
}

func wrapTerm(t string) string {
	if strings.ContainsAny(t, " +-·/") {
		return "(" + t + ")"
	}
	return t
}

func superscript(t string) string {
	var b strings.Builder
	for _, r := range t {
		sup, ok := superscripts[r]
		if !ok {
			if len([]rune(t)) == 1 {
				return "^" + t
			}
			return "^(" + t + ")"
		}
		b.WriteRune(sup)
	}
	return b.String()
}
