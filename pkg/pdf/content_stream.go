package pdf

import (
	"strconv"
	"strings"
)

// operand is a string, a number or an array of both.
type operand struct {
	str     string
	num     float64
	isStr   bool
	isNum   bool
	array   []operand
	isArray bool
}

// DecodeContentStream renders the text-showing operators (Tj, TJ, ', ")
// of a page content stream as plain text. Glyphs of composite fonts are
// not mapped back to Unicode.
func DecodeContentStream(stream string) string {
	var out strings.Builder
	var stack []operand
	p := &parser{s: stream}

	newline := func() {
		if out.Len() > 0 && !strings.HasSuffix(out.String(), "\n") {
			out.WriteByte('\n')
		}
	}
	space := func() {
		if s := out.String(); out.Len() > 0 && !strings.HasSuffix(s, " ") && !strings.HasSuffix(s, "\n") {
			out.WriteByte(' ')
		}
	}

	for {
		tok, ok := p.next()
		if !ok {
			break
		}
		if tok.operator == "" {
			stack = append(stack, tok.operand)
			continue
		}

		switch tok.operator {
		case "Tj":
			if s := lastString(stack); s != "" {
				out.WriteString(s)
			}
		case "'", "\"":
			newline()
			out.WriteString(lastString(stack))
		case "TJ":
			if n := len(stack); n > 0 && stack[n-1].isArray {
				for _, item := range stack[n-1].array {
					switch {
					case item.isStr:
						out.WriteString(item.str)
					case item.isNum && item.num < -200:
						space()
					}
				}
			}
		case "T*", "ET":
			newline()
		case "Td", "TD":
			if n := len(stack); n >= 2 && stack[n-1].isNum && stack[n-1].num != 0 {
				newline()
			} else {
				space()
			}
		}
		stack = stack[:0]
	}
	return collapseBlankLines(out.String())
}

func lastString(stack []operand) string {
	if n := len(stack); n > 0 && stack[n-1].isStr {
		return stack[n-1].str
	}
	return ""
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	blank := 0
	for _, l := range lines {
		l = strings.TrimRight(l, " ")
		if strings.TrimSpace(l) == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, l)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

type token struct {
	operand  operand
	operator string
}

type parser struct {
	s   string
	pos int
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\n', '\r', '\t', '\f', 0:
		return true
	}
	return false
}

func (p *parser) next() (token, bool) {
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		switch {
		case isSpace(c):
			p.pos++
		case c == '%':
			for p.pos < len(p.s) && p.s[p.pos] != '\n' && p.s[p.pos] != '\r' {
				p.pos++
			}
		case c == '(':
			return token{operand: operand{str: p.literal(), isStr: true}}, true
		case c == '<' && p.pos+1 < len(p.s) && p.s[p.pos+1] == '<':
			p.pos += 2
		case c == '>' && p.pos+1 < len(p.s) && p.s[p.pos+1] == '>':
			p.pos += 2
		case c == '<':
			return token{operand: operand{str: p.hex(), isStr: true}}, true
		case c == '[':
			p.pos++
			return token{operand: p.array()}, true
		case c == ']', c == '{', c == '}', c == ')', c == '>':
			p.pos++
		case c == '/':
			p.pos++
			p.word()
			return token{operand: operand{}}, true
		default:
			w := p.word()
			if w == "" {
				p.pos++
				continue
			}
			if f, err := strconv.ParseFloat(w, 64); err == nil {
				return token{operand: operand{num: f, isNum: true}}, true
			}
			return token{operator: w}, true
		}
	}
	return token{}, false
}

func (p *parser) word() string {
	start := p.pos
	for p.pos < len(p.s) && !isSpace(p.s[p.pos]) && !isDelimiter(p.s[p.pos]) {
		p.pos++
	}
	return p.s[start:p.pos]
}

func (p *parser) array() operand {
	arr := operand{isArray: true}
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		if c == ']' {
			p.pos++
			return arr
		}
		tok, ok := p.next()
		if !ok {
			break
		}
		if tok.operator == "" {
			arr.array = append(arr.array, tok.operand)
		}
	}
	return arr
}

// literal reads a (...) string, honoring nesting and backslash escapes.
func (p *parser) literal() string {
	p.pos++ // (
	var b strings.Builder
	depth := 1
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		p.pos++
		switch c {
		case '\\':
			if p.pos >= len(p.s) {
				return b.String()
			}
			e := p.s[p.pos]
			p.pos++
			switch e {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'b', 'f':
			case '\n':
			case '\r':
				if p.pos < len(p.s) && p.s[p.pos] == '\n' {
					p.pos++
				}
			case '0', '1', '2', '3', '4', '5', '6', '7':
				oct := string(e)
				for i := 0; i < 2 && p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '7'; i++ {
					oct += string(p.s[p.pos])
					p.pos++
				}
				v, _ := strconv.ParseUint(oct, 8, 8)
				b.WriteRune(rune(v))
			default:
				b.WriteByte(e)
			}
		case '(':
			depth++
			b.WriteByte(c)
		case ')':
			depth--
			if depth == 0 {
				return b.String()
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// hex reads a <...> string as single-byte Latin-1 text.
func (p *parser) hex() string {
	p.pos++ // <
	var digits []byte
	for p.pos < len(p.s) && p.s[p.pos] != '>' {
		c := p.s[p.pos]
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') {
			digits = append(digits, c)
		}
		p.pos++
	}
	p.pos++ // >
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	var b strings.Builder
	for i := 0; i+1 < len(digits); i += 2 {
		v, _ := strconv.ParseUint(string(digits[i:i+2]), 16, 8)
		if v >= 32 || v == '\n' || v == '\t' {
			b.WriteRune(rune(v))
		}
	}
	return b.String()
}
