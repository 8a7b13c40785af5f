package jsparse

// StripMarkupComments blanks `<!-- -->` comment contents in template text,
// preserving newlines. Attribute values are kept: directive bindings like
// @click="handler" are live code in markup, not string data.
func StripMarkupComments(src string) string {
	out := []byte(src)
	for i := 0; i < len(out); i++ {
		if out[i] != '<' || i+3 >= len(out) || string(out[i:i+4]) != "<!--" {
			continue
		}
		j := i
		for j < len(out) {
			if out[j] == '-' && j+2 < len(out) && out[j+1] == '-' && out[j+2] == '>' {
				j += 3
				break
			}
			j++
		}
		for k := i; k < j && k < len(out); k++ {
			if out[k] != '\n' {
				out[k] = ' '
			}
		}
		i = j - 1
	}
	return string(out)
}

// StripCommentsAndStrings returns src with line comments, block comments and
// quoted-string contents replaced by spaces. Newlines are preserved so line
// and column positions in the result match the input. Text searches over the
// result can therefore never match inside a comment or a string literal.
func StripCommentsAndStrings(src string) string {
	const (
		code = iota
		lineComment
		blockComment
		single
		double
		backtick
	)
	out := []byte(src)
	state := code
	for i := 0; i < len(out); i++ {
		c := out[i]
		switch state {
		case code:
			switch c {
			case '/':
				if i+1 < len(out) {
					switch out[i+1] {
					case '/':
						state = lineComment
						out[i] = ' '
					case '*':
						state = blockComment
						out[i] = ' '
					}
				}
			case '\'':
				state = single
			case '"':
				state = double
			case '`':
				state = backtick
			}
		case lineComment:
			if c == '\n' {
				state = code
			} else {
				out[i] = ' '
			}
		case blockComment:
			if c == '*' && i+1 < len(out) && out[i+1] == '/' {
				out[i] = ' '
				out[i+1] = ' '
				i++
				state = code
			} else if c != '\n' {
				out[i] = ' '
			}
		case single, double, backtick:
			quote := byte('\'')
			if state == double {
				quote = '"'
			} else if state == backtick {
				quote = '`'
			}
			switch {
			case c == '\\' && i+1 < len(out):
				out[i] = ' '
				if out[i+1] != '\n' {
					out[i+1] = ' '
				}
				i++
			case c == quote:
				state = code
			case c == '\n' && state != backtick:
				// Unterminated string literal, bail out of it.
				state = code
			case c != '\n':
				out[i] = ' '
			}
		}
	}
	return string(out)
}
