package formula

import "strings"

// mode is the scanner state of [Strip].
type mode int

const (
	modeNormal mode = iota
	modeString
	modeVerbatim
)

// Strip removes line and block comments from text. String literals are
// copied byte-for-byte; comment markers inside them are not interpreted.
//
// A line comment is replaced by the line terminator that ended it ("\n" or
// "\r\n"), or by nothing if it runs to the end of text. A block comment is
// removed entirely; an unterminated one consumes the rest of text. Block
// comments do not nest.
//
// Strip makes a single left-to-right pass and never backtracks.
func Strip(text string) string {
	var (
		sb    strings.Builder
		state = modeNormal
		delim byte
	)

	sb.Grow(len(text))

	for i := 0; i < len(text); {
		c := text[i]

		switch state {
		case modeString:
			switch c {
			case '\\':
				// Copy the escape and whatever it escapes.
				end := min(i+2, len(text))
				sb.WriteString(text[i:end])
				i = end

				continue
			case delim:
				state = modeNormal
			}

			sb.WriteByte(c)
			i++

		case modeVerbatim:
			if c == delim {
				if delim == '"' && i+1 < len(text) && text[i+1] == '"' {
					sb.WriteString(`""`)
					i += 2

					continue
				}

				state = modeNormal
			}

			sb.WriteByte(c)
			i++

		default:
			switch {
			case strings.HasPrefix(text[i:], "//"):
				n := strings.IndexByte(text[i+2:], '\n')
				if n < 0 {
					return sb.String()
				}

				end := i + 2 + n
				if end > i+2 && text[end-1] == '\r' {
					sb.WriteString("\r\n")
				} else {
					sb.WriteByte('\n')
				}

				i = end + 1

			case strings.HasPrefix(text[i:], "/*"):
				n := strings.Index(text[i+2:], "*/")
				if n < 0 {
					return sb.String()
				}

				i += 2 + n + 2

			case strings.HasPrefix(text[i:], `@"`):
				sb.WriteString(`@"`)
				state, delim = modeVerbatim, '"'
				i += 2

			case c == '`':
				sb.WriteByte(c)
				state, delim = modeVerbatim, c
				i++

			case c == '"' || c == '\'':
				sb.WriteByte(c)
				state, delim = modeString, c
				i++

			default:
				sb.WriteByte(c)
				i++
			}
		}
	}

	return sb.String()
}
