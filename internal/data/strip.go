package data

// StripComments removes # comments that sit outside string literals. Line
// breaks are kept so positions in later errors still point at the source.
func StripComments(src []byte) []byte {
	out := make([]byte, 0, len(src))
	inString, escaped, inComment := false, false, false
	for _, c := range src {
		switch {
		case inComment:
			if c == '\n' {
				inComment = false
				out = append(out, c)
			}
			continue
		case inString:
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"' || c == '\n':
				inString = false
			}
		case c == '"':
			inString = true
		case c == '#':
			inComment = true
			continue
		}
		out = append(out, c)
	}
	return out
}
