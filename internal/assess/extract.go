// Package assess parses the collaborator's assessment payload defensively
// and reconciles it with the crisis detector.
package assess

// ExtractObject returns the first balanced {...} substring of text. Braces
// inside JSON string literals are ignored. ok is false when no complete
// object exists.
func ExtractObject(text string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if start < 0 {
			if c == '{' {
				start = i
				depth = 1
			}
			continue
		}
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
