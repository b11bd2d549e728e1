package service

// largestJSONObject returns the longest balanced {...} span in text. Braces
// inside JSON strings are ignored once an object has been opened.
func largestJSONObject(text string) (string, bool) {
	best := ""
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		end, ok := matchBrace(text, i)
		if !ok {
			continue
		}
		if end-i+1 > len(best) {
			best = text[i : end+1]
		}
		// Spans nested in this one are shorter.
		i = end
	}
	return best, best != ""
}

// matchBrace returns the index of the brace closing the one at start.
func matchBrace(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
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
				return i, true
			}
		}
	}
	return 0, false
}
