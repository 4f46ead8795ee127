package syntax

func IsDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func IsKeywordStart(r rune) bool {
	return r >= 'a' && r <= 'z'
}

func IsKeywordPart(r rune) bool {
	return IsKeywordStart(r) || IsDigit(r) || r == '_'
}

// IsKeyword reports whether s lexes as a single keyword token.
func IsKeyword(s string) bool {
	for x, r := range s {
		if x == 0 && !IsKeywordStart(r) || !IsKeywordPart(r) {
			return false
		}
	}
	return s != ""
}
