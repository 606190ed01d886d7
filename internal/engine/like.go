package engine

import "unicode/utf8"

// Like reports whether s matches pattern under SQLite LIKE rules: % matches
// any sequence of characters (including none), _ matches exactly one
// character and ASCII letters match case-insensitively. There is no escape
// character.
func Like(s, pattern string) bool {
	// Iterative matcher with single-star backtracking.
	var si, pi int
	starP, starS := -1, 0

	for si < len(s) {
		if pi < len(pattern) {
			pr, pw := utf8.DecodeRuneInString(pattern[pi:])
			switch pr {
			case '%':
				starP, starS = pi, si
				pi += pw
				continue
			case '_':
				_, sw := utf8.DecodeRuneInString(s[si:])
				si += sw
				pi += pw
				continue
			default:
				sr, sw := utf8.DecodeRuneInString(s[si:])
				if foldASCII(sr) == foldASCII(pr) {
					si += sw
					pi += pw
					continue
				}
			}
		}
		if starP < 0 {
			return false
		}
		// Let the last % absorb one more character and retry.
		_, sw := utf8.DecodeRuneInString(s[starS:])
		starS += sw
		si = starS
		pi = starP + 1
	}

	for pi < len(pattern) && pattern[pi] == '%' {
		pi++
	}
	return pi == len(pattern)
}

func foldASCII(r rune) rune {
	if 'A' <= r && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
