// Package stemmer implements the classical Porter suffix-stripping
// algorithm for English over a lowercase ASCII byte buffer. Stem works in
// place on a private copy of its input and leaves the caller's slice
// unmodified. Ported step-for-step from the reference porter_stemmer.h: the
// same five steps (1a, 1b with its postprocess, 1c, 2, 3, 4, 5) in the same
// order, the same consonant/vowel/measure/cvc helpers.
package stemmer

// stemScratchCap is the largest buffer a token's stem ever needs: a handful
// of step1b/step5 rules replace a suffix with one byte more than they cut
// (e.g. "at" -> "ate"), so a token never grows by more than a few bytes
// across the whole pipeline. tokenizer.MaxTokenLen plus this headroom is
// always sufficient.
const stemScratchCap = 512

// Stem reduces buf and returns the new, possibly shorter, slice. The input
// is copied into a local scratch buffer before any suffix rule that could
// grow the token runs, so callers may pass a slice with no spare capacity.
func Stem(buf []byte) []byte {
	if len(buf) <= 2 {
		return buf
	}
	var scratch [stemScratchCap]byte
	n := copy(scratch[:], buf)
	work := scratch[:n]
	n = step1a(work, n)
	n = step1b(work, n)
	n = step1c(work, n)
	n = step2(work, n)
	n = step3(work, n)
	n = step4(work, n)
	n = step5(work, n)
	out := make([]byte, n)
	copy(out, work[:n])
	return out
}

// isConsonant reports whether buf[i] is a consonant, with the rule that
// 'y' is a consonant unless preceded by a consonant (and is a consonant at
// position 0).
func isConsonant(buf []byte, i int) bool {
	switch buf[i] {
	case 'a', 'e', 'i', 'o', 'u':
		return false
	case 'y':
		if i == 0 {
			return true
		}
		return !isConsonant(buf, i-1)
	default:
		return true
	}
}

// measureM computes the CV measure m over buf[0:end] inclusive.
func measureM(buf []byte, end int) int {
	n := 0
	i := 0
	for {
		if i > end {
			return n
		}
		if !isConsonant(buf, i) {
			break
		}
		i++
	}
	i++
	for {
		for {
			if i > end {
				return n
			}
			if isConsonant(buf, i) {
				break
			}
			i++
		}
		i++
		n++
		for {
			if i > end {
				return n
			}
			if !isConsonant(buf, i) {
				break
			}
			i++
		}
		i++
	}
}

func containsVowel(buf []byte, end int) bool {
	for i := 0; i <= end; i++ {
		if !isConsonant(buf, i) {
			return true
		}
	}
	return false
}

func doubleConsonant(buf []byte, end int) bool {
	if end < 1 {
		return false
	}
	if buf[end] != buf[end-1] {
		return false
	}
	return isConsonant(buf, end)
}

func cvc(buf []byte, end int) bool {
	if end < 2 {
		return false
	}
	if !isConsonant(buf, end) || isConsonant(buf, end-1) || !isConsonant(buf, end-2) {
		return false
	}
	switch buf[end] {
	case 'w', 'x', 'y':
		return false
	}
	return true
}

func endsWith(buf []byte, n int, suffix string) bool {
	sl := len(suffix)
	if sl > n {
		return false
	}
	return string(buf[n-sl:n]) == suffix
}

// setTo replaces the last cutSuffixLen bytes of buf[:n] with repl and
// returns the new length. buf must have capacity for the result.
func setTo(buf []byte, n int, repl string, cutSuffixLen int) int {
	newLen := (n - cutSuffixLen) + len(repl)
	copy(buf[n-cutSuffixLen:], repl)
	return newLen
}

func step1a(buf []byte, n int) int {
	switch {
	case endsWith(buf, n, "sses"):
		return setTo(buf, n, "ss", 4)
	case endsWith(buf, n, "ies"):
		return setTo(buf, n, "i", 3)
	case endsWith(buf, n, "ss"):
		return n
	case endsWith(buf, n, "s"):
		return setTo(buf, n, "", 1)
	}
	return n
}

func step1b(buf []byte, n int) int {
	did := false
	if endsWith(buf, n, "eed") {
		base := n - 4
		if base >= 0 && measureM(buf, base) > 0 {
			n = setTo(buf, n, "ee", 3)
		}
		return n
	}
	if endsWith(buf, n, "ed") {
		base := n - 3
		if base >= 0 && containsVowel(buf, base) {
			n = setTo(buf, n, "", 2)
			did = true
		}
	} else if endsWith(buf, n, "ing") {
		base := n - 4
		if base >= 0 && containsVowel(buf, base) {
			n = setTo(buf, n, "", 3)
			did = true
		}
	}
	if !did {
		return n
	}

	switch {
	case endsWith(buf, n, "at"):
		return setTo(buf, n, "ate", 2)
	case endsWith(buf, n, "bl"):
		return setTo(buf, n, "ble", 2)
	case endsWith(buf, n, "iz"):
		return setTo(buf, n, "ize", 2)
	}

	if doubleConsonant(buf, n-1) {
		ch := buf[n-1]
		if ch != 'l' && ch != 's' && ch != 'z' {
			return n - 1
		}
	}
	if measureM(buf, n-1) == 1 && cvc(buf, n-1) {
		return setTo(buf, n, "e", 0)
	}
	return n
}

func step1c(buf []byte, n int) int {
	if endsWith(buf, n, "y") {
		base := n - 2
		if base >= 0 && containsVowel(buf, base) {
			buf[n-1] = 'i'
		}
	}
	return n
}

type suffixRule struct {
	suf, rep string
}

var step2Rules = []suffixRule{
	{"ational", "ate"}, {"tional", "tion"}, {"enci", "ence"}, {"anci", "ance"},
	{"izer", "ize"}, {"abli", "able"}, {"alli", "al"}, {"entli", "ent"},
	{"eli", "e"}, {"ousli", "ous"}, {"ization", "ize"}, {"ation", "ate"},
	{"ator", "ate"}, {"alism", "al"}, {"iveness", "ive"}, {"fulness", "ful"},
	{"ousness", "ous"}, {"aliti", "al"}, {"iviti", "ive"}, {"biliti", "ble"},
}

func step2(buf []byte, n int) int {
	for _, r := range step2Rules {
		sl := len(r.suf)
		if endsWith(buf, n, r.suf) {
			base := n - sl - 1
			if base >= 0 && measureM(buf, base) > 0 {
				n = setTo(buf, n, r.rep, sl)
			}
			return n
		}
	}
	return n
}

var step3Rules = []suffixRule{
	{"icate", "ic"}, {"ative", ""}, {"alize", "al"}, {"iciti", "ic"},
	{"ical", "ic"}, {"ful", ""}, {"ness", ""},
}

func step3(buf []byte, n int) int {
	for _, r := range step3Rules {
		sl := len(r.suf)
		if endsWith(buf, n, r.suf) {
			base := n - sl - 1
			if base >= 0 && measureM(buf, base) > 0 {
				n = setTo(buf, n, r.rep, sl)
			}
			return n
		}
	}
	return n
}

var step4Sufs = []string{
	"al", "ance", "ence", "er", "ic", "able", "ible", "ant", "ement", "ment", "ent",
	"ion", "ou", "ism", "ate", "iti", "ous", "ive", "ize",
}

func step4(buf []byte, n int) int {
	for _, suf := range step4Sufs {
		sl := len(suf)
		if endsWith(buf, n, suf) {
			base := n - sl - 1
			if base < 0 {
				return n
			}
			if suf == "ion" {
				if buf[n-sl-1] != 's' && buf[n-sl-1] != 't' {
					return n
				}
			}
			if measureM(buf, base) > 1 {
				n = setTo(buf, n, "", sl)
			}
			return n
		}
	}
	return n
}

func step5(buf []byte, n int) int {
	if endsWith(buf, n, "e") {
		base := n - 2
		m := 0
		if base >= 0 {
			m = measureM(buf, base)
		}
		if m > 1 || (m == 1 && !cvc(buf, base)) {
			n--
		}
	}
	if n >= 2 && endsWith(buf, n, "ll") {
		base := n - 1
		if measureM(buf, base) > 1 {
			n--
		}
	}
	return n
}
