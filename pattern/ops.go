package pattern

import "strings"

// Find locates pat in src starting at byte offset init. When plain is
// true the pattern is treated as a literal substring (string.find's
// fourth argument), bypassing the pattern engine entirely.
func Find(src, pat string, init int, plain bool) (start, end int, caps []any, ok bool, err error) {
	if init < 0 {
		init = 0
	}
	if init > len(src) {
		return 0, 0, nil, false, nil
	}
	if plain || !hasSpecials(pat) {
		idx := strings.Index(src[init:], pat)
		if idx < 0 {
			return 0, 0, nil, false, nil
		}
		s := init + idx
		return s, s + len(pat), nil, true, nil
	}
	return Match(src, pat, init)
}

func hasSpecials(pat string) bool {
	return strings.ContainsAny(pat, "^$*+?.([%-")
}

// Match1 is a convenience for string.match: like Match, but callers that
// only want the captures (or, with no explicit captures, the whole
// match) use this directly.
func Match1(src, pat string, init int) (caps []any, ok bool, err error) {
	_, _, caps, ok, err = Match(src, pat, init)
	return
}

// GsubResult is one substitution site found while driving string.gsub.
type GsubResult struct {
	Start, End int
	Captures   []any
	Whole      string
}

// Gsub finds up to maxN (or unlimited, if maxN < 0) non-overlapping
// matches of pat in src, invoking repl for each with that match's
// captures (or, when the pattern has none, a single capture holding the
// whole match, matching string.gsub's convention). repl returns the
// literal replacement text and whether a substitution actually happened
// (returning ok=false leaves the matched text unchanged, as when a
// gsub replacement function returns nil/false).
func Gsub(src, pat string, maxN int, repl func(whole string, caps []any) (string, bool, error)) (string, int, error) {
	cp := compile(pat)
	var out strings.Builder
	s := 0
	count := 0
	for s <= len(src) {
		if maxN >= 0 && count >= maxN {
			break
		}
		ms := &matchState{src: src, pat: cp.body}
		e, err := ms.match(s, 0)
		if err != nil {
			return "", 0, err
		}
		if e >= 0 {
			caps, cerr := ms.pushCaptures(s, e)
			if cerr != nil {
				return "", 0, cerr
			}
			whole := src[s:e]
			repText, did, rerr := repl(whole, caps)
			if rerr != nil {
				return "", 0, rerr
			}
			if did {
				out.WriteString(repText)
			} else {
				out.WriteString(whole)
			}
			count++
			if e > s {
				s = e
				continue
			}
		}
		if s < len(src) {
			out.WriteByte(src[s])
		}
		s++
		if cp.anchored {
			break
		}
	}
	if s < len(src) {
		out.WriteString(src[s:])
	}
	return out.String(), count, nil
}
