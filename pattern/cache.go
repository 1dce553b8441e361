package pattern

import glc "git.lolli.tech/lollipopkit/go_lru_cacher"

// compiled holds the part of pattern-parsing that's pure function of the
// pattern text itself: whether it's anchored and the unanchored body.
// Real Lua re-walks the pattern text on every match anyway (lstrlib.c has
// no separate "compile" step), so this cache exists purely to skip the
// anchor-prefix check on hot, repeatedly-used patterns (string.gsub/gmatch
// in a loop over many subjects), the same role go_lru_cacher plays for the
// teacher's lib_re.go regexp cache.
type compiled struct {
	anchored bool
	body     string
}

var cache = glc.NewCacher(64)

func compile(pat string) compiled {
	if c, ok := cache.Get(pat); ok {
		if cp, ok := c.(compiled); ok {
			return cp
		}
	}
	cp := compiled{}
	if len(pat) > 0 && pat[0] == '^' {
		cp.anchored = true
		cp.body = pat[1:]
	} else {
		cp.body = pat
	}
	cache.Set(pat, cp)
	return cp
}
