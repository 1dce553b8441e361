package stdlib

import (
	"math/rand"

	"git.lolli.tech/lollipopkit/lua54/rt"
)

// mathRandom/mathRandomseed use math/rand directly: no example repo in
// the corpus pulls in a third-party RNG (speedata-go-lua's own math.go
// uses the standard library the same way), so there is no ecosystem
// convention to follow here.
var mathRNG = rand.New(rand.NewSource(1))

func mathRandom(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	switch len(args) {
	case 0:
		return []rt.Value{mathRNG.Float64()}, nil
	case 1:
		m := checkInt(r, "random", args, 0)
		if m == 0 {
			return []rt.Value{int64(mathRNG.Uint64())}, nil
		}
		if m < 1 {
			argErrorf(r, "random", 1, "interval is empty")
		}
		return []rt.Value{1 + mathRNG.Int63n(m)}, nil
	default:
		lo := checkInt(r, "random", args, 0)
		hi := checkInt(r, "random", args, 1)
		if lo > hi {
			argErrorf(r, "random", 2, "interval is empty")
		}
		return []rt.Value{lo + mathRNG.Int63n(hi-lo+1)}, nil
	}
}

func mathRandomseed(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	if len(args) == 0 {
		return nil, nil
	}
	seed := checkInt(r, "randomseed", args, 0)
	mathRNG = rand.New(rand.NewSource(seed))
	return nil, nil
}
