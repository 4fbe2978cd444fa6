package pricing

import (
	"math"
	"sort"
)

// MinGemsAtLeastTokens returns the cheapest set of packs, in gems, yielding at
// least targetTokens boosts. Between plans of equal cost the one with more
// boosts wins. Any pack may be bought any number of times.
func MinGemsAtLeastTokens(cat Catalog, targetTokens int) Plan {
	if targetTokens <= 0 {
		return Plan{}
	}
	largest := 0
	for _, p := range cat.Packs {
		if p.Gems > 0 && p.Tokens > largest {
			largest = p.Tokens
		}
	}
	if largest == 0 {
		return Plan{}
	}

	// cost[t] is the fewest gems buying exactly t boosts; overshooting the
	// target by more than one pack is never cheaper.
	limit := targetTokens + largest
	cost := make([]int, limit+1)
	via := make([]int, limit+1) // pack index bought last to reach t
	for t := range cost {
		cost[t] = math.MaxInt
		via[t] = -1
	}
	cost[0] = 0
	for t := 0; t < limit; t++ {
		if cost[t] == math.MaxInt {
			continue
		}
		for i, p := range cat.Packs {
			if p.Gems <= 0 || p.Tokens <= 0 || t+p.Tokens > limit {
				continue
			}
			if c := cost[t] + p.Gems; c < cost[t+p.Tokens] {
				cost[t+p.Tokens] = c
				via[t+p.Tokens] = i
			}
		}
	}

	best := -1
	for t := targetTokens; t <= limit; t++ {
		if cost[t] == math.MaxInt {
			continue
		}
		if best < 0 || cost[t] <= cost[best] {
			best = t
		}
	}
	if best < 0 {
		return Plan{}
	}
	return planFrom(cat, via, best)
}

// planFrom walks the choices back from t and groups them per pack, largest
// pack first.
func planFrom(cat Catalog, via []int, t int) Plan {
	qty := make(map[int]int)
	for t > 0 {
		i := via[t]
		qty[i]++
		t -= cat.Packs[i].Tokens
	}
	idx := make([]int, 0, len(qty))
	for i := range qty {
		idx = append(idx, i)
	}
	sort.Slice(idx, func(a, b int) bool { return cat.Packs[idx[a]].Gems > cat.Packs[idx[b]].Gems })

	var plan Plan
	for _, i := range idx {
		plan.add(cat.Packs[i], qty[i])
	}
	return plan
}
