package pricing

import (
	"errors"
	"fmt"
	"sort"
)

// Pack is one gem -> boost token exchange rate in the store.
type Pack struct {
	ID     string // SKU id, e.g., "gems-10"
	Name   string // display name, e.g., "Boost Crate"
	Gems   int    // gems spent per unit
	Tokens int    // boost tokens granted per unit
}

// Catalog is the set of exchange packs offered to players.
type Catalog struct {
	TokenName string // e.g., "Boost"
	Packs     []Pack
}

// Plan summarizes an exchange.
type Plan struct {
	Purchases   []Purchase `json:"purchases"`
	TotalGems   int        `json:"totalGems"`
	TotalTokens int        `json:"totalTokens"`
}

// Purchase is one line item in the plan.
type Purchase struct {
	PackID     string `json:"packId"`
	Name       string `json:"name"`
	Qty        int    `json:"qty"`
	UnitGems   int    `json:"unitGems"`
	UnitTokens int    `json:"unitTokens"`
	Subtotal   int    `json:"subtotal"` // gems
}

var ErrInvalidCatalog = errors.New("invalid catalog")

// DefaultCatalog is the standard exchange table: 10 gems for 50 tokens,
// 5 for 20 and 1 for 3.
func DefaultCatalog() Catalog {
	return Catalog{
		TokenName: "Boost",
		Packs: []Pack{
			{ID: "gems-10", Name: "Boost Crate", Gems: 10, Tokens: 50},
			{ID: "gems-5", Name: "Boost Bag", Gems: 5, Tokens: 20},
			{ID: "gems-1", Name: "Boost", Gems: 1, Tokens: 3},
		},
	}
}

// Validate checks that every pack has positive gems and tokens.
func (c Catalog) Validate() error {
	if len(c.Packs) == 0 {
		return fmt.Errorf("%w: no packs", ErrInvalidCatalog)
	}
	for i, p := range c.Packs {
		if p.Gems <= 0 || p.Tokens <= 0 {
			return fmt.Errorf("%w: pack[%d] %q needs positive gems and tokens", ErrInvalidCatalog, i, p.ID)
		}
	}
	return nil
}

// byGemsDesc returns a copy of the packs, largest first.
func (c Catalog) byGemsDesc() []Pack {
	packs := append([]Pack(nil), c.Packs...)
	sort.SliceStable(packs, func(i, j int) bool { return packs[i].Gems > packs[j].Gems })
	return packs
}

// Exchange converts exactly gems into tokens, greedily taking the largest
// pack first. Gems that no pack can absorb are left out of the plan.
func Exchange(cat Catalog, gems int) Plan {
	var plan Plan
	if gems <= 0 {
		return plan
	}
	for _, p := range cat.byGemsDesc() {
		if p.Gems <= 0 {
			continue
		}
		qty := gems / p.Gems
		if qty == 0 {
			continue
		}
		gems -= qty * p.Gems
		plan.add(p, qty)
	}
	return plan
}

func (plan *Plan) add(p Pack, qty int) {
	sub := p.Gems * qty
	plan.Purchases = append(plan.Purchases, Purchase{
		PackID:     p.ID,
		Name:       p.Name,
		Qty:        qty,
		UnitGems:   p.Gems,
		UnitTokens: p.Tokens,
		Subtotal:   sub,
	})
	plan.TotalGems += sub
	plan.TotalTokens += p.Tokens * qty
}
