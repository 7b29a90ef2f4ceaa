package entities

// PrizeTier identifies a row of the prize table by distance from the nearest extreme match
type PrizeTier int

const (
	PrizeTierNone    PrizeTier = 0
	PrizeTierJackpot PrizeTier = 1
	PrizeTierSecond  PrizeTier = 2
	PrizeTierThird   PrizeTier = 3
	PrizeTierFourth  PrizeTier = 4
	PrizeTierFifth   PrizeTier = 5
)

// PrizeTable maps distance from a full match (or from no match) to a prize amount.
//
// Matching all k numbers and matching none pay the same: picking half the pool means the
// complement of a ticket is itself a valid ticket, so both extremes are equally unlikely.
// Amounts[0] is the jackpot, Amounts[1] the near miss, and so on. Distances past the end pay nothing.
type PrizeTable struct {
	Amounts []int64
}

// DefaultPrizeTable returns the standard five tier table
func DefaultPrizeTable() PrizeTable {
	return PrizeTable{Amounts: []int64{100000, 10000, 1000, 200, 50}}
}

// Distance returns how far matchedCount is from the closer of 0 and k
func Distance(matchedCount, k int) int {
	d := matchedCount
	if k-matchedCount < d {
		d = k - matchedCount
	}
	return d
}

// Tier returns the prize tier for a matched count
func (t PrizeTable) Tier(matchedCount, k int) PrizeTier {
	if matchedCount < 0 || matchedCount > k {
		return PrizeTierNone
	}
	d := Distance(matchedCount, k)
	if d >= len(t.Amounts) || t.Amounts[d] <= 0 {
		return PrizeTierNone
	}
	return PrizeTier(d + 1)
}

// Prize returns the amount paid for a matched count, zero for no prize
func (t PrizeTable) Prize(matchedCount, k int) int64 {
	tier := t.Tier(matchedCount, k)
	if tier == PrizeTierNone {
		return 0
	}
	return t.Amounts[int(tier)-1]
}

// JackpotAmount returns the top tier prize
func (t PrizeTable) JackpotAmount() int64 {
	if len(t.Amounts) == 0 {
		return 0
	}
	return t.Amounts[0]
}
