package action

// RollLoot runs one weighted pick over the action's loot table and returns the
// item with a quantity drawn uniformly from its [Min,Max] range. roll must
// return a value in [0,n); callers pass rand.Intn or a fixed stub in tests.
// An empty table, or a roll landing on a zero-quantity range, yields nothing.
func (t TypeTuning) RollLoot(roll func(n int) int) (item string, quantity int) {
	totalWeight := 0
	for _, entry := range t.Loot {
		totalWeight += entry.Weight
	}
	if totalWeight <= 0 {
		return "", 0
	}
	pick := roll(totalWeight)
	for _, entry := range t.Loot {
		pick -= entry.Weight
		if pick >= 0 {
			continue
		}
		quantity = entry.Min
		if span := entry.Max - entry.Min; span > 0 {
			quantity += roll(span + 1)
		}
		if quantity <= 0 {
			return "", 0
		}
		return entry.Item, quantity
	}
	return "", 0
}
