package register

import "github.com/temoto/playreg/internal/types"

// Cart keeps at most cap most recently appended items, oldest evicted first.
// cap<=0 means unlimited.
type Cart struct {
	cap   int
	items []types.Item
}

func NewCart(cap int) *Cart {
	return &Cart{cap: cap}
}

// Append returns true when oldest item was evicted.
func (self *Cart) Append(item types.Item) bool {
	self.items = append(self.items, item)
	if self.cap > 0 && len(self.items) > self.cap {
		copy(self.items, self.items[1:])
		self.items = self.items[:self.cap]
		return true
	}
	return false
}

func (self *Cart) Clear()     { self.items = self.items[:0] }
func (self *Cart) Count() int { return len(self.items) }
func (self *Cart) Cap() int   { return self.cap }

// Items returns copy, oldest first.
func (self *Cart) Items() []types.Item {
	out := make([]types.Item, len(self.items))
	copy(out, self.items)
	return out
}

func (self *Cart) Total() int {
	total := 0
	for _, item := range self.items {
		total += item.Price
	}
	return total
}
