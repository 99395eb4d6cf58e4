package types

import "fmt"

// Item is one resolved product line. Immutable once created.
type Item struct {
	Name  string
	Price int
}

func (self Item) String() string { return fmt.Sprintf("%s ￥%d", self.Name, self.Price) }
