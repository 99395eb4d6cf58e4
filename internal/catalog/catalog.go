// Package catalog maps scanned codes to toy products.
// Mapping is pure FNV-1a hash arithmetic, same code always gives same item.
package catalog

import (
	"hash/fnv"

	"github.com/temoto/playreg/internal/types"
)

const (
	PriceMin    = 50
	PriceStep   = 10
	PriceLevels = 46

	FallbackName = "しょうひん"

	saltName  = "|NAME|v1"
	saltPrice = "|PRICE|v1"
)

// DefaultNames order is part of the mapping, do not sort.
var DefaultNames = []string{
	"ぶろっこりー",
	"きゅうり",
	"とまと",
	"ぴーまん",
	"りんご",
	"いちご",
	"ばなな",
	"ぱいん",
	"おにぎり",
	"ぎゅうにゅう",
	"りんごじゅーす",
	"おれんじじゅーす",
	"おちゃ",
	"かむかむれもん",
	"おにぎりせんべい",
	"たべっこどうぶつ",
	"くーりっしゅ",
	"ゆきみだいふく",
	"こーんふれーく",
}

type Resolver struct {
	names []string
}

// New copies names. nil selects DefaultNames, empty non-nil slice gives fallback name for every code.
func New(names []string) *Resolver {
	if names == nil {
		names = DefaultNames
	}
	self := &Resolver{names: make([]string, len(names))}
	copy(self.names, names)
	return self
}

func (self *Resolver) Len() int { return len(self.names) }

// Resolve expects trimmed and length checked code.
func (self *Resolver) Resolve(code string) types.Item {
	if len(self.names) == 0 {
		return types.Item{Name: FallbackName, Price: PriceMin}
	}
	nameHash := Hash32(code + saltName)
	priceHash := Hash32(code + saltPrice)
	return types.Item{
		Name:  self.names[nameHash%uint32(len(self.names))],
		Price: PriceMin + int(priceHash%PriceLevels)*PriceStep,
	}
}

// Hash32 is 32 bit FNV-1a over UTF-8 bytes of s:
// offset basis 2166136261, prime 16777619, xor then multiply.
func Hash32(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
