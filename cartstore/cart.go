package cartstore

import (
	"github.com/pkg/errors"
)

// CartLine is one product held in the cart. Title, ImageURL and Price are
// copied from the catalog when the product is first added and are never
// refreshed: a line keeps the price the shopper saw when adding it.
type CartLine struct {
	ProductID int64
	Title     string
	ImageURL  string
	Price     float64
	Amount    int
}

// Subtotal is Price times Amount.
func (l CartLine) Subtotal() float64 {
	return l.Price * float64(l.Amount)
}

// Cart is an ordered set of lines, unique by product id. Lines keep the order
// in which their products were first added. The zero value is an empty cart.
type Cart struct {
	lines []CartLine
	index map[int64]int
}

// NewCart builds a cart from lines in order. It rejects duplicate product ids
// and amounts below one.
func NewCart(lines ...CartLine) (Cart, error) {
	var c Cart
	for _, l := range lines {
		if l.Amount < 1 {
			return Cart{}, errors.Errorf("cartstore: product %d has amount %d", l.ProductID, l.Amount)
		}
		if _, dup := c.index[l.ProductID]; dup {
			return Cart{}, errors.Errorf("cartstore: product %d appears more than once", l.ProductID)
		}
		c.append(l)
	}
	return c, nil
}

// Lines returns a copy of the lines in cart order.
func (c Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len is the number of distinct products in the cart.
func (c Cart) Len() int {
	return len(c.lines)
}

// Line returns the line for productID.
func (c Cart) Line(productID int64) (CartLine, bool) {
	i, ok := c.index[productID]
	if !ok {
		return CartLine{}, false
	}
	return c.lines[i], true
}

// Total is the sum of all line subtotals.
func (c Cart) Total() float64 {
	var total float64
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

// Equal reports whether both carts hold the same lines in the same order.
func (c Cart) Equal(o Cart) bool {
	if len(c.lines) != len(o.lines) {
		return false
	}
	for i := range c.lines {
		if c.lines[i] != o.lines[i] {
			return false
		}
	}
	return true
}

func (c Cart) clone() Cart {
	out := Cart{
		lines: make([]CartLine, len(c.lines)),
		index: make(map[int64]int, len(c.lines)),
	}
	copy(out.lines, c.lines)
	for id, i := range c.index {
		out.index[id] = i
	}
	return out
}

func (c *Cart) append(l CartLine) {
	if c.index == nil {
		c.index = make(map[int64]int)
	}
	c.index[l.ProductID] = len(c.lines)
	c.lines = append(c.lines, l)
}

func (c *Cart) setAmount(productID int64, amount int) bool {
	i, ok := c.index[productID]
	if !ok {
		return false
	}
	c.lines[i].Amount = amount
	return true
}

func (c *Cart) remove(productID int64) bool {
	i, ok := c.index[productID]
	if !ok {
		return false
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	delete(c.index, productID)
	for j := i; j < len(c.lines); j++ {
		c.index[c.lines[j].ProductID] = j
	}
	return true
}
