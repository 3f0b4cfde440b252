package domain

type CartItem struct {
	ID     int64   `json:"id"`
	Amount int     `json:"amount"`
	Title  string  `json:"title"`
	Price  float64 `json:"price"`
	Image  string  `json:"image"`
}

// Cart keeps insertion order; at most one item per product ID.
type Cart []CartItem

func (c Cart) Find(productID int64) (int, bool) {
	for i, item := range c {
		if item.ID == productID {
			return i, true
		}
	}
	return -1, false
}

func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}
