package domain

type Product struct {
	ID    int64   `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

type Stock struct {
	ProductID int64 `json:"id"`
	Amount    int   `json:"amount"`
}

func NewCartItem(p Product, amount int) CartItem {
	return CartItem{
		ID:     p.ID,
		Amount: amount,
		Title:  p.Title,
		Price:  p.Price,
		Image:  p.Image,
	}
}
