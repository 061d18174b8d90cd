package dto

import "github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"

type CartItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Image    string `json:"image,omitempty"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	State    string `json:"state"`
	Selected bool   `json:"selected"`
}

type Cart struct {
	Items     []CartItem `json:"items"`
	Selected  []string   `json:"selected"`
	ItemCount int        `json:"itemCount"`
}

type AddCartItemRequest struct {
	ID    string `json:"id" validate:"max=128"`
	Name  string `json:"name" validate:"max=256"`
	Image string `json:"image" validate:"omitempty,url"`
	Price int64  `json:"price" validate:"gte=0"`
}

type AddCartItemResponse struct {
	Notice string `json:"notice"`
	Cart   Cart   `json:"cart"`
}

type FailedDelete struct {
	ItemID string `json:"itemId"`
	Error  string `json:"error"`
}

type ClearCartResponse struct {
	Removed int            `json:"removed"`
	Failed  []FailedDelete `json:"failed"`
	Cart    Cart           `json:"cart"`
}

type ToggleResponse struct {
	ID       string `json:"id"`
	Selected bool   `json:"selected"`
}

type QuantityResponse struct {
	Item    CartItem `json:"item"`
	Changed bool     `json:"changed"`
}

func ItemFrom(it cart.Item, selected bool) CartItem {
	return CartItem{
		ID:       it.ID,
		Name:     it.Name,
		Image:    it.Image,
		Price:    it.Price,
		Quantity: it.Quantity,
		State:    string(it.State),
		Selected: selected,
	}
}

func CartFrom(s *cart.Store) Cart {
	items := s.Items()
	out := Cart{
		Items:     make([]CartItem, 0, len(items)),
		Selected:  []string{},
		ItemCount: len(items),
	}
	for _, it := range items {
		sel := s.IsSelected(it.ID)
		out.Items = append(out.Items, ItemFrom(it, sel))
		if sel {
			out.Selected = append(out.Selected, it.ID)
		}
	}
	return out
}
