package api

import (
	"fmt"
	"net/http"

	"github.com/mangoshop/shopctl/internal/models"
)

// ListCartItems fetches the authenticated user's cart.
func (c *Client) ListCartItems() ([]models.CartItem, error) {
	var items []models.CartItem
	err := c.doJSON(http.MethodGet, "/cart/", true, nil, &items, "Failed to fetch cart items")
	return items, err
}

// AddToCart adds quantity units of a product to the cart. The backend
// merges into an existing line when one exists.
func (c *Client) AddToCart(productID, quantity int) error {
	body := map[string]int{"mango_id": productID, "quantity": quantity}
	return c.doJSON(http.MethodPost, "/add-to-cart/", true, body, nil, "Failed to add to cart")
}

// UpdateCartItem patches one line's quantity. Range checks belong to
// the cart store; this is the raw wire call.
func (c *Client) UpdateCartItem(cartItemID, quantity int) error {
	path := fmt.Sprintf("/cart-items/%d/", cartItemID)
	body := map[string]int{"quantity": quantity}
	return c.doJSON(http.MethodPatch, path, true, body, nil, "Failed to update quantity")
}

// RemoveCartItem deletes one line from the cart.
func (c *Client) RemoveCartItem(cartItemID int) error {
	path := fmt.Sprintf("/cart-items/%d/", cartItemID)
	return c.doJSON(http.MethodDelete, path, true, nil, nil, "Failed to remove item")
}
