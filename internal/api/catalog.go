package api

import (
	"fmt"
	"net/http"

	"github.com/mangoshop/shopctl/internal/models"
)

// ListProducts fetches the public catalog. No credential required.
func (c *Client) ListProducts() ([]models.Product, error) {
	var products []models.Product
	err := c.doJSON(http.MethodGet, "/mangoes/", false, nil, &products, "Failed to load mangoes")
	return products, err
}

// GetProduct fetches one catalog entry.
func (c *Client) GetProduct(id int) (models.Product, error) {
	var product models.Product
	path := fmt.Sprintf("/mangoes/%d/", id)
	err := c.doJSON(http.MethodGet, path, false, nil, &product, "Failed to load mango")
	return product, err
}

// ProductFeedbacks is the public per-product review listing.
type ProductFeedbacks struct {
	MangoName     string            `json:"mango_name"`
	AverageRating float64           `json:"average_rating"`
	TotalRatings  int               `json:"total_ratings"`
	Feedbacks     []models.Feedback `json:"feedbacks"`
}

// GetProductFeedbacks fetches the reviews left on a product by past
// buyers. Public, no credential required.
func (c *Client) GetProductFeedbacks(productID int) (ProductFeedbacks, error) {
	var pf ProductFeedbacks
	path := fmt.Sprintf("/mango/%d/feedbacks/", productID)
	err := c.doJSON(http.MethodGet, path, false, nil, &pf, "Failed to load feedbacks")
	return pf, err
}
