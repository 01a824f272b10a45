package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/mangoshop/shopctl/internal/models"
)

// ProductForm is the admin create/edit form. Image is optional on
// edit; when nil the server keeps the existing file.
type ProductForm struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
	ImageName     string
	Image         io.Reader
}

func (f ProductForm) validate() error {
	if f.Name == "" {
		return &ValidationError{Field: "name", Message: "Name is required"}
	}
	if f.Price.IsNegative() {
		return &ValidationError{Field: "price", Message: "Price cannot be negative"}
	}
	if f.StockQuantity < 0 {
		return &ValidationError{Field: "stock_quantity", Message: "Stock cannot be negative"}
	}
	return nil
}

// CreateProduct POSTs a new catalog entry as multipart form data.
func (c *Client) CreateProduct(form ProductForm) (models.Product, error) {
	var product models.Product
	if err := form.validate(); err != nil {
		return product, err
	}

	req := c.http.R().SetMultipartFormData(map[string]string{
		"name":           form.Name,
		"description":    form.Description,
		"price":          form.Price.StringFixed(2),
		"stock_quantity": strconv.Itoa(form.StockQuantity),
	})
	if form.Image != nil {
		req.SetMultipartField("image", form.ImageName, "application/octet-stream", form.Image)
	}

	resp, err := c.call(req, http.MethodPost, "/mangoes/", true)
	if err != nil {
		return product, err
	}
	if err := c.checkStatus(resp, "Failed to create mango"); err != nil {
		return product, err
	}
	err = decodeJSON(resp.Body(), &product, resp.StatusCode(), "Failed to create mango")
	return product, err
}

// UpdateProduct PUTs the full form against an existing entry.
func (c *Client) UpdateProduct(id int, form ProductForm) (models.Product, error) {
	var product models.Product
	if err := form.validate(); err != nil {
		return product, err
	}

	req := c.http.R().SetMultipartFormData(map[string]string{
		"name":           form.Name,
		"description":    form.Description,
		"price":          form.Price.StringFixed(2),
		"stock_quantity": strconv.Itoa(form.StockQuantity),
	})
	if form.Image != nil {
		req.SetMultipartField("image", form.ImageName, "application/octet-stream", form.Image)
	}

	path := fmt.Sprintf("/mangoes/%d/", id)
	resp, err := c.call(req, http.MethodPut, path, true)
	if err != nil {
		return product, err
	}
	if err := c.checkStatus(resp, "Failed to update mango"); err != nil {
		return product, err
	}
	err = decodeJSON(resp.Body(), &product, resp.StatusCode(), "Failed to update mango")
	return product, err
}

// DeleteProduct removes a catalog entry. Confirmation is the calling
// flow's job.
func (c *Client) DeleteProduct(id int) error {
	path := fmt.Sprintf("/mangoes/%d/", id)
	return c.doJSON(http.MethodDelete, path, true, nil, nil, "Failed to delete mango")
}
