package admin

import (
	log "github.com/sirupsen/logrus"

	"github.com/mangoshop/shopctl/internal/api"
	"github.com/mangoshop/shopctl/internal/models"
)

// ProductManager drives the catalog CRUD screen. Like the shopper
// screens it re-fetches the list after every mutation.
type ProductManager struct {
	client   *api.Client
	products []models.Product
}

// NewProductManager binds the screen to the admin's API client.
func NewProductManager(client *api.Client) *ProductManager {
	return &ProductManager{client: client}
}

// Refresh re-fetches the catalog.
func (m *ProductManager) Refresh() error {
	products, err := m.client.ListProducts()
	if err != nil {
		return err
	}
	m.products = products
	return nil
}

// Products returns the fetched catalog.
func (m *ProductManager) Products() []models.Product {
	return m.products
}

// Create adds a catalog entry from the multipart form and re-fetches.
func (m *ProductManager) Create(form api.ProductForm) (models.Product, error) {
	product, err := m.client.CreateProduct(form)
	if err != nil {
		return models.Product{}, err
	}

	log.WithFields(log.Fields{
		"mango_id": product.ID,
		"name":     product.Name,
	}).Info("Mango created")

	return product, m.Refresh()
}

// Update replaces an entry with the full form (image optional) and
// re-fetches.
func (m *ProductManager) Update(id int, form api.ProductForm) (models.Product, error) {
	product, err := m.client.UpdateProduct(id, form)
	if err != nil {
		return models.Product{}, err
	}

	log.WithFields(log.Fields{
		"mango_id": id,
		"name":     form.Name,
	}).Info("Mango updated")

	return product, m.Refresh()
}

// Delete removes an entry and re-fetches. The confirmation prompt is
// the calling flow's responsibility.
func (m *ProductManager) Delete(id int) error {
	if err := m.client.DeleteProduct(id); err != nil {
		return err
	}

	log.WithField("mango_id", id).Info("Mango deleted")

	return m.Refresh()
}
