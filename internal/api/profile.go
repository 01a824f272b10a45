package api

import (
	"net/http"

	"github.com/mangoshop/shopctl/internal/models"
)

// Profile fetches the account plus nested profile for the current user.
func (c *Client) Profile() (models.ProfileResponse, error) {
	var pr models.ProfileResponse
	err := c.doJSON(http.MethodGet, "/profile/", true, nil, &pr, "Failed to load profile")
	return pr, err
}

// UpdateProfile patches the editable contact/address fields.
func (c *Client) UpdateProfile(p models.Profile) (models.ProfileResponse, error) {
	var pr models.ProfileResponse
	err := c.doJSON(http.MethodPatch, "/profile/", true, p, &pr, "Failed to update profile")
	return pr, err
}
