// Package admin implements the back-office flows: the staff gate,
// product CRUD, order status/payment transitions and payment status
// management. The gate is a UI convenience only; the backend enforces
// authorization on every admin endpoint independently.
package admin

import (
	log "github.com/sirupsen/logrus"

	"github.com/mangoshop/shopctl/internal/api"
	"github.com/mangoshop/shopctl/internal/models"
)

// Gate fetches the current profile and admits only accounts the server
// reports as staff or superuser. Everyone else is bounced to login.
func Gate(client *api.Client) (models.ProfileResponse, error) {
	profile, err := client.Profile()
	if err != nil {
		return models.ProfileResponse{}, err
	}
	if !profile.IsAdmin() {
		log.WithField("username", profile.User.Username).Warn("Admin access denied")
		return models.ProfileResponse{}, &api.AuthError{Message: "Admin access required. Please log in."}
	}
	return profile, nil
}
