package api

import (
	"net/http"

	log "github.com/sirupsen/logrus"
)

type tokenResponse struct {
	Token string `json:"token"`
}

// RegisterRequest carries the signup form.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// Login exchanges credentials for a token and stores it in the
// injected session. The credential is written exactly once per login.
func (c *Client) Login(username, password string) error {
	if username == "" || password == "" {
		return &ValidationError{Message: "Please fill in all required fields"}
	}

	body := map[string]string{"username": username, "password": password}
	var tr tokenResponse
	if err := c.doJSON(http.MethodPost, "/login/", false, body, &tr, "Invalid username or password"); err != nil {
		return err
	}

	c.session.Set(tr.Token)
	log.WithField("username", username).Info("Logged in")
	return nil
}

// Register creates an account and stores the returned token, logging
// the new user straight in.
func (c *Client) Register(req RegisterRequest) error {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return &ValidationError{Message: "Please fill in all required fields"}
	}

	var tr tokenResponse
	if err := c.doJSON(http.MethodPost, "/register/", false, req, &tr, "Registration failed"); err != nil {
		return err
	}

	c.session.Set(tr.Token)
	log.WithField("username", req.Username).Info("Registered")
	return nil
}

// Logout clears the stored credential. The backend holds no session
// state beyond the token itself.
func (c *Client) Logout() {
	c.session.Clear()
	log.Info("Logged out")
}

// ChangePassword rotates the account password.
func (c *Client) ChangePassword(oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return &ValidationError{Message: "Please fill in all required fields"}
	}

	body := map[string]string{
		"old_password": oldPassword,
		"new_password": newPassword,
	}
	return c.doJSON(http.MethodPost, "/change-password/", true, body, nil, "Failed to change password")
}
