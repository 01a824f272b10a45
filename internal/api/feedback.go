package api

import (
	"fmt"
	"net/http"

	"github.com/mangoshop/shopctl/internal/models"
)

type feedbackBody struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// SubmitFeedback creates the feedback on an order item. One feedback
// per item; the backend rejects duplicates.
func (c *Client) SubmitFeedback(orderItemID, rating int, comment string) error {
	path := fmt.Sprintf("/order-item/%d/feedback/", orderItemID)
	body := feedbackBody{Rating: rating, Comment: comment}
	return c.doJSON(http.MethodPost, path, true, body, nil, "Failed to submit feedback")
}

// UpdateFeedback replaces an existing feedback. PUT, so resubmitting
// identical content is a no-op server-side.
func (c *Client) UpdateFeedback(orderItemID, rating int, comment string) error {
	path := fmt.Sprintf("/order-item/%d/feedback/", orderItemID)
	body := feedbackBody{Rating: rating, Comment: comment}
	return c.doJSON(http.MethodPut, path, true, body, nil, "Failed to submit feedback")
}

// GetItemFeedback fetches the feedback attached to one order item, if
// any.
func (c *Client) GetItemFeedback(orderItemID int) (models.Feedback, error) {
	var fb models.Feedback
	path := fmt.Sprintf("/order-item/%d/get-feedback/", orderItemID)
	err := c.doJSON(http.MethodGet, path, true, nil, &fb, "Failed to load feedback")
	return fb, err
}

// AdminListFeedbacks fetches every feedback for the back office.
func (c *Client) AdminListFeedbacks() ([]models.Feedback, error) {
	var fbs []models.Feedback
	err := c.doJSON(http.MethodGet, "/admin/all-feedbacks/", true, nil, &fbs, "Failed to load feedbacks")
	return fbs, err
}
