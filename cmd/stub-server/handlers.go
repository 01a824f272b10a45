package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/mangoshop/shopctl/internal/models"
)

// atoiField parses an integer form field, treating the empty string as
// zero.
func atoiField(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

// --- catalog ---

func (s *stubServer) listMangoes(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, *p)
	}
	c.JSON(http.StatusOK, out)
}

func (s *stubServer) getMango(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, exists := s.products[id]
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Mango not found"})
		return
	}
	c.JSON(http.StatusOK, *p)
}

func (s *stubServer) mangoProduct(c *gin.Context) (*models.Product, bool) {
	id, ok := paramID(c)
	if !ok {
		return nil, false
	}
	p, exists := s.products[id]
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Mango not found"})
		return nil, false
	}
	return p, true
}

func (s *stubServer) mangoFeedbacks(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.mangoProduct(c)
	if !ok {
		return
	}

	feedbacks := make([]models.Feedback, 0)
	var total int
	for _, o := range s.orders {
		for _, item := range o.Items {
			if item.MangoName == p.Name && item.Feedback != nil {
				fb := *item.Feedback
				fb.UserName = o.UserName
				feedbacks = append(feedbacks, fb)
				total += fb.Rating
			}
		}
	}
	avg := 0.0
	if len(feedbacks) > 0 {
		avg = float64(total) / float64(len(feedbacks))
	}
	c.JSON(http.StatusOK, gin.H{
		"mango_name":     p.Name,
		"average_rating": avg,
		"total_ratings":  len(feedbacks),
		"feedbacks":      feedbacks,
	})
}

func (s *stubServer) createMango(c *gin.Context) {
	p, ok := s.mangoFromForm(c, nil)
	if !ok {
		return
	}
	s.mu.Lock()
	p.ID = s.id()
	s.products[p.ID] = p
	s.mu.Unlock()
	c.JSON(http.StatusCreated, *p)
}

func (s *stubServer) updateMango(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, exists := s.products[id]
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Mango not found"})
		return
	}
	p, ok := s.mangoFromForm(c, existing)
	if !ok {
		return
	}
	p.ID = id
	s.products[id] = p
	c.JSON(http.StatusOK, *p)
}

// mangoFromForm parses the multipart product form. When prev is given
// (an update) a missing image keeps the previous file.
func (s *stubServer) mangoFromForm(c *gin.Context, prev *models.Product) (*models.Product, bool) {
	price, err := decimal.NewFromString(c.PostForm("price"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price"})
		return nil, false
	}
	stock, err := atoiField(c.PostForm("stock_quantity"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stock quantity"})
		return nil, false
	}

	p := &models.Product{
		Name:          c.PostForm("name"),
		Description:   c.PostForm("description"),
		Price:         price,
		StockQuantity: stock,
	}
	if p.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return nil, false
	}

	if file, err := c.FormFile("image"); err == nil {
		p.Image = "/media/mango_images/" + file.Filename
	} else if prev != nil {
		p.Image = prev.Image
	}
	if prev != nil {
		p.AverageRating = prev.AverageRating
		p.TotalRatings = prev.TotalRatings
	}
	return p, true
}

func (s *stubServer) deleteMango(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.products[id]; !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Mango not found"})
		return
	}
	delete(s.products, id)
	c.Status(http.StatusNoContent)
}

// --- cart ---

func (s *stubServer) getCart(c *gin.Context) {
	acct := s.userFor(c)
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.carts[acct.Username]
	if items == nil {
		items = []models.CartItem{}
	}
	c.JSON(http.StatusOK, items)
}

func (s *stubServer) addToCart(c *gin.Context) {
	acct := s.userFor(c)
	var req struct {
		MangoID  int `json:"mango_id"`
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, exists := s.products[req.MangoID]
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Mango not found"})
		return
	}

	items := s.carts[acct.Username]
	for i := range items {
		if items[i].Product.ID == req.MangoID {
			items[i].Quantity += req.Quantity
			c.JSON(http.StatusOK, gin.H{"message": "Cart updated"})
			return
		}
	}
	s.carts[acct.Username] = append(items, models.CartItem{
		ID:       s.id(),
		Product:  *p,
		Quantity: req.Quantity,
	})
	c.JSON(http.StatusCreated, gin.H{"message": "Added to cart"})
}

func (s *stubServer) updateCartItem(c *gin.Context) {
	acct := s.userFor(c)
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quantity"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.carts[acct.Username]
	for i := range items {
		if items[i].ID == id {
			if req.Quantity > items[i].Product.StockQuantity {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity exceeds available stock"})
				return
			}
			items[i].Quantity = req.Quantity
			c.JSON(http.StatusOK, items[i])
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
}

func (s *stubServer) deleteCartItem(c *gin.Context) {
	acct := s.userFor(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.carts[acct.Username]
	for i := range items {
		if items[i].ID == id {
			s.carts[acct.Username] = append(items[:i], items[i+1:]...)
			c.Status(http.StatusNoContent)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
}

// --- orders ---

var (
	freeShippingAt = decimal.NewFromInt(1000)
	flatShipping   = decimal.NewFromInt(50)
)

func (s *stubServer) createOrder(c *gin.Context) {
	acct := s.userFor(c)
	var req struct {
		PhoneNumber     string `json:"phone_number"`
		AdditionalPhone string `json:"additional_phone"`
		BillingAddress  string `json:"billing_address"`
		ShippingAddress string `json:"shipping_address"`
		PaymentMethod   string `json:"payment_method"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if req.PhoneNumber == "" || req.BillingAddress == "" || req.ShippingAddress == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please fill in all required fields"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.carts[acct.Username]
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty"})
		return
	}

	subtotal := decimal.Zero
	orderItems := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		lineTotal := item.LineTotal()
		subtotal = subtotal.Add(lineTotal)
		orderItems = append(orderItems, models.OrderItem{
			ID:          s.id(),
			MangoName:   item.Product.Name,
			MangoImage:  item.Product.Image,
			Description: item.Product.Description,
			Quantity:    item.Quantity,
			Price:       item.Product.Price,
			Subtotal:    lineTotal,
		})
		if p, exists := s.products[item.Product.ID]; exists {
			p.StockQuantity -= item.Quantity
		}
	}

	total := subtotal
	if subtotal.LessThan(freeShippingAt) {
		total = total.Add(flatShipping)
	}

	method := models.PaymentMethod(req.PaymentMethod)
	if method == "" {
		method = models.PaymentMethodCashOnDelivery
	}

	order := &models.Order{
		ID:              s.id(),
		UserName:        acct.Username,
		UserEmail:       acct.Email,
		TotalAmount:     total,
		OrderDate:       time.Now().UTC(),
		Status:          models.OrderStatusPending,
		BillingAddress:  req.BillingAddress,
		ShippingAddress: req.ShippingAddress,
		PhoneNumber:     req.PhoneNumber,
		AdditionalPhone: req.AdditionalPhone,
		PaymentMethod:   method,
		Items:           orderItems,
	}
	s.orders = append(s.orders, order)
	s.owners[order.ID] = acct.Username

	payment := &models.Payment{
		ID:            s.id(),
		OrderID:       order.ID,
		PaymentMethod: method,
		Amount:        total,
		PaymentStatus: models.PaymentStatusPending,
		PaymentDate:   order.OrderDate,
	}
	s.payments[payment.ID] = payment

	s.carts[acct.Username] = nil

	c.JSON(http.StatusCreated, gin.H{
		"message":      "Order placed successfully",
		"order_id":     order.ID,
		"total_amount": total,
	})
}

func (s *stubServer) userOrders(c *gin.Context) {
	acct := s.userFor(c)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Order, 0)
	for _, o := range s.orders {
		if s.owners[o.ID] == acct.Username {
			out = append(out, *o)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *stubServer) allOrders(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, *o)
	}
	c.JSON(http.StatusOK, out)
}

func (s *stubServer) updateOrder(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req struct {
		Status        *models.OrderStatus   `json:"status"`
		PaymentMethod *models.PaymentMethod `json:"payment_method"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.ID != id {
			continue
		}
		if req.Status != nil {
			o.Status = *req.Status
		}
		if req.PaymentMethod != nil {
			o.PaymentMethod = *req.PaymentMethod
			for _, p := range s.payments {
				if p.OrderID == id {
					p.PaymentMethod = *req.PaymentMethod
				}
			}
		}
		c.JSON(http.StatusOK, *o)
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
}

// --- feedback ---

func (s *stubServer) submitFeedback(c *gin.Context) {
	s.handleFeedback(c, false)
}

func (s *stubServer) updateFeedback(c *gin.Context) {
	s.handleFeedback(c, true)
}

func (s *stubServer) handleFeedback(c *gin.Context, update bool) {
	acct := s.userFor(c)
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Rating < 1 || req.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rating must be between 1 and 5"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if s.owners[o.ID] != acct.Username {
			continue
		}
		for i := range o.Items {
			if o.Items[i].ID != id {
				continue
			}
			if o.Status != models.OrderStatusDelivered {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Feedback is only available for delivered orders"})
				return
			}
			if update && o.Items[i].Feedback == nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "No feedback to update"})
				return
			}
			if !update && o.Items[i].Feedback != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Feedback already submitted"})
				return
			}
			o.Items[i].Feedback = &models.Feedback{
				ID:        s.id(),
				Rating:    req.Rating,
				Comment:   req.Comment,
				UserName:  acct.Username,
				CreatedAt: time.Now().UTC(),
			}
			msg := "Feedback submitted successfully!"
			if update {
				msg = "Feedback updated successfully!"
			}
			c.JSON(http.StatusOK, gin.H{"message": msg})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Order item not found"})
}

func (s *stubServer) getFeedback(c *gin.Context) {
	acct := s.userFor(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if s.owners[o.ID] != acct.Username {
			continue
		}
		for _, item := range o.Items {
			if item.ID == id {
				if item.Feedback == nil {
					c.JSON(http.StatusNotFound, gin.H{"error": "No feedback found"})
					return
				}
				c.JSON(http.StatusOK, *item.Feedback)
				return
			}
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Order item not found"})
}

func (s *stubServer) allFeedbacks(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Feedback, 0)
	for _, o := range s.orders {
		for _, item := range o.Items {
			if item.Feedback != nil {
				fb := *item.Feedback
				fb.UserName = o.UserName
				out = append(out, fb)
			}
		}
	}
	c.JSON(http.StatusOK, out)
}

// --- payments ---

func (s *stubServer) listPayments(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Payment, 0, len(s.payments))
	for _, p := range s.payments {
		out = append(out, *p)
	}
	c.JSON(http.StatusOK, out)
}

func (s *stubServer) updatePayment(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req struct {
		PaymentStatus models.PaymentStatus `json:"payment_status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.PaymentStatus == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, exists := s.payments[id]
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		return
	}
	p.PaymentStatus = req.PaymentStatus
	c.JSON(http.StatusOK, *p)
}
