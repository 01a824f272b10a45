// Command stub-server is an in-memory double of the MangoShop REST
// backend, implementing the contract shopctl is written against. It
// exists for local development and manual testing only; it enforces
// the same auth scheme (Token header) but persists nothing.
package main

import (
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/mangoshop/shopctl/internal/metrics"
	"github.com/mangoshop/shopctl/internal/models"
)

type account struct {
	models.User
	Password string
	Profile  models.Profile
}

type stubServer struct {
	mu sync.RWMutex

	accounts map[string]*account // by username
	tokens   map[string]string   // token -> username
	products map[int]*models.Product
	carts    map[string][]models.CartItem // by username
	orders   []*models.Order
	owners   map[int]string // order id -> username
	payments map[int]*models.Payment

	nextID int
}

func newStubServer() *stubServer {
	s := &stubServer{
		accounts: make(map[string]*account),
		tokens:   make(map[string]string),
		products: make(map[int]*models.Product),
		carts:    make(map[string][]models.CartItem),
		owners:   make(map[int]string),
		payments: make(map[int]*models.Payment),
		nextID:   100,
	}

	s.accounts["admin"] = &account{
		User:     models.User{Username: "admin", Email: "admin@mangoshop.test", IsStaff: true, IsSuperuser: true},
		Password: "admin",
	}
	s.accounts["shopper"] = &account{
		User:     models.User{Username: "shopper", Email: "shopper@mangoshop.test", FirstName: "Sana", LastName: "Rahman"},
		Password: "shopper",
		Profile: models.Profile{
			PhoneNumber:     "+880 1711111111",
			BillingAddress:  "12 Green Road, Dhaka",
			ShippingAddress: "12 Green Road, Dhaka",
		},
	}

	seed := []models.Product{
		{Name: "Himsagar", Description: "Sweet, fiberless, from Chapai", Price: decimal.NewFromInt(250), StockQuantity: 80, Image: "/media/mango_images/himsagar.jpg"},
		{Name: "Langra", Description: "Classic green-skinned favorite", Price: decimal.NewFromInt(200), StockQuantity: 120, Image: "/media/mango_images/langra.jpg"},
		{Name: "Amrapali", Description: "Late-season, deep orange flesh", Price: decimal.NewFromInt(180), StockQuantity: 60, Image: "/media/mango_images/amrapali.jpg"},
	}
	for i := range seed {
		p := seed[i]
		p.ID = s.id()
		s.products[p.ID] = &p
	}
	return s
}

func (s *stubServer) id() int {
	s.nextID++
	return s.nextID
}

func init() {
	// Initialize logger
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(log.InfoLevel)
}

func main() {
	srv := newStubServer()

	router := gin.Default()
	router.Use(metrics.PrometheusMiddleware("stub-server"))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := router.Group("/api")
	{
		apiGroup.POST("/login/", srv.login)
		apiGroup.POST("/register/", srv.register)
		apiGroup.GET("/mangoes/", srv.listMangoes)
		apiGroup.GET("/mangoes/:id/", srv.getMango)
		apiGroup.GET("/mango/:id/feedbacks/", srv.mangoFeedbacks)

		auth := apiGroup.Group("", srv.requireToken)
		{
			auth.GET("/profile/", srv.profile)
			auth.PATCH("/profile/", srv.updateProfile)
			auth.POST("/change-password/", srv.changePassword)
			auth.GET("/cart/", srv.getCart)
			auth.POST("/add-to-cart/", srv.addToCart)
			auth.PATCH("/cart-items/:id/", srv.updateCartItem)
			auth.DELETE("/cart-items/:id/", srv.deleteCartItem)
			auth.POST("/create-order/", srv.createOrder)
			auth.GET("/user-orders-with-items/", srv.userOrders)
			auth.POST("/order-item/:id/feedback/", srv.submitFeedback)
			auth.PUT("/order-item/:id/feedback/", srv.updateFeedback)
			auth.GET("/order-item/:id/get-feedback/", srv.getFeedback)
		}

		staff := apiGroup.Group("", srv.requireToken, srv.requireStaff)
		{
			staff.POST("/mangoes/", srv.createMango)
			staff.PUT("/mangoes/:id/", srv.updateMango)
			staff.DELETE("/mangoes/:id/", srv.deleteMango)
			staff.GET("/admin-orders-details/", srv.allOrders)
			staff.PATCH("/orders/:id/", srv.updateOrder)
			staff.GET("/admin/all-feedbacks/", srv.allFeedbacks)
			staff.GET("/payments/", srv.listPayments)
			staff.PATCH("/payments/:id/", srv.updatePayment)
		}
	}

	port := getEnv("PORT", "8000")
	log.WithField("port", port).Info("Stub server starting")
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}

// --- auth ---

func (s *stubServer) userFor(c *gin.Context) *account {
	header := c.GetHeader("Authorization")
	const prefix = "Token "
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	username, ok := s.tokens[header[len(prefix):]]
	if !ok {
		return nil
	}
	return s.accounts[username]
}

func (s *stubServer) requireToken(c *gin.Context) {
	if s.userFor(c) == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid token."})
	}
}

func (s *stubServer) requireStaff(c *gin.Context) {
	acct := s.userFor(c)
	if acct == nil || !(acct.IsStaff || acct.IsSuperuser) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
	}
}

func (s *stubServer) login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[req.Username]
	if !ok || acct.Password != req.Password {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid username or password"})
		return
	}
	token := uuid.New().String()
	s.tokens[token] = req.Username
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *stubServer) register(c *gin.Context) {
	var req struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Password  string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[req.Username]; exists {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username already taken"})
		return
	}
	s.accounts[req.Username] = &account{
		User: models.User{
			Username:  req.Username,
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
		},
		Password: req.Password,
	}
	token := uuid.New().String()
	s.tokens[token] = req.Username
	c.JSON(http.StatusCreated, gin.H{"token": token})
}

// --- profile ---

func (s *stubServer) profile(c *gin.Context) {
	acct := s.userFor(c)
	s.mu.RLock()
	defer s.mu.RUnlock()
	c.JSON(http.StatusOK, gin.H{
		"user":         acct.User,
		"profile":      acct.Profile,
		"is_staff":     acct.IsStaff,
		"is_superuser": acct.IsSuperuser,
	})
}

func (s *stubServer) updateProfile(c *gin.Context) {
	acct := s.userFor(c)
	var p models.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	s.mu.Lock()
	acct.Profile = p
	s.mu.Unlock()
	s.profile(c)
}

func (s *stubServer) changePassword(c *gin.Context) {
	acct := s.userFor(c)
	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if acct.Password != req.OldPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Current password is incorrect"})
		return
	}
	acct.Password = req.NewPassword
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func paramID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return id, true
}
