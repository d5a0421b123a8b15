package rest

import (
	"net/http"
	"time"

	"socialmart-be/internal/boost"
	"socialmart-be/internal/campaign"
	"socialmart-be/internal/cart"
	"socialmart-be/internal/category"
	"socialmart-be/internal/dispute"
	"socialmart-be/internal/logger"
	"socialmart-be/internal/middleware"
	"socialmart-be/internal/order"
	"socialmart-be/internal/product"
	"socialmart-be/internal/review"
	"socialmart-be/internal/wishlist"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func init() {
	// Partial-update bodies must not silently drop misspelled or
	// non-editable fields.
	binding.EnableDecoderDisallowUnknownFields = true
}

// Services bundles the domain services the router dispatches to.
type Services struct {
	Products   product.Service
	Categories category.Service
	Carts      cart.Service
	Orders     order.Service
	Reviews    review.Service
	Disputes   dispute.Service
	Boosts     boost.Service
	Wishlists  wishlist.Service
	Campaigns  campaign.Service
}

type Options struct {
	Tokens         middleware.TokenParser
	Limiter        *middleware.RateLimiter
	RequestTimeout time.Duration
}

type handler struct {
	svc Services
}

// NewRouter builds the gin engine with the full route table.
func NewRouter(svc Services, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(
		logger.RequestID(),
		middleware.Recovery(),
		logger.AccessLog(),
		middleware.Timeout(opts.RequestTimeout),
		middleware.Authenticate(opts.Tokens),
	)

	var strict gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if opts.Limiter != nil {
		r.Use(opts.Limiter.General())
		strict = opts.Limiter.Strict()
	}

	h := &handler{svc: svc}
	auth := middleware.RequireAuth()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/products", h.listProducts)
	r.POST("/products", auth, h.createProduct)
	r.GET("/products/:id", h.getProduct)
	r.PUT("/products/:id", auth, h.updateProduct)
	r.DELETE("/products/:id", auth, h.deleteProduct)
	r.GET("/products/:id/price-history", h.priceHistory)
	r.POST("/search", h.searchProducts)

	r.GET("/categories", h.listCategories)
	r.GET("/categories/:id/subcategories", h.subcategories)

	r.GET("/boost-options", h.boostOptions)
	r.POST("/products/:id/boost", auth, strict, h.createBoost)
	r.GET("/my-boosts", auth, h.myBoosts)

	r.GET("/products/:id/reviews", h.listReviews)
	r.POST("/products/:id/reviews", auth, h.createReview)

	r.GET("/cart", auth, h.getCart)
	r.POST("/cart/items", auth, h.addCartItem)
	r.PUT("/cart/items/:itemId", auth, h.updateCartItem)
	r.DELETE("/cart/items/:itemId", auth, h.removeCartItem)

	r.GET("/orders", auth, h.listOrders)
	r.POST("/orders", auth, strict, h.checkout)
	r.GET("/orders/:id", auth, h.getOrder)
	r.PUT("/orders/:id/status", auth, h.updateOrderStatus)

	r.GET("/disputes", auth, h.listDisputes)
	r.POST("/disputes", auth, h.openDispute)
	r.PUT("/disputes/:id", auth, h.updateDispute)

	r.GET("/wishlists", auth, h.listWishlists)
	r.POST("/wishlists", auth, h.createWishlist)
	r.GET("/wishlists/:id/items", auth, h.wishlistItems)
	r.POST("/wishlists/:id/items", auth, h.addWishlistItem)
	r.DELETE("/wishlists/:id/items/:itemId", auth, h.removeWishlistItem)

	r.GET("/campaigns", h.listCampaigns)
	r.POST("/campaigns/:id/join", auth, h.joinCampaign)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	return r
}
