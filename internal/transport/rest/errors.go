package rest

import (
	"context"
	"errors"
	"net/http"

	"socialmart-be/internal/boost"
	"socialmart-be/internal/campaign"
	"socialmart-be/internal/cart"
	"socialmart-be/internal/category"
	"socialmart-be/internal/db"
	"socialmart-be/internal/dispute"
	"socialmart-be/internal/logger"
	"socialmart-be/internal/order"
	"socialmart-be/internal/product"
	"socialmart-be/internal/review"
	"socialmart-be/internal/wishlist"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	errInvalidBody  = errors.New("invalid request body")
	errInvalidInput = errors.New("invalid input")
)

// queryError reports a malformed query parameter.
type queryError struct {
	name string
}

func (e *queryError) Error() string {
	return "invalid query parameter: " + e.name
}

var badRequest = []error{
	errInvalidBody,

	product.ErrNameRequired,
	product.ErrCategoryRequired,
	product.ErrInvalidPrice,
	product.ErrInvalidDiscount,
	product.ErrInvalidStatus,
	product.ErrEmptyUpdate,
	product.ErrInvalidPriceFilter,

	cart.ErrInvalidQuantity,
	cart.ErrProductRequired,
	cart.ErrInvalidProduct,
	cart.ErrEmptyItemUpdate,
	cart.ErrInvalidOptions,
	cart.ErrOutOfStock,

	order.ErrShippingAddressRequired,
	order.ErrPaymentMethodRequired,
	order.ErrInvalidStatus,
	order.ErrEmptyCart,
	order.ErrMultiSellerCart,

	review.ErrOrderRequired,
	review.ErrInvalidOrder,
	review.ErrInvalidRating,
	review.ErrInvalidSort,
	review.ErrNotPurchased,

	dispute.ErrOrderRequired,
	dispute.ErrInvalidOrder,
	dispute.ErrTypeRequired,
	dispute.ErrReasonRequired,
	dispute.ErrInvalidAmount,
	dispute.ErrInvalidStatus,
	dispute.ErrEmptyUpdate,

	boost.ErrInvalidBoostOption,

	wishlist.ErrNameRequired,
	wishlist.ErrProductRequired,
	wishlist.ErrInvalidProduct,
	wishlist.ErrInvalidPriority,
	wishlist.ErrInvalidTargetPrice,

	campaign.ErrProductRequired,
	campaign.ErrInvalidProduct,
}

// Missing and not-owned resources are reported the same way.
var notFound = []error{
	product.ErrProductNotFound,
	category.ErrCategoryNotFound,
	cart.ErrCartItemNotFound,
	order.ErrCartNotFound,
	order.ErrOrderNotFound,
	dispute.ErrDisputeNotFound,
	wishlist.ErrWishlistNotFound,
	wishlist.ErrWishlistItemNotFound,
	campaign.ErrCampaignNotFound,
}

var conflict = []error{
	product.ErrProductInUse,
	order.ErrInvalidTransition,
	review.ErrDuplicateReview,
	dispute.ErrDuplicateDispute,
	dispute.ErrInvalidTransition,
	wishlist.ErrAlreadyInWishlist,
	campaign.ErrAlreadyJoined,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// statusFor maps a service error to its HTTP status. Unknown errors are 500.
func statusFor(err error) int {
	var qe *queryError
	switch {
	case errors.As(err, &qe), isAny(err, badRequest), db.IsInvalidInput(err):
		return http.StatusBadRequest
	case isAny(err, notFound):
		return http.StatusNotFound
	case isAny(err, conflict):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	switch status {
	case http.StatusInternalServerError:
		logger.FromCtx(c.Request.Context()).Error("request failed",
			zap.String("layer", "transport"),
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
		c.AbortWithStatusJSON(status, gin.H{"error": "internal server error"})
	case http.StatusGatewayTimeout:
		c.AbortWithStatusJSON(status, gin.H{"error": "request timed out"})
	case http.StatusBadRequest:
		if db.IsInvalidInput(err) {
			err = errInvalidInput
		}
		c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
	default:
		c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
	}
}
