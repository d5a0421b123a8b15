package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"socialmart-be/internal/boost"
	"socialmart-be/internal/campaign"
	"socialmart-be/internal/cart"
	"socialmart-be/internal/category"
	"socialmart-be/internal/dispute"
	"socialmart-be/internal/order"
	"socialmart-be/internal/product"
	"socialmart-be/internal/review"
	"socialmart-be/internal/wishlist"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{product.ErrInvalidPrice, http.StatusBadRequest},
		{cart.ErrOutOfStock, http.StatusBadRequest},
		{order.ErrEmptyCart, http.StatusBadRequest},
		{order.ErrMultiSellerCart, http.StatusBadRequest},
		{review.ErrNotPurchased, http.StatusBadRequest},
		{boost.ErrInvalidBoostOption, http.StatusBadRequest},
		{&queryError{name: "limit"}, http.StatusBadRequest},
		{cart.ErrInvalidProduct, http.StatusBadRequest},
		{review.ErrInvalidOrder, http.StatusBadRequest},
		{dispute.ErrInvalidOrder, http.StatusBadRequest},
		{wishlist.ErrInvalidProduct, http.StatusBadRequest},
		{campaign.ErrInvalidProduct, http.StatusBadRequest},
		{fmt.Errorf("get: %w", &pq.Error{Code: "22P02"}), http.StatusBadRequest},
		{order.ErrCartNotFound, http.StatusNotFound},
		{order.ErrOrderNotFound, http.StatusNotFound},
		{fmt.Errorf("load: %w", product.ErrProductNotFound), http.StatusNotFound},
		{wishlist.ErrWishlistItemNotFound, http.StatusNotFound},
		{category.ErrCategoryNotFound, http.StatusNotFound},
		{campaign.ErrCampaignNotFound, http.StatusNotFound},
		{review.ErrDuplicateReview, http.StatusConflict},
		{dispute.ErrDuplicateDispute, http.StatusConflict},
		{dispute.ErrInvalidTransition, http.StatusConflict},
		{product.ErrProductInUse, http.StatusConflict},
		{wishlist.ErrAlreadyInWishlist, http.StatusConflict},
		{campaign.ErrAlreadyJoined, http.StatusConflict},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}
