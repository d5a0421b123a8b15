package rest

import (
	"net/http"

	"socialmart-be/internal/wishlist"

	"github.com/gin-gonic/gin"
)

func (h *handler) listWishlists(c *gin.Context) {
	lists, err := h.svc.Wishlists.List(c.Request.Context(), principal(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lists)
}

func (h *handler) createWishlist(c *gin.Context) {
	var in wishlist.CreateInput
	if !bindJSON(c, &in) {
		return
	}

	w, err := h.svc.Wishlists.Create(c.Request.Context(), principal(c).ID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

func (h *handler) wishlistItems(c *gin.Context) {
	id, ok := pathID(c, "id", wishlist.ErrWishlistNotFound)
	if !ok {
		return
	}

	lines, err := h.svc.Wishlists.Items(c.Request.Context(), principal(c).ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lines)
}

func (h *handler) addWishlistItem(c *gin.Context) {
	id, ok := pathID(c, "id", wishlist.ErrWishlistNotFound)
	if !ok {
		return
	}
	var in wishlist.AddItemInput
	if !bindJSON(c, &in) {
		return
	}

	item, err := h.svc.Wishlists.AddItem(c.Request.Context(), principal(c).ID, id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *handler) removeWishlistItem(c *gin.Context) {
	id, ok := pathID(c, "id", wishlist.ErrWishlistNotFound)
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemId", wishlist.ErrWishlistItemNotFound)
	if !ok {
		return
	}

	if err := h.svc.Wishlists.RemoveItem(c.Request.Context(), principal(c).ID, id, itemID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from wishlist"})
}
