package rest

import (
	"net/http"

	"socialmart-be/internal/cart"

	"github.com/gin-gonic/gin"
)

func (h *handler) getCart(c *gin.Context) {
	view, err := h.svc.Carts.GetCart(c.Request.Context(), principal(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// addCartItem answers 201 for a new line and 200 when the add merged into an
// existing one.
func (h *handler) addCartItem(c *gin.Context) {
	var in cart.AddItemInput
	if !bindJSON(c, &in) {
		return
	}

	item, merged, err := h.svc.Carts.AddItem(c.Request.Context(), principal(c).ID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusCreated
	if merged {
		status = http.StatusOK
	}
	c.JSON(status, item)
}

func (h *handler) updateCartItem(c *gin.Context) {
	id, ok := pathID(c, "itemId", cart.ErrCartItemNotFound)
	if !ok {
		return
	}
	var in cart.UpdateItemInput
	if !bindJSON(c, &in) {
		return
	}

	item, err := h.svc.Carts.UpdateItem(c.Request.Context(), principal(c).ID, id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *handler) removeCartItem(c *gin.Context) {
	id, ok := pathID(c, "itemId", cart.ErrCartItemNotFound)
	if !ok {
		return
	}

	if err := h.svc.Carts.RemoveItem(c.Request.Context(), principal(c).ID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
}
