package rest

import (
	"net/http"

	"socialmart-be/internal/order"

	"github.com/gin-gonic/gin"
)

type statusRequest struct {
	Status order.Status `json:"status"`
	Notes  *string      `json:"notes"`
}

func (h *handler) listOrders(c *gin.Context) {
	limit, offset, err := paging(c)
	if err != nil {
		respondError(c, err)
		return
	}

	opts := order.ListOptions{Limit: limit, Offset: offset}
	if raw := c.Query("status"); raw != "" {
		s := order.Status(raw)
		opts.Status = &s
	}

	res, err := h.svc.Orders.List(c.Request.Context(), principal(c).ID, opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) checkout(c *gin.Context) {
	var in order.CheckoutInput
	if !bindJSON(c, &in) {
		return
	}

	o, err := h.svc.Orders.Checkout(c.Request.Context(), principal(c).ID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (h *handler) getOrder(c *gin.Context) {
	id, ok := pathID(c, "id", order.ErrOrderNotFound)
	if !ok {
		return
	}

	detail, err := h.svc.Orders.Get(c.Request.Context(), principal(c).ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *handler) updateOrderStatus(c *gin.Context) {
	id, ok := pathID(c, "id", order.ErrOrderNotFound)
	if !ok {
		return
	}
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}

	o, err := h.svc.Orders.UpdateStatus(c.Request.Context(), principal(c).ID, id, req.Status, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}
