package rest

import (
	"net/http"

	"socialmart-be/internal/dispute"

	"github.com/gin-gonic/gin"
)

func (h *handler) listDisputes(c *gin.Context) {
	limit, offset, err := paging(c)
	if err != nil {
		respondError(c, err)
		return
	}

	opts := dispute.ListOptions{Type: c.Query("type"), Limit: limit, Offset: offset}
	if raw := c.Query("status"); raw != "" {
		s := dispute.Status(raw)
		opts.Status = &s
	}

	res, err := h.svc.Disputes.List(c.Request.Context(), principal(c).ID, opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) openDispute(c *gin.Context) {
	var in dispute.OpenInput
	if !bindJSON(c, &in) {
		return
	}

	d, err := h.svc.Disputes.Open(c.Request.Context(), principal(c).ID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *handler) updateDispute(c *gin.Context) {
	id, ok := pathID(c, "id", dispute.ErrDisputeNotFound)
	if !ok {
		return
	}
	var in dispute.UpdateInput
	if !bindJSON(c, &in) {
		return
	}

	d, err := h.svc.Disputes.Update(c.Request.Context(), principal(c).ID, id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
