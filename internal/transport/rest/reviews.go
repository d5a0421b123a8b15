package rest

import (
	"net/http"

	"socialmart-be/internal/product"
	"socialmart-be/internal/review"

	"github.com/gin-gonic/gin"
)

func (h *handler) listReviews(c *gin.Context) {
	id, ok := pathID(c, "id", product.ErrProductNotFound)
	if !ok {
		return
	}
	limit, offset, err := paging(c)
	if err != nil {
		respondError(c, err)
		return
	}

	res, err := h.svc.Reviews.List(c.Request.Context(), id, review.ListOptions{
		Sort:   review.SortBy(c.Query("sortBy")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) createReview(c *gin.Context) {
	id, ok := pathID(c, "id", product.ErrProductNotFound)
	if !ok {
		return
	}
	var in review.CreateInput
	if !bindJSON(c, &in) {
		return
	}

	res, err := h.svc.Reviews.Create(c.Request.Context(), principal(c).ID, id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}
