package rest

import (
	"net/http"

	"socialmart-be/internal/category"

	"github.com/gin-gonic/gin"
)

func (h *handler) listCategories(c *gin.Context) {
	tree, err := h.svc.Categories.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

func (h *handler) subcategories(c *gin.Context) {
	id, ok := pathID(c, "id", category.ErrCategoryNotFound)
	if !ok {
		return
	}

	children, err := h.svc.Categories.Subcategories(c.Request.Context(), id, c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, children)
}
