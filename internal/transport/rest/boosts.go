package rest

import (
	"net/http"

	"socialmart-be/internal/product"

	"github.com/gin-gonic/gin"
)

type boostRequest struct {
	BoostOptionID string `json:"boost_option_id"`
}

func (h *handler) boostOptions(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Boosts.Options())
}

func (h *handler) createBoost(c *gin.Context) {
	id, ok := pathID(c, "id", product.ErrProductNotFound)
	if !ok {
		return
	}
	var req boostRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.svc.Boosts.Create(c.Request.Context(), principal(c).ID, id, req.BoostOptionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *handler) myBoosts(c *gin.Context) {
	boosts, err := h.svc.Boosts.ListMine(c.Request.Context(), principal(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, boosts)
}
