package rest

import (
	"net/http"

	"socialmart-be/internal/campaign"

	"github.com/gin-gonic/gin"
)

func (h *handler) listCampaigns(c *gin.Context) {
	campaigns, err := h.svc.Campaigns.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaigns)
}

func (h *handler) joinCampaign(c *gin.Context) {
	id, ok := pathID(c, "id", campaign.ErrCampaignNotFound)
	if !ok {
		return
	}
	var in campaign.JoinInput
	if !bindJSON(c, &in) {
		return
	}

	p, err := h.svc.Campaigns.Join(c.Request.Context(), principal(c).ID, id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}
