package campaign

import (
	"time"

	"github.com/shopspring/decimal"
)

const StatusActive = "active"

type ParticipationStatus string

const (
	ParticipationPending  ParticipationStatus = "pending"
	ParticipationApproved ParticipationStatus = "approved"
	ParticipationRejected ParticipationStatus = "rejected"
)

// Campaign is a time-boxed promotion sellers can enter products into. It is
// open when public, active and now lies within [StartDate, EndDate].
type Campaign struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	CampaignType string    `json:"campaign_type"`
	Status       string    `json:"status"`
	IsPublic     bool      `json:"is_public"`
	BannerURL    *string   `json:"banner_url"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	CreatedAt    time.Time `json:"created_at"`
}

// Participation is a seller's request to feature a product in a campaign.
// Requests start pending; approval happens outside this service.
type Participation struct {
	ID              string              `json:"id"`
	CampaignID      string              `json:"campaign_id"`
	ProductID       string              `json:"product_id"`
	RequestedBy     string              `json:"requested_by"`
	Status          ParticipationStatus `json:"status"`
	FeaturedOrder   int                 `json:"featured_order"`
	CampaignViews   int                 `json:"campaign_views"`
	CampaignClicks  int                 `json:"campaign_clicks"`
	CampaignSales   int                 `json:"campaign_sales"`
	CampaignRevenue decimal.Decimal     `json:"campaign_revenue"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type JoinInput struct {
	ProductID string `json:"product_id"`
}
