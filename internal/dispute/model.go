package dispute

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusOpen             Status = "open"
	StatusAwaitingResponse Status = "awaiting_response"
	StatusEscalated        Status = "escalated"
	StatusResolved         Status = "resolved"
	StatusClosed           Status = "closed"
)

var transitions = map[Status][]Status{
	StatusOpen:             {StatusAwaitingResponse, StatusEscalated, StatusResolved, StatusClosed},
	StatusAwaitingResponse: {StatusOpen, StatusEscalated, StatusResolved, StatusClosed},
	StatusEscalated:        {StatusResolved, StatusClosed},
	StatusResolved:         {StatusClosed},
}

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusAwaitingResponse, StatusEscalated, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// CanTransition reports whether a dispute may move from one status to
// another. Staying in the same status is always allowed.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Message is one entry of the append-only conversation.
type Message struct {
	From         string    `json:"from"`
	Message      string    `json:"message"`
	Timestamp    time.Time `json:"timestamp"`
	EvidenceURLs []string  `json:"evidence_urls"`
}

type Dispute struct {
	ID                  string           `json:"id"`
	OrderID             string           `json:"order_id"`
	BuyerID             string           `json:"buyer_id"`
	SellerID            string           `json:"seller_id"`
	DisputeType         string           `json:"dispute_type"`
	Reason              string           `json:"reason"`
	Description         string           `json:"description"`
	EvidenceURLs        []string         `json:"evidence_urls"`
	RequestedResolution string           `json:"requested_resolution"`
	RequestedAmount     *decimal.Decimal `json:"requested_amount"`
	Status              Status           `json:"status"`
	Messages            []Message        `json:"messages"`
	BuyerLastResponse   *time.Time       `json:"buyer_last_response"`
	SellerLastResponse  *time.Time       `json:"seller_last_response"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

type OpenInput struct {
	OrderID             string           `json:"order_id"`
	DisputeType         string           `json:"dispute_type"`
	Reason              string           `json:"reason"`
	Description         string           `json:"description"`
	EvidenceURLs        []string         `json:"evidence_urls"`
	RequestedResolution string           `json:"requested_resolution"`
	RequestedAmount     *decimal.Decimal `json:"requested_amount"`
}

type UpdateInput struct {
	Status       *Status  `json:"status"`
	Response     *string  `json:"response"`
	EvidenceURLs []string `json:"evidence_urls"`
}

// Change is a participant's update as applied by the repository.
type Change struct {
	DisputeID string
	ActorID   string
	Status    *Status
	Message   *Message
	At        time.Time
}

type ListOptions struct {
	Status *Status
	Type   string
	Limit  int
	Offset int
}

type ListResult struct {
	Disputes []Dispute `json:"disputes"`
	Total    int       `json:"total"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
}
