package types

import "time"

// QueryType is the router node's classification of an optimize request.
type QueryType string

const (
	QueryValid        QueryType = "valid"
	QueryIrrelevant   QueryType = "irrelevant"
	QueryBooking      QueryType = "booking"
	QueryInsufficient QueryType = "insufficient"
)

// OptimizeResult is the terminal payload of an optimize run: the outputs of
// every downstream node plus per-node execution metadata.
type OptimizeResult struct {
	HotelName     string    `json:"hotel_name"`
	HotelLocation string    `json:"hotel_location"`
	QueryType     QueryType `json:"query_type"`
	Provider      Provider  `json:"provider"`
	ErrorMessage  string    `json:"error_message,omitempty"`

	MarketAnalysis  string `json:"market_analysis,omitempty"`
	DemandForecast  string `json:"demand_forecast,omitempty"`
	PricingStrategy string `json:"pricing_strategy,omitempty"`
	RevenuePlan     string `json:"revenue_plan,omitempty"`

	ExecutionTimes map[NodeName]float64 `json:"execution_times,omitempty"`
	ModelUsed      map[NodeName]string  `json:"model_used,omitempty"`
}

// HistoryRecord is one persisted optimize run.
type HistoryRecord struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	OptimizeResult
}

// HistoryPage is one page of optimize history.
type HistoryPage struct {
	Items  []HistoryRecord `json:"items"`
	Count  int             `json:"count"`
	Offset int             `json:"offset"`
	Limit  int             `json:"limit"`
}

// ChatMessage is one stored message of the conversational endpoint.
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
