package revopt

import "github.com/hotelkit/revopt-go/pkg/core/types"

// Type aliases re-exporting the core wire types for SDK users.

// NodeName identifies one stage of the optimization pipeline.
type NodeName = types.NodeName

// Node constants in pipeline order.
const (
	NodeRouter            = types.NodeRouter
	NodeMarketAnalyst     = types.NodeMarketAnalyst
	NodeDemandForecaster  = types.NodeDemandForecaster
	NodePricingStrategist = types.NodePricingStrategist
	NodeRevenueManager    = types.NodeRevenueManager
)

// Provider selects the LLM family used by the backend.
type Provider = types.Provider

const (
	ProviderAnthropic = types.ProviderAnthropic
	ProviderGemini    = types.ProviderGemini
)

type (
	// OptimizeRequest is the body for the optimize endpoints.
	OptimizeRequest = types.OptimizeRequest

	// OptimizeResult is the terminal payload of an optimize run.
	OptimizeResult = types.OptimizeResult

	// ChatRequest is the body for the conversational endpoint.
	ChatRequest = types.ChatRequest

	// ChatMessage is one stored conversational message.
	ChatMessage = types.ChatMessage

	// HistoryRecord is one persisted optimize run.
	HistoryRecord = types.HistoryRecord

	// HistoryPage is one page of optimize history.
	HistoryPage = types.HistoryPage

	// StreamEvent is the tagged union of optimize-stream events.
	StreamEvent = types.StreamEvent

	// ProgressEvent reports node output during a run.
	ProgressEvent = types.ProgressEvent

	// ResultEvent carries the final result.
	ResultEvent = types.ResultEvent

	// ChatDelta is one frame of the conversational stream.
	ChatDelta = types.ChatDelta
)

// QueryType constants.
const (
	QueryValid        = types.QueryValid
	QueryIrrelevant   = types.QueryIrrelevant
	QueryBooking      = types.QueryBooking
	QueryInsufficient = types.QueryInsufficient
)
