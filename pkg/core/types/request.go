package types

// Provider selects which LLM family the backend runs the pipeline on.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

// IsValid reports whether p is a supported provider.
func (p Provider) IsValid() bool {
	return p == ProviderAnthropic || p == ProviderGemini
}

// OptimizeRequest is the body for the optimize endpoints. All hotel fields
// are free-form text; the backend's router node decides whether they are
// sufficient.
type OptimizeRequest struct {
	HotelName           string   `json:"hotel_name"`
	HotelLocation       string   `json:"hotel_location"`
	CurrentADR          string   `json:"current_adr"`
	HistoricalOccupancy string   `json:"historical_occupancy"`
	TargetRevPAR        string   `json:"target_revpar"`
	AdditionalContext   string   `json:"additional_context,omitempty"`
	Provider            Provider `json:"provider"`
}

// ChatRequest is the body for the conversational endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}
