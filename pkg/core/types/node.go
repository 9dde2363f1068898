package types

// NodeName identifies one stage of the optimization pipeline.
type NodeName string

const (
	NodeRouter            NodeName = "router"
	NodeMarketAnalyst     NodeName = "market_analyst"
	NodeDemandForecaster  NodeName = "demand_forecaster"
	NodePricingStrategist NodeName = "pricing_strategist"
	NodeRevenueManager    NodeName = "revenue_manager"
)

// PipelineNodes returns the stages in execution order.
func PipelineNodes() []NodeName {
	return []NodeName{
		NodeRouter,
		NodeMarketAnalyst,
		NodeDemandForecaster,
		NodePricingStrategist,
		NodeRevenueManager,
	}
}

// IsValid reports whether n names a known pipeline stage.
func (n NodeName) IsValid() bool {
	switch n {
	case NodeRouter, NodeMarketAnalyst, NodeDemandForecaster,
		NodePricingStrategist, NodeRevenueManager:
		return true
	}
	return false
}

// Label returns the human-readable stage name.
func (n NodeName) Label() string {
	switch n {
	case NodeRouter:
		return "Router"
	case NodeMarketAnalyst:
		return "Market Analyst"
	case NodeDemandForecaster:
		return "Demand Forecaster"
	case NodePricingStrategist:
		return "Pricing Strategist"
	case NodeRevenueManager:
		return "Revenue Manager"
	}
	return string(n)
}

// ModelLabel returns the display name of the model tier the backend assigns
// to this stage. The two synthesis stages run on the stronger tier; routing
// and analysis run on the fast tier.
func (n NodeName) ModelLabel(p Provider) string {
	strong := n == NodePricingStrategist || n == NodeRevenueManager
	if p == ProviderGemini {
		if strong {
			return "Gemini Pro"
		}
		return "Gemini Flash"
	}
	if strong {
		return "Claude Sonnet"
	}
	return "Claude Haiku"
}

// ResultField returns the portion of the final result produced by this
// stage. The router classifies but emits no prose, so it maps to nothing.
func (n NodeName) ResultField(r *OptimizeResult) string {
	if r == nil {
		return ""
	}
	switch n {
	case NodeMarketAnalyst:
		return r.MarketAnalysis
	case NodeDemandForecaster:
		return r.DemandForecast
	case NodePricingStrategist:
		return r.PricingStrategy
	case NodeRevenueManager:
		return r.RevenuePlan
	}
	return ""
}
