package revopt

import (
	"context"
	"net/http"
)

// OptimizeService runs the revenue optimization pipeline.
type OptimizeService struct {
	client *Client
}

// Run executes the pipeline without streaming and returns the final
// result once every node has finished.
func (s *OptimizeService) Run(ctx context.Context, req *OptimizeRequest) (*OptimizeResult, error) {
	var result OptimizeResult
	if err := s.client.doJSON(ctx, http.MethodPost, optimizePath, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// NewController returns a controller for streaming runs.
func (s *OptimizeService) NewController() *PipelineController {
	return NewPipelineController(s.client)
}
