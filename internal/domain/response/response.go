package response

import (
	"github.com/kailas-cloud/veritas/internal/domain/item"
	"github.com/kailas-cloud/veritas/internal/domain/summary"
)

// Response is the PipelineResponse for one query.
type Response struct {
	Prompt  string
	Results []item.Item
	Summary summary.Summary
}

// Clustered reports whether the results carry cluster placements.
// Placement is all-or-nothing across the batch.
func (r Response) Clustered() bool {
	if len(r.Results) == 0 {
		return false
	}
	_, ok := r.Results[0].Placement()
	return ok
}
