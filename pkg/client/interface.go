package client

import (
	"context"

	"github.com/gpec/fieldselector/pkg/types"
)

type VisionClient interface {
	SimpleQuery(ctx context.Context, model, prompt, imgB64 string) (string, error)
	SuggestFields(ctx context.Context, model, prompt, imgB64 string) (*types.SuggestionResult, error)
}
