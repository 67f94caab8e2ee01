package domain

import (
	"context"
)

// ServicePort defines the insights service interface
type ServicePort interface {
	Ask(ctx context.Context, in AskInput) (AskResp, error)
	Ranges(ctx context.Context, in RangesInput) (RangesResp, error)
	Validate(ctx context.Context, in ValidateInput) (ValidateResp, error)
	Intents(ctx context.Context) (IntentsResp, error)
}

// SourcePort reports which metrics backend the service reads
type SourcePort interface {
	Source() (kind, table string)
}
