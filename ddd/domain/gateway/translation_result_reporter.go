package gateway

import (
	"context"

	"video-translate-service/ddd/domain/entity"
)

// TranslationResultReporter notifies downstream consumers about job outcomes.
type TranslationResultReporter interface {
	ReportSuccess(ctx context.Context, jobID string, artifact *entity.TranslatedArtifact) error
	ReportFailure(ctx context.Context, jobID, reason string) error
}
