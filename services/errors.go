package services

import (
	"context"
	"errors"

	"github.com/agentdouble/kpix/cache"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	ErrForbidden    = errors.New("insufficient rights")
	ErrUnauthorized = errors.New("invalid credentials")
)

// invalidateReports drops the organization's cached reporting views after a
// write. A cache failure only costs freshness, so it is logged and swallowed.
func invalidateReports(ctx context.Context, reports cache.ReportCache, logger *zap.Logger, orgID primitive.ObjectID) {
	if err := reports.Invalidate(ctx, orgID); err != nil {
		logger.Warn("report_cache_invalidate_failed",
			zap.String("organization_id", orgID.Hex()),
			zap.Error(err),
		)
	}
}
