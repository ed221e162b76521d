package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/gateway"
	"github.com/spec-kit/helpdesk-portal/internal/policy"
	"github.com/spec-kit/helpdesk-portal/internal/validation"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util/errorutil"
)

var exportResources = map[string]bool{"tickets": true, "companies": true, "users": true}

// ExportService checks export permissions and streams downloads.
type ExportService struct {
	gateway ExportGateway
	logger  *zap.Logger
}

// NewExportService creates the service.
func NewExportService(gw ExportGateway, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{gateway: gw, logger: logger.Named("export")}
}

// Export validates req and opens the download. The caller closes the body.
func (s *ExportService) Export(ctx context.Context, sess *domain.Session, req gateway.ExportRequest) (*gateway.Download, error) {
	if !policy.CanExport(sess.Role()) {
		return nil, apperrors.NewForbidden("exports are not available for your role")
	}
	req.Resource = strings.ToLower(strings.TrimSpace(req.Resource))
	if req.Resource == "" {
		req.Resource = "tickets"
	}
	if req.Format == "" {
		req.Format = gateway.ExportCSV
	}

	v := validation.Violations{}
	if !exportResources[req.Resource] {
		v["resource"] = validation.InvalidChoice
	}
	if !req.Format.Valid() {
		v["format"] = validation.InvalidChoice
	}
	if !req.From.IsZero() && !req.To.IsZero() && req.To.Before(req.From) {
		v["to"] = "before_from"
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	dl, err := s.gateway.Export(ctx, sess.Token, req)
	if err != nil {
		s.logger.Warn("export failed", zap.String("resource", req.Resource), zap.String("format", string(req.Format)), zap.Error(err))
		return nil, err
	}
	s.logger.Info("export started",
		zap.String("session_id", sess.ID),
		zap.String("resource", req.Resource),
		zap.String("format", string(req.Format)))
	return dl, nil
}
