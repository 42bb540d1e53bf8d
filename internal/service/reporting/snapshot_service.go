package reporting

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sygemat/provider-portal/internal/config"
	"github.com/sygemat/provider-portal/internal/repository/sheets"
	"github.com/sygemat/provider-portal/internal/service/articles"
)

const snapshotRange = "Snapshot!A:J"

// Service exports a stock snapshot of the configured providers' catalogs to a
// Google Sheet for back-office reporting.
type Service struct {
	catalog *articles.Service
	sheets  sheets.Repository
	cfg     config.SheetsConfig
	logger  *zap.Logger
}

// NewService wires the snapshot exporter.
func NewService(catalog *articles.Service, repo sheets.Repository, cfg config.SheetsConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{catalog: catalog, sheets: repo, cfg: cfg, logger: logger}
}

// ExportSnapshot fetches each configured provider's catalog (bypassing the
// cache so the export reflects current vendor data) and rewrites the snapshot
// sheet.
func (s *Service) ExportSnapshot(ctx context.Context) error {
	if err := s.sheets.ClearRange(ctx, snapshotRange); err != nil {
		return fmt.Errorf("clear snapshot range: %w", err)
	}

	now := time.Now().Format(time.RFC3339)
	rows := [][]interface{}{
		{"fecha", "proveedor", "id", "nombre", "sku_prv", "ref", "stk_con", "pdt_rec", "pre_net", "precio_final"},
	}

	var firstErr error
	for _, providerID := range s.cfg.ProviderIDs {
		result, err := s.catalog.Fetch(ctx, providerID, articles.FetchOptions{Refresh: true, Retry: true})
		if err != nil {
			s.logger.Error("snapshot fetch failed", zap.Int("provider", providerID), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		for _, a := range result.Articles {
			rows = append(rows, []interface{}{
				now, providerID, a.ID, a.Name, a.SkuPrv, a.Ref,
				a.StkCon, a.PdtRec, a.PreNet, articles.DisplayPrice(a.PreNet),
			})
		}
	}

	if err := s.sheets.AppendRows(ctx, snapshotRange, rows); err != nil {
		return fmt.Errorf("write snapshot rows: %w", err)
	}

	s.logger.Info("catalog snapshot exported", zap.Int("rows", len(rows)-1))
	return firstErr
}
