package sheetsimpl

import (
	"context"
	"fmt"
	"strings"

	"github.com/snapwatch/tiktok-monitor/internal/accounts"
	"github.com/snapwatch/tiktok-monitor/internal/domain"
	"github.com/snapwatch/tiktok-monitor/pkg/config"
	apperrors "github.com/snapwatch/tiktok-monitor/pkg/errors"
	"github.com/snapwatch/tiktok-monitor/pkg/logger"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// The expected worksheet layout is a header row of Username | Notes |
// Enabled followed by one row per account.
const readRange = "A:C"

type SheetsImpl struct {
	svc     *sheets.Service
	sheetID string
	logger  logger.Logger
}

func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*SheetsImpl, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsJSON([]byte(cfg.Google.CredentialsJSON)),
		option.WithScopes(sheets.SpreadsheetsReadonlyScope),
	)
	if err != nil {
		return nil, apperrors.WrapWithCode(err, "SHEETS_INIT_FAILED", "failed to create sheets service")
	}

	return &SheetsImpl{
		svc:     svc,
		sheetID: cfg.Google.SheetID,
		logger:  log.WithComponent("SheetsAccounts"),
	}, nil
}

var _ accounts.Client = (*SheetsImpl)(nil)

func (s *SheetsImpl) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.sheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, apperrors.WrapClass(apperrors.ErrAccountSource, err, "failed to read account sheet")
	}

	list := parseRows(resp.Values)
	s.logger.Info("Fetched monitored accounts from sheet", "count", len(list))
	return list, nil
}

// parseRows turns raw sheet values into accounts. The first row is treated
// as a header and used to locate columns; rows with a blank username are
// skipped; a missing Enabled cell defaults to TRUE, matching the sheet's
// checkbox semantics.
func parseRows(rows [][]interface{}) []domain.Account {
	if len(rows) < 2 {
		return nil
	}

	userCol, notesCol, enabledCol := 0, 1, 2
	for i, cell := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(cellString(cell))) {
		case "username":
			userCol = i
		case "notes":
			notesCol = i
		case "enabled":
			enabledCol = i
		}
	}

	var out []domain.Account
	for _, row := range rows[1:] {
		username := strings.TrimSpace(cellAt(row, userCol))
		if username == "" {
			continue
		}

		enabled := true
		if raw := strings.TrimSpace(cellAt(row, enabledCol)); raw != "" {
			enabled = strings.EqualFold(raw, "TRUE")
		}

		out = append(out, domain.Account{
			Username: username,
			Enabled:  enabled,
			Notes:    strings.TrimSpace(cellAt(row, notesCol)),
		})
	}

	return out
}

func cellAt(row []interface{}, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return cellString(row[idx])
}

func cellString(cell interface{}) string {
	if s, ok := cell.(string); ok {
		return s
	}
	return fmt.Sprint(cell)
}
