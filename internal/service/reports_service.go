package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"tradegoal/internal/models"
	"tradegoal/internal/projection"
	"tradegoal/internal/repository"
)

type ReportsService struct {
	Repo repository.Repository
}

type ReportDay struct {
	Date    string          `json:"date"`
	Profit  decimal.Decimal `json:"profit"`
	Loss    decimal.Decimal `json:"loss"`
	NetPnL  decimal.Decimal `json:"net_pnl"`
	Ops     int             `json:"ops"`
	Wins    int             `json:"wins"`
	Losses  int             `json:"losses"`
	Draws   int             `json:"draws"`
	Blocked bool            `json:"blocked"`
}

type Report struct {
	Days           []ReportDay     `json:"days"`
	TotalProfit    decimal.Decimal `json:"total_profit"`
	TotalLoss      decimal.Decimal `json:"total_loss"`
	NetPnL         decimal.Decimal `json:"net_pnl"`
	TotalOps       int             `json:"total_ops"`
	Wins           int             `json:"wins"`
	Losses         int             `json:"losses"`
	Draws          int             `json:"draws"`
	WinratePercent *float64        `json:"winrate_percent"`
	AvgDrawdown    decimal.Decimal `json:"avg_drawdown"`
}

func emptyReport() *Report {
	return &Report{
		Days:        []ReportDay{},
		TotalProfit: decimal.Zero,
		TotalLoss:   decimal.Zero,
		NetPnL:      decimal.Zero,
		AvgDrawdown: decimal.Zero,
	}
}

// Build aggregates the last N trading days. An account with no history
// yields a zeroed report rather than an error.
func (s *ReportsService) Build(ctx context.Context, userID uint64, days int) (*Report, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	if days <= 0 {
		days = 30
	}
	account, err := s.Repo.GetAccountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return emptyReport(), nil
	}

	today := dateOnly(time.Now().UTC())
	from := today.AddDate(0, 0, -(days - 1))
	tradingDays, err := s.Repo.ListTradingDaysInRange(ctx, account.ID, from, today)
	if err != nil {
		return nil, err
	}
	ops, err := s.Repo.ListDatedOperations(ctx, account.ID, from)
	if err != nil {
		return nil, err
	}

	perDay := map[string]*ReportDay{}
	order := make([]string, 0, len(tradingDays))
	for _, d := range tradingDays {
		key := dayKey(d.Date)
		perDay[key] = &ReportDay{
			Date:    key,
			Profit:  decimal.Zero,
			Loss:    decimal.Zero,
			NetPnL:  decimal.Zero,
			Blocked: d.Status == models.TradingDayStatusBlocked,
		}
		order = append(order, key)
	}

	report := emptyReport()
	drawdownSum := decimal.Zero
	for _, d := range tradingDays {
		drawdownSum = drawdownSum.Add(d.Drawdown)
	}
	for _, op := range ops {
		row, ok := perDay[dayKey(op.Date)]
		if !ok {
			continue
		}
		row.Ops++
		row.NetPnL = row.NetPnL.Add(op.Operation.Profit)
		switch op.Operation.Result {
		case models.OperationResultWin:
			row.Wins++
			row.Profit = row.Profit.Add(op.Operation.Profit)
		case models.OperationResultLoss:
			row.Losses++
			row.Loss = row.Loss.Add(op.Operation.Profit.Abs())
		default:
			row.Draws++
		}
	}

	for _, key := range order {
		row := perDay[key]
		row.Profit = row.Profit.Round(2)
		row.Loss = row.Loss.Round(2)
		row.NetPnL = row.NetPnL.Round(2)
		report.Days = append(report.Days, *row)
		report.TotalProfit = report.TotalProfit.Add(row.Profit)
		report.TotalLoss = report.TotalLoss.Add(row.Loss)
		report.NetPnL = report.NetPnL.Add(row.NetPnL)
		report.TotalOps += row.Ops
		report.Wins += row.Wins
		report.Losses += row.Losses
		report.Draws += row.Draws
	}
	if rate, ok := projection.RealWinrate(report.Wins, report.TotalOps); ok {
		pct := rate * 100
		report.WinratePercent = &pct
	}
	if len(tradingDays) > 0 {
		report.AvgDrawdown = drawdownSum.Div(decimal.NewFromInt(int64(len(tradingDays)))).Round(2)
	}
	return report, nil
}
