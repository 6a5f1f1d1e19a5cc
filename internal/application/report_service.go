package application

import (
	"context"

	"github.com/sanosuguru/go-bus-ticket-booking/internal/domain/booking"
)

// ReportService は予約の集計レポートを提供する
type ReportService struct {
	bookingRepo booking.Repository
}

func NewReportService(br booking.Repository) *ReportService {
	return &ReportService{bookingRepo: br}
}

// MonthlySummaries は全予約を月単位で集計する
func (s *ReportService) MonthlySummaries(ctx context.Context) ([]*booking.PeriodSummary, error) {
	return s.bookingRepo.SummarizeByMonth(ctx)
}

// MonthSummary は指定月の集計を返す
func (s *ReportService) MonthSummary(ctx context.Context, year, month int) (*booking.PeriodSummary, error) {
	return s.bookingRepo.SummarizeMonth(ctx, year, month)
}

// DaySummary は指定日の集計を返す
func (s *ReportService) DaySummary(ctx context.Context, year, month, day int) (*booking.PeriodSummary, error) {
	return s.bookingRepo.SummarizeDay(ctx, year, month, day)
}
