package services

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"
	"gym_crm_backend/pkg/utils"

	"github.com/xuri/excelize/v2"
)

var ErrReportValidation = errors.New("report parameters validation error")

// --- ReportService Interface ---
type ReportService interface {
	GetDashboardSummary() (*models.DashboardSummary, error)
	GetRevenueReport(from, to time.Time, granularity string) (*models.RevenueReport, error)
	ExportRevenueReportXLSX(from, to time.Time, granularity string) ([]byte, string, error)
	ExportMembersCSV(w *bytes.Buffer, searchTerm *string, status *string) error
	ExportPaymentsCSV(w *bytes.Buffer, filters models.PaymentFilters) error
}

type reportService struct {
	reportRepo  repositories.ReportRepository
	memberRepo  repositories.MemberRepository
	paymentRepo repositories.PaymentRepository
	shiftRepo   repositories.ShiftRepository
	productRepo repositories.ProductRepository
	checkInRepo repositories.CheckInRepository
	settingRepo repositories.SettingRepository
}

// NewReportService creates a new instance of ReportService.
func NewReportService(
	rr repositories.ReportRepository,
	mr repositories.MemberRepository,
	payr repositories.PaymentRepository,
	sr repositories.ShiftRepository,
	pr repositories.ProductRepository,
	cr repositories.CheckInRepository,
	str repositories.SettingRepository,
) ReportService {
	return &reportService{
		reportRepo:  rr,
		memberRepo:  mr,
		paymentRepo: payr,
		shiftRepo:   sr,
		productRepo: pr,
		checkInRepo: cr,
		settingRepo: str,
	}
}

func (s *reportService) timezone() *time.Location {
	offsetMinutes := 0
	if settings, err := s.settingRepo.GetSettings(); err == nil {
		offsetMinutes = settings.TimezoneOffsetMinutes
	}
	return time.FixedZone("report", offsetMinutes*60)
}

func (s *reportService) GetDashboardSummary() (*models.DashboardSummary, error) {
	counts, err := s.memberRepo.CountMembersByStatus()
	if err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}

	loc := s.timezone()
	now := time.Now().In(loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	revenueByType, err := s.reportRepo.SumRevenueByType(dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to sum today's revenue: %w", err)
	}
	revenueToday := 0.0
	for _, amount := range revenueByType {
		revenueToday += amount
	}

	openShifts, err := s.shiftRepo.CountOpenShifts()
	if err != nil {
		return nil, fmt.Errorf("failed to count open shifts: %w", err)
	}
	lowStock, err := s.productRepo.CountLowStock()
	if err != nil {
		return nil, fmt.Errorf("failed to count low stock products: %w", err)
	}
	checkIns, err := s.checkInRepo.CountCheckIns(dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to count today's check-ins: %w", err)
	}

	return &models.DashboardSummary{
		ActiveMembers:    counts[models.StatusActive],
		GraceMembers:     counts[models.StatusGrace],
		ExpiredMembers:   counts[models.StatusExpired],
		SuspendedMembers: counts[models.StatusSuspended],
		RevenueToday:     revenueToday,
		RevenueByType:    revenueByType,
		OpenShifts:       openShifts,
		LowStockCount:    lowStock,
		CheckInsToday:    checkIns,
	}, nil
}

func validGranularity(granularity string) bool {
	switch granularity {
	case GranularityDaily, GranularityWeekly, GranularityMonthly:
		return true
	}
	return false
}

func (s *reportService) GetRevenueReport(from, to time.Time, granularity string) (*models.RevenueReport, error) {
	if !validGranularity(granularity) {
		return nil, fmt.Errorf("%w: granularity must be daily, weekly or monthly", ErrReportValidation)
	}
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: date range is empty", ErrReportValidation)
	}

	rows, err := s.reportRepo.GetRevenueRows(from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load revenue rows: %w", err)
	}

	offsetMinutes := 0
	if settings, serr := s.settingRepo.GetSettings(); serr == nil {
		offsetMinutes = settings.TimezoneOffsetMinutes
	}
	report := BucketRevenue(rows, granularity, offsetMinutes, from, to)
	return &report, nil
}

var revenueSheetHeader = []interface{}{
	"Bucket", "Total",
	"Registration", "Renewal", "Walk-in", "POS", "Coupon", "Grace settlement",
	"Cash", "QR", "Bank transfer",
}

// ExportRevenueReportXLSX renders the bucketed report as a spreadsheet and
// returns the file bytes along with a suggested filename.
func (s *reportService) ExportRevenueReportXLSX(from, to time.Time, granularity string) ([]byte, string, error) {
	report, err := s.GetRevenueReport(from, to, granularity)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetRow(sheet, "A1", &revenueSheetHeader); err != nil {
		return nil, "", fmt.Errorf("failed to write report header: %w", err)
	}

	rowIdx := 2
	for _, bucket := range report.Buckets {
		row := []interface{}{
			bucket.Label,
			bucket.Total,
			bucket.ByType[models.PaymentTypeRegistration],
			bucket.ByType[models.PaymentTypeRenewal],
			bucket.ByType[models.PaymentTypeWalkIn],
			bucket.ByType[models.PaymentTypePOS],
			bucket.ByType[models.PaymentTypeCoupon],
			bucket.ByType[models.PaymentTypeGraceSettlement],
			bucket.ByMethod[models.MethodCash],
			bucket.ByMethod[models.MethodQR],
			bucket.ByMethod[models.MethodBankTransfer],
		}
		cell, cerr := excelize.CoordinatesToCellName(1, rowIdx)
		if cerr != nil {
			return nil, "", fmt.Errorf("failed to compute report cell: %w", cerr)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, "", fmt.Errorf("failed to write report row: %w", err)
		}
		rowIdx++
	}

	totalRow := []interface{}{"Total", report.Total}
	cell, err := excelize.CoordinatesToCellName(1, rowIdx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to compute report cell: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &totalRow); err != nil {
		return nil, "", fmt.Errorf("failed to write report total: %w", err)
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, "", fmt.Errorf("failed to render report file: %w", err)
	}

	fileName := fmt.Sprintf("revenue_%s_%s_%s.xlsx",
		granularity, from.Format("20060102"), to.Format("20060102"))
	return buf.Bytes(), fileName, nil
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ExportMembersCSV streams the member list, ignoring pagination.
func (s *reportService) ExportMembersCSV(w *bytes.Buffer, searchTerm *string, status *string) error {
	graceDays := 7
	if settings, err := s.settingRepo.GetSettings(); err == nil {
		graceDays = settings.GracePeriodDays
	}
	now := time.Now()
	members, _, err := s.memberRepo.GetMembers(0, 0, searchTerm, status, graceDays, now)
	if err != nil {
		return fmt.Errorf("failed to load members for export: %w", err)
	}
	for i := range members {
		members[i].Status = DeriveStatus(members[i].Status, members[i].ExpiryDate, graceDays, now)
	}

	header := []string{"member_id", "full_name", "nric", "phone", "email", "member_type", "status", "expiry_date", "created_at"}
	rows := make([][]string, 0, len(members))
	for _, m := range members {
		rows = append(rows, []string{
			m.MemberID,
			m.FullName,
			m.NRIC,
			derefString(m.Phone),
			derefString(m.Email),
			m.MemberType,
			m.Status,
			m.ExpiryDate.Format("2006-01-02"),
			m.CreatedAt.Format(time.RFC3339),
		})
	}
	return utils.WriteCSV(w, header, rows)
}

// ExportPaymentsCSV streams the payment ledger matching the filters.
func (s *reportService) ExportPaymentsCSV(w *bytes.Buffer, filters models.PaymentFilters) error {
	filters.Page = 0
	filters.PageSize = 0
	payments, _, err := s.paymentRepo.GetPayments(filters)
	if err != nil {
		return fmt.Errorf("failed to load payments for export: %w", err)
	}

	header := []string{"receipt_no", "amount", "payment_type", "payment_method", "member_name", "notes", "created_at"}
	rows := make([][]string, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, []string{
			p.ReceiptNo,
			formatAmount(p.Amount),
			p.PaymentType,
			p.PaymentMethod,
			derefString(p.MemberName),
			derefString(p.Notes),
			p.CreatedAt.Format(time.RFC3339),
		})
	}
	return utils.WriteCSV(w, header, rows)
}
