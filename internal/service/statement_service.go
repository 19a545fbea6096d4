package service

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"biosecure-pay/internal/core/domain"
	"biosecure-pay/internal/core/ports"
	"biosecure-pay/pkg/apperror"

	"github.com/jung-kurt/gofpdf"
	"github.com/tealeg/xlsx"
)

const (
	statementMaxRows = 1000
	statementTimeFmt = "2006-01-02 15:04:05"

	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Amounts are printed exactly as stored. Minor-unit exponents differ per
// currency, so none is applied.
var statementHeader = []string{"Transaction ID", "Date", "Recipient", "Amount (minor units)", "Currency", "State"}

// statementService implements ports.StatementService.
type statementService struct {
	txRepo ports.TransactionRepository
	now    func() time.Time
}

// NewStatementService creates a statement exporter backed by the transaction ledger.
func NewStatementService(txRepo ports.TransactionRepository) ports.StatementService {
	return &statementService{txRepo: txRepo, now: time.Now}
}

// Export renders the user's transactions for the requested period.
func (s *statementService) Export(ctx context.Context, req ports.StatementRequest) (*ports.Statement, error) {
	since, err := periodStart(s.now(), req.Period)
	if err != nil {
		return nil, err
	}

	txns, err := s.txRepo.List(ctx, ports.TransactionListParams{
		UserID: req.UserID,
		Since:  since,
		Limit:  statementMaxRows,
	})
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}

	stamp := s.now().UTC().Format("20060102")
	switch req.Format {
	case ports.StatementFormatPDF, "":
		body, err := renderPDF(txns, s.now())
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("render pdf: %w", err))
		}
		return &ports.Statement{Filename: "statement-" + stamp + ".pdf", ContentType: contentTypePDF, Body: body}, nil
	case ports.StatementFormatXLSX:
		body, err := renderXLSX(txns)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("render xlsx: %w", err))
		}
		return &ports.Statement{Filename: "statement-" + stamp + ".xlsx", ContentType: contentTypeXLSX, Body: body}, nil
	default:
		return nil, apperror.Validation("invalid format: must be pdf or xlsx")
	}
}

func periodStart(now time.Time, period string) (*time.Time, error) {
	var t time.Time
	switch period {
	case "day":
		t = now.AddDate(0, 0, -1)
	case "week":
		t = now.AddDate(0, 0, -7)
	case "month":
		t = now.AddDate(0, -1, 0)
	case "all", "":
		return nil, nil
	default:
		return nil, apperror.Validation("invalid period: must be day, week, month, or all")
	}
	return &t, nil
}

func statementRow(t *domain.Transaction) []string {
	return []string{
		t.ID.String(),
		t.CreatedAt.UTC().Format(statementTimeFmt),
		t.Recipient,
		strconv.FormatInt(t.Amount, 10),
		t.Currency,
		string(t.State),
	}
}

func renderPDF(txns []domain.Transaction, generatedAt time.Time) ([]byte, error) {
	widths := []float64{70, 35, 55, 40, 20, 30}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Transaction Statement")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(40, 6, "Generated "+generatedAt.UTC().Format(statementTimeFmt)+" UTC")
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 10)
	for i, h := range statementHeader {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "", false, 0, "")
	}
	pdf.Ln(7)

	pdf.SetFont("Arial", "", 9)
	for i := range txns {
		for j, v := range statementRow(&txns[i]) {
			align := ""
			if j == 3 {
				align = "R"
			}
			pdf.CellFormat(widths[j], 7, v, "1", 0, align, false, 0, "")
		}
		pdf.Ln(7)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderXLSX(txns []domain.Transaction) ([]byte, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Transactions")
	if err != nil {
		return nil, err
	}

	row := sheet.AddRow()
	for _, h := range statementHeader {
		row.AddCell().SetString(h)
	}

	for i := range txns {
		row = sheet.AddRow()
		for _, v := range statementRow(&txns[i]) {
			row.AddCell().SetString(v)
		}
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
