// Package export renders monthly statements as downloadable files.
package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"financas/internal/core"
	"financas/internal/ledger"
)

const (
	summarySheet      = "resumo"
	transactionsSheet = "lancamentos"
	categoriesSheet   = "categorias"
)

func installmentLabel(t core.Transaction) string {
	if t.Installments == nil {
		return ""
	}
	return t.Installments.Label()
}

func yesNo(b bool) string {
	if b {
		return "sim"
	}
	return "não"
}

// BuildStatementPDF renders a one-page summary followed by the transaction table.
func BuildStatementPDF(st ledger.Statement) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	s := st.Stats
	key := st.Month.Key()

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Extrato %s", key)))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	for _, line := range []string{
		fmt.Sprintf("Renda base: %s", s.BaseIncome),
		fmt.Sprintf("Renda efetiva: %s", s.EffectiveIncome),
		fmt.Sprintf("Pago: %s", s.PaidTotal),
		fmt.Sprintf("Pendente: %s", s.PendingTotal),
		fmt.Sprintf("Saldo: %s", s.Balance),
		fmt.Sprintf("Saúde: %d (%s)", s.RoundedScore(), s.Status),
	} {
		pdf.Cell(0, 6, tr(line))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	widths := []float64{22, 58, 30, 25, 25, 14, 14}
	header := []string{"Data", "Título", "Categoria", "Responsável", "Valor", "Paga", "Parc."}
	pdf.SetFont("Arial", "B", 9)
	for i, h := range header {
		pdf.CellFormat(widths[i], 6, tr(h), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, t := range st.Transactions {
		amount := t.Amount.String()
		if t.Type == core.Revenue {
			amount = "+" + amount
		}
		cells := []struct {
			text  string
			align string
		}{
			{t.Date, "C"},
			{t.Title, "L"},
			{t.Category, "L"},
			{t.SpenderID, "L"},
			{amount, "R"},
			{yesNo(ledger.Settled(t, key)), "C"},
			{installmentLabel(t), "C"},
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, tr(c.text), "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(st.ByCategory) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(60, 6, "Categoria", "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, "Total", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
		for _, c := range st.ByCategory {
			pdf.CellFormat(60, 6, tr(c.Name), "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 6, c.Amount.String(), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildStatementXLSX renders the statement as a workbook with summary,
// transactions and categories sheets. Amounts are numeric cells.
func BuildStatementXLSX(st ledger.Statement) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(transactionsSheet); err != nil {
		return nil, fmt.Errorf("add sheet: %w", err)
	}
	if _, err := f.NewSheet(categoriesSheet); err != nil {
		return nil, fmt.Errorf("add sheet: %w", err)
	}

	s := st.Stats
	key := st.Month.Key()
	summary := [][]any{
		{"Extrato", string(key)},
		{"Renda base", s.BaseIncome.Units()},
		{"Renda efetiva", s.EffectiveIncome.Units()},
		{"Pago", s.PaidTotal.Units()},
		{"Pendente", s.PendingTotal.Units()},
		{"Saldo", s.Balance.Units()},
		{"Comprometimento", s.ExpenseRatio},
		{"Saúde", s.RoundedScore()},
		{"Status", string(s.Status)},
	}
	if err := writeRows(f, summarySheet, summary); err != nil {
		return nil, err
	}

	rows := [][]any{{"Data", "Título", "Categoria", "Responsável", "Tipo", "Valor", "Fixa", "Paga", "Parcela"}}
	for _, t := range st.Transactions {
		rows = append(rows, []any{
			t.Date,
			t.Title,
			t.Category,
			t.SpenderID,
			string(t.Type),
			t.Amount.Units(),
			yesNo(t.IsFixed),
			yesNo(ledger.Settled(t, key)),
			installmentLabel(t),
		})
	}
	if err := writeRows(f, transactionsSheet, rows); err != nil {
		return nil, err
	}

	cats := [][]any{{"Categoria", "Total"}}
	for _, c := range st.ByCategory {
		cats = append(cats, []any{c.Name, c.Amount.Units()})
	}
	cats = append(cats, []any{}, []any{"Responsável", "Total"})
	for _, sp := range st.BySpender {
		cats = append(cats, []any{sp.SpenderID, sp.Amount.Units()})
	}
	if err := writeRows(f, categoriesSheet, cats); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
