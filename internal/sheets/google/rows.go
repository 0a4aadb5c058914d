package google

import (
	"financas/internal/ledger"
)

var transactionHeader = []any{"Data", "Título", "Categoria", "Responsável", "Tipo", "Valor", "Fixa", "Paga", "Parcela"}

// statementRows lays a statement out as sheet rows: a summary block, the
// transactions, then the category breakdown. Amounts are numbers so the sheet
// can sum them.
func statementRows(st ledger.Statement) [][]any {
	s := st.Stats
	rows := [][]any{
		{"Extrato", string(st.Month.Key())},
		{"Renda efetiva", s.EffectiveIncome.Units()},
		{"Pago", s.PaidTotal.Units()},
		{"Pendente", s.PendingTotal.Units()},
		{"Saldo", s.Balance.Units()},
		{"Saúde", s.RoundedScore(), string(s.Status)},
		{},
		transactionHeader,
	}

	key := st.Month.Key()
	for _, t := range st.Transactions {
		installment := ""
		if t.Installments != nil {
			installment = t.Installments.Label()
		}
		rows = append(rows, []any{
			t.Date,
			t.Title,
			t.Category,
			t.SpenderID,
			string(t.Type),
			t.Amount.Units(),
			yesNo(t.IsFixed),
			yesNo(ledger.Settled(t, key)),
			installment,
		})
	}

	if len(st.ByCategory) > 0 {
		rows = append(rows, []any{}, []any{"Categoria", "Total"})
		for _, c := range st.ByCategory {
			rows = append(rows, []any{c.Name, c.Amount.Units()})
		}
	}
	return rows
}

func yesNo(b bool) string {
	if b {
		return "sim"
	}
	return "não"
}
