// Command ledger prints one month's statement from the configured backend and
// can write it as XLSX or PDF.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"financas/internal/backend"
	"financas/internal/cli"
	"financas/internal/core"
	"financas/internal/export"
	"financas/internal/ledger"
	"financas/internal/log"
	"financas/internal/services"
)

func main() {
	var (
		monthFlag = flag.String("month", "", "month as YYYY-M (default: current month)")
		xlsxPath  = flag.String("xlsx", "", "write the statement as XLSX to this path")
		pdfPath   = flag.String("pdf", "", "write the statement as PDF to this path")
		trend     = flag.Int("trend", 0, "also print the trend for this many months")
	)
	flag.Parse()

	cfg, logger := cli.Bootstrap(log.ComponentCLI)

	month := core.MonthOfTime(time.Now())
	if *monthFlag != "" {
		m, err := core.ParseMonthKey(*monthFlag)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		month = m
	}

	ctx := context.Background()
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	backendCfg.AMQPURL = ""
	res, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err)
		os.Exit(1)
	}
	defer res.Close()

	ls := services.NewLedgerService(res.Store, res.Store, nil)
	st, err := ls.Statement(ctx, month)
	if err != nil {
		logger.Error("Failed to compute statement", "error", err, log.FieldMonthKey, month.Key())
		os.Exit(1)
	}
	printStatement(os.Stdout, st)

	if *trend > 0 {
		points, err := ls.Trend(ctx, month, *trend)
		if err != nil {
			logger.Error("Failed to compute trend", "error", err)
			os.Exit(1)
		}
		printTrend(os.Stdout, points)
	}

	exportLogger := logger.WithComponent(log.ComponentExport)
	if *xlsxPath != "" {
		if err := writeExport(*xlsxPath, st, export.BuildStatementXLSX); err != nil {
			exportLogger.Error("XLSX export failed", "error", err)
			os.Exit(1)
		}
		exportLogger.Info("Statement written", log.FieldOperation, log.OpExport, "path", *xlsxPath)
	}
	if *pdfPath != "" {
		if err := writeExport(*pdfPath, st, export.BuildStatementPDF); err != nil {
			exportLogger.Error("PDF export failed", "error", err)
			os.Exit(1)
		}
		exportLogger.Info("Statement written", log.FieldOperation, log.OpExport, "path", *pdfPath)
	}
}

func writeExport(path string, st ledger.Statement, build func(ledger.Statement) ([]byte, error)) error {
	data, err := build(st)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func printStatement(w io.Writer, st ledger.Statement) {
	s := st.Stats
	fmt.Fprintf(w, "Extrato %s\n\n", st.Month.Key())
	fmt.Fprintf(w, "Renda efetiva  %12s\n", s.EffectiveIncome)
	fmt.Fprintf(w, "Pago           %12s\n", s.PaidTotal)
	fmt.Fprintf(w, "Pendente       %12s\n", s.PendingTotal)
	fmt.Fprintf(w, "Saldo          %12s\n", s.Balance)
	fmt.Fprintf(w, "Saúde          %12d (%s)\n\n", s.RoundedScore(), s.Status)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Data\tTítulo\tCategoria\tValor\tPaga\t")
	for _, t := range st.Transactions {
		paid := "não"
		if ledger.Settled(t, st.Month.Key()) {
			paid = "sim"
		}
		amount := t.Amount.String()
		if t.Type == core.Revenue {
			amount = "+" + amount
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", t.Date, t.Title, t.Category, amount, paid)
	}
	tw.Flush()
}

func printTrend(w io.Writer, points []ledger.TrendPoint) {
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Mês\tRenda\tDespesas\tSaúde\t")
	for _, p := range points {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t\n", p.Month.Key(), p.Income, p.Expenses, ledger.RoundScore(p.HealthScore))
	}
	tw.Flush()
}
