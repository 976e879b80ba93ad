package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fkhayef/splitledger/internal/domain"
	"github.com/fkhayef/splitledger/internal/ledger"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

type balanceRow struct {
	MemberID string `json:"member_id"`
	Name     string `json:"name"`
	Paid     string `json:"paid"`
	Owed     string `json:"owed"`
	Net      string `json:"net"`
}

type summaryRow struct {
	Total    string `json:"total"`
	Count    int    `json:"count"`
	Average  string `json:"average"`
	Largest  string `json:"largest"`
	Smallest string `json:"smallest"`
}

type transferRow struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type splitRow struct {
	ExpenseID  string `json:"expense_id"`
	MemberID   string `json:"member_id"`
	Amount     string `json:"amount"`
	Percentage string `json:"percentage,omitempty"`
}

// printer renders results as an aligned table or indented JSON
type printer struct {
	w      io.Writer
	format string
}

func (p *printer) balances(balances []domain.Balance, summary ledger.Summary) error {
	rows := make([]balanceRow, len(balances))
	for i, b := range balances {
		rows[i] = balanceRow{
			MemberID: b.MemberID,
			Name:     b.MemberName,
			Paid:     domain.FormatAmount(b.Paid),
			Owed:     domain.FormatAmount(b.Owed),
			Net:      domain.FormatAmount(b.Net),
		}
	}
	sum := summaryRow{
		Total:    domain.FormatAmount(summary.Total),
		Count:    summary.Count,
		Average:  domain.FormatAmount(summary.Average),
		Largest:  domain.FormatAmount(summary.Largest),
		Smallest: domain.FormatAmount(summary.Smallest),
	}

	if p.format == formatJSON {
		return p.json(struct {
			Balances []balanceRow `json:"balances"`
			Summary  summaryRow   `json:"summary"`
		}{rows, sum})
	}

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "MEMBER\tPAID\tOWED\tNET\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", r.Name, r.Paid, r.Owed, r.Net)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(p.w, "\n%d expenses, total %s, average %s\n", sum.Count, sum.Total, sum.Average)
	return err
}

func (p *printer) transfers(transfers []domain.Transfer) error {
	rows := make([]transferRow, len(transfers))
	for i, t := range transfers {
		rows[i] = transferRow{From: t.FromName, To: t.ToName, Amount: domain.FormatAmount(t.Amount)}
	}

	if p.format == formatJSON {
		return p.json(rows)
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(p.w, "All settled up.")
		return err
	}

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FROM\tTO\tAMOUNT")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.From, r.To, r.Amount)
	}
	return tw.Flush()
}

func (p *printer) splits(expenses []domain.Expense) error {
	var rows []splitRow
	for _, e := range expenses {
		for _, s := range e.Splits {
			row := splitRow{ExpenseID: e.ID, MemberID: s.MemberID, Amount: domain.FormatAmount(s.Amount)}
			if s.Percentage.Valid {
				row.Percentage = s.Percentage.Decimal.StringFixed(2)
			}
			rows = append(rows, row)
		}
	}

	if p.format == formatJSON {
		return p.json(rows)
	}

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "EXPENSE\tMEMBER\tAMOUNT\tPERCENT")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ExpenseID, r.MemberID, r.Amount, r.Percentage)
	}
	return tw.Flush()
}

func (p *printer) json(v interface{}) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
