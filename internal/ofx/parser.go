// Package ofx reads OFX/QFX bank and credit-card statements for import.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/Veraticus/fintrack/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DefaultParallelism bounds concurrent file parsing in ParseFiles.
const DefaultParallelism = 4

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// An SGML opening tag alone on a line with its '>' missing.
	unclosedTagRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

var descriptionPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"DEBIT PURCHASE ",
}

var genericNames = map[string]bool{
	"DEBIT":           true,
	"CREDIT":          true,
	"PURCHASE":        true,
	"PAYMENT":         true,
	"POS TRANSACTION": true,
}

// Parser converts statements into importable transactions.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{logger: slog.Default().With("component", "ofx")}
}

// FileResult is the outcome of parsing one file.
type FileResult struct {
	Path         string
	Transactions []model.ImportedTransaction
}

func preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return unclosedTagRegex.ReplaceAllString(content, "$1>")
}

// ParseFile parses one OFX/QFX document. Debits (negative amounts) become
// expenses and credits become income; zero-amount rows are dropped.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.ImportedTransaction, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var out []model.ImportedTransaction
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			bankStmts++
			out = p.appendTransactions(out, stmt.BankTranList.Transactions)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			ccStmts++
			out = p.appendTransactions(out, stmt.BankTranList.Transactions)
		}
	}

	p.logger.Debug("parsed OFX file",
		"transactions", len(out),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return out, nil
}

// ParseFiles parses several files concurrently, at most parallelism at a
// time. Results keep the order of paths; the first failure cancels the rest.
func (p *Parser) ParseFiles(ctx context.Context, paths []string, parallelism int) ([]FileResult, error) {
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}

	results := make([]FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for i, path := range paths {
		g.Go(func() error {
			f, err := os.Open(path) // #nosec G304
			if err != nil {
				return fmt.Errorf("open %s: %w", path, err)
			}
			defer func() { _ = f.Close() }()

			txns, err := p.ParseFile(gctx, f)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = FileResult{Path: path, Transactions: txns}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (p *Parser) appendTransactions(out []model.ImportedTransaction, txns []ofxgo.Transaction) []model.ImportedTransaction {
	for _, t := range txns {
		if txn, ok := p.convert(t); ok {
			out = append(out, txn)
		}
	}
	return out
}

func (p *Parser) convert(t ofxgo.Transaction) (model.ImportedTransaction, bool) {
	amount, err := decimal.NewFromString(t.TrnAmt.FloatString(2))
	if err != nil || amount.IsZero() {
		return model.ImportedTransaction{}, false
	}

	txnType := model.CategoryTypeIncome
	if amount.IsNegative() {
		txnType = model.CategoryTypeExpense
	}

	return model.ImportedTransaction{
		Date:         model.Day(t.DtPosted.Time),
		Amount:       amount.Abs(),
		Description:  description(t),
		ExternalID:   string(t.FiTID),
		CategoryHint: categoryHint(t),
		Type:         txnType,
	}, true
}

// categoryHint maps the transaction types that imply an income category.
func categoryHint(t ofxgo.Transaction) string {
	switch t.TrnType {
	case ofxgo.TrnTypeInt:
		return "Interest"
	case ofxgo.TrnTypeDiv:
		return "Dividend"
	case ofxgo.TrnTypeDirectDep:
		return "Salary"
	default:
		return ""
	}
}

// description picks the most readable payee text from a statement row.
func description(t ofxgo.Transaction) string {
	if t.Payee != nil && t.Payee.Name != "" {
		return strings.TrimSpace(string(t.Payee.Name))
	}

	name := strings.TrimSpace(string(t.Name))
	if t.Memo != "" && genericNames[strings.ToUpper(name)] {
		name = strings.TrimSpace(string(t.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range descriptionPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " posting dates.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}
	return name
}
