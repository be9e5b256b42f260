package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// ReceiptData is a fully formatted invoice ready for printing.
type ReceiptData struct {
	GymName       string
	InvoiceNumber string
	IssueDate     string
	Status        string
	MemberName    string
	Description   string
	TaxTypeLabel  string

	TaxLines []ReceiptTaxLine

	BaseAmount  string
	TaxAmount   string
	TotalAmount string
}

type ReceiptTaxLine struct {
	Name   string
	Rate   string
	Mode   string
	Amount string
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateReceipt(ctx context.Context, receipt ReceiptData) (io.Reader, error) {
	if strings.TrimSpace(receipt.InvoiceNumber) == "" {
		return nil, fmt.Errorf("receipt requires an invoice number")
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(15,
		text.NewCol(8, receipt.GymName, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, "Receipt", props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Right,
		}),
	)

	m.AddRow(22,
		col.New(6).Add(
			text.New("Invoice number: "+receipt.InvoiceNumber, props.Text{Top: 0}),
			text.New("Date of issue: "+receipt.IssueDate, props.Text{Top: 5}),
			text.New("Status: "+receipt.Status, props.Text{Top: 10}),
		),
		col.New(6).Add(
			text.New("Member", props.Text{Style: fontstyle.Bold, Align: align.Right}),
			text.New(receipt.MemberName, props.Text{Top: 5, Align: align.Right}),
			text.New(receipt.Description, props.Text{Top: 10, Size: 9, Align: align.Right}),
		),
	)

	m.AddRow(10,
		text.NewCol(12, receipt.TaxTypeLabel, props.Text{Style: fontstyle.Bold, Size: 10}),
	)

	m.AddRow(8,
		text.NewCol(6, "Tax", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Rate", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Mode", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(2, line.NewCol(12))

	for _, item := range receipt.TaxLines {
		m.AddRow(8,
			text.NewCol(6, item.Name, props.Text{Size: 9}),
			text.NewCol(2, item.Rate, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Mode, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Base amount", props.Text{Size: 9, Top: 3}),
		text.NewCol(2, receipt.BaseAmount, props.Text{Size: 9, Top: 3, Align: align.Right}),
	)
	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "Tax", props.Text{Size: 9}),
		text.NewCol(2, receipt.TaxAmount, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, receipt.TotalAmount, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
