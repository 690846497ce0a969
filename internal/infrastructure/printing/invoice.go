package printing

import (
	"context"
	"fmt"
	"html"
	"time"

	apptrade "github.com/seafresh/backend/internal/application/trade"
	"github.com/seafresh/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// Seller identifies the shop on the invoice
type Seller struct {
	Name    string
	Address string
	GSTIN   string
}

// InvoiceRenderer renders order invoices. It implements trade.InvoiceRenderer.
type InvoiceRenderer struct {
	seller  Seller
	engine  *TemplateEngine
	pdf     PDFRenderer
	timeout time.Duration
}

var _ apptrade.InvoiceRenderer = (*InvoiceRenderer)(nil)

// NewInvoiceRenderer creates an InvoiceRenderer
func NewInvoiceRenderer(seller Seller, pdf PDFRenderer, timeout time.Duration) *InvoiceRenderer {
	if seller.Name == "" {
		seller.Name = "SeaFresh"
	}
	return &InvoiceRenderer{seller: seller, engine: NewTemplateEngine(), pdf: pdf, timeout: timeout}
}

type invoiceLine struct {
	No        int
	Name      string
	Unit      string
	UnitPrice decimal.Decimal
	Quantity  int
	Amount    decimal.Decimal
}

type invoiceView struct {
	Seller   Seller
	Order    *trade.Order
	Lines    []invoiceLine
	IssuedAt time.Time
	Refunded bool
}

// HTML renders the invoice document
func (r *InvoiceRenderer) HTML(order *trade.Order) (string, error) {
	view := invoiceView{
		Seller:   r.seller,
		Order:    order,
		IssuedAt: order.CreatedAt,
		Refunded: order.PaymentStatus == trade.PaymentStatusRefunded || order.PaymentStatus == trade.PaymentStatusRefundPending,
	}
	if order.PaidAt != nil {
		view.IssuedAt = *order.PaidAt
	}
	for i, item := range order.Items {
		view.Lines = append(view.Lines, invoiceLine{
			No:        i + 1,
			Name:      item.ProductName,
			Unit:      item.Unit,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Amount:    item.Amount,
		})
	}
	return r.engine.Render("invoice", invoiceTemplate, view)
}

// RenderInvoice renders the invoice of order as PDF
func (r *InvoiceRenderer) RenderInvoice(ctx context.Context, order *trade.Order) ([]byte, error) {
	doc, err := r.HTML(order)
	if err != nil {
		return nil, err
	}
	footer := fmt.Sprintf(`<div style="font-size:8px;width:100%%;text-align:center;color:#888">%s &middot; Invoice %s &middot; Page <span class="pageNumber"></span> of <span class="totalPages"></span></div>`,
		html.EscapeString(r.seller.Name), html.EscapeString(order.OrderNumber))

	result, err := r.pdf.Render(ctx, &RenderRequest{
		HTML:       doc,
		Title:      "Invoice " + order.OrderNumber,
		FooterHTML: footer,
		Timeout:    r.timeout,
	})
	if err != nil {
		return nil, err
	}
	return result.PDFData, nil
}

const invoiceTemplate = `<!DOCTYPE html>
<html><head><meta charset="UTF-8"><title>Invoice {{.Order.OrderNumber}}</title>
<style>
body{font-family:Arial,Helvetica,sans-serif;font-size:12px;color:#222}
h1{color:#0b5394;margin:0}
table{width:100%;border-collapse:collapse}
.items th{background:#0b5394;color:#fff;padding:6px;text-align:left}
.items td{border-bottom:1px solid #ddd;padding:6px}
.num{text-align:right}
.totals td{padding:4px 6px}
.grand td{font-weight:bold;border-top:2px solid #0b5394}
.stamp{color:#c00;font-weight:bold;font-size:16px}
</style></head>
<body>
<table><tr>
<td><h1>{{.Seller.Name}}</h1><div>{{.Seller.Address}}</div>{{if .Seller.GSTIN}}<div>GSTIN: {{.Seller.GSTIN}}</div>{{end}}</td>
<td class="num"><h2>TAX INVOICE</h2>
<div>Invoice: <strong>{{.Order.OrderNumber}}</strong></div>
<div>Date: {{date .IssuedAt}}</div>
<div>Payment: {{label .Order.PaymentMethod | upper}} ({{label .Order.PaymentStatus}})</div>
{{if .Order.RazorpayPaymentID}}<div>Payment ID: {{.Order.RazorpayPaymentID}}</div>{{end}}
{{if .Refunded}}<div class="stamp">REFUNDED</div>{{end}}
</td></tr></table>

<h3>Ship to</h3>
{{with .Order.ShippingAddress}}<div><strong>{{.FullName}}</strong><br>{{.Line1}}{{if .Line2}}, {{.Line2}}{{end}}<br>
{{if .Landmark}}Near {{.Landmark}}<br>{{end}}{{.City}}, {{.State}} {{.PostalCode}}<br>Phone: {{.Phone}}</div>{{end}}

<table class="items" style="margin-top:16px">
<tr><th>#</th><th>Item</th><th>Unit</th><th class="num">Price</th><th class="num">Qty</th><th class="num">Amount</th></tr>
{{range .Lines}}<tr><td>{{.No}}</td><td>{{.Name}}</td><td>{{.Unit}}</td><td class="num">{{inr .UnitPrice}}</td><td class="num">{{.Quantity}}</td><td class="num">{{inr .Amount}}</td></tr>
{{end}}</table>

<table class="totals" style="width:45%;margin-left:55%;margin-top:12px">
<tr><td>Subtotal</td><td class="num">{{inr .Order.Subtotal}}</td></tr>
{{if isPositive .Order.Discount}}<tr><td>Discount{{if .Order.CouponCode}} ({{.Order.CouponCode}}){{end}}</td><td class="num">-{{inr .Order.Discount}}</td></tr>{{end}}
<tr><td>Shipping</td><td class="num">{{if isPositive .Order.ShippingFee}}{{inr .Order.ShippingFee}}{{else}}Free{{end}}</td></tr>
<tr class="grand"><td>Total</td><td class="num">{{inr .Order.Total}}</td></tr>
{{if isPositive .Order.RefundAmount}}<tr><td>Refunded</td><td class="num">-{{inr .Order.RefundAmount}}</td></tr>{{end}}
</table>
<p><em>{{amountInWords .Order.Total}}</em></p>
<p style="color:#888;margin-top:32px">This is a computer generated invoice and does not require a signature.</p>
</body></html>`
