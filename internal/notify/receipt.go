package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"eshop/internal/domain"
)

var receiptTmpl = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background: #f8fafc; margin: 0; padding: 0;">
  <div style="max-width: 600px; margin: 0 auto; background: #ffffff;">
    <div style="background: #6366f1; color: #ffffff; padding: 2rem; text-align: center;">
      <h1 style="margin: 0;">Thank You for Your Order!</h1>
    </div>
    <div style="padding: 2rem;">
      <p>Hi {{.CustomerName}},</p>
      <p>Your order has been confirmed and is being processed. Here's a summary:</p>
      <p><strong>Order #{{.ID}}</strong><br>Date: {{.Date}}</p>
      {{range .Lines}}
      <div style="display: flex; justify-content: space-between; padding: 0.75rem 0; border-bottom: 1px solid #e2e8f0;">
        <span>{{.Name}} &times; {{.Quantity}}</span>
        <span>${{.Total}}</span>
      </div>
      {{end}}
      <div style="text-align: right; font-weight: bold; padding-top: 1rem;">Total: ${{.Total}}</div>
    </div>
    <div style="background: #1e293b; color: #94a3b8; padding: 1.5rem; text-align: center;">
      <p>If you have any questions, reply to this email.</p>
    </div>
  </div>
</body>
</html>
`))

type receiptLine struct {
	Name     string
	Quantity int
	Total    string
}

type receiptData struct {
	ID           string
	CustomerName string
	Date         string
	Lines        []receiptLine
	Total        string
}

// Subject is the receipt mail subject for order.
func Subject(order domain.Order) string {
	return fmt.Sprintf("Order Confirmation - #%s", order.ID)
}

// RenderReceipt builds the HTML body of the receipt mail.
func RenderReceipt(order domain.Order) (string, error) {
	data := receiptData{
		ID:           order.ID,
		CustomerName: order.CustomerName,
		Date:         order.CreatedAt.UTC().Format("January 02, 2006"),
		Total:        order.TotalAmount.StringFixed(domain.PriceScale),
	}
	for _, item := range order.Items {
		name := item.ProductName
		if name == "" {
			name = "Product"
		}
		data.Lines = append(data.Lines, receiptLine{
			Name:     name,
			Quantity: item.Quantity,
			Total:    item.LineTotal().StringFixed(domain.PriceScale),
		})
	}
	var buf bytes.Buffer
	if err := receiptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
