package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

type Kind string

const (
	KindOrderConfirmed Kind = "ORDER_CONFIRMED"
	KindDeliveryReady  Kind = "DELIVERY_READY"
	KindQuoteReady     Kind = "QUOTE_READY"
)

// TemplateData is what every e-mail template can reference.
type TemplateData struct {
	OrderID  string
	PlanName string
	Amount   string
	AppURL   string
}

const layout = `{{define "layout"}}<div style="background-color:#F8FAFC;padding:60px 20px;font-family:Helvetica,Arial,sans-serif;">
<div style="max-width:600px;margin:0 auto;background-color:#FFFFFF;border-radius:32px;overflow:hidden;border:1px solid #F1F5F9;">
<div style="padding:60px 50px 40px 50px;text-align:center;">
<h1 style="margin:0 0 20px 0;font-size:10px;font-weight:900;letter-spacing:5px;color:#94A3B8;text-transform:uppercase;">StagingPro Studio</h1>
<h2 style="margin:0;font-size:32px;font-weight:900;color:#0F172A;line-height:1.2;">{{template "title" .}}</h2>
</div>
<div style="padding:0 60px 60px 60px;text-align:center;">{{template "body" .}}</div>
<div style="background-color:#F8FAFC;padding:30px;text-align:center;border-top:1px solid #F1F5F9;">
<p style="margin:0;font-size:9px;font-weight:800;color:#CBD5E1;letter-spacing:2px;text-transform:uppercase;">&copy; StagingPro International Studio</p>
</div>
</div>
</div>{{end}}`

var bodies = map[Kind]string{
	KindOrderConfirmed: `{{define "title"}}ORDER<br/>CONFIRMED{{end}}{{define "body"}}
<p style="font-size:16px;color:#64748B;line-height:1.8;">We have received your order. Our visualizers are starting on your space.</p>
<p style="font-size:9px;font-weight:900;color:#94A3B8;text-transform:uppercase;letter-spacing:2px;">Order ID</p>
<p style="font-size:18px;font-weight:900;color:#0F172A;">{{.OrderID}}</p>
<p style="font-size:9px;font-weight:900;color:#94A3B8;text-transform:uppercase;letter-spacing:2px;">Plan</p>
<p style="font-size:16px;font-weight:700;color:#0F172A;">{{.PlanName}}</p>
<p style="font-size:13px;color:#94A3B8;line-height:1.6;">We will let you know when production is finished. Delivery usually takes up to three business days.</p>
{{end}}`,
	KindDeliveryReady: `{{define "title"}}DELIVERY<br/>READY{{end}}{{define "body"}}
<p style="font-size:16px;color:#64748B;line-height:1.8;">Your visualization is finished and ready for review.</p>
<p style="font-size:9px;font-weight:900;color:#94A3B8;text-transform:uppercase;letter-spacing:2px;">Project ID</p>
<p style="font-size:18px;font-weight:900;color:#0F172A;">{{.OrderID}}</p>
<a href="{{.AppURL}}" style="display:inline-block;background-color:#0F172A;color:#FFFFFF;padding:22px 50px;border-radius:20px;font-size:12px;font-weight:900;text-decoration:none;text-transform:uppercase;letter-spacing:3px;">View Studio Archive</a>
{{end}}`,
	KindQuoteReady: `{{define "title"}}QUOTE<br/>READY{{end}}{{define "body"}}
<p style="font-size:16px;color:#64748B;line-height:1.8;">The studio has priced your {{.PlanName}} request.</p>
<p style="font-size:9px;font-weight:900;color:#94A3B8;text-transform:uppercase;letter-spacing:2px;">Order ID</p>
<p style="font-size:18px;font-weight:900;color:#0F172A;">{{.OrderID}}</p>
<p style="font-size:9px;font-weight:900;color:#94A3B8;text-transform:uppercase;letter-spacing:2px;">Quoted amount</p>
<p style="font-size:18px;font-weight:900;color:#0F172A;">{{.Amount}}</p>
<a href="{{.AppURL}}" style="display:inline-block;background-color:#0F172A;color:#FFFFFF;padding:22px 50px;border-radius:20px;font-size:12px;font-weight:900;text-decoration:none;text-transform:uppercase;letter-spacing:3px;">Review and Pay</a>
{{end}}`,
}

var subjects = map[Kind]string{
	KindOrderConfirmed: "Order Confirmed: %s",
	KindDeliveryReady:  "Results Ready for Review: %s",
	KindQuoteReady:     "Your Quote Is Ready: %s",
}

var templates = func() map[Kind]*template.Template {
	out := make(map[Kind]*template.Template, len(bodies))
	for kind, body := range bodies {
		t := template.Must(template.New(string(kind)).Parse(layout))
		out[kind] = template.Must(t.Parse(body))
	}
	return out
}()

// Render returns the subject and HTML body for kind.
func Render(kind Kind, data TemplateData) (string, string, error) {
	t, ok := templates[kind]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", kind)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", "", fmt.Errorf("failed to render %s: %w", kind, err)
	}
	return fmt.Sprintf(subjects[kind], data.OrderID), buf.String(), nil
}

// FormatAmount renders minor units as a dollar amount.
func FormatAmount(minor int64) string {
	return fmt.Sprintf("$%d.%02d", minor/100, minor%100)
}
