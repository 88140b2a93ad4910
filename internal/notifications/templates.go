package notifications

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/angelmondragon/rxcart-backend/pkg/enums"
	"github.com/angelmondragon/rxcart-backend/pkg/mailer"
)

// view is the data every template renders from. Only the fields relevant to
// an event are set.
type view struct {
	RecipientName string
	PharmacyName  string
	Audience      string
	Order         *Subject
	Code          string
	Reminder      *ReminderNote
}

// ReminderNote describes one medicine reminder.
type ReminderNote struct {
	MedicineName string
	Dosage       string
	Frequency    string
}

type eventTemplate struct {
	subject *texttemplate.Template
	text    *texttemplate.Template
	html    *htmltemplate.Template
}

const textLines = `{{range .Order.Lines}}
- {{.Name}} x{{.Quantity}} @ {{.UnitPrice.StringFixed 2}} = {{.Total.StringFixed 2}}{{end}}
`

const htmlLines = `<table>{{range .Order.Lines}}<tr><td>{{.Name}}</td><td>{{.Quantity}}</td><td>{{.UnitPrice.StringFixed 2}}</td><td>{{.Total.StringFixed 2}}</td></tr>{{end}}</table>`

var templateSources = map[enums.NotificationEvent][3]string{
	enums.NotificationEventOrderPlaced: {
		`Order {{.Order.Reference}} placed`,
		`Hi {{.RecipientName}},

Your order {{.Order.Reference}} has been placed.
` + textLines + `
Subtotal: {{.Order.Subtotal.StringFixed 2}}
Delivery: {{.Order.DeliveryCharges.StringFixed 2}}
Total: {{.Order.Total.StringFixed 2}}
Payment: {{.Order.PaymentMethod}}
Delivery method: {{.Order.DeliveryMethod}}{{if .Order.DeliveryAddress}}
Address: {{.Order.DeliveryAddress}}{{end}}
`,
		`<p>Hi {{.RecipientName}},</p><p>Your order <strong>{{.Order.Reference}}</strong> has been placed.</p>` + htmlLines +
			`<p>Total: {{.Order.Total.StringFixed 2}}</p>`,
	},
	enums.NotificationEventOrderReceived: {
		`New order {{.Order.Reference}}`,
		`A new order {{.Order.Reference}} was received.
` + textLines + `
Total: {{.Order.Total.StringFixed 2}}
Delivery method: {{.Order.DeliveryMethod}}{{if .Order.DeliveryAddress}}
Address: {{.Order.DeliveryAddress}}{{end}}
`,
		`<p>A new order <strong>{{.Order.Reference}}</strong> was received.</p>` + htmlLines +
			`<p>Total: {{.Order.Total.StringFixed 2}}</p>`,
	},
	enums.NotificationEventOrderVerificationCode: {
		`Verification code for order {{.Order.Reference}}`,
		`{{if eq .Audience "customer"}}Show this code when you collect order {{.Order.Reference}}{{else}}The customer will present this code for order {{.Order.Reference}}{{end}}: {{.Order.VerificationCode}}
`,
		`<p>{{if eq .Audience "customer"}}Show this code when you collect order {{.Order.Reference}}{{else}}The customer will present this code for order {{.Order.Reference}}{{end}}:</p><p><strong>{{.Order.VerificationCode}}</strong></p>`,
	},
	enums.NotificationEventOrderStatusUpdate: {
		`Order {{.Order.Reference}} is now {{.Order.DisplayStatus}}`,
		`Order {{.Order.Reference}} moved to {{.Order.DisplayStatus}}.
`,
		`<p>Order <strong>{{.Order.Reference}}</strong> moved to {{.Order.DisplayStatus}}.</p>`,
	},
	enums.NotificationEventAdvanceOrderPlaced: {
		`Advance order {{.Order.Reference}} placed`,
		`An advance order {{.Order.Reference}} was placed for items that are not in stock.
` + textLines + `
Estimated total: {{.Order.Total.StringFixed 2}}
Verification code: {{.Order.VerificationCode}}
`,
		`<p>An advance order <strong>{{.Order.Reference}}</strong> was placed for items that are not in stock.</p>` + htmlLines +
			`<p>Estimated total: {{.Order.Total.StringFixed 2}}</p>`,
	},
	enums.NotificationEventAdvanceOrderStatusUpdate: {
		`Advance order {{.Order.Reference}} is now {{.Order.DisplayStatus}}`,
		`Advance order {{.Order.Reference}} moved to {{.Order.DisplayStatus}}.{{if .Order.EstimatedDelivery}}
Estimated delivery: {{.Order.EstimatedDelivery.Format "2006-01-02"}}{{end}}
`,
		`<p>Advance order <strong>{{.Order.Reference}}</strong> moved to {{.Order.DisplayStatus}}.</p>`,
	},
	enums.NotificationEventPrescriptionVerificationCode: {
		`Your prescription verification code`,
		`Hi {{.RecipientName}},

Your prescription verification code is {{.Code}}. Share it with the pharmacist to confirm your prescription.
`,
		`<p>Hi {{.RecipientName}},</p><p>Your prescription verification code is <strong>{{.Code}}</strong>.</p>`,
	},
	enums.NotificationEventMedicineReminder: {
		`Time to take {{.Reminder.MedicineName}}`,
		`Hi {{.RecipientName}},

This is your reminder to take {{.Reminder.MedicineName}}{{if .Reminder.Dosage}} ({{.Reminder.Dosage}}){{end}}, {{.Reminder.Frequency}}.
`,
		`<p>Hi {{.RecipientName}},</p><p>This is your reminder to take <strong>{{.Reminder.MedicineName}}</strong>{{if .Reminder.Dosage}} ({{.Reminder.Dosage}}){{end}}, {{.Reminder.Frequency}}.</p>`,
	},
}

var templates = mustParse(templateSources)

func mustParse(sources map[enums.NotificationEvent][3]string) map[enums.NotificationEvent]eventTemplate {
	out := make(map[enums.NotificationEvent]eventTemplate, len(sources))
	for event, src := range sources {
		name := string(event)
		out[event] = eventTemplate{
			subject: texttemplate.Must(texttemplate.New(name + ".subject").Parse(src[0])),
			text:    texttemplate.Must(texttemplate.New(name + ".txt").Parse(src[1])),
			html:    htmltemplate.Must(htmltemplate.New(name + ".html").Parse(src[2])),
		}
	}
	return out
}

// render produces the message body for one recipient; To is left for the caller.
func render(event enums.NotificationEvent, data view) (mailer.Message, error) {
	tmpl, ok := templates[event]
	if !ok {
		return mailer.Message{}, fmt.Errorf("no template for %s", event)
	}
	var subject, text, html bytes.Buffer
	if err := tmpl.subject.Execute(&subject, data); err != nil {
		return mailer.Message{}, fmt.Errorf("render %s subject: %w", event, err)
	}
	if err := tmpl.text.Execute(&text, data); err != nil {
		return mailer.Message{}, fmt.Errorf("render %s text: %w", event, err)
	}
	if err := tmpl.html.Execute(&html, data); err != nil {
		return mailer.Message{}, fmt.Errorf("render %s html: %w", event, err)
	}
	return mailer.Message{
		Subject: strings.TrimSpace(subject.String()),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
