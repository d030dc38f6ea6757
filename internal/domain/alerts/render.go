package alerts

import (
	"fmt"
	"html"
	"strings"
)

// RenderDigest formats one caretaker email. The text and HTML bodies list
// every missed dose as "name (dosage) — scheduled at HH:MM" plus the report
// date.
func RenderDigest(d Digest) (subject, text, htmlBody string) {
	subject = fmt.Sprintf("Missed medication alert — %s", d.PatientEmail)

	var textList strings.Builder
	var htmlList strings.Builder
	for _, item := range d.Items {
		fmt.Fprintf(&textList, "• %s (%s) — scheduled at %s\n",
			item.Name, item.Dosage, item.ScheduledTime)
		fmt.Fprintf(&htmlList, "<li><strong>%s</strong> (%s) — scheduled at %s</li>",
			html.EscapeString(item.Name), html.EscapeString(item.Dosage),
			html.EscapeString(item.ScheduledTime))
	}

	text = fmt.Sprintf(
		"Hi,\n\nYour patient %s has not taken the following medication(s) today:\n\n%s\nDate: %s\n\n— MedsBuddy",
		d.PatientEmail, textList.String(), d.Date)

	htmlBody = fmt.Sprintf(
		`<div style="font-family:sans-serif;max-width:520px;margin:0 auto;padding:24px;">`+
			`<h2 style="color:#b45309;">Missed medication alert</h2>`+
			`<p>Your patient <strong>%s</strong> has not taken the following medication(s) today:</p>`+
			`<ul>%s</ul>`+
			`<p style="color:#6b7280;font-size:14px;">Date: %s</p>`+
			`<p style="color:#6b7280;font-size:13px;">— MedsBuddy Alerts</p>`+
			`</div>`,
		html.EscapeString(d.PatientEmail), htmlList.String(), d.Date)

	return subject, text, htmlBody
}
