package core

import (
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type (
	testMailItem struct {
		Name   string
		Amount string
	}

	testMailData struct {
		ID           int
		FullName     string
		MatricNumber string
		Status       string
		Items        []testMailItem
		Total        string
	}
)

func TestEmailTemplatesEmbedded(t *testing.T) {
	for _, name := range []string{"_base.gohtml", "_base.txt", "payment_received.gohtml", "payment_status.txt"} {
		_, err := emailTemplates.ReadFile("templates/email/" + name)
		assert.NoError(t, err, name)
	}
}

func TestEmailMessage_Render(t *testing.T) {
	data := testMailData{
		ID:           7,
		FullName:     "Ada Obi",
		MatricNumber: "210012",
		Status:       "approved",
		Items:        []testMailItem{{Name: "Departmental Dues", Amount: "₦5,000"}},
		Total:        "₦5,000",
	}

	tests := []struct {
		name     string
		tmpl     string
		wantText []string
		wantHTML []string
	}{
		{
			name:     "payment received",
			tmpl:     "payment_received",
			wantText: []string{"Hello Ada Obi,", "(ID 7)", "- Departmental Dues: ₦5,000", "Total: ₦5,000", Conf.SupportEmail},
			wantHTML: []string{"<strong>7</strong>", "210012", "<strong>₦5,000</strong>", "<hr>"},
		},
		{
			name:     "payment status",
			tmpl:     "payment_status",
			wantText: []string{"is now: approved.", "log in to the student portal", Conf.SiteBaseURL},
			wantHTML: []string{"<strong>approved</strong>", "/student/login"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msg := &EmailMessage{
				To:           []mail.Address{{Name: data.FullName, Address: "ada@ui.edu.ng"}},
				Subject:      "test",
				TemplateName: tc.tmpl,
				TemplateData: data,
			}
			require.NoError(t, msg.Render())
			assert.True(t, msg.HasContent())
			for _, want := range tc.wantText {
				assert.Contains(t, msg.TextContent, want)
			}
			for _, want := range tc.wantHTML {
				assert.Contains(t, msg.HTMLContent, want)
			}
			assert.True(t, strings.HasPrefix(msg.HTMLContent, "<!DOCTYPE html>"))
		})
	}
}

func TestEmailMessage_Render_unknownTemplate(t *testing.T) {
	msg := &EmailMessage{TemplateName: "nope"}
	assert.EqualError(t, msg.Render(), `unknown email template "nope"`)
}

func TestEmailMessage_Render_bodyStr(t *testing.T) {
	msg := &EmailMessage{BodyStr: "plain"}
	require.NoError(t, msg.Render())
	assert.Equal(t, "plain", msg.TextContent)
	assert.Empty(t, msg.HTMLContent)
}
