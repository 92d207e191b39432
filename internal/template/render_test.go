package template_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saintgrid/bulkmail-backend/internal/model"
	"github.com/saintgrid/bulkmail-backend/internal/template"
)

func TestRenderSubstitutesPlaceholders(t *testing.T) {
	got := template.Render(
		"Hi {{name}}, reach {{email}}",
		model.Recipient{Email: "a@b.com", Name: "Ann"},
	)
	assert.Equal(t, "Hi Ann, reach a@b.com", got)
}

func TestRenderReplacesEveryOccurrence(t *testing.T) {
	got := template.Render(
		"{{name}} {{name}} <a href=\"mailto:{{email}}\">{{email}}</a>",
		model.Recipient{Email: "a@b.com", Name: "Ann"},
	)
	assert.Equal(t, "Ann Ann <a href=\"mailto:a@b.com\">a@b.com</a>", got)
}

func TestRenderDefaultsMissingName(t *testing.T) {
	got := template.Render(
		"Dear {{name}}",
		model.Recipient{Email: "a@b.com"},
	)
	assert.Equal(t, "Dear Valued Customer", got)
}

func TestRenderLeavesUnknownPlaceholders(t *testing.T) {
	got := template.Render(
		"Hi {{name}}, code {{coupon}}",
		model.Recipient{Email: "a@b.com", Name: "Ann"},
	)
	assert.Equal(t, "Hi Ann, code {{coupon}}", got)
}

func TestRenderDoesNotEscapeHTML(t *testing.T) {
	got := template.Render(
		"<b>{{name}}</b>",
		model.Recipient{Email: "a@b.com", Name: "<i>Ann</i>"},
	)
	assert.Equal(t, "<b><i>Ann</i></b>", got)
}
