package validation

import (
	"strings"
	"testing"

	"github.com/ignite/deliverability-engine/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const compliantHTML = `<html><head><meta name="viewport" content="width=device-width"></head>
<body><p>Hello there, here is our monthly update.</p>
<img src="logo.png" alt="Logo">
<p>Acme Inc, company address: 1 Main St, Springfield</p>
<p><a href="https://example.com/unsubscribe">Unsubscribe</a></p></body></html>`

func compliantTemplate() domain.EmailTemplate {
	return domain.EmailTemplate{
		Subject:     "Your monthly update",
		HTMLContent: compliantHTML,
		TextContent: "Hello there, here is our monthly update.",
	}
}

func TestValidateTemplate_Compliant(t *testing.T) {
	v := New(Lexicon{})

	res := v.ValidateTemplate(compliantTemplate())
	assert.True(t, res.IsValid)
	assert.Equal(t, 100, res.Score)
	assert.Equal(t, 100, res.DeliverabilityScore)
	assert.Equal(t, 0, res.SpamScore)
	assert.Empty(t, res.Issues)
	assert.Empty(t, res.Warnings)
	assert.Empty(t, res.Suggestions)
}

func TestValidateTemplate_MissingSubject(t *testing.T) {
	v := New(Lexicon{})

	res := v.ValidateTemplate(domain.EmailTemplate{Subject: "", HTMLContent: "<p>x</p>"})
	assert.False(t, res.IsValid)
	assert.Contains(t, res.Issues, "Subject line is required")
	assert.LessOrEqual(t, res.Score, 80)
}

func TestValidateTemplate_MissingHTML(t *testing.T) {
	v := New(Lexicon{})

	res := v.ValidateTemplate(domain.EmailTemplate{Subject: "Hi"})
	assert.False(t, res.IsValid)
	assert.Contains(t, res.Issues, "HTML content is required")
	// html 30, unsubscribe 5, address 10
	assert.Equal(t, 55, res.Score)
	assert.Equal(t, 75, res.DeliverabilityScore)
}

func TestValidateTemplate_LongSubject(t *testing.T) {
	v := New(Lexicon{})
	tpl := compliantTemplate()
	tpl.Subject = strings.Repeat("a", 51)

	res := v.ValidateTemplate(tpl)
	assert.True(t, res.IsValid)
	assert.Len(t, res.Warnings, 1)
	assert.Equal(t, 95, res.Score)
	assert.Equal(t, 90, res.DeliverabilityScore)
}

func TestValidateTemplate_SubjectOfFiftyRunesIsFine(t *testing.T) {
	v := New(Lexicon{})
	tpl := compliantTemplate()
	tpl.Subject = strings.Repeat("é", 50)

	res := v.ValidateTemplate(tpl)
	assert.Empty(t, res.Warnings)
}

func TestValidateTemplate_MissingComplianceMarkers(t *testing.T) {
	v := New(Lexicon{})
	tpl := domain.EmailTemplate{
		Subject:     "Hello",
		HTMLContent: `<meta name="viewport"><p>Plain body</p>`,
		TextContent: "Plain body",
	}

	res := v.ValidateTemplate(tpl)
	assert.True(t, res.IsValid, "warnings never block")
	assert.Len(t, res.Warnings, 2)
	assert.Equal(t, 85, res.Score)
	assert.Equal(t, 75, res.DeliverabilityScore)
}

func TestValidateTemplate_SuggestionsDoNotScore(t *testing.T) {
	v := New(Lexicon{})
	tpl := domain.EmailTemplate{
		Subject: "Hello",
		HTMLContent: `<p>unsubscribe here. Our address: 1 Main St</p>
<img src="a.png"><IMG SRC="b.png" ALT="b"><img src="c.png" title="c">`,
	}

	res := v.ValidateTemplate(tpl)
	assert.True(t, res.IsValid)
	assert.Equal(t, 100, res.Score)
	assert.Equal(t, 100, res.DeliverabilityScore)
	// responsive + two images + plain text
	assert.Len(t, res.Suggestions, 4)
	assert.Contains(t, res.Suggestions, "Image 1 is missing alt text")
	assert.Contains(t, res.Suggestions, "Image 3 is missing alt text")
}

func TestValidateTemplate_HighSpamScoreIsBlocking(t *testing.T) {
	v := New(Lexicon{})
	tpl := compliantTemplate()
	tpl.Subject = "FREE WINNER ACT NOW"
	tpl.HTMLContent = compliantHTML + `<p>click here!!!! https://bit.ly/x</p>`

	res := v.ValidateTemplate(tpl)
	require.Greater(t, res.SpamScore, 5)
	assert.False(t, res.IsValid)
	assert.Contains(t, res.Issues[0], "High spam score")
	assert.Equal(t, 85, res.Score)
	assert.Equal(t, 80, res.DeliverabilityScore)
}

func TestValidateTemplate_ElevatedSpamScoreWarns(t *testing.T) {
	v := New(Lexicon{})
	tpl := compliantTemplate()
	tpl.Subject = "free winner act now"
	tpl.HTMLContent = compliantHTML + `<p>click here</p>`

	res := v.ValidateTemplate(tpl)
	require.Equal(t, 4, res.SpamScore)
	assert.True(t, res.IsValid)
	assert.Equal(t, 95, res.Score)
	assert.Equal(t, 100, res.DeliverabilityScore)
}

func TestValidateTemplate_ScoresClampedAtZero(t *testing.T) {
	v := New(Lexicon{})
	tpl := domain.EmailTemplate{Subject: strings.Repeat("FREE WINNER ", 10) + "!!!!"}

	res := v.ValidateTemplate(tpl)
	assert.False(t, res.IsValid)
	assert.GreaterOrEqual(t, res.Score, 0)
	assert.GreaterOrEqual(t, res.DeliverabilityScore, 0)
}

func TestValidateTemplate_Idempotent(t *testing.T) {
	v := New(Lexicon{})
	tpl := domain.EmailTemplate{Subject: "FREE stuff!!!!", HTMLContent: `<img src="x">`}

	first := v.ValidateTemplate(tpl)
	second := v.ValidateTemplate(tpl)
	assert.Equal(t, first, second)
}
