package enhance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theramap/insights-cli/internal/model"
)

func TestStandardizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Speech & Language Clinic LLC", "Speech-Language Clinic"},
		{"Sunrise Therapy Services, Inc.", "Sunrise Therapy Center"},
		{"Bright SLP Associates", "Bright Speech-Language Pathology Associates"},
		{"Valley Rehabilitation Clinic", "Valley Rehab Clinic"},
		{"  Double  Spaced   Name ", "Double Spaced Name"},
		{"Plain Speech Clinic", "Plain Speech Clinic"},
		{"Speech Clinic LLC, Inc.", "Speech Clinic"},
		{"Stacked Therapy Services, PLLC, Corp.", "Stacked Therapy Center"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, StandardizeName(tt.in))
		})
	}
}

func TestStandardizeNameStable(t *testing.T) {
	// A second pass over an already standardized name is a no-op.
	for _, in := range []string{
		"Speech & Language Clinic LLC",
		"Sunrise Therapy Services, Inc.",
		"Bright SLP Associates",
		"Speech Clinic LLC, Inc.",
	} {
		once := StandardizeName(in)
		assert.Equal(t, once, StandardizeName(once))
	}
}

func TestExtractPhoneFormats(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"parenthesized", "Call (555) 123-4567 today", "(555) 123-4567"},
		{"dashed", "reach us at 555-123-4567", "(555) 123-4567"},
		{"dotted", "fax 555.123.4567", "(555) 123-4567"},
		{"bare digits", "line 5551234567 ext 2", "(555) 123-4567"},
		{"none", "no contact info here", ""},
		{"too short", "suite 555-1234", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPhone(tt.text))
		})
	}
}

func TestExtractWebsite(t *testing.T) {
	assert.Equal(t, "https://example.com/about",
		ExtractWebsite("see https://example.com/about for hours"))
	assert.Equal(t, "https://www.example-speech.com",
		ExtractWebsite("visit www.example-speech.com."))
	assert.Equal(t, "http://old.example.org",
		ExtractWebsite("legacy site http://old.example.org"))
	assert.Empty(t, ExtractWebsite("no links"))
}

func TestExtractEmail(t *testing.T) {
	assert.Equal(t, "intake@example.com", ExtractEmail("email intake@example.com to book"))
	assert.Empty(t, ExtractEmail("intake at example dot com"))
}

func TestInferServices(t *testing.T) {
	got := InferServices("We treat stuttering and fluency disorders, plus feeding issues", nil)
	assert.Equal(t, []string{"stuttering", "feeding-therapy"}, got)

	// Existing tags keep their position and are never duplicated.
	got = InferServices("dysphagia and swallowing support", []string{"swallowing", "articulation"})
	assert.Equal(t, []string{"swallowing", "articulation"}, got)
}

func TestEnhanceFromNotes(t *testing.T) {
	c := model.ClinicRecord{
		ID:    "clinic-1",
		Name:  "Example Speech Clinic",
		City:  "Fresno",
		State: "CA",
		Notes: "Phone: (555) 123-4567, visit www.example-speech.com",
	}

	e := Enhance(c)
	require.NotNil(t, e)
	assert.Equal(t, "clinic-1", e.ClinicID)
	assert.Equal(t, "(555) 123-4567", e.Phone)
	assert.Equal(t, "https://www.example-speech.com", e.Website)
	assert.Empty(t, e.Name)
	assert.GreaterOrEqual(t, e.Confidence, 0.7)
}

func TestEnhanceIdempotent(t *testing.T) {
	c := model.ClinicRecord{
		ID:    "clinic-2",
		Name:  "Speech & Language Clinic LLC",
		City:  "Omaha",
		State: "NE",
		Notes: "Phone: 402-555-0199, email intake@slclinic.com, stuttering and apraxia",
	}

	first := Enhance(c)
	require.NotNil(t, first)
	assert.Equal(t, "Speech-Language Clinic", first.Name)
	assert.Equal(t, "(402) 555-0199", first.Phone)
	assert.Equal(t, "intake@slclinic.com", first.Email)
	assert.ElementsMatch(t, []string{"stuttering", "apraxia"}, first.Services)

	// Apply the patch, then a second pass finds nothing left to change.
	c.Name = first.Name
	c.Phone = first.Phone
	c.Email = first.Email
	c.Services = first.Services

	assert.Nil(t, Enhance(c))
}

func TestEnhanceIdempotentStackedSuffixes(t *testing.T) {
	c := model.ClinicRecord{
		ID:   "clinic-6",
		Name: "Speech Clinic LLC, Inc.",
	}

	first := Enhance(c)
	require.NotNil(t, first)
	assert.Equal(t, "Speech Clinic", first.Name)

	// Both suffixes collapse in one pass, so the patched record is done.
	c.Name = first.Name
	assert.Nil(t, Enhance(c))
}

func TestEnhanceNoChanges(t *testing.T) {
	c := model.ClinicRecord{
		ID:    "clinic-3",
		Name:  "Plain Speech Clinic",
		Phone: "(111) 222-3333",
	}
	assert.Nil(t, Enhance(c))
}

func TestEnhanceDoesNotOverwriteExistingContact(t *testing.T) {
	c := model.ClinicRecord{
		ID:      "clinic-4",
		Name:    "Plain Speech Clinic",
		Email:   "front@clinic.com",
		Website: "https://clinic.com",
		Notes:   "other address: second@clinic.com, see www.other-site.com",
	}

	e := Enhance(c)
	require.Nil(t, e)
}

func TestEnhanceAll(t *testing.T) {
	clinics := []model.ClinicRecord{
		{ID: "a", Name: "Plain Speech Clinic"},
		{ID: "b", Name: "Busy Clinic LLC", Notes: "call 555-987-6543"},
	}

	out := EnhanceAll(clinics)
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].ClinicID)
}

func TestConfidenceClamped(t *testing.T) {
	c := model.ClinicRecord{
		ID:    "clinic-5",
		Name:  "Everything Rehabilitation Services LLC",
		Notes: "Phone (800) 555-0000, email all@everything.com, https://everything.com, stuttering apraxia feeding hearing cognitive",
	}

	e := Enhance(c)
	require.NotNil(t, e)
	assert.GreaterOrEqual(t, e.Confidence, 0.0)
	assert.LessOrEqual(t, e.Confidence, 1.0)
}
