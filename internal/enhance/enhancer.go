// Package enhance proposes record patches extracted from clinic names
// and free-text notes.
package enhance

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/theramap/insights-cli/internal/model"
)

// rewriteRule is one ordered name-standardization step. Rules apply
// against the cumulative result of the rules before them.
type rewriteRule struct {
	pattern     *regexp.Regexp
	replacement string
}

var nameRules = []rewriteRule{
	// Legal suffixes add nothing to a directory listing.
	{regexp.MustCompile(`(?i)[,\s]+(llc|l\.l\.c\.|inc\.?|corp\.?|pllc|pa)\.?\s*$`), ""},
	{regexp.MustCompile(`(?i)speech\s*&\s*language`), "Speech-Language"},
	{regexp.MustCompile(`\bSLP\b`), "Speech-Language Pathology"},
	{regexp.MustCompile(`(?i)therapy\s+services`), "Therapy Center"},
	{regexp.MustCompile(`(?i)rehabilitation`), "Rehab"},
	{regexp.MustCompile(`\s+`), " "},
}

// phonePatterns are tried in order; the first match wins.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\((\d{3})\)\s*(\d{3})-(\d{4})`),
	regexp.MustCompile(`(\d{3})-(\d{3})-(\d{4})`),
	regexp.MustCompile(`(\d{3})\.(\d{3})\.(\d{4})`),
	regexp.MustCompile(`\b(\d{10})\b`),
}

var (
	emailPattern     = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	websitePattern   = regexp.MustCompile(`https?://[^\s,;]+|\bwww\.[^\s,;]+`)
	formattedPhoneRe = regexp.MustCompile(`^\(\d{3}\) \d{3}-\d{4}$`)
)

// serviceRule maps trigger phrases to one canonical service tag.
type serviceRule struct {
	tag     string
	phrases []string
}

// serviceKeywords covers the 13 canonical service tags.
var serviceKeywords = []serviceRule{
	{"stuttering", []string{"stuttering", "fluency", "stammering"}},
	{"apraxia", []string{"apraxia", "motor speech"}},
	{"voice-therapy", []string{"voice therapy", "voice disorder", "vocal"}},
	{"feeding-therapy", []string{"feeding", "picky eating", "oral motor"}},
	{"swallowing", []string{"swallow", "dysphagia"}},
	{"social-skills", []string{"social skills", "social communication", "pragmatic"}},
	{"articulation", []string{"articulation", "phonological", "speech sounds"}},
	{"language-therapy", []string{"language delay", "language disorder", "expressive language", "receptive language"}},
	{"early-intervention", []string{"early intervention", "birth to three", "toddler"}},
	{"accent-modification", []string{"accent"}},
	{"aac", []string{"aac", "augmentative", "alternative communication"}},
	{"cognitive-communication", []string{"cognitive", "brain injury", "memory therapy"}},
	{"aural-rehab", []string{"hearing", "aural", "auditory processing"}},
}

// Enhance proposes a patch for one clinic from its name and notes.
// Returns nil when nothing would change; a second pass over an already
// patched record always returns nil.
func Enhance(c model.ClinicRecord) *model.FieldEnhancement {
	e := model.FieldEnhancement{ClinicID: c.ID}

	if name := StandardizeName(c.Name); name != "" && name != c.Name {
		e.Name = name
	}

	if phone := ExtractPhone(c.Notes + " " + c.Name); phone != "" && phone != c.Phone {
		e.Phone = phone
	}

	if c.Email == "" {
		e.Email = ExtractEmail(c.Notes)
	}

	if c.Website == "" {
		e.Website = ExtractWebsite(c.Notes)
	}

	if union := InferServices(c.Name+" "+c.Notes, c.Services); len(union) > len(c.Services) {
		e.Services = union
	}

	if e.IsEmpty() {
		return nil
	}

	e.Confidence = confidence(&c, &e)

	zap.L().Debug("enhance: proposal",
		zap.String("clinic_id", c.ID),
		zap.Float64("confidence", e.Confidence),
		zap.Bool("name_changed", e.Name != ""),
	)

	return &e
}

// EnhanceAll runs the enhancer over a snapshot, skipping clinics with
// nothing to change.
func EnhanceAll(clinics []model.ClinicRecord) []model.FieldEnhancement {
	var out []model.FieldEnhancement
	for i := range clinics {
		if e := Enhance(clinics[i]); e != nil {
			out = append(out, *e)
		}
	}
	return out
}

// StandardizeName applies the ordered rewrite rules to a fixpoint, so
// stacked legal suffixes ("Clinic LLC, Inc.") collapse in one call, and
// trims leading and trailing separators. Returns the cleaned name,
// which may equal the input.
func StandardizeName(name string) string {
	out := name
	for i := 0; i < 8; i++ {
		prev := out
		for _, rule := range nameRules {
			out = rule.pattern.ReplaceAllString(out, rule.replacement)
		}
		out = strings.Trim(out, " -,")
		if out == prev {
			break
		}
	}
	return out
}

// ExtractPhone returns the first phone number found in the text,
// formatted as (NNN) NNN-NNNN, or "".
func ExtractPhone(text string) string {
	for _, p := range phonePatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		digits := strings.Join(m[1:], "")
		if len(digits) == 10 {
			return fmt.Sprintf("(%s) %s-%s", digits[:3], digits[3:6], digits[6:])
		}
	}
	return ""
}

// ExtractEmail returns the first email-shaped token in the text, or "".
func ExtractEmail(text string) string {
	return emailPattern.FindString(text)
}

// ExtractWebsite returns the first URL-shaped token in the text with an
// https scheme prepended if missing, or "".
func ExtractWebsite(text string) string {
	m := websitePattern.FindString(text)
	if m == "" {
		return ""
	}
	m = strings.TrimRight(m, ".,)")
	if !strings.HasPrefix(m, "http://") && !strings.HasPrefix(m, "https://") {
		m = "https://" + m
	}
	return m
}

// InferServices unions keyword-matched tags into the existing service
// set. Existing tags keep their order; new tags append in rule order.
func InferServices(text string, existing []string) []string {
	lower := strings.ToLower(text)

	have := make(map[string]bool, len(existing))
	union := make([]string, 0, len(existing))
	for _, s := range existing {
		if !have[s] {
			have[s] = true
			union = append(union, s)
		}
	}

	for _, rule := range serviceKeywords {
		if have[rule.tag] {
			continue
		}
		for _, phrase := range rule.phrases {
			if strings.Contains(lower, phrase) {
				have[rule.tag] = true
				union = append(union, rule.tag)
				break
			}
		}
	}

	return union
}

// confidence scores the enhanced result: base 0.5, boosted for each
// verified contact field present after the patch, docked when the name
// changed, clamped to [0, 1].
func confidence(c *model.ClinicRecord, e *model.FieldEnhancement) float64 {
	phone := e.Phone
	if phone == "" {
		phone = c.Phone
	}
	email := e.Email
	if email == "" {
		email = c.Email
	}
	website := e.Website
	if website == "" {
		website = c.Website
	}
	services := e.Services
	if len(services) == 0 {
		services = c.Services
	}

	conf := 0.5
	if formattedPhoneRe.MatchString(phone) {
		conf += 0.2
	}
	if email != "" && emailPattern.FindString(email) == email {
		conf += 0.2
	}
	if strings.HasPrefix(website, "http://") || strings.HasPrefix(website, "https://") {
		conf += 0.1
	}
	if len(services) > 0 {
		conf += 0.1
	}
	if e.Name != "" {
		conf -= 0.1
	}

	if conf < 0 {
		return 0
	}
	if conf > 1 {
		return 1
	}
	return conf
}
