// Package permalink expands permalink templates into site-relative
// output paths.
package permalink

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrInvalidTemplate indicates an invalid permalink template string.
var ErrInvalidTemplate = errors.New("invalid permalink template")

// MaxTemplateLength limits template string length to prevent abuse.
const MaxTemplateLength = 100

// DefaultTemplate is used when the site config does not set one.
const DefaultTemplate = "/:year/:month/:day/:title.html"

// tokens maps template tokens to date format components or the slug.
// Ordered by length descending for greedy matching. An empty goFmt marks
// the slug token, which is substituted outside time formatting.
var tokens = []struct {
	token string
	goFmt string
}{
	{":i_month", "1"},
	{":i_day", "2"},
	{":month", "01"},
	{":title", ""},
	{":year", "2006"},
	{":day", "02"},
}

// Presets provides named shortcuts for common permalink styles.
var Presets = map[string]string{
	"date":   "/:year/:month/:day/:title.html",
	"pretty": "/:year/:month/:day/:title/",
	"none":   "/:title.html",
}

// datedName matches a YYYY-MM-DD- filename prefix followed by a slug.
var datedName = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})-(.+)$`)

// SplitDatedName extracts the date prefix and slug from a file name
// (without extension). Returns ok=false when the name carries no date prefix
// or the prefix is not a real calendar date.
func SplitDatedName(name string) (date time.Time, slug string, ok bool) {
	m := datedName.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, "", false
	}
	date, err := time.Parse("2006-01-02", m[1]+"-"+m[2]+"-"+m[3])
	if err != nil {
		return time.Time{}, "", false
	}
	return date, m[4], true
}

// ValidateTemplate checks a permalink template for use with Expand.
// Accepts preset names (date, pretty, none) as well as literal templates.
// A literal template must start with "/" and use only known tokens.
func ValidateTemplate(tpl string) error {
	if tpl == "" {
		return fmt.Errorf("%w: template cannot be empty", ErrInvalidTemplate)
	}
	if len(tpl) > MaxTemplateLength {
		return fmt.Errorf("%w: template exceeds %d characters", ErrInvalidTemplate, MaxTemplateLength)
	}
	if _, ok := Presets[tpl]; ok {
		return nil
	}
	if !strings.HasPrefix(tpl, "/") {
		return fmt.Errorf("%w: template must start with \"/\"", ErrInvalidTemplate)
	}
	_, err := Expand(tpl, time.Time{}, "probe")
	return err
}

// Expand substitutes date and slug tokens into a permalink template.
// Preset names are resolved first. Unknown :tokens fail rather than pass
// through silently: a typo in the config should not leak into every URL.
func Expand(tpl string, date time.Time, slug string) (string, error) {
	if preset, ok := Presets[strings.ToLower(tpl)]; ok {
		tpl = preset
	}

	var result strings.Builder
	result.Grow(len(tpl) + len(slug))

	i := 0
	for i < len(tpl) {
		if tpl[i] != ':' {
			result.WriteByte(tpl[i])
			i++
			continue
		}

		matched := false
		for _, t := range tokens {
			if strings.HasPrefix(tpl[i:], t.token) {
				if t.goFmt == "" {
					result.WriteString(slug)
				} else {
					result.WriteString(date.Format(t.goFmt))
				}
				i += len(t.token)
				matched = true
				break
			}
		}

		if !matched {
			return "", fmt.Errorf("%w: unknown token at position %d in %q", ErrInvalidTemplate, i, tpl)
		}
	}

	return result.String(), nil
}
