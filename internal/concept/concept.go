// Package concept resolves retail brand identity: storefront base URLs, site
// identifiers used in commerce API paths, and customer-care contacts.
package concept

import (
	"net/url"
	"sort"
	"strings"

	"retail-chatbot/internal/common/errors"
)

const (
	Max        = "MAX"
	Lifestyle  = "LIFESTYLE"
	Babyshop   = "BABYSHOP"
	Homecentre = "HOMECENTRE"
)

var baseURLs = map[string]string{
	Lifestyle:  "https://www.lifestylestores.com",
	Max:        "https://www.maxfashion.in",
	Babyshop:   "https://www.babyshop.in",
	Homecentre: "https://www.homecentre.in",
}

var siteIDs = map[string]string{
	Lifestyle:  "lifestylein",
	Max:        "maxin",
	Babyshop:   "babyshopin",
	Homecentre: "homecentrein",
}

var supportPhones = map[string]string{
	Max:        "1800-123-1444",
	Homecentre: "1800-212-7500",
	Babyshop:   "1800-123-7467",
	Lifestyle:  "1800-123-1555",
}

// DefaultSupportPhone is used when the request concept cannot be resolved.
const DefaultSupportPhone = "1800-123-1555"

// ValidConcepts returns the canonical concept codes in stable order.
func ValidConcepts() []string {
	out := make([]string, 0, len(baseURLs))
	for c := range baseURLs {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Normalize maps a raw concept value onto its canonical uppercase code.
func Normalize(raw string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(raw))
	if _, ok := baseURLs[c]; !ok {
		return "", errors.NewUnknownConceptError(raw)
	}
	return c, nil
}

// IsValid reports whether raw names a known concept.
func IsValid(raw string) bool {
	_, err := Normalize(raw)
	return err == nil
}

// SupportPhone returns the customer-care number for a concept, falling back
// to the default line for unknown values.
func SupportPhone(raw string) string {
	c, err := Normalize(raw)
	if err != nil {
		return DefaultSupportPhone
	}
	return supportPhones[c]
}

// ContactEscalationMessage is the fixed reply used when no grounded answer
// exists for a policy question.
func ContactEscalationMessage(raw string) string {
	return "Please contact our customer care for more details: Call " + SupportPhone(raw) + " for assistance."
}

// EnvBaseURL returns the storefront base URL with the www. host prefix
// replaced by the environment prefix, e.g. uat5.maxfashion.in.
func EnvBaseURL(raw, env string) (string, error) {
	c, err := Normalize(raw)
	if err != nil {
		return "", err
	}
	base := baseURLs[c]
	env = strings.TrimSpace(env)
	if env == "" {
		return base, nil
	}
	return strings.Replace(base, "www.", env+".", 1), nil
}

// SiteID returns the site identifier embedded in commerce API paths.
func SiteID(raw string) (string, error) {
	c, err := Normalize(raw)
	if err != nil {
		return "", err
	}
	return siteIDs[c], nil
}

// BuildAPIURL assembles a commerce API URL for a concept and environment:
// <envBase>/landmarkshopscommercews/v2/<siteId>/<path>?appId=...&extra
func BuildAPIURL(raw, env, uriPath, appID string, query url.Values) (string, error) {
	if strings.TrimSpace(uriPath) == "" {
		return "", errors.NewInvalidRequestError("uri path cannot be empty")
	}
	base, err := EnvBaseURL(raw, env)
	if err != nil {
		return "", err
	}
	siteID, err := SiteID(raw)
	if err != nil {
		return "", err
	}

	full := joinPath(base, "landmarkshopscommercews/v2", siteID, uriPath)

	params := url.Values{}
	params.Set("appId", appID)
	for k, vs := range query {
		for _, v := range vs {
			params.Add(k, v)
		}
	}
	return full + "?" + params.Encode(), nil
}

// BuildStorefrontURL assembles a customer-facing page URL under /in/en.
func BuildStorefrontURL(raw, env, uriPath string) (string, error) {
	base, err := EnvBaseURL(raw, env)
	if err != nil {
		return "", err
	}
	return joinPath(base, "in/en", uriPath), nil
}

func joinPath(parts ...string) string {
	var b strings.Builder
	for i, p := range parts {
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		if i > 0 {
			b.WriteString("/")
		}
		b.WriteString(p)
	}
	return b.String()
}
