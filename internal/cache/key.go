// Package cache implements the response cache: eligibility rules, request
// fingerprinting, and the pluggable storage backends.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"retail-chatbot/internal/model"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// timeSensitiveMarkers flag queries whose answer changes over time. Matched as
// substrings of the lowercased message.
var timeSensitiveMarkers = []string{"now", "current", "today", "latest"}

// Cacheable reports whether a request's response may be stored and replayed.
// Requests carrying payment credentials, conversational context, or
// time-sensitive wording are excluded.
func Cacheable(req *model.ChatRequest) bool {
	if req.CardNumber != "" || req.PIN != "" {
		return false
	}
	if req.PreviousResponse != "" {
		return false
	}

	message := strings.ToLower(req.Message)
	for _, marker := range timeSensitiveMarkers {
		if strings.Contains(message, marker) {
			return false
		}
	}
	return true
}

// Key fingerprints a request for cache lookup. The message is lowercased,
// trimmed, and whitespace-collapsed; location joins the key only when both
// coordinates are non-zero, rounded to two decimals so nearby lookups share an
// entry.
func Key(req *model.ChatRequest) string {
	var b strings.Builder

	if req.UserID != "" {
		b.WriteString(req.UserID)
		b.WriteString(":")
	}

	normalized := whitespaceRe.ReplaceAllString(strings.TrimSpace(strings.ToLower(req.Message)), " ")
	b.WriteString(normalized)

	if req.Latitude != 0 && req.Longitude != 0 {
		b.WriteString(fmt.Sprintf(":loc:%.2f,%.2f", req.Latitude, req.Longitude))
	}

	if req.Env != "" {
		b.WriteString(":env:")
		b.WriteString(req.Env)
	}

	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
