package service

import (
	"regexp"
	"strings"
)

var (
	ourxmasPattern     = regexp.MustCompile(`(?i)ourxmas\s+([A-Za-z0-9]+)`)
	mbvcbPattern       = regexp.MustCompile(`^MBVCB\.\d+\.\d+\.([^.]+)\.CT\s`)
	mbvcbSimplePattern = regexp.MustCompile(`^MBVCB\.\d+\.\d+\.([^.\s]+)`)
)

// ExtractPaymentCode pulls the payment code out of a bank transfer content
// string. Banks mangle the content each in their own way, so this walks a
// chain of known formats before falling back to the last token.
//
//	"Ourxmas MyProject123"                  -> "MyProject123"
//	"MBVCB.12243110992.867260.khoi2.CT tu"  -> "khoi2"
//	"BIDV;96247QTKN;beo san"                -> "beo san"
func ExtractPaymentCode(content string) string {
	if m := ourxmasPattern.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := mbvcbPattern.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := mbvcbSimplePattern.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	if strings.Contains(content, ";") {
		parts := strings.Split(content, ";")
		return strings.TrimSpace(parts[len(parts)-1])
	}
	fields := strings.Fields(content)
	if len(fields) > 1 {
		return fields[len(fields)-1]
	}
	return strings.TrimSpace(content)
}
