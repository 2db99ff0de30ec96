// Package dedup drops questions a user has already been served.
package dedup

import "strings"

var fingerprintStripper = strings.NewReplacer(" ", "", `\`, "")

// Fingerprint normalizes question text so markup variants of the same
// question collide: lowercase, with spaces and backslashes removed.
func Fingerprint(text string) string {
	return fingerprintStripper.Replace(strings.ToLower(text))
}
