package utils

import "regexp"

var dsnPasswordRegex = regexp.MustCompile(`(:)([^:@/]+)(@)`)

// MaskDSN hides the password component of a connection URL so DSNs can be
// logged at startup.
func MaskDSN(dsn string) string {
	return dsnPasswordRegex.ReplaceAllString(dsn, ":***@")
}
