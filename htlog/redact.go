package htlog

import "strings"

// sensitiveHeaders lists the header names Redact replaces with a fixed
// placeholder instead of logging verbatim.
var sensitiveHeaders = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
}

const redactedPlaceholder = "[redacted]"

// Redact reports the value to log for a header, replacing it with a fixed
// placeholder when name is one of the well-known credential-bearing
// headers.
func Redact(name, value string) string {
	if sensitiveHeaders[strings.ToLower(name)] {
		return redactedPlaceholder
	}
	return value
}
