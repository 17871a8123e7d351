package logger

import "strings"

// RedactEmail hides most of the local part of an address and keeps the
// domain, which is what deliverability logs are read for. Two characters of
// the local part survive when it is longer than two; otherwise all of it is
// masked. A display name in "Name <addr>" form is left as is.
func RedactEmail(email string) string {
	if open := strings.LastIndex(email, "<"); open >= 0 && strings.HasSuffix(email, ">") {
		return email[:open+1] + RedactEmail(email[open+1:len(email)-1]) + ">"
	}
	local, host, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(host, "@") {
		return "***@***"
	}
	if len(local) <= 2 {
		return "***@" + host
	}
	return local[:2] + "***@" + host
}
