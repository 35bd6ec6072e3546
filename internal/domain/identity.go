package domain

import "regexp"

// identityRegex is the anchored pattern that Host and App labels must match.
var identityRegex = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Host identifies the originating machine of a batch of records.
type Host string

// App identifies the originating application of a batch of records.
type App string

// ParseHost validates s as a Host label.
func ParseHost(s string) (Host, error) {
	if !identityRegex.MatchString(s) {
		return "", ErrParseIdentity.WithDetails("host `" + s + "` contains characters outside [A-Za-z0-9]")
	}
	return Host(s), nil
}

// ParseApp validates s as an App label.
func ParseApp(s string) (App, error) {
	if !identityRegex.MatchString(s) {
		return "", ErrParseIdentity.WithDetails("app `" + s + "` contains characters outside [A-Za-z0-9]")
	}
	return App(s), nil
}
