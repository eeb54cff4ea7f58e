package services

import "net/url"

func validateURLField(verr *ValidationError, field, raw string) {
	parsed, err := url.Parse(raw)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		verr.add(field, "must be a valid absolute URL")
	}
}
