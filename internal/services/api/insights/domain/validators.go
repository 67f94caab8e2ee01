package domain

import (
	"net/url"
	"strings"
	"sync"

	"gscchat/internal/core/daterange"
	"gscchat/internal/core/intents"
	"gscchat/internal/platform/net/http/bind"
)

var (
	tagsOnce sync.Once
	tagsErr  error
)

// RegisterValidators installs the insights validation tags on the shared validator
func RegisterValidators() error {
	tagsOnce.Do(func() {
		tags := []struct {
			tag, msg string
			fn       func(bind.FieldLevel) bool
		}{
			{"gsc_preset", "{0} must be one of last7, last28, last90", func(fl bind.FieldLevel) bool {
				return daterange.Preset(fl.Field().String()).Valid()
			}},
			{"gsc_intent", "{0} must be a supported intent", func(fl bind.FieldLevel) bool {
				_, ok := intents.Parse(fl.Field().String())
				return ok
			}},
			{"gsc_site", "{0} must be a sc-domain: property or an http(s) URL prefix", func(fl bind.FieldLevel) bool {
				return ValidSite(fl.Field().String())
			}},
		}
		for _, t := range tags {
			if err := bind.RegisterTag(t.tag, t.msg, t.fn); err != nil {
				tagsErr = err
				return
			}
		}
	})
	return tagsErr
}

// ValidSite accepts domain properties (sc-domain:host) and URL-prefix properties
func ValidSite(s string) bool {
	s = strings.TrimSpace(s)
	if host, ok := strings.CutPrefix(s, "sc-domain:"); ok {
		return host != "" && !strings.ContainsAny(host, "/ ")
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
