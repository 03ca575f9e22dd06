package parser

import "github.com/Bli-AIk/mortar/i18n"

// Config holds parser configuration, set via functional Opt values.
type Config struct {
	locale i18n.Locale
}

// Opt configures a Parser at construction time.
type Opt func(*Config)

// WithLocale sets the locale diagnostics are formatted in. Defaults to
// i18n.English when omitted.
func WithLocale(locale i18n.Locale) Opt {
	return func(c *Config) { c.locale = locale }
}
