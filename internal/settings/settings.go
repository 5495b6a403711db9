// Package settings holds per-account configuration: the statement
// blacklist, the parser column config, and the export field template.
package settings

import (
	"github.com/lvu/firemerge/internal/export"
	"github.com/lvu/firemerge/internal/statement"
)

// AccountSettings is the per-account configuration blob, persisted as
// a JSON attachment on the ledger account.
type AccountSettings struct {
	Blacklist              []string                  `json:"blacklist" yaml:"blacklist"`
	BlacklistCaseSensitive bool                      `json:"blacklist_case_sensitive,omitempty" yaml:"blacklist_case_sensitive,omitempty"`
	ParserSettings         *statement.ParserSettings `json:"parser_settings,omitempty" yaml:"parser_settings,omitempty"`
	ExportSettings         *export.Settings          `json:"export_settings,omitempty" yaml:"export_settings,omitempty"`
}

// BlacklistMatcher builds the matcher configured by these settings.
func (s AccountSettings) BlacklistMatcher() statement.Blacklist {
	return statement.Blacklist{Terms: s.Blacklist, CaseSensitive: s.BlacklistCaseSensitive}
}

// Validate checks the embedded configs, when present.
func (s AccountSettings) Validate() error {
	if s.ParserSettings != nil {
		if err := s.ParserSettings.Validate(); err != nil {
			return err
		}
	}
	if s.ExportSettings != nil {
		if err := s.ExportSettings.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Config is a named, shippable settings preset for a known bank.
type Config struct {
	Label           string `json:"label" yaml:"label"`
	AccountSettings `yaml:",inline"`
}
