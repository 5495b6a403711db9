package settings

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvu/firemerge/internal/export"
	"github.com/lvu/firemerge/internal/statement"
)

func TestBuiltinConfigs(t *testing.T) {
	configs, err := BuiltinConfigs()
	require.NoError(t, err)
	require.NotEmpty(t, configs)
	for _, cfg := range configs {
		assert.NotEmpty(t, cfg.Label)
		require.NotNil(t, cfg.ParserSettings)
		assert.NoError(t, cfg.ParserSettings.Validate())
	}
}

func TestValidateRejectsBadParserSettings(t *testing.T) {
	s := AccountSettings{
		ParserSettings: &statement.ParserSettings{
			Format: statement.FormatSettings{Format: statement.FormatCSV},
		},
	}
	err := s.Validate()
	require.Error(t, err)
	var cfgErr *statement.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestJSONRoundTripKeepsExportPresence(t *testing.T) {
	empty := []export.Field{}
	s := AccountSettings{
		Blacklist:      []string{"fee"},
		ExportSettings: &export.Settings{Withdrawal: &empty},
	}

	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var back AccountSettings
	require.NoError(t, json.Unmarshal(raw, &back))
	require.NotNil(t, back.ExportSettings)
	require.NotNil(t, back.ExportSettings.Withdrawal)
	assert.Empty(t, *back.ExportSettings.Withdrawal)
	assert.Nil(t, back.ExportSettings.Deposit)
}
