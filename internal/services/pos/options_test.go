package pos

import (
	"testing"

	"syntra-pos/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.POSConfig
		want    Options
		wantErr bool
	}{
		{"empty uses defaults", config.POSConfig{}, DefaultOptions(), false},
		{"fail and optimistic", config.POSConfig{PriceFallback: "FAIL", ConcurrencyMode: " optimistic "}, Options{PriceFallbackFail, Optimistic}, false},
		{"explicit defaults", config.POSConfig{PriceFallback: "zero", ConcurrencyMode: "last_write_wins"}, DefaultOptions(), false},
		{"unknown fallback", config.POSConfig{PriceFallback: "free"}, Options{}, true},
		{"unknown mode", config.POSConfig{ConcurrencyMode: "pessimistic"}, Options{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OptionsFromConfig(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
