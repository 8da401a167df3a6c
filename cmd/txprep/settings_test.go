package main

import (
	"testing"

	"github.com/rovshanmuradov/txprep/internal/fee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsFromFlags(t *testing.T) {
	tests := []struct {
		name       string
		option     string
		customFee  float64
		multiplier float64
		maxCap     float64
		capUnit    string
		want       fee.Settings
		wantErr    bool
	}{
		{name: "custom", option: "custom", customFee: 5000, capUnit: "SOL",
			want: fee.Custom{Fee: 5000, Cap: fee.Cap{Unit: fee.CapUnitSOL}}},
		{name: "multiple with lamport cap", option: "Multiple", multiplier: 1.5, maxCap: 100_000, capUnit: "lamports",
			want: fee.Multiple{Multiplier: 1.5, Cap: fee.Cap{Amount: 100_000, Unit: fee.CapUnitLamports}}},
		{name: "dynamic", option: "dynamic", maxCap: 0.01, capUnit: "sol",
			want: fee.Dynamic{Cap: fee.Cap{Amount: 0.01, Unit: fee.CapUnitSOL}}},
		{name: "default when empty", option: "", capUnit: "SOL",
			want: fee.Default{Cap: fee.Cap{Unit: fee.CapUnitSOL}}},
		{name: "zero multiplier", option: "multiple", multiplier: 0, wantErr: true},
		{name: "negative custom fee", option: "custom", customFee: -1, wantErr: true},
		{name: "negative cap", option: "dynamic", maxCap: -1, wantErr: true},
		{name: "unknown unit", option: "dynamic", capUnit: "gwei", wantErr: true},
		{name: "unknown option", option: "turbo", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := settingsFromFlags(tt.option, tt.customFee, tt.multiplier, tt.maxCap, tt.capUnit)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
