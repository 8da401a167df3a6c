// cmd/txprep/settings.go
package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rovshanmuradov/txprep/internal/fee"
)

// settingsFromFlags builds the fee strategy selected on the command line.
func settingsFromFlags(option string, customFee, multiplier, maxCap float64, capUnit string) (fee.Settings, error) {
	if maxCap < 0 {
		return nil, errors.New("--max-cap must not be negative")
	}
	feeCap := fee.Cap{Amount: maxCap, Unit: fee.CapUnitSOL}
	if strings.EqualFold(capUnit, string(fee.CapUnitLamports)) {
		feeCap.Unit = fee.CapUnitLamports
	} else if !strings.EqualFold(capUnit, string(fee.CapUnitSOL)) && capUnit != "" {
		return nil, fmt.Errorf("unknown cap unit %q", capUnit)
	}

	switch fee.Option(strings.ToLower(option)) {
	case fee.OptionCustom:
		if customFee < 0 {
			return nil, errors.New("--custom-fee must not be negative")
		}
		return fee.Custom{Fee: customFee, Cap: feeCap}, nil
	case fee.OptionMultiple:
		if multiplier <= 0 {
			return nil, errors.New("--multiplier must be positive")
		}
		return fee.Multiple{Multiplier: multiplier, Cap: feeCap}, nil
	case fee.OptionDynamic:
		return fee.Dynamic{Cap: feeCap}, nil
	case "", "default":
		return fee.Default{Cap: feeCap}, nil
	default:
		return nil, fmt.Errorf("unknown fee option %q", option)
	}
}
