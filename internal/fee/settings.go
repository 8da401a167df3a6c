package fee

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Option is the persisted name of a fee strategy.
type Option string

const (
	OptionCustom   Option = "custom"
	OptionMultiple Option = "multiple"
	OptionDynamic  Option = "dynamic"
)

// CapUnit is the currency a fee cap is expressed in.
type CapUnit string

const (
	CapUnitSOL      CapUnit = "SOL"
	CapUnitLamports CapUnit = "lamports"
)

const LamportsPerSOL = 1_000_000_000

// Cap bounds the total priority fee of one transaction. A zero Amount means no cap.
type Cap struct {
	Amount float64
	Unit   CapUnit
}

func (c Cap) IsSet() bool {
	return c.Amount > 0
}

// Lamports converts the cap to the smallest unit.
func (c Cap) Lamports() uint64 {
	if !c.IsSet() {
		return 0
	}
	v := c.Amount
	if c.Unit != CapUnitLamports {
		v = math.Round(v * LamportsPerSOL)
	}
	if v >= math.MaxUint64 {
		return math.MaxUint64
	}
	return uint64(v)
}

// Settings is exactly one of Custom, Multiple, Dynamic or Default.
type Settings interface {
	Strategy() string
	MaxCap() Cap
	isSettings()
}

// Custom attaches Fee verbatim without consulting the estimator.
type Custom struct {
	Fee float64
	Cap Cap
}

// Multiple scales the live estimate by Multiplier.
type Multiple struct {
	Multiplier float64
	Cap        Cap
}

// Dynamic uses the live estimate as is.
type Dynamic struct {
	Cap Cap
}

// Default is used when no (valid) option is configured; behaves like Dynamic.
type Default struct {
	Cap Cap
}

func (Custom) Strategy() string   { return string(OptionCustom) }
func (Multiple) Strategy() string { return string(OptionMultiple) }
func (Dynamic) Strategy() string  { return string(OptionDynamic) }
func (Default) Strategy() string  { return "default" }

func (s Custom) MaxCap() Cap   { return s.Cap }
func (s Multiple) MaxCap() Cap { return s.Cap }
func (s Dynamic) MaxCap() Cap  { return s.Cap }
func (s Default) MaxCap() Cap  { return s.Cap }

func (Custom) isSettings()   {}
func (Multiple) isSettings() {}
func (Dynamic) isSettings()  {}
func (Default) isSettings()  {}

// flexFloat accepts both JSON numbers and numeric strings; form inputs tend to
// persist the latter.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", s)
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

type rawSettings struct {
	Option        string     `json:"option,omitempty"`
	CustomFee     *flexFloat `json:"customFee,omitempty"`
	Multiplier    *flexFloat `json:"multiplier,omitempty"`
	MaxCapFee     *flexFloat `json:"maxCapFee,omitempty"`
	MaxCapFeeUnit string     `json:"maxCapFeeUnit,omitempty"`
}

func (r rawSettings) cap() Cap {
	c := Cap{Unit: parseCapUnit(r.MaxCapFeeUnit)}
	if r.MaxCapFee != nil {
		c.Amount = float64(*r.MaxCapFee)
	}
	return c
}

func parseCapUnit(s string) CapUnit {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lamports", "lamport":
		return CapUnitLamports
	default:
		return CapUnitSOL
	}
}

// ParseSettings decodes a persisted settings blob. It always returns usable
// settings: empty input yields Default, input that is not a JSON object yields
// Default together with the decode error so the caller can log it.
//
// Fields are decoded one by one. A field holding the wrong type is dropped and
// reported with ErrInvalidField; the strategy itself is kept. A broken cap
// field drops the whole cap.
func ParseSettings(data []byte) (Settings, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Default{}, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Default{}, fmt.Errorf("malformed fee settings: %w", err)
	}

	d := fieldDecoder{fields: fields}
	raw := rawSettings{
		Option:        d.string("option"),
		CustomFee:     d.float("customFee"),
		Multiplier:    d.float("multiplier"),
		MaxCapFee:     d.float("maxCapFee"),
		MaxCapFeeUnit: d.string("maxCapFeeUnit"),
	}

	c := raw.cap()
	if d.failed("maxCapFee") || d.failed("maxCapFeeUnit") {
		c = Cap{Unit: CapUnitSOL}
	}

	var s Settings
	switch Option(raw.Option) {
	case OptionCustom:
		custom := Custom{Cap: c}
		if raw.CustomFee != nil {
			custom.Fee = float64(*raw.CustomFee)
		}
		s = custom
	case OptionMultiple:
		multiple := Multiple{Multiplier: 1, Cap: c}
		if raw.Multiplier != nil && *raw.Multiplier > 0 {
			multiple.Multiplier = float64(*raw.Multiplier)
		}
		s = multiple
	case OptionDynamic:
		s = Dynamic{Cap: c}
	default:
		s = Default{Cap: c}
	}
	return s, d.err()
}

// fieldDecoder decodes single fields of a settings object and remembers
// which of them were rejected.
type fieldDecoder struct {
	fields map[string]json.RawMessage
	bad    []string
	errs   []error
}

func (d *fieldDecoder) reject(key string, err error) {
	d.bad = append(d.bad, key)
	d.errs = append(d.errs, fmt.Errorf("%w %q: %v", ErrInvalidField, key, err))
}

func (d *fieldDecoder) string(key string) string {
	v, ok := d.fields[key]
	if !ok {
		return ""
	}
	var out *string
	if err := json.Unmarshal(v, &out); err != nil {
		d.reject(key, err)
		return ""
	}
	if out == nil {
		return ""
	}
	return *out
}

func (d *fieldDecoder) float(key string) *flexFloat {
	v, ok := d.fields[key]
	if !ok {
		return nil
	}
	var out flexFloat
	if err := out.UnmarshalJSON(v); err != nil {
		d.reject(key, err)
		return nil
	}
	if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return nil
	}
	return &out
}

func (d *fieldDecoder) failed(key string) bool {
	for _, k := range d.bad {
		if k == key {
			return true
		}
	}
	return false
}

func (d *fieldDecoder) err() error {
	return errors.Join(d.errs...)
}

// MarshalSettings encodes settings in the persisted shape.
func MarshalSettings(s Settings) ([]byte, error) {
	var raw rawSettings
	c := s.MaxCap()
	if c.IsSet() {
		amount := flexFloat(c.Amount)
		raw.MaxCapFee = &amount
		raw.MaxCapFeeUnit = string(c.Unit)
		if raw.MaxCapFeeUnit == "" {
			raw.MaxCapFeeUnit = string(CapUnitSOL)
		}
	}

	switch v := s.(type) {
	case Custom:
		fee := flexFloat(v.Fee)
		raw.Option = string(OptionCustom)
		raw.CustomFee = &fee
	case Multiple:
		m := flexFloat(v.Multiplier)
		raw.Option = string(OptionMultiple)
		raw.Multiplier = &m
	case Dynamic:
		raw.Option = string(OptionDynamic)
	}
	return json.MarshalIndent(raw, "", "  ")
}
