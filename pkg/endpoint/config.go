package endpoint

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/agentstation/mavroute/pkg/errors"
)

// Config is the loosely typed form of an endpoint as it appears in
// configuration files and API payloads. Argument may hold any integer type,
// an integral float or a decimal string; FromConfig normalizes it.
type Config struct {
	Name           string `json:"name" yaml:"name" mapstructure:"name"`
	Owner          string `json:"owner" yaml:"owner" mapstructure:"owner"`
	ConnectionType string `json:"connection_type" yaml:"connection_type" mapstructure:"connection_type"`
	Place          string `json:"place" yaml:"place" mapstructure:"place"`
	Argument       any    `json:"argument,omitempty" yaml:"argument,omitempty" mapstructure:"argument"`
	Persistent     bool   `json:"persistent,omitempty" yaml:"persistent,omitempty" mapstructure:"persistent"`
	Protected      bool   `json:"protected,omitempty" yaml:"protected,omitempty" mapstructure:"protected"`
}

// FromConfig validates c and returns the endpoint it describes.
// An argument that is not an integer is reported with the rejection reason of
// the connection kind (ErrInvalidPort or ErrInvalidBaudRate).
func FromConfig(c Config) (Endpoint, error) {
	arg, _ := Argument(c.Argument)
	return build(Params{
		Name:       c.Name,
		Owner:      c.Owner,
		Kind:       c.ConnectionType,
		Place:      c.Place,
		Argument:   arg,
		Persistent: c.Persistent,
		Protected:  c.Protected,
	}, c.Argument)
}

// Config returns the loosely typed form of e.
func (e Endpoint) Config() Config {
	return Config{
		Name:           e.name,
		Owner:          e.owner,
		ConnectionType: string(e.kind),
		Place:          e.place,
		Argument:       e.argument,
		Persistent:     e.persistent,
		Protected:      e.protected,
	}
}

// Argument converts a decoded argument value to an int.
// It returns nil and false when v is absent or not an integer.
func Argument(v any) (*int, bool) {
	switch n := v.(type) {
	case nil:
		return nil, false
	case int:
		return Int(n), true
	case int8:
		return Int(int(n)), true
	case int16:
		return Int(int(n)), true
	case int32:
		return Int(int(n)), true
	case int64:
		return fromInt64(n)
	case uint:
		return fromUint64(uint64(n))
	case uint8:
		return Int(int(n)), true
	case uint16:
		return Int(int(n)), true
	case uint32:
		return fromUint64(uint64(n))
	case uint64:
		return fromUint64(n)
	case float32:
		return fromFloat64(float64(n))
	case float64:
		return fromFloat64(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return fromInt64(i)
		}
		if f, err := n.Float64(); err == nil {
			return fromFloat64(f)
		}
		return nil, false
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return nil, false
		}
		return fromInt64(i)
	default:
		return nil, false
	}
}

func fromInt64(n int64) (*int, bool) {
	if n < math.MinInt || n > math.MaxInt {
		return nil, false
	}
	return Int(int(n)), true
}

func fromUint64(n uint64) (*int, bool) {
	if n > math.MaxInt {
		return nil, false
	}
	return Int(int(n)), true
}

func fromFloat64(f float64) (*int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return nil, false
	}
	return fromInt64(int64(f))
}

// document fixes field order for encoded output.
type document struct {
	Name           string `json:"name" yaml:"name"`
	Owner          string `json:"owner" yaml:"owner"`
	ConnectionType string `json:"connection_type" yaml:"connection_type"`
	Place          string `json:"place" yaml:"place"`
	Argument       int    `json:"argument" yaml:"argument"`
	Persistent     bool   `json:"persistent" yaml:"persistent"`
	Protected      bool   `json:"protected" yaml:"protected"`
}

func (e Endpoint) document() document {
	return document{
		Name:           e.name,
		Owner:          e.owner,
		ConnectionType: string(e.kind),
		Place:          e.place,
		Argument:       e.argument,
		Persistent:     e.persistent,
		Protected:      e.protected,
	}
}

// MarshalJSON implements json.Marshaler.
func (e Endpoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.document())
}

// UnmarshalJSON implements json.Unmarshaler. The payload goes through
// FromConfig; e is left untouched when validation fails.
func (e *Endpoint) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var c Config
	if err := dec.Decode(&c); err != nil {
		return errors.WrapParse("json", "", err)
	}
	ep, err := FromConfig(c)
	if err != nil {
		return err
	}
	*e = ep
	return nil
}

// MarshalYAML implements yaml.InterfaceMarshaler.
func (e Endpoint) MarshalYAML() (any, error) {
	return e.document(), nil
}

// UnmarshalYAML implements yaml.InterfaceUnmarshaler. The node goes through
// FromConfig; e is left untouched when validation fails.
func (e *Endpoint) UnmarshalYAML(unmarshal func(any) error) error {
	var c Config
	if err := unmarshal(&c); err != nil {
		return errors.WrapParse("yaml", "", err)
	}
	ep, err := FromConfig(c)
	if err != nil {
		return err
	}
	*e = ep
	return nil
}
