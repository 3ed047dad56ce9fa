package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

// number is a float64 that also travels as the strings "NaN", "+Inf" and
// "-Inf", which plain JSON numbers cannot express.
type number float64

func (n number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	switch {
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	case math.IsInf(f, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Inf"`), nil
	}
	return []byte(strconv.FormatFloat(f, 'g', -1, 64)), nil
}

func (n *number) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return errors.New("value must not be null")
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch s {
		case "NaN", "nan":
			*n = number(math.NaN())
		case "Inf", "+Inf", "inf", "+inf", "Infinity", "+Infinity":
			*n = number(math.Inf(1))
		case "-Inf", "-inf", "-Infinity":
			*n = number(math.Inf(-1))
		default:
			return fmt.Errorf("%q is not a number", s)
		}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = number(f)
	return nil
}

// decodeValues reads a flat JSON object of named numbers.
func decodeValues(r io.Reader) (map[string]float64, error) {
	var raw map[string]number
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("body must be a JSON object")
	}
	if dec.More() {
		return nil, errors.New("body must contain a single JSON object")
	}
	out := make(map[string]float64, len(raw))
	for k, v := range raw {
		out[k] = float64(v)
	}
	return out, nil
}
