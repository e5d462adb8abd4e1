package ecdlp

import (
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/mahdiidarabi/ecdlp-rollback/pkg/curve"
)

// Target is one public key to attack, as read from a target file.
type Target struct {
	Label string
	Point curve.Point
	Bound *Bound // optional, used by the kangaroo
}

// TargetParser defines the interface for reading targets from a source.
type TargetParser interface {
	// ParseTargets parses targets from a source and returns them.
	ParseTargets(source string) ([]*Target, error)
}

// JSONParser parses targets from JSON files.
type JSONParser struct {
	Curve *curve.Curve

	LabelField     string // default: "label"
	XField         string // default: "x"
	YField         string // default: "y"
	PublicKeyField string // default: "public_key", used when x/y are absent
	LowField       string // default: "low"
	HighField      string // default: "high"
}

// ParseTargets parses targets from a JSON file.
//
// Expected format:
//
//	[
//	  {"label": "a", "x": "0", "y": "6"},
//	  {"public_key": "02...", "low": 1000, "high": 2000}
//	]
func (p *JSONParser) ParseTargets(jsonFile string) ([]*Target, error) {
	file, err := os.Open(jsonFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.UseNumber()

	var items []map[string]interface{}
	if err := decoder.Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	f := targetFields{
		label:  orDefault(p.LabelField, "label"),
		x:      orDefault(p.XField, "x"),
		y:      orDefault(p.YField, "y"),
		pubKey: orDefault(p.PublicKeyField, "public_key"),
		low:    orDefault(p.LowField, "low"),
		high:   orDefault(p.HighField, "high"),
	}

	targets := make([]*Target, 0, len(items))
	for i, item := range items {
		get := func(name string) (interface{}, bool) {
			v, ok := item[name]
			return v, ok && v != nil
		}
		t, err := f.build(p.Curve, get)
		if err != nil {
			return nil, fmt.Errorf("target %d: %w", i, err)
		}
		if t.Label == "" {
			t.Label = fmt.Sprintf("target-%d", i)
		}
		targets = append(targets, t)
	}
	return targets, nil
}

// CSVParser parses targets from CSV files with a header row.
type CSVParser struct {
	Curve *curve.Curve

	LabelCol     string // default: "label"
	XCol         string // default: "x"
	YCol         string // default: "y"
	PublicKeyCol string // default: "public_key"
	LowCol       string // default: "low"
	HighCol      string // default: "high"
}

// ParseTargets parses targets from a CSV file. Empty cells count as absent.
func (p *CSVParser) ParseTargets(csvFile string) ([]*Target, error) {
	file, err := os.Open(csvFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, col := range header {
		columns[strings.TrimSpace(col)] = i
	}

	f := targetFields{
		label:  orDefault(p.LabelCol, "label"),
		x:      orDefault(p.XCol, "x"),
		y:      orDefault(p.YCol, "y"),
		pubKey: orDefault(p.PublicKeyCol, "public_key"),
		low:    orDefault(p.LowCol, "low"),
		high:   orDefault(p.HighCol, "high"),
	}
	_, hasX := columns[f.x]
	_, hasPub := columns[f.pubKey]
	if !hasX && !hasPub {
		return nil, fmt.Errorf("missing required columns: %s/%s or %s", f.x, f.y, f.pubKey)
	}

	targets := make([]*Target, 0)
	for row := 1; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		get := func(name string) (interface{}, bool) {
			idx, ok := columns[name]
			if !ok || idx >= len(record) || strings.TrimSpace(record[idx]) == "" {
				return nil, false
			}
			return strings.TrimSpace(record[idx]), true
		}
		t, err := f.build(p.Curve, get)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if t.Label == "" {
			t.Label = fmt.Sprintf("row-%d", row)
		}
		targets = append(targets, t)
	}
	return targets, nil
}

type targetFields struct {
	label, x, y, pubKey, low, high string
}

func (f targetFields) build(c *curve.Curve, get func(string) (interface{}, bool)) (*Target, error) {
	t := &Target{}
	if v, ok := get(f.label); ok {
		t.Label = fmt.Sprint(v)
	}

	xv, hasX := get(f.x)
	yv, hasY := get(f.y)
	switch {
	case hasX && hasY:
		x, err := parseBigInt(xv)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", f.x, err)
		}
		y, err := parseBigInt(yv)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", f.y, err)
		}
		t.Point = curve.NewPoint(x, y)
	default:
		pv, ok := get(f.pubKey)
		if !ok {
			return nil, fmt.Errorf("missing %s/%s or %s field", f.x, f.y, f.pubKey)
		}
		s, isString := pv.(string)
		if !isString {
			return nil, fmt.Errorf("%s must be a string", f.pubKey)
		}
		P, err := ParsePublicKey(c, s)
		if err != nil {
			return nil, err
		}
		t.Point = P
	}

	lv, hasLow := get(f.low)
	hv, hasHigh := get(f.high)
	if hasLow != hasHigh {
		return nil, fmt.Errorf("%s and %s must be given together", f.low, f.high)
	}
	if hasLow {
		low, err := parseBigInt(lv)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", f.low, err)
		}
		high, err := parseBigInt(hv)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", f.high, err)
		}
		t.Bound = &Bound{Low: low, High: high}
	}
	return t, nil
}

// ParsePublicKey reads a point as an "x,y" pair (decimal or 0x-prefixed hex)
// or as a SEC1 hex encoding, compressed (02/03) or uncompressed (04). SEC1
// keys on secp256k1 are decoded and validated by the decred implementation.
func ParsePublicKey(c *curve.Curve, s string) (curve.Point, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return curve.Point{}, fmt.Errorf("%w: empty public key", ErrInvalidInput)
	}
	if strings.EqualFold(s, "O") || strings.EqualFold(s, "inf") {
		return curve.Infinity(), nil
	}

	if x, y, ok := strings.Cut(s, ","); ok {
		xv, err := parseBigInt(strings.TrimSpace(strings.Trim(x, "( ")))
		if err != nil {
			return curve.Point{}, fmt.Errorf("%w: x: %v", ErrInvalidInput, err)
		}
		yv, err := parseBigInt(strings.TrimSpace(strings.Trim(y, ") ")))
		if err != nil {
			return curve.Point{}, fmt.Errorf("%w: y: %v", ErrInvalidInput, err)
		}
		return curve.NewPoint(xv, yv), nil
	}

	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"))
	if err != nil {
		return curve.Point{}, fmt.Errorf("%w: public key is neither x,y nor hex: %v", ErrInvalidInput, err)
	}
	if c == nil {
		return curve.Point{}, fmt.Errorf("%w: a curve is required to decode SEC1 keys", ErrInvalidInput)
	}

	if c.P().Cmp(secp256k1.Params().P) == 0 && c.N().Cmp(secp256k1.Params().N) == 0 {
		pub, err := secp256k1.ParsePubKey(raw)
		if err != nil {
			return curve.Point{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return curve.NewPoint(pub.X(), pub.Y()), nil
	}
	return decodeSEC1(c, raw)
}

// decodeSEC1 handles curves other than secp256k1.
func decodeSEC1(c *curve.Curve, raw []byte) (curve.Point, error) {
	p := c.P()
	size := (p.BitLen() + 7) / 8
	if len(raw) == 0 {
		return curve.Point{}, fmt.Errorf("%w: empty SEC1 encoding", ErrInvalidInput)
	}

	switch raw[0] {
	case 0x04:
		if len(raw) != 1+2*size {
			return curve.Point{}, fmt.Errorf("%w: uncompressed key must be %d bytes", ErrInvalidInput, 1+2*size)
		}
		P := curve.NewPoint(new(big.Int).SetBytes(raw[1:1+size]), new(big.Int).SetBytes(raw[1+size:]))
		if !c.IsOnCurve(P) {
			return curve.Point{}, fmt.Errorf("%w: point is not on %s", ErrInvalidInput, c.Name())
		}
		return P, nil

	case 0x02, 0x03:
		if len(raw) != 1+size {
			return curve.Point{}, fmt.Errorf("%w: compressed key must be %d bytes", ErrInvalidInput, 1+size)
		}
		x := new(big.Int).SetBytes(raw[1:])
		if x.Cmp(p) >= 0 {
			return curve.Point{}, fmt.Errorf("%w: x coordinate out of range", ErrInvalidInput)
		}
		rhs := new(big.Int).Exp(x, big.NewInt(3), p)
		rhs.Add(rhs, new(big.Int).Mul(c.A(), x))
		rhs.Add(rhs, c.B())
		rhs.Mod(rhs, p)
		y := new(big.Int).ModSqrt(rhs, p)
		if y == nil {
			return curve.Point{}, fmt.Errorf("%w: x coordinate is not on %s", ErrInvalidInput, c.Name())
		}
		if y.Bit(0) != uint(raw[0]&1) {
			y.Sub(p, y)
			y.Mod(y, p)
		}
		return curve.NewPoint(x, y), nil
	}
	return curve.Point{}, fmt.Errorf("%w: unknown SEC1 prefix 0x%02x", ErrInvalidInput, raw[0])
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// parseBigInt parses a big integer from a 0x-prefixed or bare hex string, a
// decimal string, or a JSON number.
func parseBigInt(val interface{}) (*big.Int, error) {
	switch v := val.(type) {
	case string:
		s := strings.TrimSpace(v)
		z := new(big.Int)
		switch {
		case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
			if _, ok := z.SetString(s[2:], 16); !ok {
				return nil, fmt.Errorf("invalid hex number: %s", v)
			}
		case strings.ContainsAny(s, "abcdefABCDEF"):
			if _, ok := z.SetString(s, 16); !ok {
				return nil, fmt.Errorf("invalid number format: %s", v)
			}
		default:
			if _, ok := z.SetString(s, 10); !ok {
				return nil, fmt.Errorf("invalid number format: %s", v)
			}
		}
		return z, nil

	case json.Number:
		z := new(big.Int)
		if _, ok := z.SetString(string(v), 10); !ok {
			return nil, fmt.Errorf("invalid number format: %s", v)
		}
		return z, nil

	case float64:
		z := new(big.Int)
		if _, ok := z.SetString(fmt.Sprintf("%.0f", v), 10); !ok {
			return nil, fmt.Errorf("invalid number format: %v", v)
		}
		return z, nil

	case int64:
		return big.NewInt(v), nil

	case int:
		return big.NewInt(int64(v)), nil

	default:
		return nil, fmt.Errorf("unsupported type: %T", val)
	}
}
