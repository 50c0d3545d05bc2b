package transaction

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/Ethernal-Tech/icon-infrastructure/converter"
	"github.com/shopspring/decimal"
)

type paramKind uint8

const (
	paramNull paramKind = iota
	paramString
	paramInt
	paramBool
	paramBytes
	paramDict
	paramList
)

// Param is a single SCORE parameter value: string, integer, bool, bytes, dict, list or null.
// The zero value is null.
type Param struct {
	kind    paramKind
	str     string
	num     *big.Int
	boolean bool
	bytes   []byte
	dict    Params
	list    []Param
}

// Params are named SCORE parameters. Keys are ordered lexicographically when serialized.
type Params map[string]Param

func NullParam() Param {
	return Param{}
}

func StringParam(s string) Param {
	return Param{kind: paramString, str: s}
}

func IntParam(v int64) Param {
	return Param{kind: paramInt, num: big.NewInt(v)}
}

func BigIntParam(v *big.Int) Param {
	if v == nil {
		return NullParam()
	}

	return Param{kind: paramInt, num: new(big.Int).Set(v)}
}

func BoolParam(b bool) Param {
	return Param{kind: paramBool, boolean: b}
}

func BytesParam(b []byte) Param {
	return Param{kind: paramBytes, bytes: append([]byte(nil), b...)}
}

func DictParam(p Params) Param {
	return Param{kind: paramDict, dict: p.clone()}
}

func ListParam(items ...Param) Param {
	return Param{kind: paramList, list: append([]Param(nil), items...)}
}

// ParamFromAny converts loosely typed (for example JSON decoded) values into Param.
// Numbers must be integers; floating point values are rejected.
func ParamFromAny(value any) (Param, error) {
	switch v := value.(type) {
	case nil:
		return NullParam(), nil
	case Param:
		return v, nil
	case Params:
		return DictParam(v), nil
	case []Param:
		return ListParam(v...), nil
	case string:
		return StringParam(v), nil
	case bool:
		return BoolParam(v), nil
	case []byte:
		return BytesParam(v), nil
	case json.Number:
		n, err := converter.ToBigInt(v.String())
		if err != nil {
			return Param{}, err
		}

		return BigIntParam(n), nil
	case map[string]any:
		params, err := ParamsFromMap(v)
		if err != nil {
			return Param{}, err
		}

		return Param{kind: paramDict, dict: params}, nil
	case []any:
		items := make([]Param, len(v))

		for i, item := range v {
			p, err := ParamFromAny(item)
			if err != nil {
				return Param{}, fmt.Errorf("item %d: %w", i, err)
			}

			items[i] = p
		}

		return Param{kind: paramList, list: items}, nil
	case []string:
		items := make([]Param, len(v))
		for i, item := range v {
			items[i] = StringParam(item)
		}

		return Param{kind: paramList, list: items}, nil
	case decimal.Decimal, *big.Int, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64,
		converter.LoopValue:
		n, err := converter.ToBigInt(v)
		if err != nil {
			return Param{}, err
		}

		return BigIntParam(n), nil
	}

	return Param{}, fmt.Errorf("unsupported param type %T", value)
}

// ParamsFromMap converts map of loosely typed values into Params
func ParamsFromMap(m map[string]any) (Params, error) {
	if m == nil {
		return nil, nil
	}

	result := make(Params, len(m))

	for k, v := range m {
		p, err := ParamFromAny(v)
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", k, err)
		}

		result[k] = p
	}

	return result, nil
}

// Canonical returns the wire representation: strings as is, integers as (signed) hex,
// bools as 0x1/0x0, bytes as 0x-prefixed hex, dicts as maps and lists as slices.
func (p Param) Canonical() (any, error) {
	switch p.kind {
	case paramNull:
		return nil, nil
	case paramString:
		return p.str, nil
	case paramInt:
		return converter.ToSignedHexNumber(p.num)
	case paramBool:
		if p.boolean {
			return "0x1", nil
		}

		return "0x0", nil
	case paramBytes:
		return "0x" + hex.EncodeToString(p.bytes), nil
	case paramDict:
		return p.dict.Canonical()
	case paramList:
		result := make([]any, len(p.list))

		for i, item := range p.list {
			value, err := item.Canonical()
			if err != nil {
				return nil, err
			}

			result[i] = value
		}

		return result, nil
	}

	return nil, fmt.Errorf("unknown param kind %d", p.kind)
}

func (p Params) Canonical() (map[string]any, error) {
	result := make(map[string]any, len(p))

	for k, v := range p {
		value, err := v.Canonical()
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", k, err)
		}

		result[k] = value
	}

	return result, nil
}

func (p Params) clone() Params {
	if p == nil {
		return nil
	}

	result := make(Params, len(p))
	for k, v := range p {
		result[k] = v
	}

	return result
}
