package transaction

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/crypto/sha3"
)

const serializePrefix = "icx_sendTransaction"

// RawTransaction is the canonical JSON object of a transaction. Values are strings,
// nested map[string]any / []any (params) or nil.
type RawTransaction map[string]any

var serializeEscaper = strings.NewReplacer(
	`\`, `\\`,
	`.`, `\.`,
	`{`, `\{`,
	`}`, `\}`,
	`[`, `\[`,
	`]`, `\]`,
)

// ToRawTransaction converts transaction into its canonical raw form.
// Only fields present on the transaction variant are emitted.
func ToRawTransaction(tx *Transaction) (RawTransaction, error) {
	if tx == nil {
		return nil, fmt.Errorf("%w: nil transaction", ErrSerializationFailed)
	}

	if err := tx.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}

	raw := RawTransaction{
		"to":   tx.to,
		"from": tx.from,
	}

	for _, field := range tx.numericFields() {
		if field.value != "" {
			raw[field.name] = field.value
		}
	}

	switch tx.dataType {
	case DataTypeCall:
		data := map[string]any{
			"method": tx.call.method,
		}

		if err := addParams(data, tx.call.params); err != nil {
			return nil, err
		}

		raw["dataType"] = string(DataTypeCall)
		raw["data"] = data
	case DataTypeDeploy:
		data := map[string]any{
			"contentType": tx.deploy.contentType,
			"content":     tx.deploy.content,
		}

		if err := addParams(data, tx.deploy.params); err != nil {
			return nil, err
		}

		raw["dataType"] = string(DataTypeDeploy)
		raw["data"] = data
	case DataTypeMessage:
		raw["dataType"] = string(DataTypeMessage)
		raw["data"] = *tx.message
	}

	return raw, nil
}

// SerializeTransaction returns bytes which are hashed for signing:
// "icx_sendTransaction." followed by key-sorted "key.value" pairs joined with dots.
// Nested objects are wrapped in {}, arrays in [], null is \0 and the characters \ . { } [ ] are escaped.
func SerializeTransaction(raw RawTransaction) ([]byte, error) {
	var sb strings.Builder

	sb.WriteString(serializePrefix)

	if len(raw) > 0 {
		sb.WriteByte('.')

		if err := serializeMapBody(&sb, raw); err != nil {
			return nil, err
		}
	}

	return []byte(sb.String()), nil
}

// Digest returns SHA3-256 of the serialized raw transaction
func Digest(raw RawTransaction) ([]byte, error) {
	bytes, err := SerializeTransaction(raw)
	if err != nil {
		return nil, err
	}

	digest := sha3.Sum256(bytes)

	return digest[:], nil
}

// TxHash returns 0x-prefixed hex transaction hash of the raw transaction
func TxHash(raw RawTransaction) (string, error) {
	digest, err := Digest(raw)
	if err != nil {
		return "", err
	}

	return "0x" + hex.EncodeToString(digest), nil
}

func addParams(data map[string]any, params Params) error {
	if len(params) == 0 {
		return nil
	}

	canonical, err := params.Canonical()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}

	data["params"] = canonical

	return nil
}

func serializeMapBody(sb *strings.Builder, m map[string]any) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('.')
		}

		sb.WriteString(k)
		sb.WriteByte('.')

		if err := serializeValue(sb, m[k]); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
	}

	return nil
}

func serializeValue(sb *strings.Builder, value any) error {
	switch v := value.(type) {
	case nil:
		sb.WriteString(`\0`)
	case string:
		sb.WriteString(serializeEscaper.Replace(v))
	case map[string]any:
		sb.WriteByte('{')

		if err := serializeMapBody(sb, v); err != nil {
			return err
		}

		sb.WriteByte('}')
	case RawTransaction:
		return serializeValue(sb, map[string]any(v))
	case []any:
		sb.WriteByte('[')

		for i, item := range v {
			if i > 0 {
				sb.WriteByte('.')
			}

			if err := serializeValue(sb, item); err != nil {
				return err
			}
		}

		sb.WriteByte(']')
	default:
		return fmt.Errorf("%w: unsupported value type %T", ErrSerializationFailed, value)
	}

	return nil
}

func cloneRawValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		result := make(map[string]any, len(v))
		for k, item := range v {
			result[k] = cloneRawValue(item)
		}

		return result
	case []any:
		result := make([]any, len(v))
		for i, item := range v {
			result[i] = cloneRawValue(item)
		}

		return result
	default:
		return v
	}
}

func (raw RawTransaction) clone() RawTransaction {
	result := make(RawTransaction, len(raw))
	for k, v := range raw {
		result[k] = cloneRawValue(v)
	}

	return result
}
