package transaction

import (
	"errors"
	"fmt"

	"github.com/Ethernal-Tech/icon-infrastructure/converter"
)

type DataType string

const (
	DataTypeNone    DataType = ""
	DataTypeCall    DataType = "call"
	DataTypeDeploy  DataType = "deploy"
	DataTypeMessage DataType = "message"
)

var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidAddress       = errors.New("invalid address")
	ErrInvalidContent       = errors.New("invalid content")
	ErrBuilderUsed          = errors.New("builder already used")
	ErrSerializationFailed  = errors.New("serialization failed")
	ErrSigningFailed        = errors.New("signing failed")
)

// baseFields are shared by all transaction variants. Numeric fields hold canonical hex, empty means absent.
type baseFields struct {
	to        string
	from      string
	value     string
	stepLimit string
	nid       string
	nonce     string
	version   string
	timestamp string
}

type callData struct {
	method string
	params Params
}

type deployData struct {
	contentType string
	content     string
	params      Params
}

// Transaction is an immutable ICON transaction produced by one of the builders.
// Exactly one of call, deploy and message is set, matching dataType (none for plain transfers).
type Transaction struct {
	baseFields
	dataType DataType
	call     *callData
	deploy   *deployData
	message  *string
}

func newTransaction(
	base baseFields, dataType DataType, call *callData, deploy *deployData, message *string,
) (*Transaction, error) {
	tx := &Transaction{
		baseFields: base,
		dataType:   dataType,
		call:       call,
		deploy:     deploy,
		message:    message,
	}

	if err := tx.validate(); err != nil {
		return nil, err
	}

	return tx, nil
}

func (tx *Transaction) To() string        { return tx.to }
func (tx *Transaction) From() string      { return tx.from }
func (tx *Transaction) Value() string     { return tx.value }
func (tx *Transaction) StepLimit() string { return tx.stepLimit }
func (tx *Transaction) Nid() string       { return tx.nid }
func (tx *Transaction) Nonce() string     { return tx.nonce }
func (tx *Transaction) Version() string   { return tx.version }
func (tx *Transaction) Timestamp() string { return tx.timestamp }
func (tx *Transaction) DataType() DataType {
	return tx.dataType
}

// Method returns SCORE method name of call transaction
func (tx *Transaction) Method() string {
	if tx.call == nil {
		return ""
	}

	return tx.call.method
}

// Params returns copy of call or deploy params
func (tx *Transaction) Params() Params {
	switch {
	case tx.call != nil:
		return tx.call.params.clone()
	case tx.deploy != nil:
		return tx.deploy.params.clone()
	default:
		return nil
	}
}

func (tx *Transaction) ContentType() string {
	if tx.deploy == nil {
		return ""
	}

	return tx.deploy.contentType
}

func (tx *Transaction) Content() string {
	if tx.deploy == nil {
		return ""
	}

	return tx.deploy.content
}

// Data returns payload of message transaction
func (tx *Transaction) Data() string {
	if tx.message == nil {
		return ""
	}

	return *tx.message
}

// validate checks structural consistency of the variant. Builders never produce inconsistent
// transactions, zero or partially initialized values do not pass.
func (tx *Transaction) validate() error {
	if tx.to == "" {
		return fmt.Errorf("%w: to", ErrMissingRequiredField)
	}

	if tx.from == "" {
		return fmt.Errorf("%w: from", ErrMissingRequiredField)
	}

	for _, field := range tx.numericFields() {
		if field.value != "" && !isCanonicalHexNumber(field.value) {
			return fmt.Errorf("%w: %s is not canonical hex: %s", converter.ErrInvalidNumericValue, field.name, field.value)
		}
	}

	switch tx.dataType {
	case DataTypeNone:
		if tx.call != nil || tx.deploy != nil || tx.message != nil {
			return fmt.Errorf("transfer transaction must not carry data")
		}
	case DataTypeCall:
		if tx.call == nil || tx.deploy != nil || tx.message != nil {
			return fmt.Errorf("call transaction must carry call data only")
		}

		if tx.call.method == "" {
			return fmt.Errorf("%w: method", ErrMissingRequiredField)
		}
	case DataTypeDeploy:
		if tx.deploy == nil || tx.call != nil || tx.message != nil {
			return fmt.Errorf("deploy transaction must carry deploy data only")
		}

		if tx.deploy.contentType == "" {
			return fmt.Errorf("%w: contentType", ErrMissingRequiredField)
		}

		if tx.deploy.content == "" {
			return fmt.Errorf("%w: content", ErrMissingRequiredField)
		}
	case DataTypeMessage:
		if tx.message == nil || tx.call != nil || tx.deploy != nil {
			return fmt.Errorf("message transaction must carry message data only")
		}
	default:
		return fmt.Errorf("unknown data type: %s", tx.dataType)
	}

	return nil
}

type namedField struct {
	name  string
	value string
}

// numericFields returns numeric base fields in wire order
func (b baseFields) numericFields() []namedField {
	return []namedField{
		{"value", b.value},
		{"stepLimit", b.stepLimit},
		{"nid", b.nid},
		{"nonce", b.nonce},
		{"version", b.version},
		{"timestamp", b.timestamp},
	}
}

func isCanonicalHexNumber(value string) bool {
	if !converter.IsHex(value) || value[1] != 'x' {
		return false
	}

	canonical, err := converter.ToHexNumber(value)

	return err == nil && canonical == value
}
