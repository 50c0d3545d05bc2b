package transaction

import (
	"fmt"
	"time"

	"github.com/Ethernal-Tech/icon-infrastructure/converter"
	"github.com/Ethernal-Tech/icon-infrastructure/validator"
)

// DefaultVersion is the transaction version used by the current ICON network
const DefaultVersion = 3

// CurrentTimestamp returns current time in microseconds, the unit of the transaction timestamp
func CurrentTimestamp() int64 {
	return time.Now().UnixMicro()
}

// stagedFields holds unvalidated values set on a builder
type stagedFields struct {
	to        string
	from      string
	value     any
	stepLimit any
	nid       any
	nonce     any
	version   any
	timestamp any
}

// baseBuilder holds setters shared by all transaction builders. Setters only stage values,
// validation happens in Build. B is the concrete builder returned by setters.
type baseBuilder[B any] struct {
	self      *B
	fields    stagedFields
	validator validator.AddressValidator
	built     bool
}

func (b *baseBuilder[B]) init(self *B) {
	b.self = self
	b.validator = validator.Default
}

// To sets EOA or SCORE address of the receiver
func (b *baseBuilder[B]) To(to string) *B {
	b.fields.to = to

	return b.self
}

// From sets EOA address of the sender
func (b *baseBuilder[B]) From(from string) *B {
	b.fields.from = from

	return b.self
}

// Value sets sending amount in loop. Accepts anything converter.ToBigNumber accepts, amount.Amount included.
func (b *baseBuilder[B]) Value(value any) *B {
	b.fields.value = value

	return b.self
}

func (b *baseBuilder[B]) StepLimit(stepLimit any) *B {
	b.fields.stepLimit = stepLimit

	return b.self
}

// Nid sets network id
func (b *baseBuilder[B]) Nid(nid any) *B {
	b.fields.nid = nid

	return b.self
}

func (b *baseBuilder[B]) Nonce(nonce any) *B {
	b.fields.nonce = nonce

	return b.self
}

func (b *baseBuilder[B]) Version(version any) *B {
	b.fields.version = version

	return b.self
}

// Timestamp sets transaction timestamp in microseconds
func (b *baseBuilder[B]) Timestamp(timestamp any) *B {
	b.fields.timestamp = timestamp

	return b.self
}

// AddressValidator replaces the validator used by Build
func (b *baseBuilder[B]) AddressValidator(v validator.AddressValidator) *B {
	if v != nil {
		b.validator = v
	}

	return b.self
}

func (b *baseBuilder[B]) buildBase() (baseFields, error) {
	if b.built {
		return baseFields{}, ErrBuilderUsed
	}

	if b.fields.to == "" {
		return baseFields{}, fmt.Errorf("%w: to", ErrMissingRequiredField)
	}

	if b.fields.from == "" {
		return baseFields{}, fmt.Errorf("%w: from", ErrMissingRequiredField)
	}

	if !b.validator.IsAddress(b.fields.to) {
		return baseFields{}, fmt.Errorf("%w: to: %s", ErrInvalidAddress, b.fields.to)
	}

	if !b.validator.IsAddress(b.fields.from) {
		return baseFields{}, fmt.Errorf("%w: from: %s", ErrInvalidAddress, b.fields.from)
	}

	base := baseFields{
		to:   b.fields.to,
		from: b.fields.from,
	}

	for _, x := range []struct {
		name   string
		staged any
		dest   *string
	}{
		{"value", b.fields.value, &base.value},
		{"stepLimit", b.fields.stepLimit, &base.stepLimit},
		{"nid", b.fields.nid, &base.nid},
		{"nonce", b.fields.nonce, &base.nonce},
		{"version", b.fields.version, &base.version},
		{"timestamp", b.fields.timestamp, &base.timestamp},
	} {
		if x.staged == nil {
			continue
		}

		hexValue, err := converter.ToHexNumber(x.staged)
		if err != nil {
			return baseFields{}, fmt.Errorf("%s: %w", x.name, err)
		}

		*x.dest = hexValue
	}

	return base, nil
}

func (b *baseBuilder[B]) markBuilt(tx *Transaction, err error) (*Transaction, error) {
	if err != nil {
		return nil, err
	}

	b.built = true

	return tx, nil
}

// IcxTransactionBuilder builds plain ICX transfer transactions
type IcxTransactionBuilder struct {
	baseBuilder[IcxTransactionBuilder]
}

func NewIcxTransactionBuilder() *IcxTransactionBuilder {
	b := &IcxTransactionBuilder{}
	b.init(b)

	return b
}

func (b *IcxTransactionBuilder) Build() (*Transaction, error) {
	base, err := b.buildBase()
	if err != nil {
		return nil, err
	}

	return b.markBuilt(newTransaction(base, DataTypeNone, nil, nil, nil))
}

// CallTransactionBuilder builds transactions invoking a SCORE method
type CallTransactionBuilder struct {
	baseBuilder[CallTransactionBuilder]
	method string
	params Params
}

func NewCallTransactionBuilder() *CallTransactionBuilder {
	b := &CallTransactionBuilder{}
	b.init(b)

	return b
}

func (b *CallTransactionBuilder) Method(method string) *CallTransactionBuilder {
	b.method = method

	return b
}

func (b *CallTransactionBuilder) Params(params Params) *CallTransactionBuilder {
	b.params = params.clone()

	return b
}

func (b *CallTransactionBuilder) Build() (*Transaction, error) {
	base, err := b.buildBase()
	if err != nil {
		return nil, err
	}

	if b.method == "" {
		return nil, fmt.Errorf("%w: method", ErrMissingRequiredField)
	}

	return b.markBuilt(newTransaction(base, DataTypeCall, &callData{
		method: b.method,
		params: b.params.clone(),
	}, nil, nil))
}

// DeployTransactionBuilder builds SCORE install and update transactions
type DeployTransactionBuilder struct {
	baseBuilder[DeployTransactionBuilder]
	contentType string
	content     string
	params      Params
}

func NewDeployTransactionBuilder() *DeployTransactionBuilder {
	b := &DeployTransactionBuilder{}
	b.init(b)

	return b
}

// ContentType sets MIME type of the content, for example application/zip or application/java
func (b *DeployTransactionBuilder) ContentType(contentType string) *DeployTransactionBuilder {
	b.contentType = contentType

	return b
}

// Content sets 0x-prefixed hex encoded SCORE package
func (b *DeployTransactionBuilder) Content(content string) *DeployTransactionBuilder {
	b.content = content

	return b
}

func (b *DeployTransactionBuilder) Params(params Params) *DeployTransactionBuilder {
	b.params = params.clone()

	return b
}

func (b *DeployTransactionBuilder) Build() (*Transaction, error) {
	base, err := b.buildBase()
	if err != nil {
		return nil, err
	}

	if b.contentType == "" {
		return nil, fmt.Errorf("%w: contentType", ErrMissingRequiredField)
	}

	if b.content == "" {
		return nil, fmt.Errorf("%w: content", ErrMissingRequiredField)
	}

	if !converter.IsHex(b.content) || len(b.content)%2 != 0 {
		return nil, fmt.Errorf("%w: content must be 0x-prefixed hex bytes", ErrInvalidContent)
	}

	content, _ := converter.ToHex(b.content)

	return b.markBuilt(newTransaction(base, DataTypeDeploy, nil, &deployData{
		contentType: b.contentType,
		content:     content,
		params:      b.params.clone(),
	}, nil))
}

// MessageTransactionBuilder builds transactions carrying an arbitrary message
type MessageTransactionBuilder struct {
	baseBuilder[MessageTransactionBuilder]
	data    string
	dataSet bool
}

func NewMessageTransactionBuilder() *MessageTransactionBuilder {
	b := &MessageTransactionBuilder{}
	b.init(b)

	return b
}

// Data sets message payload. It is sent as is, use converter.FromUtf8 for hex encoded text.
func (b *MessageTransactionBuilder) Data(data string) *MessageTransactionBuilder {
	b.data = data
	b.dataSet = true

	return b
}

func (b *MessageTransactionBuilder) Build() (*Transaction, error) {
	base, err := b.buildBase()
	if err != nil {
		return nil, err
	}

	if !b.dataSet {
		return nil, fmt.Errorf("%w: data", ErrMissingRequiredField)
	}

	data := b.data

	return b.markBuilt(newTransaction(base, DataTypeMessage, nil, nil, &data))
}
