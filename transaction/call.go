package transaction

import (
	"fmt"

	"github.com/Ethernal-Tech/icon-infrastructure/validator"
)

// Call is a read-only SCORE method invocation (icx_call)
type Call struct {
	to     string
	from   string
	method string
	params Params
}

func (c *Call) To() string     { return c.to }
func (c *Call) From() string   { return c.from }
func (c *Call) Method() string { return c.method }
func (c *Call) Params() Params { return c.params.clone() }

// ToRPCParams returns icx_call request params
func (c *Call) ToRPCParams() (map[string]any, error) {
	data := map[string]any{
		"method": c.method,
	}

	if len(c.params) > 0 {
		params, err := c.params.Canonical()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		}

		data["params"] = params
	}

	result := map[string]any{
		"to":       c.to,
		"dataType": string(DataTypeCall),
		"data":     data,
	}

	if c.from != "" {
		result["from"] = c.from
	}

	return result, nil
}

// CallBuilder builds Call. from is optional for read-only calls.
type CallBuilder struct {
	to        string
	from      string
	method    string
	params    Params
	validator validator.AddressValidator
	built     bool
}

func NewCallBuilder() *CallBuilder {
	return &CallBuilder{
		validator: validator.Default,
	}
}

// To sets SCORE address
func (b *CallBuilder) To(to string) *CallBuilder {
	b.to = to

	return b
}

// From sets EOA address
func (b *CallBuilder) From(from string) *CallBuilder {
	b.from = from

	return b
}

func (b *CallBuilder) Method(method string) *CallBuilder {
	b.method = method

	return b
}

func (b *CallBuilder) Params(params Params) *CallBuilder {
	b.params = params.clone()

	return b
}

func (b *CallBuilder) Build() (*Call, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	if b.to == "" {
		return nil, fmt.Errorf("%w: to", ErrMissingRequiredField)
	}

	if !b.validator.IsScoreAddress(b.to) {
		return nil, fmt.Errorf("%w: to: %s", ErrInvalidAddress, b.to)
	}

	if b.from != "" && !b.validator.IsEoaAddress(b.from) {
		return nil, fmt.Errorf("%w: from: %s", ErrInvalidAddress, b.from)
	}

	if b.method == "" {
		return nil, fmt.Errorf("%w: method", ErrMissingRequiredField)
	}

	b.built = true

	return &Call{
		to:     b.to,
		from:   b.from,
		method: b.method,
		params: b.params.clone(),
	}, nil
}
