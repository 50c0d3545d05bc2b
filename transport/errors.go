package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var ErrInvalidResponse = errors.New("invalid json-rpc response")

// JSON-RPC error codes returned by ICON nodes
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeServerError    = -32000

	CodeSystemError    = -31000
	CodePoolOverflow   = -31001
	CodePending        = -31002
	CodeExecuting      = -31003
	CodeNotFound       = -31004
	CodeLackOfResource = -31005
	CodeTimeout        = -31006
	CodeSystemTimeout  = -31007

	// CodeScoreErrorBase is the base of SCORE reverted codes, -30000 - n
	CodeScoreErrorBase = -30000
)

// RPCError is the error object of a JSON-RPC response
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("json-rpc error %d: %s", e.Code, e.Message)
}

// IsRetryable reports whether the node may accept the same request later
func (e *RPCError) IsRetryable() bool {
	switch e.Code {
	case CodePoolOverflow, CodeLackOfResource, CodeSystemTimeout:
		return true
	default:
		return false
	}
}

// IsPending reports whether the transaction is known but its result is not available yet
func (e *RPCError) IsPending() bool {
	return e.Code == CodePending || e.Code == CodeExecuting
}

// IsScoreError reports whether the error came from SCORE execution (reverted call)
func (e *RPCError) IsScoreError() bool {
	return e.Code <= CodeScoreErrorBase && e.Code > CodeSystemError
}

// HTTPError is returned when the node answers with non 200 status code and no JSON-RPC error
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status code %d", e.StatusCode)
	}

	return fmt.Sprintf("status code %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPError) IsRetryable() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// AsRPCError returns JSON-RPC error from the chain of err
func AsRPCError(err error) (*RPCError, bool) {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr, true
	}

	return nil, false
}
