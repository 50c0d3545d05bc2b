package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/Ethernal-Tech/icon-infrastructure/converter"
	"github.com/Ethernal-Tech/icon-infrastructure/transport"
	"github.com/Ethernal-Tech/icon-infrastructure/txstore"
	"github.com/mitchellh/mapstructure"
)

// Block is the result of icx_getBlockByHeight, icx_getBlockByHash and icx_getLastBlock
type Block struct {
	Version            string                 `mapstructure:"version"`
	Height             int64                  `mapstructure:"height"`
	Timestamp          int64                  `mapstructure:"time_stamp"`
	BlockHash          string                 `mapstructure:"block_hash"`
	PrevBlockHash      string                 `mapstructure:"prev_block_hash"`
	MerkleTreeRootHash string                 `mapstructure:"merkle_tree_root_hash"`
	PeerID             string                 `mapstructure:"peer_id"`
	Signature          string                 `mapstructure:"signature"`
	Transactions       []ConfirmedTransaction `mapstructure:"confirmed_transaction_list"`
}

// ConfirmedTransaction is the result of icx_getTransactionByHash and an entry of the block transaction list
type ConfirmedTransaction struct {
	Version     string   `mapstructure:"version"`
	From        string   `mapstructure:"from"`
	To          string   `mapstructure:"to"`
	Value       *big.Int `mapstructure:"value"`
	StepLimit   *big.Int `mapstructure:"stepLimit"`
	Timestamp   int64    `mapstructure:"timestamp"`
	Nid         int64    `mapstructure:"nid"`
	Nonce       *big.Int `mapstructure:"nonce"`
	TxHash      string   `mapstructure:"txHash"`
	TxIndex     int64    `mapstructure:"txIndex"`
	BlockHeight int64    `mapstructure:"blockHeight"`
	BlockHash   string   `mapstructure:"blockHash"`
	Signature   string   `mapstructure:"signature"`
	DataType    string   `mapstructure:"dataType"`
	Data        any      `mapstructure:"data"`
}

type Failure struct {
	Code    int64  `mapstructure:"code"`
	Message string `mapstructure:"message"`
}

type EventLog struct {
	ScoreAddress string    `mapstructure:"scoreAddress"`
	Indexed      []*string `mapstructure:"indexed"`
	Data         []*string `mapstructure:"data"`
}

// TransactionResult is the result of icx_getTransactionResult
type TransactionResult struct {
	Status             int64      `mapstructure:"status"`
	To                 string     `mapstructure:"to"`
	TxHash             string     `mapstructure:"txHash"`
	TxIndex            int64      `mapstructure:"txIndex"`
	BlockHeight        int64      `mapstructure:"blockHeight"`
	BlockHash          string     `mapstructure:"blockHash"`
	CumulativeStepUsed *big.Int   `mapstructure:"cumulativeStepUsed"`
	StepUsed           *big.Int   `mapstructure:"stepUsed"`
	StepPrice          *big.Int   `mapstructure:"stepPrice"`
	ScoreAddress       string     `mapstructure:"scoreAddress"`
	EventLogs          []EventLog `mapstructure:"eventLogs"`
	LogsBloom          string     `mapstructure:"logsBloom"`
	Failure            *Failure   `mapstructure:"failure"`
}

func (r *TransactionResult) IsSuccess() bool {
	return r.Status == 1
}

// JournalResult converts the result into the final state of a journal record
func (r *TransactionResult) JournalResult() (txstore.Result, error) {
	if r.BlockHeight < 0 {
		return txstore.Result{}, fmt.Errorf("%w: negative block height %d", transport.ErrInvalidResponse, r.BlockHeight)
	}

	result := txstore.Result{
		Status:      txstore.StatusSuccess,
		BlockHeight: uint64(r.BlockHeight),
		BlockHash:   r.BlockHash,
	}

	if !r.IsSuccess() {
		result.Status = txstore.StatusFailure

		if r.Failure != nil {
			result.Failure = r.Failure.Message
		}
	}

	return result, nil
}

// Fee returns stepUsed * stepPrice in loop
func (r *TransactionResult) Fee() *big.Int {
	if r.StepUsed == nil || r.StepPrice == nil {
		return new(big.Int)
	}

	return new(big.Int).Mul(r.StepUsed, r.StepPrice)
}

type ScoreApiParam struct {
	Name    string `mapstructure:"name"`
	Type    string `mapstructure:"type"`
	Indexed bool   `mapstructure:"indexed"`
	Default any    `mapstructure:"default"`
}

type ScoreApiEntry struct {
	Type     string          `mapstructure:"type"`
	Name     string          `mapstructure:"name"`
	Inputs   []ScoreApiParam `mapstructure:"inputs"`
	Outputs  []ScoreApiParam `mapstructure:"outputs"`
	ReadOnly bool            `mapstructure:"readonly"`
	Payable  bool            `mapstructure:"payable"`
}

// ScoreApi is the result of icx_getScoreApi
type ScoreApi []ScoreApiEntry

// Method returns the entry with the given name
func (a ScoreApi) Method(name string) (ScoreApiEntry, bool) {
	for _, entry := range a {
		if entry.Name == name {
			return entry, true
		}
	}

	return ScoreApiEntry{}, false
}

var bigIntType = reflect.TypeOf((*big.Int)(nil))

// MapConverter decodes JSON-RPC result into T. Hex quantities are decoded into *big.Int, integer and bool fields.
func MapConverter[T any]() transport.Converter[T] {
	return func(raw json.RawMessage) (result T, err error) {
		var input any

		decoder := json.NewDecoder(bytes.NewReader(raw))
		decoder.UseNumber()

		if err := decoder.Decode(&input); err != nil {
			return result, err
		}

		err = decodeResult(input, &result)

		return result, err
	}
}

// BigIntConverter decodes hex quantity result
func BigIntConverter() transport.Converter[*big.Int] {
	return func(raw json.RawMessage) (*big.Int, error) {
		var value string

		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, err
		}

		return converter.ToBigInt(value)
	}
}

func decodeResult(input any, output any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			hexToBigIntHookFunc,
			hexToIntHookFunc,
			hexToBoolHookFunc,
		),
		Result:  output,
		TagName: "mapstructure",
	})
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}

func hexToBigIntHookFunc(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != bigIntType {
		return data, nil
	}

	switch v := data.(type) {
	case string:
		return converter.ToBigInt(v)
	case json.Number:
		return converter.ToBigInt(v.String())
	default:
		return data, nil
	}
}

func hexToIntHookFunc(from reflect.Type, to reflect.Type, data any) (any, error) {
	s, ok := data.(string)
	if !ok || to.Kind() != reflect.Int64 {
		return data, nil
	}

	return converter.ToNumber(s)
}

func hexToBoolHookFunc(from reflect.Type, to reflect.Type, data any) (any, error) {
	s, ok := data.(string)
	if !ok || to.Kind() != reflect.Bool {
		return data, nil
	}

	switch strings.ToLower(s) {
	case "0x1", "true":
		return true, nil
	case "0x0", "false", "":
		return false, nil
	default:
		return nil, fmt.Errorf("invalid boolean value: %s", s)
	}
}
