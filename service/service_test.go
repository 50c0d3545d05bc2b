package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Ethernal-Tech/icon-infrastructure/common"
	"github.com/Ethernal-Tech/icon-infrastructure/transaction"
	"github.com/Ethernal-Tech/icon-infrastructure/transport"
	"github.com/Ethernal-Tech/icon-infrastructure/txstore"
	"github.com/Ethernal-Tech/icon-infrastructure/txstore/db"
	"github.com/Ethernal-Tech/icon-infrastructure/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAddress = "hx902ecb51c109183ace539f247b4ea1347fbf23b5"
	testScore   = "cx0000000000000000000000000000000000000001"
	testHash    = "0x375540830d475a73b704cf8dee9fa9eba2798f9d2af1fa55a85482e48daefd3b"
)

type providerRequest struct {
	method string
	params any
}

type mockProvider struct {
	lock     sync.Mutex
	requests []providerRequest
	handler  func(method string, params any) (json.RawMessage, error)
}

func (m *mockProvider) Request(_ context.Context, method string, params any) (json.RawMessage, error) {
	m.lock.Lock()
	m.requests = append(m.requests, providerRequest{method: method, params: params})
	m.lock.Unlock()

	return m.handler(method, params)
}

func (m *mockProvider) last() providerRequest {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.requests[len(m.requests)-1]
}

func (m *mockProvider) count() int {
	m.lock.Lock()
	defer m.lock.Unlock()

	return len(m.requests)
}

func newMockProvider(handler func(method string, params any) (json.RawMessage, error)) *mockProvider {
	return &mockProvider{handler: handler}
}

func resultOf(s string) func(string, any) (json.RawMessage, error) {
	return func(string, any) (json.RawMessage, error) {
		return json.RawMessage(s), nil
	}
}

func TestIconService_GetTotalSupplyAndBalance(t *testing.T) {
	t.Parallel()

	provider := newMockProvider(resultOf(`"0x2961fff8ca4a62327800000"`))
	service := NewIconService(provider)
	ctx := context.Background()

	supply, err := service.GetTotalSupply().Execute(ctx)
	require.NoError(t, err)
	require.Equal(t, "800460000000000000000000000", supply.String())
	require.Equal(t, "icx_getTotalSupply", provider.last().method)
	require.Nil(t, provider.last().params)

	balance, err := service.GetBalance(testAddress).Execute(ctx)
	require.NoError(t, err)
	require.Equal(t, supply, balance)
	require.Equal(t, providerRequest{
		method: "icx_getBalance",
		params: map[string]any{"address": testAddress},
	}, provider.last())

	_, err = service.GetBalance("hx123").Execute(ctx)
	require.ErrorIs(t, err, ErrInvalidArgument)
	require.Equal(t, 2, provider.count())

	provider.handler = resultOf(`"not hex"`)

	_, err = service.GetBalance(testScore).Execute(ctx)
	require.ErrorIs(t, err, transport.ErrInvalidResponse)
}

func TestIconService_GetBlock(t *testing.T) {
	t.Parallel()

	const blockJSON = `{
		"version": "0.1a",
		"prev_block_hash": "48757af881f76c858890fb41934bee228ad50a71707154a482826c39b8560d4b",
		"merkle_tree_root_hash": "fabc1884932cf52f657475b6d62adcbce5661754ff1a9d50f13f0c49c7d48c0c",
		"time_stamp": 1516498781094429,
		"confirmed_transaction_list": [
			{
				"version": "0x3",
				"from": "hxbe258ceb872e08851f1f59694dac2558708ece11",
				"to": "hx5bfdb090f43a808005ffc27c25b213145e80b7cd",
				"value": "0xde0b6b3a7640000",
				"stepLimit": "0x12345",
				"timestamp": "0x563a6cf330136",
				"nid": "0x1",
				"nonce": "0x1",
				"signature": "VAia7YZ2Ji6igKWzjR2YsGa2m53nKPrfK7uXYW78QLE+ATehAVZPC40szvAiA6NEU5gCYB4c4qaQzqDh2ugcHgA=",
				"txHash": "0xb903239f8543d04b5dc1ba6579132b143087c68db1b2168786408fcbce568238"
			}
		],
		"block_hash": "1fcf7c34dc875681761bdaa5d75d770e78e8166b5c4f06c226c53300cbe85f57",
		"height": 3,
		"peer_id": "hx86aba2210918a9b116973f3c4b27c41a54d5dafe",
		"signature": "LtwmkL+LAf+I1H2rM/D0MnYrJH8Ab+aQ5gbcXnyqIEwpBGDYBYeSTVD9qdmRhbdZMN0TbzYtAN9Ty0v1fHqFBgE="
	}`

	provider := newMockProvider(resultOf(blockJSON))
	service := NewIconService(provider)
	ctx := context.Background()

	t.Run("dispatch", func(t *testing.T) {
		for _, tc := range []struct {
			name   string
			value  any
			method string
			params any
		}{
			{"latest", LatestBlock, "icx_getLastBlock", nil},
			{"hash", "0x1FCF7C34DC875681761BDAA5D75D770E78E8166B5C4F06C226C53300CBE85F57", "icx_getBlockByHash",
				map[string]any{"hash": "0x1fcf7c34dc875681761bdaa5d75d770e78e8166b5c4f06c226c53300cbe85f57"}},
			{"height int", 3, "icx_getBlockByHeight", map[string]any{"height": "0x3"}},
			{"height big", big.NewInt(300), "icx_getBlockByHeight", map[string]any{"height": "0x12c"}},
			{"height string", "10", "icx_getBlockByHeight", map[string]any{"height": "0xa"}},
		} {
			t.Run(tc.name, func(t *testing.T) {
				block, err := service.GetBlock(tc.value).Execute(ctx)
				require.NoError(t, err)
				require.Equal(t, int64(3), block.Height)
				require.Equal(t, providerRequest{method: tc.method, params: tc.params}, provider.last())
			})
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, value := range []any{-1, "abc", 1.5, "0xzz"} {
			_, err := service.GetBlock(value).Execute(ctx)
			require.ErrorIs(t, err, ErrInvalidArgument, value)
		}

		_, err := service.GetBlockByHash("0x1234").Execute(ctx)
		require.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("decode", func(t *testing.T) {
		block, err := service.GetLastBlock().Execute(ctx)
		require.NoError(t, err)

		require.Equal(t, "0.1a", block.Version)
		require.Equal(t, int64(1516498781094429), block.Timestamp)
		require.Equal(t, "1fcf7c34dc875681761bdaa5d75d770e78e8166b5c4f06c226c53300cbe85f57", block.BlockHash)
		require.Equal(t, "hx86aba2210918a9b116973f3c4b27c41a54d5dafe", block.PeerID)
		require.Len(t, block.Transactions, 1)

		tx := block.Transactions[0]
		require.Equal(t, "0x3", tx.Version)
		require.Equal(t, "1000000000000000000", tx.Value.String())
		require.Equal(t, int64(0x12345), tx.StepLimit.Int64())
		require.Equal(t, int64(0x563a6cf330136), tx.Timestamp)
		require.Equal(t, int64(1), tx.Nid)
		require.Equal(t, int64(1), tx.Nonce.Int64())
		require.Equal(t, "0xb903239f8543d04b5dc1ba6579132b143087c68db1b2168786408fcbce568238", tx.TxHash)
		require.Empty(t, tx.DataType)
		require.Nil(t, tx.Data)
	})
}

func TestIconService_GetTransactionResult(t *testing.T) {
	t.Parallel()

	provider := newMockProvider(resultOf(`{
		"status": "0x0",
		"to": "cx4d6f646441a3f9c9b91019c9b98e3c342cceb114",
		"txHash": "0x375540830d475a73b704cf8dee9fa9eba2798f9d2af1fa55a85482e48daefd3b",
		"txIndex": "0x1",
		"blockHeight": "0x1234",
		"blockHash": "0xc71303ef8543d04b5dc1ba6579132b143087c68db1b2168786408fcbce568238",
		"cumulativeStepUsed": "0x1234",
		"stepUsed": "0x1234",
		"stepPrice": "0x2540be400",
		"failure": {"code": "0x7d64", "message": "Out of step"},
		"eventLogs": [
			{
				"scoreAddress": "cx4d6f646441a3f9c9b91019c9b98e3c342cceb114",
				"indexed": ["Transfer(Address,Address,int)", null],
				"data": ["0x1"]
			}
		],
		"logsBloom": "0x00"
	}`))
	service := NewIconService(provider)

	result, err := service.GetTransactionResult(strings.ToUpper(testHash[2:])).Execute(context.Background())
	require.ErrorIs(t, err, ErrInvalidArgument)
	require.Nil(t, result)

	result, err = service.GetTransactionResult(testHash).Execute(context.Background())
	require.NoError(t, err)
	require.Equal(t, providerRequest{
		method: "icx_getTransactionResult",
		params: map[string]any{"txHash": testHash},
	}, provider.last())

	require.False(t, result.IsSuccess())
	require.Equal(t, int64(1), result.TxIndex)
	require.Equal(t, int64(0x1234), result.BlockHeight)
	require.Equal(t, int64(0x7d64), result.Failure.Code)
	require.Equal(t, "Out of step", result.Failure.Message)
	require.Equal(t, new(big.Int).Mul(big.NewInt(0x1234), big.NewInt(0x2540be400)).String(), result.Fee().String())
	require.Len(t, result.EventLogs, 1)
	require.Len(t, result.EventLogs[0].Indexed, 2)
	require.Equal(t, "Transfer(Address,Address,int)", *result.EventLogs[0].Indexed[0])
	require.Nil(t, result.EventLogs[0].Indexed[1])
	require.Equal(t, "0x1", *result.EventLogs[0].Data[0])

	require.Equal(t, "0", (&TransactionResult{}).Fee().String())
}

func TestIconService_GetTransaction(t *testing.T) {
	t.Parallel()

	provider := newMockProvider(resultOf(`{
		"version": "0x3",
		"from": "hxbe258ceb872e08851f1f59694dac2558708ece11",
		"to": "cx5bfdb090f43a808005ffc27c25b213145e80b7cd",
		"stepLimit": "0x12345",
		"timestamp": "0x563a6cf330136",
		"nid": "0x3",
		"signature": "VAia7YZ2Ji6igKWzjR2YsGa2m53nKPrfK7uXYW78QLE+ATehAVZPC40szvAiA6NEU5gCYB4c4qaQzqDh2ugcHgA=",
		"dataType": "call",
		"data": {"method": "transfer", "params": {"to": "hxab2d8215eab14bc6bdd8bfb2c8151257032ecd8b", "value": "0x1"}},
		"txIndex": "0x2",
		"blockHeight": "0x10",
		"blockHash": "0xc71303ef8543d04b5dc1ba6579132b143087c68db1b2168786408fcbce568238",
		"txHash": "0x375540830d475a73b704cf8dee9fa9eba2798f9d2af1fa55a85482e48daefd3b"
	}`))
	service := NewIconService(provider)

	tx, err := service.GetTransaction(testHash).Execute(context.Background())
	require.NoError(t, err)
	require.Equal(t, "icx_getTransactionByHash", provider.last().method)
	require.Equal(t, int64(3), tx.Nid)
	require.Equal(t, int64(0x10), tx.BlockHeight)
	require.Nil(t, tx.Value)
	require.Equal(t, "call", tx.DataType)
	require.Equal(t, map[string]any{
		"method": "transfer",
		"params": map[string]any{"to": "hxab2d8215eab14bc6bdd8bfb2c8151257032ecd8b", "value": "0x1"},
	}, tx.Data)

	_, err = service.GetTransaction("").Execute(context.Background())
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestIconService_GetScoreApi(t *testing.T) {
	t.Parallel()

	provider := newMockProvider(resultOf(`[
		{
			"type": "function",
			"name": "balanceOf",
			"inputs": [{"name": "_owner", "type": "Address"}],
			"outputs": [{"type": "int"}],
			"readonly": "0x1"
		},
		{
			"type": "eventlog",
			"name": "Transfer",
			"inputs": [
				{"name": "_from", "type": "Address", "indexed": "0x1"},
				{"name": "_value", "type": "int", "default": "0x0"}
			]
		},
		{"type": "fallback", "name": "fallback", "payable": "0x1"}
	]`))
	service := NewIconService(provider)
	ctx := context.Background()

	api, err := service.GetScoreApi(testScore).Execute(ctx)
	require.NoError(t, err)
	require.Len(t, api, 3)
	require.Equal(t, providerRequest{
		method: "icx_getScoreApi",
		params: map[string]any{"address": testScore},
	}, provider.last())

	balanceOf, ok := api.Method("balanceOf")
	require.True(t, ok)
	require.True(t, balanceOf.ReadOnly)
	require.False(t, balanceOf.Payable)
	require.Equal(t, []ScoreApiParam{{Name: "_owner", Type: "Address"}}, balanceOf.Inputs)
	require.Equal(t, []ScoreApiParam{{Type: "int"}}, balanceOf.Outputs)

	transfer, ok := api.Method("Transfer")
	require.True(t, ok)
	require.True(t, transfer.Inputs[0].Indexed)
	require.False(t, transfer.Inputs[1].Indexed)
	require.Equal(t, "0x0", transfer.Inputs[1].Default)

	fallback, _ := api.Method("fallback")
	require.True(t, fallback.Payable)

	_, ok = api.Method("unknown")
	require.False(t, ok)

	_, err = service.GetScoreApi(testAddress).Execute(ctx)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestIconService_Call(t *testing.T) {
	t.Parallel()

	provider := newMockProvider(resultOf(`"0x2961fff8ca4a62327800000"`))
	service := NewIconService(provider)

	call, err := transaction.NewCallBuilder().
		To(testScore).
		Method("balanceOf").
		Params(transaction.Params{"_owner": transaction.StringParam(testAddress)}).
		Build()
	require.NoError(t, err)

	result, err := service.Call(call).Execute(context.Background())
	require.NoError(t, err)
	require.Equal(t, "0x2961fff8ca4a62327800000", result)
	require.Equal(t, providerRequest{
		method: "icx_call",
		params: map[string]any{
			"to":       testScore,
			"dataType": "call",
			"data": map[string]any{
				"method": "balanceOf",
				"params": map[string]any{"_owner": testAddress},
			},
		},
	}, provider.last())

	balance, err := CallWithConverter(service, call, BigIntConverter()).Execute(context.Background())
	require.NoError(t, err)
	require.Equal(t, "800460000000000000000000000", balance.String())

	_, err = service.Call(nil).Execute(context.Background())
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func newSignedMessage(t *testing.T, w *wallet.Wallet, nonce int64) *transaction.SignedTransaction {
	t.Helper()

	tx, err := transaction.NewMessageTransactionBuilder().
		From(w.Address()).
		To(testAddress).
		StepLimit(100000).
		Nid(3).
		Nonce(nonce).
		Timestamp(1516498781094429).
		Data("0x48656c6c6f").
		Build()
	require.NoError(t, err)

	signed, err := transaction.NewSignedTransaction(tx, w)
	require.NoError(t, err)

	return signed
}

func TestIconService_SendTransaction(t *testing.T) {
	t.Parallel()

	w, err := wallet.Create()
	require.NoError(t, err)

	journal, err := db.NewDatabase(db.BBolt, filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)

	defer journal.Close()

	signed := newSignedMessage(t, w, 1)

	provider := newMockProvider(func(method string, params any) (json.RawMessage, error) {
		return json.Marshal(signed.TxHash())
	})
	service := NewIconService(provider, WithJournal(journal))

	txHash, err := service.SendTransaction(signed).Execute(context.Background())
	require.NoError(t, err)
	require.Equal(t, signed.TxHash(), txHash)

	request := provider.last()
	require.Equal(t, "icx_sendTransaction", request.method)
	require.Equal(t, signed.Properties(), request.params)

	record, err := journal.Get(txHash)
	require.NoError(t, err)
	require.Equal(t, txstore.StatusPending, record.Status)
	require.Equal(t, w.Address(), record.From)
	require.Equal(t, testAddress, record.To)
	require.Equal(t, "0x3", record.Nid)
	require.Equal(t, "message", record.DataType)

	var properties map[string]any

	require.NoError(t, json.Unmarshal(record.Properties, &properties))
	require.Equal(t, signed.Signature(), properties["signature"])

	// failed send is not journaled
	failed := newSignedMessage(t, w, 2)
	provider.handler = func(string, any) (json.RawMessage, error) {
		return nil, &transport.RPCError{Code: transport.CodeInvalidParams, Message: "Invalid signature"}
	}

	_, err = service.SendTransaction(failed).Execute(context.Background())
	require.Error(t, err)

	_, err = journal.Get(failed.TxHash())
	require.ErrorIs(t, err, txstore.ErrNotFound)

	_, err = service.SendTransaction(nil).Execute(context.Background())
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestIconService_WaitTransactionResult(t *testing.T) {
	t.Parallel()

	retryOptions := []common.RetryConfigOption{common.WithRetryWaitTime(time.Millisecond)}

	t.Run("pending then executed", func(t *testing.T) {
		calls := 0
		provider := newMockProvider(func(string, any) (json.RawMessage, error) {
			calls++

			switch calls {
			case 1:
				return nil, &transport.RPCError{Code: transport.CodeNotFound, Message: "NotFound"}
			case 2:
				return nil, &transport.RPCError{Code: transport.CodeExecuting, Message: "Executing"}
			default:
				return json.RawMessage(`{"status":"0x1","txHash":"` + testHash + `","blockHeight":"0x5"}`), nil
			}
		})

		result, err := NewIconService(provider).WaitTransactionResult(context.Background(), testHash, retryOptions...)
		require.NoError(t, err)
		require.True(t, result.IsSuccess())
		require.Equal(t, int64(5), result.BlockHeight)
		require.Equal(t, 3, calls)
	})

	t.Run("non retryable error", func(t *testing.T) {
		provider := newMockProvider(func(string, any) (json.RawMessage, error) {
			return nil, &transport.RPCError{Code: transport.CodeInvalidParams, Message: "Invalid params"}
		})

		_, err := NewIconService(provider).WaitTransactionResult(context.Background(), testHash, retryOptions...)

		rpcErr, ok := transport.AsRPCError(err)
		require.True(t, ok)
		require.Equal(t, transport.CodeInvalidParams, rpcErr.Code)
		require.Equal(t, 1, provider.count())
	})

	t.Run("timeout", func(t *testing.T) {
		provider := newMockProvider(func(string, any) (json.RawMessage, error) {
			return nil, &transport.RPCError{Code: transport.CodePending, Message: "Pending"}
		})

		_, err := NewIconService(provider).WaitTransactionResult(
			context.Background(), testHash, append(retryOptions, common.WithRetryCount(3))...)
		require.ErrorIs(t, err, common.ErrRetryTimeout)
		require.Equal(t, 3, provider.count())
	})

	t.Run("invalid hash", func(t *testing.T) {
		provider := newMockProvider(resultOf(`{}`))

		_, err := NewIconService(provider).WaitTransactionResult(context.Background(), "0x1", retryOptions...)
		require.ErrorIs(t, err, ErrInvalidArgument)
		require.Equal(t, 0, provider.count())
	})
}

func TestIconService_HttpProvider(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var request struct {
			Method string         `json:"method"`
			Params map[string]any `json:"params"`
			ID     uint64         `json:"id"`
		}

		assert.NoError(t, json.NewDecoder(r.Body).Decode(&request))

		switch request.Method {
		case "icx_getBalance":
			_, _ = fmt.Fprintf(w, `{"jsonrpc":"2.0","result":"0xde0b6b3a7640000","id":%d}`, request.ID)
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = fmt.Fprintf(w, `{"jsonrpc":"2.0","error":{"code":-32601,"message":"Method not found"},"id":%d}`,
				request.ID)
		}
	}))
	defer server.Close()

	service := NewIconService(transport.NewHttpProvider(server.URL))

	result := <-service.GetBalance(testAddress).ExecuteAsync(context.Background())
	require.NoError(t, result.Err)
	require.Equal(t, "1000000000000000000", result.Result.String())

	_, err := service.GetLastBlock().Execute(context.Background())

	rpcErr, ok := transport.AsRPCError(err)
	require.True(t, ok)
	require.Equal(t, transport.CodeMethodNotFound, rpcErr.Code)
}

func TestTransactionResult_JournalResult(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		result   TransactionResult
		expected txstore.Result
		err      bool
	}{
		{
			name:     "success",
			result:   TransactionResult{Status: 1, BlockHeight: 10, BlockHash: "0xab"},
			expected: txstore.Result{Status: txstore.StatusSuccess, BlockHeight: 10, BlockHash: "0xab"},
		},
		{
			name: "failure",
			result: TransactionResult{
				Status: 0, BlockHeight: 11, BlockHash: "0xcd", Failure: &Failure{Code: 32, Message: "Reverted(0)"},
			},
			expected: txstore.Result{
				Status: txstore.StatusFailure, BlockHeight: 11, BlockHash: "0xcd", Failure: "Reverted(0)",
			},
		},
		{
			name:   "negative block height",
			result: TransactionResult{Status: 1, BlockHeight: -1},
			err:    true,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			result, err := c.result.JournalResult()
			if c.err {
				require.ErrorIs(t, err, transport.ErrInvalidResponse)

				return
			}

			require.NoError(t, err)
			require.Equal(t, c.expected, result)
		})
	}
}
