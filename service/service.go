package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/Ethernal-Tech/icon-infrastructure/common"
	"github.com/Ethernal-Tech/icon-infrastructure/converter"
	"github.com/Ethernal-Tech/icon-infrastructure/transaction"
	"github.com/Ethernal-Tech/icon-infrastructure/transport"
	"github.com/Ethernal-Tech/icon-infrastructure/txstore"
	"github.com/Ethernal-Tech/icon-infrastructure/validator"
	"github.com/hashicorp/go-hclog"
)

const (
	LatestBlock = "latest"

	defaultWaitRetryCount    = 30
	defaultWaitRetryWaitTime = time.Second * 2
)

var (
	ErrInvalidArgument = errors.New("invalid argument")

	hashRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)
)

// IconService exposes ICON JSON-RPC v3 API. Every method returns deferred call executed by the caller.
type IconService struct {
	provider transport.Provider
	journal  txstore.Store
	logger   hclog.Logger
}

type ServiceOption func(*IconService)

func WithLogger(logger hclog.Logger) ServiceOption {
	return func(s *IconService) {
		s.logger = logger
	}
}

// WithJournal records every successfully sent transaction into the journal
func WithJournal(journal txstore.Store) ServiceOption {
	return func(s *IconService) {
		s.journal = journal
	}
}

func NewIconService(provider transport.Provider, options ...ServiceOption) *IconService {
	s := &IconService{
		provider: provider,
		logger:   hclog.NewNullLogger(),
	}

	for _, opt := range options {
		opt(s)
	}

	s.logger = s.logger.Named("icon_service")

	return s
}

// GetTotalSupply returns total number of issued coins in loop
func (s *IconService) GetTotalSupply() *transport.HttpCall[*big.Int] {
	return transport.NewHttpCall(s.provider, "icx_getTotalSupply", nil, BigIntConverter())
}

// GetBalance returns balance of the address in loop
func (s *IconService) GetBalance(address string) *transport.HttpCall[*big.Int] {
	if !validator.IsAddress(address) {
		return transport.NewFailedCall[*big.Int](fmt.Errorf("%w: address %s", ErrInvalidArgument, address))
	}

	return transport.NewHttpCall(s.provider, "icx_getBalance",
		map[string]any{"address": address}, BigIntConverter())
}

// GetBlock returns the block by "latest", block hash or block height
func (s *IconService) GetBlock(value any) *transport.HttpCall[*Block] {
	if str, ok := value.(string); ok {
		switch {
		case str == LatestBlock:
			return s.GetLastBlock()
		case hashRegex.MatchString(str):
			return s.GetBlockByHash(str)
		}
	}

	return s.GetBlockByHeight(value)
}

func (s *IconService) GetBlockByHeight(height any) *transport.HttpCall[*Block] {
	heightHex, err := converter.ToHexNumber(height)
	if err != nil {
		return transport.NewFailedCall[*Block](fmt.Errorf("%w: block height: %w", ErrInvalidArgument, err))
	}

	return transport.NewHttpCall(s.provider, "icx_getBlockByHeight",
		map[string]any{"height": heightHex}, MapConverter[*Block]())
}

func (s *IconService) GetBlockByHash(hash string) *transport.HttpCall[*Block] {
	if !hashRegex.MatchString(hash) {
		return transport.NewFailedCall[*Block](fmt.Errorf("%w: block hash %s", ErrInvalidArgument, hash))
	}

	return transport.NewHttpCall(s.provider, "icx_getBlockByHash",
		map[string]any{"hash": strings.ToLower(hash)}, MapConverter[*Block]())
}

func (s *IconService) GetLastBlock() *transport.HttpCall[*Block] {
	return transport.NewHttpCall(s.provider, "icx_getLastBlock", nil, MapConverter[*Block]())
}

// GetScoreApi returns the list of APIs that the SCORE provides
func (s *IconService) GetScoreApi(address string) *transport.HttpCall[ScoreApi] {
	if !validator.IsScoreAddress(address) {
		return transport.NewFailedCall[ScoreApi](fmt.Errorf("%w: score address %s", ErrInvalidArgument, address))
	}

	return transport.NewHttpCall(s.provider, "icx_getScoreApi",
		map[string]any{"address": address}, MapConverter[ScoreApi]())
}

func (s *IconService) GetTransaction(hash string) *transport.HttpCall[*ConfirmedTransaction] {
	if !hashRegex.MatchString(hash) {
		return transport.NewFailedCall[*ConfirmedTransaction](
			fmt.Errorf("%w: transaction hash %s", ErrInvalidArgument, hash))
	}

	return transport.NewHttpCall(s.provider, "icx_getTransactionByHash",
		map[string]any{"txHash": strings.ToLower(hash)}, MapConverter[*ConfirmedTransaction]())
}

func (s *IconService) GetTransactionResult(hash string) *transport.HttpCall[*TransactionResult] {
	if !hashRegex.MatchString(hash) {
		return transport.NewFailedCall[*TransactionResult](
			fmt.Errorf("%w: transaction hash %s", ErrInvalidArgument, hash))
	}

	return transport.NewHttpCall(s.provider, "icx_getTransactionResult",
		map[string]any{"txHash": strings.ToLower(hash)}, MapConverter[*TransactionResult]())
}

// SendTransaction submits the signed transaction and returns its hash
func (s *IconService) SendTransaction(signed *transaction.SignedTransaction) *transport.HttpCall[string] {
	if signed == nil {
		return transport.NewFailedCall[string](fmt.Errorf("%w: signed transaction is nil", ErrInvalidArgument))
	}

	properties := signed.Properties()

	return transport.NewHttpCall[string](s.provider, "icx_sendTransaction", properties,
		func(raw json.RawMessage) (string, error) {
			var txHash string

			if err := json.Unmarshal(raw, &txHash); err != nil {
				return "", err
			}

			if txHash != signed.TxHash() {
				s.logger.Warn("node returned unexpected transaction hash", "expected", signed.TxHash(), "got", txHash)
			}

			s.record(signed, properties, txHash)

			return txHash, nil
		})
}

// Call executes read-only SCORE method
func (s *IconService) Call(call *transaction.Call) *transport.HttpCall[any] {
	return CallWithConverter(s, call, transport.JSONConverter[any]())
}

// CallWithConverter executes read-only SCORE method and converts result with the given converter
func CallWithConverter[T any](s *IconService, call *transaction.Call, conv transport.Converter[T]) *transport.HttpCall[T] {
	if call == nil {
		return transport.NewFailedCall[T](fmt.Errorf("%w: call is nil", ErrInvalidArgument))
	}

	params, err := call.ToRPCParams()
	if err != nil {
		return transport.NewFailedCall[T](err)
	}

	return transport.NewHttpCall(s.provider, "icx_call", params, conv)
}

// WaitTransactionResult polls icx_getTransactionResult until the transaction is executed or retries are exhausted
func (s *IconService) WaitTransactionResult(
	ctx context.Context, hash string, options ...common.RetryConfigOption,
) (*TransactionResult, error) {
	call := s.GetTransactionResult(hash)

	options = append([]common.RetryConfigOption{
		common.WithRetryCount(defaultWaitRetryCount),
		common.WithRetryWaitTime(defaultWaitRetryWaitTime),
		common.WithLogger(s.logger),
	}, options...)

	return common.ExecuteWithRetry(ctx, func(ctx context.Context) (*TransactionResult, error) {
		result, err := call.Execute(ctx)
		if err != nil {
			if IsResultNotReady(err) {
				return nil, fmt.Errorf("%w: %w", common.ErrRetryTryAgain, err)
			}

			return nil, err
		}

		return result, nil
	}, options...)
}

// IsResultNotReady reports whether transaction result is not available yet
func IsResultNotReady(err error) bool {
	rpcErr, ok := transport.AsRPCError(err)

	return ok && (rpcErr.IsPending() || rpcErr.Code == transport.CodeNotFound)
}

func (s *IconService) record(signed *transaction.SignedTransaction, properties transaction.RawTransaction, txHash string) {
	if s.journal == nil {
		return
	}

	bytes, err := json.Marshal(properties)
	if err != nil {
		s.logger.Error("failed to marshal transaction", "hash", txHash, "err", err)

		return
	}

	tx := signed.Transaction()

	record := txstore.NewRecord(txHash, tx.From(), tx.To(), tx.Nid(), string(tx.DataType()), bytes)

	if err := s.journal.Put(record); err != nil {
		s.logger.Error("failed to journal transaction", "hash", txHash, "err", err)

		return
	}

	s.logger.Debug("transaction journaled", "hash", txHash)
}
