package cli

import (
	"fmt"
	"time"

	"github.com/Ethernal-Tech/icon-infrastructure/amount"
	"github.com/Ethernal-Tech/icon-infrastructure/common"
	"github.com/Ethernal-Tech/icon-infrastructure/converter"
	"github.com/Ethernal-Tech/icon-infrastructure/service"
	"github.com/Ethernal-Tech/icon-infrastructure/transaction"
	"github.com/Ethernal-Tech/icon-infrastructure/txstore"
	"github.com/spf13/cobra"
)

const defaultStepLimit = 100000

type sendOutput struct {
	TxHash      string `json:"txHash"`
	Status      string `json:"status,omitempty"`
	BlockHeight int64  `json:"blockHeight,omitempty"`
	Fee         string `json:"fee,omitempty"`
	Failure     string `json:"failure,omitempty"`
}

func newSendCommand(a *app) *cobra.Command {
	var (
		name       string
		to         string
		value      string
		message    string
		stepLimit  uint64
		wait       bool
		waitConfig waitFlags
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Sign and send a transfer or message transaction",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, _ []string) error {
			w, err := a.loadWallet(name)
			if err != nil {
				return err
			}

			s, err := a.getService()
			if err != nil {
				return err
			}

			icx, err := amount.Of(value, amount.ICX)
			if err != nil {
				return err
			}

			var tx *transaction.Transaction

			if message != "" {
				tx, err = transaction.NewMessageTransactionBuilder().
					From(w.Address()).
					To(to).
					Value(icx).
					StepLimit(stepLimit).
					Nid(a.config.Nid).
					Version(transaction.DefaultVersion).
					Timestamp(transaction.CurrentTimestamp()).
					Data(converter.FromUtf8(message)).
					Build()
			} else {
				tx, err = transaction.NewIcxTransactionBuilder().
					From(w.Address()).
					To(to).
					Value(icx).
					StepLimit(stepLimit).
					Nid(a.config.Nid).
					Version(transaction.DefaultVersion).
					Timestamp(transaction.CurrentTimestamp()).
					Build()
			}

			if err != nil {
				return err
			}

			signed, err := transaction.NewSignedTransaction(tx, w)
			if err != nil {
				return err
			}

			txHash, err := s.SendTransaction(signed).Execute(cmd.Context())
			if err != nil {
				return err
			}

			a.logger("send").Info("Transaction sent", "hash", txHash, "from", w.Address(), "to", to)

			if !wait {
				return a.print(sendOutput{TxHash: txHash})
			}

			result, err := s.WaitTransactionResult(cmd.Context(), txHash, waitConfig.options()...)
			if err != nil {
				return fmt.Errorf("failed to get result of %s: %w", txHash, err)
			}

			if err := a.recordResult(txHash, result); err != nil {
				return err
			}

			return a.print(newSendOutput(txHash, result))
		}),
	}

	cmd.Flags().StringVar(&name, "name", "", "name of the sender wallet")
	cmd.Flags().StringVar(&to, "to", "", "recipient address")
	cmd.Flags().StringVar(&value, "value", "0", "amount in ICX")
	cmd.Flags().StringVar(&message, "message", "", "send a message transaction with this text")
	cmd.Flags().Uint64Var(&stepLimit, "step-limit", defaultStepLimit, "step limit")
	cmd.Flags().BoolVar(&wait, "wait", false, "wait for the transaction result")
	waitConfig.register(cmd)

	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

type waitFlags struct {
	count    int
	interval time.Duration
}

func (f *waitFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.count, "wait-count", 30, "number of transaction result polls")
	cmd.Flags().DurationVar(&f.interval, "wait-interval", 2*time.Second, "interval between transaction result polls")
}

func (f *waitFlags) options() []common.RetryConfigOption {
	return []common.RetryConfigOption{
		common.WithRetryCount(f.count),
		common.WithRetryWaitTime(f.interval),
	}
}

func (a *app) recordResult(txHash string, result *service.TransactionResult) error {
	journal, err := a.getJournal()
	if err != nil {
		return err
	}

	r, err := result.JournalResult()
	if err != nil {
		return err
	}

	err = journal.MarkResult(txHash, r)
	if err != nil {
		return fmt.Errorf("failed to record result of %s: %w", txHash, err)
	}

	return nil
}

func newSendOutput(txHash string, result *service.TransactionResult) sendOutput {
	output := sendOutput{
		TxHash:      txHash,
		Status:      string(txstore.StatusSuccess),
		BlockHeight: result.BlockHeight,
		Fee:         result.Fee().String(),
	}

	if !result.IsSuccess() {
		output.Status = string(txstore.StatusFailure)

		if result.Failure != nil {
			output.Failure = result.Failure.Message
		}
	}

	return output
}
