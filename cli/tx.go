package cli

import (
	"time"

	"github.com/Ethernal-Tech/icon-infrastructure/service"
	"github.com/spf13/cobra"
)

func newTxCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Query transactions and the local transaction journal",
	}

	cmd.AddCommand(
		newTxGetCommand(a),
		newTxResultCommand(a),
		newTxPendingCommand(a),
		newTxTrackCommand(a),
	)

	return cmd
}

func newTxGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <hash>",
		Short: "Print a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			s, err := a.getService()
			if err != nil {
				return err
			}

			tx, err := s.GetTransaction(args[0]).Execute(cmd.Context())
			if err != nil {
				return err
			}

			return a.print(tx)
		}),
	}
}

func newTxResultCommand(a *app) *cobra.Command {
	var (
		wait       bool
		waitConfig waitFlags
	)

	cmd := &cobra.Command{
		Use:   "result <hash>",
		Short: "Print a transaction result",
		Args:  cobra.ExactArgs(1),
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			s, err := a.getService()
			if err != nil {
				return err
			}

			var result *service.TransactionResult

			if wait {
				result, err = s.WaitTransactionResult(cmd.Context(), args[0], waitConfig.options()...)
			} else {
				result, err = s.GetTransactionResult(args[0]).Execute(cmd.Context())
			}

			if err != nil {
				return err
			}

			return a.print(result)
		}),
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "wait until the transaction is executed")
	waitConfig.register(cmd)

	return cmd
}

type pendingOutput struct {
	TxHash string    `json:"txHash"`
	From   string    `json:"from"`
	To     string    `json:"to"`
	SentAt time.Time `json:"sentAt"`
}

func newTxPendingCommand(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List journaled transactions without a result",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, _ []string) error {
			journal, err := a.getJournal()
			if err != nil {
				return err
			}

			records, err := journal.GetPending(limit)
			if err != nil {
				return err
			}

			output := make([]pendingOutput, len(records))
			for i, r := range records {
				output[i] = pendingOutput{
					TxHash: r.TxHash,
					From:   r.From,
					To:     r.To,
					SentAt: time.Unix(r.SentAt, 0).UTC(),
				}
			}

			return a.print(output)
		}),
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "max number of transactions, zero lists all")

	return cmd
}

type trackOutput struct {
	TxHash string `json:"txHash"`
	Status string `json:"status"`
}

func newTxTrackCommand(a *app) *cobra.Command {
	var (
		workers     int
		interval    time.Duration
		maxAttempts int
	)

	cmd := &cobra.Command{
		Use:   "track",
		Short: "Poll results of pending journaled transactions and record them",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, _ []string) error {
			s, err := a.getService()
			if err != nil {
				return err
			}

			journal, err := a.getJournal()
			if err != nil {
				return err
			}

			var output []trackOutput

			resultCh := make(chan trackOutput)
			done := make(chan struct{})

			go func() {
				defer close(done)

				for item := range resultCh {
					output = append(output, item)
				}
			}()

			tracker := service.NewResultTracker(s, journal, service.ResultTrackerConfig{
				WorkersCount: workers,
				PollInterval: interval,
				MaxAttempts:  maxAttempts,
			}, func(txHash string, result *service.TransactionResult) {
				resultCh <- trackOutput{TxHash: txHash, Status: newSendOutput(txHash, result).Status}
			}, a.logger("tracker"))

			if err := tracker.Start(cmd.Context()); err != nil {
				return err
			}

			err = tracker.Wait(cmd.Context())

			tracker.Close()
			close(resultCh)
			<-done

			if err != nil {
				return err
			}

			if output == nil {
				output = []trackOutput{}
			}

			return a.print(output)
		}),
	}

	cmd.Flags().IntVar(&workers, "workers", 4, "number of concurrent pollers")
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "interval between polls of one transaction")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 30, "polls per transaction before giving up, zero polls forever")

	return cmd
}
