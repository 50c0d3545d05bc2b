package cli

import (
	"fmt"
	"strings"

	"github.com/Ethernal-Tech/icon-infrastructure/amount"
	"github.com/Ethernal-Tech/icon-infrastructure/service"
	"github.com/Ethernal-Tech/icon-infrastructure/transaction"
	"github.com/spf13/cobra"
)

type balanceOutput struct {
	Address string `json:"address"`
	Loop    string `json:"loop"`
	ICX     string `json:"icx"`
}

func newBalanceCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <address>",
		Short: "Print the balance of an address",
		Args:  cobra.ExactArgs(1),
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			s, err := a.getService()
			if err != nil {
				return err
			}

			balance, err := s.GetBalance(args[0]).Execute(cmd.Context())
			if err != nil {
				return err
			}

			loop, err := amount.Of(balance, amount.Loop)
			if err != nil {
				return err
			}

			icx, err := loop.ConvertUnit(amount.ICX)
			if err != nil {
				return err
			}

			return a.print(balanceOutput{
				Address: args[0],
				Loop:    balance.String(),
				ICX:     icx.String(),
			})
		}),
	}
}

func newBlockCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "block [latest|<height>|<hash>]",
		Short: "Print a block",
		Args:  cobra.MaximumNArgs(1),
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			s, err := a.getService()
			if err != nil {
				return err
			}

			value := service.LatestBlock
			if len(args) > 0 {
				value = args[0]
			}

			block, err := s.GetBlock(value).Execute(cmd.Context())
			if err != nil {
				return err
			}

			return a.print(block)
		}),
	}
}

func newCallCommand(a *app) *cobra.Command {
	var (
		to     string
		from   string
		method string
		params []string
	)

	cmd := &cobra.Command{
		Use:   "call",
		Short: "Call a read-only SCORE method",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, _ []string) error {
			s, err := a.getService()
			if err != nil {
				return err
			}

			callParams, err := parseParams(params)
			if err != nil {
				return err
			}

			builder := transaction.NewCallBuilder().To(to).Method(method)
			if from != "" {
				builder = builder.From(from)
			}

			if len(callParams) > 0 {
				builder = builder.Params(callParams)
			}

			call, err := builder.Build()
			if err != nil {
				return err
			}

			result, err := s.Call(call).Execute(cmd.Context())
			if err != nil {
				return err
			}

			return a.print(result)
		}),
	}

	cmd.Flags().StringVar(&to, "to", "", "SCORE address")
	cmd.Flags().StringVar(&from, "from", "", "caller address")
	cmd.Flags().StringVar(&method, "method", "", "method name")
	cmd.Flags().StringArrayVar(&params, "param", nil, "method parameter as key=value, may be repeated")

	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("method")

	return cmd
}

func parseParams(values []string) (transaction.Params, error) {
	params := transaction.Params{}

	for _, value := range values {
		key, val, ok := strings.Cut(value, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", value)
		}

		params[key] = transaction.StringParam(val)
	}

	return params, nil
}
