package cli

import (
	"errors"

	"github.com/Ethernal-Tech/icon-infrastructure/wallet"
	"github.com/spf13/cobra"
)

type walletOutput struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Mnemonic string `json:"mnemonic,omitempty"`
}

func newWalletCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Manage wallets stored in the secrets manager",
	}

	cmd.AddCommand(newWalletCreateCommand(a), newWalletImportCommand(a), newWalletAddressCommand(a))

	return cmd
}

func newWalletCreateCommand(a *app) *cobra.Command {
	var (
		name        string
		useMnemonic bool
		light       bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new wallet",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, _ []string) error {
			if err := a.requirePassword(); err != nil {
				return err
			}

			var (
				w        *wallet.Wallet
				mnemonic string
				err      error
			)

			if useMnemonic {
				mnemonic, err = wallet.NewMnemonic(wallet.DefaultMnemonicEntropyBits)
				if err != nil {
					return err
				}

				w, err = wallet.NewWalletFromMnemonic(mnemonic, "", 0)
			} else {
				w, err = wallet.Create()
			}

			if err != nil {
				return err
			}

			if err := a.saveWallet(w, name, light); err != nil {
				return err
			}

			return a.print(walletOutput{Name: name, Address: w.Address(), Mnemonic: mnemonic})
		}),
	}

	cmd.Flags().StringVar(&name, "name", "", "wallet name")
	cmd.Flags().BoolVar(&useMnemonic, "mnemonic", false, "derive the wallet from a new BIP-39 mnemonic")
	cmd.Flags().BoolVar(&light, "light", false, "use light scrypt parameters for the keystore")

	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newWalletImportCommand(a *app) *cobra.Command {
	var (
		name       string
		privateKey string
		mnemonic   string
		passphrase string
		index      uint32
		light      bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a wallet from a private key or a mnemonic",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, _ []string) error {
			if err := a.requirePassword(); err != nil {
				return err
			}

			var (
				w   *wallet.Wallet
				err error
			)

			switch {
			case privateKey != "" && mnemonic != "":
				return errors.New("only one of --private-key and --mnemonic can be specified")
			case privateKey != "":
				w, err = wallet.LoadPrivateKeyHex(privateKey)
			case mnemonic != "":
				w, err = wallet.NewWalletFromMnemonic(mnemonic, passphrase, index)
			default:
				return errors.New("either --private-key or --mnemonic is required")
			}

			if err != nil {
				return err
			}

			if err := a.saveWallet(w, name, light); err != nil {
				return err
			}

			return a.print(walletOutput{Name: name, Address: w.Address()})
		}),
	}

	cmd.Flags().StringVar(&name, "name", "", "wallet name")
	cmd.Flags().StringVar(&privateKey, "private-key", "", "hex encoded private key")
	cmd.Flags().StringVar(&mnemonic, "mnemonic", "", "BIP-39 mnemonic")
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "BIP-39 passphrase")
	cmd.Flags().Uint32Var(&index, "index", 0, "address index of the derivation path")
	cmd.Flags().BoolVar(&light, "light", false, "use light scrypt parameters for the keystore")

	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newWalletAddressCommand(a *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "address",
		Short: "Print the address of a stored wallet",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, _ []string) error {
			w, err := a.loadWallet(name)
			if err != nil {
				return err
			}

			return a.print(walletOutput{Name: name, Address: w.Address()})
		}),
	}

	cmd.Flags().StringVar(&name, "name", "", "wallet name")

	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func (a *app) saveWallet(w *wallet.Wallet, name string, light bool) error {
	sm, err := a.getSecretsManager()
	if err != nil {
		return err
	}

	var opts []wallet.StoreOption
	if light {
		opts = append(opts, wallet.WithLightScrypt())
	}

	if err := w.SaveToSecretsManager(sm, name, a.config.Password, opts...); err != nil {
		return err
	}

	a.logger("wallet").Info("Wallet stored", "name", name, "address", w.Address())

	return nil
}
