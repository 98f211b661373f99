package account

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"media-notes/cmd/v2n/cmd/cmdutil"
	"media-notes/internal/app/accounts"
	"media-notes/internal/config"
)

var (
	username  string
	email     string
	password  string
	amount    int
	reason    string
	limit     int
	tokenTTL  time.Duration
	olderThan time.Duration
)

func init() {
	createCmd.Flags().StringVarP(&username, "username", "u", "", "Login name")
	createCmd.Flags().StringVarP(&email, "email", "e", "", "Contact email")
	createCmd.Flags().StringVarP(&password, "password", "p", "", "Password, at least 6 characters")
	_ = createCmd.MarkFlagRequired("username")
	_ = createCmd.MarkFlagRequired("email")
	_ = createCmd.MarkFlagRequired("password")

	grantCmd.Flags().IntVarP(&amount, "amount", "n", 0, "Credits to add")
	grantCmd.Flags().StringVarP(&reason, "reason", "r", "manual grant", "Reason stored in the audit log")
	_ = grantCmd.MarkFlagRequired("amount")

	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "How many entries to show")

	tokenCmd.Flags().StringVarP(&username, "username", "u", "", "Login name")
	tokenCmd.Flags().StringVarP(&password, "password", "p", "", "Password")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")
	_ = tokenCmd.MarkFlagRequired("username")
	_ = tokenCmd.MarkFlagRequired("password")

	recoverCmd.Flags().DurationVar(&olderThan, "older-than", 0, "Refund held reservations idle longer than this; defaults to STALE_RESERVATION_AGE")

	Cmd.AddCommand(createCmd, grantCmd, balanceCmd, historyCmd, tokenCmd, recoverCmd)
}

// Cmd represents the account command
var Cmd = &cobra.Command{
	Use:   "account",
	Short: "Manage accounts and their credits",
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account with the starting credit grant",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, cleanup, err := cmdutil.AccountsRuntime()
		if err != nil {
			return err
		}
		defer cleanup()

		acc, err := rt.Accounts.Create(cmd.Context(), username, email, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created account #%d %s with %d credit(s)\n", acc.ID, acc.Username, acc.CreditBalance)
		return nil
	},
}

var grantCmd = &cobra.Command{
	Use:   "grant <account>",
	Short: "Add credits to an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, cleanup, err := cmdutil.AccountsRuntime()
		if err != nil {
			return err
		}
		defer cleanup()

		acc, err := cmdutil.ResolveAccount(cmd.Context(), rt, args[0])
		if err != nil {
			return err
		}
		balance, err := rt.Ledger.Grant(cmd.Context(), acc.ID, amount, reason)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "granted %d credit(s) to %s, balance %d\n", amount, acc.Username, balance)
		return nil
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance <account>",
	Short: "Show the credit balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, cleanup, err := cmdutil.AccountsRuntime()
		if err != nil {
			return err
		}
		defer cleanup()

		acc, err := cmdutil.ResolveAccount(cmd.Context(), rt, args[0])
		if err != nil {
			return err
		}
		balance, err := rt.Ledger.Balance(cmd.Context(), acc.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d credit(s)\n", acc.Username, balance)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <account>",
	Short: "Show recent credit changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, cleanup, err := cmdutil.AccountsRuntime()
		if err != nil {
			return err
		}
		defer cleanup()

		acc, err := cmdutil.ResolveAccount(cmd.Context(), rt, args[0])
		if err != nil {
			return err
		}
		txs, err := rt.Ledger.History(cmd.Context(), acc.ID, limit)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tTYPE\tAMOUNT\tBALANCE\tREASON")
		for _, tx := range txs {
			fmt.Fprintf(tw, "%s\t%s\t%+d\t%d\t%s\n",
				tx.CreatedAt.Local().Format(time.DateTime), tx.Type, tx.Amount, tx.BalanceAfter, tx.Reason)
		}
		return tw.Flush()
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print an API bearer token after checking the password",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, cleanup, err := cmdutil.AccountsRuntime()
		if err != nil {
			return err
		}
		defer cleanup()

		secret := rt.Settings.Auth.JWTSecret
		if err := config.ValidateSecret(secret, "JWT_SECRET"); err != nil {
			return err
		}
		acc, err := rt.Accounts.Authenticate(cmd.Context(), username, password)
		if err != nil {
			return err
		}
		token, err := accounts.IssueToken(secret, acc.ID, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Refund reservations left held by interrupted jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, cleanup, err := cmdutil.AccountsRuntime()
		if err != nil {
			return err
		}
		defer cleanup()

		age := olderThan
		if age <= 0 {
			age = rt.Settings.Credits.StaleReservationAge
		}
		n, err := rt.Ledger.RecoverStale(cmd.Context(), age)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "refunded %d reservation(s)\n", n)
		return nil
	},
}
