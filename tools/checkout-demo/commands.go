package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/xtopay/checkout-backend/simulation"
)

type clientFactory func() *simulation.APIClient

func initiateCmd(client clientFactory) *cobra.Command {
	form := simulation.NewDemoForm()
	var verbose bool

	cmd := &cobra.Command{
		Use:   "initiate",
		Short: "Submit the integration demo form and print the redirect",
		RunE: func(cmd *cobra.Command, args []string) error {
			demo := simulation.NewIntegrationDemo(client(), newLogger(verbose))
			redirect, err := demo.Submit(cmd.Context(), form)
			if err != nil {
				return fmt.Errorf("%s: %w", demo.Error(), err)
			}
			res := demo.Result()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "checkoutId:      %s\n", res.CheckoutID)
			fmt.Fprintf(out, "clientReference: %s\n", res.ClientReference)
			fmt.Fprintf(out, "expiresAt:       %s\n", res.ExpiresAt.Format(time.RFC3339))
			fmt.Fprintf(out, "redirect:        %s\n", redirect)
			return nil
		},
	}

	cmd.Flags().StringVarP(&form.Amount, "amount", "a", form.Amount, "amount to charge")
	cmd.Flags().StringVarP(&form.Name, "name", "n", "", "payer name")
	cmd.Flags().StringVarP(&form.Phone, "phone", "p", "", "payer phone number")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log flow events")

	return cmd
}

func payCmd(client clientFactory) *cobra.Command {
	var (
		method, otp, phone, provider string
		seed                         int64
		retries                      int
		verbose                      bool
		card                         simulation.CardDetails
	)

	cmd := &cobra.Command{
		Use:   "pay [clientReference]",
		Short: "Walk the hosted checkout page with a simulated payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			h := simulation.NewHostedCheckout(client(), rand.New(rand.NewSource(seed)), newLogger(verbose))

			if err := h.Load(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("%s: %w", h.LoadError(), err)
			}
			summary, _ := h.Summary()
			fmt.Fprintf(out, "%s <%s>\n%.2f %s\n", summary.MerchantName, summary.MerchantEmail, summary.Amount, summary.Currency)

			m := simulation.Method(method)
			if err := h.SelectMethod(m); err != nil {
				return err
			}

			var details interface{}
			switch m {
			case simulation.MethodCard:
				details = card
			case simulation.MethodMobileMoney:
				details = simulation.MobileMoneyDetails{Provider: provider, Phone: phone}
			case simulation.MethodWallet:
				details = simulation.WalletDetails{Provider: provider, Account: phone}
			}
			if err := h.SubmitDetails(details); err != nil {
				return err
			}

			for attempt := 0; h.Stage() == simulation.StageOTPPending; attempt++ {
				modal, err := h.VerifyOTP(otp)
				if err != nil {
					return err
				}
				if !modal.CanRetry() || attempt >= retries {
					break
				}
				fmt.Fprintf(out, "%s: %s\n", modal.Title, modal.Description)
				if err := h.Retry(); err != nil {
					return err
				}
			}

			modal := h.Modal()
			fmt.Fprintf(out, "%s: %s\n", modal.Title, modal.Description)
			return nil
		},
	}

	cmd.Flags().StringVarP(&method, "method", "m", string(simulation.MethodMobileMoney), "mobileMoney, card, wallet or bnpl")
	cmd.Flags().StringVar(&otp, "otp", "123456", "verification code to enter")
	cmd.Flags().StringVar(&phone, "phone", "0241234567", "mobile money phone or wallet account")
	cmd.Flags().StringVar(&provider, "provider", "momo", "mobile money or wallet provider")
	cmd.Flags().StringVar(&card.HolderName, "card-name", "Demo Payer", "card holder name")
	cmd.Flags().StringVar(&card.Number, "card-number", "4111111111111111", "card number")
	cmd.Flags().StringVar(&card.Expiry, "card-expiry", "12/29", "card expiry (MM/YY)")
	cmd.Flags().StringVar(&card.CVV, "card-cvv", "123", "card security code")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for the OTP outcome (0 = time based)")
	cmd.Flags().IntVar(&retries, "retries", 0, "OTP retries after a failed verification")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log flow events")

	return cmd
}

func statusCmd(client clientFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "status [clientReference]",
		Short: "Print the derived checkout status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := client().Status(cmd.Context(), args[0])
			if simulation.IsNotFound(err) {
				return fmt.Errorf("no checkout with client reference %q: %w", args[0], err)
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "status:    %s\n", s.Status)
			fmt.Fprintf(out, "amount:    %.2f %s\n", s.Amount, s.Currency)
			fmt.Fprintf(out, "expiresAt: %s\n", s.ExpiresAt.Format(time.RFC3339))
			if s.PaidAt != nil {
				fmt.Fprintf(out, "paidAt:    %s via %s (%s)\n", s.PaidAt.Format(time.RFC3339), s.Channel, s.TransactionID)
			}
			return nil
		},
	}
}

func cancelCmd(client clientFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel [clientReference]",
		Short: "Cancel a checkout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := client().Cancel(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s at %s\n", res.Status, res.CancelledAt.Format(time.RFC3339))
			return nil
		},
	}
}
