package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/cccteam/fxadmin/guard"
	"github.com/cccteam/fxadmin/ratesapi"
	"github.com/spf13/cobra"
)

func ratesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Administra las tasas de cambio",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.guard.PreRunE(guard.Route{Name: "exchange-rates"})(cmd, args)
		},
	}

	cmd.AddCommand(
		ratesListCmd(app),
		ratesGetCmd(app),
		ratesCreateCmd(app),
		ratesUpdateCmd(app),
		ratesDeleteCmd(app),
	)

	return cmd
}

func ratesListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lista todas las tasas de cambio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rates, err := app.api.ExchangeRates(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tORIGEN\tDESTINO\tTASA\tACTIVA")
			for _, rate := range rates {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.4f\t%v\n", rate.ID, currencyCode(rate.CurrencySource, rate.CurrencySourceID), currencyCode(rate.CurrencyTarget, rate.CurrencyTargetID), rate.Rate, rate.IsActive)
			}

			return w.Flush()
		},
	}
}

func ratesGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Muestra una tasa de cambio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rate, err := app.api.ExchangeRate(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			cmd.Printf("ID:      %s\n", rate.ID)
			cmd.Printf("Origen:  %s\n", currencyCode(rate.CurrencySource, rate.CurrencySourceID))
			cmd.Printf("Destino: %s\n", currencyCode(rate.CurrencyTarget, rate.CurrencyTargetID))
			cmd.Printf("Tasa:    %.4f\n", rate.Rate)
			cmd.Printf("Activa:  %v\n", rate.IsActive)

			return nil
		},
	}
}

func ratesCreateCmd(app *App) *cobra.Command {
	var (
		rate   float64
		source string
		target string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Crea una tasa de cambio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.requireEdit(); err != nil {
				return err
			}

			created, err := app.api.CreateExchangeRate(cmd.Context(), ratesapi.CreateExchangeRateRequest{
				Rate:             rate,
				CurrencySourceID: source,
				CurrencyTargetID: target,
				CreatedBy:        app.session.UserEmail(),
			})
			if err != nil {
				return err
			}
			cmd.Printf("Tasa creada: %s\n", created.ID)

			return nil
		},
	}
	cmd.Flags().Float64Var(&rate, "rate", 0, "valor de la tasa")
	cmd.Flags().StringVar(&source, "source", "", "id de la moneda de origen")
	cmd.Flags().StringVar(&target, "target", "", "id de la moneda de destino")
	_ = cmd.MarkFlagRequired("rate")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func ratesUpdateCmd(app *App) *cobra.Command {
	var (
		rate   float64
		source string
		target string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Actualiza una tasa de cambio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireEdit(); err != nil {
				return err
			}

			req := ratesapi.UpdateExchangeRateRequest{
				CurrencySourceID: source,
				CurrencyTargetID: target,
				ModifiedBy:       app.session.UserEmail(),
			}
			if cmd.Flags().Changed("rate") {
				req.Rate = &rate
			}

			updated, err := app.api.UpdateExchangeRate(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			cmd.Printf("Tasa actualizada: %s\n", updated.ID)

			return nil
		},
	}
	cmd.Flags().Float64Var(&rate, "rate", 0, "nuevo valor de la tasa")
	cmd.Flags().StringVar(&source, "source", "", "nueva moneda de origen")
	cmd.Flags().StringVar(&target, "target", "", "nueva moneda de destino")

	return cmd
}

func ratesDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Desactiva una tasa de cambio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireEdit(); err != nil {
				return err
			}

			if err := app.api.DeleteExchangeRate(cmd.Context(), args[0], app.session.UserEmail()); err != nil {
				return err
			}
			cmd.Println("Tasa desactivada.")

			return nil
		},
	}
}

func currencyCode(info *ratesapi.CurrencyInfo, fallback string) string {
	if info != nil && info.Code != "" {
		return info.Code
	}

	return fallback
}
