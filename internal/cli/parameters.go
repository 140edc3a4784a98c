package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/cccteam/fxadmin/guard"
	"github.com/cccteam/fxadmin/ratesapi"
	"github.com/spf13/cobra"
)

func parametersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parameters",
		Short: "Administra los parámetros del sistema",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.guard.PreRunE(guard.Route{Name: "parameters"})(cmd, args)
		},
	}

	cmd.AddCommand(
		parametersListCmd(app),
		parametersCreateCmd(app),
		parametersUpdateCmd(app),
		parametersDeleteCmd(app),
	)

	return cmd
}

func parametersListCmd(app *App) *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Lista los parámetros, opcionalmente por código padre",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var params []ratesapi.Parameter
			var err error
			if parent != "" {
				params, err = app.api.ParametersByParent(cmd.Context(), parent)
			} else {
				params, err = app.api.Parameters(cmd.Context())
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCÓDIGO\tDESCRIPCIÓN\tORDEN\tACTIVO")
			for _, p := range params {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%v\n", p.ID, p.Code, p.Description, p.DisplayOrder, p.IsActive)
			}

			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "código del parámetro padre")

	return cmd
}

func parametersCreateCmd(app *App) *cobra.Command {
	var req ratesapi.CreateParameterRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Crea un parámetro",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.requireEdit(); err != nil {
				return err
			}

			req.CreatedBy = app.session.UserEmail()
			created, err := app.api.CreateParameter(cmd.Context(), req)
			if err != nil {
				return err
			}
			cmd.Printf("Parámetro creado: %s\n", created.ID)

			return nil
		},
	}
	cmd.Flags().StringVar(&req.Code, "code", "", "código del parámetro")
	cmd.Flags().StringVar(&req.Description, "description", "", "descripción corta")
	cmd.Flags().StringVar(&req.LongDescription, "long-description", "", "descripción larga")
	cmd.Flags().StringVar(&req.ParentID, "parent-id", "", "id del parámetro padre")
	cmd.Flags().IntVar(&req.DisplayOrder, "order", 0, "orden de despliegue")
	cmd.Flags().StringVar(&req.TextValue, "text", "", "valor de texto")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func parametersUpdateCmd(app *App) *cobra.Command {
	var (
		req   ratesapi.UpdateParameterRequest
		order int
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Actualiza un parámetro",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireEdit(); err != nil {
				return err
			}

			if cmd.Flags().Changed("order") {
				req.DisplayOrder = &order
			}
			req.ModifiedBy = app.session.UserEmail()

			updated, err := app.api.UpdateParameter(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			cmd.Printf("Parámetro actualizado: %s\n", updated.ID)

			return nil
		},
	}
	cmd.Flags().StringVar(&req.Description, "description", "", "descripción corta")
	cmd.Flags().StringVar(&req.LongDescription, "long-description", "", "descripción larga")
	cmd.Flags().IntVar(&order, "order", 0, "orden de despliegue")
	cmd.Flags().StringVar(&req.TextValue, "text", "", "valor de texto")

	return cmd
}

func parametersDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Desactiva un parámetro",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireEdit(); err != nil {
				return err
			}

			if err := app.api.DeleteParameter(cmd.Context(), args[0], app.session.UserEmail()); err != nil {
				return err
			}
			cmd.Println("Parámetro desactivado.")

			return nil
		},
	}
}
