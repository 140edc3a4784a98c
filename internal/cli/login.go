package cli

import (
	"context"

	"github.com/cccteam/fxadmin"
	"github.com/cccteam/fxadmin/authstate"
	"github.com/go-playground/errors/v5"
	"github.com/spf13/cobra"
)

func loginCmd(app *App) *cobra.Command {
	var (
		hint     string
		prompt   string
		redirect bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Inicia sesión con la cuenta corporativa",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := &fxadmin.LoginOptions{LoginHint: hint, Prompt: prompt}

			if redirect {
				return runRedirectLogin(cmd, app.session, opts)
			}

			result, err := app.session.Login(cmd.Context(), opts)
			if err != nil {
				return err
			}
			cmd.Printf("Sesión iniciada como %s\n", result.Account.Username)

			return nil
		},
	}
	cmd.Flags().StringVar(&hint, "hint", "", "correo a sugerir en el inicio de sesión")
	cmd.Flags().StringVar(&prompt, "prompt", "", "valor prompt de OIDC (p. ej. select_account)")
	cmd.Flags().BoolVar(&redirect, "redirect", false, "usar el flujo de redirección del navegador")

	return cmd
}

// runRedirectLogin logs in through the redirect flow. The login outcome
// lives in this process, so the command stays alive until the browser round
// trip settles the session, then consumes the outcome.
func runRedirectLogin(cmd *cobra.Command, session *fxadmin.Session, opts *fxadmin.LoginOptions) error {
	session.LoginRedirect(cmd.Context(), opts)
	cmd.Println("Continúe el inicio de sesión en el navegador.")

	if err := waitSettled(cmd.Context(), session); err != nil {
		return err
	}

	result, err := session.CompleteRedirectFlow(cmd.Context())
	if err != nil {
		return err
	}
	if result != nil {
		cmd.Printf("Sesión iniciada como %s\n", result.Account.Username)
	}

	return nil
}

// waitSettled blocks until the session state is neither initializing nor
// mid-transition.
func waitSettled(ctx context.Context, session *fxadmin.Session) error {
	settled := make(chan struct{}, 1)
	cancel := session.Watch(func(st authstate.State) {
		if st.Status == authstate.StatusInitializing || st.IsLoading {
			return
		}
		select {
		case settled <- struct{}{}:
		default:
		}
	})
	defer cancel()

	select {
	case <-settled:
		return nil
	case <-ctx.Done():
		return errors.Wrap(context.Cause(ctx), "waiting for the browser login")
	}
}

func logoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Cierra la sesión actual",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !app.session.IsAuthenticated() {
				cmd.Println("No hay sesión activa.")

				return nil
			}

			if err := app.session.Logout(cmd.Context(), nil); err != nil {
				return err
			}
			cmd.Println("Sesión cerrada.")

			return nil
		},
	}
}

func whoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Muestra el usuario autenticado y sus roles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user := app.session.CurrentUser()
			if user == nil {
				cmd.Println("No hay usuario autenticado")

				return nil
			}

			cmd.Printf("Usuario:  %s\n", user.Name)
			cmd.Printf("Correo:   %s\n", user.Email)
			cmd.Printf("Roles:    %v\n", user.Roles)
			cmd.Printf("Edición:  %v\n", app.session.CanEdit())

			return nil
		},
	}
}
