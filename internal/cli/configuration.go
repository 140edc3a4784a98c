package cli

import (
	"strconv"

	"github.com/cccteam/fxadmin/config"
	"github.com/cccteam/fxadmin/guard"
	"github.com/go-playground/errors/v5"
	"github.com/spf13/cobra"
)

// redact hides a secret from the configuration listing.
func redact(secret string) string {
	if secret == "" {
		return "(no configurada)"
	}

	return "********"
}

// cachePath renders the token cache location, naming the in-memory case.
func cachePath(path string) string {
	if path == "" {
		return "(en memoria)"
	}

	return path
}

func configurationCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configuration",
		Short: "Consulta y ajusta la configuración",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.guard.PreRunE(guard.Route{Name: "configuration"})(cmd, args)
		},
	}

	cmd.AddCommand(configurationShowCmd(app), configurationSetCmd(app))

	return cmd
}

func configurationShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Muestra la configuración activa",
		RunE: func(cmd *cobra.Command, _ []string) error {
			prefs, err := config.LoadPreferences(config.PreferencesPath())
			if err != nil {
				return err
			}

			cmd.Printf("API:             %s\n", app.cfg.API.URL)
			cmd.Printf("Function key:    %s\n", redact(app.cfg.API.FunctionKey))
			cmd.Printf("Authority:       %s\n", app.cfg.Azure.Authority)
			cmd.Printf("Client ID:       %s\n", app.cfg.Azure.ClientID)
			cmd.Printf("Redirect URI:    %s\n", app.cfg.Azure.RedirectURI)
			cmd.Printf("Scopes:          %v\n", app.cfg.Azure.Scopes)
			cmd.Printf("Token cache:     %s\n", cachePath(app.cfg.Cache.Path))
			cmd.Println()
			cmd.Printf("Moneda base:     %s\n", prefs.BaseCurrency)
			cmd.Printf("Idioma:          %s\n", prefs.Language)
			cmd.Printf("Modo oscuro:     %v\n", prefs.DarkMode)
			cmd.Printf("Notificaciones:  %v\n", prefs.Notifications)

			return nil
		},
	}
}

func configurationSetCmd(_ *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <clave> <valor>",
		Short: "Ajusta una preferencia (base-currency, language, dark-mode, notifications)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.PreferencesPath()
			prefs, err := config.LoadPreferences(path)
			if err != nil {
				return err
			}

			if err := setPreference(&prefs, args[0], args[1]); err != nil {
				return err
			}

			if err := config.SavePreferences(path, prefs); err != nil {
				return err
			}
			cmd.Println("Configuración guardada exitosamente")

			return nil
		},
	}
}

func setPreference(prefs *config.Preferences, key, value string) error {
	switch key {
	case "base-currency":
		prefs.BaseCurrency = value
	case "language":
		prefs.Language = value
	case "dark-mode", "notifications":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return errors.Wrap(err, "strconv.ParseBool()")
		}
		if key == "dark-mode" {
			prefs.DarkMode = enabled
		} else {
			prefs.Notifications = enabled
		}
	default:
		return errors.New("preferencia desconocida: " + key)
	}

	return nil
}
