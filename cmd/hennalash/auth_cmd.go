package main

import (
	"github.com/spf13/cobra"

	"github.com/hennalash/go-client/auth"
	"github.com/hennalash/go-client/tui"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to your HennaLash account",
	RunE: run(func(a *app, cmd *cobra.Command, args []string) error {
		if a.session.IsAuthenticated() {
			user, _ := a.session.CurrentUser()
			tui.ShowSuccess("Déjà connecté en tant que %s", user.Email)
			return nil
		}

		email, _ := cmd.Flags().GetString("email")
		if email == "" {
			email = tui.Input(a.logger, "Email", "")
		}
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			password = tui.Password(a.logger, "Mot de passe", "")
		}

		var res auth.Result
		tui.ShowSpinner("Connexion ...", func() {
			res = a.session.Login(cmd.Context(), email, password)
		})
		if !res.Success {
			tui.ShowWarning("%s", res.Error)
			return nil
		}
		tui.ShowSuccess("Bienvenue %s (%s)", res.User.Name, res.RedirectPath)
		return nil
	}),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the saved session",
	RunE: run(func(a *app, cmd *cobra.Command, args []string) error {
		a.session.Logout(cmd.Context())
		tui.ShowSuccess("Déconnecté.")
		return nil
	}),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: run(func(a *app, cmd *cobra.Command, args []string) error {
		user, ok := a.session.CurrentUser()
		if !ok {
			tui.ShowWarning("Vous n'êtes pas connecté.")
			return nil
		}
		tui.ShowSuccess("%s <%s> (%s)", user.Name, user.Email, user.Role)
		return nil
	}),
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a HennaLash account",
	RunE: run(func(a *app, cmd *cobra.Command, args []string) error {
		if !a.guard(cmd.Context()) {
			return nil
		}
		reg := auth.Registration{
			Name:     tui.Input(a.logger, "Nom", ""),
			Email:    tui.Input(a.logger, "Email", ""),
			Phone:    tui.Input(a.logger, "Téléphone", "facultatif"),
			Password: tui.Password(a.logger, "Mot de passe", ""),
		}

		var res auth.Result
		tui.ShowSpinner("Création du compte ...", func() {
			res = a.session.Register(cmd.Context(), reg)
		})
		if !res.Success {
			tui.ShowWarning("%s", res.Error)
			return nil
		}
		tui.ShowSuccess("Compte créé. Bienvenue %s !", res.User.Name)
		return nil
	}),
}

var passwordResetCmd = &cobra.Command{
	Use:   "password-reset",
	Short: "Reset a forgotten password",
	RunE: run(func(a *app, cmd *cobra.Command, args []string) error {
		email := tui.Input(a.logger, "Email", "")

		var res auth.Result
		tui.ShowSpinner("Envoi du code ...", func() {
			res = a.session.RequestPasswordReset(cmd.Context(), email)
		})
		if !res.Success {
			tui.ShowWarning("%s", res.Error)
			return nil
		}

		code := tui.Input(a.logger, "Code reçu par email", "")
		newPassword := tui.Password(a.logger, "Nouveau mot de passe", "")
		tui.ShowSpinner("Mise à jour ...", func() {
			res = a.session.ConfirmPasswordReset(cmd.Context(), email, code, newPassword)
		})
		if !res.Success {
			tui.ShowWarning("%s", res.Error)
			return nil
		}
		tui.ShowSuccess("Mot de passe mis à jour.")
		return nil
	}),
}

func init() {
	loginCmd.Flags().String("email", "", "account email")
	loginCmd.Flags().String("password", "", "account password (prompted when omitted)")
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, registerCmd, passwordResetCmd)
}
