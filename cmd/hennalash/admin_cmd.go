package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hennalash/go-client/booking"
	"github.com/hennalash/go-client/maintenance"
	"github.com/hennalash/go-client/tui"
)

func (a *app) requireAdmin() bool {
	if !a.requireAuth() {
		return false
	}
	if !a.session.IsAdmin() {
		tui.ShowWarning("Cette commande est réservée aux administrateurs.")
		return false
	}
	return true
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Studio administration",
}

var maintenanceCmd = &cobra.Command{
	Use:   "maintenance",
	Short: "Inspect or toggle maintenance mode",
}

var maintenanceStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current maintenance state",
	RunE: run(func(a *app, cmd *cobra.Command, args []string) error {
		state := a.gate.Refetch(cmd.Context())
		status := a.gate.Status()
		switch state {
		case maintenance.StateOperational:
			tui.ShowSuccess("Site opérationnel.")
		case maintenance.StateBypassed:
			tui.ShowWarning("Maintenance active (contournée par votre session admin) : %s", status.Message)
		case maintenance.StateBlocked:
			tui.ShowWarning("Maintenance active : %s", status.Message)
		default:
			tui.ShowWarning("État inconnu.")
		}
		if status.EnabledAt != nil {
			fmt.Printf("  activée le %s par %s\n", status.EnabledAt.Format("02/01/2006 15:04"), status.EnabledBy)
		}
		return nil
	}),
}

var maintenanceOnCmd = &cobra.Command{
	Use:   "on [message]",
	Short: "Enable maintenance mode",
	Args:  cobra.MaximumNArgs(1),
	RunE: run(func(a *app, cmd *cobra.Command, args []string) error {
		if !a.requireAdmin() {
			return nil
		}
		message := "Le site est en maintenance. Merci de revenir plus tard."
		if len(args) > 0 {
			message = args[0]
		}
		if !tui.Ask(a.logger, "Activer le mode maintenance ?", false) {
			return nil
		}
		if _, err := a.gate.Toggle(cmd.Context(), true, message); err != nil {
			tui.ShowError("%s", userMessage(err))
			return nil
		}
		tui.ShowSuccess("Mode maintenance activé.")
		return nil
	}),
}

var maintenanceOffCmd = &cobra.Command{
	Use:   "off",
	Short: "Disable maintenance mode",
	RunE: run(func(a *app, cmd *cobra.Command, args []string) error {
		if !a.requireAdmin() {
			return nil
		}
		if _, err := a.gate.Toggle(cmd.Context(), false, ""); err != nil {
			tui.ShowError("%s", userMessage(err))
			return nil
		}
		tui.ShowSuccess("Mode maintenance désactivé.")
		return nil
	}),
}

var slotAddCmd = &cobra.Command{
	Use:   "slot-add <date> <time>",
	Short: "Publish a new bookable slot",
	Args:  cobra.ExactArgs(2),
	RunE: run(func(a *app, cmd *cobra.Command, args []string) error {
		if !a.requireAdmin() {
			return nil
		}
		var slot booking.Slot
		var err error
		tui.ShowSpinner("Création du créneau ...", func() {
			slot, err = a.booking.CreateSlot(cmd.Context(), args[0], args[1])
		})
		if err != nil {
			tui.ShowError("%s", userMessage(err))
			return nil
		}
		tui.ShowSuccess("Créneau %s publié (%s %s).", slot.ID, slot.Date, slot.Time)
		return nil
	}),
}

var slotDeleteCmd = &cobra.Command{
	Use:   "slot-delete <slot-id>",
	Short: "Remove a slot",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(a *app, cmd *cobra.Command, args []string) error {
		if !a.requireAdmin() {
			return nil
		}
		if err := a.booking.DeleteSlot(cmd.Context(), args[0]); err != nil {
			tui.ShowError("%s", userMessage(err))
			return nil
		}
		tui.ShowSuccess("Créneau supprimé.")
		return nil
	}),
}

var confirmCmd = &cobra.Command{
	Use:   "confirm <appointment-id>",
	Short: "Confirm a pending appointment",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(a *app, cmd *cobra.Command, args []string) error {
		if !a.requireAdmin() {
			return nil
		}
		appt, err := a.booking.UpdateAppointmentStatus(cmd.Context(), args[0], booking.StatusConfirmed)
		if err != nil {
			tui.ShowError("%s", userMessage(err))
			return nil
		}
		tui.ShowSuccess("Rendez-vous %s confirmé.", appt.ID)
		return nil
	}),
}

var reviewApproveCmd = &cobra.Command{
	Use:   "review-approve <review-id>",
	Short: "Publish a pending review",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(a *app, cmd *cobra.Command, args []string) error {
		if !a.requireAdmin() {
			return nil
		}
		if _, err := a.booking.ApproveReview(cmd.Context(), args[0]); err != nil {
			tui.ShowError("%s", userMessage(err))
			return nil
		}
		tui.ShowSuccess("Avis publié.")
		return nil
	}),
}

var reviewDeleteCmd = &cobra.Command{
	Use:   "review-delete <review-id>",
	Short: "Delete a review",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(a *app, cmd *cobra.Command, args []string) error {
		if !a.requireAdmin() {
			return nil
		}
		if !tui.Ask(a.logger, "Supprimer cet avis ?", false) {
			return nil
		}
		if err := a.booking.DeleteReview(cmd.Context(), args[0]); err != nil {
			tui.ShowError("%s", userMessage(err))
			return nil
		}
		tui.ShowSuccess("Avis supprimé.")
		return nil
	}),
}

func init() {
	maintenanceCmd.AddCommand(maintenanceStatusCmd, maintenanceOnCmd, maintenanceOffCmd)
	adminCmd.AddCommand(maintenanceCmd, slotAddCmd, slotDeleteCmd, confirmCmd, reviewApproveCmd, reviewDeleteCmd)
	rootCmd.AddCommand(adminCmd)
}
