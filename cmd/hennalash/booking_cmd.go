package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hennalash/go-client/api"
	"github.com/hennalash/go-client/booking"
	"github.com/hennalash/go-client/tui"
)

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "Browse available appointment slots",
	RunE: run(func(a *app, cmd *cobra.Command, args []string) error {
		if !a.guard(cmd.Context()) {
			return nil
		}
		all, _ := cmd.Flags().GetBool("all")

		var slots []booking.Slot
		var err error
		tui.ShowSpinner("Chargement des créneaux ...", func() {
			slots, err = a.booking.ListSlots(cmd.Context(), !all)
		})
		if err != nil {
			tui.ShowError("%s", userMessage(err))
			return nil
		}
		if len(slots) == 0 {
			tui.ShowWarning("Aucun créneau disponible pour le moment.")
			return nil
		}
		for _, s := range slots {
			marker := "✓"
			if !s.Available {
				marker = "✕"
			}
			fmt.Printf("  %s  %s  %s  (%s)\n", marker, s.Date, s.Time, s.ID)
		}
		return nil
	}),
}

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Book an appointment on an available slot",
	RunE: run(func(a *app, cmd *cobra.Command, args []string) error {
		if !a.guard(cmd.Context()) {
			return nil
		}
		if !a.requireAuth() {
			return nil
		}

		var slots []booking.Slot
		var err error
		tui.ShowSpinner("Chargement des créneaux ...", func() {
			slots, err = a.booking.ListSlots(cmd.Context(), true)
		})
		if err != nil {
			tui.ShowError("%s", userMessage(err))
			return nil
		}
		if len(slots) == 0 {
			tui.ShowWarning("Aucun créneau disponible pour le moment.")
			return nil
		}

		var options []tui.Option
		for _, s := range slots {
			options = append(options, tui.Option{
				ID:   s.ID,
				Text: fmt.Sprintf("%s %s", s.Date, s.Time),
			})
		}
		slotID := tui.Select(a.logger, "Choisissez un créneau", "", options)

		service, _ := cmd.Flags().GetString("service")
		if service == "" {
			if plan, ok, _ := a.plans.Take(cmd.Context()); ok {
				service = plan.Name
			}
		}
		if service == "" {
			service = tui.Select(a.logger, "Quelle prestation ?", "", []tui.Option{
				{ID: "henna-simple", Text: "Henné simple", Selected: true},
				{ID: "henna-mariage", Text: "Henné mariée"},
				{ID: "cils", Text: "Extension de cils"},
			})
		}
		note := tui.Input(a.logger, "Une précision pour l'artiste ?", "facultatif")

		var appt booking.Appointment
		tui.ShowSpinner("Réservation ...", func() {
			appt, err = a.booking.Book(cmd.Context(), booking.BookingRequest{
				SlotID:  slotID,
				Service: service,
				Note:    note,
			})
		})
		if err != nil {
			tui.ShowError("%s", userMessage(err))
			return nil
		}
		tui.ShowSuccess("Rendez-vous %s enregistré (%s).", appt.ID, appt.Status)
		return nil
	}),
}

var appointmentsCmd = &cobra.Command{
	Use:   "appointments",
	Short: "List your appointments",
	RunE: run(func(a *app, cmd *cobra.Command, args []string) error {
		if !a.guard(cmd.Context()) {
			return nil
		}
		if !a.requireAuth() {
			return nil
		}
		all, _ := cmd.Flags().GetBool("all")

		var appts []booking.Appointment
		var err error
		tui.ShowSpinner("Chargement des rendez-vous ...", func() {
			if all && a.session.IsAdmin() {
				appts, err = a.booking.ListAllAppointments(cmd.Context())
			} else {
				appts, err = a.booking.ListMyAppointments(cmd.Context())
			}
		})
		if err != nil {
			tui.ShowError("%s", userMessage(err))
			return nil
		}
		if len(appts) == 0 {
			tui.ShowWarning("Aucun rendez-vous.")
			return nil
		}
		for _, ap := range appts {
			when := ""
			if ap.Slot != nil {
				when = fmt.Sprintf("%s %s  ", ap.Slot.Date, ap.Slot.Time)
			}
			fmt.Printf("  %s%s  %s  (%s)\n", when, ap.Service, ap.Status, ap.ID)
		}
		return nil
	}),
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <appointment-id>",
	Short: "Cancel one of your appointments",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(a *app, cmd *cobra.Command, args []string) error {
		if !a.requireAuth() {
			return nil
		}
		if !tui.Ask(a.logger, "Annuler ce rendez-vous ?", false) {
			return nil
		}
		var err error
		tui.ShowSpinner("Annulation ...", func() {
			err = a.booking.CancelAppointment(cmd.Context(), args[0])
		})
		if err != nil {
			tui.ShowError("%s", userMessage(err))
			return nil
		}
		tui.ShowSuccess("Rendez-vous annulé.")
		return nil
	}),
}

var reviewsCmd = &cobra.Command{
	Use:   "reviews",
	Short: "Read approved client reviews",
	RunE: run(func(a *app, cmd *cobra.Command, args []string) error {
		var reviews []booking.Review
		var err error
		tui.ShowSpinner("Chargement des avis ...", func() {
			reviews, err = a.booking.ListReviews(cmd.Context())
		})
		if err != nil {
			tui.ShowError("%s", userMessage(err))
			return nil
		}
		if len(reviews) == 0 {
			tui.ShowWarning("Pas encore d'avis.")
			return nil
		}
		for _, r := range reviews {
			fmt.Printf("  %s (%d/5): %s\n", r.Name, r.Rating, r.Comment)
		}
		return nil
	}),
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Leave a review",
	RunE: run(func(a *app, cmd *cobra.Command, args []string) error {
		if !a.guard(cmd.Context()) {
			return nil
		}
		if !a.requireAuth() {
			return nil
		}
		user, _ := a.session.CurrentUser()
		rating := tui.Select(a.logger, "Votre note", "", []tui.Option{
			{ID: "5", Text: "5 étoiles", Selected: true},
			{ID: "4", Text: "4 étoiles"},
			{ID: "3", Text: "3 étoiles"},
			{ID: "2", Text: "2 étoiles"},
			{ID: "1", Text: "1 étoile"},
		})
		comment := tui.Input(a.logger, "Votre avis", "")

		var err error
		tui.ShowSpinner("Envoi ...", func() {
			_, err = a.booking.SubmitReview(cmd.Context(), user.Name, int(rating[0]-'0'), comment)
		})
		if err != nil {
			tui.ShowError("%s", userMessage(err))
			return nil
		}
		tui.ShowSuccess("Merci ! Votre avis sera publié après modération.")
		return nil
	}),
}

// userMessage prefers the backend's detail string when one was returned.
func userMessage(err error) string {
	if detail := api.DetailOf(err); detail != "" {
		return detail
	}
	if api.StatusOf(err) == 0 {
		return "Impossible de contacter le serveur. Vérifiez votre connexion."
	}
	return "Erreur du serveur, veuillez réessayer."
}

func init() {
	slotsCmd.Flags().Bool("all", false, "include already-booked slots")
	bookCmd.Flags().String("service", "", "service to book (prompted when omitted)")
	appointmentsCmd.Flags().Bool("all", false, "admin: list every client's appointments")
	rootCmd.AddCommand(slotsCmd, bookCmd, appointmentsCmd, cancelCmd, reviewsCmd, reviewCmd)
}
