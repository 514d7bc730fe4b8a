package main

import (
	"github.com/spf13/cobra"
)

const serviceName = "booking-api"

// NewRootCmd creates the root command of the booking API.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "booking-api",
		Short: "Booking backend: accounts, sessions and password reset",
		Long: `booking-api serves registration, login and the e-mail based
password reset flow of the booking frontend.

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
