// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/spf13/cobra"

	"github.com/NarenAdithya14/ocr-appointments/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the appointment tools over MCP on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := server.New(server.Deps{
				Pipeline: a.pipeline,
				Intake:   a.intake,
				Logger:   a.logger,
				Version:  Version,
			})
			a.logger.Info("serving MCP over stdio", "version", Version, "timezone", a.cfg.Timezone)
			return server.ServeStdio(cmd.Context(), s)
		},
	}
}
