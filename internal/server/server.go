// SPDX-License-Identifier: Apache-2.0

// Package server assembles the MCP server that exposes the appointment tools.
package server

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/NarenAdithya14/ocr-appointments/internal/appointment"
	"github.com/NarenAdithya14/ocr-appointments/internal/intake"
	"github.com/NarenAdithya14/ocr-appointments/internal/tool"
)

// Name is the implementation name reported to MCP clients.
const Name = "ocr-appointments"

const instructions = "Tools for turning appointment requests written as text or captured in images " +
	"into structured appointments. Call schedule_appointment or schedule_from_image first. " +
	"When the status is needs_clarification, ask the user about the field named in the message " +
	"and pass the answer to clarify_appointment."

// Deps are the collaborators the server's tools use.
type Deps struct {
	Pipeline *appointment.Pipeline
	Intake   *intake.Service
	Logger   *slog.Logger
	Version  string
}

// New creates an MCP server with every appointment tool registered.
func New(deps Deps) *mcp.Server {
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	s := mcp.NewServer(&mcp.Implementation{Name: Name, Version: version}, &mcp.ServerOptions{
		Instructions: instructions,
		Logger:       deps.Logger,
	})

	ts := tool.New(deps.Pipeline, deps.Intake)
	mcp.AddTool(s, tool.MetadataScheduleAppointment, ts.ScheduleAppointment)
	mcp.AddTool(s, tool.MetadataScheduleFromImage, ts.ScheduleFromImage)
	mcp.AddTool(s, tool.MetadataExtractEntities, ts.ExtractEntities)
	mcp.AddTool(s, tool.MetadataCheckEntities, ts.CheckEntities)
	mcp.AddTool(s, tool.MetadataNormalizeEntities, ts.NormalizeEntities)
	mcp.AddTool(s, tool.MetadataClarifyAppointment, ts.ClarifyAppointment)
	return s
}

// ServeStdio runs s over stdin/stdout until ctx is done or the client
// disconnects.
func ServeStdio(ctx context.Context, s *mcp.Server) error {
	return s.Run(ctx, &mcp.StdioTransport{})
}
