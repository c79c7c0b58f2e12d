package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"autonotes/internal/notes"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates an MCP server exposing the note pipeline as tools
func NewServer(svc *notes.Service, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"AutoNotes",
		version,
		server.WithToolCapabilities(true),
	)

	// Tool: generate_note - Run a transcript through the LLM and store the note
	s.AddTool(
		mcp.NewTool("generate_note",
			mcp.WithDescription("Turn a raw meeting transcript into a structured note (summary, action items, decisions, keywords) and store it. Returns the stored note including its note_id."),
			mcp.WithString("transcript",
				mcp.Required(),
				mcp.Description("Raw meeting transcript text (max 100,000 characters)"),
			),
		),
		handleGenerateNote(svc),
	)

	// Tool: get_note - Get a specific note by ID
	s.AddTool(
		mcp.NewTool("get_note",
			mcp.WithDescription("Get a stored meeting note by its ID. Use this when you have a note_id and need the full note."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The note_id returned when the note was created"),
			),
			mcp.WithString("format",
				mcp.Description("Optional: 'json' (default) or 'markdown'"),
			),
		),
		handleGetNote(svc),
	)

	// Tool: list_notes - Newest notes first
	s.AddTool(
		mcp.NewTool("list_notes",
			mcp.WithDescription("List stored meeting notes, newest first. Use this to see recent meetings or to page through history."),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of notes to return (default: 50, max: 100)"),
			),
			mcp.WithNumber("skip",
				mcp.Description("Number of notes to skip for pagination (default: 0)"),
			),
		),
		handleListNotes(svc),
	)

	// Tool: delete_note - Remove a note
	s.AddTool(
		mcp.NewTool("delete_note",
			mcp.WithDescription("Delete a stored meeting note by its ID."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The note_id to delete"),
			),
		),
		handleDeleteNote(svc),
	)

	return s
}

func handleGenerateNote(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		transcript, err := req.RequireString("transcript")
		if err != nil {
			return mcp.NewToolResultError("transcript is required"), nil
		}

		note, err := svc.Create(ctx, map[string]any{"transcript": transcript})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to generate note: %v", err)), nil
		}

		return jsonResult(note), nil
	}
}

func handleGetNote(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}

		note, err := svc.Get(ctx, id)
		if errors.Is(err, notes.ErrNoteNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("note %s not found", id)), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to get note: %v", err)), nil
		}

		switch format := req.GetString("format", "json"); format {
		case "json":
			return jsonResult(note), nil
		case "markdown":
			return mcp.NewToolResultText(notes.Markdown(note)), nil
		default:
			return mcp.NewToolResultError(fmt.Sprintf("unknown format %q, expected json or markdown", format)), nil
		}
	}
}

func handleListNotes(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := req.GetInt("limit", notes.DefaultLimit)
		skip := req.GetInt("skip", 0)

		result, err := svc.List(ctx, limit, skip)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list notes: %v", err)), nil
		}

		return jsonResult(result), nil
	}
}

func handleDeleteNote(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}

		err = svc.Delete(ctx, id)
		if errors.Is(err, notes.ErrNoteNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("note %s not found", id)), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to delete note: %v", err)), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("deleted note %s", id)), nil
	}
}

// Helper functions

func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}
