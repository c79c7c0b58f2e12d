package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"autonotes/internal/notes"
	"autonotes/internal/schema"
)

var generateCmd = &cobra.Command{
	Use:   "generate [transcript-file]",
	Short: "Generate and store a note from a transcript file or stdin",
	Long: `Generate reads a transcript from the given file (or stdin when the
argument is omitted or "-"), runs it through the same pipeline as
POST /api/notes and prints the stored note as JSON.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	transcript, err := readTranscript(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	repo := newRepository(cfg)
	gen, err := newGenerator(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.LLMTimeout+30*time.Second)
	defer cancel()
	defer repo.Close(context.Background())

	svc := notes.NewService(repo, gen, logger)
	note, err := svc.Create(ctx, map[string]any{"transcript": transcript})
	if err != nil {
		if schema.IsRequestError(err) {
			return fmt.Errorf("invalid transcript: %w", err)
		}
		return fmt.Errorf("generate note: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(note)
}

func readTranscript(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}
	return string(data), nil
}
