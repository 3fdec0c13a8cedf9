package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"goa.design/clue/log"

	"github.com/botanarede/beddel-alpha/manifest"
	"github.com/botanarede/beddel-alpha/stream"
	"github.com/botanarede/beddel-alpha/telemetry"
	"github.com/botanarede/beddel-alpha/workflow"
)

func newRunCmd() *cobra.Command {
	var (
		manifestPath string
		inputJSON    string
		inputFile    string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a workflow manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			input, err := loadInput(inputJSON, inputFile)
			if err != nil {
				return err
			}
			return runManifest(cmd.Context(), manifestPath, input, verbose)
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "Path to the workflow manifest (required)")
	cmd.Flags().StringVar(&inputJSON, "input", "{}", "Input value as a JSON object")
	cmd.Flags().StringVar(&inputFile, "input-file", "", "Read the input JSON object from a file instead of --input")
	cmd.MarkFlagRequired("manifest")

	return cmd
}

func loadInput(inputJSON, inputFile string) (map[string]any, error) {
	data := []byte(inputJSON)
	if inputFile != "" {
		raw, err := os.ReadFile(inputFile)
		if err != nil {
			return nil, fmt.Errorf("read input file: %w", err)
		}
		data = raw
	}
	var input map[string]any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("parse input JSON: %w", err)
	}
	return input, nil
}

func runManifest(ctx context.Context, manifestPath string, input map[string]any, verbose bool) error {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}

	registerProviders()

	opts := workflow.Options{}
	if verbose {
		ctx = log.Context(ctx, log.WithOutput(os.Stderr), log.WithDebug())
		opts.Logger = telemetry.NewClueLogger()
	}
	exec := workflow.New(m, opts)

	result, err := exec.Execute(ctx, input)
	if err != nil {
		return fmt.Errorf("execute workflow: %w", err)
	}

	switch v := result.(type) {
	case workflow.Response:
		s, ok := v.Stream.(stream.Stream)
		if !ok {
			return errors.New("agentctl: response stream has unexpected type")
		}
		return printStream(s)
	default:
		return printJSON(result)
	}
}

func printStream(s stream.Stream) error {
	defer s.Close()
	for {
		ev, err := s.Recv()
		if err == io.EOF {
			fmt.Println()
			return nil
		}
		if err != nil {
			return err
		}
		switch ev.Type {
		case stream.EventTextDelta:
			fmt.Print(ev.Delta)
		default:
			if err := printJSON(ev); err != nil {
				return err
			}
		}
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
