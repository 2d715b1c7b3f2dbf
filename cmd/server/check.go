package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/md2xlsx/webui/internal/config"
	"github.com/md2xlsx/webui/internal/intake"
	"github.com/md2xlsx/webui/internal/models"
	"github.com/md2xlsx/webui/internal/policy"
	"github.com/spf13/cobra"
)

type localFile string

func (f localFile) Open() (io.ReadCloser, error) { return os.Open(string(f)) }

func checkCmd() *cobra.Command {
	var preview bool

	cmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Validate files against the configured upload policy",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			p, err := policy.FromConfig(cfg)
			if err != nil {
				return fmt.Errorf("invalid policy: %w", err)
			}
			msgs, err := loadMessages(cfg)
			if err != nil {
				return fmt.Errorf("failed to load messages: %w", err)
			}
			return runCheck(cmd.OutOrStdout(), intake.NewValidator(p, msgs), args, preview)
		},
	}

	cmd.Flags().BoolVar(&preview, "preview", false, "print the start of every valid file")
	return cmd
}

// runCheck prints one verdict line per path and fails if any file is rejected.
func runCheck(w io.Writer, v *intake.Validator, paths []string, preview bool) error {
	rejected := 0
	for _, path := range paths {
		st, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(w, "✗ %s: %v\n", path, err)
			rejected++
			continue
		}

		f := models.FileDescriptor{Name: filepath.Base(path), Size: st.Size(), Content: localFile(path)}
		verdict := v.Validate(f)
		if !verdict.OK {
			fmt.Fprintf(w, "✗ %s (%s)\n", path, intake.FormatSize(f.Size))
			for _, e := range verdict.Errors {
				fmt.Fprintf(w, "    %s\n", e)
			}
			rejected++
			continue
		}

		fmt.Fprintf(w, "✓ %s (%s)\n", path, intake.FormatSize(f.Size))
		if preview {
			text, err := intake.Preview(f, v.Policy().MaxFileSize(), nil)
			if err != nil {
				fmt.Fprintf(w, "    %v\n", err)
				continue
			}
			fmt.Fprintln(w, text)
		}
	}

	if rejected > 0 {
		return fmt.Errorf("%d of %d files rejected", rejected, len(paths))
	}
	return nil
}
