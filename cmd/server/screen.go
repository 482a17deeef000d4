package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hniuh721/aom-screening-app/internal/logging"
	"github.com/hniuh721/aom-screening-app/internal/screening"
)

func screenCmd() *cobra.Command {
	var (
		file      string
		rulesFile string
		logLevel  string
	)

	cmd := &cobra.Command{
		Use:   "screen",
		Short: "Screen one questionnaire snapshot and print the outcome as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewWithWriter(cmd.ErrOrStderr(), logLevel, false)

			snap, err := loadSnapshot(file)
			if err != nil {
				return err
			}
			rules, err := loadRules(rulesFile)
			if err != nil {
				return err
			}

			outcome, err := screening.NewScreener(rules).Screen(snap)
			if err != nil {
				return fmt.Errorf("screen %s: %w", file, err)
			}
			logger.Debug().
				Str("file", file).
				Str("rules", outcome.RuleTableVersion).
				Bool("eligible", outcome.Eligible).
				Float64("bmi", outcome.BMI).
				Int("recommended", len(outcome.Recommendations)).
				Msg("screening completed")

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(outcome)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "questionnaire snapshot (.json, .yaml or .yml)")
	cmd.Flags().StringVar(&rulesFile, "rules", "", "rule table YAML (defaults to the built-in table)")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "log level written to stderr")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// loadSnapshot decodes JSON files strictly and everything else as YAML.
func loadSnapshot(path string) (screening.Snapshot, error) {
	var snap screening.Snapshot

	raw, err := os.ReadFile(path)
	if err != nil {
		return snap, fmt.Errorf("read snapshot: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&snap); err != nil {
			return snap, fmt.Errorf("decode %s: %w", path, err)
		}
		return snap, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&snap); err != nil {
		return snap, fmt.Errorf("decode %s: %w", path, err)
	}
	return snap, nil
}
