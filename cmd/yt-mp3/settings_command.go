package main

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ytget/yt-mp3/internal/config"
	"github.com/ytget/yt-mp3/internal/transcode"
)

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change saved preferences",
	}

	settingsCmd.AddCommand(newSettingsShowCommand(ctx))
	settingsCmd.AddCommand(newSettingsSetCommand(ctx))

	return settingsCmd
}

func newSettingsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the saved preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, store, err := ctx.settings()
			if err != nil {
				return err
			}

			rows := [][]string{
				{config.KeyBitrate, strconv.Itoa(settings.Bitrate())},
				{config.KeyOutputFolder, settings.OutputFolder()},
				{config.KeyLanguage, settings.Language()},
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, rows, []columnAlignment{alignLeft, alignLeft}))
			fmt.Fprintf(out, "Settings file: %s\n", store.Path())
			return nil
		},
	}
}

func newSettingsSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a preference (bitrate, output_folder, language)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, _, err := ctx.settings()
			if err != nil {
				return err
			}

			key := strings.TrimSpace(args[0])
			value := strings.TrimSpace(args[1])
			switch key {
			case config.KeyBitrate:
				kbps, err := strconv.Atoi(value)
				if err != nil {
					return fmt.Errorf("bitrate must be a number: %q", value)
				}
				if err := transcode.ValidateBitrate(kbps); err != nil {
					return err
				}
				settings.SetBitrate(kbps)
			case config.KeyOutputFolder:
				if value == "" {
					return fmt.Errorf("output folder must not be empty")
				}
				abs, err := filepath.Abs(value)
				if err != nil {
					return fmt.Errorf("resolve output folder: %w", err)
				}
				settings.SetOutputFolder(abs)
				value = abs
			case config.KeyLanguage:
				if !slices.Contains(config.SupportedLanguages, value) {
					return fmt.Errorf("language must be one of %s", strings.Join(config.SupportedLanguages, ", "))
				}
				settings.SetLanguage(value)
			default:
				return fmt.Errorf("unknown setting %q", key)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, value)
			return nil
		},
	}
}
