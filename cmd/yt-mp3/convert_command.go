package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ytget/yt-mp3/internal/app"
	"github.com/ytget/yt-mp3/internal/config"
	"github.com/ytget/yt-mp3/internal/model"
	"github.com/ytget/yt-mp3/internal/pipeline"
	"github.com/ytget/yt-mp3/internal/platform"
	"github.com/ytget/yt-mp3/internal/transcode"
)

// bitrateOverride replaces the stored bitrate for a single run
type bitrateOverride struct {
	*config.Settings
	kbps int
}

func (b bitrateOverride) Bitrate() int {
	return b.kbps
}

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var folderFlag string
	var yesFlag bool
	var bitrateFlag int

	cmd := &cobra.Command{
		Use:   "convert <url>",
		Short: "Download the audio of a video and save it as MP3",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := platform.ValidateURL(args[0]); err != nil {
				return err
			}
			if bitrateFlag != 0 {
				if err := transcode.ValidateBitrate(bitrateFlag); err != nil {
					return err
				}
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			settings, _, err := ctx.settings()
			if err != nil {
				return err
			}

			var prefs pipeline.Preferences = settings
			if bitrateFlag != 0 {
				prefs = bitrateOverride{Settings: settings, kbps: bitrateFlag}
			}

			// Nothing to keep on screen after the run
			runCfg := *cfg
			runCfg.Pipeline.DisplayDelayMS = 0

			components, err := app.Open(cmd.Context(), &runCfg, log)
			if err != nil {
				return err
			}
			defer components.Close()

			out := cmd.OutOrStdout()
			sink := newTerminalSink(out)
			orchestrator, err := components.Orchestrator(app.Frontend{
				Preferences: prefs,
				Chooser:     newPromptChooser(cmd.InOrStdin(), out, folderFlag, yesFlag),
				Sink:        sink,
			})
			if err != nil {
				return err
			}

			run, err := orchestrator.Submit(cmd.Context(), args[0])
			sink.Close()

			switch {
			case errors.Is(err, model.ErrCancelled):
				fmt.Fprintln(out, "Cancelled")
				return nil
			case err != nil:
				log.Debug("convert failed", zap.Error(err))
				return fmt.Errorf("convert %s: %w", args[0], err)
			}

			fmt.Fprintf(out, "Saved %s\n", run.OutputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&folderFlag, "folder", "f", "", "Output folder (skips the prompt)")
	cmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "Use the saved output folder without asking")
	cmd.Flags().IntVarP(&bitrateFlag, "bitrate", "b", 0, "MP3 bitrate in kbps for this run")
	return cmd
}
