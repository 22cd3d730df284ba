package main

import (
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/ytget/yt-mp3/internal/platform"
	"github.com/ytget/yt-mp3/internal/transcode"
)

func newInstallDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "install-deps",
		Short: "Download yt-dlp and check that ffmpeg is available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			ytdlpPath, err := platform.InstallYtDlp(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "yt-dlp:  %s\n", ytdlpPath)

			ffprobe := cfg.Binaries.FFprobe
			if ffprobe == "" {
				ffprobe = transcode.DeriveFFprobePath(cfg.Binaries.FFmpeg)
			}
			for _, bin := range []struct{ name, path string }{
				{"ffmpeg", cfg.Binaries.FFmpeg},
				{"ffprobe", ffprobe},
			} {
				found, err := exec.LookPath(bin.path)
				if err != nil {
					return fmt.Errorf("%s not found (%s); install ffmpeg or set binaries.%s in the config", bin.name, bin.path, bin.name)
				}
				fmt.Fprintf(out, "%-8s %s\n", bin.name+":", found)
			}
			return nil
		},
	}
}
