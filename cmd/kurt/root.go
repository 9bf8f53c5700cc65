package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	orchestration "github.com/koscakluka/kurt/core"
	"github.com/koscakluka/kurt/internal/config"
	"github.com/koscakluka/kurt/internal/console"
	"github.com/koscakluka/kurt/internal/tui"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	plain      bool
	noSpeech   bool
	logFile    string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "kurt",
		Short: "Talk to the Kurt voice assistant",
		Long: `Kurt listens when you press the microphone, answers with a language
model and speaks the answer back.

Keys (full screen mode):
  space/enter  talk
  ctrl+z       suspend
  q, ctrl+c    quit

In --plain mode press Enter to talk, h for history and q to quit.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAssistant(cmd, flags)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/kurt/config.yaml)")
	cmd.Flags().BoolVar(&flags.plain, "plain", false, "line mode instead of the full screen UI")
	cmd.Flags().BoolVar(&flags.noSpeech, "no-speech", false, "show replies without speaking them")
	cmd.Flags().StringVar(&flags.logFile, "log-file", "", "write logs to this file")

	cmd.AddCommand(newDoctorCmd(flags), newConfigCmd(flags))
	return cmd
}

func runAssistant(cmd *cobra.Command, flags *rootFlags) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	if flags.noSpeech {
		cfg.Speech.Enabled = false
	}

	if flags.logFile != "" {
		f, err := tea.LogToFile(flags.logFile, "kurt")
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
	} else if !flags.plain {
		// Anything printed would corrupt the full screen view.
		log.SetOutput(io.Discard)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	device, err := openAudioDevice(cfg.Audio)
	if err != nil {
		return err
	}
	defer device.Close()

	opts, err := orchestratorOptions(ctx, cfg, device)
	if err != nil {
		return err
	}

	if flags.plain {
		c := console.New(cmd.OutOrStdout())
		o := orchestration.NewOrchestrator(orchestration.NewSession(), c, opts...)
		if err := c.Run(ctx, o, cmd.InOrStdin()); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}

	screen := tui.NewScreen()
	o := orchestration.NewOrchestrator(orchestration.NewSession(), screen, opts...)
	defer o.Shutdown()

	program := tea.NewProgram(tui.NewModel(o, screen),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run screen: %w", err)
	}
	return nil
}
