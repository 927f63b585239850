package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	session "github.com/voxline/vox-core/core"
	"github.com/voxline/vox-core/core/addressing"
	"github.com/voxline/vox-core/core/audio/capture"
	"github.com/voxline/vox-core/core/audio/miniaudio"
	"github.com/voxline/vox-core/core/audio/playback"
	"github.com/voxline/vox-core/core/audio/portaudio"
	"github.com/voxline/vox-core/core/config"
	"github.com/voxline/vox-core/core/control"
	"github.com/voxline/vox-core/core/presenter"
	"github.com/voxline/vox-core/core/speechtotext"
	sttdeepgram "github.com/voxline/vox-core/core/speechtotext/deepgram"
	"github.com/voxline/vox-core/core/speechtotext/openai"
	"github.com/voxline/vox-core/core/speechtotext/whispercpp"
	"github.com/voxline/vox-core/core/texttospeech"
	ttsdeepgram "github.com/voxline/vox-core/core/texttospeech/deepgram"
)

var (
	identityFlag string
	portFlag     int
	ttyFlag      string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the session coordinator for this terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		identity := resolveIdentity(cfg)
		return runSession(cmd, cfg, identity)
	},
}

func init() {
	runCmd.Flags().StringVar(&identityFlag, "identity", "", "terminal identity override")
	runCmd.Flags().IntVar(&portFlag, "port", 0, "control port override (default derives from the identity)")
	runCmd.Flags().StringVar(&ttyFlag, "tty", "", "terminal device to render status on at startup")
	rootCmd.AddCommand(runCmd)
}

func runSession(cmd *cobra.Command, cfg config.Config, identity string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The level callback is wired before the controller exists, so it
	// closes over the variable.
	var controller *session.SessionController
	onLevel := func(level float64) {
		if controller != nil {
			controller.EmitCaptureLevel(level)
		}
	}

	capturer, sink, closeAudio, err := buildCaptureBackend(cfg, onLevel)
	if err != nil {
		return err
	}
	defer closeAudio()

	player := buildPlayer(cfg, sink)
	transcriber, err := buildTranscriber(cfg)
	if err != nil {
		return err
	}
	speaker := buildSpeaker(cfg, player)
	statusPresenter := presenter.New()
	defer statusPresenter.Close()
	if ttyFlag != "" {
		if err := statusPresenter.BindTTY(ttyFlag); err != nil {
			return fmt.Errorf("failed to bind status display to %s: %w", ttyFlag, err)
		}
	}

	controller = session.NewSessionController(identity,
		session.WithCapturer(capturer),
		session.WithTranscriber(transcriber),
		session.WithSpeaker(speaker),
		session.WithInterruptionEnabled(cfg.Interruption()),
		session.WithLanguage(cfg.Language),
		session.WithStateChangedCallback(statusPresenter.OnStateChanged),
		session.WithCaptureLevelCallback(statusPresenter.OnCaptureLevel),
		session.WithTranscriptCallback(statusPresenter.OnTranscript),
	)
	defer controller.Close()

	port := controlPort(identity, cfg.Port)
	server := control.NewServer(controller,
		control.WithPort(port),
		control.WithPresenter(statusPresenter),
	)
	if err := server.Start(ctx); err != nil {
		return err
	}

	record, err := addressing.Publish(identity, port)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "session %q listening on %s\n", identity, addressing.LoopbackAddr(port))

	<-ctx.Done()

	// Retract the address first so clients stop finding a session that
	// is tearing down, then unwind the pipelines.
	if err := record.Remove(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}
	controller.Interrupt()
	if err := server.Shutdown(cmd.Context()); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}
	return nil
}

// controlPort picks the control port: explicit flag, config, or the
// port derived from the identity.
func controlPort(identity string, cfgPort int) int {
	if portFlag != 0 {
		return addressing.ChoosePort(identity, portFlag)
	}
	return addressing.ChoosePort(identity, cfgPort)
}

// resolveIdentity picks the terminal identity: explicit flag, config,
// environment, the controlling terminal, or a stable fallback.
func resolveIdentity(cfg config.Config) string {
	if identityFlag != "" {
		return identityFlag
	}
	if cfg.Identity != "" {
		return cfg.Identity
	}
	if identity := os.Getenv("VOX_TERMINAL"); identity != "" {
		return identity
	}
	if tty, err := os.Readlink("/proc/self/fd/0"); err == nil {
		return tty
	}
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-default", hostname)
}

func buildCaptureBackend(cfg config.Config, onLevel func(float64)) (session.Capturer, playback.Sink, func(), error) {
	switch cfg.Audio.CaptureBackend {
	case config.CaptureMiniaudio:
		client, err := miniaudio.NewClient(miniaudio.WithLevelCallback(onLevel))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to initialize miniaudio backend: %w", err)
		}
		return client, client.Sink(), client.Close, nil

	case config.CapturePortAudio:
		client, err := portaudio.NewClient(portaudio.WithLevelCallback(onLevel))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to initialize portaudio backend: %w", err)
		}
		return client, nil, client.Close, nil

	default:
		opts := []capture.RecorderOption{capture.WithLevelCallback(onLevel)}
		if cmd := cfg.Audio.CaptureCommand; len(cmd) > 0 {
			opts = append(opts, capture.WithCommand(cmd[0], cmd[1:]...))
		}
		return capture.NewRecorder(opts...), nil, func() {}, nil
	}
}

func buildPlayer(cfg config.Config, sink playback.Sink) *playback.Player {
	opts := []playback.PlayerOption{}
	if sink != nil {
		opts = append(opts, playback.WithSink(sink))
	}
	if cmd := cfg.Audio.PlayerCommand; len(cmd) > 0 {
		opts = append(opts, playback.WithPlayerCommand(cmd[0], cmd[1:]...))
	}
	if cmd := cfg.Audio.RawPlayerCommand; len(cmd) > 0 {
		opts = append(opts, playback.WithRawCommand(cmd[0], cmd[1:]...))
	}
	return playback.NewPlayer(opts...)
}

func buildTranscriber(cfg config.Config) (speechtotext.Transcriber, error) {
	switch cfg.Recognizer.Provider {
	case config.RecognizerDeepgram:
		return sttdeepgram.NewTranscriptionClient(), nil
	case config.RecognizerOpenAI:
		return openai.NewTranscriptionClient(), nil
	case config.RecognizerWhisperCPP:
		opts := []whispercpp.ClientOption{}
		if cfg.Recognizer.WhisperBinary != "" {
			opts = append(opts, whispercpp.WithBinary(cfg.Recognizer.WhisperBinary))
		}
		if cfg.Recognizer.WhisperModel != "" {
			opts = append(opts, whispercpp.WithModelPath(cfg.Recognizer.WhisperModel))
		}
		return whispercpp.NewTranscriptionClient(opts...), nil
	default:
		return nil, fmt.Errorf("unknown recognizer provider %q", cfg.Recognizer.Provider)
	}
}

func buildSpeaker(cfg config.Config, player *playback.Player) texttospeech.Speaker {
	opts := []texttospeech.SpeakerOption{}
	if cfg.Synthesizer.Voice != "" {
		opts = append(opts, texttospeech.WithVoice(cfg.Synthesizer.Voice))
	}
	return ttsdeepgram.NewSpeaker(player, opts...)
}
