package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"smartlearn-monitor/internal/config"
	"smartlearn-monitor/internal/domain"
	"smartlearn-monitor/internal/engagement"
	"smartlearn-monitor/internal/quizflow"
)

// NewWatchCmd builds the CLI subcommand that runs the attention-monitoring
// agent against a running server. Stdin stands in for the learner's input
// device: any line counts as activity, and the commands play/pause/hide/show
// drive playback and visibility transitions.
func NewWatchCmd(configPath *string) *cobra.Command {
	var videoID string
	var serverURL string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the attention monitor for a video session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), *configPath, serverURL, videoID)
		},
	}
	cmd.Flags().StringVar(&videoID, "video", "demo-video", "video ID being watched")
	cmd.Flags().StringVar(&serverURL, "server", "", "base URL of the monitoring/quiz server")
	return cmd
}

func runWatch(ctx context.Context, configPath, serverFlag, videoID string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	baseURL := serverFlag
	if baseURL == "" {
		baseURL = cfg.Monitor.BaseURL
	}
	if baseURL == "" {
		baseURL = "http://127.0.0.1:5000"
	}

	state := engagement.NewState()
	state.SetVideo(videoID, "")

	poller := engagement.NewPoller(baseURL, state)
	defer poller.Close()

	quizClient := quizflow.NewClient(baseURL)
	answers := make(chan string)

	var coordinator *engagement.Coordinator
	coordinator = engagement.NewCoordinator(engagement.CoordinatorConfig{
		State:       state,
		Player:      consolePlayer{},
		Notifier:    consoleNotifier{},
		Monitor:     poller,
		DedupWindow: config.Duration(cfg.Monitor.DedupWindow, engagement.DefaultDedupWindow),
		Launch: func(reason domain.DistractionReason) {
			go func() {
				defer coordinator.QuizClosed()
				session, err := quizClient.Fetch(ctx, videoID)
				if err != nil {
					log.Printf("could not start quiz: %v", err)
					return
				}
				if err := session.Run(ctx, &lineAnswerer{lines: answers}); err != nil {
					log.Printf("quiz aborted: %v", err)
					return
				}
				fmt.Println("Quiz completed. Great job!")
			}()
		},
		QuizDone: func() {
			fmt.Println("Type 'play' to resume the video.")
		},
	})
	poller.SetHandler(func() {
		coordinator.OnDistracted(domain.ReasonRemoteClassifier)
	})

	activity := engagement.NewActivityMonitor(state, coordinator.OnDistracted)
	defer activity.Close()

	fmt.Printf("watching %q via %s (commands: play, pause, hide, show, quit; anything else counts as activity)\n", videoID, baseURL)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if coordinator.QuizOpen() {
			select {
			case answers <- line:
				continue
			case <-time.After(2 * time.Second):
				// Quiz stopped listening; treat the line as a command.
			}
		}
		switch line {
		case "play":
			state.SetPlaying(true)
			poller.SetPlaying(true)
			fmt.Println("[player] playing")
		case "pause":
			state.SetPlaying(false)
			poller.SetPlaying(false)
			fmt.Println("[player] paused")
		case "hide":
			activity.SetHidden(true)
		case "show":
			activity.SetHidden(false)
		case "quit":
			return nil
		default:
			activity.Touch()
		}
	}
	return scanner.Err()
}

type consolePlayer struct{}

func (consolePlayer) Pause() {
	fmt.Println("[player] paused")
}

type consoleNotifier struct{}

func (consoleNotifier) Distracted(reason domain.DistractionReason, count int) {
	fmt.Printf("You seem distracted (%s, #%d). Let's take a quick quiz!\n", reason, count)
}

// lineAnswerer feeds quiz answers from the interactive stdin loop.
type lineAnswerer struct {
	lines <-chan string
}

func (a *lineAnswerer) Answer(ctx context.Context, prompt quizflow.Prompt) (string, error) {
	fmt.Printf("\nQuestion %d of %d: %s\n", prompt.QuestionNumber, prompt.TotalQuestions, prompt.Question)
	for i, option := range prompt.Options {
		fmt.Printf("  %d) %s\n", i+1, option)
	}
	fmt.Print("> ")
	select {
	case line := <-a.lines:
		// Accept either the option number or the option text.
		var idx int
		if _, err := fmt.Sscanf(line, "%d", &idx); err == nil && idx >= 1 && idx <= len(prompt.Options) {
			return prompt.Options[idx-1], nil
		}
		return line, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (a *lineAnswerer) Hint(hint string) {
	fmt.Printf("Wrong answer. Hint: %s\n", hint)
}
