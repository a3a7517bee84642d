// Package cli implements vibe-cli: a terminal front end for running check-in
// chats and inspecting results without the HTTP API.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/PabloGalante/vibe-agent/internal/app/chat"
	"github.com/PabloGalante/vibe-agent/internal/app/questions"
	"github.com/PabloGalante/vibe-agent/internal/bootstrap"
	"github.com/PabloGalante/vibe-agent/internal/config"
	"github.com/PabloGalante/vibe-agent/internal/domain"
	"github.com/PabloGalante/vibe-agent/internal/observability"
)

// Prompter reads one line of input per call.
type Prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

func newLinerPrompter() Prompter {
	l := liner.NewLiner()
	l.SetCtrlCAborts(true)
	return l
}

// Deps are the seams tests replace.
type Deps struct {
	LoadConfig  func() *config.Config
	NewPrompter func() Prompter
}

func DefaultDeps() Deps {
	return Deps{
		LoadConfig:  config.Load,
		NewPrompter: newLinerPrompter,
	}
}

// NewRootCmd creates the root command
func NewRootCmd(deps Deps) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vibe-cli",
		Short: "vibe-cli - employee check-in chats from the terminal",
		Long: `vibe-cli runs the same check-in engine as the API: it asks the
selected questions, classifies every answer and prints the final analysis.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			debug, _ := cmd.Flags().GetBool("debug")
			level := slog.LevelWarn
			if debug {
				level = slog.LevelDebug
			}
			// Keep stdout for the conversation itself.
			observability.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	rootCmd.AddCommand(newChatCmd(deps))
	rootCmd.AddCommand(newAnalyzeCmd(deps))
	rootCmd.AddCommand(newQuestionsCmd())
	rootCmd.AddCommand(newReportCmd(deps))

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	return rootCmd
}

func newChatCmd(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "chat",
		Short:   "Run an interactive check-in for an employee",
		Example: `  vibe-cli chat --employee emp-42`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			employee, _ := cmd.Flags().GetString("employee")
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			app, err := bootstrap.New(ctx, deps.LoadConfig())
			if err != nil {
				return err
			}
			defer app.Close()

			p := deps.NewPrompter()
			defer p.Close()

			return runChat(ctx, cmd.OutOrStdout(), p, app.Chat, domain.EmployeeID(employee))
		},
	}
	cmd.Flags().String("employee", "", "Employee id to run the check-in for")
	_ = cmd.MarkFlagRequired("employee")
	return cmd
}

func runChat(ctx context.Context, out io.Writer, p Prompter, svc *chat.Service, employee domain.EmployeeID) error {
	start, err := svc.StartChat(ctx, employee)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Session %s started. Ctrl-D to leave.\n\n", start.SessionID)

	question := start.Question
	for n := 1; ; n++ {
		answer, err := p.Prompt(fmt.Sprintf("Q%d. %s\n> ", n, question))
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(out, "\nCheck-in left unfinished.")
			return svc.AbandonChat(ctx, start.SessionID)
		}
		if err != nil {
			return err
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			n--
			continue
		}
		p.AppendHistory(answer)

		res, err := svc.ProcessTurn(ctx, start.SessionID, answer)
		if err != nil {
			return err
		}
		if res.Completed() {
			fmt.Fprintf(out, "\n%s\n\n", res.ClosingMessage)
			return printJSON(out, res.FinalAnalysis)
		}
		question = res.NextQuestion
	}
}

func newAnalyzeCmd(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [TEXT]",
		Short: "Classify a single answer and show its zone, reason and keywords",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			app, err := bootstrap.New(ctx, deps.LoadConfig())
			if err != nil {
				return err
			}
			defer app.Close()

			res := app.Analyzer.Analyze(ctx, strings.Join(args, " "))
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func newQuestionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "questions",
		Short: "Print one random question selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for i, q := range questions.NewSelector(questions.Bank, nil).Select() {
				category, _ := questions.CategoryOf(questions.Bank, q)
				fmt.Fprintf(out, "%2d. [%s] %s\n", i+1, category, q)
			}
			return nil
		},
	}
}

func newReportCmd(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "report [EMPLOYEE]",
		Short: "Show the latest analysis and vibe meter for an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			app, err := bootstrap.New(ctx, deps.LoadConfig())
			if err != nil {
				return err
			}
			defer app.Close()

			rep, err := app.Reports.LatestReport(ctx, domain.EmployeeID(args[0]))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rep)
		},
	}
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
