package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ai-english-tutor/server/internal/tutor/conversations"
	"github.com/ai-english-tutor/server/internal/tutor/gateway"
	"github.com/ai-english-tutor/server/internal/tutor/model"
	"github.com/ai-english-tutor/server/internal/tutor/observers"
	"github.com/ai-english-tutor/server/internal/tutor/parsers"
	"github.com/ai-english-tutor/server/internal/tutor/prompts"
	"github.com/ai-english-tutor/server/internal/tutor/providers"
	"github.com/ai-english-tutor/server/internal/tutor/scenarios"
	"github.com/ai-english-tutor/server/internal/tutor/session"
	logx "github.com/ai-english-tutor/server/pkg/logger"
)

const chatHelp = `Commands:
  /practice        repeat the last suggested correction
  /cancel          leave practice mode
  /objectives      show scenario objectives
  /model <id>      switch model
  /quit            end the session`

func newChatCmd(a *app) *cobra.Command {
	var scenarioID, topic, modelName, language string
	var direct, structured, personalize bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start a conversation in a scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			modelID, ok := model.ParseModelID(modelName)
			if !ok {
				return fmt.Errorf("unknown model %q", modelName)
			}
			if language == "" {
				language = a.cfg.Language
			}

			kv, mem, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}

			var sc model.Scenario
			if topic != "" {
				sc = mem.CreateDynamicScenario(topic, "interest-based")
			} else if sc, ok = scenarios.Get(scenarioID); !ok {
				return fmt.Errorf("unknown scenario %q; run `tutor scenarios` to list them", scenarioID)
			}

			server := session.NewGatewayClient(a.cfg.ServerURL, a.cfg.Timeout)
			var local session.Responder
			if direct {
				handlers := observers.NewAllCallbacks()
				registry, err := providers.NewFromConfig(ctx, a.cfg.Providers, a.cfg.Generation, handlers)
				if err != nil {
					return err
				}
				gw := gateway.New(registry, prompts.NewBuilder(handlers), conversations.NewMessagesManager(a.cfg.Gateway), a.cfg.Gateway)
				local = session.NewDirectResponder(gw)
			}

			ctrl := session.NewController(session.Config{
				Responder:   session.NewChain(local, server),
				Memory:      mem,
				Storage:     kv,
				Language:    language,
				Model:       modelID,
				Structured:  structured,
				Personalize: personalize,
			})
			if err := ctrl.Reset(ctx, sc); err != nil {
				return err
			}

			for _, m := range ctrl.Messages() {
				fmt.Fprintf(out, "tutor> %s\n", m.Content)
			}
			printObjectives(out, ctrl.Objectives())
			fmt.Fprintln(out, "Type /help for commands.")

			return runREPL(cmd, ctrl)
		},
	}

	cmd.Flags().StringVarP(&scenarioID, "scenario", "s", scenarios.DefaultScenarioID, "Scenario id")
	cmd.Flags().StringVar(&topic, "topic", "", "Generate a personalized scenario about this topic instead")
	cmd.Flags().StringVarP(&modelName, "model", "m", string(model.Gemini), "Model: gemini, mistral, deepseek, gemma or nemotron")
	cmd.Flags().StringVarP(&language, "language", "l", "", "Your first language (defaults to TUTOR_LANGUAGE)")
	cmd.Flags().BoolVar(&direct, "direct", false, "Call the providers directly, using the server only when every model is rate limited")
	cmd.Flags().BoolVar(&structured, "structured", false, "Ask for structured replies that report learned words")
	cmd.Flags().BoolVar(&personalize, "personalize", true, "Send your learning profile with each turn")

	return cmd
}

func runREPL(cmd *cobra.Command, ctrl *session.Controller) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	in := bufio.NewScanner(cmd.InOrStdin())

	for {
		if ctrl.PracticeMode() {
			fmt.Fprint(out, "practice> ")
		} else {
			fmt.Fprint(out, "you> ")
		}
		if !in.Scan() {
			fmt.Fprintln(out)
			return in.Err()
		}
		line := strings.TrimSpace(in.Text())

		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/help":
			fmt.Fprintln(out, chatHelp)
			continue
		case line == "/objectives":
			printObjectives(out, ctrl.Objectives())
			continue
		case line == "/practice":
			corr, ok := ctrl.LastCorrection()
			if !ok {
				fmt.Fprintln(out, "There is no correction to practice yet.")
				continue
			}
			fmt.Fprintf(out, "Repeat after me: %s\n", ctrl.EnterPracticeMode(corr))
			continue
		case line == "/cancel":
			ctrl.CancelPractice()
			continue
		case strings.HasPrefix(line, "/model"):
			id, ok := model.ParseModelID(strings.TrimSpace(strings.TrimPrefix(line, "/model")))
			if !ok {
				fmt.Fprintln(out, "Unknown model.")
				continue
			}
			ctrl.SetModel(id)
			fmt.Fprintf(out, "Switched to %s.\n", id)
			continue
		}

		before := parsers.CountCompleted(ctrl.Objectives())
		current := ctrl.Model()
		msg, err := ctrl.Send(ctx, line)
		if errors.Is(err, session.ErrEmptyInput) || errors.Is(err, session.ErrBusy) {
			continue
		}
		if err != nil {
			logx.Debug().Err(err).Msg("turn failed")
		}
		fmt.Fprintf(out, "tutor> %s\n", msg.Content)

		if now := ctrl.Model(); now != current {
			fmt.Fprintf(out, "(%s was unavailable, now using %s)\n", current, now)
		}
		if msg.Correction != "" {
			fmt.Fprintln(out, "(type /practice to repeat the correction)")
		}
		objs := ctrl.Objectives()
		if done := parsers.CountCompleted(objs); done > before {
			fmt.Fprintf(out, "Objectives completed: %d/%d\n", done, len(objs))
			if done == len(objs) {
				fmt.Fprintln(out, "All objectives completed. Well done!")
			}
		}
	}
}

func printObjectives(out io.Writer, objs []model.Objective) {
	fmt.Fprintln(out, "Objectives:")
	for i, o := range objs {
		mark := " "
		if o.Completed {
			mark = "x"
		}
		fmt.Fprintf(out, "  [%s] %d. %s\n", mark, i+1, o.Text)
	}
}
