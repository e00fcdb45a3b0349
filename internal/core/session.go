package core

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"
	"mvdan.cc/sh/v3/interp"

	"github.com/robottwo/chatline/internal/bash"
	"github.com/robottwo/chatline/internal/environment"
	"github.com/robottwo/chatline/internal/history"
	"github.com/robottwo/chatline/pkg/composer"
	"github.com/robottwo/chatline/pkg/richtext"
)

// SendHook is the rc-file function called with each sent message as $1.
const SendHook = "CHATLINE_ON_SEND"

// RunChatSession composes messages until the user ends input with Ctrl+D.
// Each message is recorded in history and handed to the send hook; when the
// rc file defines no hook the message is written to out, if out is not nil.
func RunChatSession(
	ctx context.Context,
	runner *interp.Runner,
	prompter UserPrompter,
	historyManager *history.HistoryManager,
	logger *zap.Logger,
	out io.Writer,
	stderrCapturer *StderrCapturer,
) error {
	state := &SessionState{}

	chanSIGINT := make(chan os.Signal, 1)
	signal.Notify(chanSIGINT, os.Interrupt)
	defer signal.Stop(chanSIGINT)

	go func() {
		for {
			// ignore SIGINT
			select {
			case <-chanSIGINT:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		prompt := environment.GetPrompt(runner, logger)
		logger.Debug("prompt updated", zap.String("prompt", prompt))

		historyValues, err := historyManager.GetRecentMessages(environment.GetHistoryLimit(runner, logger))
		if err != nil {
			logger.Warn("error getting recent messages", zap.Error(err))
			historyValues = []string{}
		}

		line, err := prompter.Compose(prompt, historyValues)
		if err != nil {
			if errors.Is(err, composer.ErrInterrupted) {
				logger.Debug("input interrupted by user")
				continue
			}
			if errors.Is(err, io.EOF) {
				logger.Debug("end of input")
				return nil
			}
			logger.Error("error reading input through composer", zap.Error(err))
			return err
		}

		logger.Debug("received message", zap.String("message", line))

		if err := SendMessage(ctx, line, runner, historyManager, logger, state, out, stderrCapturer); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// RunPipedSession sends every non-blank line of reader, linkifying bare URLs
// the way a paste into the composer would.
func RunPipedSession(
	ctx context.Context,
	reader io.Reader,
	runner *interp.Runner,
	historyManager *history.HistoryManager,
	logger *zap.Logger,
	out io.Writer,
	stderrCapturer *StderrCapturer,
) error {
	state := &SessionState{}
	options, err := environment.LoadOptions(runner)
	if err != nil {
		logger.Warn("invalid completion settings", zap.Error(err))
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if options.EnableAutoLinks {
			line = richtext.LinkifyPastedText(line)
		}

		if err := SendMessage(ctx, line, runner, historyManager, logger, state, out, stderrCapturer); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
	return scanner.Err()
}

// SendMessage records message and runs the send hook. A failing hook is
// logged and kept in state; only a history failure or an exit from the hook
// ends the session.
func SendMessage(
	ctx context.Context,
	message string,
	runner *interp.Runner,
	historyManager *history.HistoryManager,
	logger *zap.Logger,
	state *SessionState,
	out io.Writer,
	stderrCapturer *StderrCapturer,
) error {
	if _, err := historyManager.RecordMessage(message); err != nil {
		logger.Error("error recording message", zap.Error(err))
		return fmt.Errorf("failed to record message: %w", err)
	}

	state.LastMessage = message
	state.MessagesSent++
	state.LastHookExitCode = 0
	state.LastHookStderr = ""

	if stderrCapturer != nil {
		stderrCapturer.StartCapture()
	}
	ran, err := bash.RunFunction(ctx, runner, SendHook, message)
	if stderrCapturer != nil {
		state.LastHookStderr = stderrCapturer.StopCapture()
	}

	if !ran {
		if out != nil {
			if _, err := fmt.Fprintln(out, message); err != nil {
				return err
			}
		}
		return nil
	}

	if err != nil {
		status, ok := interp.IsExitStatus(err)
		if !ok {
			state.LastHookExitCode = -1
			logger.Error("send hook failed", zap.Error(err))
			return nil
		}
		state.LastHookExitCode = int(status)
		logger.Warn("send hook exited with non-zero status",
			zap.Int("status", state.LastHookExitCode),
			zap.String("stderr", state.LastHookStderr))
	}

	if runner.Exited() {
		logger.Debug("send hook called exit, ending session")
		return io.EOF
	}
	return nil
}
