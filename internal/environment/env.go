package environment

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"
	"github.com/muesli/termenv"
	"go.uber.org/zap"
	"mvdan.cc/sh/v3/interp"

	"github.com/robottwo/chatline/pkg/composer"
	"github.com/robottwo/chatline/pkg/richtext"
)

const (
	DEFAULT_PROMPT = "chat> "
)

func GetLogLevel(runner *interp.Runner) zap.AtomicLevel {
	logLevel, err := zap.ParseAtomicLevel(runner.Vars["CHATLINE_LOG_LEVEL"].String())
	if err != nil {
		logLevel = zap.NewAtomicLevel()
	}
	return logLevel
}

func ShouldCleanLogFile(runner *interp.Runner) bool {
	cleanLogFile := strings.ToLower(runner.Vars["CHATLINE_CLEAN_LOG_FILE"].String())
	return cleanLogFile == "1" || cleanLogFile == "true"
}

// GetPrompt runs CHATLINE_UPDATE_PROMPT when the rc file defines it, then
// reads CHATLINE_PROMPT.
func GetPrompt(runner *interp.Runner, logger *zap.Logger) string {
	promptUpdater := runner.Funcs["CHATLINE_UPDATE_PROMPT"]
	if promptUpdater != nil {
		err := runner.Run(context.Background(), promptUpdater)
		if err != nil {
			logger.Warn("error updating prompt", zap.Error(err))
		}
	}

	buildVersion := runner.Vars["CHATLINE_BUILD_VERSION"].String()
	if buildVersion == "dev" {
		buildVersion = "[dev] "
	} else {
		buildVersion = ""
	}

	prompt := buildVersion + runner.Vars["CHATLINE_PROMPT"].String()
	if prompt != "" {
		return prompt
	}
	return DEFAULT_PROMPT
}

func GetHistoryLimit(runner *interp.Runner, logger *zap.Logger) int {
	limit, err := strconv.ParseInt(runner.Vars["CHATLINE_HISTORY_LIMIT"].String(), 10, 32)
	if err != nil || limit <= 0 {
		logger.Debug("error parsing CHATLINE_HISTORY_LIMIT", zap.Error(err))
		limit = 500
	}
	return int(limit)
}

func GetPopupHeight(runner *interp.Runner, logger *zap.Logger) int {
	height, err := strconv.ParseInt(runner.Vars["CHATLINE_POPUP_HEIGHT"].String(), 10, 32)
	if err != nil || height <= 0 {
		logger.Debug("error parsing CHATLINE_POPUP_HEIGHT", zap.Error(err))
		height = 5
	}
	return int(height)
}

// GetUsersFile is the YAML user catalog named by CHATLINE_USERS_FILE, or
// defaultPath when unset.
func GetUsersFile(runner *interp.Runner, defaultPath string) string {
	if path := runner.Vars["CHATLINE_USERS_FILE"].String(); path != "" {
		return path
	}
	return defaultPath
}

// IsHighlightEnabled is false under NO_COLOR, whether it comes from the
// process environment or the rc file.
func IsHighlightEnabled(runner *interp.Runner) bool {
	if termenv.EnvNoColor() || runner.Vars["NO_COLOR"].String() != "" {
		return false
	}
	enabled, err := parseBool(runner.Vars["CHATLINE_HIGHLIGHT"].String(), true)
	return err == nil && enabled
}

func IsMouseEnabled(runner *interp.Runner) bool {
	enabled, err := parseBool(runner.Vars["CHATLINE_MOUSE"].String(), false)
	return err == nil && enabled
}

func parseBool(value string, fallback bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return fallback, nil
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return fallback, fmt.Errorf("not a boolean: %q", value)
	}
}

// LoadOptions reads the completion settings. Every invalid setting is
// reported in the returned error; its default is used in its place.
func LoadOptions(runner *interp.Runner) (richtext.Options, error) {
	options := richtext.NewOptions()
	var result *multierror.Error

	boolVar := func(name string, target *bool) {
		value, err := parseBool(runner.Vars[name].String(), *target)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", name, err))
			return
		}
		*target = value
	}
	boolVar("CHATLINE_ENABLE_MENTIONS", &options.EnableMentions)
	boolVar("CHATLINE_ENABLE_EMOJIS", &options.EnableEmojis)
	boolVar("CHATLINE_ENABLE_AUTOLINKS", &options.EnableAutoLinks)
	boolVar("CHATLINE_FUZZY_FALLBACK", &options.FuzzyFallback)

	triggerVar := func(name string, target *rune) {
		value := runner.Vars[name].String()
		if value == "" {
			return
		}
		r, err := parseTrigger(value)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", name, err))
			return
		}
		*target = r
	}
	triggerVar("CHATLINE_MENTION_TRIGGER", &options.MentionTrigger)
	triggerVar("CHATLINE_EMOJI_TRIGGER", &options.EmojiTrigger)

	if options.MentionTrigger == options.EmojiTrigger {
		result = multierror.Append(result, fmt.Errorf(
			"CHATLINE_MENTION_TRIGGER and CHATLINE_EMOJI_TRIGGER must differ, both are %q", options.MentionTrigger))
		defaults := richtext.NewOptions()
		options.MentionTrigger = defaults.MentionTrigger
		options.EmojiTrigger = defaults.EmojiTrigger
	}

	return options, result.ErrorOrNil()
}

// parseTrigger accepts a single printable rune that cannot appear inside a
// query.
func parseTrigger(value string) (rune, error) {
	if utf8.RuneCountInString(value) != 1 {
		return 0, fmt.Errorf("trigger must be a single character, got %q", value)
	}
	r, _ := utf8.DecodeRuneInString(value)
	switch {
	case unicode.IsSpace(r) || !unicode.IsPrint(r):
		return 0, fmt.Errorf("trigger must be printable, got %q", value)
	case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '+' || r == '-':
		return 0, fmt.Errorf("trigger %q can appear inside a query", value)
	}
	return r, nil
}

// ComposerOptions gathers everything the composer reads from the rc file.
func ComposerOptions(runner *interp.Runner, logger *zap.Logger) (composer.Options, error) {
	options := composer.NewOptions()
	options.PopupHeight = GetPopupHeight(runner, logger)
	options.Highlight = IsHighlightEnabled(runner)
	options.Mouse = IsMouseEnabled(runner)

	richText, err := LoadOptions(runner)
	options.RichText = richText
	return options, err
}
