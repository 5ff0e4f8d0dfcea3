// Package flags manages command-line flags and environment variables for backupnotify configuration.
package flags

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvFileVariable names the environment variable holding the path of the optional .env file.
const EnvFileVariable = "BACKUPNOTIFY_ENV_FILE"

// defaultEnvFile is the .env file loaded when EnvFileVariable is unset.
const defaultEnvFile = ".env"

// defaultMaxRetries is the number of retries after the first failed delivery attempt.
const defaultMaxRetries = 10

// defaultRetryWaitSeconds is the pause between delivery attempts, in seconds.
const defaultRetryWaitSeconds = 30

// defaultHTTPTimeout bounds one delivery attempt.
const defaultHTTPTimeout = 60 * time.Second

// defaultAPIRate is the number of notify requests per second accepted by the HTTP API.
const defaultAPIRate = 5

// errInvalidLogFormat indicates an invalid log format was specified.
// It is used in SetupLogging to report configuration errors.
var errInvalidLogFormat = errors.New("invalid log format specified")

// errInvalidLogLevel indicates an invalid log level was specified.
// It is used in SetupLogging to report configuration errors.
var errInvalidLogLevel = errors.New("invalid log level specified")

// errLoadEnvFileFailed indicates the .env file exists but could not be loaded.
var errLoadEnvFileFailed = errors.New("failed to load env file")

// errReadFileFailed indicates a failure to read a file’s contents.
// It is used in getSecretFromFile to wrap os.ReadFile errors.
var errReadFileFailed = errors.New("failed to read secret file")

// errSetFlagFailed indicates a failure to read or set a flag’s value.
var errSetFlagFailed = errors.New("failed to set flag value")

// errConflictingSchedule indicates both --schedule and --run-once were given.
var errConflictingSchedule = errors.New("only one of schedule and run-once can be defined")

// listSeparator splits list valued environment variables.
var listSeparator = regexp.MustCompile("[, ]+")

// secretFlags lists the flags whose value may name a file holding the secret.
var secretFlags = []string{
	"telegram-bot-token",
	"http-api-token",
}

// RegisterNotificationFlags adds the Telegram target, retry policy, and status gate flags to the root command.
func RegisterNotificationFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()

	flags.String(
		"telegram-bot-token",
		envString("BACKUPNOTIFY_TELEGRAM_BOT_TOKEN"),
		"Telegram Bot API token, or a file containing it")

	flags.String(
		"telegram-api-url",
		envString("BACKUPNOTIFY_TELEGRAM_API_URL"),
		"Telegram Bot API server, e.g. a self-hosted telegram-bot-api instance")

	flags.String(
		"telegram-chat-id",
		envString("BACKUPNOTIFY_TELEGRAM_CHAT_ID"),
		"Telegram chat id or @channel name to notify")

	flags.String(
		"telegram-message-thread-id",
		envString("BACKUPNOTIFY_TELEGRAM_MESSAGE_THREAD_ID"),
		"Forum topic to post into")

	flags.Bool(
		"telegram-disable-notification",
		envBool("BACKUPNOTIFY_TELEGRAM_DISABLE_NOTIFICATION"),
		"Deliver messages silently")

	flags.Int(
		"notification-max-retries",
		envInt("BACKUPNOTIFY_NOTIFICATION_MAX_RETRIES"),
		"Retries after the first failed delivery attempt")

	flags.Int(
		"notification-retry-wait",
		envInt("BACKUPNOTIFY_NOTIFICATION_RETRY_WAIT"),
		"Seconds to wait between delivery attempts")

	flags.Duration(
		"notification-http-timeout",
		envDuration("BACKUPNOTIFY_NOTIFICATION_HTTP_TIMEOUT"),
		"Timeout of a single delivery attempt")

	flags.Duration(
		"notification-deadline",
		envDuration("BACKUPNOTIFY_NOTIFICATION_DEADLINE"),
		"Overall time limit for delivering one notification, 0 for none")

	flags.Bool(
		"notify-on-success",
		envBool("BACKUPNOTIFY_NOTIFY_ON_SUCCESS"),
		"Notify when a job succeeds")

	flags.Bool(
		"notify-on-warning",
		envBool("BACKUPNOTIFY_NOTIFY_ON_WARNING"),
		"Notify when a job finishes with a warning")

	flags.Bool(
		"notify-on-failure",
		envBool("BACKUPNOTIFY_NOTIFY_ON_FAILURE"),
		"Notify when a job fails")
}

// RegisterSystemFlags adds the logging flags to the root command.
func RegisterSystemFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()

	flags.StringP(
		"log-format",
		"l",
		viper.GetString("BACKUPNOTIFY_LOG_FORMAT"),
		"Sets what logging format to use for console output. Possible values: Auto, LogFmt, Pretty, JSON")

	flags.BoolP(
		"debug",
		"d",
		envBool("BACKUPNOTIFY_DEBUG"),
		"Enable debug mode with verbose logging")

	flags.BoolP(
		"trace",
		"",
		envBool("BACKUPNOTIFY_TRACE"),
		"Enable trace mode with very verbose logging - caution, exposes credentials")

	flags.String(
		"log-level",
		envString("BACKUPNOTIFY_LOG_LEVEL"),
		"The maximum log level that will be written to STDERR. Possible values: panic, fatal, error, warn, info, debug or trace")

	flags.BoolP(
		"no-color",
		"",
		viper.IsSet("NO_COLOR"),
		"Disable ANSI color escape codes in log output")
}

// RegisterAPIFlags adds the HTTP API flags to the root command.
func RegisterAPIFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()

	flags.String(
		"http-api-host",
		envString("BACKUPNOTIFY_HTTP_API_HOST"),
		"Host to bind the HTTP API to (default all interfaces)")

	flags.String(
		"http-api-port",
		envString("BACKUPNOTIFY_HTTP_API_PORT"),
		"Port for the HTTP API")

	flags.String(
		"http-api-token",
		envString("BACKUPNOTIFY_HTTP_API_TOKEN"),
		"Bearer token required by the HTTP API, or a file containing it")

	flags.Int(
		"http-api-rate",
		envInt("BACKUPNOTIFY_HTTP_API_RATE"),
		"Notify requests per second accepted by the HTTP API")
}

// RegisterJobFlags adds the job runner flags to a command.
// They are local to the command because only the run command executes jobs.
func RegisterJobFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringP(
		"trigger",
		"t",
		envString("BACKUPNOTIFY_TRIGGER"),
		"What started the backup, e.g. cron or manual")

	flags.String(
		"label",
		envString("BACKUPNOTIFY_LABEL"),
		"Human readable job name")

	flags.StringP(
		"schedule",
		"s",
		envString("BACKUPNOTIFY_SCHEDULE"),
		"The cron expression which defines when to run the job")

	flags.Bool(
		"run-once",
		envBool("BACKUPNOTIFY_RUN_ONCE"),
		"Run the job once and exit")

	flags.IntSlice(
		"warning-exit-codes",
		envIntSlice("BACKUPNOTIFY_WARNING_EXIT_CODES"),
		"Exit codes reported as a warning instead of a failure")

	flags.Duration(
		"job-timeout",
		envDuration("BACKUPNOTIFY_JOB_TIMEOUT"),
		"Maximum run time of the job command, 0 for none")
}

// envString binds and retrieves a string value from an environment variable.
func envString(key string) string {
	viper.MustBindEnv(key)

	return viper.GetString(key)
}

// envInt binds and retrieves an integer value from an environment variable.
func envInt(key string) int {
	viper.MustBindEnv(key)

	return viper.GetInt(key)
}

// envIntSlice binds and retrieves a comma or space separated integer list from an environment variable.
// Entries that are not integers are logged and skipped.
func envIntSlice(key string) []int {
	// Due to issue spf13/viper#380, can't use viper.GetIntSlice:
	fields := listSeparator.Split(strings.TrimSpace(envString(key)), -1)
	values := make([]int, 0, len(fields))

	for _, field := range fields {
		if field == "" {
			continue
		}

		value, err := strconv.Atoi(field)
		if err != nil {
			logrus.WithField("variable", key).WithError(err).Warn("Ignoring invalid integer")

			continue
		}

		values = append(values, value)
	}

	return values
}

// envBool binds and retrieves a boolean value from an environment variable.
func envBool(key string) bool {
	viper.MustBindEnv(key)

	return viper.GetBool(key)
}

// envDuration binds and retrieves a duration value from an environment variable.
func envDuration(key string) time.Duration {
	viper.MustBindEnv(key)

	return viper.GetDuration(key)
}

// SetDefaults loads the optional .env file and sets the default environment variable values.
// Variables already present in the environment win over the .env file.
func SetDefaults() {
	if err := loadEnvFile(); err != nil {
		logrus.WithError(err).Warn("Ignoring env file")
	}

	viper.AutomaticEnv()
	viper.SetDefault("BACKUPNOTIFY_TELEGRAM_API_URL", "https://api.telegram.org")
	viper.SetDefault("BACKUPNOTIFY_NOTIFICATION_MAX_RETRIES", defaultMaxRetries)
	viper.SetDefault("BACKUPNOTIFY_NOTIFICATION_RETRY_WAIT", defaultRetryWaitSeconds)
	viper.SetDefault("BACKUPNOTIFY_NOTIFICATION_HTTP_TIMEOUT", defaultHTTPTimeout)
	viper.SetDefault("BACKUPNOTIFY_NOTIFY_ON_SUCCESS", true)
	viper.SetDefault("BACKUPNOTIFY_NOTIFY_ON_WARNING", true)
	viper.SetDefault("BACKUPNOTIFY_NOTIFY_ON_FAILURE", true)
	viper.SetDefault("BACKUPNOTIFY_HTTP_API_PORT", "8080")
	viper.SetDefault("BACKUPNOTIFY_HTTP_API_RATE", defaultAPIRate)
	viper.SetDefault("BACKUPNOTIFY_TRIGGER", "manual")
	viper.SetDefault("BACKUPNOTIFY_LOG_LEVEL", "info")
	viper.SetDefault("BACKUPNOTIFY_LOG_FORMAT", "auto")
}

// loadEnvFile loads the file named by EnvFileVariable, or .env, into the process environment.
// A missing file is not an error.
func loadEnvFile() error {
	path := os.Getenv(EnvFileVariable)
	if path == "" {
		path = defaultEnvFile
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%w: %s: %w", errLoadEnvFileFailed, path, err)
	}

	logrus.WithField("path", path).Debug("Loaded env file")

	return nil
}

// GetSecretsFromFiles replaces secret flag values with file contents if they reference files.
// Secret flags not registered on the command are ignored.
func GetSecretsFromFiles(rootCmd *cobra.Command) error {
	flags := rootCmd.PersistentFlags()

	for _, secret := range secretFlags {
		if err := getSecretFromFile(flags, secret); err != nil {
			return fmt.Errorf("failed to get secret from flag %v: %w", secret, err)
		}
	}

	return nil
}

// getSecretFromFile updates a flag’s value with file contents if it references a file.
func getSecretFromFile(flags *pflag.FlagSet, secret string) error {
	flag := flags.Lookup(secret)
	if flag == nil {
		return nil
	}

	value := flag.Value.String()
	if value == "" || !isFilePath(value) {
		return nil
	}

	content, err := os.ReadFile(value)
	if err != nil {
		return fmt.Errorf("%w: %w", errReadFileFailed, err)
	}

	if err := flags.Set(secret, strings.TrimSpace(string(content))); err != nil {
		return fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	return nil
}

// isFilePath determines if a string likely represents a file path.
// It checks for file existence, avoiding false positives from values like "123:ABC" bot tokens.
func isFilePath(path string) bool {
	firstColon := strings.IndexRune(path, ':')
	if firstColon != 1 && firstColon != -1 {
		// A colon past the drive letter position rules out a path; bot tokens look like "123456:ABC".
		return false
	}

	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}

// ProcessFlagAliases applies the helper flags to the flags they stand for.
// --debug and --trace raise the log level; --trace wins when both are set.
func ProcessFlagAliases(flags *pflag.FlagSet) error {
	if flagIsEnabled(flags, "debug") {
		if err := flags.Set("log-level", "debug"); err != nil {
			return fmt.Errorf("%w: %w", errSetFlagFailed, err)
		}
	}

	if flagIsEnabled(flags, "trace") {
		if err := flags.Set("log-level", "trace"); err != nil {
			return fmt.Errorf("%w: %w", errSetFlagFailed, err)
		}
	}

	return nil
}

// SetupLogging configures the global logger based on log-related flags.
// It sets the log format and level, returning an error for invalid configurations.
func SetupLogging(flags *pflag.FlagSet) error {
	logFormat, err := flags.GetString("log-format")
	if err != nil {
		return fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	noColor, err := flags.GetBool("no-color")
	if err != nil {
		return fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	if err := configureLogFormat(logFormat, noColor); err != nil {
		return err
	}

	rawLogLevel, err := flags.GetString("log-level")
	if err != nil {
		return fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	logLevel, err := logrus.ParseLevel(rawLogLevel)
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidLogLevel, err)
	}

	logrus.SetLevel(logLevel)

	return nil
}

// configureLogFormat sets the logrus formatter based on the specified format and color preference.
// It returns an error if the format is invalid.
func configureLogFormat(logFormat string, noColor bool) error {
	switch strings.ToLower(logFormat) {
	case "auto":
		logrus.SetFormatter(&logrus.TextFormatter{
			DisableColors:             noColor,
			EnvironmentOverrideColors: true,
		})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "logfmt":
		logrus.SetFormatter(&logrus.TextFormatter{
			DisableColors: true,
			FullTimestamp: true,
		})
	case "pretty":
		logrus.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !noColor,
			FullTimestamp: false,
		})
	default:
		return fmt.Errorf("%w: %s", errInvalidLogFormat, logFormat)
	}

	return nil
}

// JobFlags holds the job runner settings read from the command line.
type JobFlags struct {
	Trigger          string
	Label            string
	Schedule         string
	RunOnce          bool
	WarningExitCodes []int
	Timeout          time.Duration
}

// ReadJobFlags retrieves the job runner flags registered by RegisterJobFlags.
//
// Parameters:
//   - cmd: Command the job flags were registered on.
//
// Returns:
//   - JobFlags: Parsed settings; Schedule is cleared when RunOnce is set.
//   - error: Non-nil if a flag is missing or --schedule was combined with --run-once.
func ReadJobFlags(cmd *cobra.Command) (JobFlags, error) {
	flags := cmd.Flags()

	var (
		jobFlags JobFlags
		err      error
	)

	if jobFlags.Trigger, err = flags.GetString("trigger"); err != nil {
		return JobFlags{}, fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	if jobFlags.Label, err = flags.GetString("label"); err != nil {
		return JobFlags{}, fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	if jobFlags.Schedule, err = flags.GetString("schedule"); err != nil {
		return JobFlags{}, fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	if jobFlags.RunOnce, err = flags.GetBool("run-once"); err != nil {
		return JobFlags{}, fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	if jobFlags.WarningExitCodes, err = flags.GetIntSlice("warning-exit-codes"); err != nil {
		return JobFlags{}, fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	if jobFlags.Timeout, err = flags.GetDuration("job-timeout"); err != nil {
		return JobFlags{}, fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	if jobFlags.RunOnce && flags.Changed("schedule") {
		return JobFlags{}, errConflictingSchedule
	}

	if jobFlags.RunOnce {
		jobFlags.Schedule = ""
	}

	return jobFlags, nil
}

// flagIsEnabled checks if a boolean flag is set to true.
// An undefined flag counts as disabled.
func flagIsEnabled(flags *pflag.FlagSet, name string) bool {
	value, err := flags.GetBool(name)
	if err != nil {
		logrus.WithField("flag", name).Debug("Flag is not defined")

		return false
	}

	return value
}
