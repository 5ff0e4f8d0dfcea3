// Package cmd contains the command-line interface (CLI) definitions and execution logic for backupnotify.
// It provides the root command and its subcommands, wiring flags, the Telegram notifier, the job runner,
// the scheduler, and the HTTP API together.
//
// Key components:
//   - rootCmd: Root command holding the shared notification, logging, and API flags.
//   - send: Sends one notification for an outcome given on the command line.
//   - run: Runs a backup command once or on a cron schedule and notifies its outcome.
//   - serve: Serves the HTTP notify and metrics API.
//   - shoutrrr-url: Prints the shoutrrr URL equivalent to the configured notifier.
//
// Usage examples:
//   - Run the CLI from main.go:
//     cmd.Execute()
//   - Back up nightly and report the result:
//     backupnotify run --trigger cron --label nightly --schedule "0 0 3 * * *" -- restic backup /data
//
// The package integrates with actions, flags, scheduling, notifications, and api packages,
// using Cobra for CLI parsing and logrus for logging.
package cmd
