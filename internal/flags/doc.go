// Package flags manages command-line flags and environment variables for backupnotify configuration.
// It configures the Telegram notifier, the job runner, the HTTP API, and logging via Cobra and Viper.
//
// Key components:
//   - SetDefaults: Loads an optional .env file and registers environment defaults.
//   - RegisterNotificationFlags: Adds Telegram target, retry, and status gate flags.
//   - RegisterSystemFlags: Adds logging flags.
//   - RegisterAPIFlags: Adds HTTP API flags.
//   - RegisterJobFlags: Adds job runner and schedule flags.
//   - SetupLogging: Configures logrus based on flags.
//
// Usage example:
//
//	cmd := &cobra.Command{}
//	flags.SetDefaults()
//	flags.RegisterSystemFlags(cmd)
//	err := flags.SetupLogging(cmd.PersistentFlags())
//	if err != nil {
//	    logrus.WithError(err).Fatal("Logging setup failed")
//	}
//
// Every flag takes its default from a BACKUPNOTIFY_* environment variable bound through Viper.
package flags
