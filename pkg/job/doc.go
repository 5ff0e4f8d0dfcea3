// Package job runs a backup command and classifies its result as a job outcome.
//
// The exit status decides the outcome: 0 is a success, a code listed in Job.WarningExitCodes is a
// warning, and anything else (including a command that cannot be started or exceeds its timeout)
// is a failure. Command output is forwarded line by line to the logger at debug level.
package job
