// Package logger wraps zap for the release pipeline:
//   - a global sugared logger writing console-formatted lines to stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing for the --log-level flag,
//   - convenience functions (InfoKV, WarnKV, ErrorKV, etc.).
//
// Stdout is left to child processes and to reports such as the consistency
// check, so every log line goes to stderr.
package logger
