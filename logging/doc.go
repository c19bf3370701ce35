// Package logging builds the signer's structured logger: a slog.Logger
// rendered either as text or JSON, optionally tagged with a per-process or
// per-connection correlation id.
package logging
