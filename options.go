package zipvfs

import "log/slog"

// Option configures a Handler.
type Option func(*Handler)

// WithSizeLimit sets the policy deciding which entries ContentsToBytes may
// load and which entries OpenInputStream streams instead of buffering.
func WithSizeLimit(limit SizeLimit) Option {
	return func(h *Handler) {
		h.limit = limit
	}
}

// WithLogger sets the logger for handler diagnostics.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}
