package notification

import (
	"context"
	"log/slog"
)

const (
	// KindCollateralDeposited indicates collateral entered the vault.
	KindCollateralDeposited = "collateral_deposited"
	// KindSyntheticMinted indicates new synthetic supply was issued.
	KindSyntheticMinted = "synthetic_minted"
	// KindTradeExecuted indicates a protocol-priced buy or sell completed.
	KindTradeExecuted = "trade_executed"
	// KindRedeemed indicates synthetic supply was redeemed for collateral.
	KindRedeemed = "redeemed"
)

// Message describes a protocol event payload.
type Message struct {
	Kind   string
	User   string
	Fields map[string]any
}

// Notifier delivers protocol events to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier is a stub implementation that writes events to the logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	attrs := []any{"kind", message.Kind, "user", message.User}
	for k, v := range message.Fields {
		attrs = append(attrs, k, v)
	}
	n.logger.Info("protocol event", attrs...)
	return nil
}
