package pos

import (
	"fmt"
	"strings"

	"syntra-pos/config"
)

// PriceFallback decides what an order line gets as unit price when none was
// sent and no effective price can be resolved.
type PriceFallback string

const (
	PriceFallbackZero PriceFallback = "zero"
	PriceFallbackFail PriceFallback = "fail"
)

type ConcurrencyMode string

const (
	// LastWriteWins bumps the version column but never checks it.
	LastWriteWins ConcurrencyMode = "last_write_wins"
	// Optimistic requires the caller's version on update and rejects stale writes.
	Optimistic ConcurrencyMode = "optimistic"
)

type Options struct {
	PriceFallback   PriceFallback
	ConcurrencyMode ConcurrencyMode
}

func DefaultOptions() Options {
	return Options{PriceFallback: PriceFallbackZero, ConcurrencyMode: LastWriteWins}
}

func OptionsFromConfig(cfg config.POSConfig) (Options, error) {
	opts := DefaultOptions()

	switch PriceFallback(strings.ToLower(strings.TrimSpace(cfg.PriceFallback))) {
	case "", PriceFallbackZero:
	case PriceFallbackFail:
		opts.PriceFallback = PriceFallbackFail
	default:
		return Options{}, fmt.Errorf("unknown price fallback %q (want zero or fail)", cfg.PriceFallback)
	}

	switch ConcurrencyMode(strings.ToLower(strings.TrimSpace(cfg.ConcurrencyMode))) {
	case "", LastWriteWins:
	case Optimistic:
		opts.ConcurrencyMode = Optimistic
	default:
		return Options{}, fmt.Errorf("unknown concurrency mode %q (want last_write_wins or optimistic)", cfg.ConcurrencyMode)
	}

	return opts, nil
}
