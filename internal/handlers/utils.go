package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/flixyossef440-boop/qr-pulse-pass/internal/middlewares"
)

const maxBodyBytes = 1 << 20

// decodeJSONBody reads the request body into dst, capped at 1 MiB.
func decodeJSONBody(ctx *middlewares.AppContext, dst any) error {
	ctx.Request.Body = http.MaxBytesReader(ctx.Response, ctx.Request.Body, maxBodyBytes)

	if err := json.NewDecoder(ctx.Request.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}

	return nil
}

// durationMillis converts a duration to the millisecond count the API
// reports, clamped at zero.
func durationMillis(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}

	return d.Milliseconds()
}
