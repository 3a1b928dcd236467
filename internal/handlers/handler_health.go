package handlers

import (
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/middlewares"
)

func HandlerHealth(ctx *middlewares.AppContext) {
	ctx.SetJSONStatus(200, "OK")
}
