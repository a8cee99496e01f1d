package http

import (
	"golang.org/x/net/context"

	"github.com/tallier/tallier/service/app"
)

const (
	ctxKeyApp     = "app"
	ctxKeyRoute   = "route"
	ctxKeyVersion = "version"
)

func appFromContext(ctx context.Context) *app.App {
	return ctx.Value(ctxKeyApp).(*app.App)
}

func appInContext(ctx context.Context, app *app.App) context.Context {
	return context.WithValue(ctx, ctxKeyApp, app)
}

func routeFromContext(ctx context.Context) string {
	return ctx.Value(ctxKeyRoute).(string)
}

func routeInContext(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, ctxKeyRoute, route)
}

func versionFromContext(ctx context.Context) string {
	return ctx.Value(ctxKeyVersion).(string)
}

func versionInContext(ctx context.Context, version string) context.Context {
	return context.WithValue(ctx, ctxKeyVersion, version)
}
