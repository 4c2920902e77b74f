// Package api exposes the engine over HTTP with gin.
//
// Every response is JSON with an "ok" flag. Requests are tied to a session
// through the X-Session-ID header; a new id is generated when the header is
// missing and echoed back on every response. Model backed routes (/api/ask
// and /api/mine) share a token bucket limiter.
//
//	router := api.NewRouter(engine, cfg.Server)
//	srv := api.NewServer(cfg.Server.Addr, router)
//	err := srv.Run(ctx)
package api
