// Package server wires the launcher together.
//
// NewServer builds, in order: the logger, metrics and tracer, the window
// state store selected by STORE_BACKEND, the HTTP prober, the launcher
// service, the catalog loaded from CATALOG_DIR, and the gin router with
// its middleware, REST handlers, websocket event stream and metrics
// endpoints.
//
// Lifecycle:
//  1. NewServer
//  2. Start: health monitor, then autostart applications
//  3. Run: serve HTTP until Close
//  4. Close: drain HTTP, dispose the launcher, close the store
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(ctx, cfg)
//	srv.Start(ctx)
//	go srv.Run()
//	defer srv.Close(context.Background())
package server
