// Package ws streams launcher events to websocket clients.
//
// Each connection subscribes to the launcher's LaunchResult stream and
// receives every result as a launch_result frame. A slow client only
// loses its own oldest events; it never holds up the launcher.
//
// Frames (server to client):
//   - system: welcome, carries the connection id
//   - launch_result: one LaunchResult
//   - pong: answer to a client ping
//   - error: the client sent something unexpected
//
// Clients may send {"type":"ping"}. Connecting with ?app_id=notes limits
// the stream to one application.
//
//	handler := ws.NewHandler(svc.Events(), logger).WithMetrics(metrics)
//	router.GET("/events", handler.HandleConnection)
package ws
