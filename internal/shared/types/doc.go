// Package types provides shared data structures for the launcher backend.
//
// Core Types:
//   - Application: A deployed front-end the launcher can supervise
//   - Kind: How the application is reached (web server or local content)
//   - Status: Deployment lifecycle of the application
//   - CatalogStats: Catalog statistics
//
// Only ready, running and failed applications are launchable; see
// Status.Launchable.
//
// Example Usage:
//
//	app := &types.Application{
//	    ID:     "notes",
//	    Title:  "Notes",
//	    Kind:   types.KindWeb,
//	    Status: types.StatusReady,
//	    URL:    "http://localhost:5173",
//	}
package types
