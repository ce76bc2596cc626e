/*
Package launcher supervises launched front-end applications.

# Overview

A Service owns a registry of Processes, one per application id. Launch
probes the application's address through an injected Prober and registers
a running Process on success; Stop persists the window geometry through an
injected Store and unregisters it. A health monitor re-probes active
processes on a ticker and marks unresponsive running processes crashed.

# Lifecycle

	starting --> running --> stopped
	    |            |
	    +------------+-----> crashed

stopped and crashed are terminal. A crashed process stays inspectable
until Stop, Restart or a new Launch cleans it up.

# Results

Every operation produces a LaunchResult, returned to the caller and
published on the Events broadcaster. Failures carry a *LaunchError whose
Code is one of the ErrorCode constants; UserMessage gives the short
sanitized text, DetailedReport everything known about the failure.

# Usage

	svc := launcher.NewService(prober, store, logger, launcher.DefaultOptions())
	svc.Start()
	defer svc.Dispose(ctx)

	events, _ := svc.Events().Subscribe()
	res := svc.Launch(ctx, app)
	if !res.Success {
		log.Println(res.Err.DetailedReport())
	}
*/
package launcher
