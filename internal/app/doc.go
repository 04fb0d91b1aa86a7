// Package app wires the dashboard together and manages its lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, config file, .env and environment
//	2. Initialize logging and OpenTelemetry
//	3. Open the load journal and the dataset cache over the price file
//	4. Create the websocket hub and the refresh scheduler
//	5. Build the services, handlers and the chi router
//	6. Create the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// Run serves until SIGINT or SIGTERM. Shutdown drains in-flight requests,
// stops the scheduler and the hub, closes the journal and flushes metrics.
// The package never calls os.Exit.
package app
