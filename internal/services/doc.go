// Package services implements the business logic layer of the dashboard.
// Handlers and the CLI talk to services; services talk to the dataset cache
// and never to the file system directly.
//
// # Available Services
//
//	- DashboardService: pivot table, ticker history and the markdown report
//	- HealthService: health, readiness, liveness and version information
//
// # Error Handling
//
// Services return sentinel errors that handlers translate into problem
// responses:
//
//	- ErrTickerNotFound when the ticker has no observations
//	- ErrInvalidRange when from is after to
//	- ErrDatasetUnavailable wrapping loader failures, with the underlying
//	  *errors.AppError still reachable through errors.As
//
// # Testing
//
// Services are tested against a mocked DatasetSource:
//
//	src := new(mockSource)
//	src.On("Get", mock.Anything).Return(ds, nil)
//	svc := NewDashboardService(src, "Dashboard IBEX35", logger)
package services
