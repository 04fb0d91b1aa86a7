// Package http implements the HTTP handlers of the dashboard: the JSON API
// under /api, the downloads under /api/export and the server-rendered pages.
// Handlers stay thin. They parse and validate the request, call a service and
// format the response.
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → DashboardService → dataset cache
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Error Handling
//
// API errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/data/ticker-not-found",
//	    "title": "Not Found",
//	    "status": 404,
//	    "detail": "ticker \"BBVA\" not found in dataset",
//	    "instance": "/api/data/ticker/BBVA/history"
//	}
//
// Pages render the same problem through the error template instead of JSON.
//
// # Caching
//
// The pivot endpoint sends the dataset fingerprint as a strong ETag and
// answers If-None-Match with 304, so polling clients only transfer the table
// when the price file changed.
//
// # Testing
//
// Handlers are tested with httptest against a mocked DashboardService.
package http
