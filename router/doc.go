// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the HTTP routes using Go 1.22+ pattern routing.

	GET  /health
	POST /polls
	GET  /polls/{code}
	POST /polls/{code}/vote
	GET  /polls/{code}/results
	GET  /ws

NewRouter also assembles the core pipeline (store -> gate ->
coordinator -> broadcaster); the limiter and broadcaster come in from
main so the single-instance and multi-instance compositions differ
only there.
*/
package router
