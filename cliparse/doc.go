// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles configuration from CLI flags and environment
variables. Flags win; env fills the gaps.

Required:

  - DATABASE_URL (-d): connection string

Optional:

  - PORT (-p): server port (default 5000)
  - DATABASE_TYPE (-t): sqlite or postgres (default sqlite)
  - RATE_LIMIT_REQUESTS (--rate-limit): per-address threshold (default 10)
  - RATE_LIMIT_WINDOW (--rate-window): window seconds (default 60)
  - RATE_LIMIT_SHARED (--rate-shared): count in the DB for
    multi-instance deployments (postgres only)
  - BROADCAST_DRIVER (--broadcast): memory or postgres
  - SHARE_BASE_URL (--share-base): base for share links

A .env file is loaded by main before parsing, so local development
needs no exported variables.
*/
package cliparse
