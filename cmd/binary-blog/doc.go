// Package main hosts the binary-blog entrypoint.
//
// Architecture overview:
//   - Build phase: internal/content collects the posts embedded by internal/corpus, internal/page compiles each one
//     (plus the index, feed, robots policy and not-found page) into complete documents, and internal/tree turns the
//     result into an immutable tree where every node already carries its deflate form and a build-versioned etag.
//   - Serve phase: internal/api routes GET /, /{a}, /{a}/ and /{a}/* into internal/resolver, which performs the
//     lookup, trailing-slash redirect, conditional GET and encoding negotiation. Misses go to the not-found
//     negotiator. The tree is shared read-only by every request goroutine, so no locks are needed.
//   - Export: the same tree can be written to a directory or GCS bucket via internal/export and internal/storage.
//   - Configuration & plumbing: Viper populates config from env/files (prefix BLOG, PORT also honoured); zap provides
//     structured logging; Prometheus metrics are exported via the metrics middleware and /metrics handler; optional
//     OpenTelemetry spans wrap each request.
//
// Quick checklist:
//   - Run locally: go run ./cmd/binary-blog serve (or --config config.yaml).
//   - Stamp the version: -ldflags "-X github.com/JakeFAU/binary-blog/internal/config.BuildVersion=$(git describe)".
//     Every etag changes with it.
//   - Publish statically: binary-blog export --dest gs://bucket/site.
package main
