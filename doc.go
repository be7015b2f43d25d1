// Package backend provides the comments API server.

// This package contains the application entry points. The actual
// implementation is organized into subpackages:

// - internal/handlers: HTTP request handlers for all API endpoints
// - internal/comments: comment tree assembly, sanitization, and the service layer
// - internal/captcha: redis-backed captcha challenges
// - internal/models: data models and database schemas
// - internal/repository: gorm data access
// - internal/cache: redis client and the comment page cache
// - internal/storage: image and text file uploads (local disk or S3)
// - internal/queue: RabbitMQ event publication
// - internal/websocket: WebSocket server for real-time comment delivery
// - internal/database: database connection and migrations
// - internal/middleware: HTTP middleware (request IDs, logging, metrics)
// - internal/seed: development data seeding
package backend
