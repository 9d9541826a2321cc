package handler

import "github.com/gofiber/fiber/v2"

// DefaultBufferedBodyLimit caps request bodies held in memory.
const DefaultBufferedBodyLimit = 4 << 20

// ServerConfig returns the fiber settings the API runs with.
// Request bodies are streamed: multipart files are spooled by the HTTP server
// to temporary files instead of memory, so bufferedBodyLimit does not bound
// upload size. The upload service enforces the configured maximum.
func ServerConfig(bufferedBodyLimit int) fiber.Config {
	if bufferedBodyLimit <= 0 {
		bufferedBodyLimit = DefaultBufferedBodyLimit
	}
	return fiber.Config{
		ErrorHandler:      ErrorHandler(),
		StreamRequestBody: true,
		BodyLimit:         bufferedBodyLimit,
	}
}
