package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORSHandler は指定されたオリジンからのリプレイ閲覧を許可するミドルウェアを返します。
func CORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler
}
