package main

import (
	"hobbyhub/pkg/config"
	app "hobbyhub/services/community/internal/app"

	_ "hobbyhub/services/community/docs" // Swagger docs
)

// @title           HobbyHub Community API
// @version         1.0
// @description     Posts, comments and upvotes for the HobbyHub hobby forum.

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Session token from X-Session-Token, as "Bearer <token>". Browsers can rely on the session cookie instead.

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if cfg.JWTSecret == "your-secret-key-change-in-production" || cfg.JWTSecret == "" {
		panic("JWT_SECRET must be set in environment variables")
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		panic(err)
	}

	if err := application.Run(); err != nil {
		panic(err)
	}

	application.Wait()

	if err := application.Shutdown(); err != nil {
		panic(err)
	}
}
