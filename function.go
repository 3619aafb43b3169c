package digest

import (
	"os"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/rs/zerolog"

	"github.com/pep299/daily-news-digest/internal/transport/server"
)

// DefaultFunctionTarget is registered when FUNCTION_TARGET is not set
const DefaultFunctionTarget = "RunDigest"

func init() {
	target := functionTarget()

	logger := zerolog.New(os.Stderr)
	logger.Info().Msgf("✅ Registering function: %s", target)

	functions.HTTP(target, server.HandleRequest)
}

func functionTarget() string {
	if target := os.Getenv("FUNCTION_TARGET"); target != "" {
		return target
	}
	return DefaultFunctionTarget
}
