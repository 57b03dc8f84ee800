package main

import (
	"context"
	"log"

	"github.com/cactripplanner/shortlinks/internal/container"
	"github.com/cactripplanner/shortlinks/internal/messaging"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/samber/do"
	"go.uber.org/zap"
)

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, options *container.Options) {
		if err := options.Validate(); err != nil {
			log.Fatalf("invalid options: %v", err)
		}

		injector := do.New()
		do.ProvideValue(injector, options)
		container.ConfigPackage(injector)
		container.LoggerPackage(injector)
		container.RedisPackage(injector)
		container.ConsumerGroupPackage(injector)

		logger := do.MustInvoke[*zap.Logger](injector)

		ctx, cancel := context.WithCancel(context.Background())
		stopped := make(chan struct{})

		hooks.OnStart(func() {
			group := do.MustInvoke[*messaging.ConsumerGroup](injector)

			if err := group.Start(ctx); err != nil {
				logger.Fatal("failed to start consumer group", zap.Error(err))
			}

			logger.Info("consumer running", zap.String("redis", options.RedisAddr))
			<-stopped
		})

		hooks.OnStop(func() {
			logger.Info("shutting down")
			cancel()

			if err := injector.Shutdown(); err != nil {
				logger.Error("shutdown error", zap.Error(err))
			}

			close(stopped)
			logger.Info("shutdown complete")
		})
	})

	cli.Run()
}
