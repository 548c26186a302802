package main

import (
	"context"
	"time"

	"github.com/sampaiobrenner/bookstore/config"
	"github.com/sampaiobrenner/bookstore/internal/app"
	"github.com/sampaiobrenner/bookstore/pkg/sigctx"
)

const closeTimeout = 5 * time.Second

func main() {
	sigCtx, closeApp := sigctx.NotifyContext()
	defer closeApp()

	cfg := config.Load()
	cfg.Print()

	shop := app.New(sigCtx, cfg)

	shop.Run(closeApp)

	<-sigCtx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	shop.Close(ctx)
}
