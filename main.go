package main

import (
	"context"
	"os"

	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/cli"
	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/utils/apperr"
)

func main() {
	ctx := context.Background()
	if err := cli.Run(ctx, os.Args); err != nil {
		apperr.Handle(ctx, err)
		os.Exit(1)
	}
}
