package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pagewatch/internal/app"
)

func main() {
	var (
		cfgPath string
		once    bool
	)
	flag.StringVar(&cfgPath, "config", "", "path to config yaml/json (empty: defaults + environment)")
	flag.BoolVar(&once, "once", false, "run a single check and exit")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(cfgPath)
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}

	if once {
		_, err = a.RunOnce(ctx)
	} else {
		err = a.Run(ctx)
	}
	_ = a.Close()
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}
}
