package main

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"
)

func newCmd_Serve() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run a /metrics endpoint exposing the process-wide Prometheus counters",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "address to listen on",
				Value: ":9645",
			},
		},
		Action: func(c *cli.Context) error {
			addr := c.String("listen")
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			klog.Infof("serving /metrics on %s", addr)
			server := &http.Server{Addr: addr, Handler: mux}
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		},
	}
}
