// Command nadam-host is the processA side of the two-process worked
// example carried over from original_source/example/src/processA.c: it
// pings its peer once at startup, sends a heartbeat on a timer, counts
// incoming pongs, and optionally serves an HTTP status endpoint or
// attaches an interactive monitor.
package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/tez-capital/nadam/nadam"
	"github.com/tez-capital/nadam/internal/demo"
	"github.com/tez-capital/nadam/internal/nadammon"
	"github.com/tez-capital/nadam/internal/statusapi"
	"github.com/tez-capital/nadam/internal/stats"
	"github.com/tez-capital/nadam/logging"
	"github.com/tez-capital/nadam/transport/fifo"
)

const defaultHeartbeatInterval = 2 * time.Second

func mustHost(ctx context.Context, c *cli.Command) error {
	logger, _ := logging.NewFromEnv()

	dir := c.String("fifo-dir")
	if err := fifo.MakeFIFOs(dir); err != nil {
		return fmt.Errorf("nadam-host: %w", err)
	}
	endpoint, err := fifo.Dial(dir, fifo.RoleA)
	if err != nil {
		return fmt.Errorf("nadam-host: %w", err)
	}
	defer endpoint.Close()

	catalog, err := demo.NewCatalog()
	if err != nil {
		return fmt.Errorf("nadam-host: %w", err)
	}

	session := nadam.NewSession(catalog)
	counters := stats.New()
	var running atomic.Bool

	if err := session.SetHandler("pong", counters.Wrap("pong", func(msg []byte, d *nadam.MessageDescriptor) {
		logger.Info("received pong", slog.String("body", string(msg)))
	})); err != nil {
		return fmt.Errorf("nadam-host: %w", err)
	}

	onError := func(err error) {
		logger.Error("session error", slog.Any("err", err))
	}

	if err := session.Initiate(c.Int("tag-len"), endpoint.Send, endpoint.Recv, onError); err != nil {
		return fmt.Errorf("nadam-host: initiate: %w", err)
	}
	running.Store(true)
	defer func() {
		running.Store(false)
		session.Stop()
	}()

	if err := session.Send("ping", []byte("ping"), 4); err != nil {
		logger.Error("send ping failed", slog.Any("err", err))
	}

	stop := make(chan struct{})
	heartbeatTicker := time.NewTicker(defaultHeartbeatInterval)
	defer heartbeatTicker.Stop()
	go func() {
		for {
			select {
			case <-stop:
				return
			case t := <-heartbeatTicker.C:
				var body [demo.HeartbeatSize]byte
				binary.LittleEndian.PutUint64(body[:], math.Float64bits(float64(t.Unix())))
				if err := session.SendWithImmutableName("heartbeat", body[:], demo.HeartbeatSize); err != nil {
					logger.Error("send heartbeat failed", slog.Any("err", err))
				}
			}
		}
	}()
	defer close(stop)

	if port := c.Int("http"); port != 0 {
		status := statusapi.New(catalog, counters, func() int { return 0 }, running.Load)
		go func() {
			if err := status.App.Listen(statusapi.ListenAddr(port)); err != nil {
				logger.Error("http status server exited", slog.Any("err", err))
			}
		}()
	}

	if c.Bool("monitor") {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return nadammon.Run(counters)
		}
		logger.Warn("monitor requested on a non-terminal stdout, falling back to log lines")
		monitorStop := make(chan struct{})
		go nadammon.LogFallback(logger, counters, monitorStop)
		defer close(monitorStop)
	}

	sigCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	<-sigCtx.Done()
	logger.Info("shutting down")
	return nil
}

func main() {
	app := &cli.Command{
		Name:  "nadam-host",
		Usage: "Run the host side of the nadam worked example",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "fifo-dir", Value: "/tmp/nadam-demo", Usage: "directory holding the a_to_b/b_to_a named pipes"},
			&cli.IntFlag{Name: "tag-len", Value: 1, Usage: "minimum tag length to propose during the handshake"},
			&cli.IntFlag{Name: "http", Value: 0, Usage: "port to serve /catalog and /status on, 0 to disable"},
			&cli.BoolFlag{Name: "monitor", Usage: "attach the interactive traffic monitor"},
		},
		Action: mustHost,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
