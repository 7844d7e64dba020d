// Command nadam-device is the processB side of the two-process worked
// example carried over from original_source/example/src/processB.c: it
// replies to a ping with a pong, counts incoming heartbeats, and logs
// both through the shared structured logger.
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
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/tez-capital/nadam/nadam"
	"github.com/tez-capital/nadam/internal/demo"
	"github.com/tez-capital/nadam/internal/stats"
	"github.com/tez-capital/nadam/logging"
	"github.com/tez-capital/nadam/transport/fifo"
)

func mustDevice(ctx context.Context, c *cli.Command) error {
	logger, _ := logging.NewFromEnv()

	dir := c.String("fifo-dir")
	if err := fifo.MakeFIFOs(dir); err != nil {
		return fmt.Errorf("nadam-device: %w", err)
	}
	endpoint, err := fifo.Dial(dir, fifo.RoleB)
	if err != nil {
		return fmt.Errorf("nadam-device: %w", err)
	}
	defer endpoint.Close()

	catalog, err := demo.NewCatalog()
	if err != nil {
		return fmt.Errorf("nadam-device: %w", err)
	}

	session := nadam.NewSession(catalog)
	counters := stats.New()

	if err := session.SetHandler("ping", counters.Wrap("ping", func(msg []byte, d *nadam.MessageDescriptor) {
		logger.Info("received ping", slog.String("body", string(msg)))
		if err := session.Send("pong", []byte("pong"), 4); err != nil {
			logger.Error("send pong failed", slog.Any("err", err))
		}
	})); err != nil {
		return fmt.Errorf("nadam-device: %w", err)
	}

	if err := session.SetHandler("heartbeat", counters.Wrap("heartbeat", func(msg []byte, d *nadam.MessageDescriptor) {
		seconds := math.Float64frombits(binary.LittleEndian.Uint64(msg))
		logger.Info("received heartbeat", slog.Float64("unix_seconds", seconds))
	})); err != nil {
		return fmt.Errorf("nadam-device: %w", err)
	}

	onError := func(err error) {
		logger.Error("session error", slog.Any("err", err))
	}

	if err := session.Initiate(c.Int("tag-len"), endpoint.Send, endpoint.Recv, onError); err != nil {
		return fmt.Errorf("nadam-device: initiate: %w", err)
	}
	defer session.Stop()

	sigCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	<-sigCtx.Done()
	logger.Info("shutting down")
	return nil
}

func main() {
	app := &cli.Command{
		Name:  "nadam-device",
		Usage: "Run the device side of the nadam worked example",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "fifo-dir", Value: "/tmp/nadam-demo", Usage: "directory holding the a_to_b/b_to_a named pipes"},
			&cli.IntFlag{Name: "tag-len", Value: 1, Usage: "minimum tag length to propose during the handshake"},
		},
		Action: mustDevice,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
