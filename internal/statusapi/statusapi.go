// Package statusapi exposes a running nadam process's negotiated state
// and per-message traffic counters over HTTP, the way the teacher's
// app/host surface exposes a status endpoint alongside its interactive
// commands.
package statusapi

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/mr-tron/base58"

	"github.com/tez-capital/nadam/nadam"
	"github.com/tez-capital/nadam/internal/stats"
)

// Server wraps the fiber app; embedders call Listen directly on App for
// control over shutdown.
type Server struct {
	App *fiber.App
}

type catalogEntry struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	Size uint32 `json:"size"`
	Tag  string `json:"tag"`
}

type statusResponse struct {
	TagLen  int           `json:"tag_len"`
	Running bool          `json:"running"`
	Traffic []stats.Entry `json:"traffic"`
}

// New builds a Server reporting on catalog and counters. running is
// polled at request time so /status always reflects the Session's
// current state.
func New(catalog *nadam.Catalog, counters *stats.Counters, tagLen func() int, running func() bool) *Server {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Get("/catalog", func(c *fiber.Ctx) error {
		entries := make([]catalogEntry, catalog.Len())
		for i := 0; i < catalog.Len(); i++ {
			d := catalog.At(i)
			kind, size := "fixed", d.Size.Total
			if d.Size.Variable {
				kind, size = "variable", d.Size.Max
			}
			entries[i] = catalogEntry{
				Name: d.Name,
				Kind: kind,
				Size: size,
				Tag:  base58.Encode(d.Hash[:]),
			}
		}
		return c.JSON(entries)
	})

	app.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(statusResponse{
			TagLen:  tagLen(),
			Running: running(),
			Traffic: counters.Snapshot(),
		})
	})

	return &Server{App: app}
}

// ListenAddr is a small helper for building a ":port" address from a
// bare port flag value.
func ListenAddr(port int) string {
	return fmt.Sprintf(":%d", port)
}
