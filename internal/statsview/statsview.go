// Package statsview serves live runtime charts (heap, goroutines, GC) of the
// emulator process.
package statsview

import (
	"fmt"
	"io"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

const (
	DefaultAddress = "localhost:12600"
	path           = "/debug/statsview"
)

// URL returns the page served for addr.
func URL(addr string) string {
	return fmt.Sprintf("http://%s%s", addr, path)
}

// Launch starts the stats server in a new goroutine and reports its URL to
// output. The returned stop function shuts the server down.
func Launch(output io.Writer, addr string) (stop func()) {
	viewer.SetConfiguration(viewer.WithAddr(addr))
	mgr := statsview.New()
	go mgr.Start()

	fmt.Fprintf(output, "stats server available at %s\n", URL(addr))
	return mgr.Stop
}
