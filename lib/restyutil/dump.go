// Package restyutil dumps the http exchanges of a resty client for debugging
// scrapers against live pages.
package restyutil

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

type Output interface {
	Write(id string, contents string)
}

// DefaultRedactions covers the credentials a login form and session carry.
var DefaultRedactions = []string{"password", "_token", "cookie", "set-cookie", "x-csrf-token"}

// Dump writes every response the client receives to output. Form fields and
// headers named in redact (case-insensitive) have their values replaced.
// It must be registered before any response middleware that can fail.
func Dump(client *resty.Client, output Output, redact ...string) {
	if output == nil {
		return
	}
	names := make(map[string]struct{}, len(redact))
	for _, name := range redact {
		names[strings.ToLower(name)] = struct{}{}
	}

	var idcounter uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := atomic.AddUint64(&idcounter, 1)
		output.Write(
			fmt.Sprintf("%03d-%s.txt", id, strings.ToLower(res.Request.Method)),
			formatHttpMessage(res, names),
		)
		return nil
	})
}
