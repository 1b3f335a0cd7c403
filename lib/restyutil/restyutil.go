// Package restyutil writes full request/response exchanges of a resty
// client to some output, one file per message. Scrapers break when
// sites change; diffing these dumps against a browser's devtools view
// is the fastest way to find out what the site now wants.
package restyutil

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

type InstrumentOutput interface {
	Write(id string, contents string)
}

// DumpClient registers hooks that write every finished exchange to
// output. A nil output makes this a no-op, so callers can pass through
// an unset package-level variable.
func DumpClient(client *resty.Client, output InstrumentOutput) {
	if output == nil {
		return
	}

	var idcounter uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := atomic.AddUint64(&idcounter, 1)
		output.Write(fmt.Sprintf("%04d", id), formatExchange(res))
		return nil
	})
	client.OnError(func(req *resty.Request, err error) {
		id := atomic.AddUint64(&idcounter, 1)
		output.Write(fmt.Sprintf("%04d_error", id),
			fmt.Sprintf("%s %s\n\n%s\n", req.Method, req.URL, err))
	})
}

func writeHeaders(out *strings.Builder, prefix string, headers http.Header) {
	for name, vals := range headers {
		for _, v := range vals {
			fmt.Fprintf(out, "%s%s: %s\n", prefix, name, v)
		}
	}
}

func requestBody(req *http.Request) string {
	if req == nil || req.GetBody == nil {
		return ""
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Sprintf("(unreadable body: %s)", err)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return fmt.Sprintf("(unreadable body: %s)", err)
	}
	return string(raw)
}

func formatExchange(res *resty.Response) string {
	var out strings.Builder

	fmt.Fprintf(&out, "> %s %s\n", res.Request.Method, res.Request.URL)
	if res.Request.RawRequest != nil {
		writeHeaders(&out, "> ", res.Request.RawRequest.Header)
		if body := requestBody(res.Request.RawRequest); body != "" {
			out.WriteString("\n" + body + "\n")
		}
	}

	fmt.Fprintf(&out, "\n< %s\n", res.Status())
	writeHeaders(&out, "< ", res.Header())
	out.WriteString("\n")
	out.WriteString(res.String())
	out.WriteString("\n")

	return out.String()
}
