package caredir

import (
	"net/http/cookiejar"
	"time"

	"leadharvest/lib/restyutil"
	"leadharvest/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

var retryableStatus = map[int]bool{
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

// newHTTPClient builds the client both the api and dom providers share:
// browser-shaped headers, a real cookie jar, and linear backoff on the
// transient statuses the site throws under load.
func newHTTPClient() (*resty.Client, error) {
	client := resty.New()

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", userAgent)
	client.SetHeader("accept-language", "en-US,en;q=0.9")
	client.SetHeader("cache-control", "no-cache")
	client.SetTimeout(time.Second * 30)

	client.SetRetryCount(2)
	client.AddRetryCondition(func(res *resty.Response, err error) bool {
		return err != nil || retryableStatus[res.StatusCode()]
	})
	client.SetRetryAfter(func(c *resty.Client, res *resty.Response) (time.Duration, error) {
		return 2 * time.Second * time.Duration(res.Request.Attempt), nil
	})

	telemetry.InstrumentResty(client, "leadharvest.scrapers.caredir.http")
	restyutil.DumpClient(client, restyInstrumentOutput)
	return client, nil
}
