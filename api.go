package main

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

const userAgent = "aidaily/1.0"

// NewHTTPClient returns the resty client shared by the survey and
// repository APIs. Requests and responses are logged at debug level.
func NewHTTPClient(logger Logger) *resty.Client {
	client := resty.New()
	client.SetHeader("User-Agent", userAgent)
	client.SetTimeout(5 * time.Minute)

	client.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logger.Debugf("start request %s %s", req.Method, req.URL)
		return nil
	})
	client.OnAfterResponse(func(c *resty.Client, res *resty.Response) error {
		logger.Debugf("finish request %s %s: %d in %s",
			res.Request.Method, res.Request.URL, res.StatusCode(), res.Time())
		return nil
	})

	return client
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func isSuccess(res *resty.Response) bool {
	return res.StatusCode() >= 200 && res.StatusCode() < 300
}
