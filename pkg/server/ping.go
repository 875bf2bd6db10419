package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fastjson"
)

var pingInterval = 500 * time.Millisecond

// PingUntil polls baseURL/api/ping and calls callback once the server answers.
// It gives up after timeout or when ctx is done.
func PingUntil(ctx context.Context, baseURL string, timeout time.Duration, callback func()) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pingURL := baseURL + "/api/ping"
	err := backoff.Retry(func() error {
		return ping(ctx, pingURL)
	}, backoff.WithContext(backoff.NewConstantBackOff(pingInterval), ctx))

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			logrus.Warnf("ping hits %s timeout", timeout)
		}
		return
	}

	callback()
}

func ping(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return backoff.Permanent(err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	v, err := fastjson.ParseBytes(body)
	if err != nil {
		return errors.Wrap(err, "invalid ping response")
	}

	if message := string(v.GetStringBytes("message")); message != "pong" {
		return errors.Errorf("unexpected ping message %q", message)
	}

	return nil
}
