package main

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

func newRequest() *resty.Request {
	c := resty.New().
		SetBaseURL(apiFlag).
		SetTimeout(30 * time.Second)
	req := c.R()
	if keyFlag != "" {
		req.SetAuthToken(keyFlag)
	}
	return req
}

// body returns the response body, or an error for non-2xx statuses.
func body(resp *resty.Response, err error) (string, error) {
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
	}
	return resp.String(), nil
}
