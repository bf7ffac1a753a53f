package httpengine

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ferro-labs/slumberlib/exchange"
)

// RequestError reports a transport failure during the send stage (spec.md
// §4.2 "Send stage": "on transport error: produce RequestError with the
// in-progress RequestRecord preserved").
type RequestError struct {
	Cause error
}

func (e *RequestError) Error() string { return fmt.Sprintf("send request: %v", e.Cause) }
func (e *RequestError) Unwrap() error { return e.Cause }

// insecureHostTransport routes requests to hosts named in insecureHosts
// through a Transport with certificate verification disabled, and every
// other request through a normal verifying Transport (spec.md §4.2 "a HTTP
// client honouring a list of hosts whose TLS certificates are ignored
// (test-mode use)"). Grounded on the teacher's providers.ollama-style
// http.Client construction and cmd/ferrogw's http.Server timeout idiom,
// applied here to the client side.
type insecureHostTransport struct {
	verifying *http.Transport
	insecure  *http.Transport
	hosts     map[string]bool
}

func (t *insecureHostTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.hosts[req.URL.Hostname()] {
		return t.insecure.RoundTrip(req)
	}
	return t.verifying.RoundTrip(req)
}

// newClient builds the *http.Client the send stage uses.
func newClient(insecureHosts map[string]bool) *http.Client {
	if len(insecureHosts) == 0 {
		return &http.Client{}
	}
	return &http.Client{
		Transport: &insecureHostTransport{
			verifying: &http.Transport{},
			insecure:  &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}},
			hosts:     insecureHosts,
		},
	}
}

// send performs the network call described in spec.md §4.2 "Send stage".
// On success it returns the ResponseRecord and the time the full response
// body finished being received; on transport failure it returns
// *RequestError.
func send(ctx context.Context, client *http.Client, req *exchange.RequestRecord) (*exchange.ResponseRecord, time.Time, error) {
	httpReq, err := http.NewRequestWithContext(ctx, string(req.Method), req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, time.Time{}, &RequestError{Cause: err}
	}
	for _, h := range req.Headers {
		httpReq.Header.Add(h.Name, h.Value)
	}

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, time.Time{}, &RequestError{Cause: err}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	end := time.Now()
	if err != nil {
		return nil, end, &RequestError{Cause: err}
	}

	var headers exchange.Headers
	for name, values := range httpResp.Header {
		for _, v := range values {
			headers = append(headers, exchange.Header{Name: name, Value: v})
		}
	}

	return &exchange.ResponseRecord{
		StatusCode: httpResp.StatusCode,
		Headers:    headers,
		Body:       body,
	}, end, nil
}
