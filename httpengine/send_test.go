package httpengine

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferro-labs/slumberlib/collection"
	"github.com/ferro-labs/slumberlib/exchange"
)

func TestSend_SuccessPopulatesResponseRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bar", r.Header.Get("X-Foo"))
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	req := &exchange.RequestRecord{
		Method:  collection.MethodGet,
		URL:     srv.URL,
		Headers: exchange.Headers{{Name: "X-Foo", Value: "bar"}},
	}
	resp, _, err := send(context.Background(), newClient(nil), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.Equal(t, []byte("hello"), resp.Body)
	ct, ok := resp.Headers.Get("Content-Type")
	require.True(t, ok)
	assert.Equal(t, "text/plain", ct)
}

func TestSend_TransportFailureReturnsRequestError(t *testing.T) {
	req := &exchange.RequestRecord{Method: collection.MethodGet, URL: "http://127.0.0.1:0/unreachable"}
	_, _, err := send(context.Background(), newClient(nil), req)
	require.Error(t, err)
	var reqErr *RequestError
	assert.ErrorAs(t, err, &reqErr)
}

func TestInsecureHostTransport_RoutesByHost(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	host := srv.Listener.Addr().(*net.TCPAddr).IP.String()

	insecure := newClient(map[string]bool{host: true})
	_, err := insecure.Get(srv.URL)
	assert.NoError(t, err, "an allowlisted host must skip certificate verification")

	verifying := newClient(nil)
	_, err = verifying.Get(srv.URL)
	assert.Error(t, err, "a non-allowlisted host must still verify certificates")
}
