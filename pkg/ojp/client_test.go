package ojp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ojpilot/ojpilot/pkg/stats"
)

type stubTransport struct {
	status int
	body   []byte
	err    error

	payloads [][]byte
}

func (s *stubTransport) Send(_ context.Context, payload []byte) (int, []byte, error) {
	s.payloads = append(s.payloads, payload)

	if s.err != nil {
		return 0, nil, s.err
	}

	return s.status, s.body, nil
}

func TestClientSearchLocations(t *testing.T) {
	transport := &stubTransport{status: 200, body: loadFixture(t, "location_response.xml")}
	client := NewClient(transport, "test-runner", nil)

	envelope := client.SearchLocations(context.Background(), "Zürich HB", 10)

	assert.True(t, envelope.Success)
	assert.Nil(t, envelope.Error)
	assert.False(t, envelope.Timestamp.IsZero())
	require.Len(t, envelope.Locations, 4)
	assert.Equal(t, "8503000", envelope.Locations[0].StopPointRef)

	require.Len(t, transport.payloads, 1)
	assert.Contains(t, string(transport.payloads[0]), "OJPLocationInformationRequest")
	assert.Contains(t, string(transport.payloads[0]), "<siri:RequestorRef>test-runner</siri:RequestorRef>")
}

func TestClientSearchLocationsValidation(t *testing.T) {
	transport := &stubTransport{status: 200}
	client := NewClient(transport, "test-runner", nil)

	envelope := client.SearchLocations(context.Background(), "   ", 10)

	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, ErrorKindValidation, envelope.Error.Kind)
	assert.Contains(t, envelope.Error.Message, "query")

	// Nothing touched the network.
	assert.Empty(t, transport.payloads)
}

func TestClientConnectionError(t *testing.T) {
	transport := &stubTransport{err: errors.New("dial tcp 127.0.0.1:443: connect: connection refused")}
	client := NewClient(transport, "test-runner", nil)

	envelope := client.SearchLocations(context.Background(), "Bern", 10)

	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, ErrorKindConnection, envelope.Error.Kind)
	assert.Contains(t, envelope.Error.Message, "connection refused")
	assert.Empty(t, envelope.Locations)
}

func TestClientTransportError(t *testing.T) {
	transport := &stubTransport{status: 500, body: []byte("Internal Server Error")}
	client := NewClient(transport, "test-runner", nil)

	envelope := client.SearchLocations(context.Background(), "Bern", 10)

	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, ErrorKindTransport, envelope.Error.Kind)
	assert.Contains(t, envelope.Error.Message, "500")
	assert.Contains(t, envelope.Error.Message, "Internal Server Error")
}

func TestClientProtocolError(t *testing.T) {
	transport := &stubTransport{status: 200, body: loadFixture(t, "trip_response_error.xml")}
	client := NewClient(transport, "test-runner", nil)

	envelope := client.PlanTrip(context.Background(), TripParams{
		OriginRef:      "8503000",
		DestinationRef: "8501008",
		MaxResults:     5,
	})

	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, ErrorKindProtocol, envelope.Error.Kind)
	assert.Contains(t, envelope.Error.Message, "TRIP_NOTRIPFOUND")
}

func TestClientParseError(t *testing.T) {
	transport := &stubTransport{status: 200, body: []byte("upstream exploded")}
	client := NewClient(transport, "test-runner", nil)

	envelope := client.SearchLocations(context.Background(), "Bern", 10)

	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, ErrorKindParse, envelope.Error.Kind)
}

func TestClientPlanTrip(t *testing.T) {
	transport := &stubTransport{status: 200, body: loadFixture(t, "trip_response.xml")}
	client := NewClient(transport, "test-runner", nil)

	departure := time.Date(2024, 12, 25, 14, 30, 0, 0, time.UTC)
	envelope := client.PlanTrip(context.Background(), TripParams{
		OriginRef:      "8503000",
		DestinationRef: "8501008",
		OriginName:     "Zürich HB",
		DepartureTime:  &departure,
		MaxResults:     5,
	})

	assert.True(t, envelope.Success)
	require.Len(t, envelope.Trips, 2)
	assert.Equal(t, ModeTrain, envelope.Trips[0].Legs[0].Mode)
	assert.Equal(t, len(envelope.Trips[0].Legs)-1, envelope.Trips[0].Transfers)

	require.Len(t, transport.payloads, 1)
	assert.Contains(t, string(transport.payloads[0]), "OJPTripRequest")
	assert.Contains(t, string(transport.payloads[0]), "<DepArrTime>2024-12-25T14:30:00Z</DepArrTime>")
}

func TestClientPlanTripPartialTolerance(t *testing.T) {
	transport := &stubTransport{status: 200, body: loadFixture(t, "trip_response_partial.xml")}
	collector := stats.NewCollectorWith(prometheus.NewRegistry())
	client := NewClient(transport, "test-runner", collector)

	envelope := client.PlanTrip(context.Background(), TripParams{
		OriginRef:      "8503000",
		DestinationRef: "8503006",
		MaxResults:     5,
	})

	// One bad entry among three still succeeds with the two good trips.
	assert.True(t, envelope.Success)
	assert.Len(t, envelope.Trips, 2)

	skipped := testutil.ToFloat64(collector.EntryFaults.WithLabelValues(OperationTripRequest, "UnknownModeError"))
	assert.Equal(t, float64(1), skipped)

	succeeded := testutil.ToFloat64(collector.Requests.WithLabelValues(OperationTripRequest, "success"))
	assert.Equal(t, float64(1), succeeded)
}

func TestHTTPTransportSend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Contains(t, r.Header.Get("Content-Type"), "application/xml")

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<ok/>"))
	}))
	defer server.Close()

	transport := NewHTTPTransport(server.URL, "test-key", 5*time.Second)

	status, body, err := transport.Send(context.Background(), []byte("<OJP/>"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "<ok/>", string(body))
}

func TestHTTPTransportAnonymous(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	transport := NewHTTPTransport(server.URL, "", 5*time.Second)

	status, _, err := transport.Send(context.Background(), []byte("<OJP/>"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
}

func TestHTTPTransportRetriesTransientStatus(t *testing.T) {
	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<ok/>"))
	}))
	defer server.Close()

	transport := NewHTTPTransport(server.URL, "test-key", 5*time.Second)

	status, body, err := transport.Send(context.Background(), []byte("<OJP/>"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "<ok/>", string(body))
	assert.Equal(t, int32(3), requests.Load())
}

func TestHTTPTransportExhaustsRetries(t *testing.T) {
	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("maintenance"))
	}))
	defer server.Close()

	transport := NewHTTPTransport(server.URL, "test-key", 5*time.Second)

	// The final transient status is still handed back so the caller can
	// report it.
	status, body, err := transport.Send(context.Background(), []byte("<OJP/>"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "maintenance", string(body))
	assert.Equal(t, int32(3), requests.Load())
}

func TestHTTPTransportClientErrorNotRetried(t *testing.T) {
	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	transport := NewHTTPTransport(server.URL, "bad-key", 5*time.Second)

	status, _, err := transport.Send(context.Background(), []byte("<OJP/>"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, int32(1), requests.Load())
}

func TestTimeoutYieldsConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	transport := NewHTTPTransport(server.URL, "test-key", 50*time.Millisecond)
	client := NewClient(transport, "test-runner", nil)

	envelope := client.SearchLocations(context.Background(), "Zürich HB", 10)

	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, ErrorKindConnection, envelope.Error.Kind)
	assert.Empty(t, envelope.Locations)
	assert.Empty(t, envelope.Trips)
}
