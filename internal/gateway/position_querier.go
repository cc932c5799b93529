package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"github.com/ayanmadaan/trading-engine/internal/errors"
)

// PositionQuerier implements position.Querier against a venue's REST
// position-query endpoint, the way the teacher's btcc Delegator issues a
// signed HTTP request and decodes the JSON body with sonic. Authentication
// (HMAC signing, API key headers) is venue-specific and left to a real
// implementation; this is the generic shape main.go wires against.
type PositionQuerier struct {
	Client     *http.Client
	URL        string
	Instrument string
}

type positionQueryResponse struct {
	Position float64 `json:"position"`
}

// QueryPosition issues one GET against URL?instrument=... and decodes the
// reported position (§4.4: "one synchronous query to fetch the exchange's
// current reported position").
func (q *PositionQuerier) QueryPosition(ctx context.Context) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, q.URL, nil)
	if err != nil {
		return 0, errors.Wrap(err, "gateway: build position query request")
	}
	if q.Instrument != "" {
		query := req.URL.Query()
		query.Set("instrument", q.Instrument)
		req.URL.RawQuery = query.Encode()
	}

	resp, err := q.Client.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "gateway: position query request failed")
	}
	defer resp.Body.Close()

	var data positionQueryResponse
	if err := sonic.ConfigFastest.NewDecoder(resp.Body).Decode(&data); err != nil {
		return 0, errors.Wrap(err, "gateway: decode position query response")
	}
	return data.Position, nil
}
