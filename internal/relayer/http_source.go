package relayer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/private-expense-log/internal/shared"
)

// KeyURLDocument is the relayer's /v1/keyurl response.
type KeyURLDocument struct {
	Response struct {
		FheKeyInfo []struct {
			FhePublicKey struct {
				DataID string   `json:"data_id"`
				URLs   []string `json:"urls"`
			} `json:"fhe_public_key"`
		} `json:"fhe_key_info"`
		CRS map[string]struct {
			DataID string   `json:"data_id"`
			URLs   []string `json:"urls"`
		} `json:"crs"`
	} `json:"response"`
}

// HTTPSource fetches a relayer's key document and hands it to Build, which
// produces the SDK object.
type HTTPSource struct {
	RelayerURL string
	Client     *http.Client
	Build      func(ctx context.Context, doc KeyURLDocument) (any, error)
}

func NewHTTPSource(relayerURL string, build func(ctx context.Context, doc KeyURLDocument) (any, error)) *HTTPSource {
	return &HTTPSource{
		RelayerURL: strings.TrimRight(relayerURL, "/"),
		Client:     &http.Client{Timeout: 15 * time.Second},
		Build:      build,
	}
}

func (s *HTTPSource) Fetch(ctx context.Context) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.RelayerURL+"/v1/keyurl", nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, shared.Mark(errors.Wrap(err, "relayer keyurl"), shared.KindNetwork)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, shared.Mark(errors.Wrap(err, "read relayer keyurl"), shared.KindNetwork)
	}
	if resp.StatusCode/100 != 2 {
		return nil, shared.Mark(errors.Newf("relayer keyurl: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), shared.KindNetwork)
	}

	var doc KeyURLDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, errors.Wrap(err, "decode relayer keyurl")
	}
	if len(doc.Response.FheKeyInfo) == 0 {
		return nil, errors.New("relayer keyurl: no fhe key info")
	}

	if s.Build == nil {
		return nil, shared.Mark(errors.New("relayer: no sdk implementation registered"), shared.KindSDKUnavailable)
	}
	return s.Build(ctx, doc)
}
