package tide

import (
	"encoding/json"
)

// Raw provider payload. Arrays may be partial or empty; the normalizer
// tolerates both.
type providerHeight struct {
	Date   string  `json:"date"` // offset-qualified local time
	Height float64 `json:"height"`
}

type providerExtreme struct {
	Date   string  `json:"date"`
	Height float64 `json:"height"`
	Type   string  `json:"type"` // "High" | "Low"
}

type providerResponse struct {
	Status    int               `json:"status"`
	Copyright string            `json:"copyright"`
	Heights   []providerHeight  `json:"heights"`
	Extremes  []providerExtreme `json:"extremes"`
}

func decodeResponse(body []byte) (*providerResponse, error) {
	var resp providerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return &resp, nil
}
