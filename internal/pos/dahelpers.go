package pos

import (
	"encoding/json"
	"errors"

	"github.com/aquamarinepk/aqm"
)

var errEmptyResponse = errors.New("empty service response")

// decodeData copies the "data" payload of a backend response into dest.
func decodeData(resp *aqm.SuccessResponse, dest interface{}) error {
	if resp == nil {
		return errEmptyResponse
	}

	raw, err := json.Marshal(resp.Data)
	if err != nil {
		return err
	}

	return json.Unmarshal(raw, dest)
}

// decodeDataField unwraps one named field of the payload. The kitchen service
// wraps its collections this way ({"progress": [...]}, {"history": [...]}).
// A missing field leaves dest untouched, matching an empty collection.
func decodeDataField(resp *aqm.SuccessResponse, field string, dest interface{}) error {
	var payload map[string]json.RawMessage
	if err := decodeData(resp, &payload); err != nil {
		return err
	}

	raw, ok := payload[field]
	if !ok {
		return nil
	}

	return json.Unmarshal(raw, dest)
}
