package normalize

import (
	"encoding/json"

	lkerr "github.com/lineagekit/lineagekit/pkg/errors"
	"github.com/lineagekit/lineagekit/pkg/lineage"
)

// Shape identifies which backend payload shape was decoded.
type Shape string

// Payload shapes.
const (
	ShapeLegacy Shape = "legacy"
	ShapeServer Shape = "server"
)

// Report describes a decode: the detected shape and any missing-field
// warnings. Warnings never cause Decode to fail.
type Report struct {
	Shape    Shape    `json:"shape"`
	Warnings []string `json:"warnings,omitempty"`
}

// Detect returns the shape of a raw payload. An object with an "edges" key
// is shape B; everything else, including an object with only "nodes", is
// shape A.
func Detect(data []byte) (Shape, error) {
	fields, err := objectKeys(data)
	if err != nil {
		return "", err
	}
	return detect(fields), nil
}

// Decode parses a raw backend payload of either shape, normalizes it and
// reports missing-field warnings. t supplies traversal values: attached
// verbatim for shape B, used to fill gaps for shape A.
//
// Only input that is not a JSON object (or whose fields have the wrong JSON
// type) is an error, with code INVALID_FORMAT.
func Decode(data []byte, t lineage.Traversal) (*lineage.Graph, Report, error) {
	fields, err := objectKeys(data)
	if err != nil {
		return nil, Report{}, err
	}

	switch shape := detect(fields); shape {
	case ShapeServer:
		var resp ServerResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, Report{Shape: shape}, lkerr.Wrap(lkerr.ErrCodeInvalidFormat, err, "decode server lineage payload")
		}
		return Server(resp, t), Report{Shape: shape, Warnings: CheckServer(resp)}, nil
	default:
		var resp LegacyResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, Report{Shape: shape}, lkerr.Wrap(lkerr.ErrCodeInvalidFormat, err, "decode legacy lineage payload")
		}
		return LegacyWith(resp, t), Report{Shape: shape, Warnings: CheckLegacy(resp)}, nil
	}
}

func objectKeys(data []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, lkerr.Wrap(lkerr.ErrCodeInvalidFormat, err, "lineage payload is not a JSON object")
	}
	if fields == nil {
		return nil, lkerr.New(lkerr.ErrCodeInvalidFormat, "lineage payload is not a JSON object")
	}
	return fields, nil
}

func detect(fields map[string]json.RawMessage) Shape {
	if _, ok := fields["edges"]; ok {
		return ShapeServer
	}
	return ShapeLegacy
}
