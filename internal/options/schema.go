package options

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Schema describes the JSON options document.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}

	s := r.Reflect(&Options{})
	s.Title = "mmrando options"

	return s
}

// SchemaJSON renders Schema indented.
func SchemaJSON() ([]byte, error) {
	out, err := json.MarshalIndent(Schema(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return out, nil
}

// JSON renders the resolved options as a JSON document that Parse accepts.
func (o *Options) JSON() ([]byte, error) {
	out, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal options: %w", err)
	}

	return out, nil
}
