// Package schema owns the JSON-schema contracts for DREAM wire envelopes.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Registered schema names.
const (
	Command            = "command"
	WeatherInfo        = "weather_info"
	MasterServerStatus = "master_server_status"
	NewDataProducts    = "new_data_products"
)

const commandSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "description": "Schema for DREAM commands",
  "type": "object",
  "properties": {
    "command_id": {
      "type": "integer"
    },
    "key": {
      "enum": [
        "resume",
        "openRoof",
        "closeRoof",
        "stop",
        "readyForData",
        "dataArchived",
        "setWeatherInfo"
      ]
    },
    "parameters": {
      "type": "object"
    },
    "time_command_sent": {
      "type": "number"
    }
  },
  "required": ["command_id", "key", "parameters", "time_command_sent"],
  "additionalProperties": false
}`

const weatherInfoSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "description": "Schema for DREAM weather info",
  "type": "object",
  "properties": {
    "temperature": {"type": "number"},
    "humidity": {"type": "number"},
    "wind_speed": {"type": "number"},
    "wind_direction": {"type": "number"},
    "pressure": {"type": "number"},
    "rain": {"type": "number"},
    "cloudcover": {"type": "number"},
    "safe_observing_conditions": {"type": "boolean"}
  },
  "required": [
    "temperature",
    "humidity",
    "wind_speed",
    "wind_direction",
    "pressure",
    "rain",
    "cloudcover",
    "safe_observing_conditions"
  ],
  "additionalProperties": false
}`

const masterServerStatusSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "description": "Schema for DREAM master server status telemetry",
  "type": "object",
  "properties": {
    "device": {"type": "integer"},
    "state": {"type": "integer"},
    "start_time": {"type": "number"},
    "stop_time": {"type": "number"},
    "error_code": {"type": "integer"},
    "rain_sensor": {"type": "boolean"},
    "roof_status": {"type": "integer"}
  },
  "required": [
    "device",
    "state",
    "start_time",
    "stop_time",
    "error_code",
    "rain_sensor",
    "roof_status"
  ],
  "additionalProperties": false
}`

const newDataProductsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "description": "Schema for DREAM new data product notifications",
  "type": "object",
  "properties": {
    "amount": {"type": "integer"},
    "metadata": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "location": {"type": "string"},
          "timestamp": {"type": "number"}
        },
        "required": ["name", "location", "timestamp"],
        "additionalProperties": false
      }
    }
  },
  "required": ["amount", "metadata"],
  "additionalProperties": false
}`

var registry = map[string]*jsonschema.Schema{}

func init() {
	sources := map[string]string{
		Command:            commandSchema,
		WeatherInfo:        weatherInfoSchema,
		MasterServerStatus: masterServerStatusSchema,
		NewDataProducts:    newDataProductsSchema,
	}
	compiler := jsonschema.NewCompiler()
	for name, src := range sources {
		url := name + ".json"
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(src))
		if err != nil {
			panic(fmt.Sprintf("schema %s: %v", name, err))
		}
		if err := compiler.AddResource(url, doc); err != nil {
			panic(fmt.Sprintf("schema %s: %v", name, err))
		}
		compiled, err := compiler.Compile(url)
		if err != nil {
			panic(fmt.Sprintf("schema %s: %v", name, err))
		}
		registry[name] = compiled
	}
}

// Validate checks v against the named registered schema. v may be any value
// that marshals to JSON; it is normalized before validation so structs and
// decoded maps are treated alike.
func Validate(name string, v any) error {
	compiled, ok := registry[name]
	if !ok {
		return fmt.Errorf("schema: unknown schema %q", name)
	}
	norm, err := normalize(v)
	if err != nil {
		return fmt.Errorf("schema %s: %w", name, err)
	}
	if err := compiled.Validate(norm); err != nil {
		return fmt.Errorf("schema %s: %w", name, err)
	}
	return nil
}

func normalize(v any) (any, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(payload))
}
