package schema

import (
	"testing"

	"github.com/lsst-ts/ts-dream-common/internal/dream"
)

func TestCommandSchemaAcceptsEmptyParameters(t *testing.T) {
	command := map[string]any{
		"command_id":        1,
		"key":               "resume",
		"parameters":        map[string]any{},
		"time_command_sent": 1.12345,
	}
	if err := Validate(Command, command); err != nil {
		t.Fatalf("valid command rejected: %v", err)
	}
}

func TestCommandSchemaAcceptsParameters(t *testing.T) {
	command := map[string]any{
		"command_id":        1,
		"key":               "readyForData",
		"parameters":        map[string]any{"ready": true},
		"time_command_sent": 1.12345,
	}
	if err := Validate(Command, command); err != nil {
		t.Fatalf("valid command rejected: %v", err)
	}
}

func TestCommandSchemaRejectsMissingParameters(t *testing.T) {
	command := map[string]any{
		"command_id":        1,
		"key":               "readyForData",
		"time_command_sent": 1.12345,
	}
	if err := Validate(Command, command); err == nil {
		t.Fatal("command without parameters accepted")
	}
}

func TestCommandSchemaRejectsUnknownKey(t *testing.T) {
	command := map[string]any{
		"command_id":        1,
		"key":               "selfDestruct",
		"parameters":        map[string]any{},
		"time_command_sent": 1.12345,
	}
	if err := Validate(Command, command); err == nil {
		t.Fatal("command with unknown key accepted")
	}
}

func TestCommandSchemaRejectsExtraProperties(t *testing.T) {
	command := map[string]any{
		"command_id":        1,
		"key":               "resume",
		"parameters":        map[string]any{},
		"time_command_sent": 1.12345,
		"extra":             true,
	}
	if err := Validate(Command, command); err == nil {
		t.Fatal("command with extra property accepted")
	}
}

func TestWeatherInfoSchema(t *testing.T) {
	info := map[string]any{
		"temperature":               12.5,
		"humidity":                  40.0,
		"wind_speed":                3.2,
		"wind_direction":            270.0,
		"pressure":                  101325.0,
		"rain":                      0.0,
		"cloudcover":                10.0,
		"safe_observing_conditions": true,
	}
	if err := Validate(WeatherInfo, info); err != nil {
		t.Fatalf("valid weather info rejected: %v", err)
	}

	delete(info, "pressure")
	if err := Validate(WeatherInfo, info); err == nil {
		t.Fatal("weather info without pressure accepted")
	}
}

func TestMasterServerStatusSchemaMatchesModel(t *testing.T) {
	if err := Validate(MasterServerStatus, dream.NewMasterStatus()); err != nil {
		t.Fatalf("default master status rejected: %v", err)
	}
}

func TestNewDataProductsSchemaMatchesModel(t *testing.T) {
	batch := map[string]any{
		"amount": 1,
		"metadata": []any{
			map[string]any{
				"name":      "NewDataProductZero",
				"location":  "file:///",
				"timestamp": 1234.5,
			},
		},
	}
	if err := Validate(NewDataProducts, batch); err != nil {
		t.Fatalf("valid batch rejected: %v", err)
	}

	batch["metadata"] = []any{map[string]any{"name": "x"}}
	if err := Validate(NewDataProducts, batch); err == nil {
		t.Fatal("batch with incomplete metadata accepted")
	}
}

func TestValidateUnknownSchema(t *testing.T) {
	if err := Validate("nope", map[string]any{}); err == nil {
		t.Fatal("unknown schema name accepted")
	}
}
