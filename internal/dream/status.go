package dream

import "github.com/lsst-ts/ts-dream-common/internal/protocol"

// MasterStatus is the status telemetry of the DREAM master server.
type MasterStatus struct {
	Device     protocol.Device      `json:"device"`
	State      protocol.ServerState `json:"state"`
	StartTime  float64              `json:"start_time"`
	StopTime   float64              `json:"stop_time"`
	ErrorCode  protocol.ErrorCode   `json:"error_code"`
	RainSensor bool                 `json:"rain_sensor"`
	RoofStatus protocol.RoofStatus  `json:"roof_status"`
}

// NewMasterStatus returns master status defaults for a freshly started
// server: initializing, no error, rain sensor present, roof closed.
func NewMasterStatus() MasterStatus {
	return MasterStatus{
		Device:     protocol.DeviceMaster,
		State:      protocol.StateInitializing,
		ErrorCode:  protocol.ErrorCodeOK,
		RainSensor: true,
		RoofStatus: protocol.RoofClosed,
	}
}

// CameraStatus is the status telemetry of one DREAM camera server.
type CameraStatus struct {
	Device                protocol.Device      `json:"device"`
	State                 protocol.ServerState `json:"state"`
	ErrorCode             protocol.ErrorCode   `json:"error_code"`
	Altitude              float64              `json:"altitude"`
	Azimuth               float64              `json:"azimuth"`
	LastExposureTimeStamp float64              `json:"last_exposure_time_stamp"`
	ExposureTime          float64              `json:"exposure_time"`
}

// NewCameraStatus returns camera status defaults for the given device.
func NewCameraStatus(device protocol.Device) CameraStatus {
	return CameraStatus{
		Device:    device,
		State:     protocol.StateInitializing,
		ErrorCode: protocol.ErrorCodeOK,
	}
}

// WeatherInfo holds the observatory weather data forwarded to DREAM.
type WeatherInfo struct {
	Temperature             float64 `json:"temperature"`
	Humidity                float64 `json:"humidity"`
	WindSpeed               float64 `json:"wind_speed"`
	WindDirection           float64 `json:"wind_direction"`
	Pressure                float64 `json:"pressure"`
	Rain                    float64 `json:"rain"`
	Cloudcover              float64 `json:"cloudcover"`
	SafeObservingConditions bool    `json:"safe_observing_conditions"`
}

// DataProduct describes one new data product announced by DREAM.
type DataProduct struct {
	Name      string  `json:"name"`
	Location  string  `json:"location"`
	Timestamp float64 `json:"timestamp"`
}
