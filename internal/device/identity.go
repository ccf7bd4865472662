package device

// Endpoints for the registration and settings services.
const (
	RegisterURL = "https://log.snssdk.com/service/2/device_register/"
	SettingsURL = "https://is.snssdk.com/service/settings/v3/"
)

// Application identity presented during registration.
const (
	AID         = 401734
	AppName     = "oime"
	VersionCode = 100102018
	VersionName = "1.1.2"
	Channel     = "official"
	Package     = "com.bytedance.android.doubaoime"
)

// Hardware profile reported to the backend. Matches a Pixel 7 Pro.
const (
	DevicePlatform = "android"
	OS             = "android"
	OSAPI          = "34"
	OSVersion      = "16"
	DeviceType     = "Pixel 7 Pro"
	DeviceBrand    = "google"
	DeviceModel    = "Pixel 7 Pro"
	Resolution     = "1080*2400"
	DPI            = "420"
	Language       = "zh"
	Timezone       = 8
	Access         = "wifi"
	ROM            = "UP1A.231005.007"
	ROMVersion     = "UP1A.231005.007"
)

// UserAgent is sent on every HTTP request and the WebSocket handshake.
const UserAgent = "com.bytedance.android.doubaoime/100102018 (Linux; U; Android 16; en_US; Pixel 7 Pro; Build/BP2A.250605.031.A2; Cronet/TTNetVersion:94cf429a 2025-11-17 QuicVersion:1f89f732 2025-05-08)"

// registerHeader is the identity document carried in the registration
// request body. Field names and zero values follow the backend schema.
type registerHeader struct {
	DeviceID            uint64 `json:"device_id"`
	InstallID           uint64 `json:"install_id"`
	AID                 int    `json:"aid"`
	AppName             string `json:"app_name"`
	VersionCode         int    `json:"version_code"`
	VersionName         string `json:"version_name"`
	ManifestVersionCode int    `json:"manifest_version_code"`
	UpdateVersionCode   int    `json:"update_version_code"`
	Channel             string `json:"channel"`
	Package             string `json:"package"`
	DevicePlatform      string `json:"device_platform"`
	OS                  string `json:"os"`
	OSAPI               string `json:"os_api"`
	OSVersion           string `json:"os_version"`
	DeviceType          string `json:"device_type"`
	DeviceBrand         string `json:"device_brand"`
	DeviceModel         string `json:"device_model"`
	Resolution          string `json:"resolution"`
	DPI                 string `json:"dpi"`
	Language            string `json:"language"`
	Timezone            int    `json:"timezone"`
	Access              string `json:"access"`
	ROM                 string `json:"rom"`
	ROMVersion          string `json:"rom_version"`
	OpenUDID            string `json:"openudid"`
	ClientUDID          string `json:"clientudid"`
	CDID                string `json:"cdid"`
	Region              string `json:"region"`
	TZName              string `json:"tz_name"`
	TZOffset            int    `json:"tz_offset"`
	SimRegion           string `json:"sim_region"`
	CarrierRegion       string `json:"carrier_region"`
	CPUABI              string `json:"cpu_abi"`
	BuildSerial         string `json:"build_serial"`
	NotRequestSender    int    `json:"not_request_sender"`
	SigHash             string `json:"sig_hash"`
	GoogleAID           string `json:"google_aid"`
	MC                  string `json:"mc"`
	SerialNumber        string `json:"serial_number"`
}

func newRegisterHeader(cdid, openudid, clientudid string) registerHeader {
	return registerHeader{
		AID:                 AID,
		AppName:             AppName,
		VersionCode:         VersionCode,
		VersionName:         VersionName,
		ManifestVersionCode: VersionCode,
		UpdateVersionCode:   VersionCode,
		Channel:             Channel,
		Package:             Package,
		DevicePlatform:      DevicePlatform,
		OS:                  OS,
		OSAPI:               OSAPI,
		OSVersion:           OSVersion,
		DeviceType:          DeviceType,
		DeviceBrand:         DeviceBrand,
		DeviceModel:         DeviceModel,
		Resolution:          Resolution,
		DPI:                 DPI,
		Language:            Language,
		Timezone:            Timezone,
		Access:              Access,
		ROM:                 ROM,
		ROMVersion:          ROMVersion,
		OpenUDID:            openudid,
		ClientUDID:          clientudid,
		CDID:                cdid,
		Region:              "CN",
		TZName:              "Asia/Shanghai",
		TZOffset:            28800,
		SimRegion:           "cn",
		CarrierRegion:       "cn",
		CPUABI:              "arm64-v8a",
		BuildSerial:         "unknown",
	}
}
