package device

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/voxkit/dictation/internal/resilience"
)

// Registrar runs the device registration and token flows against the
// backend's HTTP endpoints. Transient failures are retried with
// backoff; 4xx responses are not.
type Registrar struct {
	client      *http.Client
	registerURL string
	settingsURL string
	retry       *resilience.RetryConfig
	logger      zerolog.Logger
}

// NewRegistrar returns a Registrar using the production endpoints.
func NewRegistrar(retry *resilience.RetryConfig, logger zerolog.Logger) *Registrar {
	return &Registrar{
		client:      &http.Client{Timeout: 15 * time.Second},
		registerURL: RegisterURL,
		settingsURL: SettingsURL,
		retry:       retry,
		logger:      logger.With().Str("component", "device").Logger(),
	}
}

// NewRegistrarForEndpoints returns a Registrar pointed at custom
// endpoints. Used by tests.
func NewRegistrarForEndpoints(registerURL, settingsURL string, retry *resilience.RetryConfig, logger zerolog.Logger) *Registrar {
	r := NewRegistrar(retry, logger)
	r.registerURL = registerURL
	r.settingsURL = settingsURL
	return r
}

// Provision runs the full flow: register the device if it has no
// device_id, then fetch the service token if missing. creds is updated
// in place.
func (r *Registrar) Provision(ctx context.Context, creds *Credentials) error {
	if creds.DeviceID == "" {
		if err := r.Register(ctx, creds); err != nil {
			return err
		}
	}
	if creds.Token == "" {
		if err := r.FetchToken(ctx, creds); err != nil {
			return err
		}
	}
	return nil
}

type registerBody struct {
	MagicTag string         `json:"magic_tag"`
	Header   registerHeader `json:"header"`
	GenTime  int64          `json:"_gen_time"`
}

type registerResponse struct {
	DeviceID  uint64 `json:"device_id"`
	InstallID uint64 `json:"install_id"`
}

// Register obtains a device_id and install_id for the generated
// identity and stores them on creds.
func (r *Registrar) Register(ctx context.Context, creds *Credentials) error {
	body := registerBody{
		MagicTag: "ss_app_log",
		Header:   newRegisterHeader(creds.CDID, creds.OpenUDID, creds.ClientUDID),
		GenTime:  time.Now().UnixMilli(),
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode register body: %w", err)
	}

	query := r.commonQuery(creds)
	query.Set("manifest_version_code", strconv.Itoa(VersionCode))
	query.Set("update_version_code", strconv.Itoa(VersionCode))
	query.Set("resolution", Resolution)
	query.Set("dpi", DPI)
	query.Set("device_type", DeviceType)
	query.Set("device_brand", DeviceBrand)
	query.Set("language", Language)
	query.Set("os_api", OSAPI)
	query.Set("os_version", OSVersion)
	query.Set("ac", Access)

	var result registerResponse
	err = resilience.Retry(ctx, r.retry, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.registerURL+"?"+query.Encode(), bytes.NewReader(payload))
		if err != nil {
			return resilience.Permanent(err)
		}
		req.Header.Set("User-Agent", UserAgent)
		req.Header.Set("Content-Type", "application/json")
		return r.doJSON(req, &result)
	})
	if err != nil {
		return fmt.Errorf("device registration failed: %w", err)
	}

	if result.DeviceID == 0 {
		return fmt.Errorf("device registration returned invalid device_id")
	}

	creds.DeviceID = strconv.FormatUint(result.DeviceID, 10)
	creds.InstallID = strconv.FormatUint(result.InstallID, 10)
	r.logger.Info().Str("device_id", creds.DeviceID).Msg("Device registered")
	return nil
}

type settingsResponse struct {
	Data struct {
		Settings struct {
			ASRConfig struct {
				AppKey string `json:"app_key"`
			} `json:"asr_config"`
		} `json:"settings"`
	} `json:"data"`
	Message string `json:"message"`
}

// FetchToken retrieves the service token for a registered device and
// stores it on creds.
func (r *Registrar) FetchToken(ctx context.Context, creds *Credentials) error {
	if creds.DeviceID == "" {
		return fmt.Errorf("cannot fetch token before registration")
	}

	query := r.commonQuery(creds)
	query.Set("device_id", creds.DeviceID)

	// The settings endpoint expects a literal "body=null" body and its
	// MD5 digest in x-ss-stub, uppercase hex.
	const bodyStr = "body=null"
	stub := fmt.Sprintf("%X", md5.Sum([]byte(bodyStr)))

	var result settingsResponse
	err := resilience.Retry(ctx, r.retry, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.settingsURL+"?"+query.Encode(), strings.NewReader(bodyStr))
		if err != nil {
			return resilience.Permanent(err)
		}
		req.Header.Set("User-Agent", UserAgent)
		req.Header.Set("x-ss-stub", stub)
		return r.doJSON(req, &result)
	})
	if err != nil {
		return fmt.Errorf("failed to fetch token: %w", err)
	}

	if result.Data.Settings.ASRConfig.AppKey == "" {
		return fmt.Errorf("settings response carried no token")
	}

	creds.Token = result.Data.Settings.ASRConfig.AppKey
	r.logger.Info().Msg("Service token obtained")
	return nil
}

// commonQuery builds the query parameters shared by both flows.
func (r *Registrar) commonQuery(creds *Credentials) url.Values {
	q := url.Values{}
	q.Set("device_platform", DevicePlatform)
	q.Set("os", OS)
	q.Set("ssmix", "a")
	q.Set("_rticket", strconv.FormatInt(time.Now().UnixMilli(), 10))
	q.Set("cdid", creds.CDID)
	q.Set("channel", Channel)
	q.Set("aid", strconv.Itoa(AID))
	q.Set("app_name", AppName)
	q.Set("version_code", strconv.Itoa(VersionCode))
	q.Set("version_name", VersionName)
	return q
}

// doJSON executes req and decodes the response body into out. Server
// errors come back retryable, client errors permanent.
func (r *Registrar) doJSON(req *http.Request, out any) error {
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		err := fmt.Errorf("unexpected status %d", resp.StatusCode)
		if resilience.IsRetryableStatus(resp.StatusCode) {
			return err
		}
		return resilience.Permanent(err)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resilience.Permanent(fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}
