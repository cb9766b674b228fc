package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/ghostpen/engine/internal/persona"
)

const (
	defaultPhotoBaseURL  = "https://www.instagram.com"
	photoCaptionMaxRunes = 2200
)

// sessionState tracks the photo adapter's login state machine.
type sessionState int

const (
	stateUnauthenticated sessionState = iota
	stateRestoring
	stateAuthenticated
	stateReauthenticating
)

// savedSession is the durable session persisted between process runs.
type savedSession struct {
	UserID  string        `json:"user_id"`
	Cookies []savedCookie `json:"cookies"`
}

type savedCookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Path   string `json:"path,omitempty"`
	Domain string `json:"domain,omitempty"`
}

// PhotoAdapter posts image-plus-caption content by emulating the platform's
// web upload flow: login with a persisted cookie session, a raw image upload,
// then a configure call binding the upload to a caption.
type PhotoAdapter struct {
	client      *resty.Client
	jar         *cookiejar.Jar
	baseURL     string
	username    string
	password    string
	sessionFile string

	mu     sync.Mutex
	state  sessionState
	userID string

	// sleep is the courtesy delay before network-visible actions; tests
	// replace it with a no-op.
	sleep func(min, max time.Duration)
}

// PhotoConfig configures the photo adapter.
type PhotoConfig struct {
	Username    string
	Password    string
	SessionFile string // defaults to ~/.ghostpen_session.json
	BaseURL     string // defaults to the public web host
}

// NewPhotoAdapter creates a photo adapter.
func NewPhotoAdapter(cfg PhotoConfig) *PhotoAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultPhotoBaseURL
	}
	if cfg.SessionFile == "" {
		home, _ := os.UserHomeDir()
		cfg.SessionFile = filepath.Join(home, ".ghostpen_session.json")
	}

	jar, _ := cookiejar.New(nil)
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetCookieJar(jar).
		SetTimeout(2 * time.Minute).
		SetHeader("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)")

	return &PhotoAdapter{
		client:      client,
		jar:         jar,
		baseURL:     cfg.BaseURL,
		username:    cfg.Username,
		password:    cfg.Password,
		sessionFile: cfg.SessionFile,
		state:       stateUnauthenticated,
		sleep: func(min, max time.Duration) {
			time.Sleep(min + time.Duration(rand.Int63n(int64(max-min))))
		},
	}
}

// Name returns the platform key.
func (a *PhotoAdapter) Name() string { return persona.PlatformPhoto }

// MaxContentLength returns the caption ceiling in characters.
func (a *PhotoAdapter) MaxContentLength() int { return photoCaptionMaxRunes }

// Post uploads the image and publishes it with the content as caption.
// The image path is validated before any network call.
func (a *PhotoAdapter) Post(ctx context.Context, content string, opts PostOptions) PostResult {
	if opts.ImagePath == "" {
		return failure(a.Name(), "photo posting requires an image, none was provided")
	}

	imageData, err := os.ReadFile(opts.ImagePath)
	if err != nil {
		return failure(a.Name(), "image not found: %s", opts.ImagePath)
	}

	if err := a.ensureLogin(ctx); err != nil {
		return failure(a.Name(), "login failed: %v", err)
	}

	caption := content
	if runes := []rune(caption); len(runes) > photoCaptionMaxRunes {
		caption = string(runes[:photoCaptionMaxRunes])
	}

	// Small random delay before touching the network so the flow doesn't
	// look automated.
	a.sleep(1*time.Second, 3*time.Second)

	uploadID := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if err := a.uploadImage(ctx, uploadID, opts.ImagePath, imageData); err != nil {
		return failure(a.Name(), "upload failed: %v", err)
	}

	a.sleep(2*time.Second, 4*time.Second)

	mediaID, code, err := a.configureUpload(ctx, uploadID, caption)
	if err != nil {
		return failure(a.Name(), "configure failed: %v", err)
	}

	log.Info().Str("media_id", mediaID).Msg("Photo published")

	return PostResult{
		Success:  true,
		Platform: a.Name(),
		PostID:   mediaID,
		URL:      fmt.Sprintf("%s/p/%s/", a.baseURL, code),
	}
}

// ValidateCredentials checks the login, restoring or refreshing the session
// as needed.
func (a *PhotoAdapter) ValidateCredentials(ctx context.Context) bool {
	if err := a.ensureLogin(ctx); err != nil {
		log.Debug().Err(err).Msg("Photo credential check failed")
		return false
	}
	return true
}

// ensureLogin drives the session state machine:
// unauthenticated -> restoring -> authenticated, or on restore failure
// unauthenticated -> reauthenticating -> authenticated.
func (a *PhotoAdapter) ensureLogin(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == stateAuthenticated {
		return nil
	}

	a.state = stateRestoring
	err := a.restoreSession(ctx)
	if err == nil {
		a.state = stateAuthenticated
		log.Debug().Str("user_id", a.userID).Msg("Photo session restored")
		return nil
	}
	log.Debug().Err(err).Msg("Photo session restore failed, logging in fresh")

	a.state = stateReauthenticating
	if err := a.freshLogin(ctx); err != nil {
		a.state = stateUnauthenticated
		return err
	}

	a.state = stateAuthenticated
	if err := a.persistSession(); err != nil {
		log.Warn().Err(err).Msg("Could not persist photo session")
	}
	return nil
}

// restoreSession loads the persisted cookie session and verifies it with a
// current-account probe.
func (a *PhotoAdapter) restoreSession(ctx context.Context) error {
	data, err := os.ReadFile(a.sessionFile)
	if err != nil {
		return fmt.Errorf("no saved session: %w", err)
	}

	var session savedSession
	if err := json.Unmarshal(data, &session); err != nil {
		return fmt.Errorf("corrupt session file: %w", err)
	}

	base, err := url.Parse(a.baseURL)
	if err != nil {
		return err
	}
	cookies := make([]*http.Cookie, 0, len(session.Cookies))
	for _, c := range session.Cookies {
		cookies = append(cookies, &http.Cookie{
			Name: c.Name, Value: c.Value, Path: c.Path, Domain: c.Domain,
		})
	}
	a.jar.SetCookies(base, cookies)

	userID, err := a.currentUser(ctx)
	if err != nil {
		return fmt.Errorf("saved session rejected: %w", err)
	}
	a.userID = userID
	return nil
}

// freshLogin performs username/password authentication.
func (a *PhotoAdapter) freshLogin(ctx context.Context) error {
	resp, err := a.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"username": a.username,
			"password": a.password,
		}).
		Post("/accounts/login/ajax/")

	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("login returned %d: %s", resp.StatusCode(), resp.String())
	}

	var result struct {
		Authenticated   bool   `json:"authenticated"`
		UserID          string `json:"userId"`
		TwoFactorNeeded bool   `json:"two_factor_required"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return fmt.Errorf("unexpected login response: %w", err)
	}
	if result.TwoFactorNeeded {
		return fmt.Errorf("account requires a second factor, cannot login unattended")
	}
	if !result.Authenticated {
		return fmt.Errorf("credentials rejected")
	}

	a.userID = result.UserID
	log.Info().Str("user_id", a.userID).Msg("Photo platform login succeeded")
	return nil
}

// persistSession writes the cookie session to the durable session file.
func (a *PhotoAdapter) persistSession() error {
	base, err := url.Parse(a.baseURL)
	if err != nil {
		return err
	}

	session := savedSession{UserID: a.userID}
	for _, c := range a.jar.Cookies(base) {
		session.Cookies = append(session.Cookies, savedCookie{
			Name: c.Name, Value: c.Value, Path: c.Path, Domain: c.Domain,
		})
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(a.sessionFile, data, 0o600)
}

// currentUser probes the current-account endpoint, returning the user id.
func (a *PhotoAdapter) currentUser(ctx context.Context) (string, error) {
	resp, err := a.client.R().SetContext(ctx).Get("/api/v1/accounts/current_user/")
	if err != nil {
		return "", err
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("current user probe returned %d", resp.StatusCode())
	}

	var result struct {
		Status string `json:"status"`
		User   struct {
			PK json.Number `json:"pk"`
		} `json:"user"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("unexpected current user response: %w", err)
	}
	if result.Status != "ok" {
		return "", fmt.Errorf("current user probe rejected: %s", result.Status)
	}
	return result.User.PK.String(), nil
}

// uploadImage is phase one of the publish protocol: raw image bytes keyed by
// the upload id, with dimensions declared from the file's own header.
func (a *PhotoAdapter) uploadImage(ctx context.Context, uploadID, imagePath string, data []byte) error {
	width, height := imageDimensions(data)

	contentType := "image/jpeg"
	if strings.HasSuffix(strings.ToLower(imagePath), ".png") {
		contentType = "image/png"
	}

	params, _ := json.Marshal(map[string]interface{}{
		"upload_id":       uploadID,
		"media_type":      1,
		"original_width":  width,
		"original_height": height,
	})

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("X-Entity-Name", "fb_uploader_"+uploadID).
		SetHeader("X-Entity-Length", strconv.Itoa(len(data))).
		SetHeader("X-Instagram-Rupload-Params", string(params)).
		SetHeader("Offset", "0").
		SetBody(data).
		Post("/rupload_igphoto/fb_uploader_" + uploadID)

	if err != nil {
		return err
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String())
	}

	var result struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return fmt.Errorf("unexpected upload response: %w", err)
	}
	if result.Status != "ok" {
		return fmt.Errorf("upload rejected: %s", result.Status)
	}
	return nil
}

// configureUpload is phase two: bind the uploaded id to a caption and
// finalize the post.
func (a *PhotoAdapter) configureUpload(ctx context.Context, uploadID, caption string) (mediaID, code string, err error) {
	resp, err := a.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"upload_id": uploadID,
			"caption":   caption,
		}).
		Post("/api/v1/media/configure/")

	if err != nil {
		return "", "", err
	}
	if resp.StatusCode() != 200 {
		return "", "", fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String())
	}

	var result struct {
		Status string `json:"status"`
		Media  struct {
			PK   json.Number `json:"pk"`
			Code string      `json:"code"`
		} `json:"media"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", "", fmt.Errorf("unexpected configure response: %w", err)
	}
	if result.Status != "ok" {
		return "", "", fmt.Errorf("configure rejected: %s", result.Status)
	}
	return result.Media.PK.String(), result.Media.Code, nil
}
