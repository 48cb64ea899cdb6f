// Package auth resolves the player identity before launch. The token
// is validated against the launcher API first, then exchanged for a
// Yggdrasil access token; when the exchange fails the session falls
// back to offline mode instead of aborting.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"
)

var (
	ErrNoUsername = errors.New("validate response carries no username")
)

// Offline sessions launch with this token and user type, matching
// what legacy clients expect.
const (
	OfflineToken    = "0"
	OfflineUserType = "legacy"
)

// HTTPDoer is the slice of the fetcher the client needs.
type HTTPDoer interface {
	Get(rawurl string) (string, error)
	PostJSON(rawurl string, payload []byte) (string, error)
}

// Session is the resolved identity handed to the launch step.
type Session struct {
	Username    string
	UUID        string
	AccessToken string
	UserType    string
}

type Client struct {
	API  string
	HTTP HTTPDoer
	Log  zerolog.Logger

	// HWID overrides the machine fingerprint. Nil means HardwareID.
	HWID func() (string, error)
}

type validateResponse struct {
	Username   string `json:"username"`
	Registered bool   `json:"registered"`
}

type yggdrasilRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	ClientToken string `json:"clientToken"`
	RequestUser bool   `json:"requestUser"`
}

type yggdrasilResponse struct {
	AccessToken       string `json:"accessToken"`
	AvailableProfiles []struct {
		ID string `json:"id"`
	} `json:"availableProfiles"`
}

// Authenticate validates token against the launcher API and exchanges
// it for a session. A failed validate is fatal; a failed Yggdrasil
// exchange degrades to an offline session for the validated username.
func (c *Client) Authenticate(token string) (Session, error) {
	hwidFn := c.HWID
	if hwidFn == nil {
		hwidFn = HardwareID
	}
	hwid, err := hwidFn()
	if err != nil {
		return Session{}, fmt.Errorf("hardware id: %w", err)
	}
	c.Log.Info().Msgf("generated HWID: %s", hwid)

	username, err := c.validate(token, hwid)
	if err != nil {
		return Session{}, err
	}
	c.Log.Info().Msgf("authenticated username from API: %s", username)

	if sess, ok := c.yggdrasil(username, token); ok {
		return sess, nil
	}

	uuid := OfflineUUID(username)
	c.Log.Info().Msgf("falling back to offline mode with UUID %s", uuid)
	return Session{
		Username:    username,
		UUID:        uuid,
		AccessToken: OfflineToken,
		UserType:    OfflineUserType,
	}, nil
}

func (c *Client) validate(token, hwid string) (string, error) {
	q := url.Values{}
	q.Set("token", token)
	q.Set("hwid", hwid)
	validateURL := c.API + "/api/auth/validate?" + q.Encode()

	body, err := c.HTTP.Get(validateURL)
	if err != nil {
		return "", fmt.Errorf("validate token: %w", err)
	}
	var resp validateResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return "", fmt.Errorf("parse validate response: %w", err)
	}
	if resp.Username == "" {
		return "", ErrNoUsername
	}
	if resp.Registered {
		c.Log.Info().Msg("HWID already registered")
	}
	return resp.Username, nil
}

// yggdrasil trades the token for an access token. Any failure here is
// logged and reported as not-ok so the caller can go offline.
func (c *Client) yggdrasil(username, token string) (Session, bool) {
	payload, err := json.Marshal(yggdrasilRequest{
		Username:    username,
		Password:    token,
		ClientToken: OfflineUUID(username),
		RequestUser: true,
	})
	if err != nil {
		c.Log.Warn().Err(err).Msg("encode yggdrasil request")
		return Session{}, false
	}

	body, err := c.HTTP.PostJSON(c.API+"/authserver/authenticate", payload)
	if err != nil {
		c.Log.Warn().Err(err).Msg("yggdrasil request failed")
		return Session{}, false
	}
	var resp yggdrasilResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		c.Log.Warn().Err(err).Msg("parse yggdrasil response")
		return Session{}, false
	}
	if resp.AccessToken == "" {
		c.Log.Warn().Msg("yggdrasil response missing accessToken")
		return Session{}, false
	}

	uuid := OfflineUUID(username)
	if len(resp.AvailableProfiles) > 0 && resp.AvailableProfiles[0].ID != "" {
		uuid = resp.AvailableProfiles[0].ID
	}
	c.Log.Info().Msg("obtained access token from yggdrasil")
	return Session{
		Username:    username,
		UUID:        uuid,
		AccessToken: resp.AccessToken,
		UserType:    "mojang",
	}, true
}
