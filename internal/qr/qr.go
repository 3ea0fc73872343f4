// Package qr issues profile QR tokens and encodes/decodes the rating deep link
// printed on QR images. The image carries the deep link, never the stored token.
package qr

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/insurecare/feedback-portal/internal/domain"
)

// ImageSize is the edge length of rendered PNGs in pixels.
const ImageSize = 256

// ContentType of rendered images.
const ContentType = "image/png"

// ErrInvalidCode is returned by Resolve for payloads that are not rating deep links.
var ErrInvalidCode = errors.New("invalid code")

var ratePath = regexp.MustCompile(`^/rate/(agent|employee)/([0-9]+)/?$`)

// Issue returns a fresh opaque token for a profile's qr_code column.
func Issue() string {
	return uuid.NewString()
}

// Payload builds the deep link {baseURL}/rate/{kind}/{id}.
func Payload(baseURL string, kind domain.ProfileKind, id int64) string {
	return fmt.Sprintf("%s/rate/%s/%d", strings.TrimRight(baseURL, "/"), kind, id)
}

// Render encodes uri as a PNG QR image.
func Render(uri string) ([]byte, error) {
	if uri == "" {
		return nil, errors.New("qr: empty payload")
	}
	return qrcode.Encode(uri, qrcode.Medium, ImageSize)
}

// Resolve parses a scanned deep link back into its target. It accepts an absolute
// URL or a bare path; anything else yields ErrInvalidCode.
func Resolve(payload string) (domain.Target, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return domain.Target{}, ErrInvalidCode
	}
	path := payload
	if !strings.HasPrefix(payload, "/") {
		u, err := url.Parse(payload)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return domain.Target{}, ErrInvalidCode
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return domain.Target{}, ErrInvalidCode
		}
		path = u.Path
	}
	m := ratePath.FindStringSubmatch(path)
	if m == nil {
		return domain.Target{}, ErrInvalidCode
	}
	id, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil || id <= 0 {
		return domain.Target{}, ErrInvalidCode
	}
	kind, err := domain.ParseProfileKind(m[1])
	if err != nil {
		return domain.Target{}, ErrInvalidCode
	}
	return domain.TargetFor(kind, id), nil
}

// Filename is the download name of a profile's QR image.
func Filename(profileName string) string {
	name := strings.TrimSpace(profileName)
	if name == "" {
		name = "profile"
	}
	name = strings.Map(func(r rune) rune {
		switch r {
		case '"', '\\', '/', '\r', '\n':
			return '-'
		}
		return r
	}, name)
	return name + "-qr-code.png"
}
