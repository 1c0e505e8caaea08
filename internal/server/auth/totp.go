package auth

import (
	"bytes"
	"encoding/base32"
	"fmt"
	"image/png"
	"net/url"
	"time"

	"github.com/dmitrijs2005/tokenkeeper/internal/common"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	secretSize    = 20
	DefaultQRSize = 256
)

var totpOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// TOTPVerifier generates TOTP secrets and checks submitted codes. Codes are
// six digits over a 30 second step with one step of tolerance either side.
// Accepted codes are not remembered, so a code can be replayed within its
// window.
type TOTPVerifier struct {
	now    func() time.Time
	qrSize int
}

type TOTPOption func(*TOTPVerifier)

func WithTOTPClock(now func() time.Time) TOTPOption {
	return func(v *TOTPVerifier) { v.now = now }
}

func WithQRSize(size int) TOTPOption {
	return func(v *TOTPVerifier) {
		if size > 0 {
			v.qrSize = size
		}
	}
}

func NewTOTPVerifier(opts ...TOTPOption) *TOTPVerifier {
	v := &TOTPVerifier{now: time.Now, qrSize: DefaultQRSize}
	for _, o := range opts {
		o(v)
	}
	return v
}

// GenerateSecret returns 160 random bits encoded as unpadded base32.
func (v *TOTPVerifier) GenerateSecret() string {
	raw := common.GenerateRandByteArray(secretSize)
	defer common.WipeByteArray(raw)
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw)
}

func (v *TOTPVerifier) ProvisioningURI(identity, secret string) string {
	return "otpauth://totp/" + url.PathEscape(identity) + "?secret=" + secret
}

// QRCode renders uri as a square PNG.
func (v *TOTPVerifier) QRCode(uri string) ([]byte, error) {
	key, err := otp.NewKeyFromURL(uri)
	if err != nil {
		return nil, fmt.Errorf("parse provisioning uri: %w", err)
	}

	img, err := key.Image(v.qrSize, v.qrSize)
	if err != nil {
		return nil, fmt.Errorf("render qr: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (v *TOTPVerifier) Check(code, secret string) bool {
	ok, err := totp.ValidateCustom(code, secret, v.now().UTC(), totpOpts)
	if err != nil {
		return false
	}
	return ok
}
