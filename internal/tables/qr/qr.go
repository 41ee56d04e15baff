// Package qr renders the per-table QR codes that customers scan to open an
// ordering session. The table identity is carried as an encrypted token so
// guests cannot forge a link onto someone else's table.
package qr

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/skip2/go-qrcode"
)

// TablePayload is what the customer app receives after decoding a scan.
type TablePayload struct {
	TenantID string `json:"tenant_id"`
	TableID  string `json:"table_id"`
}

type QRGenerator struct {
	baseURL string
	secret  []byte
}

func NewQRGenerator(baseURL, secret string) *QRGenerator {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	return &QRGenerator{baseURL: baseURL, secret: hashed[:]}
}

// GenerateTableQR encodes the customer-app URL for one table as a PNG.
func (q *QRGenerator) GenerateTableQR(tenantID, tableID string) ([]byte, error) {
	url, err := q.TableURL(tenantID, tableID)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(url, qrcode.Medium, 256)
}

// TableURL builds the scan target with the encrypted table token attached.
func (q *QRGenerator) TableURL(tenantID, tableID string) (string, error) {
	data, err := json.Marshal(TablePayload{TenantID: tenantID, TableID: tableID})
	if err != nil {
		return "", err
	}

	token, err := encryptAES(data, q.secret)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/scan?t=%s", q.baseURL, token), nil
}

// DecodeToken reverses TableURL's token so the session endpoint can resolve
// which table was scanned.
func (q *QRGenerator) DecodeToken(token string) (*TablePayload, error) {
	data, err := decryptAES(token, q.secret)
	if err != nil {
		return nil, fmt.Errorf("invalid table token: %w", err)
	}

	var payload TablePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("invalid table token: %w", err)
	}
	return &payload, nil
}

func encryptAES(data []byte, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	ciphertext := make([]byte, aes.BlockSize+len(data))
	iv := ciphertext[:aes.BlockSize]

	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], data)

	return base64.URLEncoding.EncodeToString(ciphertext), nil
}

func decryptAES(token string, key []byte) ([]byte, error) {
	ciphertext, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < aes.BlockSize {
		return nil, errors.New("token too short")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	iv := ciphertext[:aes.BlockSize]
	data := make([]byte, len(ciphertext)-aes.BlockSize)

	stream := cipher.NewCFBDecrypter(block, iv)
	stream.XORKeyStream(data, ciphertext[aes.BlockSize:])

	return data, nil
}
