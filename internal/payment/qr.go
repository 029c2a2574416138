package payment

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"time"

	"ms-restaurant/internal/models"

	"github.com/skip2/go-qrcode"
)

type QRGenerator struct {
	secret []byte
}

func NewQRGenerator(secret string) *QRGenerator {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	return &QRGenerator{secret: hashed[:]}
}

type qrPayload struct {
	OrderID  string    `json:"order_id"`
	UserID   string    `json:"user_id"`
	SumPrice float64   `json:"sum_price"`
	IssuedAt time.Time `json:"issued_at"`
}

// GenerateEncryptedQR renders the payment reference for an order as a QR
// PNG. The payload is AES-encrypted so the code only means something to the
// till that shares the secret.
func (q *QRGenerator) GenerateEncryptedQR(order models.Order) ([]byte, error) {
	data, err := json.Marshal(qrPayload{
		OrderID:  order.ID,
		UserID:   order.UserID,
		SumPrice: order.SumPrice,
		IssuedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	encrypted, err := encryptAES(data, q.secret)
	if err != nil {
		return nil, err
	}

	return qrcode.Encode(encrypted, qrcode.Medium, 256)
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
