package pkg

import (
	"crypto/rand"
	"math/big"
)

const digits = "0123456789"

// RandDigits 生成 n 位数字验证码
func RandDigits(n int) (string, error) {
	buf := make([]byte, n)
	base := big.NewInt(int64(len(digits)))
	for i := range buf {
		x, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", err
		}
		buf[i] = digits[x.Int64()]
	}
	return string(buf), nil
}
