package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"math/big"
	mrand "math/rand"
	"time"
)

const charset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const upperCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func init() {
	var b [8]byte
	_, err := crand.Read(b[:])
	if err != nil {
		mrand.Seed(time.Now().UnixNano())
		return
	}
	mrand.Seed(int64(binary.LittleEndian.Uint64(b[:])))
}

func String(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[mrand.Intn(len(charset))]
	}
	return string(b)
}

// Upper returns a random string drawn from uppercase letters and digits,
// the alphabet of order-number suffixes.
func Upper(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = upperCharset[mrand.Intn(len(upperCharset))]
	}
	return string(b)
}

// Hex returns a random hex string of the given length read from the
// system's secure source. Length must be even.
func Hex(length int) (string, error) {
	b := make([]byte, length/2)
	if _, err := crand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func StringSecure(length int) (string, error) {
	b := make([]byte, length)
	for i := range b {
		l := big.NewInt(int64(len(charset)))
		num, err := crand.Int(crand.Reader, l)
		if err != nil {
			return "", err
		}
		b[i] = charset[num.Int64()]
	}
	return string(b), nil
}
