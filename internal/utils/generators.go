package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateReceiptNumber returns a printable receipt number, unique enough for
// reconciliation against the audit trail.
func GenerateReceiptNumber() string {
	timestamp := time.Now().Unix()
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(999999))
	return fmt.Sprintf("rcp_%d_%06d", timestamp, randomNum.Int64())
}
