package phonepe

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strconv"
)

const (
	PayPath    = "/pg/v1/pay"
	StatusPath = "/pg/v1/status"
)

// EncodePayload is the base64 form the gateway expects in the pay request
// body and in the pay checksum.
func EncodePayload(payload []byte) string {
	return base64.StdEncoding.EncodeToString(payload)
}

// PayChecksum signs a pay request:
// hex(SHA256(base64(payload) + "/pg/v1/pay" + saltKey)) + "###" + saltIndex.
func PayChecksum(payload []byte, saltKey string, saltIndex int) string {
	return sign(EncodePayload(payload)+PayPath+saltKey, saltIndex)
}

// StatusChecksum signs a status lookup:
// hex(SHA256("/pg/v1/status/" + merchantID + "/" + txnID + saltKey)) + "###" + saltIndex.
func StatusChecksum(merchantID, merchantTransactionID, saltKey string, saltIndex int) string {
	return sign(statusPath(merchantID, merchantTransactionID)+saltKey, saltIndex)
}

func statusPath(merchantID, merchantTransactionID string) string {
	return StatusPath + "/" + merchantID + "/" + merchantTransactionID
}

func sign(input string, saltIndex int) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:]) + "###" + strconv.Itoa(saltIndex)
}
