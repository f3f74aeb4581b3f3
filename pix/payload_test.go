package pix

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testReceiver = Receiver{
	Key:  "fundo@example.com",
	Name: "Fundo Exemplo Ltda",
	City: "SAO PAULO",
}

func TestStaticPayload_EmbedsAmount(t *testing.T) {
	payload := StaticPayload(testReceiver, decimal.RequireFromString("150.5"), "TX123456")

	// Amount field: id 54, length 06, value 150.50
	assert.Contains(t, payload, "5406150.50")
}

func TestStaticPayload_EmbedsKeyWithLengthPrefix(t *testing.T) {
	payload := StaticPayload(testReceiver, decimal.NewFromInt(10), "TX123456")

	expected := fmt.Sprintf("01%02d%s", len(testReceiver.Key), testReceiver.Key)
	assert.Contains(t, payload, expected)
	assert.Contains(t, payload, "0014br.gov.bcb.pix")
}

func TestStaticPayload_NameAndCityAreSanitized(t *testing.T) {
	receiver := Receiver{
		Key:  "k@e.com",
		Name: "Fundo Ações & Câmbio Ltda ME XYZ", // too long, accents, ampersand
		City: "São Paulo",
	}

	payload := StaticPayload(receiver, decimal.NewFromInt(1), "TX1")

	assert.NotContains(t, payload, "&")
	assert.Contains(t, payload, "SO PAULO") // non-ASCII dropped, rest uppercased
}

func TestStaticPayload_CRCIsValid(t *testing.T) {
	payload := StaticPayload(testReceiver, decimal.NewFromInt(42), "TXABC")

	require.Greater(t, len(payload), 8)
	body := payload[:len(payload)-4]
	checksum := payload[len(payload)-4:]

	// The trailing four hex digits must be the CRC of everything before them
	assert.Equal(t, fmt.Sprintf("%04X", crc16(body)), checksum)
	assert.True(t, strings.Contains(body, "6304"))
}

func TestCRC16_KnownVector(t *testing.T) {
	// CRC-16/CCITT-FALSE of "123456789" is 0x29B1
	assert.Equal(t, uint16(0x29B1), crc16("123456789"))
}
