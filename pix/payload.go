// Package pix builds static PIX "copia e cola" payloads (BR Code, the
// Brazilian Central Bank profile of EMV QRCPS-MPM).
package pix

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Receiver identifies the PIX key the fund collects deposits on
type Receiver struct {
	Key  string
	Name string
	City string
}

// EMV data object ids used by static PIX payloads
const (
	idPayloadFormat       = "00"
	idMerchantAccountInfo = "26"
	idMerchantCategory    = "52"
	idCurrency            = "53"
	idAmount              = "54"
	idCountryCode         = "58"
	idMerchantName        = "59"
	idMerchantCity        = "60"
	idAdditionalData      = "62"
	idCRC                 = "63"

	idGUI        = "00" // inside 26
	idPixKey     = "01" // inside 26
	idReference  = "05" // inside 62
	pixGUI       = "br.gov.bcb.pix"
	currencyBRL  = "986"
	countryBR    = "BR"
	categoryNone = "0000"
)

// StaticPayload builds the EMV payload for a fixed-amount static PIX code.
// The txid shows up as the payment reference on the payer's statement.
func StaticPayload(receiver Receiver, amount decimal.Decimal, txid string) string {
	account := field(idGUI, pixGUI) + field(idPixKey, receiver.Key)
	additional := field(idReference, sanitize(txid, 25))

	var b strings.Builder
	b.WriteString(field(idPayloadFormat, "01"))
	b.WriteString(field(idMerchantAccountInfo, account))
	b.WriteString(field(idMerchantCategory, categoryNone))
	b.WriteString(field(idCurrency, currencyBRL))
	b.WriteString(field(idAmount, amount.StringFixed(2)))
	b.WriteString(field(idCountryCode, countryBR))
	b.WriteString(field(idMerchantName, sanitize(receiver.Name, 25)))
	b.WriteString(field(idMerchantCity, sanitize(receiver.City, 15)))
	b.WriteString(field(idAdditionalData, additional))

	// The CRC covers everything up to and including its own id and length
	payload := b.String() + idCRC + "04"
	return payload + fmt.Sprintf("%04X", crc16(payload))
}

// field encodes one EMV data object: id, two-digit length, value
func field(id, value string) string {
	return fmt.Sprintf("%s%02d%s", id, len(value), value)
}

// sanitize uppercases and strips characters the EMV name/city fields reject
func sanitize(s string, max int) string {
	s = strings.ToUpper(s)
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == ' ':
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if len(out) > max {
		out = out[:max]
	}
	return out
}

// crc16 is CRC-16/CCITT-FALSE (poly 0x1021, init 0xFFFF) as required by
// the BR Code spec.
func crc16(s string) uint16 {
	crc := uint16(0xFFFF)
	for _, c := range []byte(s) {
		crc ^= uint16(c) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
