package domain

import (
	"database/sql/driver"
	"fmt"
)

// Channel identifies a messaging transport.
type Channel string

const (
	ChannelSMS           Channel = "SMS"
	ChannelWhatsApp      Channel = "WHATSAPP"
	ChannelWhatsAppCloud Channel = "WHATSAPP_CLOUD"
)

// AllChannels lists every known channel.
var AllChannels = []Channel{ChannelSMS, ChannelWhatsApp, ChannelWhatsAppCloud}

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	switch c {
	case ChannelSMS, ChannelWhatsApp, ChannelWhatsAppCloud:
		return true
	}
	return false
}

// Value implements the driver.Valuer interface for Channel.
func (c Channel) Value() (driver.Value, error) {
	return string(c), nil
}

// Scan implements the sql.Scanner interface for Channel.
func (c *Channel) Scan(value interface{}) error {
	strVal, ok := value.(string)
	if !ok {
		bytesVal, ok := value.([]byte)
		if !ok {
			return fmt.Errorf("failed to scan Channel: value is not string or []byte, it is %T", value)
		}
		strVal = string(bytesVal)
	}
	*c = Channel(strVal)
	if !c.Valid() {
		return fmt.Errorf("unknown Channel value: %s", strVal)
	}
	return nil
}
