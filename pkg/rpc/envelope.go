package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"unicode/utf8"
)

type Envelope struct {
	Command string
	Payload any
	// Metadata is forwarded by transports that support message properties.
	Metadata map[string]string
}

type Response json.RawMessage

func (r Response) Decode(into any) error {
	if len(r) == 0 {
		return fmt.Errorf("decode rpc response: empty response")
	}
	if err := json.Unmarshal(r, into); err != nil {
		return fmt.Errorf("decode rpc response: %w", err)
	}
	return nil
}

func (r Response) IsEmpty() bool {
	trimmed := bytes.TrimSpace(r)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func (r Response) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

type RequestPacket struct {
	Pattern string `json:"pattern"`
	Data    any    `json:"data"`
	ID      string `json:"id"`
}

type ReplyPacket struct {
	ID         string          `json:"id"`
	Response   json.RawMessage `json:"response,omitempty"`
	Err        json.RawMessage `json:"err,omitempty"`
	IsDisposed bool            `json:"isDisposed,omitempty"`
}

// Pattern renders the command the way message-pattern routers match it: {"cmd":"<command>"}.
func Pattern(command string) string {
	return `{"cmd":` + strconv.Quote(command) + `}`
}

// EncodeRequest returns ASCII-only JSON, so its byte length equals its length in UTF-16 units.
func EncodeRequest(envelope Envelope, id string) ([]byte, error) {
	encoded, err := json.Marshal(RequestPacket{
		Pattern: Pattern(envelope.Command),
		Data:    envelope.Payload,
		ID:      id,
	})
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", envelope.Command, err)
	}

	return escapeNonASCII(encoded), nil
}

func DecodeReply(data []byte) (ReplyPacket, error) {
	var packet ReplyPacket
	if err := json.Unmarshal(data, &packet); err != nil {
		return ReplyPacket{}, fmt.Errorf("decode reply: %w", err)
	}
	if packet.ID == "" {
		return ReplyPacket{}, fmt.Errorf("decode reply: missing id")
	}

	return packet, nil
}

func (p ReplyPacket) hasError() bool {
	trimmed := bytes.TrimSpace(p.Err)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

func escapeNonASCII(data []byte) []byte {
	isASCII := true
	for _, b := range data {
		if b >= utf8.RuneSelf {
			isASCII = false
			break
		}
	}
	if isASCII {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data) + 16)
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		data = data[size:]
		if r < utf8.RuneSelf {
			buf.WriteByte(byte(r))
			continue
		}
		if r > 0xFFFF {
			r -= 0x10000
			fmt.Fprintf(&buf, `\u%04x\u%04x`, 0xD800+(r>>10), 0xDC00+(r&0x3FF))
			continue
		}
		fmt.Fprintf(&buf, `\u%04x`, r)
	}

	return buf.Bytes()
}
