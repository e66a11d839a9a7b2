package websocket

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/view"
)

const (
	opContinuation byte = 0x0
	opText         byte = 0x1
	opBinary       byte = 0x2
	opClose        byte = 0x8
	opPing         byte = 0x9
	opPong         byte = 0xA
)

const (
	maxPayloadSize        = 64 << 10
	maxControlPayloadSize = 125
)

// close status codes, RFC 6455 section 7.4.1
const (
	closeProtocolError uint16 = 1002
	closeMessageTooBig uint16 = 1009
)

var (
	ErrConnectionClosed  = errors.New("connection closed by client")
	ErrPayloadTooLarge   = errors.New("payload is too large")
	ErrUnsupportedOpCode = errors.New("unsupported opcode")
	ErrProtocolViolation = errors.New("websocket protocol violation")
)

// frame represents a WebSocket frame and its metadata.
type frame struct {
	isFin   bool
	masked  bool
	opCode  byte
	length  uint64
	payload []byte
}

func (that frame) isControl() bool {
	return that.opCode&0x8 != 0
}

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RequestPayload struct {
	Cell *int `json:"cell,omitempty"`
	Step *int `json:"step,omitempty"`
}

type ResponsePayload struct {
	Game    *view.GameView `json:"game,omitempty"`
	Applied *bool          `json:"applied,omitempty"`
	Error   string         `json:"error,omitempty"`
}

func sendMessage(bufrw *bufio.ReadWriter, action string, payload ResponsePayload) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	responseBytes, err := json.Marshal(Message{Action: action, Payload: payloadBytes})
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	f := frame{
		isFin:   true,
		opCode:  opText,
		length:  uint64(len(responseBytes)),
		payload: responseBytes,
	}

	if err = writeFrame(bufrw.Writer, f); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}

	return nil
}

// writeFrame writes a single unmasked frame, as servers must.
func writeFrame(w *bufio.Writer, frameData frame) error {
	header := make([]byte, 2, 10)
	header[0] = frameData.opCode

	if frameData.isFin {
		header[0] |= 0x80
	}

	switch {
	case frameData.length < 126:
		header[1] = byte(frameData.length)
	case frameData.length < 1<<16:
		header[1] = 126
		header = binary.BigEndian.AppendUint16(header, uint16(frameData.length))
	default:
		header[1] = 127
		header = binary.BigEndian.AppendUint64(header, frameData.length)
	}

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write frame header: %w", err)
	}

	if _, err := w.Write(frameData.payload); err != nil {
		return fmt.Errorf("failed to write frame payload: %w", err)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %w", err)
	}

	return nil
}

func sendClose(w *bufio.Writer, code uint16) error {
	payload := binary.BigEndian.AppendUint16(nil, code)

	return writeFrame(w, frame{isFin: true, opCode: opClose, length: uint64(len(payload)), payload: payload})
}

// readMessage returns the next data message from a client, joining fragments and answering
// control frames.
func readMessage(bufrw *bufio.ReadWriter) ([]byte, error) {
	var (
		message    []byte
		fragmented bool
	)

	for {
		f, err := readFrame(bufrw.Reader)
		if err != nil {
			return nil, err
		}

		if !f.masked {
			return nil, fmt.Errorf("%w: unmasked client frame", ErrProtocolViolation)
		}

		if f.isControl() && (!f.isFin || f.length > maxControlPayloadSize) {
			return nil, fmt.Errorf("%w: fragmented or oversized control frame", ErrProtocolViolation)
		}

		switch f.opCode {
		case opPing:
			if err = writeFrame(bufrw.Writer, frame{isFin: true, opCode: opPong, length: f.length, payload: f.payload}); err != nil {
				return nil, err
			}

			continue
		case opPong:
			continue
		case opClose:
			closePayload := f.payload
			if len(closePayload) > 2 {
				closePayload = closePayload[:2]
			}

			_ = writeFrame(bufrw.Writer, frame{isFin: true, opCode: opClose, length: uint64(len(closePayload)), payload: closePayload})

			return nil, ErrConnectionClosed
		case opContinuation:
			if !fragmented {
				return nil, fmt.Errorf("%w: continuation frame without a message", ErrProtocolViolation)
			}
		case opText, opBinary:
			if fragmented {
				return nil, fmt.Errorf("%w: new message inside a fragmented one", ErrProtocolViolation)
			}
		default:
			return nil, fmt.Errorf("%w: %#x", ErrUnsupportedOpCode, f.opCode)
		}

		message = append(message, f.payload...)
		if len(message) > maxPayloadSize {
			return nil, ErrPayloadTooLarge
		}

		if f.isFin {
			return message, nil
		}

		fragmented = true
	}
}

func readFrame(r *bufio.Reader) (frame, error) {
	header := make([]byte, 2)
	if _, err := io.ReadFull(r, header); err != nil {
		return frame{}, fmt.Errorf("failed to read header: %w", err)
	}

	f := frame{
		isFin:  header[0]&0x80 != 0,
		masked: header[1]&0x80 != 0,
		opCode: header[0] & 0x0f,
	}

	length, err := readPayloadLength(r, header[1]&0x7f)
	if err != nil {
		return frame{}, err
	}

	if length > maxPayloadSize {
		return frame{}, ErrPayloadTooLarge
	}

	var mask []byte
	if f.masked {
		mask = make([]byte, 4)
		if _, err = io.ReadFull(r, mask); err != nil {
			return frame{}, fmt.Errorf("failed to read mask: %w", err)
		}
	}

	f.length = length
	f.payload = make([]byte, length)
	if _, err = io.ReadFull(r, f.payload); err != nil {
		return frame{}, fmt.Errorf("failed to read payload: %w", err)
	}

	if mask != nil {
		for i := range f.payload {
			f.payload[i] ^= mask[i%4]
		}
	}

	return f, nil
}

func readPayloadLength(r io.Reader, payloadLen byte) (uint64, error) {
	switch payloadLen {
	case 126:
		length := make([]byte, 2)
		if _, err := io.ReadFull(r, length); err != nil {
			return 0, fmt.Errorf("failed to read payload length: %w", err)
		}

		return uint64(binary.BigEndian.Uint16(length)), nil
	case 127:
		length := make([]byte, 8)
		if _, err := io.ReadFull(r, length); err != nil {
			return 0, fmt.Errorf("failed to read payload length: %w", err)
		}

		return binary.BigEndian.Uint64(length), nil
	default:
		return uint64(payloadLen), nil
	}
}
