// Package protocol implements the PredKV wire protocol.
//
// Each exchange is one frame in either direction: a 4-byte big-endian
// length prefix followed by a JSON body. The client sends exactly one
// Request frame and reads exactly one Response frame per cycle; there
// is no pipelining. JSON bodies are self-describing, so keys and
// values of any primitive kind round-trip between implementations in
// different languages.
package protocol

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/predkv/predkv/internal/core/domain"
)

// MaxFrameLen limits a single frame body (4 MiB). Entries are small;
// this mainly guards the server against hostile length prefixes.
const MaxFrameLen = 4 << 20

var (
	ErrProtocol      = errors.New("protocol: malformed frame")
	ErrFrameTooLarge = errors.New("protocol: frame exceeds limit")
)

// ReadFrame reads one length-prefixed frame body.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n == 0 {
		return nil, fmt.Errorf("%w: empty frame", ErrProtocol)
	}
	if n > MaxFrameLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, n)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return body, nil
}

// WriteFrame writes one length-prefixed frame body.
func WriteFrame(w io.Writer, body []byte) error {
	if len(body) > MaxFrameLen {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(body))
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(body)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}

// ReadRequest reads and decodes one request frame.
func ReadRequest(r io.Reader) (*domain.Request, error) {
	body, err := ReadFrame(r)
	if err != nil {
		return nil, err
	}
	var req domain.Request
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	return &req, nil
}

// WriteRequest encodes and writes one request frame.
func WriteRequest(w io.Writer, req *domain.Request) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return WriteFrame(w, body)
}

// ReadResponse reads and decodes one response frame.
func ReadResponse(r io.Reader) (*domain.Response, error) {
	body, err := ReadFrame(r)
	if err != nil {
		return nil, err
	}
	var resp domain.Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	return &resp, nil
}

// WriteResponse encodes and writes one response frame.
func WriteResponse(w io.Writer, resp *domain.Response) error {
	body, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return WriteFrame(w, body)
}
