package wire

import (
	"encoding/binary"

	"github.com/yigit/bgrs/internal/app/models/dto"
)

// Encode returns the bytes of a server response
func Encode(resp dto.Response) []byte {
	switch r := resp.(type) {
	case *dto.AckResponse:
		out := appendShort(nil, uint16(dto.OpAck))
		out = appendShort(out, uint16(r.MessageOpcode))
		return appendString(out, r.Payload)
	case *dto.ErrorResponse:
		out := appendShort(nil, uint16(dto.OpErr))
		return appendShort(out, uint16(r.MessageOpcode))
	}
	return nil
}

// EncodeRequest returns the bytes a client sends for req
func EncodeRequest(req dto.Request) []byte {
	out := appendShort(nil, uint16(req.Opcode()))
	switch r := req.(type) {
	case *dto.RegisterRequest:
		out = appendString(out, r.Username)
		out = appendString(out, r.Password)
	case *dto.LoginRequest:
		out = appendString(out, r.Username)
		out = appendString(out, r.Password)
	case *dto.CourseRegRequest:
		out = appendShort(out, uint16(r.CourseID))
	case *dto.KdamCheckRequest:
		out = appendShort(out, uint16(r.CourseID))
	case *dto.CourseStatRequest:
		out = appendShort(out, uint16(r.CourseID))
	case *dto.StudentStatRequest:
		out = appendString(out, r.Username)
	case *dto.IsRegisteredRequest:
		out = appendShort(out, uint16(r.CourseID))
	case *dto.UnregisterRequest:
		out = appendShort(out, uint16(r.CourseID))
	}
	return out
}

func appendShort(b []byte, v uint16) []byte {
	return binary.BigEndian.AppendUint16(b, v)
}

func appendString(b []byte, s string) []byte {
	b = append(b, s...)
	return append(b, 0)
}

// ResponseDecoder is the client side counterpart of Decoder
type ResponseDecoder struct {
	buf []byte
}

// NewResponseDecoder creates a decoder waiting for ACK or ERR
func NewResponseDecoder() *ResponseDecoder {
	return &ResponseDecoder{}
}

// DecodeNextByte consumes b and returns a response once one is complete. Bytes
// that do not start an ACK or ERR are dropped.
func (d *ResponseDecoder) DecodeNextByte(b byte) (dto.Response, bool) {
	d.buf = append(d.buf, b)
	if len(d.buf) < 4 {
		return nil, false
	}

	op := dto.Opcode(binary.BigEndian.Uint16(d.buf[:2]))
	msg := dto.Opcode(binary.BigEndian.Uint16(d.buf[2:4]))
	switch op {
	case dto.OpErr:
		d.buf = d.buf[:0]
		return &dto.ErrorResponse{MessageOpcode: msg}, true
	case dto.OpAck:
		if b != 0 || len(d.buf) == 4 {
			return nil, false
		}
		resp := &dto.AckResponse{MessageOpcode: msg, Payload: string(d.buf[4 : len(d.buf)-1])}
		d.buf = d.buf[:0]
		return resp, true
	}
	d.buf = d.buf[:0]
	return nil, false
}
