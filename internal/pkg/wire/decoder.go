// Package wire implements the BGRS byte encoding.
//
// Opcodes and course numbers are 2-byte big-endian integers. Strings are UTF-8
// terminated by a zero byte. An ACK is 12|opcode|payload|0 and an ERR is 13|opcode.
package wire

import (
	"bytes"
	"encoding/binary"

	"github.com/yigit/bgrs/internal/app/models"
	"github.com/yigit/bgrs/internal/app/models/dto"
)

// MaxFieldLength bounds a single string field. Longer fields are consumed up to
// their terminator and the request is reported as malformed.
const MaxFieldLength = 4096

type fieldKind uint8

const (
	fieldString fieldKind = iota
	fieldShort
)

// layouts lists the payload fields that follow each request opcode
var layouts = map[dto.Opcode][]fieldKind{
	dto.OpAdminReg:     {fieldString, fieldString},
	dto.OpStudentReg:   {fieldString, fieldString},
	dto.OpLogin:        {fieldString, fieldString},
	dto.OpLogout:       nil,
	dto.OpCourseReg:    {fieldShort},
	dto.OpKdamCheck:    {fieldShort},
	dto.OpCourseStat:   {fieldShort},
	dto.OpStudentStat:  {fieldString},
	dto.OpIsRegistered: {fieldShort},
	dto.OpUnregister:   {fieldShort},
	dto.OpMyCourses:    nil,
}

// Decoder turns a byte stream into requests, one byte at a time. It is not safe
// for concurrent use; every connection owns one.
type Decoder struct {
	header   [2]byte
	read     int
	opcode   dto.Opcode
	layout   []fieldKind
	field    bytes.Buffer
	strings  []string
	shorts   []int
	overflow bool
}

// NewDecoder creates a decoder waiting for an opcode
func NewDecoder() *Decoder {
	return &Decoder{}
}

// DecodeNextByte consumes b and returns a request once one is complete
func (d *Decoder) DecodeNextByte(b byte) (dto.Request, bool) {
	if d.read < 2 {
		d.header[d.read] = b
		d.read++
		if d.read < 2 {
			return nil, false
		}
		d.opcode = dto.Opcode(binary.BigEndian.Uint16(d.header[:]))
		layout, ok := layouts[d.opcode]
		if !ok {
			req := &dto.UnknownRequest{Code: d.opcode}
			d.reset()
			return req, true
		}
		d.layout = layout
		return d.complete()
	}

	switch d.layout[0] {
	case fieldString:
		if b != 0 {
			if d.field.Len() >= MaxFieldLength {
				d.overflow = true
			} else {
				d.field.WriteByte(b)
			}
			return nil, false
		}
		d.strings = append(d.strings, d.field.String())
		d.field.Reset()
	case fieldShort:
		d.field.WriteByte(b)
		if d.field.Len() < 2 {
			return nil, false
		}
		d.shorts = append(d.shorts, int(binary.BigEndian.Uint16(d.field.Bytes())))
		d.field.Reset()
	}
	d.layout = d.layout[1:]
	return d.complete()
}

// complete builds the request when no field is left to read
func (d *Decoder) complete() (dto.Request, bool) {
	if len(d.layout) > 0 {
		return nil, false
	}
	req := d.build()
	d.reset()
	return req, true
}

func (d *Decoder) build() dto.Request {
	if d.overflow {
		return &dto.MalformedRequest{Code: d.opcode}
	}
	switch d.opcode {
	case dto.OpAdminReg:
		return &dto.RegisterRequest{Username: d.strings[0], Password: d.strings[1], Role: models.RoleAdministrator}
	case dto.OpStudentReg:
		return &dto.RegisterRequest{Username: d.strings[0], Password: d.strings[1], Role: models.RoleStudent}
	case dto.OpLogin:
		return &dto.LoginRequest{Username: d.strings[0], Password: d.strings[1]}
	case dto.OpLogout:
		return &dto.LogoutRequest{}
	case dto.OpCourseReg:
		return &dto.CourseRegRequest{CourseID: d.shorts[0]}
	case dto.OpKdamCheck:
		return &dto.KdamCheckRequest{CourseID: d.shorts[0]}
	case dto.OpCourseStat:
		return &dto.CourseStatRequest{CourseID: d.shorts[0]}
	case dto.OpStudentStat:
		return &dto.StudentStatRequest{Username: d.strings[0]}
	case dto.OpIsRegistered:
		return &dto.IsRegisteredRequest{CourseID: d.shorts[0]}
	case dto.OpUnregister:
		return &dto.UnregisterRequest{CourseID: d.shorts[0]}
	case dto.OpMyCourses:
		return &dto.MyCoursesRequest{}
	}
	return &dto.UnknownRequest{Code: d.opcode}
}

func (d *Decoder) reset() {
	d.read = 0
	d.opcode = 0
	d.layout = nil
	d.field.Reset()
	d.strings = d.strings[:0]
	d.shorts = d.shorts[:0]
	d.overflow = false
}
