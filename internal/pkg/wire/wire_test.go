package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/bgrs/internal/app/models"
	"github.com/yigit/bgrs/internal/app/models/dto"
)

func decodeAll(t *testing.T, d *Decoder, data []byte) []dto.Request {
	t.Helper()
	var out []dto.Request
	for _, b := range data {
		if req, ok := d.DecodeNextByte(b); ok {
			out = append(out, req)
		}
	}
	return out
}

func TestDecodeLoginBytes(t *testing.T) {
	data := []byte{0, 3, 'b', 'o', 'b', 0, 'p', 'w', 0}

	reqs := decodeAll(t, NewDecoder(), data)
	require.Len(t, reqs, 1)
	assert.Equal(t, &dto.LoginRequest{Username: "bob", Password: "pw"}, reqs[0])
}

func TestDecodeCourseNumberIsBigEndian(t *testing.T) {
	reqs := decodeAll(t, NewDecoder(), []byte{0, 5, 0x01, 0x2C})
	require.Len(t, reqs, 1)
	assert.Equal(t, &dto.CourseRegRequest{CourseID: 300}, reqs[0])
}

func TestDecodeEveryRequestKind(t *testing.T) {
	requests := []dto.Request{
		&dto.RegisterRequest{Username: "root", Password: "toor", Role: models.RoleAdministrator},
		&dto.RegisterRequest{Username: "alice", Password: "pw", Role: models.RoleStudent},
		&dto.LoginRequest{Username: "alice", Password: "pw"},
		&dto.LogoutRequest{},
		&dto.CourseRegRequest{CourseID: 101},
		&dto.KdamCheckRequest{CourseID: 201},
		&dto.CourseStatRequest{CourseID: 65535},
		&dto.StudentStatRequest{Username: "alice"},
		&dto.IsRegisteredRequest{CourseID: 7},
		&dto.UnregisterRequest{CourseID: 0},
		&dto.MyCoursesRequest{},
	}

	var stream []byte
	for _, r := range requests {
		stream = append(stream, EncodeRequest(r)...)
	}

	decoded := decodeAll(t, NewDecoder(), stream)
	assert.Equal(t, requests, decoded)
}

func TestDecodeUnknownOpcode(t *testing.T) {
	d := NewDecoder()
	reqs := decodeAll(t, d, []byte{0, 42, 0, 3, 'a', 0, 'b', 0})

	require.Len(t, reqs, 2)
	assert.Equal(t, &dto.UnknownRequest{Code: 42}, reqs[0])
	assert.Equal(t, &dto.LoginRequest{Username: "a", Password: "b"}, reqs[1])
}

func TestDecodeOversizedField(t *testing.T) {
	data := []byte{0, 8}
	for i := 0; i < MaxFieldLength+10; i++ {
		data = append(data, 'x')
	}
	data = append(data, 0)
	data = append(data, 0, 11)

	reqs := decodeAll(t, NewDecoder(), data)
	require.Len(t, reqs, 2)
	assert.Equal(t, &dto.MalformedRequest{Code: dto.OpStudentStat}, reqs[0])
	assert.Equal(t, &dto.MyCoursesRequest{}, reqs[1])
}

func TestEncodeAck(t *testing.T) {
	got := Encode(&dto.AckResponse{MessageOpcode: dto.OpMyCourses, Payload: "[42]"})
	assert.Equal(t, []byte{0, 12, 0, 11, '[', '4', '2', ']', 0}, got)

	got = Encode(&dto.AckResponse{MessageOpcode: dto.OpLogin})
	assert.Equal(t, []byte{0, 12, 0, 3, 0}, got)
}

func TestEncodeErr(t *testing.T) {
	got := Encode(&dto.ErrorResponse{MessageOpcode: dto.OpCourseReg})
	assert.Equal(t, []byte{0, 13, 0, 5}, got)
}

func TestResponseDecoder(t *testing.T) {
	responses := []dto.Response{
		&dto.AckResponse{MessageOpcode: dto.OpLogin, Payload: ""},
		&dto.ErrorResponse{MessageOpcode: dto.OpCourseReg},
		&dto.AckResponse{MessageOpcode: dto.OpCourseStat, Payload: "Course: (1) A\nSeats Available: 1/1"},
	}
	var stream []byte
	for _, r := range responses {
		stream = append(stream, Encode(r)...)
	}

	d := NewResponseDecoder()
	var got []dto.Response
	for _, b := range stream {
		if resp, ok := d.DecodeNextByte(b); ok {
			got = append(got, resp)
		}
	}
	assert.Equal(t, responses, got)
}
