package dto

import (
	"fmt"

	"github.com/yigit/bgrs/internal/app/models"
)

// Opcode is the numeric tag of a BGRS message
type Opcode uint16

// BGRS opcodes
const (
	OpAdminReg     Opcode = 1
	OpStudentReg   Opcode = 2
	OpLogin        Opcode = 3
	OpLogout       Opcode = 4
	OpCourseReg    Opcode = 5
	OpKdamCheck    Opcode = 6
	OpCourseStat   Opcode = 7
	OpStudentStat  Opcode = 8
	OpIsRegistered Opcode = 9
	OpUnregister   Opcode = 10
	OpMyCourses    Opcode = 11
	OpAck          Opcode = 12
	OpErr          Opcode = 13
)

var opcodeNames = map[Opcode]string{
	OpAdminReg:     "ADMINREG",
	OpStudentReg:   "STUDENTREG",
	OpLogin:        "LOGIN",
	OpLogout:       "LOGOUT",
	OpCourseReg:    "COURSEREG",
	OpKdamCheck:    "KDAMCHECK",
	OpCourseStat:   "COURSESTAT",
	OpStudentStat:  "STUDENTSTAT",
	OpIsRegistered: "ISREGISTERED",
	OpUnregister:   "UNREGISTER",
	OpMyCourses:    "MYCOURSES",
	OpAck:          "ACK",
	OpErr:          "ERR",
}

func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("OPCODE(%d)", uint16(o))
}

// Known reports whether o is a request opcode the server understands
func (o Opcode) Known() bool {
	return o >= OpAdminReg && o <= OpMyCourses
}

// Request is a decoded client message. The set of implementations is closed.
type Request interface {
	Opcode() Opcode
	isRequest()
}

// Response is a server message. The set of implementations is closed.
type Response interface {
	Opcode() Opcode
	isResponse()
}

// RegisterRequest is ADMINREG or STUDENTREG, depending on Role
type RegisterRequest struct {
	Username string
	Password string
	Role     models.RoleType
}

func (r *RegisterRequest) Opcode() Opcode {
	if r.Role == models.RoleAdministrator {
		return OpAdminReg
	}
	return OpStudentReg
}

// LoginRequest is LOGIN
type LoginRequest struct {
	Username string
	Password string
}

func (*LoginRequest) Opcode() Opcode { return OpLogin }

// LogoutRequest is LOGOUT; the actor is the connection's session
type LogoutRequest struct{}

func (*LogoutRequest) Opcode() Opcode { return OpLogout }

// CourseRegRequest is COURSEREG
type CourseRegRequest struct {
	CourseID int
}

func (*CourseRegRequest) Opcode() Opcode { return OpCourseReg }

// KdamCheckRequest is KDAMCHECK
type KdamCheckRequest struct {
	CourseID int
}

func (*KdamCheckRequest) Opcode() Opcode { return OpKdamCheck }

// CourseStatRequest is COURSESTAT
type CourseStatRequest struct {
	CourseID int
}

func (*CourseStatRequest) Opcode() Opcode { return OpCourseStat }

// StudentStatRequest is STUDENTSTAT
type StudentStatRequest struct {
	Username string
}

func (*StudentStatRequest) Opcode() Opcode { return OpStudentStat }

// IsRegisteredRequest is ISREGISTERED
type IsRegisteredRequest struct {
	CourseID int
}

func (*IsRegisteredRequest) Opcode() Opcode { return OpIsRegistered }

// UnregisterRequest is UNREGISTER
type UnregisterRequest struct {
	CourseID int
}

func (*UnregisterRequest) Opcode() Opcode { return OpUnregister }

// MyCoursesRequest is MYCOURSES
type MyCoursesRequest struct{}

func (*MyCoursesRequest) Opcode() Opcode { return OpMyCourses }

// UnknownRequest carries an opcode the server does not serve. It is always
// answered with ERR.
type UnknownRequest struct {
	Code Opcode
}

func (r *UnknownRequest) Opcode() Opcode { return r.Code }

// MalformedRequest carries a known opcode whose fields could not be decoded.
// It is always answered with ERR.
type MalformedRequest struct {
	Code Opcode
}

func (r *MalformedRequest) Opcode() Opcode { return r.Code }

func (*RegisterRequest) isRequest()     {}
func (*LoginRequest) isRequest()        {}
func (*LogoutRequest) isRequest()       {}
func (*CourseRegRequest) isRequest()    {}
func (*KdamCheckRequest) isRequest()    {}
func (*CourseStatRequest) isRequest()   {}
func (*StudentStatRequest) isRequest()  {}
func (*IsRegisteredRequest) isRequest() {}
func (*UnregisterRequest) isRequest()   {}
func (*MyCoursesRequest) isRequest()    {}
func (*UnknownRequest) isRequest()      {}
func (*MalformedRequest) isRequest()    {}

// AckResponse acknowledges MessageOpcode. Payload is optional.
type AckResponse struct {
	MessageOpcode Opcode
	Payload       string
}

func (*AckResponse) Opcode() Opcode { return OpAck }
func (*AckResponse) isResponse()    {}

// ErrorResponse rejects the request tagged MessageOpcode
type ErrorResponse struct {
	MessageOpcode Opcode
}

func (*ErrorResponse) Opcode() Opcode { return OpErr }
func (*ErrorResponse) isResponse()    {}

// NewAck creates an ACK for req
func NewAck(req Request, payload string) *AckResponse {
	return &AckResponse{MessageOpcode: req.Opcode(), Payload: payload}
}

// NewError creates an ERR for req
func NewError(req Request) *ErrorResponse {
	return &ErrorResponse{MessageOpcode: req.Opcode()}
}
