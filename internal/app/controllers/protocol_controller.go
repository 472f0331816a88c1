// Package controllers turns decoded requests into engine calls: BGRS messages from
// client connections and HTTP requests from the ops API.
package controllers

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/bgrs/internal/app/models"
	"github.com/yigit/bgrs/internal/app/models/dto"
	"github.com/yigit/bgrs/internal/app/services"
	"github.com/yigit/bgrs/internal/pkg/connection"
	"github.com/yigit/bgrs/internal/pkg/helpers"
	"github.com/yigit/bgrs/internal/pkg/metrics"
)

// Session is the state of one client connection. BGRS keeps one login per
// connection, so the actor of every request is read from here.
type Session struct {
	Username string
	// Terminate asks the transport to close the connection once the last
	// response is written.
	Terminate bool
}

// LoggedIn reports whether the connection holds a login
func (s *Session) LoggedIn() bool {
	return s.Username != ""
}

// ProtocolController dispatches BGRS requests to the registration engine
type ProtocolController struct {
	service services.RegistrationService
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewProtocolController creates a new ProtocolController. m may be nil.
func NewProtocolController(service services.RegistrationService, m *metrics.Metrics, logger zerolog.Logger) *ProtocolController {
	return &ProtocolController{
		service: service,
		metrics: m,
		logger:  logger.With().Str("component", "protocol").Logger(),
	}
}

// Handle answers req on behalf of the connection owning sess. Every request gets
// exactly one response: an ACK, or an ERR carrying the request opcode.
func (c *ProtocolController) Handle(sess *Session, req dto.Request) dto.Response {
	resp := c.dispatch(sess, req)

	outcome := metrics.OutcomeAck
	if _, failed := resp.(*dto.ErrorResponse); failed {
		outcome = metrics.OutcomeErr
	}
	c.logger.Debug().
		Str("username", sess.Username).
		Stringer("opcode", req.Opcode()).
		Str("outcome", outcome).
		Msg("Request handled")
	if c.metrics != nil {
		c.metrics.ObserveRequest(req.Opcode().String(), outcome)
	}
	return resp
}

// Close releases the login of a connection that went away without LOGOUT
func (c *ProtocolController) Close(sess *Session) {
	if !sess.LoggedIn() {
		return
	}
	if c.service.Logout(sess.Username) == models.LogoutOK {
		c.logger.Info().Str("username", sess.Username).Msg("Session closed with its connection")
	}
	sess.Username = ""
	c.updateSessions()
}

// NewConnectionProtocol binds a fresh session to the controller. The hub calls it
// once per accepted connection.
func (c *ProtocolController) NewConnectionProtocol() connection.Protocol {
	return &connectionProtocol{controller: c, session: &Session{}}
}

type connectionProtocol struct {
	controller *ProtocolController
	session    *Session
}

func (p *connectionProtocol) Process(req dto.Request) dto.Response {
	return p.controller.Handle(p.session, req)
}

func (p *connectionProtocol) ShouldTerminate() bool {
	return p.session.Terminate
}

func (p *connectionProtocol) Close() {
	p.controller.Close(p.session)
}

func (c *ProtocolController) dispatch(sess *Session, req dto.Request) dto.Response {
	switch r := req.(type) {
	case *dto.RegisterRequest:
		return c.register(sess, r)
	case *dto.LoginRequest:
		return c.login(sess, r)
	case *dto.LogoutRequest:
		return c.logout(sess, r)
	case *dto.CourseRegRequest:
		if c.service.RegisterCourse(sess.Username, r.CourseID).OK() {
			return dto.NewAck(r, "")
		}
	case *dto.UnregisterRequest:
		if c.service.UnregisterCourse(sess.Username, r.CourseID).OK() {
			return dto.NewAck(r, "")
		}
	case *dto.KdamCheckRequest:
		if kdam, status := c.service.KdamCheck(sess.Username, r.CourseID); status.OK() {
			return dto.NewAck(r, helpers.FormatIntList(kdam))
		}
	case *dto.CourseStatRequest:
		if stat, status := c.service.CourseStat(sess.Username, r.CourseID); status.OK() {
			return dto.NewAck(r, FormatCourseStat(stat))
		}
	case *dto.StudentStatRequest:
		if stat, status := c.service.StudentStat(sess.Username, r.Username); status.OK() {
			return dto.NewAck(r, FormatStudentStat(stat))
		}
	case *dto.IsRegisteredRequest:
		if enrolled, status := c.service.IsEnrolled(sess.Username, r.CourseID); status.OK() {
			if enrolled {
				return dto.NewAck(r, "REGISTERED")
			}
			return dto.NewAck(r, "NOT REGISTERED")
		}
	case *dto.MyCoursesRequest:
		if courses, status := c.service.MyCourses(sess.Username); status.OK() {
			return dto.NewAck(r, helpers.FormatIntList(courses))
		}
	case *dto.UnknownRequest:
		c.logger.Warn().Uint16("opcode", uint16(r.Code)).Msg("Unknown opcode")
	case *dto.MalformedRequest:
		c.logger.Warn().Stringer("opcode", r.Code).Msg("Malformed request")
	}
	return dto.NewError(req)
}

func (c *ProtocolController) register(sess *Session, r *dto.RegisterRequest) dto.Response {
	if sess.LoggedIn() {
		return dto.NewError(r)
	}
	status, err := c.service.RegisterUser(r.Username, r.Password, r.Role)
	if err != nil {
		c.logger.Error().Err(err).Str("username", r.Username).Msg("Registration failed")
		return dto.NewError(r)
	}
	if !status.OK() {
		return dto.NewError(r)
	}
	return dto.NewAck(r, "")
}

func (c *ProtocolController) login(sess *Session, r *dto.LoginRequest) dto.Response {
	if sess.LoggedIn() {
		return dto.NewError(r)
	}
	status, _ := c.service.Login(r.Username, r.Password)
	if !status.OK() {
		return dto.NewError(r)
	}
	sess.Username = r.Username
	c.updateSessions()
	return dto.NewAck(r, "")
}

func (c *ProtocolController) logout(sess *Session, r *dto.LogoutRequest) dto.Response {
	if !sess.LoggedIn() || !c.service.Logout(sess.Username).OK() {
		return dto.NewError(r)
	}
	sess.Username = ""
	sess.Terminate = true
	c.updateSessions()
	return dto.NewAck(r, "")
}

func (c *ProtocolController) updateSessions() {
	if c.metrics != nil {
		c.metrics.Sessions.Set(float64(c.service.SessionCount()))
	}
}

// FormatCourseStat renders a COURSESTAT payload
func FormatCourseStat(stat *models.CourseStat) string {
	return fmt.Sprintf("Course: (%d) %s\nSeats Available: %d/%d\nStudents Registered: %s",
		stat.ID, stat.Name, stat.SeatsAvailable, stat.Capacity, helpers.FormatStringList(stat.Students))
}

// FormatStudentStat renders a STUDENTSTAT payload
func FormatStudentStat(stat *models.StudentStat) string {
	return fmt.Sprintf("Student: %s\nCourses: %s", stat.Username, helpers.FormatIntList(stat.Courses))
}
