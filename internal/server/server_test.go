package server

import (
	"bufio"
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/bgrs/internal/app/models"
	"github.com/yigit/bgrs/internal/app/models/dto"
	"github.com/yigit/bgrs/internal/bootstrap"
	"github.com/yigit/bgrs/internal/config"
	"github.com/yigit/bgrs/internal/pkg/wire"
)

const catalog = "42|How To Train Your Dragon|[]|25\n7|Dragon Anatomy|[42]|1\n"

type testClient struct {
	conn   net.Conn
	reader *bufio.Reader
}

func dial(t *testing.T, addr string) *testClient {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &testClient{conn: conn, reader: bufio.NewReader(conn)}
}

func (c *testClient) call(t *testing.T, req dto.Request) dto.Response {
	t.Helper()
	require.NoError(t, c.conn.SetDeadline(time.Now().Add(5*time.Second)))
	_, err := c.conn.Write(wire.EncodeRequest(req))
	require.NoError(t, err)

	decoder := wire.NewResponseDecoder()
	for {
		b, err := c.reader.ReadByte()
		require.NoError(t, err)
		if resp, ok := decoder.DecodeNextByte(b); ok {
			return resp
		}
	}
}

// startServer serves on a loopback port. The returned stop function cancels the
// server and returns the result of Serve.
func startServer(t *testing.T) (*bootstrap.Dependencies, string, func() error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Courses.txt")
	require.NoError(t, os.WriteFile(path, []byte(catalog), 0o600))

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	cfg.Catalog.Path = path
	cfg.Auth.BcryptCost = bcrypt.MinCost

	deps, err := bootstrap.BuildDependencies(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, bootstrap.SetupCatalog(context.Background(), cfg, deps, zerolog.Nop()))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(cfg, deps, zerolog.Nop()).Serve(ctx, ln) }()

	var (
		once     sync.Once
		serveErr error
	)
	stop := func() error {
		once.Do(func() {
			cancel()
			select {
			case serveErr = <-done:
			case <-time.After(5 * time.Second):
				serveErr = errors.New("server did not stop")
			}
		})
		return serveErr
	}
	t.Cleanup(func() { _ = stop() })
	return deps, ln.Addr().String(), stop
}

func ack(op dto.Opcode, payload string) dto.Response {
	return &dto.AckResponse{MessageOpcode: op, Payload: payload}
}

func TestServeRegistrationFlow(t *testing.T) {
	_, addr, _ := startServer(t)

	admin := dial(t, addr)
	assert.Equal(t, ack(dto.OpAdminReg, ""), admin.call(t, &dto.RegisterRequest{Username: "gobber", Password: "pw", Role: models.RoleAdministrator}))
	assert.Equal(t, ack(dto.OpLogin, ""), admin.call(t, &dto.LoginRequest{Username: "gobber", Password: "pw"}))

	hiccup := dial(t, addr)
	assert.Equal(t, ack(dto.OpStudentReg, ""), hiccup.call(t, &dto.RegisterRequest{Username: "hiccup", Password: "pw", Role: models.RoleStudent}))
	assert.Equal(t, ack(dto.OpLogin, ""), hiccup.call(t, &dto.LoginRequest{Username: "hiccup", Password: "pw"}))
	assert.Equal(t, &dto.ErrorResponse{MessageOpcode: dto.OpCourseReg}, hiccup.call(t, &dto.CourseRegRequest{CourseID: 7}))
	assert.Equal(t, ack(dto.OpCourseReg, ""), hiccup.call(t, &dto.CourseRegRequest{CourseID: 42}))
	assert.Equal(t, ack(dto.OpCourseReg, ""), hiccup.call(t, &dto.CourseRegRequest{CourseID: 7}))
	assert.Equal(t, ack(dto.OpMyCourses, "[42,7]"), hiccup.call(t, &dto.MyCoursesRequest{}))

	assert.Equal(t,
		ack(dto.OpCourseStat, "Course: (7) Dragon Anatomy\nSeats Available: 0/1\nStudents Registered: [hiccup]"),
		admin.call(t, &dto.CourseStatRequest{CourseID: 7}))
	assert.Equal(t,
		ack(dto.OpStudentStat, "Student: hiccup\nCourses: [42,7]"),
		admin.call(t, &dto.StudentStatRequest{Username: "hiccup"}))
}

func TestServeLogoutClosesConnection(t *testing.T) {
	deps, addr, _ := startServer(t)

	c := dial(t, addr)
	c.call(t, &dto.RegisterRequest{Username: "astrid", Password: "pw", Role: models.RoleStudent})
	c.call(t, &dto.LoginRequest{Username: "astrid", Password: "pw"})
	assert.Equal(t, ack(dto.OpLogout, ""), c.call(t, &dto.LogoutRequest{}))

	_, err := c.reader.ReadByte()
	assert.Error(t, err)
	assert.False(t, deps.RegistrationService.IsLoggedIn("astrid"))
}

func TestServeDisconnectEndsSession(t *testing.T) {
	deps, addr, _ := startServer(t)

	c := dial(t, addr)
	c.call(t, &dto.RegisterRequest{Username: "snotlout", Password: "pw", Role: models.RoleStudent})
	c.call(t, &dto.LoginRequest{Username: "snotlout", Password: "pw"})
	require.True(t, deps.RegistrationService.IsLoggedIn("snotlout"))

	require.NoError(t, c.conn.Close())
	assert.Eventually(t, func() bool {
		return !deps.RegistrationService.IsLoggedIn("snotlout")
	}, 2*time.Second, 10*time.Millisecond)

	again := dial(t, addr)
	assert.Equal(t, ack(dto.OpLogin, ""), again.call(t, &dto.LoginRequest{Username: "snotlout", Password: "pw"}))
}

func TestServeStopsOnCancel(t *testing.T) {
	deps, addr, stop := startServer(t)

	c := dial(t, addr)
	c.call(t, &dto.RegisterRequest{Username: "fishlegs", Password: "pw", Role: models.RoleStudent})

	require.NoError(t, stop())

	assert.Equal(t, 0, deps.Hub.Count())
	_, err := net.DialTimeout("tcp", addr, time.Second)
	assert.Error(t, err)
}
