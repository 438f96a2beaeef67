package api

import (
	"errors"
	"net"
	"net/http"
	"net/rpc"
	"os"
	"strings"
	"time"

	"github.com/tauraamui/prismdaemon/pkg/api/auth"
	"github.com/tauraamui/prismdaemon/pkg/common"
	data "github.com/tauraamui/prismdaemon/pkg/database"
	"github.com/tauraamui/prismdaemon/pkg/database/dbconn"
	"github.com/tauraamui/prismdaemon/pkg/database/repos"
	"github.com/tauraamui/prismdaemon/pkg/log"
	"github.com/tauraamui/prismdaemon/pkg/prism"
	"github.com/tauraamui/xerror"
)

func init() {
	rpc.Register(Session{})
}

const SIGREMOTE = Signal(0x1)

type Signal int

func (s Signal) Signal() {}

func (s Signal) String() string {
	return "remote-shutdown"
}

type Options struct {
	RPCListenPort string
	SigningSecret string
}

type Session struct {
	Token      string
	StreamUUID string
	StyleModel string
}

func (s Session) GetToken(args string, resp *string) error {
	*resp = s.Token
	return nil
}

type Server struct {
	interrupt     chan os.Signal
	s             prism.Server
	httpServer    *http.Server
	rpcListenPort string
	signingSecret string
	db            dbconn.GormWrapper
}

var connectDB = data.Connect

func New(interrupt chan os.Signal, server prism.Server, opts Options) (*Server, error) {
	db, err := connectDB()
	if err != nil {
		return nil, xerror.Errorf("unable to connect to DB, try running the setup: %w", err)
	}
	return &Server{
		interrupt:     interrupt,
		s:             server,
		httpServer:    &http.Server{},
		rpcListenPort: opts.RPCListenPort,
		signingSecret: opts.SigningSecret,
		db:            db,
	}, nil
}

func StartRPC(m *Server) error {
	err := rpc.Register(m)
	if err != nil {
		return err
	}
	rpc.HandleHTTP()

	l, err := net.Listen("tcp", m.rpcListenPort)
	if err != nil {
		return err
	}

	errs := make(chan error)
	go func() {
		httpErr := m.httpServer.Serve(l)
		if httpErr != nil {
			errs <- httpErr
		}
		errs <- nil
	}()

	select {
	case err := <-errs:
		return err
	default:
		return nil
	}
}

func ShutdownRPC(m *Server) error {
	if m != nil && m.httpServer != nil {
		return m.httpServer.Close()
	}
	return errors.New("API server not running")
}

func (m *Server) Authenticate(authContents string, resp *string) error {
	usernameAndPassword, err := validateAuth(authContents)
	if err != nil {
		return err
	}

	username := usernameAndPassword[0]
	password := usernameAndPassword[1]

	userRepo := repos.UserRepository{DB: m.db}
	user, err := userRepo.FindByName(username)
	if err != nil {
		return err
	}

	if err := user.ComparePassword(password); err != nil {
		return err
	}

	token, err := auth.GenToken(m.signingSecret, user.UUID)
	if err != nil {
		return err
	}

	*resp = token
	return nil
}

// Exposed API
func (m *Server) ActiveStreams(sess *Session, resp *[]common.StreamData) error {
	err := m.validateSession(*sess)
	if err != nil {
		return err
	}
	*resp = m.s.APIFetchActiveStreams()
	return nil
}

func (m *Server) SwitchStyle(sess *Session, resp *bool) error {
	err := m.validateSession(*sess)
	if err != nil {
		return err
	}

	log.Info("Received remote style switch request...")
	err = m.s.APISwitchStyle(sess.StreamUUID, sess.StyleModel)
	if err != nil {
		*resp = false
		return err
	}

	*resp = true
	return nil
}

func (m *Server) Shutdown(sess *Session, resp *bool) error {
	err := m.validateSession(*sess)
	if err != nil {
		return err
	}

	*resp = true
	log.Warn("Received remote shutdown request...")
	defer func() {
		time.Sleep(time.Second * 1)
		m.interrupt <- SIGREMOTE
	}()
	return nil
}

func (m *Server) validateSession(sess Session) error {
	if _, err := auth.ValidateToken(m.signingSecret, sess.Token); err != nil {
		log.Debug("Session token rejected: %v", err)
		return errors.New("user must be authenticated")
	}
	return nil
}

func validateAuth(auth string) ([]string, error) {
	if len(auth) == 0 {
		return nil, errors.New("cannot retrieve username and password from blank input")
	}

	split := strings.Split(auth, "|")
	if len(split) <= 1 {
		return nil, errors.New("unable to correctly retrieve username and password from malformed input")
	}

	return split, nil
}
