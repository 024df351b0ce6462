// Package coap exposes the sensor queries as CoAP resources over UDP.
package coap

import (
	"bytes"
	"context"

	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/entities"
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/router"
	"github.com/pkg/errors"
	"github.com/plgd-dev/go-coap/v3/message"
	"github.com/plgd-dev/go-coap/v3/message/codes"
	"github.com/plgd-dev/go-coap/v3/mux"
	"github.com/plgd-dev/go-coap/v3/net"
	"github.com/plgd-dev/go-coap/v3/options"
	"github.com/plgd-dev/go-coap/v3/udp"
	udpServer "github.com/plgd-dev/go-coap/v3/udp/server"
	"github.com/sirupsen/logrus"
)

// Routes maps resource paths to query kinds. /temp is kept for older clients.
var Routes = map[string]entities.QueryKind{
	"/temperature": entities.QueryTemperature,
	"/temp":        entities.QueryTemperature,
	"/humidity":    entities.QueryHumidity,
}

// Submitter hands a query to the control loop and waits for its rendered response.
type Submitter interface {
	Submit(ctx context.Context, kind entities.QueryKind) (string, error)
}

type Server struct {
	address   string
	submitter Submitter
	log       *logrus.Entry
	mux       *mux.Router
	server    *udpServer.Server
	listener  *net.UDPConn
	done      chan error
}

func NewServer(address string, submitter Submitter, log *logrus.Entry) (*Server, error) {
	s := &Server{
		address:   address,
		submitter: submitter,
		log:       log,
		mux:       mux.NewRouter(),
	}
	for path, kind := range Routes {
		if err := s.mux.Handle(path, s.handler(kind)); err != nil {
			return nil, errors.Wrapf(err, "route %s", path)
		}
	}
	s.mux.DefaultHandle(s.handler(entities.QueryUnknown))
	return s, nil
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	listener, err := net.NewListenUDP("udp", s.address)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.address)
	}
	s.listener = listener
	s.server = udp.NewServer(options.WithMux(s.mux))
	s.done = make(chan error, 1)
	go func() {
		s.done <- s.server.Serve(listener)
	}()
	s.log.Infof("CoAP server listening on %s", listener.LocalAddr())
	return nil
}

// Addr is the bound address, useful when listening on port 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.address
	}
	return s.listener.LocalAddr().String()
}

func (s *Server) Stop() {
	if s.server == nil {
		return
	}
	s.server.Stop()
	if err := <-s.done; err != nil {
		s.log.Debugf("serve: %v", err)
	}
	if err := s.listener.Close(); err != nil {
		s.log.Debugf("close listener: %v", err)
	}
}

func (s *Server) handler(kind entities.QueryKind) mux.HandlerFunc {
	return func(w mux.ResponseWriter, r *mux.Message) {
		code := codes.Content
		response, err := s.submitter.Submit(r.Context(), kind)
		if err != nil {
			s.log.Warnf("query %q: %v", kind, err)
			code = codes.ServiceUnavailable
			response = router.GatewayBusy
		}
		if err := w.SetResponse(code, message.TextPlain, bytes.NewReader([]byte(response))); err != nil {
			s.log.Errorf("set response: %v", err)
		}
	}
}
